package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/interface/middleware"
)

type DebugModule struct {
	Limits Limits
}

func NewDebugModule(limits Limits) *DebugModule { return &DebugModule{Limits: limits} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", m.Limits.Per(120, time.Minute, middleware.KeyByIP()), gin.WrapH(expvar.Handler()))
}
