package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pixel-news/internal/interface/http"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
)

type AdminModule struct {
	Analytics *handlers.AnalyticsHandler
	Auth      *middleware.Authenticator
}

func NewAdminModule(h *handlers.AnalyticsHandler, auth *middleware.Authenticator) *AdminModule {
	return &AdminModule{Analytics: h, Auth: auth}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(m.Auth.RequireAuth())
	admin.GET("/analytics", m.Analytics.Report)
}
