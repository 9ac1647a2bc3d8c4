package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pixel-news/internal/interface/http"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    *middleware.Authenticator
	Limits  Limits
}

func NewAuthModule(h *handlers.AuthHandler, auth *middleware.Authenticator, limits Limits) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth, Limits: limits}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/jwt", m.Limits.Per(20, time.Minute, middleware.KeyByIP()), m.Handler.IssueToken)
	rg.DELETE("/logout", m.Auth.OptionalAuth(), m.Handler.Logout)
}
