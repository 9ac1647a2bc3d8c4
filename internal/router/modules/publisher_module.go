package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pixel-news/internal/interface/http"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
)

type PublisherModule struct {
	Handler *handlers.PublisherHandler
	Auth    *middleware.Authenticator
}

func NewPublisherModule(h *handlers.PublisherHandler, auth *middleware.Authenticator) *PublisherModule {
	return &PublisherModule{Handler: h, Auth: auth}
}

func (m *PublisherModule) Register(rg *gin.RouterGroup) {
	rg.GET("/publishers", m.Handler.List)
	rg.POST("/publishers", m.Auth.RequireAuth(), m.Handler.Create)
}
