package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pixel-news/internal/interface/http"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
)

type SubscriptionModule struct {
	Handler *handlers.SubscriptionHandler
	Auth    *middleware.Authenticator
	Limits  Limits
}

func NewSubscriptionModule(h *handlers.SubscriptionHandler, auth *middleware.Authenticator, limits Limits) *SubscriptionModule {
	return &SubscriptionModule{Handler: h, Auth: auth, Limits: limits}
}

func (m *SubscriptionModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(m.Auth.RequireAuth(), m.Limits.Per(30, time.Minute, middleware.KeyByCaller()))
	{
		auth.POST("/create-payment-intent", m.Handler.CreateIntent)
		auth.POST("/subscription-histories", m.Handler.Record)
		auth.GET("/subscription-histories/:email", m.Handler.History)
	}
}
