package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pixel-news/internal/interface/http"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
)

type UserModule struct {
	Handler *handlers.UserHandler
	Auth    *middleware.Authenticator
	Limits  Limits
}

func NewUserModule(h *handlers.UserHandler, auth *middleware.Authenticator, limits Limits) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Limits: limits}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users", m.Limits.Per(10, time.Minute, middleware.KeyByIP()), m.Handler.Register)
	rg.GET("/users/counts", m.Limits.Per(120, time.Minute, middleware.KeyByIP()), m.Handler.Counts)

	auth := rg.Group("/users")
	auth.Use(m.Auth.RequireAuth(), m.Limits.Per(120, time.Minute, middleware.KeyByCaller()))
	{
		auth.GET("", m.Handler.List)
		auth.GET("/:email", m.Handler.Detail)
		auth.GET("/role/:email", m.Handler.Role)
		auth.PATCH("/role/update/:email", m.Handler.UpdateRole)
		auth.PATCH("/update/:id", m.Handler.UpdateProfile)
	}
}
