package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pixel-news/internal/interface/http"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
)

// ArticleModule serves the content query layer and article writes.
// Public reads run with optional auth so premium gating sees the caller.
type ArticleModule struct {
	Handler *handlers.ArticleHandler
	Auth    *middleware.Authenticator
	Limits  Limits
}

func NewArticleModule(h *handlers.ArticleHandler, auth *middleware.Authenticator, limits Limits) *ArticleModule {
	return &ArticleModule{Handler: h, Auth: auth, Limits: limits}
}

func (m *ArticleModule) Register(rg *gin.RouterGroup) {
	public := rg.Group("/")
	public.Use(m.Auth.OptionalAuth(), m.Limits.Per(300, time.Minute, middleware.KeyByCaller()))
	{
		public.GET("/slider-articles", m.Handler.Slider)
		public.GET("/articles/most-popular", m.Handler.MostPopular)
		public.GET("/articles/approved", m.Handler.ListApproved)
		public.GET("/articles/premium", m.Handler.ListPremium)
		public.GET("/articles/search", m.Limits.Per(60, time.Minute, middleware.KeyByCaller()), m.Handler.Search)
		public.GET("/articles/:id", m.Handler.Get)
		public.PATCH("/articles/view-count/:id", m.Limits.Per(30, time.Minute, middleware.KeyByIPAndPath()), m.Handler.IncrementViews)
	}

	auth := rg.Group("/")
	auth.Use(m.Auth.RequireAuth(), m.Limits.Per(120, time.Minute, middleware.KeyByCaller()))
	{
		auth.GET("/articles", m.Handler.ListAll)
		auth.GET("/articles/creator/:email", m.Handler.ListByCreator)
		auth.POST("/articles", m.Handler.Create)
		auth.POST("/articles/image", m.Limits.Per(20, time.Minute, middleware.KeyByCaller()), m.Handler.UploadImage)
		auth.PUT("/articles/:id", m.Handler.Update)
		auth.PATCH("/articles/status-update/:id", m.Handler.Moderate)
		auth.DELETE("/articles/:id", m.Handler.Delete)
	}
}
