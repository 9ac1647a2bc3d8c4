package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Module is a feature area that mounts its routes under the API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and API-wide middleware until RegisterAll.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts the health check on / and every module under /api.
func (r *Registry) RegisterAll() {
	r.Engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "pixel news server is running")
	})
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
