package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/pixel-news/config"
)

type pingModule struct{}

func (pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func TestRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry(gin.New())
	reg.Use(func(c *gin.Context) { c.Set("mw", "applied"); c.Next() })
	reg.Add(pingModule{})
	reg.RegisterAll()

	w := httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")

	w = httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, "applied", w.Body.String())
}

func TestPolicyOptions(t *testing.T) {
	opts := policyOptions(&config.Config{PremiumTeaser: true, ArticleDeletePolicy: config.DeletePolicyAdminOrCreator})
	assert.True(t, opts.PremiumTeaser)
	assert.True(t, opts.CreatorMayDelete)

	opts = policyOptions(&config.Config{ArticleDeletePolicy: config.DeletePolicyAdminOnly})
	assert.False(t, opts.CreatorMayDelete)
}
