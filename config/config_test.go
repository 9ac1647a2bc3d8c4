package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_TRANSPORT", "")
	t.Setenv("ARTICLE_DELETE_POLICY", "")
	t.Setenv("DB_QUERY_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, AuthTransportCookie, cfg.AuthTransport)
	assert.False(t, cfg.BearerAuth())
	assert.Equal(t, DeletePolicyAdminOnly, cfg.ArticleDeletePolicy)
	assert.Equal(t, 5*time.Second, cfg.DBQueryTimeout)
	assert.False(t, cfg.PremiumTeaser)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_TRANSPORT", "Bearer")
	t.Setenv("ARTICLE_DELETE_POLICY", "admin_or_creator")
	t.Setenv("PREMIUM_TEASER", "true")
	t.Setenv("JWT_ACCESS_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()

	assert.True(t, cfg.BearerAuth())
	assert.Equal(t, DeletePolicyAdminOrCreator, cfg.ArticleDeletePolicy)
	assert.True(t, cfg.PremiumTeaser)
	assert.Equal(t, 2*time.Hour, cfg.AccessTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("AUTH_TRANSPORT", "smoke-signals")
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("PAYMENT_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, AuthTransportCookie, cfg.AuthTransport)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 10*time.Second, cfg.PaymentTimeout)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:1/n?sslmode=disable", cfg.PostgresDSN())
}
