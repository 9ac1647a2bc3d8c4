package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const AccessCookie = "access_token"

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// SetAccess stores the access token in an HTTP-only cookie. Secure deployments use
// SameSite=None so a separately hosted client can send it cross-site.
func (m *Manager) SetAccess(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(m.sameSite())
	c.SetCookie(AccessCookie, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(m.sameSite())
	c.SetCookie(AccessCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func (m *Manager) sameSite() http.SameSite {
	if m.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
