package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/application"
	"github.com/oksasatya/pixel-news/internal/interface/httperr"
	"github.com/oksasatya/pixel-news/pkg/helpers"
	"github.com/oksasatya/pixel-news/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
	// Bearer returns the token in the body instead of setting the cookie.
	Bearer bool
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, bearer bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Bearer: bearer}
}

type tokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type tokenResponse struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueToken POST /api/jwt
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if !bind(c, &req) {
		return
	}
	tok, err := h.Svc.IssueToken(c.Request.Context(), req.Email)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	if h.Bearer {
		response.OK(c, http.StatusOK, tokenResponse{Token: tok.Token, ExpiresAt: tok.ExpiresAt}, "token issued", nil)
		return
	}
	h.Cookies.SetAccess(c, tok.Token, tok.ExpiresAt)
	response.OK(c, http.StatusOK, tokenResponse{ExpiresAt: tok.ExpiresAt}, "token issued", nil)
}

// Logout DELETE /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.OK(c, http.StatusOK, gin.H{"loggedOut": true}, "logged out", nil)
}
