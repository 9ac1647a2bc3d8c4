package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/domain/policy"
	"github.com/oksasatya/pixel-news/internal/interface/httperr"
	"github.com/oksasatya/pixel-news/pkg/helpers"
	"github.com/oksasatya/pixel-news/pkg/response"
)

const CtxCallerKey = "caller"

// CallerResolver turns a verified email into a caller with its current role.
type CallerResolver interface {
	Caller(ctx context.Context, email string) (policy.Caller, error)
}

// Authenticator verifies access tokens from the configured transport: the
// Authorization bearer header or the access_token cookie.
type Authenticator struct {
	JWT    *helpers.JWTManager
	Roles  CallerResolver
	Bearer bool
}

func NewAuthenticator(jwt *helpers.JWTManager, roles CallerResolver, bearer bool) *Authenticator {
	return &Authenticator{JWT: jwt, Roles: roles, Bearer: bearer}
}

func (a *Authenticator) token(c *gin.Context) string {
	if a.Bearer {
		return helpers.BearerToken(c.GetHeader("Authorization"))
	}
	tok, _ := c.Cookie(helpers.AccessCookie)
	return tok
}

// RequireAuth rejects requests without a valid token with 401.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.token(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", response.ErrorBody{Code: "UNAUTHENTICATED"})
			return
		}
		claims, err := a.JWT.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", response.ErrorBody{Code: "UNAUTHENTICATED"})
			return
		}
		a.resolve(c, claims.Email)
	}
}

// OptionalAuth resolves the caller when a valid token is present and treats
// everything else as anonymous.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.token(c)
		if token == "" {
			c.Set(CtxCallerKey, policy.Anonymous())
			c.Next()
			return
		}
		claims, err := a.JWT.ParseAccessToken(token)
		if err != nil {
			c.Set(CtxCallerKey, policy.Anonymous())
			c.Next()
			return
		}
		a.resolve(c, claims.Email)
	}
}

func (a *Authenticator) resolve(c *gin.Context, email string) {
	caller, err := a.Roles.Caller(c.Request.Context(), email)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.Set(CtxCallerKey, caller)
	c.Next()
}

// CallerFrom returns the caller resolved by the auth middleware, anonymous if none ran.
func CallerFrom(c *gin.Context) policy.Caller {
	if v, ok := c.Get(CtxCallerKey); ok {
		if caller, ok := v.(policy.Caller); ok {
			return caller
		}
	}
	return policy.Anonymous()
}
