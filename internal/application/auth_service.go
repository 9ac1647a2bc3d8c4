package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	repo "github.com/oksasatya/pixel-news/internal/domain/repository"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// AuthService issues access tokens for identities verified by the client-side
// identity provider.
type AuthService struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: orNop(logger)}
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// IssueToken signs a token for email and records the login on known users.
func (s *AuthService) IssueToken(ctx context.Context, email string) (IssuedToken, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return IssuedToken{}, err
	}
	tok, exp, err := s.JWT.GenerateAccessToken(email)
	if err != nil {
		helpers.LogError(s.Logger, "generate access token failed", err, logrus.Fields{"email": email})
		return IssuedToken{}, apperr.Wrap(apperr.KindInternal, "token signing failed", err)
	}

	if s.Users != nil {
		err := s.Users.TouchLogin(ctx, email, clock(s.Now).now())
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			helpers.LogWarn(s.Logger, "record login failed", err, logrus.Fields{"email": email})
		}
	}
	return IssuedToken{Token: tok, ExpiresAt: exp}, nil
}
