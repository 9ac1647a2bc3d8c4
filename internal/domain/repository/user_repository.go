package repository

import (
	"context"
	"time"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// CreateIfAbsent inserts u unless the email exists; created is false for an existing user,
	// whose stored flags are left untouched.
	CreateIfAbsent(ctx context.Context, u *entity.User) (created bool, err error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, page entity.Page) ([]*entity.User, error)
	UpdateProfile(ctx context.Context, id, name, image string) (*entity.User, error)
	TouchLogin(ctx context.Context, email string, at time.Time) error
	SetAdmin(ctx context.Context, email string, admin bool) error
	SetPremium(ctx context.Context, email string, expiresAt time.Time) error
	ClearPremium(ctx context.Context, email string) error
}
