package application

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
	repo "github.com/oksasatya/pixel-news/internal/domain/repository"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

type UserService struct {
	Repo      repo.UserRepository
	Analytics repo.AnalyticsRepository
	Roles     *RoleResolver
	Policy    *policy.Engine
	Logger    *logrus.Logger
	Now       func() time.Time
}

func NewUserService(users repo.UserRepository, analytics repo.AnalyticsRepository, roles *RoleResolver, pe *policy.Engine, logger *logrus.Logger) *UserService {
	return &UserService{Repo: users, Analytics: analytics, Roles: roles, Policy: pe, Logger: orNop(logger)}
}

type RegisterInput struct {
	Email string
	Name  string
	Image string
}

var validate = validator.New()

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return "", apperr.New(apperr.KindInvalidInput, "a valid email is required")
	}
	return email, nil
}

// Register creates a free user. Registering an existing email changes nothing and
// reports created=false.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, bool, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, false, err
	}
	u := &entity.User{
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Image:     strings.TrimSpace(in.Image),
		CreatedAt: clock(s.Now).now(),
	}
	created, err := s.Repo.CreateIfAbsent(ctx, u)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return nil, false, nil
	}
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"email": email})
	return u, true, nil
}

func (s *UserService) List(ctx context.Context, c policy.Caller, page entity.Page) ([]*entity.User, error) {
	if _, err := s.Policy.Authorize(c, policy.ActionList, policy.Collection(policy.KindUser)); err != nil {
		return nil, err
	}
	page = NormalizePage(page)
	return retry(ctx, func(ctx context.Context) ([]*entity.User, error) {
		return s.Repo.List(ctx, page)
	})
}

// UserDetail is a user with the activity figures shown on their profile.
type UserDetail struct {
	User  *entity.User     `json:"user"`
	Stats entity.UserStats `json:"stats"`
}

func (s *UserService) Detail(ctx context.Context, c policy.Caller, email string) (*UserDetail, error) {
	if _, err := s.Policy.Authorize(c, policy.ActionRead, policy.UserResource(email)); err != nil {
		return nil, err
	}
	u, err := retry(ctx, func(ctx context.Context) (*entity.User, error) {
		return s.Repo.GetByEmail(ctx, email)
	})
	if err != nil {
		return nil, err
	}
	// report the evaluated premium state, not the stored flag
	role := entity.RoleOf(u, clock(s.Now).now())
	u.IsPremium = role.IsPremium

	var stats entity.UserStats
	if s.Analytics != nil {
		stats, err = retry(ctx, func(ctx context.Context) (entity.UserStats, error) {
			return s.Analytics.UserStats(ctx, email)
		})
		if err != nil {
			return nil, err
		}
	}
	return &UserDetail{User: u, Stats: stats}, nil
}

// Role returns the time-evaluated role of email.
func (s *UserService) Role(ctx context.Context, c policy.Caller, email string) (entity.Role, error) {
	if _, err := s.Policy.Authorize(c, policy.ActionRead, policy.UserResource(email)); err != nil {
		return entity.Role{}, err
	}
	return s.Roles.Resolve(ctx, email)
}

// RoleUpdate carries the flags to change; nil fields are left alone.
type RoleUpdate struct {
	IsAdmin   *bool
	IsPremium *bool
}

// UpdateRole changes role flags. Premium can only be cleared here; it is granted by
// recording a payment. Admin changes need an administrator.
func (s *UserService) UpdateRole(ctx context.Context, c policy.Caller, email string, in RoleUpdate) (entity.Role, error) {
	if in.IsAdmin == nil && in.IsPremium == nil {
		return entity.Role{}, apperr.New(apperr.KindInvalidInput, "nothing to update")
	}
	if in.IsPremium != nil && *in.IsPremium {
		return entity.Role{}, apperr.New(apperr.KindInvalidInput, "premium is granted by recording a payment")
	}
	if in.IsAdmin != nil {
		if _, err := s.Policy.Authorize(c, policy.ActionGrantAdmin, policy.UserResource(email)); err != nil {
			return entity.Role{}, err
		}
	}
	if in.IsPremium != nil {
		if _, err := s.Policy.Authorize(c, policy.ActionClearPremium, policy.UserResource(email)); err != nil {
			return entity.Role{}, err
		}
	}

	if in.IsAdmin != nil {
		if err := s.Repo.SetAdmin(ctx, email, *in.IsAdmin); err != nil {
			return entity.Role{}, err
		}
	}
	if in.IsPremium != nil {
		if err := s.Repo.ClearPremium(ctx, email); err != nil {
			return entity.Role{}, err
		}
	}
	s.Roles.Invalidate(ctx, email)
	helpers.LogInfo(s.Logger, "user role updated", logrus.Fields{"email": email, "by": c.Email})
	return s.Roles.Resolve(ctx, email)
}

type ProfileUpdate struct {
	Name  string
	Image string
}

// UpdateProfile edits name and image of the user with id; empty fields keep their value.
func (s *UserService) UpdateProfile(ctx context.Context, c policy.Caller, id string, in ProfileUpdate) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Policy.Authorize(c, policy.ActionUpdateProfile, policy.UserResource(u.Email)); err != nil {
		return nil, err
	}
	name, image := u.Name, u.Image
	if v := strings.TrimSpace(in.Name); v != "" {
		name = v
	}
	if v := strings.TrimSpace(in.Image); v != "" {
		image = v
	}
	return s.Repo.UpdateProfile(ctx, id, name, image)
}
