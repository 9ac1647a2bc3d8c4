package application

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
	repo "github.com/oksasatya/pixel-news/internal/domain/repository"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// RoleResolver turns an identity into its current role. Stored flags may be cached in
// Redis; premium expiry is always evaluated against the clock at read time.
type RoleResolver struct {
	Users  repo.UserRepository
	Redis  redis.Cmdable
	TTL    time.Duration
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewRoleResolver(users repo.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *RoleResolver {
	return &RoleResolver{Users: users, Redis: rdb, TTL: ttl, Logger: orNop(logger)}
}

// storedFlags is the cached projection of a user row.
type storedFlags struct {
	Email            string     `json:"email"`
	IsAdmin          bool       `json:"is_admin"`
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
}

func roleKey(email string) string {
	return "role:user:" + strings.ToLower(strings.TrimSpace(email))
}

// Resolve reports the role of email at the current time. Unknown users yield NotFound.
func (r *RoleResolver) Resolve(ctx context.Context, email string) (entity.Role, error) {
	flags, err := r.load(ctx, email)
	if err != nil {
		return entity.Role{}, err
	}
	u := &entity.User{
		Email:            flags.Email,
		IsAdmin:          flags.IsAdmin,
		IsPremium:        flags.IsPremium,
		PremiumExpiresAt: flags.PremiumExpiresAt,
	}
	return entity.RoleOf(u, clock(r.Now).now()), nil
}

// Caller resolves the role behind verified claims. A verified identity without a user
// record is an authenticated caller with no privileges.
func (r *RoleResolver) Caller(ctx context.Context, email string) (policy.Caller, error) {
	role, err := r.Resolve(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return policy.Identified(email, entity.Role{Email: email}), nil
	}
	if err != nil {
		return policy.Anonymous(), err
	}
	return policy.Identified(email, role), nil
}

// Invalidate drops the cached flags of email; called after every role or ledger write.
func (r *RoleResolver) Invalidate(ctx context.Context, email string) {
	if r.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, r.Redis, roleKey(email)); err != nil {
		helpers.LogWarn(r.Logger, "role cache invalidate failed", err, logrus.Fields{"email": email})
	}
}

func (r *RoleResolver) load(ctx context.Context, email string) (storedFlags, error) {
	key := roleKey(email)
	if r.Redis != nil {
		var cached storedFlags
		found, err := helpers.RedisGetJSON(ctx, r.Redis, key, &cached)
		if err != nil {
			// cache trouble never blocks a request
			helpers.LogWarn(r.Logger, "role cache read failed", err, logrus.Fields{"key": key})
		} else if found {
			return cached, nil
		}
	}

	u, err := retry(ctx, func(ctx context.Context) (*entity.User, error) {
		return r.Users.GetByEmail(ctx, email)
	})
	if err != nil {
		return storedFlags{}, err
	}
	flags := storedFlags{Email: u.Email, IsAdmin: u.IsAdmin, IsPremium: u.IsPremium, PremiumExpiresAt: u.PremiumExpiresAt}

	if r.Redis != nil && r.TTL > 0 {
		if err := helpers.RedisSetJSON(ctx, r.Redis, key, flags, r.TTL); err != nil {
			helpers.LogWarn(r.Logger, "role cache write failed", err, logrus.Fields{"key": key})
		}
	}
	return flags, nil
}
