package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/repository"
)

const userColumns = `id, email, name, image, is_admin, is_premium, premium_expires_at, created_at, last_login_at`

type UserRepository struct {
	store
}

func NewUserRepository(pool *pgxpool.Pool, timeout time.Duration) *UserRepository {
	return &UserRepository{store: newStore(pool, timeout)}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.IsAdmin, &u.IsPremium,
		&u.PremiumExpiresAt, &u.CreatedAt, &u.LastLoginAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) CreateIfAbsent(ctx context.Context, u *entity.User) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, image, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((lower(email))) DO NOTHING
		RETURNING id, created_at
	`, u.Email, u.Name, u.Image, u.CreatedAt)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, apperr.FromStore("users.create", err)
	}
	return true, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, apperr.ErrUserNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, classify("users.get", err, apperr.ErrUserNotFound)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, classify("users.get_by_email", err, apperr.ErrUserNotFound)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, page entity.Page) ([]*entity.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, limitArg(page.Limit), page.Skip)
	if err != nil {
		return nil, apperr.FromStore("users.list", err)
	}
	return collect(rows, "users.list", scanUser)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, image string) (*entity.User, error) {
	if !validID(id) {
		return nil, apperr.ErrUserNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET name = $1, image = $2
		WHERE id = $3
		RETURNING `+userColumns, name, image, id))
	if err != nil {
		return nil, classify("users.update_profile", err, apperr.ErrUserNotFound)
	}
	return u, nil
}

func (r *UserRepository) TouchLogin(ctx context.Context, email string, at time.Time) error {
	return r.exec(ctx, "users.touch_login", `UPDATE users SET last_login_at = $2 WHERE lower(email) = lower($1)`, email, at)
}

func (r *UserRepository) SetAdmin(ctx context.Context, email string, admin bool) error {
	return r.exec(ctx, "users.set_admin", `UPDATE users SET is_admin = $2 WHERE lower(email) = lower($1)`, email, admin)
}

func (r *UserRepository) SetPremium(ctx context.Context, email string, expiresAt time.Time) error {
	return r.exec(ctx, "users.set_premium", setPremiumSQL, email, expiresAt)
}

func (r *UserRepository) ClearPremium(ctx context.Context, email string) error {
	return r.exec(ctx, "users.clear_premium",
		`UPDATE users SET is_premium = FALSE, premium_expires_at = NULL WHERE lower(email) = lower($1)`, email)
}

const setPremiumSQL = `UPDATE users SET is_premium = TRUE, premium_expires_at = $2 WHERE lower(email) = lower($1)`

// exec runs a single-row update and reports a missing user as NotFound.
func (r *UserRepository) exec(ctx context.Context, op, sql string, args ...any) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return apperr.FromStore(op, err)
	}
	if res.RowsAffected() == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
