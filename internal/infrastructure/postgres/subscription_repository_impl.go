package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/repository"
)

const insertSubscriptionSQL = `
	INSERT INTO subscriptions (id, email, price, duration_minutes, plan, transaction_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// SubscriptionRepository is the ledger store. Besides plain appends it promotes the
// payer inside the same transaction, so a committed entry always carries its premium window.
type SubscriptionRepository struct {
	store
}

func NewSubscriptionRepository(pool *pgxpool.Pool, timeout time.Duration) *SubscriptionRepository {
	return &SubscriptionRepository{store: newStore(pool, timeout)}
}

func insertArgs(rec *entity.SubscriptionRecord) []any {
	return []any{rec.ID, rec.Email, rec.Price, rec.DurationMinutes, rec.Plan, rec.TransactionID, rec.CreatedAt}
}

func (r *SubscriptionRepository) Append(ctx context.Context, rec *entity.SubscriptionRecord) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if _, err := r.pool.Exec(ctx, insertSubscriptionSQL, insertArgs(rec)...); err != nil {
		return apperr.FromStore("subscriptions.append", err)
	}
	return nil
}

func (r *SubscriptionRepository) AppendAndPromote(ctx context.Context, rec *entity.SubscriptionRecord, expiresAt time.Time) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.FromStore("subscriptions.begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// the user row is locked first so concurrent payments serialize on it
	res, err := tx.Exec(ctx, setPremiumSQL, rec.Email, expiresAt)
	if err != nil {
		return apperr.FromStore("subscriptions.promote", err)
	}
	if res.RowsAffected() != 1 {
		return apperr.ErrUserNotFound
	}
	if _, err := tx.Exec(ctx, insertSubscriptionSQL, insertArgs(rec)...); err != nil {
		return apperr.FromStore("subscriptions.append", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.FromStore("subscriptions.commit", err)
	}
	return nil
}

func (r *SubscriptionRepository) ListByEmail(ctx context.Context, email string) ([]*entity.SubscriptionRecord, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, price::float8, duration_minutes, plan, transaction_id, created_at
		FROM subscriptions
		WHERE lower(email) = lower($1)
		ORDER BY created_at DESC, id
	`, email)
	if err != nil {
		return nil, apperr.FromStore("subscriptions.list", err)
	}
	return collect(rows, "subscriptions.list", func(row pgx.Row) (*entity.SubscriptionRecord, error) {
		rec := &entity.SubscriptionRecord{}
		err := row.Scan(&rec.ID, &rec.Email, &rec.Price, &rec.DurationMinutes, &rec.Plan, &rec.TransactionID, &rec.CreatedAt)
		return rec, err
	})
}

var (
	_ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
	_ repository.AtomicLedger           = (*SubscriptionRepository)(nil)
)
