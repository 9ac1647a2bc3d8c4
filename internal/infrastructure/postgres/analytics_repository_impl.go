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

type AnalyticsRepository struct {
	store
}

func NewAnalyticsRepository(pool *pgxpool.Pool, timeout time.Duration) *AnalyticsRepository {
	return &AnalyticsRepository{store: newStore(pool, timeout)}
}

func (r *AnalyticsRepository) count(ctx context.Context, op, sql string, args ...any) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var n int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, apperr.FromStore(op, err)
	}
	return n, nil
}

func (r *AnalyticsRepository) CountArticles(ctx context.Context) (int64, error) {
	return r.count(ctx, "analytics.articles", `SELECT count(*) FROM articles`)
}

func (r *AnalyticsRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, "analytics.users", `SELECT count(*) FROM users`)
}

func (r *AnalyticsRepository) CountPremium(ctx context.Context, now time.Time) (int64, error) {
	return r.count(ctx, "analytics.premium",
		`SELECT count(*) FROM users WHERE is_premium AND premium_expires_at > $1`, now)
}

func (r *AnalyticsRepository) CountPublishers(ctx context.Context) (int64, error) {
	return r.count(ctx, "analytics.publishers", `SELECT count(*) FROM publishers`)
}

func (r *AnalyticsRepository) CountSubscriptions(ctx context.Context) (int64, error) {
	return r.count(ctx, "analytics.subscriptions", `SELECT count(*) FROM subscriptions`)
}

func (r *AnalyticsRepository) TotalRevenue(ctx context.Context) (float64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var sum float64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(price), 0)::float8 FROM subscriptions`).Scan(&sum); err != nil {
		return 0, apperr.FromStore("analytics.revenue", err)
	}
	return sum, nil
}

func (r *AnalyticsRepository) ArticlesPerPublisher(ctx context.Context) ([]entity.PublisherBreakdown, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT publisher_name, count(*), COALESCE(SUM(view_count), 0)::bigint
		FROM articles
		GROUP BY publisher_name
		ORDER BY publisher_name
	`)
	if err != nil {
		return nil, apperr.FromStore("analytics.per_publisher", err)
	}
	return collect(rows, "analytics.per_publisher", func(row pgx.Row) (entity.PublisherBreakdown, error) {
		var b entity.PublisherBreakdown
		err := row.Scan(&b.Name, &b.TotalArticles, &b.TotalViews)
		return b, err
	})
}

func (r *AnalyticsRepository) UserStats(ctx context.Context, email string) (entity.UserStats, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var st entity.UserStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM articles WHERE lower(creator) = lower($1)),
			(SELECT COALESCE(SUM(view_count), 0)::bigint FROM articles WHERE lower(creator) = lower($1)),
			(SELECT COALESCE(SUM(price), 0)::float8 FROM subscriptions WHERE lower(email) = lower($1))
	`, email).Scan(&st.Articles, &st.TotalViews, &st.TotalPayment)
	if err != nil {
		return entity.UserStats{}, apperr.FromStore("analytics.user_stats", err)
	}
	return st, nil
}

var _ repository.AnalyticsRepository = (*AnalyticsRepository)(nil)
