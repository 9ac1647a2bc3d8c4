package repository

import (
	"context"
	"time"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
)

// AnalyticsRepository runs the aggregate queries behind dashboards and user stats.
type AnalyticsRepository interface {
	CountArticles(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	// CountPremium counts users whose premium window is open at now.
	CountPremium(ctx context.Context, now time.Time) (int64, error)
	CountPublishers(ctx context.Context) (int64, error)
	CountSubscriptions(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
	ArticlesPerPublisher(ctx context.Context) ([]entity.PublisherBreakdown, error)
	UserStats(ctx context.Context, email string) (entity.UserStats, error)
}
