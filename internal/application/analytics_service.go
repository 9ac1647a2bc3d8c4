package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
	repo "github.com/oksasatya/pixel-news/internal/domain/repository"
)

// AnalyticsService composes dashboard figures from independent aggregate queries.
// A report is a snapshot; its figures may reflect slightly different instants.
type AnalyticsService struct {
	Repo   repo.AnalyticsRepository
	Policy *policy.Engine
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewAnalyticsService(r repo.AnalyticsRepository, pe *policy.Engine, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{Repo: r, Policy: pe, Logger: orNop(logger)}
}

func (s *AnalyticsService) Report(ctx context.Context, c policy.Caller) (*entity.AnalyticsReport, error) {
	if _, err := s.Policy.Authorize(c, policy.ActionRead, policy.Collection(policy.KindAnalytics)); err != nil {
		return nil, err
	}
	now := clock(s.Now).now()
	var rep entity.AnalyticsReport

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			v, err := retry(gctx, fn)
			*dst = v
			return err
		})
	}
	count(&rep.Articles, s.Repo.CountArticles)
	count(&rep.Users, s.Repo.CountUsers)
	count(&rep.Publishers, s.Repo.CountPublishers)
	count(&rep.Subscriptions, s.Repo.CountSubscriptions)
	count(&rep.Premium, func(ctx context.Context) (int64, error) {
		return s.Repo.CountPremium(ctx, now)
	})
	g.Go(func() error {
		v, err := retry(gctx, s.Repo.TotalRevenue)
		rep.Revenue = v
		return err
	})
	g.Go(func() error {
		v, err := retry(gctx, s.Repo.ArticlesPerPublisher)
		rep.ArticlesPerPublisher = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.NonPremium = rep.Users - rep.Premium
	if rep.NonPremium < 0 {
		rep.NonPremium = 0
	}
	if rep.ArticlesPerPublisher == nil {
		rep.ArticlesPerPublisher = []entity.PublisherBreakdown{}
	}
	return &rep, nil
}

// UserCounts splits users into premium and non-premium at the current time.
func (s *AnalyticsService) UserCounts(ctx context.Context) (entity.UserCounts, error) {
	now := clock(s.Now).now()
	users, err := retry(ctx, s.Repo.CountUsers)
	if err != nil {
		return entity.UserCounts{}, err
	}
	premium, err := retry(ctx, func(ctx context.Context) (int64, error) {
		return s.Repo.CountPremium(ctx, now)
	})
	if err != nil {
		return entity.UserCounts{}, err
	}
	non := users - premium
	if non < 0 {
		non = 0
	}
	return entity.UserCounts{Premium: premium, NonPremium: non}, nil
}
