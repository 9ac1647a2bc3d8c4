package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
	repo "github.com/oksasatya/pixel-news/internal/domain/repository"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

type PublisherService struct {
	Repo   repo.PublisherRepository
	Policy *policy.Engine
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewPublisherService(r repo.PublisherRepository, pe *policy.Engine, logger *logrus.Logger) *PublisherService {
	return &PublisherService{Repo: r, Policy: pe, Logger: orNop(logger)}
}

func (s *PublisherService) List(ctx context.Context) ([]*entity.Publisher, error) {
	return retry(ctx, s.Repo.List)
}

// Create adds a publisher. Articles already embedding an older snapshot are not touched.
func (s *PublisherService) Create(ctx context.Context, c policy.Caller, name, logo string) (*entity.Publisher, error) {
	if _, err := s.Policy.Authorize(c, policy.ActionCreate, policy.Collection(policy.KindPublisher)); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "name is required")
	}
	p := &entity.Publisher{Name: name, Logo: strings.TrimSpace(logo), CreatedAt: clock(s.Now).now()}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	helpers.LogInfo(s.Logger, "publisher created", logrus.Fields{"publisher_id": p.ID, "name": p.Name})
	return p, nil
}
