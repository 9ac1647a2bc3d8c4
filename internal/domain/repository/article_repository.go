package repository

import (
	"context"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
)

// ArticleRepository defines article persistence and the query views built over it.
type ArticleRepository interface {
	Create(ctx context.Context, a *entity.Article) error
	GetByID(ctx context.Context, id string) (*entity.Article, error)
	// GetWithCreator loads an article joined with its creator's public profile.
	GetWithCreator(ctx context.Context, id string) (*entity.Article, error)
	GetMany(ctx context.Context, ids []string) ([]*entity.Article, error)
	UpdateContent(ctx context.Context, a *entity.Article) error
	Moderate(ctx context.Context, id string, m entity.Moderation) (*entity.Article, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error

	ListApproved(ctx context.Context, f entity.ArticleFilter) ([]*entity.Article, error)
	ListPremium(ctx context.Context) ([]*entity.Article, error)
	// TopApproved returns approved articles by view count descending, ties by insertion order.
	TopApproved(ctx context.Context, page entity.Page) ([]*entity.Article, error)
	ListAll(ctx context.Context, page entity.Page) ([]*entity.Article, error)
	ListByCreator(ctx context.Context, email string) ([]*entity.Article, error)
}
