package repository

import (
	"context"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
)

type PublisherRepository interface {
	Create(ctx context.Context, p *entity.Publisher) error
	GetByID(ctx context.Context, id string) (*entity.Publisher, error)
	List(ctx context.Context) ([]*entity.Publisher, error)
}
