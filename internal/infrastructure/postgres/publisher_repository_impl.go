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

type PublisherRepository struct {
	store
}

func NewPublisherRepository(pool *pgxpool.Pool, timeout time.Duration) *PublisherRepository {
	return &PublisherRepository{store: newStore(pool, timeout)}
}

func scanPublisher(row pgx.Row) (*entity.Publisher, error) {
	p := &entity.Publisher{}
	if err := row.Scan(&p.ID, &p.Name, &p.Logo, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PublisherRepository) Create(ctx context.Context, p *entity.Publisher) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO publishers (name, logo, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.Name, p.Logo, p.CreatedAt)
	return apperr.FromStore("publishers.create", row.Scan(&p.ID))
}

func (r *PublisherRepository) GetByID(ctx context.Context, id string) (*entity.Publisher, error) {
	if !validID(id) {
		return nil, apperr.ErrPublisherMissing
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	p, err := scanPublisher(r.pool.QueryRow(ctx, `SELECT id, name, logo, created_at FROM publishers WHERE id = $1`, id))
	if err != nil {
		return nil, classify("publishers.get", err, apperr.ErrPublisherMissing)
	}
	return p, nil
}

func (r *PublisherRepository) List(ctx context.Context) ([]*entity.Publisher, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, name, logo, created_at FROM publishers ORDER BY name, id`)
	if err != nil {
		return nil, apperr.FromStore("publishers.list", err)
	}
	return collect(rows, "publishers.list", scanPublisher)
}

var _ repository.PublisherRepository = (*PublisherRepository)(nil)
