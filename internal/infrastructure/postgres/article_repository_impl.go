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

const articleColumns = `a.id, a.title, a.description, a.body, a.image, a.tags, a.creator,
	a.publisher_id, a.publisher_name, a.publisher_logo, a.status, a.is_paid, a.view_count,
	a.decline_reason, a.date, a.created_at`

// insertion order breaks every tie so paging is stable.
const insertionOrder = `a.created_at, a.id`

type ArticleRepository struct {
	store
}

func NewArticleRepository(pool *pgxpool.Pool, timeout time.Duration) *ArticleRepository {
	return &ArticleRepository{store: newStore(pool, timeout)}
}

func articleDest(a *entity.Article) []any {
	return []any{&a.ID, &a.Title, &a.Description, &a.Body, &a.Image, &a.Tags, &a.Creator,
		&a.Publisher.ID, &a.Publisher.Name, &a.Publisher.Logo, &a.Status, &a.IsPaid, &a.ViewCount,
		&a.DeclineReason, &a.Date, &a.CreatedAt}
}

func scanArticle(row pgx.Row) (*entity.Article, error) {
	a := &entity.Article{}
	if err := row.Scan(articleDest(a)...); err != nil {
		return nil, err
	}
	return a, nil
}

// scanArticleWithCreator scans articleColumns followed by the joined creator profile.
func scanArticleWithCreator(row pgx.Row) (*entity.Article, error) {
	a := &entity.Article{}
	var name, email, image *string
	if err := row.Scan(append(articleDest(a), &name, &email, &image)...); err != nil {
		return nil, err
	}
	if email != nil {
		a.CreatorInfo = &entity.PublicProfile{Email: *email, Name: deref(name), Image: deref(image)}
	}
	return a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func tagsArg(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *ArticleRepository) Create(ctx context.Context, a *entity.Article) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if a.Status == "" {
		a.Status = entity.StatusPending
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO articles (title, description, body, image, tags, creator,
			publisher_id, publisher_name, publisher_logo, status, is_paid, view_count, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13)
		RETURNING id
	`, a.Title, a.Description, a.Body, a.Image, tagsArg(a.Tags), a.Creator,
		a.Publisher.ID, a.Publisher.Name, a.Publisher.Logo, string(a.Status), a.IsPaid, a.Date, a.CreatedAt)

	return apperr.FromStore("articles.create", row.Scan(&a.ID))
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	if !validID(id) {
		return nil, apperr.ErrArticleNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	a, err := scanArticle(r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles a WHERE a.id = $1`, id))
	if err != nil {
		return nil, classify("articles.get", err, apperr.ErrArticleNotFound)
	}
	return a, nil
}

func (r *ArticleRepository) GetWithCreator(ctx context.Context, id string) (*entity.Article, error) {
	if !validID(id) {
		return nil, apperr.ErrArticleNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	a, err := scanArticleWithCreator(r.pool.QueryRow(ctx, `
		SELECT `+articleColumns+`, u.name, u.email, u.image
		FROM articles a
		LEFT JOIN users u ON lower(u.email) = lower(a.creator)
		WHERE a.id = $1
	`, id))
	if err != nil {
		return nil, classify("articles.get_with_creator", err, apperr.ErrArticleNotFound)
	}
	return a, nil
}

func (r *ArticleRepository) GetMany(ctx context.Context, ids []string) ([]*entity.Article, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*entity.Article{}, nil
	}
	return r.list(ctx, "articles.get_many", `
		SELECT `+articleColumns+` FROM articles a
		WHERE a.id = ANY($1::uuid[])
		ORDER BY `+insertionOrder, valid)
}

func (r *ArticleRepository) UpdateContent(ctx context.Context, a *entity.Article) error {
	if !validID(a.ID) {
		return apperr.ErrArticleNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	// view_count is owned by IncrementViews and never rewritten here.
	row := r.pool.QueryRow(ctx, `
		UPDATE articles SET title = $2, description = $3, body = $4, image = $5, tags = $6,
			publisher_id = $7, publisher_name = $8, publisher_logo = $9,
			status = $10, is_paid = $11, decline_reason = $12
		WHERE id = $1
		RETURNING view_count
	`, a.ID, a.Title, a.Description, a.Body, a.Image, tagsArg(a.Tags),
		a.Publisher.ID, a.Publisher.Name, a.Publisher.Logo,
		string(a.Status), a.IsPaid, a.DeclineReason)

	return classify("articles.update", row.Scan(&a.ViewCount), apperr.ErrArticleNotFound)
}

func (r *ArticleRepository) Moderate(ctx context.Context, id string, m entity.Moderation) (*entity.Article, error) {
	if !validID(id) {
		return nil, apperr.ErrArticleNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var status *string
	if m.Status != nil {
		s := string(*m.Status)
		status = &s
	}
	a, err := scanArticle(r.pool.QueryRow(ctx, `
		UPDATE articles a SET
			status = COALESCE($2, a.status),
			decline_reason = CASE WHEN $2::text IS NULL THEN a.decline_reason ELSE $3 END,
			is_paid = COALESCE($4, a.is_paid)
		WHERE a.id = $1
		RETURNING `+articleColumns, id, status, m.DeclineReason, m.IsPaid))
	if err != nil {
		return nil, classify("articles.moderate", err, apperr.ErrArticleNotFound)
	}
	return a, nil
}

func (r *ArticleRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	if !validID(id) {
		return 0, apperr.ErrArticleNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var views int64
	err := r.pool.QueryRow(ctx, `
		UPDATE articles SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count
	`, id).Scan(&views)
	if err != nil {
		return 0, classify("articles.increment_views", err, apperr.ErrArticleNotFound)
	}
	return views, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.ErrArticleNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore("articles.delete", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.ErrArticleNotFound
	}
	return nil
}

// ListApproved applies each non-empty filter; callers strip the "all" sentinels first.
func (r *ArticleRepository) ListApproved(ctx context.Context, f entity.ArticleFilter) ([]*entity.Article, error) {
	var title, tag, publisher *string
	if f.Title != "" {
		p := containsPattern(f.Title)
		title = &p
	}
	if f.Tag != "" {
		p := containsPattern(f.Tag)
		tag = &p
	}
	if f.Publisher != "" {
		publisher = &f.Publisher
	}
	return r.list(ctx, "articles.list_approved", `
		SELECT `+articleColumns+` FROM articles a
		WHERE a.status = 'approved'
			AND ($1::text IS NULL OR a.title ILIKE $1)
			AND ($2::text IS NULL OR EXISTS (SELECT 1 FROM unnest(a.tags) t WHERE t ILIKE $2))
			AND ($3::text IS NULL OR a.publisher_name = $3)
		ORDER BY `+insertionOrder, title, tag, publisher)
}

func (r *ArticleRepository) ListPremium(ctx context.Context) ([]*entity.Article, error) {
	return r.list(ctx, "articles.list_premium", `
		SELECT `+articleColumns+` FROM articles a
		WHERE a.status = 'approved' AND a.is_paid
		ORDER BY `+insertionOrder)
}

func (r *ArticleRepository) TopApproved(ctx context.Context, page entity.Page) ([]*entity.Article, error) {
	return r.list(ctx, "articles.top_approved", `
		SELECT `+articleColumns+` FROM articles a
		WHERE a.status = 'approved'
		ORDER BY a.view_count DESC, `+insertionOrder+`
		LIMIT $1 OFFSET $2`, limitArg(page.Limit), page.Skip)
}

func (r *ArticleRepository) ListAll(ctx context.Context, page entity.Page) ([]*entity.Article, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`, u.name, u.email, u.image
		FROM articles a
		LEFT JOIN users u ON lower(u.email) = lower(a.creator)
		ORDER BY `+insertionOrder+`
		LIMIT $1 OFFSET $2
	`, limitArg(page.Limit), page.Skip)
	if err != nil {
		return nil, apperr.FromStore("articles.list_all", err)
	}
	return collect(rows, "articles.list_all", scanArticleWithCreator)
}

func (r *ArticleRepository) ListByCreator(ctx context.Context, email string) ([]*entity.Article, error) {
	return r.list(ctx, "articles.list_by_creator", `
		SELECT `+articleColumns+` FROM articles a
		WHERE lower(a.creator) = lower($1)
		ORDER BY `+insertionOrder, email)
}

func (r *ArticleRepository) list(ctx context.Context, op, sql string, args ...any) ([]*entity.Article, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return collect(rows, op, scanArticle)
}

func collect[T any](rows pgx.Rows, op string, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, apperr.FromStore(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return out, nil
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)
