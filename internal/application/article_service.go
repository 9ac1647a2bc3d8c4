package application

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
	repo "github.com/oksasatya/pixel-news/internal/domain/repository"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

const (
	SliderSize       = 6
	MostPopularSize  = 5
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxSearchResults = 50
)

// Filter values that mean "no filter".
const (
	FilterAll           = "all"
	FilterAllPublishers = "All Publishers"
)

// ArticleService is the content query layer plus article writes. Every article it
// returns has passed the policy engine for the given caller.
type ArticleService struct {
	Articles   repo.ArticleRepository
	Publishers repo.PublisherRepository
	Policy     *policy.Engine
	Index      ArticleIndex
	Images     ImageStore
	Logger     *logrus.Logger
	Now        func() time.Time
}

func NewArticleService(articles repo.ArticleRepository, publishers repo.PublisherRepository, pe *policy.Engine, index ArticleIndex, images ImageStore, logger *logrus.Logger) *ArticleService {
	return &ArticleService{Articles: articles, Publishers: publishers, Policy: pe, Index: index, Images: images, Logger: orNop(logger)}
}

// NormalizeFilter drops sentinel and blank values.
func NormalizeFilter(f entity.ArticleFilter) entity.ArticleFilter {
	clean := func(v string) string {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, FilterAll) || strings.EqualFold(v, FilterAllPublishers) {
			return ""
		}
		return v
	}
	return entity.ArticleFilter{Title: clean(f.Title), Tag: clean(f.Tag), Publisher: clean(f.Publisher)}
}

// NormalizePage applies the default window and caps the limit.
func NormalizePage(p entity.Page) entity.Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// gate evaluates every article for c; denied ones are omitted, redacted ones trimmed.
func (s *ArticleService) gate(c policy.Caller, in []*entity.Article) []*entity.Article {
	out := make([]*entity.Article, 0, len(in))
	for _, a := range in {
		d := s.Policy.Evaluate(c, policy.ActionRead, policy.ArticleResource(a))
		if !d.Allowed() {
			continue
		}
		out = append(out, policy.Redact(a, d))
	}
	return out
}

func (s *ArticleService) ListApproved(ctx context.Context, c policy.Caller, f entity.ArticleFilter) ([]*entity.Article, error) {
	f = NormalizeFilter(f)
	items, err := retry(ctx, func(ctx context.Context) ([]*entity.Article, error) {
		return s.Articles.ListApproved(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return s.gate(c, items), nil
}

func (s *ArticleService) ListPremium(ctx context.Context, c policy.Caller) ([]*entity.Article, error) {
	items, err := retry(ctx, s.Articles.ListPremium)
	if err != nil {
		return nil, err
	}
	return s.gate(c, items), nil
}

// Slider returns the most viewed approved articles.
func (s *ArticleService) Slider(ctx context.Context, c policy.Caller) ([]*entity.Article, error) {
	return s.top(ctx, c, entity.Page{Skip: 0, Limit: SliderSize})
}

// MostPopular returns the ranks right after the slider.
func (s *ArticleService) MostPopular(ctx context.Context, c policy.Caller) ([]*entity.Article, error) {
	return s.top(ctx, c, entity.Page{Skip: SliderSize, Limit: MostPopularSize})
}

func (s *ArticleService) top(ctx context.Context, c policy.Caller, page entity.Page) ([]*entity.Article, error) {
	items, err := retry(ctx, func(ctx context.Context) ([]*entity.Article, error) {
		return s.Articles.TopApproved(ctx, page)
	})
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Article, 0, len(items))
	for _, a := range items {
		d := s.Policy.Showcase(c, a)
		if !d.Allowed() {
			continue
		}
		out = append(out, policy.Redact(a, d))
	}
	return out, nil
}

// ListAll is the administrator listing joined with creator profiles.
func (s *ArticleService) ListAll(ctx context.Context, c policy.Caller, page entity.Page) ([]*entity.Article, error) {
	if _, err := s.Policy.Authorize(c, policy.ActionList, policy.Collection(policy.KindArticle)); err != nil {
		return nil, err
	}
	page = NormalizePage(page)
	return retry(ctx, func(ctx context.Context) ([]*entity.Article, error) {
		return s.Articles.ListAll(ctx, page)
	})
}

func (s *ArticleService) ListByCreator(ctx context.Context, c policy.Caller, email string) ([]*entity.Article, error) {
	r := policy.Resource{Kind: policy.KindArticle, Owner: email}
	if _, err := s.Policy.Authorize(c, policy.ActionList, r); err != nil {
		return nil, err
	}
	return retry(ctx, func(ctx context.Context) ([]*entity.Article, error) {
		return s.Articles.ListByCreator(ctx, email)
	})
}

// Get returns one article joined with its creator's public profile.
func (s *ArticleService) Get(ctx context.Context, c policy.Caller, id string) (*entity.Article, error) {
	a, err := retry(ctx, func(ctx context.Context) (*entity.Article, error) {
		return s.Articles.GetWithCreator(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	d, err := s.Policy.Authorize(c, policy.ActionRead, policy.ArticleResource(a))
	if err != nil {
		return nil, err
	}
	return policy.Redact(a, d), nil
}

func validateContent(in entity.ArticleContent) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.New(apperr.KindInvalidInput, "title is required")
	}
	if strings.TrimSpace(in.PublisherID) == "" {
		return apperr.New(apperr.KindInvalidInput, "publisher is required")
	}
	return nil
}

func (s *ArticleService) snapshot(ctx context.Context, publisherID string) (entity.PublisherSnapshot, error) {
	p, err := s.Publishers.GetByID(ctx, publisherID)
	if apperr.Is(err, apperr.KindNotFound) {
		return entity.PublisherSnapshot{}, apperr.ErrPublisherMissing
	}
	if err != nil {
		return entity.PublisherSnapshot{}, err
	}
	return p.Snapshot(), nil
}

// Create stores a new pending, free article owned by the caller.
func (s *ArticleService) Create(ctx context.Context, c policy.Caller, in entity.ArticleContent) (*entity.Article, error) {
	if _, err := s.Policy.Authorize(c, policy.ActionCreate, policy.Collection(policy.KindArticle)); err != nil {
		return nil, err
	}
	if err := validateContent(in); err != nil {
		return nil, err
	}
	pub, err := s.snapshot(ctx, in.PublisherID)
	if err != nil {
		return nil, err
	}

	now := clock(s.Now).now()
	a := &entity.Article{Creator: c.Email, Date: now, CreatedAt: now}
	a.ApplyEdit(in, pub)
	if err := s.Articles.Create(ctx, a); err != nil {
		return nil, err
	}
	helpers.LogInfo(s.Logger, "article created", logrus.Fields{"article_id": a.ID, "creator": a.Creator})
	return a, nil
}

// Update replaces the content of an article and sends it back to moderation.
func (s *ArticleService) Update(ctx context.Context, c policy.Caller, id string, in entity.ArticleContent) (*entity.Article, error) {
	if err := validateContent(in); err != nil {
		return nil, err
	}
	a, err := s.Articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Policy.Authorize(c, policy.ActionUpdateContent, policy.ArticleResource(a)); err != nil {
		return nil, err
	}
	pub, err := s.snapshot(ctx, in.PublisherID)
	if err != nil {
		return nil, err
	}

	a.ApplyEdit(in, pub)
	if err := s.Articles.UpdateContent(ctx, a); err != nil {
		return nil, err
	}
	s.unindex(ctx, a.ID)
	return a, nil
}

// Moderate applies an administrator decision. Approved articles enter the search index,
// anything else leaves it.
func (s *ArticleService) Moderate(ctx context.Context, c policy.Caller, id string, m entity.Moderation) (*entity.Article, error) {
	if m.Status == nil && m.IsPaid == nil {
		return nil, apperr.New(apperr.KindInvalidInput, "status or isPaid is required")
	}
	if m.Status != nil && !m.Status.Valid() {
		return nil, apperr.New(apperr.KindInvalidInput, "unknown status "+string(*m.Status))
	}
	if _, err := s.Policy.Authorize(c, policy.ActionModerate, policy.Collection(policy.KindArticle)); err != nil {
		return nil, err
	}

	a, err := s.Articles.Moderate(ctx, id, m)
	if err != nil {
		return nil, err
	}
	if a.Status == entity.StatusApproved {
		s.index(ctx, a)
	} else {
		s.unindex(ctx, a.ID)
	}
	helpers.LogInfo(s.Logger, "article moderated", logrus.Fields{
		"article_id": a.ID,
		"status":     a.Status,
		"is_paid":    a.IsPaid,
		"by":         c.Email,
	})
	return a, nil
}

// IncrementViews bumps the counter atomically and returns the new value. Open to anyone.
func (s *ArticleService) IncrementViews(ctx context.Context, id string) (int64, error) {
	return s.Articles.IncrementViews(ctx, id)
}

func (s *ArticleService) Delete(ctx context.Context, c policy.Caller, id string) error {
	a, err := s.Articles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.Policy.Authorize(c, policy.ActionDelete, policy.ArticleResource(a)); err != nil {
		return err
	}
	if err := s.Articles.Delete(ctx, id); err != nil {
		return err
	}
	s.unindex(ctx, id)
	helpers.LogInfo(s.Logger, "article deleted", logrus.Fields{"article_id": id, "by": c.Email})
	return nil
}

// Search runs a full-text query and reloads hits from the store, so stale index
// entries never leak unpublished or deleted articles.
func (s *ArticleService) Search(ctx context.Context, c policy.Caller, q string, size int) ([]*entity.Article, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "query is required")
	}
	if s.Index == nil {
		return []*entity.Article{}, nil
	}
	if size <= 0 || size > MaxSearchResults {
		size = DefaultPageLimit
	}

	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "search failed", err)
	}
	if len(ids) == 0 {
		return []*entity.Article{}, nil
	}
	found, err := retry(ctx, func(ctx context.Context) ([]*entity.Article, error) {
		return s.Articles.GetMany(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entity.Article, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	ordered := make([]*entity.Article, 0, len(found))
	for _, id := range ids {
		if a, ok := byID[id]; ok && a.Status == entity.StatusApproved {
			ordered = append(ordered, a)
		}
	}
	return s.gate(c, ordered), nil
}

// UploadImage stores an article image and returns its public URL.
func (s *ArticleService) UploadImage(ctx context.Context, c policy.Caller, r io.Reader, filename, contentType string) (string, error) {
	if _, err := s.Policy.Authorize(c, policy.ActionUpload, policy.Collection(policy.KindArticle)); err != nil {
		return "", err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperr.New(apperr.KindInvalidInput, "only image uploads are accepted")
	}
	if s.Images == nil {
		return "", apperr.New(apperr.KindUpstream, "image storage not configured")
	}
	url, err := s.Images.Upload(ctx, helpers.ObjectPath("articles", c.Email, filename), contentType, r)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "image upload failed", err)
	}
	return url, nil
}

// Reindex rebuilds the search index from the approved listing.
func (s *ArticleService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	items, err := s.Articles.ListApproved(ctx, entity.ArticleFilter{})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range items {
		if err := s.Index.Index(ctx, a); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *ArticleService) index(ctx context.Context, a *entity.Article) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, a); err != nil {
		helpers.LogWarn(s.Logger, "article index failed", err, logrus.Fields{"article_id": a.ID})
	}
}

func (s *ArticleService) unindex(ctx context.Context, id string) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Remove(ctx, id); err != nil {
		helpers.LogWarn(s.Logger, "article unindex failed", err, logrus.Fields{"article_id": id})
	}
}
