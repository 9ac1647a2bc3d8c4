package application

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	repo "github.com/oksasatya/pixel-news/internal/domain/repository"
)

// memStore backs every in-memory repository used by the service tests.
type memStore struct {
	mu         sync.Mutex
	seq        int
	users      map[string]*entity.User // by lowercased email
	articles   map[string]*entity.Article
	publishers map[string]*entity.Publisher
	subs       []*entity.SubscriptionRecord

	getByEmailCalls int
	failGetByEmail  []error // consumed one per call
	failSetPremium  error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*entity.User{},
		articles:   map[string]*entity.Article{},
		publishers: map[string]*entity.Publisher{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return prefix + strconv.Itoa(m.seq)
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func copyArticle(a *entity.Article) *entity.Article {
	c := *a
	c.Tags = append([]string(nil), a.Tags...)
	return &c
}

// ---- users ----

type memUsers struct{ *memStore }

var _ repo.UserRepository = memUsers{}

func (m memUsers) CreateIfAbsent(_ context.Context, u *entity.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := m.users[key]; ok {
		return false, nil
	}
	u.ID = m.nextID("u")
	m.users[key] = copyUser(u)
	return true, nil
}

func (m memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return copyUser(u), nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByEmailCalls++
	if len(m.failGetByEmail) > 0 {
		err := m.failGetByEmail[0]
		m.failGetByEmail = m.failGetByEmail[1:]
		return nil, err
	}
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (m memUsers) List(_ context.Context, page entity.Page) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return window(out, page), nil
}

func (m memUsers) UpdateProfile(_ context.Context, id, name, image string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.Name, u.Image = name, image
			return copyUser(u), nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (m memUsers) TouchLogin(_ context.Context, email string, at time.Time) error {
	return m.mutate(email, func(u *entity.User) { u.LastLoginAt = &at })
}

func (m memUsers) SetAdmin(_ context.Context, email string, admin bool) error {
	return m.mutate(email, func(u *entity.User) { u.IsAdmin = admin })
}

func (m memUsers) SetPremium(_ context.Context, email string, expiresAt time.Time) error {
	if m.failSetPremium != nil {
		return m.failSetPremium
	}
	return m.mutate(email, func(u *entity.User) {
		u.IsPremium = true
		u.PremiumExpiresAt = &expiresAt
	})
}

func (m memUsers) ClearPremium(_ context.Context, email string) error {
	return m.mutate(email, func(u *entity.User) {
		u.IsPremium = false
		u.PremiumExpiresAt = nil
	})
}

func (m memUsers) mutate(email string, fn func(*entity.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return apperr.ErrUserNotFound
	}
	fn(u)
	return nil
}

// ---- publishers ----

type memPublishers struct{ *memStore }

var _ repo.PublisherRepository = memPublishers{}

func (m memPublishers) Create(_ context.Context, p *entity.Publisher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID("p")
	c := *p
	m.publishers[p.ID] = &c
	return nil
}

func (m memPublishers) GetByID(_ context.Context, id string) (*entity.Publisher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.publishers[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "publisher not found")
	}
	c := *p
	return &c, nil
}

func (m memPublishers) List(_ context.Context) ([]*entity.Publisher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Publisher, 0, len(m.publishers))
	for _, p := range m.publishers {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- articles ----

type memArticles struct{ *memStore }

var _ repo.ArticleRepository = memArticles{}

func (m memArticles) Create(_ context.Context, a *entity.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextID("a")
	m.articles[a.ID] = copyArticle(a)
	return nil
}

func (m memArticles) GetByID(_ context.Context, id string) (*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, apperr.ErrArticleNotFound
	}
	return copyArticle(a), nil
}

func (m memArticles) GetWithCreator(ctx context.Context, id string) (*entity.Article, error) {
	a, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[strings.ToLower(a.Creator)]; ok {
		a.CreatorInfo = &entity.PublicProfile{Name: u.Name, Email: u.Email, Image: u.Image}
	}
	return a, nil
}

func (m memArticles) GetMany(_ context.Context, ids []string) ([]*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Article
	for _, id := range ids {
		if a, ok := m.articles[id]; ok {
			out = append(out, copyArticle(a))
		}
	}
	return out, nil
}

func (m memArticles) UpdateContent(_ context.Context, a *entity.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.articles[a.ID]
	if !ok {
		return apperr.ErrArticleNotFound
	}
	next := copyArticle(a)
	next.ViewCount = cur.ViewCount
	m.articles[a.ID] = next
	return nil
}

func (m memArticles) Moderate(_ context.Context, id string, mod entity.Moderation) (*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, apperr.ErrArticleNotFound
	}
	if mod.Status != nil {
		a.Status = *mod.Status
		a.DeclineReason = mod.DeclineReason
	}
	if mod.IsPaid != nil {
		a.IsPaid = *mod.IsPaid
	}
	return copyArticle(a), nil
}

func (m memArticles) IncrementViews(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return 0, apperr.ErrArticleNotFound
	}
	a.ViewCount++
	return a.ViewCount, nil
}

func (m memArticles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return apperr.ErrArticleNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m memArticles) selectSorted(keep func(*entity.Article) bool) []*entity.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Article
	for _, a := range m.articles {
		if keep(a) {
			out = append(out, copyArticle(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m memArticles) ListApproved(_ context.Context, f entity.ArticleFilter) ([]*entity.Article, error) {
	return m.selectSorted(func(a *entity.Article) bool {
		if a.Status != entity.StatusApproved {
			return false
		}
		if f.Title != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(f.Title)) {
			return false
		}
		if f.Publisher != "" && a.Publisher.Name != f.Publisher {
			return false
		}
		if f.Tag != "" {
			hit := false
			for _, t := range a.Tags {
				if strings.Contains(strings.ToLower(t), strings.ToLower(f.Tag)) {
					hit = true
				}
			}
			return hit
		}
		return true
	}), nil
}

func (m memArticles) ListPremium(_ context.Context) ([]*entity.Article, error) {
	return m.selectSorted(func(a *entity.Article) bool {
		return a.Status == entity.StatusApproved && a.IsPaid
	}), nil
}

func (m memArticles) TopApproved(_ context.Context, page entity.Page) ([]*entity.Article, error) {
	out := m.selectSorted(func(a *entity.Article) bool { return a.Status == entity.StatusApproved })
	sort.SliceStable(out, func(i, j int) bool { return out[i].ViewCount > out[j].ViewCount })
	return window(out, page), nil
}

func (m memArticles) ListAll(_ context.Context, page entity.Page) ([]*entity.Article, error) {
	return window(m.selectSorted(func(*entity.Article) bool { return true }), page), nil
}

func (m memArticles) ListByCreator(_ context.Context, email string) ([]*entity.Article, error) {
	return m.selectSorted(func(a *entity.Article) bool { return strings.EqualFold(a.Creator, email) }), nil
}

func window[T any](in []T, page entity.Page) []T {
	if page.Skip >= len(in) {
		return []T{}
	}
	in = in[page.Skip:]
	if page.Limit > 0 && page.Limit < len(in) {
		in = in[:page.Limit]
	}
	return in
}

// ---- ledger ----

// memLedger appends without touching users; it has no transactional promotion.
type memLedger struct{ *memStore }

var _ repo.SubscriptionRepository = memLedger{}

func (m memLedger) Append(_ context.Context, rec *entity.SubscriptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *rec
	m.subs = append(m.subs, &c)
	return nil
}

func (m memLedger) ListByEmail(_ context.Context, email string) ([]*entity.SubscriptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.SubscriptionRecord
	for i := len(m.subs) - 1; i >= 0; i-- {
		if strings.EqualFold(m.subs[i].Email, email) {
			c := *m.subs[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// atomicLedger appends and promotes under one lock, like the transactional store.
type atomicLedger struct{ memLedger }

var _ repo.AtomicLedger = atomicLedger{}

func (m atomicLedger) AppendAndPromote(_ context.Context, rec *entity.SubscriptionRecord, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(rec.Email)]
	if !ok {
		return apperr.ErrUserNotFound
	}
	c := *rec
	m.subs = append(m.subs, &c)
	u.IsPremium = true
	u.PremiumExpiresAt = &expiresAt
	return nil
}

// ---- analytics ----

type memAnalytics struct{ *memStore }

var _ repo.AnalyticsRepository = memAnalytics{}

func (m memAnalytics) CountArticles(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.articles)), nil
}

func (m memAnalytics) CountUsers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m memAnalytics) CountPremium(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.PremiumActive(now) {
			n++
		}
	}
	return n, nil
}

func (m memAnalytics) CountPublishers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.publishers)), nil
}

func (m memAnalytics) CountSubscriptions(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.subs)), nil
}

func (m memAnalytics) TotalRevenue(context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, s := range m.subs {
		sum += s.Price
	}
	return sum, nil
}

func (m memAnalytics) ArticlesPerPublisher(context.Context) ([]entity.PublisherBreakdown, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agg := map[string]*entity.PublisherBreakdown{}
	for _, a := range m.articles {
		b, ok := agg[a.Publisher.Name]
		if !ok {
			b = &entity.PublisherBreakdown{Name: a.Publisher.Name}
			agg[a.Publisher.Name] = b
		}
		b.TotalArticles++
		b.TotalViews += a.ViewCount
	}
	out := make([]entity.PublisherBreakdown, 0, len(agg))
	for _, b := range agg {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memAnalytics) UserStats(_ context.Context, email string) (entity.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st entity.UserStats
	for _, a := range m.articles {
		if strings.EqualFold(a.Creator, email) {
			st.Articles++
			st.TotalViews += a.ViewCount
		}
	}
	for _, s := range m.subs {
		if strings.EqualFold(s.Email, email) {
			st.TotalPayment += s.Price
		}
	}
	return st, nil
}

// ---- adapters ----

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateIntent(ctx context.Context, amount int64, currency, email string) (*PaymentIntent, error) {
	args := m.Called(ctx, amount, currency, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) Index(ctx context.Context, a *entity.Article) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockIndex) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	args := m.Called(ctx, q, size)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type mockImages struct{ mock.Mock }

func (m *mockImages) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, objectPath, contentType, r)
	return args.String(0), args.Error(1)
}
