package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
)

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func seedUser(st *memStore, u entity.User) {
	_, _ = memUsers{st}.CreateIfAbsent(context.Background(), &u)
}

func newResolver(t *testing.T, st *memStore, now *time.Time) (*RoleResolver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRoleResolver(memUsers{st}, rdb, time.Minute, nil)
	r.Now = fixedClock(now)
	return r, mr
}

func TestResolve_ExpiryEvaluatedAtReadTime(t *testing.T) {
	st := newMemStore()
	exp := t0.Add(time.Hour)
	seedUser(st, entity.User{Email: "p@x.io", IsPremium: true, PremiumExpiresAt: &exp})

	now := t0
	r, _ := newResolver(t, st, &now)
	ctx := context.Background()

	role, err := r.Resolve(ctx, "p@x.io")
	require.NoError(t, err)
	assert.True(t, role.IsPremium)
	assert.Equal(t, entity.TierPremium, role.Tier())

	// the cached flags are still "premium", but the window has closed
	now = t0.Add(2 * time.Hour)
	role, err = r.Resolve(ctx, "p@x.io")
	require.NoError(t, err)
	assert.False(t, role.IsPremium)
	assert.Nil(t, role.PremiumExpiresAt)
}

func TestResolve_CachesAndInvalidates(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "a@x.io"})
	now := t0
	r, mr := newResolver(t, st, &now)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "a@x.io")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "A@x.io")
	require.NoError(t, err)
	assert.Equal(t, 1, st.getByEmailCalls)
	assert.True(t, mr.Exists(roleKey("a@x.io")))

	require.NoError(t, memUsers{st}.SetAdmin(ctx, "a@x.io", true))
	r.Invalidate(ctx, "a@x.io")
	assert.False(t, mr.Exists(roleKey("a@x.io")))

	role, err := r.Resolve(ctx, "a@x.io")
	require.NoError(t, err)
	assert.True(t, role.IsAdmin)
}

func TestResolve_UnknownUser(t *testing.T) {
	st := newMemStore()
	now := t0
	r, _ := newResolver(t, st, &now)

	_, err := r.Resolve(context.Background(), "ghost@x.io")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	c, err := r.Caller(context.Background(), "ghost@x.io")
	require.NoError(t, err)
	assert.True(t, c.Authenticated)
	assert.False(t, c.Admin())
	assert.Equal(t, entity.TierFree, c.Tier())
}

func TestResolve_RetriesOnceOnTimeout(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "a@x.io", IsAdmin: true})
	st.failGetByEmail = []error{apperr.FromStore("get user", context.DeadlineExceeded)}
	now := t0
	r := NewRoleResolver(memUsers{st}, nil, 0, nil)
	r.Now = fixedClock(&now)

	role, err := r.Resolve(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.True(t, role.IsAdmin)
	assert.Equal(t, 2, st.getByEmailCalls)
}

func TestResolve_SecondFailureSurfaces(t *testing.T) {
	st := newMemStore()
	boom := apperr.FromStore("get user", errors.New("connection reset"))
	st.failGetByEmail = []error{boom, boom}
	r := NewRoleResolver(memUsers{st}, nil, 0, nil)

	_, err := r.Caller(context.Background(), "a@x.io")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, 2, st.getByEmailCalls)
}

func TestResolve_RedisDownFallsBackToStore(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "a@x.io"})
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	r := NewRoleResolver(memUsers{st}, rdb, time.Minute, nil)

	_, err := r.Resolve(context.Background(), "a@x.io")
	require.NoError(t, err)
}
