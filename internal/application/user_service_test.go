package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
)

func newUserService(t *testing.T, st *memStore, now *time.Time) *UserService {
	t.Helper()
	roles, _ := newResolver(t, st, now)
	svc := NewUserService(memUsers{st}, memAnalytics{st}, roles, policy.NewEngine(policy.Options{}), nil)
	svc.Now = fixedClock(now)
	return svc
}

func TestRegister_Idempotent(t *testing.T) {
	st := newMemStore()
	now := t0
	svc := newUserService(t, st, &now)
	ctx := context.Background()

	u, created, err := svc.Register(ctx, RegisterInput{Email: "new@x.io", Name: "New"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, u.IsAdmin)
	assert.False(t, u.IsPremium)

	// elevate, then register again: nothing changes
	require.NoError(t, memUsers{st}.SetAdmin(ctx, "new@x.io", true))
	again, created, err := svc.Register(ctx, RegisterInput{Email: "new@x.io", Name: "Renamed"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, again)

	stored, err := memUsers{st}.GetByEmail(ctx, "new@x.io")
	require.NoError(t, err)
	assert.Equal(t, "New", stored.Name)
	assert.True(t, stored.IsAdmin)
	assert.Len(t, st.users, 1)
}

func TestRegister_InvalidEmail(t *testing.T) {
	now := t0
	svc := newUserService(t, newMemStore(), &now)
	_, _, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestUpdateRole(t *testing.T) {
	st := newMemStore()
	exp := t0.Add(time.Hour)
	seedUser(st, entity.User{Email: "me@x.io", IsPremium: true, PremiumExpiresAt: &exp})
	now := t0
	svc := newUserService(t, st, &now)
	ctx := context.Background()
	me := policy.Identified("me@x.io", entity.Role{Email: "me@x.io", IsPremium: true})
	yes, no := true, false

	_, err := svc.UpdateRole(ctx, me, "me@x.io", RoleUpdate{IsAdmin: &yes})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.UpdateRole(ctx, me, "me@x.io", RoleUpdate{IsPremium: &yes})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.UpdateRole(ctx, me, "me@x.io", RoleUpdate{})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	role, err := svc.UpdateRole(ctx, me, "me@x.io", RoleUpdate{IsPremium: &no})
	require.NoError(t, err)
	assert.False(t, role.IsPremium)

	role, err = svc.UpdateRole(ctx, admin(), "me@x.io", RoleUpdate{IsAdmin: &yes})
	require.NoError(t, err)
	assert.True(t, role.IsAdmin)

	other := policy.Identified("you@x.io", entity.Role{Email: "you@x.io"})
	_, err = svc.UpdateRole(ctx, other, "me@x.io", RoleUpdate{IsPremium: &no})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestDetail_EvaluatesPremiumAndStats(t *testing.T) {
	st := newMemStore()
	exp := t0.Add(-time.Minute)
	seedUser(st, entity.User{Email: "me@x.io", IsPremium: true, PremiumExpiresAt: &exp})
	st.articles["a1"] = &entity.Article{ID: "a1", Creator: "me@x.io", ViewCount: 4}
	st.articles["a2"] = &entity.Article{ID: "a2", Creator: "me@x.io", ViewCount: 6}
	st.subs = append(st.subs, &entity.SubscriptionRecord{Email: "me@x.io", Price: 2.5})
	now := t0
	svc := newUserService(t, st, &now)
	me := policy.Identified("me@x.io", entity.Role{Email: "me@x.io"})

	d, err := svc.Detail(context.Background(), me, "me@x.io")
	require.NoError(t, err)
	assert.False(t, d.User.IsPremium)
	assert.Equal(t, entity.UserStats{Articles: 2, TotalViews: 10, TotalPayment: 2.5}, d.Stats)

	_, err = svc.Detail(context.Background(), policy.Anonymous(), "me@x.io")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestUpdateProfileAndList(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "me@x.io", Name: "Me", Image: "old.png"})
	now := t0
	svc := newUserService(t, st, &now)
	ctx := context.Background()
	id := st.users["me@x.io"].ID
	me := policy.Identified("me@x.io", entity.Role{Email: "me@x.io"})

	u, err := svc.UpdateProfile(ctx, me, id, ProfileUpdate{Name: "New Me"})
	require.NoError(t, err)
	assert.Equal(t, "New Me", u.Name)
	assert.Equal(t, "old.png", u.Image)

	other := policy.Identified("you@x.io", entity.Role{Email: "you@x.io"})
	_, err = svc.UpdateProfile(ctx, other, id, ProfileUpdate{Name: "x"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.List(ctx, me, entity.Page{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	all, err := svc.List(ctx, admin(), entity.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRoleView(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "me@x.io"})
	now := t0
	svc := newUserService(t, st, &now)
	me := policy.Identified("me@x.io", entity.Role{Email: "me@x.io"})

	r, err := svc.Role(context.Background(), me, "me@x.io")
	require.NoError(t, err)
	assert.False(t, r.IsAdmin)

	_, err = svc.Role(context.Background(), me, "boss@x.io")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
