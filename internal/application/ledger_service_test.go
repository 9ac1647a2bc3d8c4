package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
)

func payer(email string) policy.Caller {
	return policy.Identified(email, entity.Role{Email: email})
}

func admin() policy.Caller {
	return policy.Identified("boss@x.io", entity.Role{Email: "boss@x.io", IsAdmin: true})
}

func newLedger(t *testing.T, st *memStore, atomic bool, now *time.Time) (*LedgerService, *RoleResolver, *mockPublisher) {
	t.Helper()
	roles, _ := newResolver(t, st, now)
	pub := &mockPublisher{}
	var subs = memLedger{st}
	svc := NewLedgerService(subs, memUsers{st}, roles, policy.NewEngine(policy.Options{}), pub, nil)
	if atomic {
		svc.Subs = atomicLedger{memLedger{st}}
	}
	svc.Now = fixedClock(now)
	return svc, roles, pub
}

func TestRecordPayment_SixtyMinutes(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		st := newMemStore()
		seedUser(st, entity.User{Email: "p@x.io"})
		now := t0
		svc, roles, pub := newLedger(t, st, atomic, &now)
		pub.On("PublishJSON", mock.Anything, mock.AnythingOfType("entity.PaymentReceipt")).Return(nil).Once()

		// warm the cache with the free role
		before, err := roles.Resolve(context.Background(), "p@x.io")
		require.NoError(t, err)
		require.False(t, before.IsPremium)

		res, err := svc.RecordPayment(context.Background(), payer("p@x.io"), PaymentInput{Email: "p@x.io", Price: 5, DurationMinutes: 60})
		require.NoError(t, err)
		assert.Equal(t, int64(3_600_000), res.PremiumExpiresAt.Sub(t0).Milliseconds())
		assert.Equal(t, t0, res.Entry.CreatedAt)
		assert.NotEmpty(t, res.Entry.ID)

		role, err := roles.Resolve(context.Background(), "p@x.io")
		require.NoError(t, err)
		assert.True(t, role.IsPremium, "atomic=%v", atomic)

		now = t0.Add(61 * time.Minute)
		role, err = roles.Resolve(context.Background(), "p@x.io")
		require.NoError(t, err)
		assert.False(t, role.IsPremium)

		require.Len(t, st.subs, 1)
		pub.AssertExpectations(t)
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "p@x.io"})
	now := t0
	svc, _, _ := newLedger(t, st, true, &now)

	tests := []struct {
		name string
		in   PaymentInput
	}{
		{"zero price", PaymentInput{Email: "p@x.io", Price: 0, DurationMinutes: 60}},
		{"negative price", PaymentInput{Email: "p@x.io", Price: -1, DurationMinutes: 60}},
		{"zero duration", PaymentInput{Email: "p@x.io", Price: 1, DurationMinutes: 0}},
		{"sub-cent price", PaymentInput{Email: "p@x.io", Price: 0.004, DurationMinutes: 60}},
		{"price too large", PaymentInput{Email: "p@x.io", Price: entity.MaxPrice + 1, DurationMinutes: 60}},
		{"duration overflows", PaymentInput{Email: "p@x.io", Price: 1, DurationMinutes: 200_000_000}},
		{"duration above cap", PaymentInput{Email: "p@x.io", Price: 1, DurationMinutes: entity.MaxDurationMinutes + 1}},
		{"no email", PaymentInput{Price: 1, DurationMinutes: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPayment(context.Background(), payer("p@x.io"), tt.in)
			assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
		})
	}
	assert.Empty(t, st.subs)
}

func TestRecordPayment_LongestDurationStaysInFuture(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "p@x.io"})
	now := t0
	svc, roles, pub := newLedger(t, st, true, &now)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.RecordPayment(context.Background(), payer("p@x.io"), PaymentInput{Email: "p@x.io", Price: 1, DurationMinutes: entity.MaxDurationMinutes})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(entity.MaxDurationMinutes)*time.Minute, res.PremiumExpiresAt.Sub(t0))

	role, err := roles.Resolve(context.Background(), "p@x.io")
	require.NoError(t, err)
	assert.True(t, role.IsPremium)
}

func TestRecordPayment_Authorization(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "p@x.io"})
	now := t0
	svc, _, pub := newLedger(t, st, true, &now)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

	in := PaymentInput{Email: "p@x.io", Price: 5, DurationMinutes: 60}

	_, err := svc.RecordPayment(context.Background(), policy.Anonymous(), in)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	_, err = svc.RecordPayment(context.Background(), payer("other@x.io"), in)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.RecordPayment(context.Background(), admin(), in)
	assert.NoError(t, err)
}

func TestRecordPayment_PartialFailureKeepsEntry(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "p@x.io"})
	st.failSetPremium = errors.New("connection lost")
	now := t0
	svc, _, pub := newLedger(t, st, false, &now)

	_, err := svc.RecordPayment(context.Background(), payer("p@x.io"), PaymentInput{Email: "p@x.io", Price: 5, DurationMinutes: 60})
	require.Error(t, err)
	assert.Equal(t, apperr.KindPartialFailure, apperr.KindOf(err))
	require.Len(t, st.subs, 1)
	assert.Contains(t, err.Error(), st.subs[0].ID)
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestRecordPayment_UnknownUser(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		st := newMemStore()
		now := t0
		svc, _, _ := newLedger(t, st, atomic, &now)

		_, err := svc.RecordPayment(context.Background(), admin(), PaymentInput{Email: "ghost@x.io", Price: 5, DurationMinutes: 60})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		assert.Empty(t, st.subs)
	}
}

func TestRecordPayment_PublishFailureIsBestEffort(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "p@x.io"})
	now := t0
	svc, _, pub := newLedger(t, st, true, &now)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := svc.RecordPayment(context.Background(), payer("p@x.io"), PaymentInput{Email: "p@x.io", Price: 5, DurationMinutes: 60})
	assert.NoError(t, err)
}

func TestRecordPayment_ConcurrentLastWriteWins(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "p@x.io"})
	now := t0
	svc, roles, pub := newLedger(t, st, true, &now)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for _, d := range []int{30, 60, 90} {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			_, err := svc.RecordPayment(context.Background(), payer("p@x.io"), PaymentInput{Email: "p@x.io", Price: 1, DurationMinutes: d})
			assert.NoError(t, err)
		}(d)
	}
	wg.Wait()

	role, err := roles.Resolve(context.Background(), "p@x.io")
	require.NoError(t, err)
	require.NotNil(t, role.PremiumExpiresAt)
	// durations never stack
	assert.LessOrEqual(t, role.PremiumExpiresAt.Sub(t0), 90*time.Minute)
	assert.Len(t, st.subs, 3)
}

func TestHistory(t *testing.T) {
	st := newMemStore()
	seedUser(st, entity.User{Email: "p@x.io"})
	now := t0
	svc, _, pub := newLedger(t, st, true, &now)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

	for i := 0; i < 2; i++ {
		_, err := svc.RecordPayment(context.Background(), payer("p@x.io"), PaymentInput{Email: "p@x.io", Price: 2, DurationMinutes: 10})
		require.NoError(t, err)
	}

	got, err := svc.History(context.Background(), payer("p@x.io"), "p@x.io")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.History(context.Background(), payer("other@x.io"), "p@x.io")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
