package repository

import (
	"context"
	"time"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
)

// SubscriptionRepository is the append-only payment ledger.
type SubscriptionRepository interface {
	Append(ctx context.Context, rec *entity.SubscriptionRecord) error
	ListByEmail(ctx context.Context, email string) ([]*entity.SubscriptionRecord, error)
}

// AtomicLedger is implemented by stores able to append an entry and promote the
// user to premium in a single transaction.
type AtomicLedger interface {
	AppendAndPromote(ctx context.Context, rec *entity.SubscriptionRecord, expiresAt time.Time) error
}
