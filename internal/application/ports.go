package application

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// ArticleIndex is the full-text index over approved articles.
type ArticleIndex interface {
	Index(ctx context.Context, a *entity.Article) error
	Remove(ctx context.Context, id string) error
	// Search returns matching article ids ordered by relevance.
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// ImageStore persists uploaded article images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// ReceiptPublisher hands payment receipts to the mail pipeline.
type ReceiptPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// PaymentIntent is what the client needs to confirm a card payment.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// PaymentGateway creates payment intents at the payment provider.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, email string) (*PaymentIntent, error)
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

func orNop(l *logrus.Logger) *logrus.Logger {
	if l == nil {
		return helpers.NewNopLogger()
	}
	return l
}

// retry runs an idempotent read and repeats it once on a timeout or upstream failure.
func retry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err != nil && apperr.Retryable(err) && ctx.Err() == nil {
		return fn(ctx)
	}
	return v, err
}
