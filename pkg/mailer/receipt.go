package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
	"github.com/oksasatya/pixel-news/pkg/helpers"
	mailtpl "github.com/oksasatya/pixel-news/pkg/mailer/templates"
)

// ErrUndeliverable marks messages that will never succeed; they are dropped instead of requeued.
var ErrUndeliverable = errors.New("undeliverable receipt")

// ReceiptMailer turns payment receipts from the queue into emails.
type ReceiptMailer struct {
	Sender      Sender
	CompanyName string
	SupportURL  string
	Logger      *logrus.Logger
}

// BuildReceipt renders the receipt email for r.
func (m *ReceiptMailer) BuildReceipt(r entity.PaymentReceipt) (EmailJob, error) {
	data := mailtpl.NewReceiptData(r.Email, r.Price, r.DurationMinutes,
		mailtpl.WithCompany(m.CompanyName),
		mailtpl.WithSupportURL(m.SupportURL),
		mailtpl.WithPlan(r.Plan),
		mailtpl.WithEntryID(r.EntryID),
		mailtpl.WithPaidAt(r.PaidAt),
		mailtpl.WithExpiresAt(r.PremiumExpiresAt),
	)
	out, err := mailtpl.Render(mailtpl.SubscriptionReceipt, data)
	if err != nil {
		return EmailJob{}, err
	}
	return EmailJob{To: r.Email, Subject: out.Subject, Text: out.Text, HTML: out.HTML}, nil
}

// Handle decodes one queue message and sends its receipt. Errors wrapping
// ErrUndeliverable must not be retried.
func (m *ReceiptMailer) Handle(ctx context.Context, body []byte) error {
	var r entity.PaymentReceipt
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %v", ErrUndeliverable, err)
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("%w: missing recipient", ErrUndeliverable)
	}
	job, err := m.BuildReceipt(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUndeliverable, err)
	}
	if err := m.Sender.Send(ctx, job); err != nil {
		return fmt.Errorf("send receipt %s: %w", r.EntryID, err)
	}
	helpers.LogInfo(m.Logger, "receipt sent", logrus.Fields{"entry_id": r.EntryID, "email": r.Email})
	return nil
}
