package entity

import "time"

// Payment bounds. Prices fit NUMERIC(12, 2); a duration must keep now+duration
// inside time.Duration.
const (
	MinPrice           = 0.01
	MaxPrice           = 1_000_000
	MaxDurationMinutes = 100 * 365 * 24 * 60
)

// SubscriptionRecord is an immutable ledger entry for one payment.
type SubscriptionRecord struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"durationMinutes"`
	Plan            string    `json:"plan,omitempty"`
	TransactionID   string    `json:"transactionId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ExpiryFrom returns the premium expiry granted by this entry when applied at t.
func (r *SubscriptionRecord) ExpiryFrom(t time.Time) time.Time {
	return t.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// PaymentReceipt is the event published after a ledger entry commits.
type PaymentReceipt struct {
	EntryID          string    `json:"entry_id"`
	Email            string    `json:"email"`
	Price            float64   `json:"price"`
	DurationMinutes  int       `json:"duration_minutes"`
	Plan             string    `json:"plan,omitempty"`
	PremiumExpiresAt time.Time `json:"premium_expires_at"`
	PaidAt           time.Time `json:"paid_at"`
}
