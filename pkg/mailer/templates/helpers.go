package templates

import (
	"fmt"
	"strings"
	"time"
)

// ReceiptData feeds the subscription receipt templates.
type ReceiptData struct {
	Email       string
	CompanyName string
	SupportURL  string

	EntryID   string
	Plan      string
	Amount    string
	Duration  string
	PaidAt    time.Time
	ExpiresAt time.Time
}

type Option func(*ReceiptData)

func WithCompany(name string) Option   { return func(d *ReceiptData) { d.CompanyName = strings.TrimSpace(name) } }
func WithSupportURL(url string) Option { return func(d *ReceiptData) { d.SupportURL = strings.TrimSpace(url) } }
func WithPlan(plan string) Option      { return func(d *ReceiptData) { d.Plan = strings.TrimSpace(plan) } }
func WithPaidAt(t time.Time) Option    { return func(d *ReceiptData) { d.PaidAt = t.UTC() } }
func WithExpiresAt(t time.Time) Option { return func(d *ReceiptData) { d.ExpiresAt = t.UTC() } }
func WithEntryID(id string) Option     { return func(d *ReceiptData) { d.EntryID = id } }

// NewReceiptData builds receipt template data for a price in major units and a
// duration in minutes.
func NewReceiptData(email string, price float64, minutes int, opts ...Option) ReceiptData {
	d := ReceiptData{
		Email:    email,
		Amount:   fmt.Sprintf("$%.2f", price),
		Duration: FormatDuration(minutes),
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// FormatDuration renders minutes as the largest whole unit, e.g. "1 day" or "90 minutes".
func FormatDuration(minutes int) string {
	unit := func(n int, name string) string {
		if n == 1 {
			return "1 " + name
		}
		return fmt.Sprintf("%d %ss", n, name)
	}
	switch {
	case minutes >= 24*60 && minutes%(24*60) == 0:
		return unit(minutes/(24*60), "day")
	case minutes >= 60 && minutes%60 == 0:
		return unit(minutes/60, "hour")
	default:
		return unit(minutes, "minute")
	}
}
