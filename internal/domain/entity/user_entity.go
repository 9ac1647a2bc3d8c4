package entity

import (
	"time"
)

// User is the aggregate root for the subscriber domain.
// Role flags are never written directly by handlers: IsPremium and PremiumExpiresAt
// change only through the subscription ledger or an explicit premium clear.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Image            string     `json:"image"`
	IsAdmin          bool       `json:"isAdmin"`
	IsPremium        bool       `json:"isPremium"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
}

// PremiumActive reports whether the stored premium window is still open at now.
func (u *User) PremiumActive(now time.Time) bool {
	return u.IsPremium && u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now)
}

// PublicProfile is the creator snapshot joined onto article reads; it never carries role fields.
type PublicProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// UserStats accompanies the user detail view.
type UserStats struct {
	Articles     int64   `json:"articles"`
	TotalViews   int64   `json:"totalViews"`
	TotalPayment float64 `json:"totalPayment"`
}
