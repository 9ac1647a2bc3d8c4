package entity

import "time"

// Tier is the caller state derived from identity and the subscription ledger.
type Tier int

const (
	TierAnonymous Tier = iota
	TierFree
	TierPremium
)

func (t Tier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierPremium:
		return "premium"
	default:
		return "anonymous"
	}
}

// Role is the resolved, time-evaluated view of a user's flags.
type Role struct {
	Email            string     `json:"email"`
	IsAdmin          bool       `json:"isAdmin"`
	IsPremium        bool       `json:"isPremium"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
}

// RoleOf evaluates u at now. An expired premium window reports IsPremium=false
// whatever the stored flag says.
func RoleOf(u *User, now time.Time) Role {
	r := Role{Email: u.Email, IsAdmin: u.IsAdmin}
	if u.PremiumActive(now) {
		r.IsPremium = true
		exp := *u.PremiumExpiresAt
		r.PremiumExpiresAt = &exp
	}
	return r
}

// Tier returns the tagged caller state for an identified user.
func (r Role) Tier() Tier {
	if r.IsPremium {
		return TierPremium
	}
	return TierFree
}
