package policy

import (
	"strings"

	"github.com/oksasatya/pixel-news/internal/domain/entity"
)

// Caller is the identity a request acts as, with its role already resolved.
type Caller struct {
	Email         string
	Authenticated bool
	Role          entity.Role
}

// Anonymous is the caller without a valid credential.
func Anonymous() Caller { return Caller{} }

// Identified builds a caller from verified claims and a resolved role.
func Identified(email string, role entity.Role) Caller {
	return Caller{Email: email, Authenticated: true, Role: role}
}

func (c Caller) Admin() bool   { return c.Authenticated && c.Role.IsAdmin }
func (c Caller) Premium() bool { return c.Authenticated && c.Role.IsPremium }

// Tier is the tagged caller state: anonymous, free or premium.
func (c Caller) Tier() entity.Tier {
	if !c.Authenticated {
		return entity.TierAnonymous
	}
	return c.Role.Tier()
}

// Owns reports whether email identifies the caller.
func (c Caller) Owns(email string) bool {
	return c.Authenticated && email != "" && strings.EqualFold(c.Email, email)
}
