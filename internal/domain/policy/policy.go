// Package policy decides, per request, what a caller may do with a resource.
//
// Precedence is fixed: administrator privilege beats ownership, and ownership
// beats premium gating. A creator can always read and manage their own content.
package policy

import (
	"strings"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/internal/domain/entity"
)

type Action string

const (
	ActionRead          Action = "read"
	ActionList          Action = "list"
	ActionCreate        Action = "create"
	ActionUpdateContent Action = "update_content"
	ActionModerate      Action = "moderate"
	ActionDelete        Action = "delete"
	ActionUpload        Action = "upload"
	ActionUpdateProfile Action = "update_profile"
	ActionClearPremium  Action = "clear_premium"
	ActionGrantAdmin    Action = "grant_admin"
	ActionPay           Action = "pay"
)

type ResourceKind string

const (
	KindArticle   ResourceKind = "article"
	KindUser      ResourceKind = "user"
	KindPublisher ResourceKind = "publisher"
	KindAnalytics ResourceKind = "analytics"
	KindLedger    ResourceKind = "ledger"
)

// Resource identifies what an action targets. Owner is the email owning a user or
// ledger resource, or the creator whose articles are listed.
type Resource struct {
	Kind    ResourceKind
	Article *entity.Article
	Owner   string
}

func ArticleResource(a *entity.Article) Resource {
	return Resource{Kind: KindArticle, Article: a, Owner: a.Creator}
}

func UserResource(email string) Resource { return Resource{Kind: KindUser, Owner: email} }

func LedgerResource(email string) Resource { return Resource{Kind: KindLedger, Owner: email} }

// Collection targets a whole resource kind, e.g. the admin article listing.
func Collection(kind ResourceKind) Resource { return Resource{Kind: kind} }

// TeaserFields are stripped from paid articles shown to callers without access.
var TeaserFields = []string{"body", "tags"}

type Effect int

const (
	Deny Effect = iota
	Allow
	AllowRedacted
)

func (e Effect) String() string {
	switch e {
	case Allow:
		return "allow"
	case AllowRedacted:
		return "allow_redacted"
	default:
		return "deny"
	}
}

// Decision is the outcome of an evaluation.
type Decision struct {
	Effect Effect
	Reason string
	Redact []string
}

// Allowed is true for both full and redacted access.
func (d Decision) Allowed() bool { return d.Effect != Deny }

func (d Decision) IsRedacted() bool { return d.Effect == AllowRedacted }

func allow() Decision { return Decision{Effect: Allow} }

func deny(reason string) Decision { return Decision{Effect: Deny, Reason: reason} }

func redacted(fields []string) Decision { return Decision{Effect: AllowRedacted, Redact: fields} }

// Options selects the product variants of the rules.
type Options struct {
	// PremiumTeaser shows paid articles to non-premium callers with TeaserFields stripped
	// instead of denying them.
	PremiumTeaser bool
	// CreatorMayDelete lets creators delete their own articles.
	CreatorMayDelete bool
}

type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Evaluate decides whether c may perform act on r.
func (e *Engine) Evaluate(c Caller, act Action, r Resource) Decision {
	if !c.Authenticated && requiresIdentity(act, r) {
		return deny("authentication required")
	}
	switch r.Kind {
	case KindArticle:
		return e.article(c, act, r)
	case KindUser:
		return user(c, act, r)
	case KindPublisher:
		switch act {
		case ActionRead, ActionList:
			return allow()
		case ActionCreate:
			return adminOnly(c)
		}
	case KindAnalytics:
		if act == ActionRead {
			return adminOnly(c)
		}
	case KindLedger:
		switch act {
		case ActionPay, ActionCreate, ActionRead, ActionList:
			return selfOrAdmin(c, r.Owner)
		}
	}
	return deny("action not permitted")
}

// Authorize is Evaluate turned into an error: nil when allowed (redacted or not),
// Unauthenticated for anonymous callers, Forbidden otherwise.
func (e *Engine) Authorize(c Caller, act Action, r Resource) (Decision, error) {
	d := e.Evaluate(c, act, r)
	if d.Allowed() {
		return d, nil
	}
	if !c.Authenticated {
		return d, apperr.New(apperr.KindUnauthenticated, d.Reason)
	}
	return d, apperr.New(apperr.KindForbidden, d.Reason)
}

// requiresIdentity lists everything not open to anonymous callers.
func requiresIdentity(act Action, r Resource) bool {
	switch r.Kind {
	case KindPublisher:
		return act != ActionRead && act != ActionList
	case KindArticle:
		// reads are gated by the article rules themselves
		return act != ActionRead
	}
	return true
}

func (e *Engine) article(c Caller, act Action, r Resource) Decision {
	switch act {
	case ActionRead:
		if r.Article == nil {
			return deny("no article")
		}
		return e.readArticle(c, r.Article)
	case ActionList:
		if r.Owner == "" {
			return adminOnly(c)
		}
		return selfOrAdmin(c, r.Owner)
	case ActionCreate, ActionUpload:
		return allow()
	case ActionModerate:
		return adminOnly(c)
	case ActionUpdateContent:
		return selfOrAdmin(c, r.Owner)
	case ActionDelete:
		if c.Admin() {
			return allow()
		}
		if e.opts.CreatorMayDelete && c.Owns(r.Owner) {
			return allow()
		}
		return deny("only administrators may delete articles")
	}
	return deny("action not permitted")
}

func (e *Engine) readArticle(c Caller, a *entity.Article) Decision {
	if c.Admin() || c.Owns(a.Creator) {
		return allow()
	}
	if a.Status != entity.StatusApproved {
		return deny("article is not published")
	}
	if !a.IsPaid {
		return allow()
	}
	if c.Authenticated && c.Premium() {
		return allow()
	}
	if e.opts.PremiumTeaser {
		return redacted(TeaserFields)
	}
	if !c.Authenticated {
		return deny("authentication required")
	}
	return deny("premium subscription required")
}

func user(c Caller, act Action, r Resource) Decision {
	switch act {
	case ActionList, ActionGrantAdmin:
		return adminOnly(c)
	case ActionRead, ActionUpdateProfile, ActionClearPremium:
		return selfOrAdmin(c, r.Owner)
	}
	return deny("action not permitted")
}

func adminOnly(c Caller) Decision {
	if c.Admin() {
		return allow()
	}
	return deny("administrator privilege required")
}

func selfOrAdmin(c Caller, owner string) Decision {
	if c.Admin() || c.Owns(owner) {
		return allow()
	}
	return deny("resource belongs to another user")
}

// Showcase is the read decision for ranked front-page views. Approved articles
// the caller may not read in full still appear, trimmed to TeaserFields.
func (e *Engine) Showcase(c Caller, a *entity.Article) Decision {
	d := e.Evaluate(c, ActionRead, ArticleResource(a))
	if !d.Allowed() && a.Status == entity.StatusApproved {
		return redacted(TeaserFields)
	}
	return d
}

// Redact returns a teaser copy of a when d strips fields; otherwise a itself.
func Redact(a *entity.Article, d Decision) *entity.Article {
	if !d.IsRedacted() {
		return a
	}
	out := *a
	for _, f := range d.Redact {
		switch strings.ToLower(f) {
		case "body":
			out.Body = ""
		case "tags":
			out.Tags = nil
		}
	}
	out.Redacted = true
	return &out
}
