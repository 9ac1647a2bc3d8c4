package entity

import "time"

// ArticleStatus is the moderation state of an article.
type ArticleStatus string

const (
	StatusPending  ArticleStatus = "pending"
	StatusApproved ArticleStatus = "approved"
	StatusRejected ArticleStatus = "rejected"
)

// Valid reports whether s is a known moderation state.
func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// PublisherSnapshot is the publisher copy embedded into an article at write time.
type PublisherSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Article is a news item. Publisher is a denormalized snapshot, Creator a weak reference by email.
type Article struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Body          string            `json:"body,omitempty"`
	Image         string            `json:"image"`
	Tags          []string          `json:"tags,omitempty"`
	Creator       string            `json:"creator"`
	Publisher     PublisherSnapshot `json:"publisher"`
	Status        ArticleStatus     `json:"status"`
	IsPaid        bool              `json:"isPaid"`
	ViewCount     int64             `json:"viewCount"`
	DeclineReason string            `json:"declineReason,omitempty"`
	Date          time.Time         `json:"date"`
	CreatedAt     time.Time         `json:"-"`

	// CreatorInfo is populated on joined reads only.
	CreatorInfo *PublicProfile `json:"userInfo,omitempty"`
	// Redacted is true when paid content was stripped for the caller.
	Redacted bool `json:"redacted,omitempty"`
}

// ArticleContent is the caller-editable part of an article.
type ArticleContent struct {
	Title       string
	Description string
	Body        string
	Image       string
	Tags        []string
	PublisherID string
}

// ApplyEdit replaces content and forces re-moderation: any edit resets status and the paid flag.
func (a *Article) ApplyEdit(c ArticleContent, pub PublisherSnapshot) {
	a.Title = c.Title
	a.Description = c.Description
	a.Body = c.Body
	a.Image = c.Image
	a.Tags = c.Tags
	a.Publisher = pub
	a.Status = StatusPending
	a.IsPaid = false
	a.DeclineReason = ""
}

// Moderation is an administrator decision on an article.
type Moderation struct {
	Status        *ArticleStatus
	IsPaid        *bool
	DeclineReason string
}

// ArticleFilter narrows the public approved listing.
type ArticleFilter struct {
	Title     string
	Tag       string
	Publisher string
}

// Page is a skip/limit window.
type Page struct {
	Skip  int
	Limit int
}
