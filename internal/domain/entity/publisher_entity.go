package entity

import "time"

// Publisher is a news outlet; its snapshot is copied into articles.
type Publisher struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot returns the embeddable copy of p.
func (p *Publisher) Snapshot() PublisherSnapshot {
	return PublisherSnapshot{ID: p.ID, Name: p.Name, Logo: p.Logo}
}
