// Package flashcard schedules cards with Leitner buckets and records ratings.
package flashcard

import (
	"time"

	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/store"
)

// Card is a flashcard as seen by callers.
type Card struct {
	ID        string    `json:"id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Tags      []string  `json:"tags"`
	Bucket    int       `json:"bucket"`
	CreatedAt time.Time `json:"createdAt"`
}

// Source tells how a rating was given.
type Source string

const (
	SourceButton  Source = store.SourceButton
	SourceGesture Source = store.SourceGesture
)

// Review is the outcome of rating a card.
type Review struct {
	CardID     string         `json:"cardId"`
	Rating     gesture.Rating `json:"rating"`
	Day        int            `json:"day"`
	FromBucket int            `json:"fromBucket"`
	ToBucket   int            `json:"toBucket"`
	Source     Source         `json:"source"`
}

func fromRow(c *store.Card) *Card {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Card{
		ID:        c.ID,
		Front:     c.Front,
		Back:      c.Back,
		Tags:      tags,
		Bucket:    c.Bucket,
		CreatedAt: c.CreatedAt,
	}
}
