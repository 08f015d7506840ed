package flashcard

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/ayusman/flashgesture/internal/gesture"
)

// ErrNoCard is returned when a gesture is confirmed in a window that has no card.
var ErrNoCard = stderrors.New("no card selected")

// GestureSubmitter submits gesture-confirmed ratings. Each activation window selects its
// own card, so a confirmation delivered after the next card was shown still rates the card
// it was held for.
type GestureSubmitter struct {
	svc *Service

	mu    sync.Mutex
	cards map[uint64]string
}

// NewGestureSubmitter creates a submitter with no card selected.
func NewGestureSubmitter(svc *Service) *GestureSubmitter {
	return &GestureSubmitter{svc: svc, cards: make(map[uint64]string)}
}

// Select binds card id to window. Windows older than the previous one are forgotten.
func (g *GestureSubmitter) Select(window uint64, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for w := range g.cards {
		if w+1 < window {
			delete(g.cards, w)
		}
	}
	if id == "" {
		delete(g.cards, window)
		return
	}
	g.cards[window] = id
}

// Card returns the card bound to window.
func (g *GestureSubmitter) Card(window uint64) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cards[window]
}

// Submit rates the card bound to window and releases it, so a card is rated at most once
// per window.
func (g *GestureSubmitter) Submit(ctx context.Context, window uint64, rating gesture.Rating) (*Review, error) {
	g.mu.Lock()
	id := g.cards[window]
	delete(g.cards, window)
	g.mu.Unlock()

	if id == "" {
		return nil, ErrNoCard
	}
	return g.svc.Rate(ctx, id, rating, SourceGesture)
}
