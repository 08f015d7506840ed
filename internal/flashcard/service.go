package flashcard

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/logger"
	"github.com/ayusman/flashgesture/internal/store"
)

const dayKey = "day"

var (
	// ErrCardNotFound is returned for an unknown card ID.
	ErrCardNotFound = stderrors.New("card not found")
	// ErrInvalidRating is returned for RatingNone or an unknown rating.
	ErrInvalidRating = stderrors.New("invalid rating")
	// ErrInvalidCard is returned when a card has an empty side.
	ErrInvalidCard = stderrors.New("card needs a front and a back")
)

// Service is the flashcard learner: cards, the practice day and ratings.
type Service struct {
	store *store.Store
	log   *logger.Logger

	// mu serializes read-modify-write of buckets and the day counter.
	mu sync.Mutex
}

// NewService creates a Service on s.
func NewService(s *store.Store) *Service {
	return &Service{
		store: s,
		log:   logger.Named("flashcard"),
	}
}

// AddCard creates a card in bucket 0.
func (s *Service) AddCard(ctx context.Context, front, back string, tags []string) (*Card, error) {
	front, back = strings.TrimSpace(front), strings.TrimSpace(back)
	if front == "" || back == "" {
		return nil, ErrInvalidCard
	}

	row := &store.Card{Front: front, Back: back, Tags: tags}
	if err := s.store.Cards().Create(ctx, row); err != nil {
		return nil, errors.Wrap(err, "add card")
	}
	s.log.Debug().Str("card", row.ID).Msg("card added")
	return fromRow(row), nil
}

// Card returns one card.
func (s *Service) Card(ctx context.Context, id string) (*Card, error) {
	row, err := s.store.Cards().Get(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "card %s", id)
	}
	return fromRow(row), nil
}

// Cards returns every card in creation order.
func (s *Service) Cards(ctx context.Context) ([]*Card, error) {
	rows, err := s.store.Cards().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list cards")
	}
	return fromRows(rows), nil
}

// DeleteCard removes a card and its history.
func (s *Service) DeleteCard(ctx context.Context, id string) error {
	err := s.store.Cards().Delete(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return ErrCardNotFound
	}
	return errors.Wrapf(err, "delete card %s", id)
}

// Practice returns the cards due today, ordered by bucket then creation.
func (s *Service) Practice(ctx context.Context) ([]*Card, error) {
	day, err := s.Day(ctx)
	if err != nil {
		return nil, err
	}
	return s.PracticeOn(ctx, day)
}

// PracticeOn returns the cards due on day.
func (s *Service) PracticeOn(ctx context.Context, day int) ([]*Card, error) {
	rows, err := s.store.Cards().ListByBuckets(ctx, DueBuckets(day))
	if err != nil {
		return nil, errors.Wrapf(err, "practice day %d", day)
	}
	return fromRows(rows), nil
}

// Rate moves a card according to rating and records the review on the current day.
func (s *Service) Rate(ctx context.Context, cardID string, rating gesture.Rating, source Source) (*Review, error) {
	if !rating.Valid() {
		return nil, ErrInvalidRating
	}
	if source != SourceGesture {
		source = SourceButton
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := s.day(ctx)
	if err != nil {
		return nil, err
	}

	row, err := s.store.Cards().Get(ctx, cardID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "card %s", cardID)
	}

	review := &Review{
		CardID:     cardID,
		Rating:     rating,
		Day:        day,
		FromBucket: row.Bucket,
		ToBucket:   NextBucket(row.Bucket, rating),
		Source:     source,
	}
	err = s.store.History().Record(ctx, &store.HistoryEntry{
		CardID:     review.CardID,
		Rating:     string(review.Rating),
		Day:        review.Day,
		FromBucket: review.FromBucket,
		ToBucket:   review.ToBucket,
		Source:     string(review.Source),
	})
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "rate card %s", cardID)
	}

	s.log.Info().
		Str("card", cardID).
		Str("rating", string(rating)).
		Str("source", string(source)).
		Int("from", review.FromBucket).
		Int("to", review.ToBucket).
		Msg("card rated")
	return review, nil
}

// Hint returns the masked back of a card.
func (s *Service) Hint(ctx context.Context, cardID string) (string, error) {
	c, err := s.Card(ctx, cardID)
	if err != nil {
		return "", err
	}
	return Hint(c.Back), nil
}

// Day returns the learner's current day, starting at 0.
func (s *Service) Day(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day(ctx)
}

// AdvanceDay moves to the next day and returns it.
func (s *Service) AdvanceDay(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := s.day(ctx)
	if err != nil {
		return 0, err
	}
	day++
	if err := s.store.Meta().SetInt(ctx, dayKey, day); err != nil {
		return 0, errors.Wrap(err, "advance day")
	}
	s.log.Info().Int("day", day).Msg("day advanced")
	return day, nil
}

func (s *Service) day(ctx context.Context) (int, error) {
	day, err := s.store.Meta().Int(ctx, dayKey, 0)
	return day, errors.Wrap(err, "current day")
}

func fromRows(rows []*store.Card) []*Card {
	cards := make([]*Card, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, fromRow(r))
	}
	return cards
}
