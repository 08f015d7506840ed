package flashcard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := store.New(store.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s)
}

func TestService_AddCard(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	c, err := svc.AddCard(ctx, "  el perro ", "the dog", []string{"spanish"})
	require.NoError(t, err)
	assert.Equal(t, "el perro", c.Front)
	assert.Equal(t, 0, c.Bucket)
	assert.Equal(t, []string{"spanish"}, c.Tags)

	_, err = svc.AddCard(ctx, "", "x", nil)
	assert.ErrorIs(t, err, ErrInvalidCard)
	_, err = svc.AddCard(ctx, "x", "   ", nil)
	assert.ErrorIs(t, err, ErrInvalidCard)

	got, err := svc.Card(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = svc.Card(ctx, "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)

	cards, err := svc.Cards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	require.NoError(t, svc.DeleteCard(ctx, c.ID))
	assert.ErrorIs(t, svc.DeleteCard(ctx, c.ID), ErrCardNotFound)
}

func TestService_RateAndPractice(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	a, err := svc.AddCard(ctx, "a", "A", nil)
	require.NoError(t, err)
	b, err := svc.AddCard(ctx, "b", "B", nil)
	require.NoError(t, err)

	due, err := svc.Practice(ctx)
	require.NoError(t, err)
	assert.Len(t, due, 2, "everything is due on day 0")

	review, err := svc.Rate(ctx, a.ID, gesture.RatingEasy, SourceGesture)
	require.NoError(t, err)
	assert.Equal(t, 0, review.FromBucket)
	assert.Equal(t, 1, review.ToBucket)
	assert.Equal(t, 0, review.Day)
	assert.Equal(t, SourceGesture, review.Source)

	day, err := svc.AdvanceDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, day)

	due, err = svc.Practice(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1, "bucket 1 is not due on day 1")
	assert.Equal(t, b.ID, due[0].ID)

	_, err = svc.AdvanceDay(ctx)
	require.NoError(t, err)
	due, err = svc.Practice(ctx)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, b.ID, due[0].ID, "lower bucket first")

	review, err = svc.Rate(ctx, a.ID, gesture.RatingWrong, Source("keyboard"))
	require.NoError(t, err)
	assert.Equal(t, 0, review.ToBucket)
	assert.Equal(t, 2, review.Day)
	assert.Equal(t, SourceButton, review.Source, "unknown sources count as button")
}

func TestService_RateErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	c, err := svc.AddCard(ctx, "a", "A", nil)
	require.NoError(t, err)

	_, err = svc.Rate(ctx, c.ID, gesture.RatingNone, SourceButton)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Rate(ctx, c.ID, gesture.Rating("MEH"), SourceButton)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Rate(ctx, "missing", gesture.RatingEasy, SourceButton)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestService_Hint(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	c, err := svc.AddCard(ctx, "la casa", "the house", nil)
	require.NoError(t, err)

	hint, err := svc.Hint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "t__ h____", hint)

	_, err = svc.Hint(ctx, "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestService_Progress(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p, err := svc.Progress(ctx)
	require.NoError(t, err)
	assert.Zero(t, p.TotalCards)
	assert.Zero(t, p.Accuracy)

	a, _ := svc.AddCard(ctx, "a", "A", nil)
	b, _ := svc.AddCard(ctx, "b", "B", nil)
	_, _ = svc.AddCard(ctx, "c", "C", nil)

	_, err = svc.Rate(ctx, a.ID, gesture.RatingEasy, SourceGesture)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, b.ID, gesture.RatingWrong, SourceButton)
	require.NoError(t, err)
	_, err = svc.AdvanceDay(ctx)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, b.ID, gesture.RatingHard, SourceButton)
	require.NoError(t, err)

	p, err = svc.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Day)
	assert.Equal(t, 3, p.TotalCards)
	assert.Equal(t, map[int]int{0: 2, 1: 1}, p.Buckets)
	assert.Equal(t, 2, p.DueToday)
	assert.Equal(t, 1, p.Ratings[gesture.RatingEasy])
	assert.Equal(t, 1, p.Ratings[gesture.RatingHard])
	assert.Equal(t, 1, p.Ratings[gesture.RatingWrong])
	assert.Equal(t, 1, p.BySource[SourceGesture])
	assert.Equal(t, 2, p.BySource[SourceButton])
	assert.Equal(t, []DayCount{{Day: 0, Reviews: 2}, {Day: 1, Reviews: 1}}, p.ReviewsPerDay)
	assert.InDelta(t, 2.0/3.0, p.Accuracy, 1e-9)
}

func TestGestureSubmitter(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	sub := NewGestureSubmitter(svc)

	_, err := sub.Submit(ctx, 1, gesture.RatingEasy)
	assert.ErrorIs(t, err, ErrNoCard)

	c, err := svc.AddCard(ctx, "a", "A", nil)
	require.NoError(t, err)
	sub.Select(1, c.ID)
	assert.Equal(t, c.ID, sub.Card(1))

	review, err := sub.Submit(ctx, 1, gesture.RatingHard)
	require.NoError(t, err)
	assert.Equal(t, SourceGesture, review.Source)
	assert.Equal(t, gesture.RatingHard, review.Rating)

	_, err = sub.Submit(ctx, 1, gesture.RatingEasy)
	assert.ErrorIs(t, err, ErrNoCard, "selection is consumed")
}

func TestGestureSubmitter_LateConfirmation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	sub := NewGestureSubmitter(svc)

	first, err := svc.AddCard(ctx, "uno", "one", nil)
	require.NoError(t, err)
	second, err := svc.AddCard(ctx, "dos", "two", nil)
	require.NoError(t, err)

	sub.Select(1, first.ID)
	sub.Select(2, second.ID)

	review, err := sub.Submit(ctx, 1, gesture.RatingEasy)
	require.NoError(t, err)
	assert.Equal(t, first.ID, review.CardID, "window 1 still rates its own card")
	assert.Equal(t, second.ID, sub.Card(2))

	sub.Select(3, "")
	sub.Select(4, first.ID)
	assert.Empty(t, sub.Card(2), "windows before the previous one are dropped")
	_, err = sub.Submit(ctx, 3, gesture.RatingEasy)
	assert.ErrorIs(t, err, ErrNoCard)
}
