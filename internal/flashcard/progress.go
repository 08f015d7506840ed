package flashcard

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/ayusman/flashgesture/internal/gesture"
)

// DayCount is the number of reviews given on one day.
type DayCount struct {
	Day     int `json:"day"`
	Reviews int `json:"reviews"`
}

// Progress summarizes the learner's state.
type Progress struct {
	Day           int                    `json:"day"`
	TotalCards    int                    `json:"totalCards"`
	DueToday      int                    `json:"dueToday"`
	Buckets       map[int]int            `json:"buckets"`
	Ratings       map[gesture.Rating]int `json:"ratings"`
	BySource      map[Source]int         `json:"bySource"`
	ReviewsPerDay []DayCount             `json:"reviewsPerDay"`
	// Accuracy is the share of reviews not rated WRONG, 0 when there are none.
	Accuracy float64 `json:"accuracy"`
}

// Progress computes bucket, rating and per-day statistics.
func (s *Service) Progress(ctx context.Context) (*Progress, error) {
	day, err := s.Day(ctx)
	if err != nil {
		return nil, err
	}

	buckets, err := s.store.Cards().BucketCounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "progress")
	}
	history, err := s.store.History().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "progress")
	}

	p := &Progress{
		Day:     day,
		Buckets: buckets,
		Ratings: map[gesture.Rating]int{
			gesture.RatingEasy:  0,
			gesture.RatingHard:  0,
			gesture.RatingWrong: 0,
		},
		BySource: map[Source]int{},
	}
	for b, n := range buckets {
		p.TotalCards += n
		if IsDue(b, day) {
			p.DueToday += n
		}
	}

	perDay := map[int]int{}
	correct := 0
	for _, h := range history {
		r := gesture.Rating(h.Rating)
		p.Ratings[r]++
		p.BySource[Source(h.Source)]++
		perDay[h.Day]++
		if r != gesture.RatingWrong {
			correct++
		}
	}
	for d, n := range perDay {
		p.ReviewsPerDay = append(p.ReviewsPerDay, DayCount{Day: d, Reviews: n})
	}
	sort.Slice(p.ReviewsPerDay, func(i, j int) bool {
		return p.ReviewsPerDay[i].Day < p.ReviewsPerDay[j].Day
	})
	if len(history) > 0 {
		p.Accuracy = float64(correct) / float64(len(history))
	}
	return p, nil
}
