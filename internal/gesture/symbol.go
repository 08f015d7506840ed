// Package gesture classifies hand landmarks into the thumb gestures used to rate cards.
package gesture

import "strings"

// Symbol is a discrete gesture recognised in a single frame.
type Symbol string

const (
	ThumbsUp       Symbol = "THUMBS_UP"
	ThumbsDown     Symbol = "THUMBS_DOWN"
	ThumbsSideways Symbol = "THUMBS_SIDEWAYS"
	// Other is a hand that is clearly not a thumb gesture.
	Other Symbol = "OTHER"
	// None means no confident classification.
	None Symbol = "NONE"
)

// Valid reports whether s is one of the known symbols.
func (s Symbol) Valid() bool {
	switch s {
	case ThumbsUp, ThumbsDown, ThumbsSideways, Other, None:
		return true
	}
	return false
}

// Confirmable reports whether holding s can produce a rating.
func (s Symbol) Confirmable() bool {
	return RatingFor(s) != RatingNone
}

// ParseSymbol maps a wire string to a Symbol. Unknown input becomes None.
func ParseSymbol(v string) Symbol {
	s := Symbol(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return None
	}
	return s
}

// Rating is the answer quality submitted for a card.
type Rating string

const (
	RatingEasy  Rating = "EASY"
	RatingHard  Rating = "HARD"
	RatingWrong Rating = "WRONG"
	RatingNone  Rating = "NONE"
)

// Valid reports whether r is a rating that can be submitted.
func (r Rating) Valid() bool {
	return r == RatingEasy || r == RatingHard || r == RatingWrong
}

// ParseRating maps a wire string to a Rating. Unknown input becomes RatingNone.
func ParseRating(v string) Rating {
	r := Rating(strings.ToUpper(strings.TrimSpace(v)))
	if !r.Valid() {
		return RatingNone
	}
	return r
}

// RatingFor returns the rating a held gesture stands for.
func RatingFor(s Symbol) Rating {
	switch s {
	case ThumbsUp:
		return RatingEasy
	case ThumbsSideways:
		return RatingHard
	case ThumbsDown:
		return RatingWrong
	default:
		return RatingNone
	}
}
