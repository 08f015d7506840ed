package flashcard

import "github.com/ayusman/flashgesture/internal/gesture"

// MaxBucket is the highest bucket. A card there is practised every 1024 days.
const MaxBucket = 10

// IsDue reports whether cards in bucket are practised on day.
// Bucket b is due every 2^b days, counting from day 0.
func IsDue(bucket, day int) bool {
	if bucket < 0 || day < 0 {
		return false
	}
	if bucket > MaxBucket {
		bucket = MaxBucket
	}
	return day%(1<<bucket) == 0
}

// DueBuckets lists the buckets practised on day.
func DueBuckets(day int) []int {
	var buckets []int
	for b := 0; b <= MaxBucket; b++ {
		if IsDue(b, day) {
			buckets = append(buckets, b)
		}
	}
	return buckets
}

// NextBucket returns where a card in current moves after rating.
// RatingNone leaves it in place.
func NextBucket(current int, rating gesture.Rating) int {
	switch rating {
	case gesture.RatingWrong:
		return 0
	case gesture.RatingHard:
		if current <= 0 {
			return 0
		}
		return current - 1
	case gesture.RatingEasy:
		if current >= MaxBucket {
			return MaxBucket
		}
		return current + 1
	default:
		return current
	}
}
