package game

import (
	"math"

	"github.com/traitgame/similar-backend/internal/client/api"
)

// averageTolerance decides when the stored average is indistinguishable from
// the user's own rating, meaning no one else has weighed in yet.
const averageTolerance = 1e-4

// Summary compares a submitted rating with the pair's aggregate statistics
// for the results display.
type Summary struct {
	UserRating float64
	Stats      *api.TraitPairStats
}

// FirstRater reports whether the user is effectively the only rater of the
// pair, in which case there is no average worth comparing against.
func (s Summary) FirstRater() bool {
	if s.Stats == nil || s.Stats.Count <= 1 {
		return true
	}
	return math.Abs(s.UserRating-s.Stats.AverageResult) < averageTolerance
}

// Difference is how far the user's rating sits from the average, positive
// when above it.
func (s Summary) Difference() float64 {
	if s.Stats == nil {
		return 0
	}
	return s.UserRating - s.Stats.AverageResult
}

// Direction renders the comparison as "higher", "lower", or "the same as".
func (s Summary) Direction() string {
	switch d := s.Difference(); {
	case d > 0:
		return "higher"
	case d < 0:
		return "lower"
	default:
		return "the same as"
	}
}
