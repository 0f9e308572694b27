package game

import (
	"testing"

	"github.com/traitgame/similar-backend/internal/client/api"
)

func TestSummaryFirstRater(t *testing.T) {
	cases := []struct {
		name  string
		s     Summary
		first bool
	}{
		{"no stats", Summary{UserRating: 5}, true},
		{"zero count", Summary{UserRating: 5, Stats: &api.TraitPairStats{Count: 0}}, true},
		{"only rater", Summary{UserRating: 5, Stats: &api.TraitPairStats{Count: 1, AverageResult: 5}}, true},
		{
			"average equals own rating within tolerance",
			Summary{UserRating: 6.25, Stats: &api.TraitPairStats{Count: 4, AverageResult: 6.25004}},
			true,
		},
		{
			"others disagree",
			Summary{UserRating: 6.25, Stats: &api.TraitPairStats{Count: 4, AverageResult: 4.0}},
			false,
		},
	}

	for _, tc := range cases {
		if got := tc.s.FirstRater(); got != tc.first {
			t.Errorf("%s: FirstRater() = %v, want %v", tc.name, got, tc.first)
		}
	}
}

func TestSummaryDirection(t *testing.T) {
	stats := &api.TraitPairStats{Count: 3, AverageResult: 5}

	if d := (Summary{UserRating: 7, Stats: stats}).Direction(); d != "higher" {
		t.Fatalf("expected higher, got %q", d)
	}
	if d := (Summary{UserRating: 3, Stats: stats}).Direction(); d != "lower" {
		t.Fatalf("expected lower, got %q", d)
	}
	if d := (Summary{UserRating: 5, Stats: stats}).Direction(); d != "the same as" {
		t.Fatalf("expected the same as, got %q", d)
	}
}
