// Package api is the client's boundary to the remote store. Responses are
// validated into typed structures, reads go through an explicit cache, and
// mutations invalidate the entries they make stale.
package api

import (
	"context"
	"errors"
)

// ErrNotFound reports that the remote store has no row for the id.
var ErrNotFound = errors.New("not found")

type Text struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Match struct {
	ID     string   `json:"id"`
	Text1  Text     `json:"text1"`
	Text2  Text     `json:"text2"`
	Result *float64 `json:"result"`
}

type TraitPairStats struct {
	Count         int64   `json:"count"`
	AverageResult float64 `json:"average_result"`
}

// Repository is the full remote boundary the lifecycle controller depends on.
type Repository interface {
	// FetchMatch resolves a match with both texts. An empty id short-circuits
	// to (nil, nil) without a remote call.
	FetchMatch(ctx context.Context, matchID string) (*Match, error)
	// FetchMatchResult reads only the rating field, the lightweight
	// existence-and-status probe. nil means the match exists but is unrated.
	FetchMatchResult(ctx context.Context, matchID string) (*float64, error)
	// CheckoutMatch claims the match for the current session and returns the
	// same id for chaining.
	CheckoutMatch(ctx context.Context, matchID string) (string, error)
	// GetOrCreateMatch asks the store for an existing eligible match scoped
	// to the current session, or a fresh one. Eligibility is store policy.
	GetOrCreateMatch(ctx context.Context) (string, error)
	UpdateMatchResult(ctx context.Context, matchID string, result float64) (*Match, error)
	// FetchTraitPairStats short-circuits to (nil, nil) when either id is
	// empty.
	FetchTraitPairStats(ctx context.Context, textID1, textID2 string) (*TraitPairStats, error)
	FetchSessionRatedCount(ctx context.Context) (int64, error)
}
