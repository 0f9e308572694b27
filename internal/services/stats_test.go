package services

import (
	"context"
	"testing"
)

func TestStatsServiceReadThrough(t *testing.T) {
	db := newTestDB(t)
	cache := newFakeCache()
	svc, stats, _, textRepo := newMatchService(t, db, cache)
	ctx := context.Background()

	texts := seedTexts(t, db, textRepo, "brave", "daring")

	id, err := svc.GetOrCreate(ctx, "session-a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := svc.Rate(ctx, id, 8); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	got, err := stats.PairStats(ctx, texts[0].ID, texts[1].ID)
	if err != nil {
		t.Fatalf("PairStats: %v", err)
	}
	if got.Count != 1 || got.AverageResult != 8 {
		t.Fatalf("unexpected stats %+v", got)
	}

	// The read populated the cache under the orientation-independent key.
	if len(cache.entries) == 0 {
		t.Fatalf("expected pair stats cached")
	}
	swapped, err := stats.PairStats(ctx, texts[1].ID, texts[0].ID)
	if err != nil {
		t.Fatalf("PairStats swapped: %v", err)
	}
	if swapped.Count != got.Count || swapped.AverageResult != got.AverageResult {
		t.Fatalf("expected identical stats from cache, got %+v", swapped)
	}

	count, err := stats.SessionRatedCount(ctx, "session-a")
	if err != nil {
		t.Fatalf("SessionRatedCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rated count 1, got %d", count)
	}

	// A second rating invalidates, and the next read sees the new truth.
	id2, err := svc.GetOrCreate(ctx, "session-a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := svc.Rate(ctx, id2, 4); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	got, err = stats.PairStats(ctx, texts[0].ID, texts[1].ID)
	if err != nil {
		t.Fatalf("PairStats after second rating: %v", err)
	}
	if got.Count != 2 || got.AverageResult != 6 {
		t.Fatalf("expected count 2 average 6 after invalidation, got %+v", got)
	}
	count, err = stats.SessionRatedCount(ctx, "session-a")
	if err != nil || count != 2 {
		t.Fatalf("expected rated count 2, got %d / %v", count, err)
	}
}
