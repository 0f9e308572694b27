package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	redisclient "github.com/traitgame/similar-backend/internal/clients/redis"
	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/repos"
	"github.com/traitgame/similar-backend/internal/types"
)

// newTestDB opens a fresh in-memory database per test; services run their own
// transactions, so the tx-rollback isolation used by the repo tests does not
// apply here.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&types.Text{}, &types.Match{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// fakeCache implements the redis cache interface in memory and records
// invalidations.
type fakeCache struct {
	entries     map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.entries, k)
		f.invalidated = append(f.invalidated, k)
	}
	return nil
}

func (f *fakeCache) Close() error { return nil }

var _ redisclient.Cache = (*fakeCache)(nil)

func newMatchService(t *testing.T, db *gorm.DB, cache redisclient.Cache) (MatchService, StatsService, repos.MatchRepo, repos.TextRepo) {
	t.Helper()
	log := testLogger(t)
	matchRepo := repos.NewMatchRepo(db, log)
	textRepo := repos.NewTextRepo(db, log)
	statsService := NewStatsService(db, log, matchRepo, cache)
	matchService := NewMatchService(db, log, matchRepo, textRepo, statsService, 30*time.Minute)
	return matchService, statsService, matchRepo, textRepo
}

func seedTexts(t *testing.T, db *gorm.DB, textRepo repos.TextRepo, contents ...string) []*types.Text {
	t.Helper()
	texts := make([]*types.Text, 0, len(contents))
	for _, c := range contents {
		texts = append(texts, &types.Text{Text: c})
	}
	created, err := textRepo.Create(context.Background(), nil, texts)
	if err != nil {
		t.Fatalf("seed texts: %v", err)
	}
	return created
}

func TestMatchServiceGetOrCreate(t *testing.T) {
	db := newTestDB(t)
	svc, _, matchRepo, textRepo := newMatchService(t, db, nil)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}

	seedTexts(t, db, textRepo, "gentle", "fierce")

	// No matches yet: a new one is created and checked out.
	id1, err := svc.GetOrCreate(ctx, "session-a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	m, err := matchRepo.GetByID(ctx, nil, id1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if m.CheckoutSessionID == nil || *m.CheckoutSessionID != "session-a" {
		t.Fatalf("expected checkout by session-a, got %v", m.CheckoutSessionID)
	}

	// Same session asks again: the unrated claim is reused.
	id2, err := svc.GetOrCreate(ctx, "session-a")
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if id2 != id1 {
		t.Fatalf("expected reuse of %s, got %s", id1, id2)
	}

	// Another session inside the grace window gets a different match.
	id3, err := svc.GetOrCreate(ctx, "session-b")
	if err != nil {
		t.Fatalf("GetOrCreate other session: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("expected a fresh match for session-b while claim is live")
	}

	// Once the claim goes stale, another session may take it over.
	stale := time.Now().UTC().Add(-2 * time.Hour)
	if err := matchRepo.Checkout(ctx, nil, id1, "session-a", stale); err != nil {
		t.Fatalf("age claim: %v", err)
	}
	if err := matchRepo.Checkout(ctx, nil, id3, "session-b", stale); err != nil {
		t.Fatalf("age claim: %v", err)
	}
	id4, err := svc.GetOrCreate(ctx, "session-c")
	if err != nil {
		t.Fatalf("GetOrCreate after staleness: %v", err)
	}
	if id4 != id1 && id4 != id3 {
		t.Fatalf("expected takeover of a stale claim, got new match %s", id4)
	}
}

func TestMatchServiceRate(t *testing.T) {
	db := newTestDB(t)
	cache := newFakeCache()
	svc, _, matchRepo, textRepo := newMatchService(t, db, cache)
	ctx := context.Background()

	seedTexts(t, db, textRepo, "quiet", "loud")

	id, err := svc.GetOrCreate(ctx, "session-a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	for _, bad := range []float64{-0.1, 10.5, math.NaN(), math.Inf(1)} {
		if _, err := svc.Rate(ctx, id, bad); !errors.Is(err, ErrInvalidResult) {
			t.Fatalf("expected ErrInvalidResult for %v, got %v", bad, err)
		}
	}

	updated, err := svc.Rate(ctx, id, 6.25)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if updated.Result == nil || *updated.Result != 6.25 {
		t.Fatalf("expected result 6.25, got %v", updated.Result)
	}

	persisted, err := matchRepo.GetResult(ctx, nil, id)
	if err != nil || persisted == nil || *persisted != 6.25 {
		t.Fatalf("expected persisted 6.25, got %v / %v", persisted, err)
	}

	// Rating must drop the pair and session aggregates from the cache.
	if len(cache.invalidated) != 2 {
		t.Fatalf("expected 2 invalidations, got %v", cache.invalidated)
	}

	if _, err := svc.Rate(ctx, uuid.New(), 5); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing match, got %v", err)
	}
}
