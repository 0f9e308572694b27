package stored

import (
	"context"
	"testing"
	"time"

	"github.com/traitgame/similar-backend/internal/client/storage"
)

func TestHydrationAdoptsInitialWhenAbsent(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemStore(), "current_match", "", 0)

	if s.Loaded() {
		t.Fatalf("expected unloaded before Load")
	}
	if _, ok := s.Get(); ok {
		t.Fatalf("expected Get to report unhydrated")
	}

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, ok := s.Get()
	if !ok || v != "" {
		t.Fatalf("expected hydrated initial value, got %q ok=%v", v, ok)
	}
}

func TestHydrationAdoptsStoredValue(t *testing.T) {
	ctx := context.Background()
	ms := storage.NewMemStore()

	first := New(ms, "current_match", "", 0)
	if err := first.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := first.Set(ctx, "m1"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A new binding over the same store sees the persisted value.
	second := New(ms, "current_match", "", 0)
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, _ := second.Get(); v != "m1" {
		t.Fatalf("expected persisted m1, got %q", v)
	}
}

func TestExpiredEntryIsPurged(t *testing.T) {
	ctx := context.Background()
	ms := storage.NewMemStore()

	past := time.Now().Add(-time.Minute)
	err := storage.SetJSON(ctx, ms, "flag", envelope[bool]{Value: true, ExpiresAt: &past})
	if err != nil {
		t.Fatalf("seed expired entry: %v", err)
	}

	s := New(ms, "flag", false, time.Hour)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, _ := s.Get(); v {
		t.Fatalf("expected expired entry to yield initial value")
	}
	if _, ok, _ := ms.Get(ctx, "flag"); ok {
		t.Fatalf("expected stale entry purged from store")
	}
}

func TestSetStampsFreshExpiry(t *testing.T) {
	ctx := context.Background()
	ms := storage.NewMemStore()

	s := New(ms, "flag", false, time.Hour)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Set(ctx, true); err != nil {
		t.Fatalf("Set: %v", err)
	}

	env, ok, err := storage.GetJSON[envelope[bool]](ctx, ms, "flag")
	if err != nil || !ok {
		t.Fatalf("expected stored envelope, ok=%v err=%v", ok, err)
	}
	if env.ExpiresAt == nil || !env.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", env.ExpiresAt)
	}
}

func TestResetRestoresInitial(t *testing.T) {
	ctx := context.Background()
	ms := storage.NewMemStore()

	s := New(ms, "current_match", "none", 0)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Set(ctx, "m2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if v, _ := s.Get(); v != "none" {
		t.Fatalf("expected initial after reset, got %q", v)
	}
	if _, ok, _ := ms.Get(ctx, "current_match"); ok {
		t.Fatalf("expected store entry removed on reset")
	}
}

func TestCorruptEntryTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	ms := storage.NewMemStore()
	if err := ms.Set(ctx, "current_match", []byte("{corrupt")); err != nil {
		t.Fatalf("seed corrupt: %v", err)
	}

	s := New(ms, "current_match", "fallback", 0)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, _ := s.Get(); v != "fallback" {
		t.Fatalf("expected fallback for corrupt entry, got %q", v)
	}
	if _, ok, _ := ms.Get(ctx, "current_match"); ok {
		t.Fatalf("expected corrupt entry purged")
	}
}
