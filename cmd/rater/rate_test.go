package main

import (
	"context"
	"strings"
	"testing"

	"github.com/traitgame/similar-backend/internal/client/storage"
	"github.com/traitgame/similar-backend/internal/client/stored"
)

func newExpandedState(t *testing.T, store storage.Store) *stored.State[bool] {
	t.Helper()
	s := stored.New(store, defaultExpandedKey, true, 0)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return s
}

func TestIntroTextCollapsesAfterFirstDisplay(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	expanded := newExpandedState(t, store)

	first := introText(ctx, expanded)
	if !strings.Contains(first, "scale from 0 to 10") {
		t.Fatalf("expected expanded instructions first, got %q", first)
	}

	second := introText(ctx, expanded)
	if second == first {
		t.Fatal("expected collapsed instructions after first display")
	}
	if !strings.Contains(second, "0-10") {
		t.Fatalf("expected short form, got %q", second)
	}

	// The collapsed preference is persisted, so a rehydrated state over the
	// same store stays collapsed.
	rehydrated := newExpandedState(t, store)
	if got := introText(ctx, rehydrated); got != second {
		t.Fatalf("expected collapsed after rehydration, got %q", got)
	}
}

func TestIntroTextExpandsForNewSession(t *testing.T) {
	ctx := context.Background()

	old := newExpandedState(t, storage.NewMemStore())
	expandedForm := introText(ctx, old)
	if got := introText(ctx, old); got == expandedForm {
		t.Fatal("expected the old session to collapse")
	}

	// A fresh session store starts expanded again.
	fresh := newExpandedState(t, storage.NewMemStore())
	if got := introText(ctx, fresh); got != expandedForm {
		t.Fatalf("expected a fresh session to start expanded, got %q", got)
	}
}
