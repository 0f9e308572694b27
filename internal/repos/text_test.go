package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/traitgame/similar-backend/internal/repos/testutil"
	"github.com/traitgame/similar-backend/internal/types"
)

func TestTextRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewTextRepo(db, testutil.Logger(t))

	if _, _, err := repo.RandomPair(ctx, tx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with fewer than two texts, got %v", err)
	}

	created, err := repo.Create(ctx, tx, []*types.Text{
		{Text: "patient"},
		{Text: "calm"},
		{Text: "stubborn"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, txt := range created {
		if txt.ID.String() == "00000000-0000-0000-0000-000000000000" {
			t.Fatalf("expected generated id for %q", txt.Text)
		}
	}

	count, err := repo.Count(ctx, tx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 texts, got %d", count)
	}

	byContent, err := repo.GetByContents(ctx, tx, []string{"patient", "missing"})
	if err != nil {
		t.Fatalf("GetByContents: %v", err)
	}
	if len(byContent) != 1 || byContent[0].Text != "patient" {
		t.Fatalf("unexpected GetByContents result: %+v", byContent)
	}

	a, b, err := repo.RandomPair(ctx, tx)
	if err != nil {
		t.Fatalf("RandomPair: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected two distinct texts, got %s twice", a.ID)
	}
}
