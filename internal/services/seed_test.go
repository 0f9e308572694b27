package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/traitgame/similar-backend/internal/repos"
)

func TestSeedServiceLoadFile(t *testing.T) {
	db := newTestDB(t)
	log := testLogger(t)
	textRepo := repos.NewTextRepo(db, log)
	svc := NewSeedService(db, log, textRepo)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "traits.yaml")
	content := "traits:\n  - warm\n  - distant\n  - playful\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	created, err := svc.LoadFile(ctx, path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if created != 3 {
		t.Fatalf("expected 3 created, got %d", created)
	}

	// Loading again must be a no-op.
	created, err = svc.LoadFile(ctx, path)
	if err != nil {
		t.Fatalf("LoadFile again: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected idempotent reload, created %d", created)
	}

	count, err := textRepo.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 texts total, got %d", count)
	}

	if _, err := svc.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
