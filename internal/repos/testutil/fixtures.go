package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traitgame/similar-backend/internal/types"
)

func SeedText(tb testing.TB, ctx context.Context, tx *gorm.DB, content string) *types.Text {
	tb.Helper()
	txt := &types.Text{
		ID:   uuid.New(),
		Text: content,
	}
	if err := tx.WithContext(ctx).Create(txt).Error; err != nil {
		tb.Fatalf("seed text: %v", err)
	}
	return txt
}

func SeedMatch(tb testing.TB, ctx context.Context, tx *gorm.DB, text1, text2 uuid.UUID) *types.Match {
	tb.Helper()
	m := &types.Match{
		ID:      uuid.New(),
		Text1ID: text1,
		Text2ID: text2,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed match: %v", err)
	}
	return m
}
