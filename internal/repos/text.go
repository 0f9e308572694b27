package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/types"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type TextRepo interface {
	Create(ctx context.Context, tx *gorm.DB, texts []*types.Text) ([]*types.Text, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, textIDs []uuid.UUID) ([]*types.Text, error)
	GetByContents(ctx context.Context, tx *gorm.DB, contents []string) ([]*types.Text, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	RandomPair(ctx context.Context, tx *gorm.DB) (*types.Text, *types.Text, error)
}

type textRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTextRepo(db *gorm.DB, baseLog *logger.Logger) TextRepo {
	return &textRepo{db: db, log: baseLog.With("repo", "TextRepo")}
}

func (tr *textRepo) Create(ctx context.Context, tx *gorm.DB, texts []*types.Text) ([]*types.Text, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(texts) == 0 {
		return []*types.Text{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&texts).Error; err != nil {
		return nil, err
	}
	return texts, nil
}

func (tr *textRepo) GetByIDs(ctx context.Context, tx *gorm.DB, textIDs []uuid.UUID) ([]*types.Text, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Text
	if len(textIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", textIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *textRepo) GetByContents(ctx context.Context, tx *gorm.DB, contents []string) ([]*types.Text, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Text
	if len(contents) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("text IN ?", contents).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *textRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Text{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RandomPair picks two distinct texts at random. RANDOM() is understood by
// both sqlite and postgres.
func (tr *textRepo) RandomPair(ctx context.Context, tx *gorm.DB) (*types.Text, *types.Text, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Text
	if err := transaction.WithContext(ctx).
		Order("RANDOM()").
		Limit(2).
		Find(&results).Error; err != nil {
		return nil, nil, err
	}
	if len(results) < 2 {
		return nil, nil, ErrNotFound
	}
	return results[0], results[1], nil
}
