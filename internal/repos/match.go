package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/types"
)

type PairStats struct {
	Count         int64
	AverageResult float64
}

type MatchRepo interface {
	Create(ctx context.Context, tx *gorm.DB, matches []*types.Match) ([]*types.Match, error)
	GetByID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*types.Match, error)
	GetResult(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*float64, error)
	Checkout(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, sessionID string, at time.Time) error
	UpdateResult(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, result float64) (*types.Match, error)
	FindReusable(ctx context.Context, tx *gorm.DB, sessionID string, checkoutCutoff time.Time) (*types.Match, error)
	PairStats(ctx context.Context, tx *gorm.DB, textID1, textID2 uuid.UUID) (*PairStats, error)
	CountRatedBySession(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error)
}

type matchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMatchRepo(db *gorm.DB, baseLog *logger.Logger) MatchRepo {
	return &matchRepo{db: db, log: baseLog.With("repo", "MatchRepo")}
}

func (mr *matchRepo) Create(ctx context.Context, tx *gorm.DB, matches []*types.Match) ([]*types.Match, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(matches) == 0 {
		return []*types.Match{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (mr *matchRepo) GetByID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*types.Match, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.Match
	if err := transaction.WithContext(ctx).
		Preload("Text1").
		Preload("Text2").
		Where("id = ?", matchID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// GetResult loads only the result column, the lightweight existence check the
// lifecycle controller uses during reconciliation.
func (mr *matchRepo) GetResult(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var row struct {
		Result *float64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Match{}).
		Select("result").
		Where("id = ?", matchID).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.Result, nil
}

func (mr *matchRepo) Checkout(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, sessionID string, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"checkout_at":         at,
			"checkout_session_id": sessionID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (mr *matchRepo) UpdateResult(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, result float64) (*types.Match, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Match{}).
		Where("id = ?", matchID).
		Update("result", result)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var updated types.Match
	if err := transaction.WithContext(ctx).
		Where("id = ?", matchID).
		First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindReusable returns the oldest unrated match that is unclaimed, claimed by
// this session, or claimed by another session before checkoutCutoff.
func (mr *matchRepo) FindReusable(ctx context.Context, tx *gorm.DB, sessionID string, checkoutCutoff time.Time) (*types.Match, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.Match
	if err := transaction.WithContext(ctx).
		Where("result IS NULL").
		Where(
			"checkout_session_id IS NULL OR checkout_session_id = ? OR checkout_at < ?",
			sessionID, checkoutCutoff,
		).
		Order("created_at ASC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// PairStats aggregates rated matches for the pair in either orientation.
func (mr *matchRepo) PairStats(ctx context.Context, tx *gorm.DB, textID1, textID2 uuid.UUID) (*PairStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var row struct {
		Count         int64
		AverageResult *float64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Match{}).
		Select("COUNT(result) AS count, AVG(result) AS average_result").
		Where("result IS NOT NULL").
		Where(
			"(text_1 = ? AND text_2 = ?) OR (text_1 = ? AND text_2 = ?)",
			textID1, textID2, textID2, textID1,
		).
		Take(&row).Error; err != nil {
		return nil, err
	}

	stats := &PairStats{Count: row.Count}
	if row.AverageResult != nil {
		stats.AverageResult = *row.AverageResult
	}
	return stats, nil
}

func (mr *matchRepo) CountRatedBySession(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Match{}).
		Where("result IS NOT NULL").
		Where("checkout_session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
