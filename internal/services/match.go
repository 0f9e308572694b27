package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/repos"
	"github.com/traitgame/similar-backend/internal/types"
)

var (
	ErrInvalidResult  = errors.New("result must be a finite number between 0 and 10")
	ErrInvalidSession = errors.New("session id required")
)

type MatchService interface {
	// GetOrCreate reuses an unrated match that is unclaimed, claimed by this
	// session, or whose claim by another session is older than the grace
	// window; otherwise it creates a match from a random distinct text pair.
	// The returned match is always checked out to the calling session.
	GetOrCreate(ctx context.Context, sessionID string) (uuid.UUID, error)
	Checkout(ctx context.Context, matchID uuid.UUID, sessionID string) error
	GetMatch(ctx context.Context, matchID uuid.UUID) (*types.Match, error)
	GetResult(ctx context.Context, matchID uuid.UUID) (*float64, error)
	Rate(ctx context.Context, matchID uuid.UUID, result float64) (*types.Match, error)
}

type matchService struct {
	db            *gorm.DB
	log           *logger.Logger
	matchRepo     repos.MatchRepo
	textRepo      repos.TextRepo
	statsService  StatsService
	checkoutGrace time.Duration
}

func NewMatchService(db *gorm.DB, log *logger.Logger, matchRepo repos.MatchRepo, textRepo repos.TextRepo, statsService StatsService, checkoutGrace time.Duration) MatchService {
	return &matchService{
		db:            db,
		log:           log.With("service", "MatchService"),
		matchRepo:     matchRepo,
		textRepo:      textRepo,
		statsService:  statsService,
		checkoutGrace: checkoutGrace,
	}
}

func (ms *matchService) GetOrCreate(ctx context.Context, sessionID string) (uuid.UUID, error) {
	if sessionID == "" {
		return uuid.Nil, ErrInvalidSession
	}

	var matchID uuid.UUID
	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		cutoff := now.Add(-ms.checkoutGrace)

		existing, err := ms.matchRepo.FindReusable(ctx, tx, sessionID, cutoff)
		switch {
		case err == nil:
			matchID = existing.ID
		case errors.Is(err, repos.ErrNotFound):
			text1, text2, err := ms.textRepo.RandomPair(ctx, tx)
			if err != nil {
				return fmt.Errorf("pick text pair: %w", err)
			}
			created, err := ms.matchRepo.Create(ctx, tx, []*types.Match{{
				Text1ID: text1.ID,
				Text2ID: text2.ID,
			}})
			if err != nil {
				return fmt.Errorf("create match: %w", err)
			}
			matchID = created[0].ID
		default:
			return fmt.Errorf("find reusable match: %w", err)
		}

		return ms.matchRepo.Checkout(ctx, tx, matchID, sessionID, now)
	})
	if err != nil {
		return uuid.Nil, err
	}

	ms.log.Debug("Match checked out", "match_id", matchID, "session_id", sessionID)
	return matchID, nil
}

func (ms *matchService) Checkout(ctx context.Context, matchID uuid.UUID, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	return ms.matchRepo.Checkout(ctx, nil, matchID, sessionID, time.Now().UTC())
}

func (ms *matchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*types.Match, error) {
	return ms.matchRepo.GetByID(ctx, nil, matchID)
}

func (ms *matchService) GetResult(ctx context.Context, matchID uuid.UUID) (*float64, error) {
	return ms.matchRepo.GetResult(ctx, nil, matchID)
}

func (ms *matchService) Rate(ctx context.Context, matchID uuid.UUID, result float64) (*types.Match, error) {
	if math.IsNaN(result) || math.IsInf(result, 0) || result < 0 || result > 10 {
		return nil, ErrInvalidResult
	}

	updated, err := ms.matchRepo.UpdateResult(ctx, nil, matchID, result)
	if err != nil {
		return nil, err
	}

	// Cached aggregates for this pair and session are stale now.
	ms.statsService.InvalidatePair(ctx, updated.Text1ID, updated.Text2ID)
	if updated.CheckoutSessionID != nil {
		ms.statsService.InvalidateSession(ctx, *updated.CheckoutSessionID)
	}

	return updated, nil
}
