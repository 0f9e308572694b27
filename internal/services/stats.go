package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/traitgame/similar-backend/internal/clients/redis"
	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/repos"
)

const statsCacheTTL = 5 * time.Minute

type StatsService interface {
	PairStats(ctx context.Context, textID1, textID2 uuid.UUID) (*repos.PairStats, error)
	SessionRatedCount(ctx context.Context, sessionID string) (int64, error)
	InvalidatePair(ctx context.Context, textID1, textID2 uuid.UUID)
	InvalidateSession(ctx context.Context, sessionID string)
}

type statsService struct {
	db        *gorm.DB
	log       *logger.Logger
	matchRepo repos.MatchRepo
	cache     redisclient.Cache
}

// NewStatsService wires the aggregate queries with an optional read-through
// cache. A nil cache means every read goes to the database.
func NewStatsService(db *gorm.DB, log *logger.Logger, matchRepo repos.MatchRepo, cache redisclient.Cache) StatsService {
	return &statsService{
		db:        db,
		log:       log.With("service", "StatsService"),
		matchRepo: matchRepo,
		cache:     cache,
	}
}

// pairKey is orientation-independent so both orderings of a pair share one
// cache entry.
func pairKey(textID1, textID2 uuid.UUID) string {
	a, b := textID1.String(), textID2.String()
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("stats:pair:%s:%s", a, b)
}

func sessionKey(sessionID string) string {
	return "stats:session:" + sessionID
}

func (ss *statsService) PairStats(ctx context.Context, textID1, textID2 uuid.UUID) (*repos.PairStats, error) {
	key := pairKey(textID1, textID2)

	if ss.cache != nil {
		var cached repos.PairStats
		hit, err := ss.cache.Get(ctx, key, &cached)
		if err != nil {
			ss.log.Warn("Stats cache read failed", "key", key, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	stats, err := ss.matchRepo.PairStats(ctx, nil, textID1, textID2)
	if err != nil {
		return nil, err
	}

	if ss.cache != nil {
		if err := ss.cache.Set(ctx, key, stats, statsCacheTTL); err != nil {
			ss.log.Warn("Stats cache write failed", "key", key, "error", err)
		}
	}
	return stats, nil
}

func (ss *statsService) SessionRatedCount(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrInvalidSession
	}
	key := sessionKey(sessionID)

	if ss.cache != nil {
		var cached int64
		hit, err := ss.cache.Get(ctx, key, &cached)
		if err != nil {
			ss.log.Warn("Stats cache read failed", "key", key, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	count, err := ss.matchRepo.CountRatedBySession(ctx, nil, sessionID)
	if err != nil {
		return 0, err
	}

	if ss.cache != nil {
		if err := ss.cache.Set(ctx, key, count, statsCacheTTL); err != nil {
			ss.log.Warn("Stats cache write failed", "key", key, "error", err)
		}
	}
	return count, nil
}

func (ss *statsService) InvalidatePair(ctx context.Context, textID1, textID2 uuid.UUID) {
	if ss.cache == nil {
		return
	}
	if err := ss.cache.Invalidate(ctx, pairKey(textID1, textID2)); err != nil {
		ss.log.Warn("Stats cache invalidation failed", "error", err)
	}
}

func (ss *statsService) InvalidateSession(ctx context.Context, sessionID string) {
	if ss.cache == nil || sessionID == "" {
		return
	}
	if err := ss.cache.Invalidate(ctx, sessionKey(sessionID)); err != nil {
		ss.log.Warn("Stats cache invalidation failed", "error", err)
	}
}
