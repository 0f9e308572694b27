package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/services"
)

type StatsHandler struct {
	log          *logger.Logger
	statsService services.StatsService
}

func NewStatsHandler(log *logger.Logger, statsService services.StatsService) *StatsHandler {
	return &StatsHandler{log: log.With("handler", "StatsHandler"), statsService: statsService}
}

func (sh *StatsHandler) Pair(c *gin.Context) {
	textID1, err := uuid.Parse(c.Query("text_id_1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid text_id_1"})
		return
	}
	textID2, err := uuid.Parse(c.Query("text_id_2"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid text_id_2"})
		return
	}

	stats, err := sh.statsService.PairStats(c.Request.Context(), textID1, textID2)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":          stats.Count,
		"average_result": stats.AverageResult,
	})
}

func (sh *StatsHandler) SessionRatedCount(c *gin.Context) {
	count, err := sh.statsService.SessionRatedCount(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
