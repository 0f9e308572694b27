package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/services"
)

type MatchHandler struct {
	log          *logger.Logger
	matchService services.MatchService
}

func NewMatchHandler(log *logger.Logger, matchService services.MatchService) *MatchHandler {
	return &MatchHandler{log: log.With("handler", "MatchHandler"), matchService: matchService}
}

type sessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type resultRequest struct {
	Result *float64 `json:"result" binding:"required"`
}

// GetOrCreate returns an existing eligible match for the session or creates a
// new one, always checked out to the caller.
func (mh *MatchHandler) GetOrCreate(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matchID, err := mh.matchService.GetOrCreate(c.Request.Context(), req.SessionID)
	if err != nil {
		mh.log.Error("get-or-create failed", "session_id", req.SessionID, "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match_id": matchID})
}

// Get returns the match with both texts resolved.
func (mh *MatchHandler) Get(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	match, err := mh.matchService.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// GetResult returns only the result column, the cheap existence and status
// probe used during client reconciliation.
func (mh *MatchHandler) GetResult(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	result, err := mh.matchService.GetResult(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (mh *MatchHandler) Checkout(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := mh.matchService.Checkout(c.Request.Context(), matchID, req.SessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match_id": matchID})
}

func (mh *MatchHandler) UpdateResult(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	var req resultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := mh.matchService.Rate(c.Request.Context(), matchID, *req.Result)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
