package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/traitgame/similar-backend/internal/handlers"
	"github.com/traitgame/similar-backend/internal/middleware"
)

type RouterConfig struct {
	MatchHandler     *handlers.MatchHandler
	StatsHandler     *handlers.StatsHandler
	APIKeyMiddleware *middleware.APIKeyMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Api-Key", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.APIKeyMiddleware.RequireKey())
	{
		api.POST("/matches", cfg.MatchHandler.GetOrCreate)
		api.GET("/matches/:id", cfg.MatchHandler.Get)
		api.GET("/matches/:id/result", cfg.MatchHandler.GetResult)
		api.POST("/matches/:id/checkout", cfg.MatchHandler.Checkout)
		api.PUT("/matches/:id/result", cfg.MatchHandler.UpdateResult)

		api.GET("/stats/pair", cfg.StatsHandler.Pair)
		api.GET("/stats/sessions/:session_id/rated-count", cfg.StatsHandler.SessionRatedCount)
	}

	return router
}
