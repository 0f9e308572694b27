package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/traitgame/similar-backend/internal/clients/redis"
	"github.com/traitgame/similar-backend/internal/db"
	"github.com/traitgame/similar-backend/internal/handlers"
	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/middleware"
	"github.com/traitgame/similar-backend/internal/repos"
	"github.com/traitgame/similar-backend/internal/server"
	"github.com/traitgame/similar-backend/internal/services"
	"github.com/traitgame/similar-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
	theDB := dbService.DB()

	// Redis stats cache, optional
	var cache redis.Cache
	if os.Getenv("REDIS_ADDR") != "" {
		cache, err = redis.NewCache(log)
		if err != nil {
			log.Error("Redis init failed", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
	}

	// Repos
	log.Info("Setting up repos...")
	textRepo := repos.NewTextRepo(theDB, log)
	matchRepo := repos.NewMatchRepo(theDB, log)

	// Services
	log.Info("Setting up services...")
	checkoutGrace := time.Duration(utils.GetEnvAsInt("CHECKOUT_GRACE_MINUTES", 30, log)) * time.Minute
	statsService := services.NewStatsService(theDB, log, matchRepo, cache)
	matchService := services.NewMatchService(theDB, log, matchRepo, textRepo, statsService, checkoutGrace)
	seedService := services.NewSeedService(theDB, log, textRepo)

	if seedFile := utils.GetEnv("SEED_FILE", "", log); seedFile != "" {
		created, err := seedService.LoadFile(context.Background(), seedFile)
		if err != nil {
			log.Error("Seed load failed", "path", seedFile, "error", err)
			os.Exit(1)
		}
		log.Info("Seeded trait texts", "created", created)
	}

	// Handlers
	log.Info("Setting up handlers...")
	matchHandler := handlers.NewMatchHandler(log, matchService)
	statsHandler := handlers.NewStatsHandler(log, statsService)

	// Middleware
	apiKey := utils.GetEnv("API_KEY", "", log)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(log, apiKey)

	// Router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		MatchHandler:     matchHandler,
		StatsHandler:     statsHandler,
		APIKeyMiddleware: apiKeyMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
