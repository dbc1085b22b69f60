package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/coinbounce/backend/internal/api"
	"github.com/coinbounce/backend/internal/config"
	"github.com/coinbounce/backend/internal/redis"
	"github.com/coinbounce/backend/internal/run"
	"github.com/coinbounce/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize Redis (optional; without it run events stay instance-local)
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()

		ws.SetRedisClient(rdb)
		ws.StartRunEventSubscriber(context.Background())
		run.InitializeManager(ws.RunHub, rdb, cfg)
		log.Println("[REDIS] run event fan-out enabled")
	} else {
		run.InitializeManager(ws.RunHub, nil, cfg)
		log.Println("[REDIS] not configured; run events broadcast locally only")
	}

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, run.Manager, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting CoinBounce server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
