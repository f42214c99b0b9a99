package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charaverse-api/config"
	"charaverse-api/database"
	"charaverse-api/jobs"
	"charaverse-api/middleware"
	"charaverse-api/routes"
	"charaverse-api/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	emailService := services.NewEmailService(cfg, logger)

	// Background purge of soft-deleted messages
	purgeJob := jobs.NewMessagePurgeJob(db, logger, 24*time.Hour)
	purgeJob.Start()
	defer purgeJob.Stop()

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(300, 30))
	router.Use(middleware.ErrorHandler())

	routes.SetupRoutes(router, db, cfg, logger, emailService)

	log.Printf("Starting Charaverse API server on port %s", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
