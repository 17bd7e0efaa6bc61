package main

import (
	"context"
	"log"
	"os"

	"quizsite/config"
	"quizsite/handlers"
	"quizsite/middleware"
	"quizsite/models"
	"quizsite/routes"
	"quizsite/seeds"
	"quizsite/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	if err := models.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)
	statsCache := services.NewStatsCache(redisClient, cfg.DashboardCacheTTL)

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, statsCache)
	userService := services.NewUserService(db, statsCache)
	quizService := services.NewQuizService(db, statsCache)
	selector := services.NewSelector(quizService)
	attemptService := services.NewAttemptService(db, quizService, statsCache, hub)
	statsService := services.NewStatsService(db, attemptService, statsCache)

	seedOnly := len(os.Args) > 1 && os.Args[1] == "seed"
	if cfg.SeedOnStart || seedOnly {
		admin := seeds.Admin{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}
		if err := seeds.Run(context.Background(), db, quizService, admin); err != nil {
			log.Fatal("Failed to seed database:", err)
		}
		if seedOnly {
			return
		}
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(quizService, selector, attemptService)
	resultHandler := handlers.NewResultHandler(attemptService, statsService)
	adminHandler := handlers.NewAdminHandler(quizService, attemptService, statsService, userService, hub)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	routes.SetupRoutes(router, authHandler, quizHandler, resultHandler, adminHandler, userService, hub, cfg.JWTSecret)

	// Start server
	addr := cfg.BindAddress + ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
