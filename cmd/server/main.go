package main

import (
	"log"

	"github.com/coachlog/api/internal/cache"
	"github.com/coachlog/api/internal/config"
	"github.com/coachlog/api/internal/database"
	"github.com/coachlog/api/internal/handler"
	"github.com/coachlog/api/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		// Continue without Redis cache (fail-open)
		redisCache = nil
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret)
	sessionHandler := handler.NewSessionHandler(db, redisCache)
	timeSlotHandler := handler.NewTimeSlotHandler(db, redisCache)

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", cfg.CORSOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)

	// API routes
	api := r.Group("/api")
	{
		// Auth
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/refresh", authHandler.Refresh)
		api.POST("/logout", authHandler.Logout)
		api.GET("/user", requireAuth, authHandler.Me)

		// Sessions
		api.GET("/sessions", sessionHandler.List)
		api.POST("/sessions", requireAuth, sessionHandler.Create)
		api.PUT("/sessions/:id", requireAuth, sessionHandler.Update)
		api.DELETE("/sessions/:id", requireAuth, sessionHandler.Delete)

		// Time slots
		api.GET("/time-slots", timeSlotHandler.ListAvailable)
		api.GET("/time-slots/coach", requireAuth, timeSlotHandler.ListMine)
		api.POST("/time-slots", requireAuth, timeSlotHandler.Create)
		api.PUT("/time-slots/:id", requireAuth, timeSlotHandler.Update)
		api.DELETE("/time-slots/:id", requireAuth, timeSlotHandler.Delete)
	}

	log.Printf("API server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
