package main

import (
	"context"
	"os"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/resonatefm/resonate/internal/db"
	"github.com/resonatefm/resonate/internal/identity"
	"github.com/resonatefm/resonate/internal/recommend"
	"github.com/resonatefm/resonate/internal/service"
	"github.com/resonatefm/resonate/internal/spotify"
)

func main() {
	var logger *zap.Logger
	var err error

	if os.Getenv("DEBUG") == "true" {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		if err := godotenv.Load(); err != nil {
			logger.Warn("Warning: .env file not found. Using system environment variables.")
		}
	} else {
		logger, err = zap.NewProduction()
		if err != nil {
			panic(err)
		}
	}
	defer logger.Sync()

	db.InitializeLogger(logger)
	spotify.InitializeLogger(logger)
	identity.InitializeLogger(logger)
	service.InitializeLogger(logger)

	ctx := context.Background()

	store, err := db.New(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	identityClient, err := identity.NewClient()
	if err != nil {
		logger.Fatal("Failed to create identity client", zap.Error(err))
	}

	recommender, err := recommend.NewClient()
	if err != nil {
		logger.Fatal("Failed to create recommendation client", zap.Error(err))
	}

	metrics := service.NewMetrics(prometheus.DefaultRegisterer)
	svc := service.New(store, spotify.NewClient(), recommender, identityClient, identityClient, metrics)

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(metrics.Instrument())

	// CORS headers for the front end
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Resonate API",
			"version": "1.0.0",
			"status":  "healthy",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	svc.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		logger.Info("Defaulting to port", zap.String("port", port))
	}

	logger.Info("Resonate server starting", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to run server", zap.Error(err))
	}
}
