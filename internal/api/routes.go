package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alphaquant/idx-screener-go/internal/api/handlers"
	"github.com/alphaquant/idx-screener-go/internal/database"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func SetupRoutes(
	router *gin.Engine,
	db *database.PostgresDB,
	redis *database.RedisClient,
	screenerHandler *handlers.ScreenerHandler,
	marketHandler *handlers.MarketHandler,
	backtestHandler *handlers.BacktestHandler,
	reportsHandler *handlers.ReportsHandler,
) {
	// Health check endpoint
	router.GET("/health", healthCheck(db, redis))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/analyze/:symbol", screenerHandler.Analyze)
		v1.POST("/scan", screenerHandler.Scan)
		v1.GET("/market/brief", screenerHandler.MarketBrief)
		v1.POST("/market/prices", marketHandler.Ingest)

		backtest := v1.Group("/backtest")
		{
			backtest.POST("", backtestHandler.Run)
			backtest.GET("/stats", backtestHandler.Stats)
		}

		v1.GET("/reports", reportsHandler.Recent)
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		// Check database health
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		// Check Redis health
		if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
