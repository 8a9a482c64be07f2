package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/api"
	"github.com/alphaquant/idx-screener-go/internal/api/handlers"
	"github.com/alphaquant/idx-screener-go/internal/backtest"
	"github.com/alphaquant/idx-screener-go/internal/cache"
	"github.com/alphaquant/idx-screener-go/internal/config"
	"github.com/alphaquant/idx-screener-go/internal/database"
	"github.com/alphaquant/idx-screener-go/internal/logging"
	"github.com/alphaquant/idx-screener-go/internal/market"
	"github.com/alphaquant/idx-screener-go/internal/notify"
	"github.com/alphaquant/idx-screener-go/internal/screener"
	"github.com/alphaquant/idx-screener-go/internal/universe"
)

const statsCacheTTL = 6 * time.Hour

func main() {
	// Load .env when present; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	// Load the tradeable universe from the master stock list.
	stocks, err := universe.LoadCSV(cfg.Screener.StockListFile)
	if err != nil {
		logger.Fatalf("Failed to load stock universe: %v", err)
	}
	logger.Infof("Loaded %d stocks from %s", len(stocks), cfg.Screener.StockListFile)

	// Market data pipeline: Postgres history enriched with indicators.
	prices := database.NewPriceRepository(db.Pool)
	enricher := market.NewEnricher(cfg.Indicators)
	marketService := market.NewService(
		market.NewPostgresHistoryProvider(prices),
		enricher,
		cfg.Screener.HistoryPeriod,
		logger,
	)

	// Stats storage and cache.
	backtests := database.NewBacktestRepository(db.Pool)
	statsCache := cache.NewRedisStatsCache(redis.Client, statsCacheTTL, logger)
	results := database.NewScreenerRepository(db.Pool)

	// Alert sinks: log always, Telegram and Discord when configured.
	sinks := []notify.Notifier{notify.NewLogNotifier(logger)}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		telegram, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Warnf("Telegram notifier disabled: %v", err)
		} else {
			sinks = append(sinks, telegram)
		}
	}
	if cfg.Discord.WebhookURL != "" {
		timeout, _ := time.ParseDuration(cfg.Discord.Timeout) // validated in config.Load
		sinks = append(sinks, notify.NewDiscordNotifier(cfg.Discord.WebhookURL, timeout))
	}
	notifier := notify.NewFanout(logger, sinks...)

	scanner := screener.NewScanner(
		cfg.Screener,
		marketService,
		backtests,
		statsCache,
		results,
		notifier,
		analysis.StaticConfidenceScorer{Value: 1.0},
		logger,
	)
	health := screener.NewHealthAnalyzer(marketService, logger)

	runner := backtest.NewRunner(
		marketService,
		backtest.SimulatorConfig{
			InitialCapital: cfg.Backtest.InitialCapital,
			RiskFraction:   cfg.Backtest.RiskFraction,
			WarmupBars:     cfg.Backtest.WarmupBars,
			FibLookback:    cfg.Backtest.FibLookback,
			Zone: analysis.ZoneTolerance{
				BandLow:  cfg.Backtest.EntryBandLow,
				BandHigh: cfg.Backtest.EntryBandHigh,
			},
		},
		cfg.Backtest.Workers,
		logger,
	)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(
		router,
		db,
		redis,
		handlers.NewScreenerHandler(scanner, health, stocks, logger),
		handlers.NewMarketHandler(prices, logger),
		handlers.NewBacktestHandler(runner, backtests, statsCache, stocks, logger),
		handlers.NewReportsHandler(results, logger),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
