package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/backtest"
	"github.com/alphaquant/idx-screener-go/internal/cache"
	"github.com/alphaquant/idx-screener-go/internal/models"
)

// StatsWriter persists and reloads backtest performance summaries.
type StatsWriter interface {
	UpsertStats(ctx context.Context, stats models.BacktestStats) error
	LoadAllStats(ctx context.Context) (map[string]models.BacktestStats, error)
}

type BacktestHandler struct {
	runner     *backtest.Runner
	store      StatsWriter
	statsCache *cache.RedisStatsCache
	universe   []models.Stock
	logger     *logrus.Logger
}

type BacktestRequest struct {
	// Symbols optionally restricts the run; empty means the full universe.
	Symbols []string `json:"symbols"`
}

type BacktestResponse struct {
	Reports   []*backtest.Report `json:"reports"`
	Persisted int                `json:"persisted"`
	Timestamp time.Time          `json:"timestamp"`
}

type BacktestStatsResponse struct {
	Stats map[string]models.BacktestStats `json:"stats"`
	Count int                             `json:"count"`
}

func NewBacktestHandler(runner *backtest.Runner, store StatsWriter, statsCache *cache.RedisStatsCache, universe []models.Stock, logger *logrus.Logger) *BacktestHandler {
	return &BacktestHandler{
		runner:     runner,
		store:      store,
		statsCache: statsCache,
		universe:   universe,
		logger:     logger,
	}
}

// Run simulates the strategy over the requested symbols and stores the
// per-instrument stats that feed the live scan filter.
func (h *BacktestHandler) Run(c *gin.Context) {
	var req BacktestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = make([]string, 0, len(h.universe))
		for _, stock := range h.universe {
			symbols = append(symbols, stock.Ticker)
		}
	}

	ctx := c.Request.Context()
	reports := h.runner.Run(ctx, symbols)

	persisted := 0
	for _, report := range reports {
		stats := models.BacktestStats{
			Ticker:         report.Symbol,
			TradeCount:     report.TradeCount,
			WinCount:       report.WinCount,
			WinRate:        report.WinRate,
			NetReturnPct:   report.NetReturnPct,
			MaxDrawdownPct: report.MaxDrawdownPct,
			GeneratedAt:    report.GeneratedAt,
		}
		if err := h.store.UpsertStats(ctx, stats); err != nil {
			h.logger.WithFields(logrus.Fields{
				"ticker": report.Symbol,
				"error":  err.Error(),
			}).Error("Failed to persist backtest stats")
			continue
		}
		persisted++
	}

	if h.statsCache != nil && persisted > 0 {
		if err := h.statsCache.Invalidate(ctx); err != nil {
			h.logger.WithField("error", err.Error()).Warn("Failed to invalidate stats cache")
		}
	}

	c.JSON(http.StatusOK, BacktestResponse{
		Reports:   reports,
		Persisted: persisted,
		Timestamp: time.Now(),
	})
}

// Stats returns the stored performance table.
func (h *BacktestHandler) Stats(c *gin.Context) {
	stats, err := h.store.LoadAllStats(c.Request.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to load backtest stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load backtest stats"})
		return
	}

	c.JSON(http.StatusOK, BacktestStatsResponse{Stats: stats, Count: len(stats)})
}
