package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

// PriceWriter persists instruments and their daily bars.
type PriceWriter interface {
	EnsureStock(ctx context.Context, stock models.Stock) error
	UpsertDailyPrices(ctx context.Context, prices []models.DailyPrice) error
}

type MarketHandler struct {
	prices PriceWriter
	logger *logrus.Logger
}

type IngestBar struct {
	Time   time.Time `json:"time" binding:"required"`
	Open   float64   `json:"open" binding:"required"`
	High   float64   `json:"high" binding:"required"`
	Low    float64   `json:"low" binding:"required"`
	Close  float64   `json:"close" binding:"required"`
	Volume int64     `json:"volume"`
}

type IngestRequest struct {
	Ticker string      `json:"ticker" binding:"required"`
	Name   string      `json:"name"`
	Board  string      `json:"board"`
	Sector string      `json:"sector"`
	Bars   []IngestBar `json:"bars" binding:"required,min=1,dive"`
}

type IngestResponse struct {
	Ticker    string    `json:"ticker"`
	Bars      int       `json:"bars"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMarketHandler(prices PriceWriter, logger *logrus.Logger) *MarketHandler {
	return &MarketHandler{prices: prices, logger: logger}
}

// Ingest registers an instrument and upserts a batch of its daily bars. The
// history feed calls this after each collection run.
func (h *MarketHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingest payload: " + err.Error()})
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if !strings.Contains(ticker, ".") {
		ticker += ".JK"
	}

	stock := models.Stock{
		Ticker: ticker,
		Name:   strings.TrimSpace(req.Name),
		Board:  strings.TrimSpace(req.Board),
		Sector: strings.TrimSpace(req.Sector),
	}
	if err := h.prices.EnsureStock(c.Request.Context(), stock); err != nil {
		h.logger.WithFields(logrus.Fields{
			"ticker": ticker,
			"error":  err.Error(),
		}).Error("Failed to register instrument")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register " + ticker})
		return
	}

	rows := make([]models.DailyPrice, len(req.Bars))
	for i, bar := range req.Bars {
		rows[i] = models.DailyPrice{
			Ticker: ticker,
			Time:   bar.Time,
			Open:   decimal.NewFromFloat(bar.Open),
			High:   decimal.NewFromFloat(bar.High),
			Low:    decimal.NewFromFloat(bar.Low),
			Close:  decimal.NewFromFloat(bar.Close),
			Volume: bar.Volume,
		}
	}
	if err := h.prices.UpsertDailyPrices(c.Request.Context(), rows); err != nil {
		h.logger.WithFields(logrus.Fields{
			"ticker": ticker,
			"bars":   len(rows),
			"error":  err.Error(),
		}).Error("Failed to store daily bars")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store bars for " + ticker})
		return
	}

	c.JSON(http.StatusOK, IngestResponse{
		Ticker:    ticker,
		Bars:      len(rows),
		Timestamp: time.Now(),
	})
}
