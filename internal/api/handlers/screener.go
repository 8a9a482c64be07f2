package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/models"
	"github.com/alphaquant/idx-screener-go/internal/screener"
)

type ScreenerHandler struct {
	scanner  *screener.Scanner
	health   *screener.HealthAnalyzer
	universe []models.Stock
	logger   *logrus.Logger
}

type AnalyzeResponse struct {
	Finding   *screener.Finding `json:"finding"`
	Timestamp time.Time         `json:"timestamp"`
}

type ScanResponse struct {
	Summary   *screener.Summary `json:"summary"`
	Timestamp time.Time         `json:"timestamp"`
}

type MarketBriefResponse struct {
	Health *screener.MarketHealth `json:"health"`
	Brief  string                 `json:"brief"`
}

func NewScreenerHandler(scanner *screener.Scanner, health *screener.HealthAnalyzer, universe []models.Stock, logger *logrus.Logger) *ScreenerHandler {
	return &ScreenerHandler{
		scanner:  scanner,
		health:   health,
		universe: universe,
		logger:   logger,
	}
}

// Analyze evaluates a single symbol on demand.
func (h *ScreenerHandler) Analyze(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	if !strings.Contains(symbol, ".") {
		symbol += ".JK"
	}

	finding, err := h.scanner.Analyze(c.Request.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrInsufficientData):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough history to analyze " + symbol})
		case errors.Is(err, analysis.ErrDegenerateStructure):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "price structure too flat to analyze " + symbol})
		default:
			h.logger.WithFields(logrus.Fields{
				"symbol": symbol,
				"error":  err.Error(),
			}).Error("Analyze request failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze " + symbol})
		}
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{Finding: finding, Timestamp: time.Now()})
}

// Scan runs a full screening pass over the configured universe.
func (h *ScreenerHandler) Scan(c *gin.Context) {
	summary, err := h.scanner.Scan(c.Request.Context(), h.universe)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Scan request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan run failed"})
		return
	}

	c.JSON(http.StatusOK, ScanResponse{Summary: summary, Timestamp: time.Now()})
}

// MarketBrief aggregates universe breadth and watchlists.
func (h *ScreenerHandler) MarketBrief(c *gin.Context) {
	health, err := h.health.Evaluate(c.Request.Context(), h.universe)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Market brief request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "market brief failed"})
		return
	}

	c.JSON(http.StatusOK, MarketBriefResponse{Health: health, Brief: health.Brief()})
}
