package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

const defaultReportLimit = 50

// ResultReader loads persisted scan results.
type ResultReader interface {
	RecentResults(ctx context.Context, limit int) ([]models.ScreenerResult, error)
}

type ReportsHandler struct {
	store  ResultReader
	logger *logrus.Logger
}

type ReportsResponse struct {
	Results   []models.ScreenerResult `json:"results"`
	Count     int                     `json:"count"`
	Timestamp time.Time               `json:"timestamp"`
}

func NewReportsHandler(store ResultReader, logger *logrus.Logger) *ReportsHandler {
	return &ReportsHandler{store: store, logger: logger}
}

// Recent returns the latest persisted scan results, newest first.
func (h *ReportsHandler) Recent(c *gin.Context) {
	limit := defaultReportLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	results, err := h.store.RecentResults(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to load scan results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reports"})
		return
	}

	c.JSON(http.StatusOK, ReportsResponse{
		Results:   results,
		Count:     len(results),
		Timestamp: time.Now(),
	})
}
