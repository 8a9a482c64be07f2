package database

import (
	"context"
	"fmt"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

// ScreenerRepository persists live scan alerts.
type ScreenerRepository struct {
	pool DatabasePool
}

func NewScreenerRepository(pool DatabasePool) *ScreenerRepository {
	return &ScreenerRepository{pool: pool}
}

// InsertResult records one alert from a scan run.
func (r *ScreenerRepository) InsertResult(ctx context.Context, result models.ScreenerResult) error {
	query := `
		INSERT INTO screener_results (run_id, scan_date, ticker, signal, score, confidence, entry, stop_loss, take_profit, lots, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		result.RunID, result.ScanDate, result.Ticker, result.Signal, result.Score,
		result.Confidence, result.Entry, result.StopLoss, result.TakeProfit, result.Lots, result.Status,
	)
	if err != nil {
		return fmt.Errorf("insert screener result for %s: %w", result.Ticker, err)
	}
	return nil
}

// RecentResults returns the latest alerts, newest first.
func (r *ScreenerRepository) RecentResults(ctx context.Context, limit int) ([]models.ScreenerResult, error) {
	query := `
		SELECT id, run_id, scan_date, ticker, signal, score, confidence, entry, stop_loss, take_profit, lots, status
		FROM screener_results
		ORDER BY scan_date DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query screener results: %w", err)
	}
	defer rows.Close()

	var results []models.ScreenerResult
	for rows.Next() {
		var res models.ScreenerResult
		if err := rows.Scan(&res.ID, &res.RunID, &res.ScanDate, &res.Ticker, &res.Signal, &res.Score,
			&res.Confidence, &res.Entry, &res.StopLoss, &res.TakeProfit, &res.Lots, &res.Status); err != nil {
			return nil, fmt.Errorf("scan screener result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screener results: %w", err)
	}

	return results, nil
}
