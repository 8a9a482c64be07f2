package database

import (
	"context"
	"fmt"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

// BacktestRepository persists per-instrument backtest summaries and serves
// the read-only stats lookup the live scan filters on.
type BacktestRepository struct {
	pool DatabasePool
}

func NewBacktestRepository(pool DatabasePool) *BacktestRepository {
	return &BacktestRepository{pool: pool}
}

// UpsertStats replaces the stored summary for an instrument.
func (r *BacktestRepository) UpsertStats(ctx context.Context, stats models.BacktestStats) error {
	query := `
		INSERT INTO backtest_reports (ticker, trade_count, win_count, win_rate, net_return_pct, max_drawdown_pct, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker) DO UPDATE SET
			trade_count = EXCLUDED.trade_count,
			win_count = EXCLUDED.win_count,
			win_rate = EXCLUDED.win_rate,
			net_return_pct = EXCLUDED.net_return_pct,
			max_drawdown_pct = EXCLUDED.max_drawdown_pct,
			generated_at = EXCLUDED.generated_at
	`
	_, err := r.pool.Exec(ctx, query,
		stats.Ticker, stats.TradeCount, stats.WinCount,
		stats.WinRate, stats.NetReturnPct, stats.MaxDrawdownPct, stats.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert backtest stats for %s: %w", stats.Ticker, err)
	}
	return nil
}

// LoadAllStats returns every stored summary keyed by ticker.
func (r *BacktestRepository) LoadAllStats(ctx context.Context) (map[string]models.BacktestStats, error) {
	query := `
		SELECT ticker, trade_count, win_count, win_rate, net_return_pct, max_drawdown_pct, generated_at
		FROM backtest_reports
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query backtest stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]models.BacktestStats)
	for rows.Next() {
		var s models.BacktestStats
		if err := rows.Scan(&s.Ticker, &s.TradeCount, &s.WinCount, &s.WinRate, &s.NetReturnPct, &s.MaxDrawdownPct, &s.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan backtest stats: %w", err)
		}
		stats[s.Ticker] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest stats: %w", err)
	}

	return stats, nil
}
