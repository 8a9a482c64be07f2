package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

// DatabasePool is the pool surface the repositories depend on. Both the real
// pgx pool and the pgxmock pool implement it.
type DatabasePool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PriceRepository reads and writes the daily_prices hypertable.
type PriceRepository struct {
	pool DatabasePool
}

func NewPriceRepository(pool DatabasePool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetDailyPrices returns up to limit most recent daily bars for a ticker in
// chronological order.
func (r *PriceRepository) GetDailyPrices(ctx context.Context, ticker string, limit int) ([]models.DailyPrice, error) {
	query := `
		SELECT time, ticker, open, high, low, close, volume
		FROM daily_prices
		WHERE ticker = $1
		ORDER BY time DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query daily prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	var prices []models.DailyPrice
	for rows.Next() {
		var p models.DailyPrice
		if err := rows.Scan(&p.Time, &p.Ticker, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan daily price for %s: %w", ticker, err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily prices for %s: %w", ticker, err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}

	return prices, nil
}

// UpsertDailyPrices stores a batch of bars, replacing rows for existing
// (ticker, time) pairs.
func (r *PriceRepository) UpsertDailyPrices(ctx context.Context, prices []models.DailyPrice) error {
	query := `
		INSERT INTO daily_prices (time, ticker, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (time, ticker) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`

	for _, p := range prices {
		if _, err := r.pool.Exec(ctx, query, p.Time, p.Ticker, p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			return fmt.Errorf("upsert daily price %s@%s: %w", p.Ticker, p.Time.Format("2006-01-02"), err)
		}
	}

	return nil
}

// EnsureStock registers an instrument if it is not known yet.
func (r *PriceRepository) EnsureStock(ctx context.Context, stock models.Stock) error {
	query := `
		INSERT INTO stocks (ticker, name, board, sector)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, stock.Ticker, stock.Name, stock.Board, stock.Sector); err != nil {
		return fmt.Errorf("ensure stock %s: %w", stock.Ticker, err)
	}
	return nil
}
