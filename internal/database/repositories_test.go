package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool
}

func TestPriceRepository_GetDailyPrices(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewPriceRepository(mockPool)

	day1 := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	// The query returns newest first; the repository reverses into
	// chronological order.
	rows := pgxmock.NewRows([]string{"time", "ticker", "open", "high", "low", "close", "volume"}).
		AddRow(day2, "BBCA.JK", decimal.NewFromInt(9800), decimal.NewFromInt(9900), decimal.NewFromInt(9700), decimal.NewFromInt(9850), int64(1000)).
		AddRow(day1, "BBCA.JK", decimal.NewFromInt(9700), decimal.NewFromInt(9850), decimal.NewFromInt(9650), decimal.NewFromInt(9800), int64(900))

	mockPool.ExpectQuery("SELECT time, ticker, open, high, low, close, volume").
		WithArgs("BBCA.JK", 500).
		WillReturnRows(rows)

	prices, err := repo.GetDailyPrices(context.Background(), "BBCA.JK", 500)
	require.NoError(t, err)

	require.Len(t, prices, 2)
	assert.Equal(t, day1, prices[0].Time)
	assert.Equal(t, day2, prices[1].Time)
	assert.True(t, prices[0].Close.Equal(decimal.NewFromInt(9800)))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPriceRepository_GetDailyPrices_QueryError(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewPriceRepository(mockPool)

	mockPool.ExpectQuery("SELECT time, ticker").
		WithArgs("BBCA.JK", 500).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetDailyPrices(context.Background(), "BBCA.JK", 500)
	assert.ErrorContains(t, err, "connection reset")
}

func TestPriceRepository_UpsertDailyPrices(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewPriceRepository(mockPool)

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	price := models.DailyPrice{
		Time: day, Ticker: "BBCA.JK",
		Open: decimal.NewFromInt(9700), High: decimal.NewFromInt(9900),
		Low: decimal.NewFromInt(9650), Close: decimal.NewFromInt(9850),
		Volume: 1200,
	}

	mockPool.ExpectExec("INSERT INTO daily_prices").
		WithArgs(price.Time, price.Ticker, price.Open, price.High, price.Low, price.Close, price.Volume).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.UpsertDailyPrices(context.Background(), []models.DailyPrice{price}))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPriceRepository_EnsureStock(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewPriceRepository(mockPool)

	stock := models.Stock{Ticker: "BBCA.JK", Name: "Bank Central Asia", Board: "Main", Sector: "Financials"}

	mockPool.ExpectExec("INSERT INTO stocks").
		WithArgs(stock.Ticker, stock.Name, stock.Board, stock.Sector).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.EnsureStock(context.Background(), stock))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestBacktestRepository_UpsertStats(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewBacktestRepository(mockPool)

	stats := models.BacktestStats{
		Ticker: "BBCA.JK", TradeCount: 12, WinCount: 9, WinRate: 75,
		NetReturnPct: 14.2, MaxDrawdownPct: 8.1,
		GeneratedAt: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	}

	mockPool.ExpectExec("INSERT INTO backtest_reports").
		WithArgs(stats.Ticker, stats.TradeCount, stats.WinCount, stats.WinRate,
			stats.NetReturnPct, stats.MaxDrawdownPct, stats.GeneratedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.UpsertStats(context.Background(), stats))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestBacktestRepository_LoadAllStats(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewBacktestRepository(mockPool)

	generated := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"ticker", "trade_count", "win_count", "win_rate", "net_return_pct", "max_drawdown_pct", "generated_at"}).
		AddRow("BBCA.JK", 12, 9, 75.0, 14.2, 8.1, generated).
		AddRow("TLKM.JK", 8, 5, 62.5, -3.4, 11.0, generated)

	mockPool.ExpectQuery("SELECT ticker, trade_count").WillReturnRows(rows)

	stats, err := repo.LoadAllStats(context.Background())
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.InDelta(t, 75.0, stats["BBCA.JK"].WinRate, 1e-9)
	assert.InDelta(t, -3.4, stats["TLKM.JK"].NetReturnPct, 1e-9)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestScreenerRepository_InsertResult(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewScreenerRepository(mockPool)

	result := models.ScreenerResult{
		RunID:      uuid.New(),
		ScanDate:   time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
		Ticker:     "BBCA.JK",
		Signal:     "DIAMOND_SETUP",
		Score:      80,
		Confidence: 0.82,
		Entry:      decimal.NewFromInt(9850),
		StopLoss:   decimal.NewFromInt(9350),
		TakeProfit: decimal.NewFromInt(10500),
		Lots:       6,
		Status:     models.ResultStatusNew,
	}

	mockPool.ExpectExec("INSERT INTO screener_results").
		WithArgs(result.RunID, result.ScanDate, result.Ticker, result.Signal, result.Score,
			result.Confidence, result.Entry, result.StopLoss, result.TakeProfit, result.Lots, result.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.InsertResult(context.Background(), result))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestScreenerRepository_RecentResults(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewScreenerRepository(mockPool)

	runID := uuid.New()
	scanDate := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "run_id", "scan_date", "ticker", "signal", "score", "confidence", "entry", "stop_loss", "take_profit", "lots", "status"}).
		AddRow(int64(1), runID, scanDate, "BBCA.JK", "DIAMOND_SETUP", 80, 0.82,
			decimal.NewFromInt(9850), decimal.NewFromInt(9350), decimal.NewFromInt(10500), 6, "NEW")

	mockPool.ExpectQuery("SELECT id, run_id, scan_date").
		WithArgs(25).
		WillReturnRows(rows)

	results, err := repo.RecentResults(context.Background(), 25)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "BBCA.JK", results[0].Ticker)
	assert.Equal(t, runID, results[0].RunID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
