package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

func testStocks() []models.Stock {
	return []models.Stock{
		{Ticker: "AAAA.JK"},
		{Ticker: "BBBB.JK"},
		{Ticker: "CCCC.JK"},
	}
}

func TestStatsTable_Filter(t *testing.T) {
	table := NewStatsTable(map[string]models.BacktestStats{
		"AAAA.JK": {Ticker: "AAAA.JK", WinRate: 75, TradeCount: 10},
		"BBBB.JK": {Ticker: "BBBB.JK", WinRate: 60, TradeCount: 12},
		"CCCC.JK": {Ticker: "CCCC.JK", WinRate: 80, TradeCount: 5},
	})

	filtered := table.Filter(testStocks(), FilterCriteria{MinWinRate: 70, MinTrades: 8})

	require.Len(t, filtered, 1)
	assert.Equal(t, "AAAA.JK", filtered[0].Ticker)
}

func TestStatsTable_FilterBoundaryValues(t *testing.T) {
	table := NewStatsTable(map[string]models.BacktestStats{
		"AAAA.JK": {Ticker: "AAAA.JK", WinRate: 70, TradeCount: 8},
	})

	// Thresholds are inclusive.
	filtered := table.Filter(testStocks(), FilterCriteria{MinWinRate: 70, MinTrades: 8})
	assert.Len(t, filtered, 1)
}

func TestStatsTable_EmptyTableScansUnfiltered(t *testing.T) {
	stocks := testStocks()

	filtered := NewStatsTable(nil).Filter(stocks, FilterCriteria{MinWinRate: 70, MinTrades: 8})

	assert.Equal(t, stocks, filtered)
}

func TestStatsTable_UnknownTickerDropped(t *testing.T) {
	table := NewStatsTable(map[string]models.BacktestStats{
		"AAAA.JK": {Ticker: "AAAA.JK", WinRate: 90, TradeCount: 20},
	})

	filtered := table.Filter(testStocks(), FilterCriteria{})

	require.Len(t, filtered, 1)
	assert.Equal(t, "AAAA.JK", filtered[0].Ticker)
}

func TestStatsTable_Lookup(t *testing.T) {
	table := NewStatsTable(map[string]models.BacktestStats{
		"AAAA.JK": {Ticker: "AAAA.JK", WinRate: 90},
	})

	stats, ok := table.Lookup("AAAA.JK")
	assert.True(t, ok)
	assert.InDelta(t, 90.0, stats.WinRate, 1e-9)

	_, ok = table.Lookup("ZZZZ.JK")
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}
