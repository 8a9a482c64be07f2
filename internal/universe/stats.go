package universe

import "github.com/alphaquant/idx-screener-go/internal/models"

// StatsTable is a read-only lookup of historical backtest performance,
// built once per scan run and passed into the scoring path explicitly.
type StatsTable struct {
	stats map[string]models.BacktestStats
}

// NewStatsTable wraps a stats map. A nil map produces an empty table.
func NewStatsTable(stats map[string]models.BacktestStats) *StatsTable {
	if stats == nil {
		stats = make(map[string]models.BacktestStats)
	}
	return &StatsTable{stats: stats}
}

// Lookup returns the stored stats for a ticker.
func (t *StatsTable) Lookup(ticker string) (models.BacktestStats, bool) {
	s, ok := t.stats[ticker]
	return s, ok
}

// Len returns the number of instruments with stored stats.
func (t *StatsTable) Len() int {
	return len(t.stats)
}

// FilterCriteria selects which instruments are considered tradeable.
type FilterCriteria struct {
	MinWinRate float64
	MinTrades  int
}

// Filter keeps the stocks whose historical performance clears the criteria,
// preserving input order. With an empty table every stock passes: a universe
// that has never been backtested is scanned unfiltered.
func (t *StatsTable) Filter(stocks []models.Stock, criteria FilterCriteria) []models.Stock {
	if t.Len() == 0 {
		return stocks
	}

	filtered := make([]models.Stock, 0, len(stocks))
	for _, stock := range stocks {
		stats, ok := t.stats[stock.Ticker]
		if !ok {
			continue
		}
		if stats.WinRate >= criteria.MinWinRate && stats.TradeCount >= criteria.MinTrades {
			filtered = append(filtered, stock)
		}
	}

	return filtered
}
