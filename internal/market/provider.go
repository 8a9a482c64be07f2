package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/database"
)

// tradingDaysPerYear approximates the IDX calendar for period parsing.
const tradingDaysPerYear = 252

// HistoryProvider supplies raw daily bars for one instrument.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string, period string) ([]analysis.Bar, error)
}

// PostgresHistoryProvider reads daily bars from the prices repository.
type PostgresHistoryProvider struct {
	prices *database.PriceRepository
}

func NewPostgresHistoryProvider(prices *database.PriceRepository) *PostgresHistoryProvider {
	return &PostgresHistoryProvider{prices: prices}
}

// FetchHistory returns the trailing bars covering the requested period, in
// chronological order. An empty result is reported as insufficient data so
// batch callers skip the instrument.
func (p *PostgresHistoryProvider) FetchHistory(ctx context.Context, symbol, period string) ([]analysis.Bar, error) {
	limit, err := PeriodBars(period)
	if err != nil {
		return nil, err
	}

	rows, err := p.prices.GetDailyPrices(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no history for %s: %w", symbol, analysis.ErrInsufficientData)
	}

	bars := make([]analysis.Bar, len(rows))
	for i, row := range rows {
		bars[i] = row.ToBar()
	}
	return bars, nil
}

// PeriodBars converts a period shorthand ("2y", "6mo", "90d") into a trading
// day count.
func PeriodBars(period string) (int, error) {
	period = strings.ToLower(strings.TrimSpace(period))

	parse := func(s string, perUnit int) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid history period %q", period)
		}
		return n * perUnit, nil
	}

	switch {
	case strings.HasSuffix(period, "mo"):
		return parse(strings.TrimSuffix(period, "mo"), tradingDaysPerYear/12)
	case strings.HasSuffix(period, "y"):
		return parse(strings.TrimSuffix(period, "y"), tradingDaysPerYear)
	case strings.HasSuffix(period, "d"):
		return parse(strings.TrimSuffix(period, "d"), 1)
	default:
		return 0, fmt.Errorf("invalid history period %q", period)
	}
}

// Service ties history retrieval and indicator enrichment together. It
// implements the series source both the backtest runner and the live
// screener consume.
type Service struct {
	provider HistoryProvider
	enricher *Enricher
	period   string
	logger   *logrus.Logger
}

func NewService(provider HistoryProvider, enricher *Enricher, period string, logger *logrus.Logger) *Service {
	return &Service{provider: provider, enricher: enricher, period: period, logger: logger}
}

// EnrichedSeries fetches the configured history window for a symbol and
// computes its indicator columns.
func (s *Service) EnrichedSeries(ctx context.Context, symbol string) (*analysis.Series, error) {
	bars, err := s.provider.FetchHistory(ctx, symbol, s.period)
	if err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}

	series := &analysis.Series{Symbol: symbol, Bars: bars}
	s.enricher.Enrich(series)

	s.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   len(bars),
	}).Debug("series enriched")

	return series, nil
}
