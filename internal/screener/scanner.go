package screener

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/cache"
	"github.com/alphaquant/idx-screener-go/internal/config"
	"github.com/alphaquant/idx-screener-go/internal/models"
	"github.com/alphaquant/idx-screener-go/internal/notify"
	"github.com/alphaquant/idx-screener-go/internal/universe"
)

// Scanner runs the live screening pass over the tradeable universe.
type Scanner struct {
	cfg        config.ScreenerConfig
	market     MarketData
	backtests  StatsStore
	statsCache *cache.RedisStatsCache
	results    ResultStore
	notifier   notify.Notifier
	confidence analysis.ConfidenceScorer
	scorer     *analysis.Scorer
	logger     *logrus.Logger

	rateLimit time.Duration
}

// MarketData supplies indicator-enriched history per instrument.
type MarketData interface {
	EnrichedSeries(ctx context.Context, symbol string) (*analysis.Series, error)
}

// StatsStore loads the persisted backtest performance table.
type StatsStore interface {
	LoadAllStats(ctx context.Context) (map[string]models.BacktestStats, error)
}

// ResultStore persists scan findings.
type ResultStore interface {
	InsertResult(ctx context.Context, result models.ScreenerResult) error
}

// Finding is one actionable setup surfaced by a scan.
type Finding struct {
	Ticker     string                `json:"ticker"`
	Setup      *analysis.SetupScore  `json:"setup"`
	Plan       analysis.TradePlan    `json:"plan"`
	Confidence float64               `json:"confidence"`
	Stats      *models.BacktestStats `json:"stats,omitempty"`
}

// Summary reports the outcome of one scan run.
type Summary struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Universe   int       `json:"universe"`
	Scanned    int       `json:"scanned"`
	Skipped    int       `json:"skipped"`
	Findings   []Finding `json:"findings"`
}

func NewScanner(
	cfg config.ScreenerConfig,
	market MarketData,
	backtests StatsStore,
	statsCache *cache.RedisStatsCache,
	results ResultStore,
	notifier notify.Notifier,
	confidence analysis.ConfidenceScorer,
	logger *logrus.Logger,
) *Scanner {
	zone := analysis.LiveZoneTolerance()
	if cfg.ValueZoneProximity > 0 {
		zone.Proximity = cfg.ValueZoneProximity
	}

	rateLimit := time.Duration(0)
	if cfg.RateLimitDelay != "" {
		if d, err := time.ParseDuration(cfg.RateLimitDelay); err == nil {
			rateLimit = d
		}
	}

	return &Scanner{
		cfg:        cfg,
		market:     market,
		backtests:  backtests,
		statsCache: statsCache,
		results:    results,
		notifier:   notifier,
		confidence: confidence,
		scorer: analysis.NewScorer(analysis.ScorerConfig{
			FibLookback: cfg.FibLookback,
			Zone:        zone,
		}),
		logger:    logger,
		rateLimit: rateLimit,
	}
}

// Scan screens every stock that clears the historical performance filter.
// Per-instrument failures are logged and skipped so a bad symbol never
// aborts the run.
func (s *Scanner) Scan(ctx context.Context, stocks []models.Stock) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Universe:  len(stocks),
		Findings:  []Finding{},
	}

	stats := s.loadStats(ctx)
	candidates := stats.Filter(stocks, universe.FilterCriteria{
		MinWinRate: s.cfg.MinWinRate,
		MinTrades:  s.cfg.MinTrades,
	})

	s.logger.WithFields(logrus.Fields{
		"run_id":     summary.RunID.String(),
		"universe":   len(stocks),
		"candidates": len(candidates),
	}).Info("Starting scan run")

	for _, stock := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		finding, err := s.scanOne(ctx, stock.Ticker, stats)
		summary.Scanned++
		if err != nil {
			summary.Skipped++
			s.logSkip(stock.Ticker, err)
			continue
		}
		if finding == nil {
			continue
		}

		summary.Findings = append(summary.Findings, *finding)
		s.deliver(ctx, summary.RunID, *finding)

		if s.rateLimit > 0 {
			time.Sleep(s.rateLimit)
		}
	}

	summary.FinishedAt = time.Now()
	s.logger.WithFields(logrus.Fields{
		"run_id":   summary.RunID.String(),
		"scanned":  summary.Scanned,
		"skipped":  summary.Skipped,
		"findings": len(summary.Findings),
	}).Info("Scan run finished")

	return summary, nil
}

// Analyze evaluates a single instrument without persistence or delivery,
// for on-demand lookups.
func (s *Scanner) Analyze(ctx context.Context, ticker string) (*Finding, error) {
	series, err := s.market.EnrichedSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}

	setup, err := s.scorer.Score(series)
	if err != nil {
		return nil, err
	}
	if setup.Fib.Degenerate() {
		return nil, analysis.ErrDegenerateStructure
	}

	close := series.Bars[series.Len()-1].Close
	plan := analysis.BuildPlan(close, setup.Fib, s.cfg.Capital, s.cfg.RiskFraction)

	confidence, err := s.confidence.Score(ctx, series.Bars)
	if err != nil {
		return nil, err
	}

	finding := &Finding{
		Ticker:     ticker,
		Setup:      setup,
		Plan:       plan,
		Confidence: confidence,
	}
	if stats, ok := s.loadStats(ctx).Lookup(ticker); ok {
		finding.Stats = &stats
	}
	return finding, nil
}

func (s *Scanner) scanOne(ctx context.Context, ticker string, stats *universe.StatsTable) (*Finding, error) {
	series, err := s.market.EnrichedSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}

	setup, err := s.scorer.Score(series)
	if err != nil {
		return nil, err
	}
	if setup.Fib.Degenerate() {
		return nil, analysis.ErrDegenerateStructure
	}
	if setup.Signal == analysis.SignalWait {
		return nil, nil
	}

	close := series.Bars[series.Len()-1].Close
	plan := analysis.BuildPlan(close, setup.Fib, s.cfg.Capital, s.cfg.RiskFraction)
	if !plan.Fundable() || plan.Lots < s.cfg.MinLots {
		return nil, analysis.ErrUnfundablePosition
	}

	confidence, err := s.confidence.Score(ctx, series.Bars)
	if err != nil {
		return nil, err
	}
	if confidence < s.cfg.ConfidenceThreshold {
		s.logger.WithFields(logrus.Fields{
			"ticker":     ticker,
			"confidence": confidence,
			"threshold":  s.cfg.ConfidenceThreshold,
		}).Debug("Setup below confidence threshold")
		return nil, nil
	}

	finding := &Finding{
		Ticker:     ticker,
		Setup:      setup,
		Plan:       plan,
		Confidence: confidence,
	}
	if hs, ok := stats.Lookup(ticker); ok {
		finding.Stats = &hs
	}
	return finding, nil
}

// deliver persists the finding and pushes it to the configured sinks.
// Delivery failures are logged, never propagated: an alert that fails to
// send must not hide the rest of the run.
func (s *Scanner) deliver(ctx context.Context, runID uuid.UUID, finding Finding) {
	result := models.ScreenerResult{
		RunID:      runID,
		ScanDate:   time.Now(),
		Ticker:     finding.Ticker,
		Signal:     string(finding.Setup.Signal),
		Score:      finding.Setup.Score,
		Confidence: finding.Confidence,
		Entry:      decimal.NewFromFloat(finding.Plan.Entry),
		StopLoss:   decimal.NewFromFloat(finding.Plan.StopLoss),
		TakeProfit: decimal.NewFromFloat(finding.Plan.TakeProfit),
		Lots:       finding.Plan.Lots,
		Status:     models.ResultStatusNew,
	}
	if err := s.results.InsertResult(ctx, result); err != nil {
		s.logger.WithFields(logrus.Fields{
			"ticker": finding.Ticker,
			"error":  err.Error(),
		}).Error("Failed to persist scan result")
	}

	alert := notify.Alert{
		Ticker:     finding.Ticker,
		Signal:     finding.Setup.Signal,
		Score:      finding.Setup.Score,
		Confidence: finding.Confidence,
		Trend:      finding.Setup.Trend,
		Reasons:    finding.Setup.Reasons,
		Warnings:   finding.Setup.Warnings,
		Plan:       finding.Plan,
		Stats:      finding.Stats,
	}
	if err := s.notifier.Send(ctx, alert); err != nil {
		s.logger.WithFields(logrus.Fields{
			"ticker": finding.Ticker,
			"error":  err.Error(),
		}).Error("Failed to deliver alert")
	}
}

// loadStats assembles the per-run stats table, preferring the Redis cache
// and falling back to Postgres. An empty table disables filtering rather
// than failing the run.
func (s *Scanner) loadStats(ctx context.Context) *universe.StatsTable {
	if s.statsCache != nil {
		if stats, ok := s.statsCache.Get(ctx); ok {
			return universe.NewStatsTable(stats)
		}
	}

	stats, err := s.backtests.LoadAllStats(ctx)
	if err != nil {
		s.logger.WithField("error", err.Error()).Warn("Failed to load backtest stats, scanning unfiltered")
		return universe.NewStatsTable(nil)
	}

	if s.statsCache != nil && len(stats) > 0 {
		if err := s.statsCache.Set(ctx, stats); err != nil {
			s.logger.WithField("error", err.Error()).Warn("Failed to cache backtest stats")
		}
	}

	return universe.NewStatsTable(stats)
}

func (s *Scanner) logSkip(ticker string, err error) {
	entry := s.logger.WithFields(logrus.Fields{
		"ticker": ticker,
		"reason": err.Error(),
	})
	switch {
	case errors.Is(err, analysis.ErrInsufficientData),
		errors.Is(err, analysis.ErrDegenerateStructure),
		errors.Is(err, analysis.ErrUnfundablePosition):
		entry.Debug("Skipping instrument")
	default:
		entry.Warn("Skipping instrument")
	}
}
