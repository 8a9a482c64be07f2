package backtest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
)

// SeriesSource supplies an indicator-enriched history for one instrument.
type SeriesSource interface {
	EnrichedSeries(ctx context.Context, symbol string) (*analysis.Series, error)
}

// Runner fans a universe of instruments out to a bounded worker pool and
// simulates each one independently. Instruments share nothing: every worker
// owns its series and capital ledger, so no locking is involved beyond the
// result collection.
type Runner struct {
	source  SeriesSource
	cfg     SimulatorConfig
	workers int
	logger  *logrus.Logger
}

// NewRunner builds a runner with the given worker count (minimum 1).
func NewRunner(source SeriesSource, cfg SimulatorConfig, workers int, logger *logrus.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{source: source, cfg: cfg, workers: workers, logger: logger}
}

// Run simulates every symbol and returns the reports sorted by symbol. A
// single instrument's failure never aborts the batch: it is logged and
// skipped. Cancelling the context stops the scheduling of new instruments;
// in-flight simulations run to completion.
func (r *Runner) Run(ctx context.Context, symbols []string) []*Report {
	jobs := make(chan string)
	results := make(chan *Report, len(symbols))

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				if report := r.runOne(ctx, symbol); report != nil {
					results <- report
				}
			}
		}()
	}

feed:
	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- symbol:
		}
	}
	close(jobs)

	wg.Wait()
	close(results)

	reports := make([]*Report, 0, len(symbols))
	for report := range results {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Symbol < reports[j].Symbol })

	return reports
}

func (r *Runner) runOne(ctx context.Context, symbol string) *Report {
	series, err := r.source.EnrichedSeries(ctx, symbol)
	if err != nil {
		r.logger.WithField("symbol", symbol).WithError(err).Warn("skipping instrument: history unavailable")
		return nil
	}

	report, err := NewSimulator(r.cfg, r.logger).Run(series)
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientData) {
			r.logger.WithField("symbol", symbol).Debug("skipping instrument: series too short")
		} else {
			r.logger.WithField("symbol", symbol).WithError(err).Warn("simulation failed")
		}
		return nil
	}

	return report
}
