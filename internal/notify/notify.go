package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
	"github.com/alphaquant/idx-screener-go/internal/models"
)

// Alert is a fully resolved trade setup ready for delivery.
type Alert struct {
	Ticker     string
	Signal     analysis.Signal
	Score      int
	Confidence float64
	Trend      analysis.Trend
	Reasons    []string
	Warnings   []string
	Plan       analysis.TradePlan
	Stats      *models.BacktestStats
}

// Notifier delivers alerts to a destination. Implementations must be safe
// for sequential use from a single scan goroutine.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// Fanout delivers to every sink, logging failures without aborting the rest.
type Fanout struct {
	sinks  []Notifier
	logger *logrus.Logger
}

func NewFanout(logger *logrus.Logger, sinks ...Notifier) *Fanout {
	return &Fanout{sinks: sinks, logger: logger}
}

func (f *Fanout) Send(ctx context.Context, alert Alert) error {
	for _, sink := range f.sinks {
		if err := sink.Send(ctx, alert); err != nil {
			f.logger.WithFields(logrus.Fields{
				"ticker": alert.Ticker,
				"error":  err.Error(),
			}).Warn("Alert delivery failed")
		}
	}
	return nil
}

// FormatAlert renders the standard alert body shared by all sinks.
func FormatAlert(alert Alert) string {
	var b strings.Builder

	icon := "🔥"
	if alert.Signal == analysis.SignalDiamondSetup {
		icon = "💎"
	}

	fmt.Fprintf(&b, "%s %s | %s\n", icon, alert.Ticker, alert.Signal)
	fmt.Fprintf(&b, "Score: %d | Confidence: %.0f%%\n", alert.Score, alert.Confidence*100)
	fmt.Fprintf(&b, "Trend: %s\n", alert.Trend)

	if alert.Stats != nil {
		fmt.Fprintf(&b, "History: WR %.1f%% over %d trades | MaxDD %.1f%%\n",
			alert.Stats.WinRate, alert.Stats.TradeCount, alert.Stats.MaxDrawdownPct)
	} else {
		b.WriteString("History: Unfiltered\n")
	}

	fmt.Fprintf(&b, "\nEntry: %.0f\n", alert.Plan.Entry)
	fmt.Fprintf(&b, "Stop: %.0f (%.1f%%)\n", alert.Plan.StopLoss, alert.Plan.StopLossPct)
	fmt.Fprintf(&b, "Target: %.0f\n", alert.Plan.TakeProfit)
	fmt.Fprintf(&b, "Size: %d lots (Rp %.0f)\n", alert.Plan.Lots, alert.Plan.CapitalRequired)
	fmt.Fprintf(&b, "Risk/Reward: %.2f | Max loss: Rp %.0f\n", alert.Plan.RiskRewardRatio, alert.Plan.MaxLoss)

	if len(alert.Reasons) > 0 {
		fmt.Fprintf(&b, "\nWhy: %s\n", strings.Join(alert.Reasons, ", "))
	}
	if len(alert.Warnings) > 0 {
		fmt.Fprintf(&b, "Caution: %s\n", strings.Join(alert.Warnings, ", "))
	}

	return b.String()
}

// LogNotifier writes alerts to the structured log. It is the fallback sink
// when no external channel is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, alert Alert) error {
	n.logger.WithFields(logrus.Fields{
		"ticker":     alert.Ticker,
		"signal":     string(alert.Signal),
		"score":      alert.Score,
		"confidence": alert.Confidence,
		"entry":      alert.Plan.Entry,
		"stop_loss":  alert.Plan.StopLoss,
		"lots":       alert.Plan.Lots,
	}).Info("Trade setup found")
	return nil
}
