package models

import "time"

// BacktestStats is the persisted per-instrument performance summary used to
// pre-filter which instruments reach the live scorer.
type BacktestStats struct {
	Ticker         string    `json:"ticker" db:"ticker"`
	TradeCount     int       `json:"trade_count" db:"trade_count"`
	WinCount       int       `json:"win_count" db:"win_count"`
	WinRate        float64   `json:"win_rate" db:"win_rate"`
	NetReturnPct   float64   `json:"net_return_pct" db:"net_return_pct"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct" db:"max_drawdown_pct"`
	GeneratedAt    time.Time `json:"generated_at" db:"generated_at"`
}
