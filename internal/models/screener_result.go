package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scan result lifecycle states.
const (
	ResultStatusNew     = "NEW"
	ResultStatusTPHit   = "TP_HIT"
	ResultStatusSLHit   = "SL_HIT"
	ResultStatusInvalid = "INVALID"
)

// ScreenerResult is one persisted alert from a live scan run.
type ScreenerResult struct {
	ID         int64           `json:"id" db:"id"`
	RunID      uuid.UUID       `json:"run_id" db:"run_id"`
	ScanDate   time.Time       `json:"scan_date" db:"scan_date"`
	Ticker     string          `json:"ticker" db:"ticker"`
	Signal     string          `json:"signal" db:"signal"`
	Score      int             `json:"score" db:"score"`
	Confidence float64         `json:"confidence" db:"confidence"`
	Entry      decimal.Decimal `json:"entry" db:"entry"`
	StopLoss   decimal.Decimal `json:"stop_loss" db:"stop_loss"`
	TakeProfit decimal.Decimal `json:"take_profit" db:"take_profit"`
	Lots       int             `json:"lots" db:"lots"`
	Status     string          `json:"status" db:"status"`
}
