package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphaquant/idx-screener-go/internal/analysis"
)

// DailyPrice is one row of the daily_prices table. Prices are stored as
// numeric columns and scanned into decimals; the engine works on float64
// bars converted via ToBar.
type DailyPrice struct {
	Ticker string          `json:"ticker" db:"ticker"`
	Time   time.Time       `json:"time" db:"time"`
	Open   decimal.Decimal `json:"open" db:"open"`
	High   decimal.Decimal `json:"high" db:"high"`
	Low    decimal.Decimal `json:"low" db:"low"`
	Close  decimal.Decimal `json:"close" db:"close"`
	Volume int64           `json:"volume" db:"volume"`
}

// ToBar converts the stored row into an engine bar.
func (p DailyPrice) ToBar() analysis.Bar {
	return analysis.Bar{
		Date:   p.Time,
		Open:   p.Open.InexactFloat64(),
		High:   p.High.InexactFloat64(),
		Low:    p.Low.InexactFloat64(),
		Close:  p.Close.InexactFloat64(),
		Volume: float64(p.Volume),
	}
}

// Stock is one instrument of the tradable universe.
type Stock struct {
	Ticker string `json:"ticker" db:"ticker"`
	Name   string `json:"name" db:"name"`
	Board  string `json:"board" db:"board"`
	Sector string `json:"sector" db:"sector"`
}
