package analysis

import "math"

// LotSize is the IDX market convention: one lot is 100 shares, the minimum
// tradable unit.
const LotSize = 100

// syntheticRiskFraction substitutes the risk per share when the 0.786 level
// sits above the entry (inverted or flat structure), so a plan can still be
// produced for informational purposes.
const syntheticRiskFraction = 0.05

// TradePlan is an entry/stop/target plan with a risk-bounded position size.
// Derived purely from a series snapshot and the capital configuration.
type TradePlan struct {
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`

	Lots            int     `json:"lots"`
	CapitalRequired float64 `json:"capital_required"`
	MaxGain         float64 `json:"max_gain"`
	// MaxLoss is signed: a funded plan carries a negative value here.
	MaxLoss float64 `json:"max_loss"`

	RiskRewardRatio  float64 `json:"risk_reward_ratio"`
	StopLossPct      float64 `json:"stop_loss_pct"`
	RiskPerLot       float64 `json:"risk_per_lot"`
	BreakevenTrigger float64 `json:"breakeven_trigger"`
}

// Shares returns the plan size in shares.
func (p TradePlan) Shares() int {
	return p.Lots * LotSize
}

// Fundable reports whether the risk budget buys at least one lot. Callers
// that require a minimum position must not alert on unfundable plans.
func (p TradePlan) Fundable() bool {
	return p.Lots > 0
}

// BuildPlan converts a close price and Fibonacci levels into a trade plan
// sized under a fixed-risk budget: at most capital*riskFraction may be lost
// if the stop is hit. Lot count is floored, never rounded up, because it
// controls real risk exposure.
func BuildPlan(close float64, fib FibonacciLevels, capital, riskFraction float64) TradePlan {
	plan := TradePlan{
		Entry:      close,
		StopLoss:   fib.Level786,
		TakeProfit: fib.High,
	}

	riskPerShare := plan.Entry - plan.StopLoss
	if riskPerShare <= 0 {
		riskPerShare = plan.Entry * syntheticRiskFraction
	}

	maxLossBudget := capital * riskFraction
	if riskPerShare > 0 {
		plan.Lots = int(math.Floor(maxLossBudget / riskPerShare / LotSize))
		plan.RiskRewardRatio = (plan.TakeProfit - plan.Entry) / riskPerShare
	}

	shares := float64(plan.Shares())
	plan.CapitalRequired = shares * plan.Entry
	plan.MaxGain = (plan.TakeProfit - plan.Entry) * shares
	plan.MaxLoss = (plan.StopLoss - plan.Entry) * shares

	if plan.Entry > 0 {
		plan.StopLossPct = riskPerShare / plan.Entry * 100
	}
	plan.RiskPerLot = riskPerShare * LotSize
	plan.BreakevenTrigger = plan.Entry + riskPerShare

	return plan
}
