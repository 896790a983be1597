package model

import "time"

// Trend is the swing-structure label of a series.
type Trend string

const (
	TrendUp           Trend = "uptrend"
	TrendDown         Trend = "downtrend"
	TrendSideways     Trend = "sideways"
	TrendInsufficient Trend = "insufficient"
)

// Decision is the discrete trading decision.
type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionSell Decision = "SELL"
	DecisionHold Decision = "HOLD"
)

// Actionable reports whether the decision is BUY or SELL.
func (d Decision) Actionable() bool {
	return d == DecisionBuy || d == DecisionSell
}

// Levels are illustrative stop/target prices attached to an actionable signal.
type Levels struct {
	StopLoss        float64 `json:"stop_loss"`
	TakeProfit      float64 `json:"take_profit"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}

// Signal is the output of the composer. It carries no side effects.
type Signal struct {
	AssetKey   string    `json:"asset_key"`
	Decision   Decision  `json:"decision"`
	Price      float64   `json:"price"`
	BiasTrend  Trend     `json:"bias_trend"`
	EntryTrend Trend     `json:"entry_trend"`
	Reasons    []string  `json:"reasons"`
	Timestamp  time.Time `json:"timestamp"`
	RSI        *float64  `json:"rsi,omitempty"`
	Levels     *Levels   `json:"levels,omitempty"`
}
