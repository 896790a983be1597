// Package signal fuses bias and entry evidence into a trading decision.
package signal

import (
	"fmt"
	"math"
	"sort"

	"github.com/Alias1177/SmartMoney/internal/model"
	"github.com/Alias1177/SmartMoney/internal/trading/risk"
)

// Reasons attached to HOLD decisions.
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonNoBias           = "no clear bias"
	ReasonNoTrend          = "no trend confirmation"
	ReasonNoPattern        = "no pattern confirmation"
)

// TieBreak picks which of several qualifying patterns of one kind is reported.
type TieBreak string

const (
	TieBreakRecent  TieBreak = "recent"
	TieBreakNearest TieBreak = "nearest"
)

// Config holds the composer thresholds.
type Config struct {
	// MinCandles is the shortest bias or entry series the composer acts on.
	MinCandles int
	// ToleranceMultiplier scales the mean absolute close change into the
	// proximity tolerance.
	ToleranceMultiplier float64
	RSIOverbought       float64
	RSIOversold         float64
	AllowFallback       bool
	TieBreak            TieBreak
	Risk                risk.Params
}

// DefaultConfig returns the thresholds the bot has always used.
func DefaultConfig() Config {
	return Config{
		MinCandles:          50,
		ToleranceMultiplier: 1.5,
		RSIOverbought:       70,
		RSIOversold:         30,
		AllowFallback:       true,
		TieBreak:            TieBreakRecent,
		Risk:                risk.DefaultParams(),
	}
}

// Input is everything the composer looks at for one asset.
type Input struct {
	AssetKey   string
	Bias       model.Series
	BiasTrend  model.Trend
	Entry      model.Series
	EntryTrend model.Trend
	EntryFrame model.Frame
	Patterns   model.Patterns
}

// Composer turns evidence into a Signal. It keeps no state between calls.
type Composer struct {
	cfg Config
}

// NewComposer creates a composer.
func NewComposer(cfg Config) *Composer {
	return &Composer{cfg: cfg}
}

// Config returns the thresholds in use.
func (c *Composer) Config() Config {
	return c.cfg
}

// Compose applies, in order, the bias gate, the trend confirmation, pattern
// proximity (order block, then fair value gap, then sweep with reclaim), the
// EMA/RSI fallback and the overextension guard.
func (c *Composer) Compose(in Input) model.Signal {
	sig := model.Signal{
		AssetKey:   in.AssetKey,
		Decision:   model.DecisionHold,
		BiasTrend:  in.BiasTrend,
		EntryTrend: in.EntryTrend,
		Reasons:    []string{},
	}

	last, ok := in.Entry.Last()
	if ok {
		sig.Price = last.Close
		sig.Timestamp = last.Time
	}

	rsi, rsiOK := in.EntryFrame.RSI.Last()
	if rsiOK {
		sig.RSI = &rsi
	}

	if !ok || len(in.Entry) < c.cfg.MinCandles || len(in.Bias) < c.cfg.MinCandles || !rsiOK {
		return hold(sig, ReasonInsufficientData)
	}

	var direction model.Decision
	switch in.BiasTrend {
	case model.TrendUp:
		direction = model.DecisionBuy
	case model.TrendDown:
		direction = model.DecisionSell
	default:
		return hold(sig, ReasonNoBias)
	}
	sig.Reasons = append(sig.Reasons, "bias "+string(in.BiasTrend))

	emaConfirms := c.emaConfirms(in.EntryFrame, direction)
	if emaConfirms {
		sig.Reasons = append(sig.Reasons, emaReason(direction))
	}
	if in.EntryTrend == in.BiasTrend {
		sig.Reasons = append(sig.Reasons, "entry structure "+string(in.EntryTrend))
	}
	if !emaConfirms && in.EntryTrend != in.BiasTrend {
		return hold(sig, ReasonNoTrend)
	}

	tolerance := c.cfg.ToleranceMultiplier * in.Entry.MeanAbsChange()

	switch trigger, found := c.findTrigger(in.Patterns, direction, sig.Price, tolerance); {
	case found:
		sig.Reasons = append(sig.Reasons, triggerReason(trigger))
	case c.cfg.AllowFallback && emaConfirms && c.fallbackAllowed(direction, rsi):
		sig.Reasons = append(sig.Reasons, fmt.Sprintf("EMA/RSI fallback (RSI %.1f)", rsi))
	default:
		return hold(sig, ReasonNoPattern)
	}

	if reason, over := c.overextended(direction, rsi); over {
		return hold(sig, reason)
	}

	sig.Decision = direction
	if atr, ok := in.EntryFrame.ATR.Last(); ok {
		sig.Levels = risk.CalculateLevels(sig.Price, atr, direction, c.cfg.Risk)
	}
	return sig
}

func hold(sig model.Signal, reason string) model.Signal {
	sig.Decision = model.DecisionHold
	sig.Reasons = append(sig.Reasons, reason)
	return sig
}

func (c *Composer) emaConfirms(frame model.Frame, direction model.Decision) bool {
	fast, okFast := frame.EMAFast.Last()
	slow, okSlow := frame.EMASlow.Last()
	if !okFast || !okSlow {
		return false
	}
	if direction == model.DecisionBuy {
		return fast > slow
	}
	return fast < slow
}

func emaReason(direction model.Decision) string {
	if direction == model.DecisionBuy {
		return "fast EMA above slow EMA"
	}
	return "fast EMA below slow EMA"
}

func (c *Composer) fallbackAllowed(direction model.Decision, rsi float64) bool {
	if direction == model.DecisionBuy {
		return rsi < c.cfg.RSIOverbought
	}
	return rsi > c.cfg.RSIOversold
}

func (c *Composer) overextended(direction model.Decision, rsi float64) (string, bool) {
	if direction == model.DecisionBuy && rsi >= c.cfg.RSIOverbought {
		return fmt.Sprintf("RSI overbought (%.1f >= %.0f)", rsi, c.cfg.RSIOverbought), true
	}
	if direction == model.DecisionSell && rsi <= c.cfg.RSIOversold {
		return fmt.Sprintf("RSI oversold (%.1f <= %.0f)", rsi, c.cfg.RSIOversold), true
	}
	return "", false
}

// findTrigger walks the pattern kinds in priority order and returns the first
// kind that has a qualifying pattern on the side of direction.
func (c *Composer) findTrigger(p model.Patterns, direction model.Decision, price, tolerance float64) (model.Zone, bool) {
	side := model.Bullish
	if direction == model.DecisionSell {
		side = model.Bearish
	}

	kinds := [][]model.Zone{
		zones(p.OrderBlocks),
		zones(p.Gaps),
		zones(p.Sweeps),
	}

	for _, candidates := range kinds {
		var qualifying []model.Zone
		for _, z := range candidates {
			if z.Side() == side && touches(z, direction, price, tolerance) {
				qualifying = append(qualifying, z)
			}
		}
		if len(qualifying) > 0 {
			return c.pick(qualifying, direction, price), true
		}
	}
	return nil, false
}

// touches reports whether price is within tolerance of the zone edge facing
// direction. Sweeps must also have been reclaimed.
func touches(z model.Zone, direction model.Decision, price, tolerance float64) bool {
	low, high := z.Bounds()
	if direction == model.DecisionBuy {
		if price > high+tolerance {
			return false
		}
		return z.Kind() != model.KindLiquiditySweep || price > high
	}

	if price < low-tolerance {
		return false
	}
	return z.Kind() != model.KindLiquiditySweep || price < low
}

func (c *Composer) pick(qualifying []model.Zone, direction model.Decision, price float64) model.Zone {
	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].Index() > qualifying[j].Index()
	})
	if c.cfg.TieBreak != TieBreakNearest {
		return qualifying[0]
	}

	best := qualifying[0]
	bestDist := edgeDistance(best, direction, price)
	for _, z := range qualifying[1:] {
		if d := edgeDistance(z, direction, price); d < bestDist {
			best, bestDist = z, d
		}
	}
	return best
}

func edgeDistance(z model.Zone, direction model.Decision, price float64) float64 {
	low, high := z.Bounds()
	if direction == model.DecisionBuy {
		return math.Abs(price - high)
	}
	return math.Abs(price - low)
}

func triggerReason(z model.Zone) string {
	switch z := z.(type) {
	case model.OrderBlock:
		return fmt.Sprintf("touched %s order block %g-%g", z.Type, z.PriceLow, z.PriceHigh)
	case model.FairValueGap:
		return fmt.Sprintf("touched %s fair value gap %g-%g", z.Type, z.Low, z.High)
	case model.LiquiditySweep:
		return fmt.Sprintf("liquidity %s at %g then reclaim", z.Type, z.Price)
	}
	return "touched " + string(z.Kind())
}

func zones[T model.Zone](items []T) []model.Zone {
	out := make([]model.Zone, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
