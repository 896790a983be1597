package model

import "time"

// Side is the directional flavour of a pattern.
type Side string

const (
	Bullish Side = "bullish"
	Bearish Side = "bearish"
)

// PatternKind discriminates the Zone variants.
type PatternKind string

const (
	KindOrderBlock     PatternKind = "order_block"
	KindFairValueGap   PatternKind = "fair_value_gap"
	KindLiquiditySweep PatternKind = "liquidity_sweep"
)

// Zone is implemented by every detected pattern. The set of implementations is
// closed: OrderBlock, FairValueGap and LiquiditySweep.
type Zone interface {
	Kind() PatternKind
	Side() Side
	// Bounds returns the price band of the pattern, low <= high.
	Bounds() (low, high float64)
	// Index is the series position the pattern is anchored at.
	Index() int
	isZone()
}

// OrderBlock is a candle whose body opposed a subsequent expansion.
type OrderBlock struct {
	Type      Side      `json:"type"`
	PriceLow  float64   `json:"price_low"`
	PriceHigh float64   `json:"price_high"`
	Origin    time.Time `json:"origin"`
	Pos       int       `json:"index"`
}

func (o OrderBlock) Kind() PatternKind { return KindOrderBlock }
func (o OrderBlock) Side() Side { return o.Type }
func (o OrderBlock) Bounds() (low, high float64) { return o.PriceLow, o.PriceHigh }
func (o OrderBlock) Index() int { return o.Pos }
func (OrderBlock) isZone() {}

// FairValueGap is a three-candle imbalance.
type FairValueGap struct {
	Type Side      `json:"type"`
	Low  float64   `json:"low"`
	High float64   `json:"high"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	// Pos is the index of the middle candle.
	Pos int `json:"index"`
}

func (f FairValueGap) Kind() PatternKind { return KindFairValueGap }
func (f FairValueGap) Side() Side { return f.Type }
func (f FairValueGap) Bounds() (low, high float64) { return f.Low, f.High }
func (f FairValueGap) Index() int { return f.Pos }
func (FairValueGap) isZone() {}

// SweepType names the extreme that was swept.
type SweepType string

const (
	HighSweep SweepType = "high_sweep"
	LowSweep  SweepType = "low_sweep"
)

// LiquiditySweep is a wick beyond a local extreme closed back the other way.
type LiquiditySweep struct {
	Type  SweepType `json:"type"`
	Price float64   `json:"price"`
	Time  time.Time `json:"time"`
	Pos   int       `json:"index"`
}

func (l LiquiditySweep) Kind() PatternKind { return KindLiquiditySweep }

// Side maps a low sweep to bullish and a high sweep to bearish.
func (l LiquiditySweep) Side() Side {
	if l.Type == LowSweep {
		return Bullish
	}
	return Bearish
}

func (l LiquiditySweep) Bounds() (low, high float64) { return l.Price, l.Price }
func (l LiquiditySweep) Index() int { return l.Pos }
func (LiquiditySweep) isZone() {}

// Patterns groups detector output for one series.
type Patterns struct {
	OrderBlocks []OrderBlock     `json:"order_blocks"`
	Gaps        []FairValueGap   `json:"fair_value_gaps"`
	Sweeps      []LiquiditySweep `json:"liquidity_sweeps"`
}
