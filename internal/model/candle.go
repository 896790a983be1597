package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrMalformedSeries is returned when a series breaks ordering or numeric rules.
	ErrMalformedSeries = errors.New("malformed candle series")

	// ErrEmptySeries is returned when a series has no candles at all.
	ErrEmptySeries = errors.New("empty candle series")
)

// Candle represents a single price candle
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports whether the candle closed below its open.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// BodyHigh is the upper edge of the candle body.
func (c Candle) BodyHigh() float64 { return math.Max(c.Open, c.Close) }

// BodyLow is the lower edge of the candle body.
func (c Candle) BodyLow() float64 { return math.Min(c.Open, c.Close) }

// Series is an ascending, duplicate-free sequence of candles.
// Everything downstream treats it as read-only.
type Series []Candle

// Validate checks timestamp ordering and numeric sanity.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: %w", ErrMalformedSeries, ErrEmptySeries)
	}

	for i, c := range s {
		for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: candle %d has non-numeric field", ErrMalformedSeries, i)
			}
		}
		if c.High < c.Low {
			return fmt.Errorf("%w: candle %d high %.5f below low %.5f", ErrMalformedSeries, i, c.High, c.Low)
		}
		if i > 0 && !c.Time.After(s[i-1].Time) {
			return fmt.Errorf("%w: candle %d timestamp %s not after %s",
				ErrMalformedSeries, i, c.Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339))
		}
	}

	return nil
}

// Last returns the most recent candle.
func (s Series) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Closes returns close prices in series order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Highs returns high prices in series order.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.High
	}
	return out
}

// Lows returns low prices in series order.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Low
	}
	return out
}

// MeanAbsChange is the average absolute close-to-close change.
// Returns 0 when fewer than two candles are available.
func (s Series) MeanAbsChange() float64 {
	if len(s) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(s); i++ {
		sum += math.Abs(s[i].Close - s[i-1].Close)
	}
	return sum / float64(len(s)-1)
}
