// Package structure labels swing structure by comparing the latest candle with
// one a fixed number of candles earlier.
package structure

import "github.com/Alias1177/SmartMoney/internal/model"

// DefaultOffset compares the last candle with the one two candles before it.
const DefaultOffset = 2

// Analyzer classifies higher-high/higher-low structure.
type Analyzer struct {
	Offset int
}

// New returns an analyzer with the given offset. Non-positive offsets fall back
// to DefaultOffset.
func New(offset int) Analyzer {
	if offset <= 0 {
		offset = DefaultOffset
	}
	return Analyzer{Offset: offset}
}

// MinLength is the shortest series Trend can label.
func (a Analyzer) MinLength() int {
	return a.offset() + 2
}

// Trend returns uptrend when both the high and the low of the last candle are
// above the reference candle, downtrend when both are below, sideways otherwise.
func (a Analyzer) Trend(series model.Series) model.Trend {
	k := a.offset()
	n := len(series)
	if n <= k+1 {
		return model.TrendInsufficient
	}

	cur := series[n-1]
	ref := series[n-1-k]

	switch {
	case cur.High > ref.High && cur.Low > ref.Low:
		return model.TrendUp
	case cur.High < ref.High && cur.Low < ref.Low:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}

func (a Analyzer) offset() int {
	if a.Offset <= 0 {
		return DefaultOffset
	}
	return a.Offset
}
