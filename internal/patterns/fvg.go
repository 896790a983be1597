package patterns

import "github.com/Alias1177/SmartMoney/internal/model"

// GapVariant selects which prices bound a fair value gap.
type GapVariant string

const (
	// VariantCloseOpen compares the first candle's close with the third candle's open.
	VariantCloseOpen GapVariant = "close_open"
	// VariantBody compares the bodies of the outer candles.
	VariantBody GapVariant = "body"
)

// FairValueGapDetector scans every interior triple a, b, c of a series.
type FairValueGapDetector struct {
	Variant GapVariant
}

// Detect emits one gap per qualifying triple, oldest first. Overlapping gaps
// are not merged.
func (d FairValueGapDetector) Detect(series model.Series) []model.FairValueGap {
	var gaps []model.FairValueGap
	for i := 1; i < len(series)-1; i++ {
		a, b, c := series[i-1], series[i], series[i+1]

		switch {
		case b.Bearish():
			if low, high := d.bullishBounds(a, c); high > low {
				gaps = append(gaps, newGap(model.Bullish, low, high, a, c, i))
			}
		case b.Bullish():
			if low, high := d.bearishBounds(a, c); high > low {
				gaps = append(gaps, newGap(model.Bearish, low, high, a, c, i))
			}
		}
	}
	return gaps
}

// bullishBounds is the band between the first candle and a third candle that
// opened above it.
func (d FairValueGapDetector) bullishBounds(a, c model.Candle) (low, high float64) {
	if d.Variant == VariantBody {
		return a.BodyHigh(), c.BodyLow()
	}
	return a.Close, c.Open
}

func (d FairValueGapDetector) bearishBounds(a, c model.Candle) (low, high float64) {
	if d.Variant == VariantBody {
		return c.BodyHigh(), a.BodyLow()
	}
	return c.Open, a.Close
}

func newGap(side model.Side, low, high float64, a, c model.Candle, i int) model.FairValueGap {
	return model.FairValueGap{
		Type: side,
		Low:  low,
		High: high,
		From: a.Time,
		To:   c.Time,
		Pos:  i,
	}
}
