// Package patterns holds the smart-money pattern detectors. Every detector is
// a pure function of its series and configuration.
package patterns

import "github.com/Alias1177/SmartMoney/internal/model"

// Detectors bundles the three detectors run on the entry series.
type Detectors struct {
	OrderBlocks OrderBlockDetector
	Gaps        FairValueGapDetector
	Sweeps      LiquiditySweepDetector
}

// DefaultDetectors mirrors the parameters the bot has always used.
func DefaultDetectors() Detectors {
	return Detectors{
		OrderBlocks: OrderBlockDetector{Lookback: 80, ConfirmWindow: 4, MaxBlocks: 4},
		Gaps:        FairValueGapDetector{Variant: VariantCloseOpen},
		Sweeps:      LiquiditySweepDetector{Lookback: 60, Window: 5, MaxSweeps: 3},
	}
}

// Detect runs all detectors over series.
func (d Detectors) Detect(series model.Series) model.Patterns {
	return model.Patterns{
		OrderBlocks: d.OrderBlocks.Detect(series),
		Gaps:        d.Gaps.Detect(series),
		Sweeps:      d.Sweeps.Detect(series),
	}
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
