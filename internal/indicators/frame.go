package indicators

import "github.com/Alias1177/SmartMoney/internal/model"

// Periods configures the indicator lengths.
type Periods struct {
	EMAFast int
	EMASlow int
	RSI     int
	ATR     int
}

// DefaultPeriods are the lengths the signal bot runs with.
func DefaultPeriods() Periods {
	return Periods{EMAFast: 50, EMASlow: 200, RSI: 14, ATR: 14}
}

// Compute builds the indicator frame for a series. It never fails: lines that
// cannot be computed are returned undefined and the caller decides what that means.
func Compute(series model.Series, p Periods) model.Frame {
	closes := series.Closes()
	return model.Frame{
		EMAFast: EMA(closes, p.EMAFast),
		EMASlow: EMA(closes, p.EMASlow),
		RSI:     RSI(closes, p.RSI),
		ATR:     ATR(series, p.ATR),
	}
}
