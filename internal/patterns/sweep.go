package patterns

import "github.com/Alias1177/SmartMoney/internal/model"

// LiquiditySweepDetector finds wicks beyond a local extreme that closed back
// the other way.
//
// Candidates are the indexes [max(Window, n-Lookback), n-1], scanned newest
// first. The reference extreme for i is taken over i-Window through i-1.
type LiquiditySweepDetector struct {
	Lookback  int
	Window    int
	MaxSweeps int
}

// Detect returns at most MaxSweeps sweeps in chronological order.
func (d LiquiditySweepDetector) Detect(series model.Series) []model.LiquiditySweep {
	n := len(series)
	w := d.Window
	if w < 1 || d.Lookback < 1 || d.MaxSweeps < 1 || n <= w {
		return nil
	}

	first := max(w, n-d.Lookback)
	var sweeps []model.LiquiditySweep

	for i := n - 1; i >= first && len(sweeps) < d.MaxSweeps; i-- {
		c := series[i]
		prior := series[i-w : i]

		switch {
		case c.High > highest(prior) && c.Bearish():
			sweeps = append(sweeps, model.LiquiditySweep{Type: model.HighSweep, Price: c.High, Time: c.Time, Pos: i})
		case c.Low < lowest(prior) && c.Bullish():
			sweeps = append(sweeps, model.LiquiditySweep{Type: model.LowSweep, Price: c.Low, Time: c.Time, Pos: i})
		}
	}

	reverse(sweeps)
	return sweeps
}

func highest(candles model.Series) float64 {
	h := candles[0].High
	for _, c := range candles[1:] {
		h = max(h, c.High)
	}
	return h
}

func lowest(candles model.Series) float64 {
	l := candles[0].Low
	for _, c := range candles[1:] {
		l = min(l, c.Low)
	}
	return l
}
