package patterns

import "github.com/Alias1177/SmartMoney/internal/model"

// OrderBlockDetector finds candles whose body opposed the expansion that
// followed them.
//
// Candidates are the indexes [max(0, n-Lookback), n-1-ConfirmWindow], scanned
// newest first. A candidate at i is confirmed by the candles i+1 through
// i+ConfirmWindow inclusive, so the last ConfirmWindow candles are never
// candidates themselves.
type OrderBlockDetector struct {
	Lookback      int
	ConfirmWindow int
	MaxBlocks     int
}

// Detect returns at most MaxBlocks order blocks in chronological order.
// A bearish candle followed by a higher high gives a bullish block. A bullish
// candle followed by a lower low gives a bearish block. Candles of both kinds
// may coexist; resolving them is left to the composer.
func (d OrderBlockDetector) Detect(series model.Series) []model.OrderBlock {
	n := len(series)
	w := d.ConfirmWindow
	if n == 0 || w < 1 || d.Lookback < 1 || d.MaxBlocks < 1 {
		return nil
	}

	first := max(0, n-d.Lookback)
	var blocks []model.OrderBlock

	for i := n - 1 - w; i >= first && len(blocks) < d.MaxBlocks; i-- {
		c := series[i]
		window := series[i+1 : i+1+w]

		switch {
		case c.Bearish() && anyHighAbove(window, c.High):
			blocks = append(blocks, newOrderBlock(model.Bullish, c, i))
		case c.Bullish() && anyLowBelow(window, c.Low):
			blocks = append(blocks, newOrderBlock(model.Bearish, c, i))
		}
	}

	reverse(blocks)
	return blocks
}

func newOrderBlock(side model.Side, c model.Candle, i int) model.OrderBlock {
	return model.OrderBlock{
		Type:      side,
		PriceLow:  c.Low,
		PriceHigh: c.High,
		Origin:    c.Time,
		Pos:       i,
	}
}

func anyHighAbove(candles model.Series, level float64) bool {
	for _, c := range candles {
		if c.High > level {
			return true
		}
	}
	return false
}

func anyLowBelow(candles model.Series, level float64) bool {
	for _, c := range candles {
		if c.Low < level {
			return true
		}
	}
	return false
}
