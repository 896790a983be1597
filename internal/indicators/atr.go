package indicators

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/Alias1177/SmartMoney/internal/model"
)

// ATR returns Wilder's average true range. The first defined value sits at
// index period, since the true range of candle 0 has no previous close.
func ATR(series model.Series, period int) model.Line {
	if period < 1 || len(series) <= period {
		return model.Undefined(len(series))
	}

	out := model.Line(talib.Atr(series.Highs(), series.Lows(), series.Closes(), period))
	for i := 0; i < period; i++ {
		out[i] = math.NaN()
	}
	return out
}
