package indicators

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/Alias1177/SmartMoney/internal/model"
)

// EMA returns the exponential moving average of values, seeded with the simple
// average of the first length values. Positions before length-1 are undefined.
func EMA(values []float64, length int) model.Line {
	if length < 1 || len(values) < length {
		return model.Undefined(len(values))
	}

	out := model.Line(talib.Ema(values, length))
	for i := 0; i < length-1; i++ {
		out[i] = math.NaN()
	}
	return out
}
