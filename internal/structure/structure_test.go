package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/SmartMoney/internal/model"
)

func generateTestCandles(count int, generator func(i int) model.Candle) model.Series {
	candles := make(model.Series, count)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		c := generator(i)
		c.Time = start.Add(time.Duration(i) * time.Hour)
		candles[i] = c
	}
	return candles
}

func rising(i int) model.Candle {
	v := 100 + float64(i)
	return model.Candle{Open: v, High: v + 2, Low: v - 2, Close: v + 1}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name     string
		series   model.Series
		expected model.Trend
	}{
		{
			name:     "empty",
			series:   nil,
			expected: model.TrendInsufficient,
		},
		{
			name:     "exactly k+1 candles",
			series:   generateTestCandles(3, rising),
			expected: model.TrendInsufficient,
		},
		{
			name:     "higher highs and higher lows",
			series:   generateTestCandles(4, rising),
			expected: model.TrendUp,
		},
		{
			name: "lower highs and lower lows",
			series: generateTestCandles(10, func(i int) model.Candle {
				v := 100 - float64(i)
				return model.Candle{Open: v, High: v + 2, Low: v - 2, Close: v - 1}
			}),
			expected: model.TrendDown,
		},
		{
			name: "expanding range is sideways",
			series: generateTestCandles(10, func(i int) model.Candle {
				return model.Candle{Open: 100, High: 100 + float64(i), Low: 100 - float64(i), Close: 100}
			}),
			expected: model.TrendSideways,
		},
		{
			name: "equal extremes are sideways",
			series: generateTestCandles(5, func(i int) model.Candle {
				return model.Candle{Open: 100, High: 101, Low: 99, Close: 100}
			}),
			expected: model.TrendSideways,
		},
	}

	a := New(DefaultOffset)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.Trend(tt.series))
		})
	}
}

func TestTrendIsPure(t *testing.T) {
	series := generateTestCandles(30, rising)
	a := New(2)
	assert.Equal(t, a.Trend(series), a.Trend(series))
}

func TestReversedRisingSeriesIsDowntrend(t *testing.T) {
	up := generateTestCandles(20, rising)
	down := generateTestCandles(20, func(i int) model.Candle {
		return rising(19 - i)
	})

	a := New(2)
	assert.Equal(t, model.TrendUp, a.Trend(up))
	assert.Equal(t, model.TrendDown, a.Trend(down))
}

func TestOffsetControlsReference(t *testing.T) {
	// The candle two back has a higher high than the last one.
	series := generateTestCandles(5, func(i int) model.Candle {
		lows := []float64{90, 95, 100, 100, 101}
		highs := []float64{110, 105, 114, 112, 113}
		return model.Candle{Open: lows[i] + 1, High: highs[i], Low: lows[i], Close: lows[i] + 2}
	})

	assert.Equal(t, model.TrendSideways, New(2).Trend(series))
	assert.Equal(t, model.TrendUp, New(3).Trend(series))
	assert.Equal(t, model.TrendInsufficient, New(4).Trend(series))
	assert.Equal(t, model.TrendInsufficient, New(5).Trend(series))
	assert.Equal(t, 4, New(2).MinLength())
	assert.Equal(t, DefaultOffset, New(0).Offset)
}

func TestLengthBoundaryFollowsOffset(t *testing.T) {
	for k := 1; k <= 6; k++ {
		a := New(k)
		assert.Equal(t, model.TrendInsufficient, a.Trend(generateTestCandles(k+1, rising)), "k=%d with k+1 candles", k)
		assert.Equal(t, model.TrendUp, a.Trend(generateTestCandles(k+2, rising)), "k=%d with k+2 candles", k)
		assert.Equal(t, k+2, a.MinLength())
	}
}
