package model

import "math"

// Line is one indicator series aligned to a candle Series. Positions that are
// still in warm-up hold NaN and must be read through At or Last.
type Line []float64

// At returns the value at i and whether it is defined.
func (l Line) At(i int) (float64, bool) {
	if i < 0 || i >= len(l) || math.IsNaN(l[i]) {
		return 0, false
	}
	return l[i], true
}

// Last returns the most recent value and whether it is defined.
func (l Line) Last() (float64, bool) {
	return l.At(len(l) - 1)
}

// Defined counts positions that carry a value.
func (l Line) Defined() int {
	n := 0
	for _, v := range l {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Frame holds the per-candle indicators the composer reads.
type Frame struct {
	EMAFast Line
	EMASlow Line
	RSI     Line
	ATR     Line
}

// Undefined returns a Line of length n with no defined values.
func Undefined(n int) Line {
	l := make(Line, n)
	for i := range l {
		l[i] = math.NaN()
	}
	return l
}
