// Package engine runs the signal pipeline for each asset: candles in,
// indicators, structure and patterns computed, a Signal composed.
package engine

import (
	"fmt"

	"github.com/Alias1177/SmartMoney/internal/indicators"
	"github.com/Alias1177/SmartMoney/internal/model"
	"github.com/Alias1177/SmartMoney/internal/patterns"
	"github.com/Alias1177/SmartMoney/internal/signal"
	"github.com/Alias1177/SmartMoney/internal/structure"
)

// Evaluation is a composed signal together with the evidence behind it.
type Evaluation struct {
	Signal     model.Signal
	EntryFrame model.Frame
	Patterns   model.Patterns
}

// Evaluator is the pure per-asset pipeline. It holds only configuration and
// is safe for concurrent use.
type Evaluator struct {
	periods   indicators.Periods
	structure structure.Analyzer
	detectors patterns.Detectors
	composer  *signal.Composer
}

// NewEvaluator wires the pipeline. The composer minimum is raised so that
// RSI and the structure offset always have enough candles to work with.
func NewEvaluator(periods indicators.Periods, analyzer structure.Analyzer, detectors patterns.Detectors, cfg signal.Config) *Evaluator {
	cfg.MinCandles = max(cfg.MinCandles, periods.RSI+1, analyzer.MinLength())
	return &Evaluator{
		periods:   periods,
		structure: analyzer,
		detectors: detectors,
		composer:  signal.NewComposer(cfg),
	}
}

// MinCandles is the shortest series that can produce a non-HOLD signal.
func (e *Evaluator) MinCandles() int {
	return e.composer.Config().MinCandles
}

// Evaluate validates both series and composes a signal. Malformed input is
// returned as an error wrapping model.ErrMalformedSeries; short input yields
// a HOLD signal.
func (e *Evaluator) Evaluate(asset string, bias, entry model.Series) (Evaluation, error) {
	if err := bias.Validate(); err != nil {
		return Evaluation{}, fmt.Errorf("bias series: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return Evaluation{}, fmt.Errorf("entry series: %w", err)
	}

	frame := indicators.Compute(entry, e.periods)
	found := e.detectors.Detect(entry)

	sig := e.composer.Compose(signal.Input{
		AssetKey:   asset,
		Bias:       bias,
		BiasTrend:  e.structure.Trend(bias),
		Entry:      entry,
		EntryTrend: e.structure.Trend(entry),
		EntryFrame: frame,
		Patterns:   found,
	})

	return Evaluation{Signal: sig, EntryFrame: frame, Patterns: found}, nil
}
