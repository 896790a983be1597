package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Alias1177/SmartMoney/internal/alert"
	"github.com/Alias1177/SmartMoney/internal/metrics"
	"github.com/Alias1177/SmartMoney/internal/model"
	"github.com/Alias1177/SmartMoney/internal/notify"
	"github.com/Alias1177/SmartMoney/internal/trace"
)

// Source fetches candles from one provider.
type Source interface {
	Name() string
	GetSeries(ctx context.Context, symbol, interval string, count int) (model.Series, error)
}

// Asset is one instrument the bot watches.
type Asset struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Provider string `yaml:"provider"`
	Symbol   string `yaml:"symbol"`
}

// DisplayName is the label, or the key when no label is set.
func (a Asset) DisplayName() string {
	if a.Label != "" {
		return a.Label
	}
	return a.Key
}

// Stage names the pipeline step an AssetError came from.
type Stage string

const (
	StageFetchBias  Stage = "fetch_bias"
	StageFetchEntry Stage = "fetch_entry"
	StageEvaluate   Stage = "evaluate"
	StageDedup      Stage = "dedup"
	StageNotify     Stage = "notify"
)

// AssetError is a failure isolated to one asset in one cycle.
type AssetError struct {
	Asset string
	Stage Stage
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Asset, e.Stage, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// CycleReport summarizes one pass over every asset.
type CycleReport struct {
	Evaluated  int
	Emitted    int
	Suppressed int
	Held       int
	Failed     int
	Errors     []error
}

// RunnerConfig controls what is fetched and how often.
type RunnerConfig struct {
	Assets        []Asset
	BiasInterval  string
	EntryInterval string
	FetchLimit    int
	PollInterval  time.Duration
}

// Runner is the poll loop around the Evaluator. Assets are processed one at a
// time and a failing asset never stops the others.
type Runner struct {
	cfg       RunnerConfig
	sources   map[string]Source
	evaluator *Evaluator
	dedup     *alert.Deduplicator
	notifier  notify.Notifier
	metrics   *metrics.Metrics

	// cycleMu keeps cycles strictly sequential.
	cycleMu sync.Mutex
	logger  zerolog.Logger
}

// NewRunner wires the loop. sources is keyed by provider name.
func NewRunner(cfg RunnerConfig, sources map[string]Source, evaluator *Evaluator, dedup *alert.Deduplicator, notifier notify.Notifier, m *metrics.Metrics) *Runner {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Runner{
		cfg:       cfg,
		sources:   sources,
		evaluator: evaluator,
		dedup:     dedup,
		notifier:  notifier,
		metrics:   m,
		logger:    log.With().Str("component", "runner").Logger(),
	}
}

// Run executes a cycle immediately and then every PollInterval until ctx is
// cancelled. Cancellation is noticed between assets, never inside one.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info().
		Int("assets", len(r.cfg.Assets)).
		Dur("interval", r.cfg.PollInterval).
		Msg("Signal loop started")

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		r.RunCycle(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Signal loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunCycle evaluates every asset once.
func (r *Runner) RunCycle(ctx context.Context) CycleReport {
	r.cycleMu.Lock()
	defer r.cycleMu.Unlock()

	start := time.Now()
	ctx, span := trace.StartSpan(ctx, "cycle")
	defer span.End()

	var report CycleReport
	for _, asset := range r.cfg.Assets {
		if ctx.Err() != nil {
			break
		}

		outcome, err := r.processAsset(ctx, asset)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, err)
			r.handleError(ctx, asset, err)
			continue
		}

		report.Evaluated++
		switch outcome {
		case outcomeEmitted:
			report.Emitted++
		case outcomeSuppressed:
			report.Suppressed++
		case outcomeHeld:
			report.Held++
		}
	}

	elapsed := time.Since(start)
	r.metrics.ObserveCycle(elapsed)
	span.SetAttributes(
		attribute.Int("assets.evaluated", report.Evaluated),
		attribute.Int("assets.failed", report.Failed),
	)

	r.logger.Info().
		Int("evaluated", report.Evaluated).
		Int("emitted", report.Emitted).
		Int("suppressed", report.Suppressed).
		Int("held", report.Held).
		Int("failed", report.Failed).
		Dur("elapsed", elapsed).
		Msg("Cycle complete")
	return report
}

type outcome int

const (
	outcomeHeld outcome = iota
	outcomeSuppressed
	outcomeEmitted
)

func (r *Runner) processAsset(ctx context.Context, asset Asset) (outcome, error) {
	ctx, span := trace.StartSpan(ctx, "asset")
	defer span.End()
	span.SetAttributes(attribute.String("asset", asset.Key))

	fail := func(stage Stage, err error) (outcome, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stage))
		return outcomeHeld, &AssetError{Asset: asset.Key, Stage: stage, Err: err}
	}

	source, ok := r.sources[asset.Provider]
	if !ok {
		return fail(StageFetchBias, fmt.Errorf("no source for provider %q", asset.Provider))
	}

	bias, err := r.fetch(ctx, source, asset, r.cfg.BiasInterval)
	if err != nil {
		return fail(StageFetchBias, err)
	}
	entry, err := r.fetch(ctx, source, asset, r.cfg.EntryInterval)
	if err != nil {
		return fail(StageFetchEntry, err)
	}

	eval, err := r.evaluator.Evaluate(asset.Key, bias, entry)
	if err != nil {
		return fail(StageEvaluate, err)
	}
	sig := eval.Signal
	r.metrics.ObserveEvaluation(asset.Key, sig.Decision)

	logEvent := r.logger.Info()
	if trace.Enabled() {
		if traceID, ok := trace.TraceID(ctx); ok {
			logEvent = logEvent.Str("trace_id", traceID)
		}
	}
	logEvent.
		Str("asset", asset.Key).
		Str("decision", string(sig.Decision)).
		Str("bias", string(sig.BiasTrend)).
		Str("entry", string(sig.EntryTrend)).
		Float64("price", sig.Price).
		Strs("reasons", sig.Reasons).
		Int("order_blocks", len(eval.Patterns.OrderBlocks)).
		Int("fvgs", len(eval.Patterns.Gaps)).
		Int("sweeps", len(eval.Patterns.Sweeps)).
		Msg("Signal evaluated")

	if !sig.Decision.Actionable() {
		return outcomeHeld, nil
	}

	ev, emit, err := r.dedup.Observe(ctx, sig)
	if err != nil {
		return fail(StageDedup, err)
	}
	if !emit {
		r.metrics.ObserveSuppressed(asset.Key)
		r.logger.Debug().Str("asset", asset.Key).Str("decision", string(sig.Decision)).Msg("Same signal suppressed")
		return outcomeSuppressed, nil
	}

	ev.Label = asset.DisplayName()
	if err := r.notifier.Signal(ctx, ev); err != nil {
		return fail(StageNotify, err)
	}

	r.metrics.ObserveEmitted(asset.Key, sig.Decision)
	r.logger.Info().
		Str("asset", asset.Key).
		Str("decision", string(sig.Decision)).
		Str("previous", string(ev.Previous)).
		Str("id", ev.ID).
		Msg("Alert emitted")
	return outcomeEmitted, nil
}

func (r *Runner) fetch(ctx context.Context, source Source, asset Asset, interval string) (model.Series, error) {
	start := time.Now()
	series, err := source.GetSeries(ctx, asset.Symbol, interval, r.cfg.FetchLimit)
	r.metrics.ObserveFetch(source.Name(), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", source.Name(), asset.Symbol, interval, err)
	}
	return series, nil
}

func (r *Runner) handleError(ctx context.Context, asset Asset, err error) {
	stage := Stage("unknown")
	var assetErr *AssetError
	if errors.As(err, &assetErr) {
		stage = assetErr.Stage
	}

	r.metrics.ObserveError(asset.Key, string(stage))
	r.logger.Error().Err(err).Str("asset", asset.Key).Str("stage", string(stage)).Msg("Asset evaluation failed")

	if werr := r.notifier.Warning(ctx, asset.DisplayName(), err); werr != nil {
		r.logger.Error().Err(werr).Str("asset", asset.Key).Msg("Failed to deliver warning")
	}
}
