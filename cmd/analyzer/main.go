package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/bootstrap"
	"github.com/Alias1177/SmartMoney/internal/config"
	"github.com/Alias1177/SmartMoney/internal/engine"
)

// report is what the analyzer prints for one asset.
type report struct {
	Asset string
	Label string
	Eval  engine.Evaluation
}

func main() {
	assetKey := flag.String("asset", "", "evaluate only this asset key")
	asJSON := flag.Bool("json", false, "print evaluations as JSON")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	sources := bootstrap.Sources(cfg)
	evaluator := bootstrap.Evaluator(cfg)

	failed := 0
	for _, asset := range cfg.Assets {
		if *assetKey != "" && asset.Key != *assetKey {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		eval, err := analyze(ctx, cfg, sources, evaluator, asset)
		if err != nil {
			failed++
			log.Error().Err(err).Str("asset", asset.Key).Msg("Analysis failed")
			continue
		}
		if err := printReport(os.Stdout, report{Asset: asset.Key, Label: asset.DisplayName(), Eval: eval}, *asJSON); err != nil {
			log.Fatal().Err(err).Msg("Failed to print report")
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// analyze fetches both timeframes and runs one evaluation. No alert state
// is touched.
func analyze(ctx context.Context, cfg *config.Config, sources map[string]engine.Source, evaluator *engine.Evaluator, asset engine.Asset) (engine.Evaluation, error) {
	source, ok := sources[asset.Provider]
	if !ok {
		return engine.Evaluation{}, fmt.Errorf("no source for provider %q", asset.Provider)
	}

	bias, err := source.GetSeries(ctx, asset.Symbol, cfg.BiasInterval, cfg.FetchLimit)
	if err != nil {
		return engine.Evaluation{}, fmt.Errorf("fetching bias candles: %w", err)
	}
	entry, err := source.GetSeries(ctx, asset.Symbol, cfg.EntryInterval, cfg.FetchLimit)
	if err != nil {
		return engine.Evaluation{}, fmt.Errorf("fetching entry candles: %w", err)
	}

	return evaluator.Evaluate(asset.Key, bias, entry)
}

func printReport(w io.Writer, r report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Asset    string `json:"asset"`
			Label    string `json:"label"`
			Signal   any    `json:"signal"`
			Patterns any    `json:"patterns"`
		}{r.Asset, r.Label, r.Eval.Signal, r.Eval.Patterns})
	}

	sig := r.Eval.Signal
	fmt.Fprintf(w, "=== %s ===\n", r.Label)
	fmt.Fprintf(w, "Decision:  %s @ %.5f\n", sig.Decision, sig.Price)
	fmt.Fprintf(w, "Bias:      %s\n", sig.BiasTrend)
	fmt.Fprintf(w, "Entry:     %s\n", sig.EntryTrend)
	if sig.RSI != nil {
		fmt.Fprintf(w, "RSI:       %.2f\n", *sig.RSI)
	}
	if sig.Levels != nil {
		fmt.Fprintf(w, "Stop:      %.5f\n", sig.Levels.StopLoss)
		fmt.Fprintf(w, "Target:    %.5f (R:R %.1f)\n", sig.Levels.TakeProfit, sig.Levels.RiskRewardRatio)
	}
	for _, reason := range sig.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}

	p := r.Eval.Patterns
	fmt.Fprintf(w, "Order blocks (%d):\n", len(p.OrderBlocks))
	for _, ob := range p.OrderBlocks {
		fmt.Fprintf(w, "  %-8s %.5f-%.5f  %s\n", ob.Type, ob.PriceLow, ob.PriceHigh, ob.Origin.Format(time.DateTime))
	}
	fmt.Fprintf(w, "Fair value gaps (%d):\n", len(p.Gaps))
	for _, g := range p.Gaps {
		fmt.Fprintf(w, "  %-8s %.5f-%.5f  %s\n", g.Type, g.Low, g.High, g.From.Format(time.DateTime))
	}
	fmt.Fprintf(w, "Liquidity sweeps (%d):\n", len(p.Sweeps))
	for _, s := range p.Sweeps {
		fmt.Fprintf(w, "  %-10s %.5f  %s\n", s.Type, s.Price, s.Time.Format(time.DateTime))
	}
	_, err := fmt.Fprintln(w)
	return err
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
