package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/alert"
	"github.com/Alias1177/SmartMoney/internal/bootstrap"
	"github.com/Alias1177/SmartMoney/internal/config"
	"github.com/Alias1177/SmartMoney/internal/engine"
	"github.com/Alias1177/SmartMoney/internal/metrics"
	"github.com/Alias1177/SmartMoney/internal/trace"
)

const version = "1.0.0"

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.LogLevel)
	log.Info().Str("version", version).Msg("Starting SmartMoney signal bot")
	printConfig(cfg)

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}
	log.Info().Msg("Bot stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := trace.Init(ctx, cfg.TracingEnabled, version); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := trace.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to flush traces")
		}
	}()

	store, closer, err := bootstrap.AlertStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	dedup, err := alert.New(ctx, store)
	if err != nil {
		return err
	}

	notifier, err := bootstrap.Notifier(cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	runner := engine.NewRunner(cfg.Runner(), bootstrap.Sources(cfg), bootstrap.Evaluator(cfg), dedup, notifier, m)

	server := newServer(cfg.Port, registry)
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cfg.AliveNotify {
		if err := notifier.Started(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to send startup message")
		}
	}

	runErr := make(chan error, 1)
	go func() { runErr <- runner.Run(ctx) }()

	select {
	case err = <-serverErr:
		err = fmt.Errorf("http server: %w", err)
	case err = <-runErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		log.Error().Err(serr).Msg("HTTP server shutdown failed")
	}
	return err
}

// newServer exposes the keep-alive, health and metrics endpoints.
func newServer(port string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "SmartMoney signal bot - running")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
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

func printConfig(cfg *config.Config) {
	keys := make([]string, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		keys = append(keys, a.Key)
	}

	log.Info().
		Strs("Assets", keys).
		Str("BiasInterval", cfg.BiasInterval).
		Str("EntryInterval", cfg.EntryInterval).
		Dur("PollInterval", cfg.PollInterval).
		Int("FetchLimit", cfg.FetchLimit).
		Int("EMAFast", cfg.EMAFast).
		Int("EMASlow", cfg.EMASlow).
		Int("RSIPeriod", cfg.RSIPeriod).
		Int("ATRPeriod", cfg.ATRPeriod).
		Str("FVGVariant", cfg.FVGVariant).
		Str("TieBreak", cfg.PatternTieBreak).
		Bool("AllowFallback", cfg.AllowFallback).
		Str("AlertStore", cfg.AlertStore).
		Bool("Tracing", cfg.TracingEnabled).
		Msg("Configuration loaded")
}
