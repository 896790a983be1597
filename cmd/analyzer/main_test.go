package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SmartMoney/internal/bootstrap"
	"github.com/Alias1177/SmartMoney/internal/config"
	"github.com/Alias1177/SmartMoney/internal/engine"
	"github.com/Alias1177/SmartMoney/internal/model"
)

var testStart = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func generateTestCandles(count int, step time.Duration) model.Series {
	candles := make(model.Series, count)
	for i := range candles {
		v := 100 + float64(i)
		candles[i] = model.Candle{Time: testStart.Add(time.Duration(i) * step), Open: v, High: v + 2, Low: v - 2, Close: v + 1}
	}
	return candles
}

type fakeSource struct {
	calls []string
	err   map[string]error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) GetSeries(_ context.Context, symbol, interval string, _ int) (model.Series, error) {
	f.calls = append(f.calls, symbol+"@"+interval)
	if err := f.err[interval]; err != nil {
		return nil, err
	}
	if interval == "1h" {
		return generateTestCandles(80, time.Hour), nil
	}
	return generateTestCandles(80, 5*time.Minute), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestAnalyze(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{}
	sources := map[string]engine.Source{"fake": src}
	asset := engine.Asset{Key: "XAUUSD", Provider: "fake", Symbol: "XAU/USD"}

	eval, err := analyze(context.Background(), cfg, sources, bootstrap.Evaluator(cfg), asset)
	require.NoError(t, err)
	assert.Equal(t, "XAUUSD", eval.Signal.AssetKey)
	assert.Equal(t, model.TrendUp, eval.Signal.BiasTrend)
	assert.Equal(t, []string{"XAU/USD@1h", "XAU/USD@5min"}, src.calls)
}

func TestAnalyzeErrors(t *testing.T) {
	cfg := testConfig(t)
	evaluator := bootstrap.Evaluator(cfg)

	_, err := analyze(context.Background(), cfg, map[string]engine.Source{}, evaluator,
		engine.Asset{Key: "BTCUSD", Provider: "binance", Symbol: "BTCUSDT"})
	assert.ErrorContains(t, err, `no source for provider "binance"`)

	src := &fakeSource{err: map[string]error{"5min": errors.New("rate limited")}}
	_, err = analyze(context.Background(), cfg, map[string]engine.Source{"fake": src}, evaluator,
		engine.Asset{Key: "XAUUSD", Provider: "fake", Symbol: "XAU/USD"})
	assert.ErrorContains(t, err, "fetching entry candles: rate limited")
}

func testReport() report {
	rsi := 61.25
	return report{
		Asset: "XAUUSD",
		Label: "Gold (XAUUSD)",
		Eval: engine.Evaluation{
			Signal: model.Signal{
				AssetKey:   "XAUUSD",
				Decision:   model.DecisionBuy,
				Price:      2350.5,
				BiasTrend:  model.TrendUp,
				EntryTrend: model.TrendUp,
				Reasons:    []string{"bias uptrend", "touched bullish order block 2345-2349"},
				RSI:        &rsi,
				Levels:     &model.Levels{StopLoss: 2347.5, TakeProfit: 2356.5, RiskRewardRatio: 2},
			},
			Patterns: model.Patterns{
				OrderBlocks: []model.OrderBlock{{Type: model.Bullish, PriceLow: 2345, PriceHigh: 2349, Origin: testStart, Pos: 40}},
				Sweeps:      []model.LiquiditySweep{{Type: model.LowSweep, Price: 2340, Time: testStart, Pos: 30}},
			},
		},
	}
}

func TestPrintReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, testReport(), false))

	out := buf.String()
	assert.Contains(t, out, "=== Gold (XAUUSD) ===")
	assert.Contains(t, out, "Decision:  BUY @ 2350.50000")
	assert.Contains(t, out, "RSI:       61.25")
	assert.Contains(t, out, "Stop:      2347.50000")
	assert.Contains(t, out, "  - touched bullish order block 2345-2349")
	assert.Contains(t, out, "Order blocks (1):")
	assert.Contains(t, out, "Fair value gaps (0):")
	assert.Contains(t, out, "Liquidity sweeps (1):")
	assert.Contains(t, out, "2024-05-06 00:00:00")
}

func TestPrintReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, testReport(), true))

	var decoded struct {
		Asset    string         `json:"asset"`
		Signal   model.Signal   `json:"signal"`
		Patterns model.Patterns `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "XAUUSD", decoded.Asset)
	assert.Equal(t, model.DecisionBuy, decoded.Signal.Decision)
	require.Len(t, decoded.Patterns.OrderBlocks, 1)
	assert.Equal(t, 40, decoded.Patterns.OrderBlocks[0].Pos)
}
