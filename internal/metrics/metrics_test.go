package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SmartMoney/internal/model"
)

func TestMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveEvaluation("XAUUSD", model.DecisionBuy)
	m.ObserveEvaluation("XAUUSD", model.DecisionBuy)
	m.ObserveEmitted("XAUUSD", model.DecisionBuy)
	m.ObserveSuppressed("XAUUSD")
	m.ObserveError("BTCUSD", "fetch_entry")
	m.ObserveFetch("binance", 120*time.Millisecond)
	m.ObserveCycle(time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("XAUUSD", "BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsEmitted.WithLabelValues("XAUUSD", "BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsSuppressed.WithLabelValues("XAUUSD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("BTCUSD", "fetch_entry")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"smartmoney_evaluations_total",
		"smartmoney_alerts_emitted_total",
		"smartmoney_alerts_suppressed_total",
		"smartmoney_evaluation_errors_total",
		"smartmoney_fetch_duration_seconds",
		"smartmoney_cycle_duration_seconds",
	} {
		assert.True(t, names[want], want)
	}
}

func TestNilRegistererSkipsRegistration(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}
