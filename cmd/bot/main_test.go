package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SmartMoney/internal/metrics"
	"github.com/Alias1177/SmartMoney/internal/model"
)

func TestServerEndpoints(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	m.ObserveEvaluation("XAUUSD", model.DecisionBuy)

	ts := httptest.NewServer(newServer("0", registry).Handler)
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SmartMoney signal bot - running", body)

	code, body = get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `smartmoney_evaluations_total{asset="XAUUSD",decision="BUY"} 1`)

	code, _ = get("/nope")
	assert.Equal(t, http.StatusNotFound, code)
}
