package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpClient "github.com/Alias1177/SmartMoney/internal/platform/http"
)

// Three 5m klines starting 2024-05-06 10:00 UTC.
const sampleKlines = `[
  [1714989600000, "63000.1", "63100.0", "62950.0", "63050.5", "12.5", 1714989899999, "0", 10, "0", "0", "0"],
  [1714989900000, "63050.5", "63200.0", "63000.0", "63150.0", "8.1", 1714990199999, "0", 10, "0", "0", "0"],
  [1714990200000, "63150.0", "63180.0", "63020.0", "63040.0", "3.3", 1714990499999, "0", 10, "0", "0", "0"]
]`

func newTestClient(t *testing.T, handler http.HandlerFunc, now time.Time) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(ClientOptions{
		BaseURL: srv.URL,
		HTTPClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         time.Second,
			RequestsPerSec:  100,
			MaxRetries:      1,
			MaxRetryTimeout: time.Second,
			InitialInterval: time.Millisecond,
		}),
	})
	c.now = func() time.Time { return now }
	return c
}

func TestGetSeriesDropsOpenKline(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "5m", r.URL.Query().Get("interval"))
		assert.Equal(t, "500", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(sampleKlines))
	}

	// 10:12 UTC: the 10:10 kline is still open.
	c := newTestClient(t, handler, time.Date(2024, 5, 6, 10, 12, 0, 0, time.UTC))
	series, err := c.GetSeries(context.Background(), "BTCUSDT", "5min", 500)
	require.NoError(t, err)

	require.Len(t, series, 2)
	require.NoError(t, series.Validate())
	assert.Equal(t, time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC), series[0].Time)
	assert.Equal(t, 63050.5, series[0].Close)
	assert.Equal(t, 12.5, series[0].Volume)
}

func TestInterval(t *testing.T) {
	tests := map[string]string{"1min": "1m", "5min": "5m", "1h": "1h", "4h": "4h", "1day": "1d"}
	for in, want := range tests {
		got, err := Interval(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Interval("3min")
	assert.Error(t, err)
}

func TestGetSeriesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errPart string
	}{
		{name: "bad symbol", status: http.StatusBadRequest, body: `{"code":-1121,"msg":"Invalid symbol."}`, errPart: "Invalid symbol"},
		{name: "empty", status: http.StatusOK, body: `[]`, errPart: "empty klines"},
		{name: "short row", status: http.StatusOK, body: `[[1714989600000, "1"]]`, errPart: "expected at least 7 fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}
			c := newTestClient(t, handler, time.Now())
			_, err := c.GetSeries(context.Background(), "BTCUSDT", "5min", 10)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}
