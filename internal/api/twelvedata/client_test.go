package twelvedata

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

const sampleResponse = `{
  "meta": {"symbol": "XAU/USD", "interval": "1h"},
  "values": [
    {"datetime": "2024-05-06 12:00:00", "open": "2310.5", "high": "2315.0", "low": "2308.1", "close": "2312.2"},
    {"datetime": "2024-05-06 11:00:00", "open": "2305.0", "high": "2311.0", "low": "2301.4", "close": "2310.5"},
    {"datetime": "2024-05-06 10:00:00", "open": "2300.0", "high": "2306.2", "low": "2299.0", "close": "2305.0"}
  ],
  "status": "ok"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, now time.Time) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(ClientOptions{
		APIKey:  "secret",
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

func TestGetSeries(t *testing.T) {
	var query map[string]string
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/time_series", r.URL.Path)
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(sampleResponse))
	}

	// 12:30 means the 12:00 candle is still forming.
	c := newTestClient(t, handler, time.Date(2024, 5, 6, 12, 30, 0, 0, time.UTC))
	series, err := c.GetSeries(context.Background(), "XAU/USD", "1h", 3)
	require.NoError(t, err)

	assert.Equal(t, "XAU/USD", query["symbol"])
	assert.Equal(t, "1h", query["interval"])
	assert.Equal(t, "3", query["outputsize"])
	assert.Equal(t, "secret", query["apikey"])

	require.Len(t, series, 2)
	require.NoError(t, series.Validate())
	assert.Equal(t, time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC), series[0].Time)
	assert.Equal(t, 2305.0, series[0].Close)
	assert.Equal(t, 2310.5, series[1].Close)
}

func TestGetSeriesKeepsClosedCandle(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}
	c := newTestClient(t, handler, time.Date(2024, 5, 6, 13, 0, 0, 0, time.UTC))

	series, err := c.GetSeries(context.Background(), "XAU/USD", "1h", 3)
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestGetSeriesErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		interval string
		errPart  string
	}{
		{
			name:     "api error payload",
			body:     `{"code": 429, "message": "You have run out of API credits", "status": "error"}`,
			interval: "5min",
			errPart:  "run out of API credits",
		},
		{
			name:     "empty values",
			body:     `{"values": [], "status": "ok"}`,
			interval: "5min",
			errPart:  "empty data",
		},
		{
			name:     "bad price",
			body:     `{"values": [{"datetime": "2024-05-06", "open": "x", "high": "1", "low": "1", "close": "1"}], "status": "ok"}`,
			interval: "1day",
			errPart:  "parsing price",
		},
		{
			name:     "unknown interval",
			body:     sampleResponse,
			interval: "3min",
			errPart:  "unsupported interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}
			c := newTestClient(t, handler, time.Now())
			_, err := c.GetSeries(context.Background(), "EUR/USD", tt.interval, 10)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}
