package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/model"
	httpClient "github.com/Alias1177/SmartMoney/internal/platform/http"
)

const (
	defaultBaseURL = "https://api.binance.com"
	maxLimit       = 1000
)

// Client fetches spot klines from Binance.
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	now        func() time.Time
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client.
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	HTTPClient      *httpClient.Client
}

// NewClient creates a new Binance client.
func NewClient(options ClientOptions) *Client {
	hc := options.HTTPClient
	if hc == nil {
		hc = httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		})
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: hc,
		now:        time.Now,
		logger:     log.With().Str("component", "binance_client").Logger(),
	}
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return "binance" }

// Interval maps a TwelveData-style interval ("5min", "1h", "1day") onto the
// Binance notation ("5m", "1h", "1d").
func Interval(interval string) (string, error) {
	switch interval {
	case "1min":
		return "1m", nil
	case "5min":
		return "5m", nil
	case "15min":
		return "15m", nil
	case "30min":
		return "30m", nil
	case "1h", "2h", "4h", "8h":
		return interval, nil
	case "1day":
		return "1d", nil
	case "1week":
		return "1w", nil
	}
	return "", fmt.Errorf("unsupported binance interval %q", interval)
}

// GetSeries fetches up to limit closed klines, oldest first.
func (c *Client) GetSeries(ctx context.Context, symbol, interval string, limit int) (model.Series, error) {
	binanceInterval, err := Interval(interval)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", binanceInterval)
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v3/klines?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().Str("symbol", symbol).Str("interval", binanceInterval).Int("limit", limit).Msg("Fetching klines")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing klines: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty klines returned for %s", symbol)
	}

	now := c.now()
	series := make(model.Series, 0, len(rows))
	for i, row := range rows {
		k, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		if k.closeTime.After(now) {
			continue
		}
		series = append(series, k.candle)
	}

	c.logger.Debug().Int("count", len(series)).Str("symbol", symbol).Msg("Fetched klines")
	return series, nil
}

type kline struct {
	candle    model.Candle
	closeTime time.Time
}

// parseKline decodes [openTime, open, high, low, close, volume, closeTime, ...].
func parseKline(row []json.RawMessage) (kline, error) {
	if len(row) < 7 {
		return kline{}, fmt.Errorf("expected at least 7 fields, got %d", len(row))
	}

	var openMs, closeMs int64
	if err := json.Unmarshal(row[0], &openMs); err != nil {
		return kline{}, fmt.Errorf("open time: %w", err)
	}
	if err := json.Unmarshal(row[6], &closeMs); err != nil {
		return kline{}, fmt.Errorf("close time: %w", err)
	}

	var prices [5]float64
	for i := range prices {
		var raw string
		if err := json.Unmarshal(row[i+1], &raw); err != nil {
			return kline{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return kline{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		prices[i] = v
	}

	return kline{
		candle: model.Candle{
			Time:   time.UnixMilli(openMs).UTC(),
			Open:   prices[0],
			High:   prices[1],
			Low:    prices[2],
			Close:  prices[3],
			Volume: prices[4],
		},
		closeTime: time.UnixMilli(closeMs).UTC(),
	}, nil
}
