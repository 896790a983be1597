package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/model"
	httpClient "github.com/Alias1177/SmartMoney/internal/platform/http"
)

const defaultBaseURL = "https://api.twelvedata.com"

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	now        func() time.Time
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	// HTTPClient overrides the rate-limited client built from the options above.
	HTTPClient *httpClient.Client
}

// NewClient creates a new TwelveData API client
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
		apiKey:     options.APIKey,
		baseURL:    baseURL,
		httpClient: hc,
		now:        time.Now,
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return "twelvedata" }

// GetSeries fetches up to count candles, oldest first. A last candle that is
// still forming is dropped.
func (c *Client) GetSeries(ctx context.Context, symbol, interval string, count int) (model.Series, error) {
	step, err := model.IntervalDuration(interval)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(count))
	q.Set("timezone", "UTC")
	q.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/time_series?" + q.Encode()

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", count).Msg("Fetching candles")

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data TwelveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if data.Status == "error" {
		c.logger.Error().Int("code", data.Code).Str("message", data.Message).Msg("Twelve Data API error")
		return nil, fmt.Errorf("twelve data API error %d: %s", data.Code, data.Message)
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, fmt.Errorf("empty data returned for %s", symbol)
	}

	series := make(model.Series, 0, len(data.Values))
	for _, v := range data.Values {
		candle, err := parseValue(v.Datetime, v.Open, v.High, v.Low, v.Close, v.Volume)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", symbol, interval, err)
		}
		series = append(series, candle)
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(series, func(i, j int) bool {
		return series[i].Time.Before(series[j].Time)
	})

	if last, ok := series.Last(); ok && last.Time.Add(step).After(c.now()) {
		series = series[:len(series)-1]
	}

	c.logger.Debug().Int("count", len(series)).Str("symbol", symbol).Msg("Fetched candles")
	return series, nil
}

var datetimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

func parseValue(datetime, open, high, low, closing, volume string) (model.Candle, error) {
	var ts time.Time
	var err error
	for _, layout := range datetimeLayouts {
		if ts, err = time.ParseInLocation(layout, datetime, time.UTC); err == nil {
			break
		}
	}
	if err != nil {
		return model.Candle{}, fmt.Errorf("parsing datetime %q: %w", datetime, err)
	}

	c := model.Candle{Time: ts}
	fields := []struct {
		raw string
		dst *float64
	}{
		{open, &c.Open},
		{high, &c.High},
		{low, &c.Low},
		{closing, &c.Close},
	}
	for _, f := range fields {
		if *f.dst, err = strconv.ParseFloat(f.raw, 64); err != nil {
			return model.Candle{}, fmt.Errorf("parsing price %q at %s: %w", f.raw, datetime, err)
		}
	}
	if volume != "" {
		if c.Volume, err = strconv.ParseFloat(volume, 64); err != nil {
			return model.Candle{}, fmt.Errorf("parsing volume %q at %s: %w", volume, datetime, err)
		}
	}
	return c, nil
}
