// Package marketdata fetches historical quotes from external sources:
// Yahoo Finance for price-level series and the Brazilian central bank
// SGS API for percentage-rate series.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Observation is one fetched historical data point. Value is nil when
// the source reports the date without a quote.
type Observation struct {
	Date  time.Time
	Value *float64
}

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooClient fetches daily closing prices from the Yahoo Finance v8
// chart API
type YahooClient struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(log zerolog.Logger) *YahooClient {
	return &YahooClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: yahooBaseURL,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// yahooChartResponse represents the response from the v8 chart API.
// Close prices keep their nulls so missing observations survive into
// storage.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// DailyHistory fetches daily closes for a symbol over [start, end]
func (c *YahooClient) DailyHistory(ctx context.Context, symbol string, start, end time.Time) ([]Observation, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	params.Set("period2", fmt.Sprintf("%d", end.Unix()))
	params.Set("interval", "1d")
	params.Set("events", "history")

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	c.log.Debug().Str("symbol", symbol).
		Time("start", start).Time("end", end).
		Msg("fetching daily history")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d for %s", resp.StatusCode, symbol)
	}

	var raw yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	result := raw.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}
	closes := result.Indicators.Quote[0].Close

	observations := make([]Observation, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		obs := Observation{Date: time.Unix(ts, 0).UTC()}
		if i < len(closes) {
			obs.Value = closes[i]
		}
		observations = append(observations, obs)
	}

	c.log.Debug().Str("symbol", symbol).
		Int("observations", len(observations)).
		Msg("daily history fetched")

	return observations, nil
}
