package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const bcbBaseURL = "https://api.bcb.gov.br/dados/serie"

// SGS series codes published by the Brazilian central bank
const (
	SeriesCDI   = 12
	SeriesSELIC = 432
	SeriesIPCA  = 433
)

// BCBClient fetches percentage-rate series from the central bank's
// SGS API. Values are periodic percentages (a daily CDI of 0.055131
// means 0.055131% that day).
type BCBClient struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewBCBClient creates a new SGS API client
func NewBCBClient(log zerolog.Logger) *BCBClient {
	return &BCBClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: bcbBaseURL,
		log:     log.With().Str("client", "bcb").Logger(),
	}
}

// bcbRecord is one row of an SGS series; the API dates are dd/MM/yyyy
// and values are decimal strings
type bcbRecord struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// RateSeries fetches one SGS series over [start, end]. The API caps
// windows at ten years, so earlier starts are clamped.
func (c *BCBClient) RateSeries(ctx context.Context, seriesCode int, start, end time.Time) ([]Observation, error) {
	tenYearsAgo := end.AddDate(-10, 0, 0)
	if start.Before(tenYearsAgo) {
		start = tenYearsAgo
	}

	params := url.Values{}
	params.Set("formato", "json")
	params.Set("dataInicial", start.Format("02/01/2006"))
	params.Set("dataFinal", end.Format("02/01/2006"))

	endpoint := fmt.Sprintf("%s/bcdata.sgs.%d/dados?%s", c.baseURL, seriesCode, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	c.log.Debug().Int("series", seriesCode).
		Time("start", start).Time("end", end).
		Msg("fetching rate series")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bcb returned status %d for series %d", resp.StatusCode, seriesCode)
	}

	var records []bcbRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	observations := make([]Observation, 0, len(records))
	for _, record := range records {
		date, err := time.ParseInLocation("02/01/2006", record.Data, time.UTC)
		if err != nil {
			c.log.Warn().Str("date", record.Data).Msg("skipping record with malformed date")
			continue
		}
		rate, err := strconv.ParseFloat(record.Valor, 64)
		if err != nil {
			observations = append(observations, Observation{Date: date})
			continue
		}
		observations = append(observations, Observation{Date: date, Value: &rate})
	}

	c.log.Debug().Int("series", seriesCode).
		Int("observations", len(observations)).
		Msg("rate series fetched")

	return observations, nil
}
