package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// seriesCodes maps rate-quoted tickers to their SGS series
var seriesCodes = map[string]int{
	"CDI":   SeriesCDI,
	"SELIC": SeriesSELIC,
	"IPCA":  SeriesIPCA,
}

// Router dispatches history fetches to the right source per
// instrument: price-quoted instruments go to Yahoo Finance, rate-quoted
// ones to the central bank SGS API.
type Router struct {
	yahoo *YahooClient
	bcb   *BCBClient
}

// NewRouter creates a provider router over both clients
func NewRouter(log zerolog.Logger) *Router {
	return &Router{
		yahoo: NewYahooClient(log),
		bcb:   NewBCBClient(log),
	}
}

// History fetches the instrument's historical observations over
// [start, end] from its natural source
func (r *Router) History(ctx context.Context, instrument *domain.Instrument, start, end time.Time) ([]Observation, error) {
	if instrument.QuoteKind == domain.QuoteKindRate {
		code, ok := seriesCodes[instrument.Ticker]
		if !ok {
			return nil, fmt.Errorf("no rate series mapped for %s", instrument.Ticker)
		}
		return r.bcb.RateSeries(ctx, code, start, end)
	}
	return r.yahoo.DailyHistory(ctx, instrument.Ticker, start, end)
}
