// Package ingest keeps the stored price histories current by pulling
// observations from external market data sources.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/adapter/marketdata"
	"github.com/simaogato/riskparity-backend/internal/domain"
)

// defaultLookback bounds the first fetch of an instrument with no
// stored history
const defaultLookback = 5 * 365 * 24 * time.Hour

// staleAfter is how old the newest stored point may be before the
// catalog counts as outdated
const staleAfter = 24 * time.Hour

// Provider fetches an instrument's historical observations from its
// external source
type Provider interface {
	History(ctx context.Context, instrument *domain.Instrument, start, end time.Time) ([]marketdata.Observation, error)
}

// RefreshResult summarizes one refresh run
type RefreshResult struct {
	Refreshed int
	Failed    int
	Points    int
	Errors    map[string]string
}

// RefreshService updates stored price histories incrementally from the
// last stored date of each instrument
type RefreshService struct {
	InstrumentRepo domain.InstrumentRepository
	PriceRepo      domain.PriceHistoryRepository
	Provider       Provider
	Log            zerolog.Logger

	// Now is injectable for deterministic tests; defaults to time.Now
	Now func() time.Time
}

// NewRefreshService creates a new RefreshService instance
func NewRefreshService(
	instrumentRepo domain.InstrumentRepository,
	priceRepo domain.PriceHistoryRepository,
	provider Provider,
	log zerolog.Logger,
) *RefreshService {
	return &RefreshService{
		InstrumentRepo: instrumentRepo,
		PriceRepo:      priceRepo,
		Provider:       provider,
		Log:            log.With().Str("component", "ingest").Logger(),
		Now:            time.Now,
	}
}

// RefreshAll refreshes every instrument in the catalog. Individual
// failures are tolerated and reported; the run continues with the
// remaining instruments.
func (s *RefreshService) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	instruments, err := s.InstrumentRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{Errors: make(map[string]string)}
	for _, instrument := range instruments {
		points, err := s.RefreshInstrument(ctx, instrument)
		if err != nil {
			s.Log.Error().Err(err).
				Str("ticker", instrument.Ticker).
				Msg("instrument refresh failed")
			result.Failed++
			result.Errors[instrument.Ticker] = err.Error()
			continue
		}
		result.Refreshed++
		result.Points += points
	}

	s.Log.Info().
		Int("refreshed", result.Refreshed).
		Int("failed", result.Failed).
		Int("points", result.Points).
		Msg("refresh run finished")
	return result, nil
}

// RefreshInstrument fetches and stores the instrument's observations
// since its last stored date, or over the default lookback window when
// the series is empty. Returns the number of points handed to storage.
func (s *RefreshService) RefreshInstrument(ctx context.Context, instrument *domain.Instrument) (int, error) {
	now := s.Now()

	start := now.Add(-defaultLookback)
	last, err := s.PriceRepo.LatestDate(ctx, instrument.ID)
	if err != nil {
		return 0, err
	}
	if !last.IsZero() {
		// resume the day after the newest stored point
		start = last.AddDate(0, 0, 1)
	}
	if !start.Before(now) {
		return 0, nil
	}

	observations, err := s.Provider.History(ctx, instrument, start, now)
	if err != nil {
		return 0, err
	}
	if len(observations) == 0 {
		return 0, nil
	}

	points := make([]domain.PricePoint, 0, len(observations))
	for _, obs := range observations {
		point := domain.PricePoint{
			ID:           uuid.New(),
			InstrumentID: instrument.ID,
			Date:         obs.Date,
		}
		if obs.Value != nil {
			price := decimal.NewFromFloat(*obs.Value)
			point.Price = &price
		}
		points = append(points, point)
	}

	if err := s.PriceRepo.AddBatch(ctx, points); err != nil {
		return 0, err
	}

	s.Log.Debug().
		Str("ticker", instrument.Ticker).
		Int("points", len(points)).
		Msg("instrument refreshed")
	return len(points), nil
}

// InstrumentStatus reports one instrument's data freshness
type InstrumentStatus struct {
	InstrumentID uuid.UUID
	Ticker       string
	LastDate     time.Time
	Stale        bool
}

// UpdateInfo reports the overall freshness of the price catalog
type UpdateInfo struct {
	Instruments []InstrumentStatus
	LastUpdate  time.Time
	Outdated    bool
}

// LastUpdateInfo reports each instrument's newest stored date and
// whether the catalog as a whole is older than the staleness cutoff
func (s *RefreshService) LastUpdateInfo(ctx context.Context) (*UpdateInfo, error) {
	instruments, err := s.InstrumentRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}

	cutoff := s.Now().Add(-staleAfter)
	info := &UpdateInfo{}
	for _, instrument := range instruments {
		last, err := s.PriceRepo.LatestDate(ctx, instrument.ID)
		if err != nil {
			return nil, err
		}

		status := InstrumentStatus{
			InstrumentID: instrument.ID,
			Ticker:       instrument.Ticker,
			LastDate:     last,
			Stale:        last.Before(cutoff),
		}
		info.Instruments = append(info.Instruments, status)

		if last.After(info.LastUpdate) {
			info.LastUpdate = last
		}
		if status.Stale {
			info.Outdated = true
		}
	}

	return info, nil
}
