package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/riskparity-backend/internal/cache"
	"github.com/simaogato/riskparity-backend/internal/domain"
	"github.com/simaogato/riskparity-backend/internal/usecase/returns"
	"github.com/simaogato/riskparity-backend/internal/usecase/timeseries"
)

// hypotheticalInvestment is the notional amount the equity curve and
// start/end values are expressed against.
const hypotheticalInvestment = 10000.0

// cdiTicker identifies the reference rate used as the risk-free leg of
// the Sharpe ratio when present among the benchmarks.
const cdiTicker = "CDI"

// AssetReturn is one instrument's contribution to the basket's return
// over the queried period.
type AssetReturn struct {
	InstrumentID   uuid.UUID
	Ticker         string
	StartPrice     float64
	EndPrice       float64
	ReturnPct      float64
	Allocation     float64
	WeightedReturn float64
}

// EquityPoint is one point of the basket's historical equity curve,
// expressed as the value of a hypothetical investment.
type EquityPoint struct {
	Date  time.Time
	Value float64
}

// BenchmarkComparison reports a benchmark's own return over the same
// range and the basket's excess over it.
type BenchmarkComparison struct {
	Name       string
	ReturnPct  float64
	Difference float64
}

// BasketPerformance is the full performance report for one basket and
// period. It is derived per query and never persisted.
type BasketPerformance struct {
	Period              Period
	PeriodLabel         string
	StartDate           time.Time
	EndDate             time.Time
	ReturnPct           float64
	AnnualizedReturnPct float64
	StartValue          float64
	EndValue            float64
	AbsoluteGain        float64
	AssetReturns        []AssetReturn
	HasSufficientData   bool
	Volatility          float64
	SharpeRatio         float64
	EquityCurve         []EquityPoint
	Benchmarks          []BenchmarkComparison
}

// PerformanceService computes allocation-weighted basket performance
// from historical price series
type PerformanceService struct {
	BasketRepo     domain.BasketRepository
	PriceRepo      domain.PriceHistoryRepository
	InstrumentRepo domain.InstrumentRepository
	Cache          *cache.Cache
	Log            zerolog.Logger

	// Now is injectable for deterministic tests; defaults to time.Now
	Now func() time.Time
}

// NewPerformanceService creates a new PerformanceService instance
func NewPerformanceService(
	basketRepo domain.BasketRepository,
	priceRepo domain.PriceHistoryRepository,
	instrumentRepo domain.InstrumentRepository,
	resultCache *cache.Cache,
	log zerolog.Logger,
) *PerformanceService {
	return &PerformanceService{
		BasketRepo:     basketRepo,
		PriceRepo:      priceRepo,
		InstrumentRepo: instrumentRepo,
		Cache:          resultCache,
		Log:            log.With().Str("component", "performance").Logger(),
		Now:            time.Now,
	}
}

// GetBasketPerformance computes the basket's performance over the
// period: per-asset returns, the allocation-weighted basket return,
// annualization, a monthly equity curve, volatility/Sharpe from the
// curve's periodic returns, and benchmark comparisons. Baskets that do
// not exist or are not owned by the user fail with ErrNotFound before
// any computation.
func (s *PerformanceService) GetBasketPerformance(ctx context.Context, userID, basketID uuid.UUID, period Period) (*BasketPerformance, error) {
	basket, err := s.BasketRepo.GetByID(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if basket.UserID != userID {
		return nil, domain.ErrNotFound
	}

	key := cache.PerformanceKey(basketID.String(), string(period))
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(key); ok {
			if perf, ok := cached.(*BasketPerformance); ok {
				return perf, nil
			}
		}
	}

	start, end := period.Range(s.Now())

	perf := &BasketPerformance{
		Period:            period,
		PeriodLabel:       period.Label(),
		StartDate:         start,
		EndDate:           end,
		StartValue:        hypotheticalInvestment,
		HasSufficientData: true,
	}

	type assetSeries struct {
		allocation float64
		startPrice float64
		series     []timeseries.Point
	}
	curveInputs := make([]assetSeries, 0, len(basket.Assets))

	for _, asset := range basket.Assets {
		instrument, err := s.InstrumentRepo.GetByID(ctx, asset.InstrumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load basket instrument: %w", err)
		}

		series, err := s.loadSeries(ctx, instrument, end)
		if err != nil {
			return nil, err
		}

		startPrice := timeseries.ClosestPrice(series, start)
		endPrice := timeseries.ClosestPrice(series, end)
		assetReturn := returns.PercentageChange(startPrice, endPrice)

		if assetReturn == nil {
			s.Log.Warn().
				Str("ticker", instrument.Ticker).
				Str("basket_id", basketID.String()).
				Msg("insufficient price data for basket asset; excluding from performance")
			perf.HasSufficientData = false
			continue
		}

		allocation, _ := asset.TargetPercentage.Float64()
		weighted := *assetReturn * allocation / 100

		perf.AssetReturns = append(perf.AssetReturns, AssetReturn{
			InstrumentID:   asset.InstrumentID,
			Ticker:         instrument.Ticker,
			StartPrice:     *startPrice,
			EndPrice:       *endPrice,
			ReturnPct:      *assetReturn,
			Allocation:     allocation,
			WeightedReturn: weighted,
		})
		perf.ReturnPct += weighted

		curveInputs = append(curveInputs, assetSeries{
			allocation: allocation,
			startPrice: *startPrice,
			series:     series,
		})
	}

	days := timeseries.DaysBetween(start, end)
	perf.AnnualizedReturnPct = returns.AnnualizedReturn(perf.ReturnPct, days)
	perf.EndValue = hypotheticalInvestment * (1 + perf.ReturnPct/100)
	perf.AbsoluteGain = perf.EndValue - perf.StartValue

	// Monthly equity curve of the hypothetical investment
	for _, date := range monthEnds(start, end) {
		value := 0.0
		for _, in := range curveInputs {
			price := timeseries.ClosestPrice(in.series, date)
			if price == nil || in.startPrice == 0 {
				continue
			}
			value += hypotheticalInvestment * (in.allocation / 100) * (*price / in.startPrice)
		}
		perf.EquityCurve = append(perf.EquityCurve, EquityPoint{Date: date, Value: value})
	}

	curveValues := make([]float64, len(perf.EquityCurve))
	for i, p := range perf.EquityCurve {
		curveValues[i] = p.Value
	}
	perf.Volatility = returns.Volatility(returns.PeriodicReturns(curveValues))

	if err := s.compareBenchmarks(ctx, perf, start, end); err != nil {
		return nil, err
	}

	riskFree := 0.0
	for _, b := range perf.Benchmarks {
		if b.Name == cdiTicker {
			riskFree = b.ReturnPct
			break
		}
	}
	perf.SharpeRatio = returns.SharpeRatio(perf.ReturnPct, riskFree, perf.Volatility)

	if s.Cache != nil {
		s.Cache.Set(key, perf)
	}

	return perf, nil
}

// loadSeries fetches an instrument's history up to end and converts it
// into a price-level series: rate-quoted series are compounded into an
// accumulated index first so they can be compared against price levels.
func (s *PerformanceService) loadSeries(ctx context.Context, instrument *domain.Instrument, end time.Time) ([]timeseries.Point, error) {
	points, err := s.PriceRepo.ListByInstrument(ctx, instrument.ID, time.Time{}, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history for %s: %w", instrument.Ticker, err)
	}

	series := make([]timeseries.Point, len(points))
	for i := range points {
		series[i] = timeseries.Point{Date: points[i].Date, Price: points[i].PriceFloat()}
	}

	if instrument.QuoteKind == domain.QuoteKindRate {
		indexed := returns.AccumulatedIndex(timeseries.SortAscending(series), returns.BaseIndex)
		series = series[:0]
		for _, p := range indexed {
			level := p.Index
			series = append(series, timeseries.Point{Date: p.Date, Price: &level})
		}
	}

	return series, nil
}

// compareBenchmarks computes each benchmark instrument's own return
// over the identical range and the basket's excess return.
func (s *PerformanceService) compareBenchmarks(ctx context.Context, perf *BasketPerformance, start, end time.Time) error {
	benchmarks, err := s.InstrumentRepo.ListBenchmarks(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to list benchmarks: %w", err)
	}

	for _, instrument := range benchmarks {
		series, err := s.loadSeries(ctx, instrument, end)
		if err != nil {
			return err
		}

		ret := returns.PercentageChange(
			timeseries.ClosestPrice(series, start),
			timeseries.ClosestPrice(series, end),
		)
		if ret == nil {
			continue
		}

		perf.Benchmarks = append(perf.Benchmarks, BenchmarkComparison{
			Name:       instrument.Ticker,
			ReturnPct:  *ret,
			Difference: perf.ReturnPct - *ret,
		})
	}

	return nil
}

// monthEnds lists the last instant of every calendar month touched by
// [start, end], with the final element clamped to end.
func monthEnds(start, end time.Time) []time.Time {
	dates := make([]time.Time, 0)

	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	for cursor.Before(end) {
		next := cursor.AddDate(0, 1, 0)
		monthEnd := next.Add(-time.Nanosecond)
		if monthEnd.After(end) {
			monthEnd = end
		}
		dates = append(dates, monthEnd)
		cursor = next
	}

	return dates
}
