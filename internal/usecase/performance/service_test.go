package performance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// MockBasketRepository is a mock implementation of BasketRepository for testing
type MockBasketRepository struct {
	mock.Mock
}

func (m *MockBasketRepository) Create(ctx context.Context, basket *domain.Basket) error {
	args := m.Called(ctx, basket)
	return args.Error(0)
}

func (m *MockBasketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Basket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Basket), args.Error(1)
}

func (m *MockBasketRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Basket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Basket), args.Error(1)
}

func (m *MockBasketRepository) Update(ctx context.Context, basket *domain.Basket) error {
	args := m.Called(ctx, basket)
	return args.Error(0)
}

func (m *MockBasketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInstrumentRepository is a mock implementation of InstrumentRepository for testing
type MockInstrumentRepository struct {
	mock.Mock
}

func (m *MockInstrumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instrument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) GetByTicker(ctx context.Context, ticker string) (*domain.Instrument, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) Create(ctx context.Context, instrument *domain.Instrument) error {
	args := m.Called(ctx, instrument)
	return args.Error(0)
}

func (m *MockInstrumentRepository) List(ctx context.Context, typeFilter domain.InstrumentType) ([]*domain.Instrument, error) {
	args := m.Called(ctx, typeFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) ListBenchmarks(ctx context.Context) ([]*domain.Instrument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Instrument), args.Error(1)
}

// MockPriceHistoryRepository is a mock implementation of PriceHistoryRepository for testing
type MockPriceHistoryRepository struct {
	mock.Mock
}

func (m *MockPriceHistoryRepository) AddBatch(ctx context.Context, points []domain.PricePoint) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

func (m *MockPriceHistoryRepository) GetLatest(ctx context.Context, instrumentID uuid.UUID) (*domain.PricePoint, error) {
	args := m.Called(ctx, instrumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricePoint), args.Error(1)
}

func (m *MockPriceHistoryRepository) ListByInstrument(ctx context.Context, instrumentID uuid.UUID, from, to time.Time) ([]domain.PricePoint, error) {
	args := m.Called(ctx, instrumentID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricePoint), args.Error(1)
}

func (m *MockPriceHistoryRepository) LatestDate(ctx context.Context, instrumentID uuid.UUID) (time.Time, error) {
	args := m.Called(ctx, instrumentID)
	return args.Get(0).(time.Time), args.Error(1)
}

func pricePoints(instrumentID uuid.UUID, values map[string]float64) []domain.PricePoint {
	points := make([]domain.PricePoint, 0, len(values))
	for day, value := range values {
		date, _ := time.Parse("2006-01-02", day)
		price := decimal.NewFromFloat(value)
		points = append(points, domain.PricePoint{
			ID:           uuid.New(),
			InstrumentID: instrumentID,
			Date:         date,
			Price:        &price,
		})
	}
	return points
}

func newTestService(
	baskets *MockBasketRepository,
	prices *MockPriceHistoryRepository,
	instruments *MockInstrumentRepository,
	now time.Time,
) *PerformanceService {
	svc := NewPerformanceService(baskets, prices, instruments, nil, zerolog.Nop())
	svc.Now = func() time.Time { return now }
	return svc
}

func TestGetBasketPerformance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	basketID := uuid.New()
	assetA := uuid.New()
	assetB := uuid.New()
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	basket := &domain.Basket{
		ID:     basketID,
		UserID: userID,
		Name:   "Risk Parity",
		Assets: []domain.BasketAsset{
			{InstrumentID: assetA, TargetPercentage: decimal.NewFromInt(60)},
			{InstrumentID: assetB, TargetPercentage: decimal.NewFromInt(40)},
		},
	}

	t.Run("weights asset returns by allocation", func(t *testing.T) {
		baskets := new(MockBasketRepository)
		prices := new(MockPriceHistoryRepository)
		instruments := new(MockInstrumentRepository)

		baskets.On("GetByID", ctx, basketID).Return(basket, nil)
		instruments.On("GetByID", ctx, assetA).Return(&domain.Instrument{
			ID: assetA, Ticker: "BOVA11.SA", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice,
		}, nil)
		instruments.On("GetByID", ctx, assetB).Return(&domain.Instrument{
			ID: assetB, Ticker: "IB5M11.SA", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice,
		}, nil)
		instruments.On("ListBenchmarks", ctx).Return([]*domain.Instrument{}, nil)

		// A: 100 -> 110 (+10%), B: 50 -> 45 (-10%)
		prices.On("ListByInstrument", ctx, assetA, mock.Anything, mock.Anything).Return(
			pricePoints(assetA, map[string]float64{"2024-05-15": 100, "2024-06-14": 110}), nil)
		prices.On("ListByInstrument", ctx, assetB, mock.Anything, mock.Anything).Return(
			pricePoints(assetB, map[string]float64{"2024-05-15": 50, "2024-06-14": 45}), nil)

		svc := newTestService(baskets, prices, instruments, now)
		perf, err := svc.GetBasketPerformance(ctx, userID, basketID, Period1M)
		require.NoError(t, err)

		// 10*0.6 + (-10)*0.4 = 2
		assert.InDelta(t, 2.0, perf.ReturnPct, 1e-9)
		assert.True(t, perf.HasSufficientData)
		require.Len(t, perf.AssetReturns, 2)
		assert.InDelta(t, 6.0, perf.AssetReturns[0].WeightedReturn, 1e-9)
		assert.InDelta(t, -4.0, perf.AssetReturns[1].WeightedReturn, 1e-9)
		assert.InDelta(t, 10000.0, perf.StartValue, 1e-9)
		assert.InDelta(t, 10200.0, perf.EndValue, 1e-9)
		assert.InDelta(t, 200.0, perf.AbsoluteGain, 1e-9)
		assert.Greater(t, perf.AnnualizedReturnPct, perf.ReturnPct)
		assert.NotEmpty(t, perf.EquityCurve)
	})

	t.Run("missing series flags insufficient data without failing", func(t *testing.T) {
		baskets := new(MockBasketRepository)
		prices := new(MockPriceHistoryRepository)
		instruments := new(MockInstrumentRepository)

		baskets.On("GetByID", ctx, basketID).Return(basket, nil)
		instruments.On("GetByID", ctx, assetA).Return(&domain.Instrument{
			ID: assetA, Ticker: "BOVA11.SA", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice,
		}, nil)
		instruments.On("GetByID", ctx, assetB).Return(&domain.Instrument{
			ID: assetB, Ticker: "NEWETF11.SA", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice,
		}, nil)
		instruments.On("ListBenchmarks", ctx).Return([]*domain.Instrument{}, nil)

		prices.On("ListByInstrument", ctx, assetA, mock.Anything, mock.Anything).Return(
			pricePoints(assetA, map[string]float64{"2024-05-15": 100, "2024-06-14": 110}), nil)
		prices.On("ListByInstrument", ctx, assetB, mock.Anything, mock.Anything).Return(
			[]domain.PricePoint{}, nil)

		svc := newTestService(baskets, prices, instruments, now)
		perf, err := svc.GetBasketPerformance(ctx, userID, basketID, Period1M)
		require.NoError(t, err)

		assert.False(t, perf.HasSufficientData)
		require.Len(t, perf.AssetReturns, 1)
		assert.InDelta(t, 6.0, perf.ReturnPct, 1e-9)
	})

	t.Run("basket owned by another user is not found", func(t *testing.T) {
		baskets := new(MockBasketRepository)
		prices := new(MockPriceHistoryRepository)
		instruments := new(MockInstrumentRepository)

		baskets.On("GetByID", ctx, basketID).Return(basket, nil)

		svc := newTestService(baskets, prices, instruments, now)
		_, err := svc.GetBasketPerformance(ctx, uuid.New(), basketID, Period1M)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("compares against benchmarks", func(t *testing.T) {
		baskets := new(MockBasketRepository)
		prices := new(MockPriceHistoryRepository)
		instruments := new(MockInstrumentRepository)
		benchID := uuid.New()

		singleAsset := &domain.Basket{
			ID:     basketID,
			UserID: userID,
			Name:   "Equities",
			Assets: []domain.BasketAsset{
				{InstrumentID: assetA, TargetPercentage: decimal.NewFromInt(100)},
			},
		}

		baskets.On("GetByID", ctx, basketID).Return(singleAsset, nil)
		instruments.On("GetByID", ctx, assetA).Return(&domain.Instrument{
			ID: assetA, Ticker: "BOVA11.SA", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice,
		}, nil)
		instruments.On("ListBenchmarks", ctx).Return([]*domain.Instrument{
			{ID: benchID, Ticker: "IPCA", Type: domain.InstrumentTypeIndex, QuoteKind: domain.QuoteKindPrice, Benchmark: true},
		}, nil)

		prices.On("ListByInstrument", ctx, assetA, mock.Anything, mock.Anything).Return(
			pricePoints(assetA, map[string]float64{"2024-05-15": 100, "2024-06-14": 110}), nil)
		prices.On("ListByInstrument", ctx, benchID, mock.Anything, mock.Anything).Return(
			pricePoints(benchID, map[string]float64{"2024-05-15": 200, "2024-06-14": 208}), nil)

		svc := newTestService(baskets, prices, instruments, now)
		perf, err := svc.GetBasketPerformance(ctx, userID, basketID, Period1M)
		require.NoError(t, err)

		require.Len(t, perf.Benchmarks, 1)
		assert.Equal(t, "IPCA", perf.Benchmarks[0].Name)
		assert.InDelta(t, 4.0, perf.Benchmarks[0].ReturnPct, 1e-9)
		assert.InDelta(t, 6.0, perf.Benchmarks[0].Difference, 1e-9)
	})

	t.Run("rate benchmark is compounded before comparison", func(t *testing.T) {
		baskets := new(MockBasketRepository)
		prices := new(MockPriceHistoryRepository)
		instruments := new(MockInstrumentRepository)
		cdiID := uuid.New()

		singleAsset := &domain.Basket{
			ID:     basketID,
			UserID: userID,
			Name:   "Equities",
			Assets: []domain.BasketAsset{
				{InstrumentID: assetA, TargetPercentage: decimal.NewFromInt(100)},
			},
		}

		baskets.On("GetByID", ctx, basketID).Return(singleAsset, nil)
		instruments.On("GetByID", ctx, assetA).Return(&domain.Instrument{
			ID: assetA, Ticker: "BOVA11.SA", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice,
		}, nil)
		instruments.On("ListBenchmarks", ctx).Return([]*domain.Instrument{
			{ID: cdiID, Ticker: "CDI", Type: domain.InstrumentTypeIndex, QuoteKind: domain.QuoteKindRate, Benchmark: true},
		}, nil)

		prices.On("ListByInstrument", ctx, assetA, mock.Anything, mock.Anything).Return(
			pricePoints(assetA, map[string]float64{"2024-05-15": 100, "2024-06-14": 110}), nil)
		// Daily rates compound into an index; the benchmark return is
		// measured on the index levels, not the raw rates.
		prices.On("ListByInstrument", ctx, cdiID, mock.Anything, mock.Anything).Return(
			pricePoints(cdiID, map[string]float64{"2024-05-15": 0.5, "2024-06-14": 0.5}), nil)

		svc := newTestService(baskets, prices, instruments, now)
		perf, err := svc.GetBasketPerformance(ctx, userID, basketID, Period1M)
		require.NoError(t, err)

		require.Len(t, perf.Benchmarks, 1)
		// index goes 100.5 -> 101.0025, a 0.5% change
		assert.InDelta(t, 0.5, perf.Benchmarks[0].ReturnPct, 1e-9)
		// CDI also feeds the Sharpe ratio as the risk-free leg; with a
		// flat two-point equity curve volatility may be zero, in which
		// case Sharpe is zero too.
		assert.GreaterOrEqual(t, perf.SharpeRatio, 0.0)
	})
}
