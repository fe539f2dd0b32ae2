package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/riskparity-backend/internal/domain"
	"github.com/simaogato/riskparity-backend/internal/scheduler"
	"github.com/simaogato/riskparity-backend/internal/usecase/basket"
	"github.com/simaogato/riskparity-backend/internal/usecase/retirement"
)

const testToken = "test-token"

type MockBasketRepository struct {
	mock.Mock
}

func (m *MockBasketRepository) Create(ctx context.Context, b *domain.Basket) error {
	args := m.Called(ctx, b)
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

func (m *MockBasketRepository) Update(ctx context.Context, b *domain.Basket) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBasketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

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

type MockRetirementRepository struct {
	mock.Mock
}

func (m *MockRetirementRepository) Create(ctx context.Context, sim *domain.RetirementSimulation) error {
	args := m.Called(ctx, sim)
	return args.Error(0)
}

func (m *MockRetirementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RetirementSimulation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetirementSimulation), args.Error(1)
}

func (m *MockRetirementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.RetirementSimulation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RetirementSimulation), args.Error(1)
}

func (m *MockRetirementRepository) Update(ctx context.Context, sim *domain.RetirementSimulation) error {
	args := m.Called(ctx, sim)
	return args.Error(0)
}

func (m *MockRetirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestServer(basketRepo domain.BasketRepository, instrumentRepo domain.InstrumentRepository) *Server {
	log := zerolog.Nop()
	return &Server{
		Baskets:     basket.NewBasketService(basketRepo, instrumentRepo, log),
		Retirement:  retirement.NewSimulationService(nil, log),
		Instruments: instrumentRepo,
		Scheduler:   scheduler.New(log),
		APIToken:    testToken,
		Log:         log,
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testToken)
		req.Header.Set("X-User-ID", uuid.NewString())
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	handler := newTestServer(new(MockBasketRepository), new(MockInstrumentRepository)).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/health", nil, false)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := newTestServer(new(MockBasketRepository), new(MockInstrumentRepository)).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/v1/baskets", nil, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsWrongToken(t *testing.T) {
	handler := newTestServer(new(MockBasketRepository), new(MockInstrumentRepository)).Routes()

	req := httptest.NewRequest(http.MethodGet, "/v1/baskets", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequiresUserID(t *testing.T) {
	handler := newTestServer(new(MockBasketRepository), new(MockInstrumentRepository)).Routes()

	req := httptest.NewRequest(http.MethodGet, "/v1/baskets", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBasket(t *testing.T) {
	basketRepo := new(MockBasketRepository)
	instrumentRepo := new(MockInstrumentRepository)
	handler := newTestServer(basketRepo, instrumentRepo).Routes()

	instrumentID := uuid.New()
	instrumentRepo.On("GetByID", mock.Anything, instrumentID).
		Return(&domain.Instrument{ID: instrumentID, Ticker: "BOVA11.SA"}, nil)
	basketRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/baskets", basketRequest{
		Name: "Risk Parity",
		Assets: []basketAssetRequest{
			{InstrumentID: instrumentID.String(), TargetPercentage: "100"},
		},
	}, true)

	assert.Equal(t, http.StatusCreated, rec.Code)
	basketRepo.AssertExpectations(t)

	var resp basketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Risk Parity", resp.Name)
	assert.Len(t, resp.Assets, 1)
}

func TestCreateBasketRejectsBadAllocation(t *testing.T) {
	basketRepo := new(MockBasketRepository)
	handler := newTestServer(basketRepo, new(MockInstrumentRepository)).Routes()

	rec := doRequest(t, handler, http.MethodPost, "/v1/baskets", basketRequest{
		Name: "Unbalanced",
		Assets: []basketAssetRequest{
			{InstrumentID: uuid.NewString(), TargetPercentage: "60"},
		},
	}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	basketRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetBasketNotFound(t *testing.T) {
	basketRepo := new(MockBasketRepository)
	handler := newTestServer(basketRepo, new(MockInstrumentRepository)).Routes()

	basketID := uuid.New()
	basketRepo.On("GetByID", mock.Anything, basketID).Return(nil, domain.ErrNotFound)

	rec := doRequest(t, handler, http.MethodGet, "/v1/baskets/"+basketID.String(), nil, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBasketRejectsMalformedID(t *testing.T) {
	handler := newTestServer(new(MockBasketRepository), new(MockInstrumentRepository)).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/v1/baskets/not-a-uuid", nil, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateRetirement(t *testing.T) {
	handler := newTestServer(new(MockBasketRepository), new(MockInstrumentRepository)).Routes()

	rec := doRequest(t, handler, http.MethodPost, "/v1/retirement/simulate", simulationRequest{
		Name:                 "Base plan",
		CurrentAge:           30,
		InitialWealth:        "1000",
		MonthlyContribution:  "100",
		RetirementAge:        32,
		DesiredAnnualIncome:  "1500",
		YearsInRetirement:    2,
		AnnualInflation:      "0",
		RealAccumulationRate: "0",
		RealRetirementRate:   "0",
	}, true)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp feasibilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// 1000 initial + 24 months of 100, against 2 years of 1500
	assert.InDelta(t, 3400.0, resp.ProjectedWealth, 1e-9)
	assert.InDelta(t, 3000.0, resp.RequiredWealth, 1e-9)
	assert.True(t, resp.Viable)
}

func TestSimulateRetirementRejectsInvalidParams(t *testing.T) {
	handler := newTestServer(new(MockBasketRepository), new(MockInstrumentRepository)).Routes()

	rec := doRequest(t, handler, http.MethodPost, "/v1/retirement/simulate", simulationRequest{
		Name:                 "Backwards",
		CurrentAge:           50,
		InitialWealth:        "1000",
		MonthlyContribution:  "100",
		RetirementAge:        40,
		DesiredAnnualIncome:  "1500",
		YearsInRetirement:    2,
		AnnualInflation:      "0",
		RealAccumulationRate: "0",
		RealRetirementRate:   "0",
	}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectionDefaultTaxRateIsPercentage(t *testing.T) {
	retirementRepo := new(MockRetirementRepository)
	log := zerolog.Nop()
	srv := &Server{
		Retirement: retirement.NewSimulationService(retirementRepo, log),
		Scheduler:  scheduler.New(log),
		APIToken:   testToken,
		Log:        log,
	}
	handler := srv.Routes()

	owner := uuid.New()
	sim := &domain.RetirementSimulation{
		ID:                   uuid.New(),
		UserID:               owner,
		Name:                 "Base plan",
		CurrentAge:           30,
		RetirementAge:        31,
		YearsInRetirement:    5,
		InitialWealth:        decimal.NewFromInt(1000),
		MonthlyContribution:  decimal.Zero,
		DesiredAnnualIncome:  decimal.NewFromInt(100),
		AnnualInflation:      decimal.Zero,
		RealAccumulationRate: decimal.Zero,
		RealRetirementRate:   decimal.NewFromInt(10),
	}
	retirementRepo.On("GetByID", mock.Anything, sim.ID).Return(sim, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/retirement/simulations/"+sim.ID.String()+"/projection", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-User-ID", owner.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp projectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.GreaterOrEqual(t, len(resp.Wealth.Years), 3)

	// First retirement year grows 1000 to 1100, then withdraws the 100
	// target grossed up for 15% tax on the earnings share (100/1100):
	// 100 / (1 - (100/1100)*0.15) = 1100/10.85
	first := resp.Wealth.Years[2]
	assert.Equal(t, "DECUMULATION", first.Phase)
	assert.InDelta(t, 1100.0-1100.0/10.85, first.Wealth, 1e-9)
}

func TestProjectionRejectsOutOfRangeTaxRate(t *testing.T) {
	retirementRepo := new(MockRetirementRepository)
	log := zerolog.Nop()
	srv := &Server{
		Retirement: retirement.NewSimulationService(retirementRepo, log),
		Scheduler:  scheduler.New(log),
		APIToken:   testToken,
		Log:        log,
	}
	handler := srv.Routes()
	retirementRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/v1/retirement/simulations/"+uuid.NewString()+"/projection?tax_rate=0.15", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Fractional 0.15 is a valid percentage (0.15%); 100 and above are not
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/retirement/simulations/"+uuid.NewString()+"/projection?tax_rate=100", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchedulerStatus(t *testing.T) {
	handler := newTestServer(new(MockBasketRepository), new(MockInstrumentRepository)).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/v1/scheduler/status", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp schedulerStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Running)
	assert.Empty(t, resp.Jobs)
}
