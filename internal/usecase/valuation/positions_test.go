package valuation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

func fp(v float64) *float64 { return &v }

func tx(userID, instrumentID uuid.UUID, txType domain.TransactionType, shares, price float64, day int) domain.Transaction {
	return domain.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		InstrumentID:  instrumentID,
		Type:          txType,
		Shares:        decimal.NewFromFloat(shares),
		PricePerShare: decimal.NewFromFloat(price),
		Date:          time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildPositions_TwoBuys(t *testing.T) {
	userID := uuid.New()
	instrumentID := uuid.New()

	transactions := []domain.Transaction{
		tx(userID, instrumentID, domain.TransactionTypeBuy, 10, 100, 1),
		tx(userID, instrumentID, domain.TransactionTypeBuy, 5, 120, 2),
	}
	prices := map[uuid.UUID]*float64{instrumentID: fp(110)}

	positions := BuildPositions(transactions, prices)

	require.Len(t, positions, 1)
	pos := positions[0]
	assert.InDelta(t, 15, pos.Shares, 1e-9)
	assert.InDelta(t, 1600, pos.TotalCost, 1e-9)
	assert.InDelta(t, 106.66666666666667, pos.AverageCost, 1e-9)
	assert.InDelta(t, 1650, pos.CurrentValue, 1e-9)
	assert.InDelta(t, 50, pos.UnrealizedGain, 1e-9)
}

func TestBuildPositions_SellDoesNotReduceCostBasis(t *testing.T) {
	userID := uuid.New()
	instrumentID := uuid.New()

	transactions := []domain.Transaction{
		tx(userID, instrumentID, domain.TransactionTypeBuy, 10, 100, 1),
		tx(userID, instrumentID, domain.TransactionTypeSell, 4, 130, 2),
	}
	prices := map[uuid.UUID]*float64{instrumentID: fp(110)}

	positions := BuildPositions(transactions, prices)

	require.Len(t, positions, 1)
	pos := positions[0]
	assert.InDelta(t, 6, pos.Shares, 1e-9)
	// Cost basis is the all-time buy total, untouched by the sell
	assert.InDelta(t, 1000, pos.TotalCost, 1e-9)
	assert.InDelta(t, 100, pos.AverageCost, 1e-9)
	assert.InDelta(t, 660, pos.CurrentValue, 1e-9)
}

func TestBuildPositions_ClosedPositionIsDropped(t *testing.T) {
	userID := uuid.New()
	instrumentID := uuid.New()

	transactions := []domain.Transaction{
		tx(userID, instrumentID, domain.TransactionTypeBuy, 10, 100, 1),
		tx(userID, instrumentID, domain.TransactionTypeSell, 10, 120, 2),
	}
	prices := map[uuid.UUID]*float64{instrumentID: fp(110)}

	assert.Empty(t, BuildPositions(transactions, prices))
}

func TestBuildPositions_OversoldPositionIsDropped(t *testing.T) {
	userID := uuid.New()
	instrumentID := uuid.New()

	transactions := []domain.Transaction{
		tx(userID, instrumentID, domain.TransactionTypeBuy, 5, 100, 1),
		tx(userID, instrumentID, domain.TransactionTypeSell, 8, 120, 2),
	}

	assert.Empty(t, BuildPositions(transactions, map[uuid.UUID]*float64{instrumentID: fp(110)}))
}

func TestBuildPositions_MissingPriceValuesAtZero(t *testing.T) {
	userID := uuid.New()
	instrumentID := uuid.New()

	transactions := []domain.Transaction{
		tx(userID, instrumentID, domain.TransactionTypeBuy, 10, 100, 1),
	}

	positions := BuildPositions(transactions, map[uuid.UUID]*float64{instrumentID: nil})

	require.Len(t, positions, 1)
	pos := positions[0]
	assert.Nil(t, pos.CurrentPrice)
	assert.Zero(t, pos.CurrentValue)
	assert.InDelta(t, -1000, pos.UnrealizedGain, 1e-9)
}

func TestBuildPositions_MultipleInstruments(t *testing.T) {
	userID := uuid.New()
	a := uuid.New()
	b := uuid.New()

	transactions := []domain.Transaction{
		tx(userID, a, domain.TransactionTypeBuy, 10, 100, 1),
		tx(userID, b, domain.TransactionTypeBuy, 2, 50, 1),
		tx(userID, a, domain.TransactionTypeSell, 5, 110, 2),
	}
	prices := map[uuid.UUID]*float64{a: fp(110), b: fp(55)}

	positions := BuildPositions(transactions, prices)

	require.Len(t, positions, 2)
	byID := map[uuid.UUID]Position{}
	for _, pos := range positions {
		byID[pos.InstrumentID] = pos
	}
	assert.InDelta(t, 5, byID[a].Shares, 1e-9)
	assert.InDelta(t, 2, byID[b].Shares, 1e-9)
	assert.InDelta(t, 110, byID[b].CurrentValue, 1e-9)
}

func TestBuildPositions_Idempotent(t *testing.T) {
	userID := uuid.New()
	instrumentID := uuid.New()

	transactions := []domain.Transaction{
		tx(userID, instrumentID, domain.TransactionTypeBuy, 3, 33.33, 1),
		tx(userID, instrumentID, domain.TransactionTypeBuy, 7, 41.7, 2),
		tx(userID, instrumentID, domain.TransactionTypeSell, 1, 45, 3),
	}
	prices := map[uuid.UUID]*float64{instrumentID: fp(44.44)}

	first := BuildPositions(transactions, prices)
	second := BuildPositions(transactions, prices)

	assert.Equal(t, first, second)
}
