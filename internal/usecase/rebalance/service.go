// Package rebalance computes trade suggestions that realign a user's
// current positions to a basket's target allocation.
package rebalance

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// Action is the suggested trade direction for one instrument
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Suggestion is the rebalancing advice for a single basket instrument
type Suggestion struct {
	InstrumentID         uuid.UUID
	Ticker               string
	CurrentPrice         float64
	CurrentShares        float64
	CurrentValue         float64
	CurrentAllocationPct float64
	TargetAllocationPct  float64
	TargetValue          float64
	Delta                float64
	Action               Action
	SuggestedShares      float64
	EstimatedCost        float64
}

// Plan is the full rebalancing proposal for a basket
type Plan struct {
	BasketID             uuid.UUID
	BasketName           string
	TargetAmount         float64
	CurrentInvestedValue float64
	CurrentBaseValue     float64
	IncludeCashInBase    bool
	CashBalance          float64
	TotalEstimatedCost   float64
	CashAfterRebalance   float64
	Suggestions          []Suggestion
}

// RebalanceService derives rebalancing plans from transactions, fund
// holdings and basket targets
type RebalanceService struct {
	BasketRepo      domain.BasketRepository
	TransactionRepo domain.TransactionRepository
	PortfolioRepo   domain.PortfolioRepository
	FundRepo        domain.FundRepository
	InstrumentRepo  domain.InstrumentRepository
	PriceRepo       domain.PriceHistoryRepository
	Log             zerolog.Logger
}

// NewRebalanceService creates a new RebalanceService instance
func NewRebalanceService(
	basketRepo domain.BasketRepository,
	txRepo domain.TransactionRepository,
	portfolioRepo domain.PortfolioRepository,
	fundRepo domain.FundRepository,
	instrumentRepo domain.InstrumentRepository,
	priceRepo domain.PriceHistoryRepository,
	log zerolog.Logger,
) *RebalanceService {
	return &RebalanceService{
		BasketRepo:      basketRepo,
		TransactionRepo: txRepo,
		PortfolioRepo:   portfolioRepo,
		FundRepo:        fundRepo,
		InstrumentRepo:  instrumentRepo,
		PriceRepo:       priceRepo,
		Log:             log.With().Str("component", "rebalance").Logger(),
	}
}

// BuildPlan computes the trades that move the user's holdings toward
// the basket's targets, sized against targetAmount. Any non-zero delta
// yields a BUY or SELL; there is no deadband. Instruments without a
// current price are skipped with a warning. Baskets that do not exist
// or are not owned by the user fail with ErrNotFound before any
// computation.
func (s *RebalanceService) BuildPlan(ctx context.Context, userID, basketID uuid.UUID, targetAmount float64, includeCashInBase bool) (*Plan, error) {
	basket, err := s.BasketRepo.GetByID(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if basket.UserID != userID {
		return nil, domain.ErrNotFound
	}

	portfolio, err := s.PortfolioRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	cashBalance, _ := portfolio.CashBalance.Float64()

	shares, err := s.currentShares(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Position values at the latest stored prices
	prices := make(map[uuid.UUID]float64)
	values := make(map[uuid.UUID]float64)
	investedValue := 0.0
	for instrumentID, qty := range shares {
		if qty <= 0 {
			continue
		}
		price, ok := s.latestPrice(ctx, instrumentID)
		if !ok {
			continue
		}
		prices[instrumentID] = price
		values[instrumentID] = qty * price
		investedValue += qty * price
	}

	baseValue := investedValue
	if includeCashInBase {
		baseValue += cashBalance
	}

	plan := &Plan{
		BasketID:             basketID,
		BasketName:           basket.Name,
		TargetAmount:         targetAmount,
		CurrentInvestedValue: investedValue,
		CurrentBaseValue:     baseValue,
		IncludeCashInBase:    includeCashInBase,
		CashBalance:          cashBalance,
	}

	totalSells := 0.0
	for _, asset := range basket.Assets {
		instrument, err := s.InstrumentRepo.GetByID(ctx, asset.InstrumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load basket instrument: %w", err)
		}

		price, ok := prices[asset.InstrumentID]
		if !ok {
			price, ok = s.latestPrice(ctx, asset.InstrumentID)
		}
		if !ok || price == 0 {
			s.Log.Warn().
				Str("ticker", instrument.Ticker).
				Str("basket_id", basketID.String()).
				Msg("no current price for basket instrument; skipping suggestion")
			continue
		}

		targetPct, _ := asset.TargetPercentage.Float64()
		currentValue := values[asset.InstrumentID]
		targetValue := targetAmount * targetPct / 100
		delta := targetValue - currentValue

		currentPct := 0.0
		if baseValue > 0 {
			currentPct = currentValue / baseValue * 100
		}

		suggestion := Suggestion{
			InstrumentID:         asset.InstrumentID,
			Ticker:               instrument.Ticker,
			CurrentPrice:         price,
			CurrentShares:        shares[asset.InstrumentID],
			CurrentValue:         currentValue,
			CurrentAllocationPct: currentPct,
			TargetAllocationPct:  targetPct,
			TargetValue:          targetValue,
			Delta:                delta,
			EstimatedCost:        abs(delta),
		}

		switch {
		case delta > 0:
			suggestion.Action = ActionBuy
			plan.TotalEstimatedCost += delta
		case delta < 0:
			suggestion.Action = ActionSell
			totalSells += -delta
		default:
			suggestion.Action = ActionHold
		}

		if suggestion.Action != ActionHold {
			raw := abs(delta) / price
			suggestion.SuggestedShares = roundShares(raw, instrument.DecimalPlaces())
		}

		plan.Suggestions = append(plan.Suggestions, suggestion)
	}

	sort.Slice(plan.Suggestions, func(i, j int) bool {
		return plan.Suggestions[i].Ticker < plan.Suggestions[j].Ticker
	})

	plan.CashAfterRebalance = cashBalance - plan.TotalEstimatedCost + totalSells

	return plan, nil
}

// currentShares nets BUY/SELL quantities per instrument and folds in
// investment funds tracking an index as equivalent shares of that
// index (fund value divided by the index's latest price).
func (s *RebalanceService) currentShares(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]float64, error) {
	txs, err := s.TransactionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	shares := make(map[uuid.UUID]float64)
	for _, tx := range txs {
		qty, _ := tx.Shares.Float64()
		if tx.Type == domain.TransactionTypeSell {
			qty = -qty
		}
		shares[tx.InstrumentID] += qty
	}

	funds, err := s.FundRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load funds: %w", err)
	}
	for _, fund := range funds {
		if fund.IndexInstrumentID == nil {
			continue
		}
		price, ok := s.latestPrice(ctx, *fund.IndexInstrumentID)
		if !ok || price == 0 {
			continue
		}
		value, _ := fund.CurrentValue.Float64()
		shares[*fund.IndexInstrumentID] += value / price
	}

	return shares, nil
}

func (s *RebalanceService) latestPrice(ctx context.Context, instrumentID uuid.UUID) (float64, bool) {
	point, err := s.PriceRepo.GetLatest(ctx, instrumentID)
	if err != nil || point == nil || point.Price == nil {
		return 0, false
	}
	price, _ := point.Price.Float64()
	return price, true
}

func roundShares(qty float64, places int32) float64 {
	return decimal.NewFromFloat(qty).Round(places).InexactFloat64()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
