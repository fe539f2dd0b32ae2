package valuation

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// Metrics summarizes the portfolio: value, gains and how closely the
// current allocation tracks the selected basket's targets.
type Metrics struct {
	TotalValue       float64
	TotalGain        float64
	TotalGainPercent float64
	// RiskBalanceScore is 0..100; 100 means every position sits within
	// the 90%-110% band of its target allocation
	RiskBalanceScore int
	CashBalance      float64
	PositionsValue   float64
	FundsValue       float64
}

// GetMetrics computes portfolio-level gain metrics and, when basketID
// is non-nil, the risk balance score against that basket's targets.
// Without a basket the score defaults to 100.
func (s *ValuationService) GetMetrics(ctx context.Context, userID uuid.UUID, basket *domain.Basket) (*Metrics, error) {
	view, err := s.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	funds, err := s.FundRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	positionsValue := 0.0
	positionsCost := 0.0
	for _, pos := range view.Positions {
		positionsValue += pos.CurrentValue
		positionsCost += pos.TotalCost
	}

	fundsValue := 0.0
	fundsInvested := 0.0
	for _, fund := range funds {
		v, _ := fund.CurrentValue.Float64()
		i, _ := fund.InitialInvestment.Float64()
		fundsValue += v
		fundsInvested += i
	}

	totalInvested := positionsCost + fundsInvested
	totalGain := (positionsValue - positionsCost) + (fundsValue - fundsInvested)

	gainPercent := 0.0
	if totalInvested > 0 {
		gainPercent = totalGain / totalInvested * 100
	}

	return &Metrics{
		TotalValue:       view.TotalValue,
		TotalGain:        totalGain,
		TotalGainPercent: gainPercent,
		RiskBalanceScore: int(math.Round(riskBalanceScore(view.Positions, basket, positionsValue+fundsValue))),
		CashBalance:      view.CashBalance,
		PositionsValue:   positionsValue,
		FundsValue:       fundsValue,
	}, nil
}

// riskBalanceScore scores how well the current allocation matches the
// basket's targets. Per asset: the 90%-110% band of the target scores
// 100; under-allocation decays linearly to 0 at an empty position;
// over-allocation decays linearly to 0 at twice the target. Asset
// scores are averaged weighted by target size, with larger targets
// weighted super-linearly so the dominant allocations drive the score.
func riskBalanceScore(positions []Position, basket *domain.Basket, allocationBase float64) float64 {
	if basket == nil || len(basket.Assets) == 0 || allocationBase <= 0 {
		return 100
	}

	byInstrument := make(map[uuid.UUID]Position, len(positions))
	for _, pos := range positions {
		byInstrument[pos.InstrumentID] = pos
	}

	totalWeightedScore := 0.0
	totalWeight := 0.0

	for _, asset := range basket.Assets {
		target, _ := asset.TargetPercentage.Float64()

		currentValue := byInstrument[asset.InstrumentID].CurrentValue
		currentPercent := currentValue / allocationBase * 100

		ratio := 0.0
		if target > 0 {
			ratio = currentPercent / target * 100
		}

		var score float64
		switch {
		case ratio >= 90 && ratio <= 110:
			score = 100
		case ratio < 90:
			score = math.Max(0, ratio/90*100)
		default:
			penalty := math.Min(100, (ratio-110)/90*100)
			score = math.Max(0, 100-penalty)
		}

		var weight float64
		switch {
		case target >= 10:
			weight = math.Pow(target, 1.5)
		case target >= 5:
			weight = math.Pow(target, 1.2)
		default:
			weight = target
		}

		totalWeightedScore += score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 100
	}
	return totalWeightedScore / totalWeight
}
