package valuation

import (
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// Position is a user's derived holding in one instrument. It is
// recomputed from the full transaction history on every request and
// never persisted.
type Position struct {
	InstrumentID uuid.UUID
	Shares       float64
	// AverageCost is the cost-basis weighted average of BUY lots only.
	// SELL transactions reduce the share count but do not reduce the
	// cost basis, so this is an all-time buy average, not a
	// remaining-lot average.
	AverageCost    float64
	CurrentPrice   *float64
	CurrentValue   float64
	TotalCost      float64
	UnrealizedGain float64
}

// BuildPositions aggregates a user's transactions into per-instrument
// positions, valued at the supplied latest prices. Instruments whose
// derived share count is not positive are dropped (a sell that zeroes
// or exceeds the held quantity closes the position). An instrument
// missing from prices keeps its position with a nil CurrentPrice and a
// zero value contribution; the caller is expected to flag it.
func BuildPositions(transactions []domain.Transaction, prices map[uuid.UUID]*float64) []Position {
	type accumulator struct {
		shares    float64
		buyShares float64
		totalCost float64
	}

	acc := make(map[uuid.UUID]*accumulator)
	order := make([]uuid.UUID, 0)

	for _, tx := range transactions {
		a, ok := acc[tx.InstrumentID]
		if !ok {
			a = &accumulator{}
			acc[tx.InstrumentID] = a
			order = append(order, tx.InstrumentID)
		}

		shares, _ := tx.Shares.Float64()
		price, _ := tx.PricePerShare.Float64()

		switch tx.Type {
		case domain.TransactionTypeBuy:
			a.shares += shares
			a.buyShares += shares
			a.totalCost += shares * price
		case domain.TransactionTypeSell:
			a.shares -= shares
		}
	}

	positions := make([]Position, 0, len(acc))
	for _, id := range order {
		a := acc[id]
		if a.shares <= 0 {
			continue
		}

		pos := Position{
			InstrumentID: id,
			Shares:       a.shares,
			TotalCost:    a.totalCost,
		}
		if a.buyShares > 0 {
			pos.AverageCost = a.totalCost / a.buyShares
		}

		if price, ok := prices[id]; ok && price != nil {
			pos.CurrentPrice = price
			pos.CurrentValue = a.shares * *price
		}
		pos.UnrealizedGain = pos.CurrentValue - pos.TotalCost

		positions = append(positions, pos)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].InstrumentID.String() < positions[j].InstrumentID.String()
	})

	return positions
}
