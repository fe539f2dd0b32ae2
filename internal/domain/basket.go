package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// allocationTolerance allows for small floating point drift when
// checking that target percentages sum to 100
var allocationTolerance = decimal.NewFromFloat(0.01)

// hundred is the reference total for target allocations
var hundred = decimal.NewFromInt(100)

// BasketAsset represents one target allocation inside a basket.
// Each instrument appears at most once per basket.
type BasketAsset struct {
	InstrumentID     uuid.UUID
	TargetPercentage decimal.Decimal
}

// Basket represents a named target-allocation model across instruments,
// used for rebalancing guidance and performance tracking
type Basket struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Assets []BasketAsset
}

// Validate ensures the basket adheres to domain rules
// Returns an error if validation fails
func (b *Basket) Validate() error {
	if b.Name == "" {
		return errors.New("basket name cannot be empty")
	}

	if len(b.Assets) == 0 {
		return errors.New("basket must have at least one asset")
	}

	seen := make(map[uuid.UUID]bool, len(b.Assets))
	total := decimal.Zero

	for _, asset := range b.Assets {
		if seen[asset.InstrumentID] {
			return errors.New("duplicate instruments are not allowed in a basket")
		}
		seen[asset.InstrumentID] = true

		if asset.TargetPercentage.LessThan(decimal.Zero) || asset.TargetPercentage.GreaterThan(hundred) {
			return errors.New("target percentage must be between 0 and 100")
		}

		total = total.Add(asset.TargetPercentage)
	}

	if total.Sub(hundred).Abs().GreaterThan(allocationTolerance) {
		return fmt.Errorf("target percentages must add up to 100%%, current total: %s%%", total.String())
	}

	return nil
}
