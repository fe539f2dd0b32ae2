package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Portfolio represents a user's portfolio record in the domain layer.
// It only persists the cash balance; positions are always derived from
// the transaction history on demand and never stored.
type Portfolio struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CashBalance decimal.Decimal
}

// InvestmentFund represents an externally managed fund holding that is
// tracked by its invested amount and latest reported value rather than
// by per-share transactions. A fund may be linked to an index
// instrument so rebalancing can treat it as an equivalent position.
type InvestmentFund struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Name              string
	InitialInvestment decimal.Decimal
	CurrentValue      decimal.Decimal
	InvestmentDate    time.Time
	IndexInstrumentID *uuid.UUID
}

// Validate ensures the fund adheres to domain rules
func (f *InvestmentFund) Validate() error {
	if f.Name == "" {
		return errors.New("fund name cannot be empty")
	}

	if f.InitialInvestment.LessThan(decimal.Zero) {
		return errors.New("fund initial investment cannot be negative")
	}

	if f.CurrentValue.LessThan(decimal.Zero) {
		return errors.New("fund current value cannot be negative")
	}

	return nil
}
