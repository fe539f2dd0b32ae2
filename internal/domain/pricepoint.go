package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricePoint represents one observation of an instrument's market price
// (or, for rate-quoted instruments, a periodic percentage rate).
// Points are created by the ingestion job and are immutable once stored;
// corrections supersede older rows rather than mutating them.
// Within one instrument's series, dates are unique. Price may be nil
// (missing observation); nil points are excluded from return
// calculations.
type PricePoint struct {
	ID           uuid.UUID
	InstrumentID uuid.UUID
	Date         time.Time
	Price        *decimal.Decimal
}

// PriceFloat converts the stored decimal price into a nullable float64
// for the calculation engines, which operate in full float precision.
func (p *PricePoint) PriceFloat() *float64 {
	if p.Price == nil {
		return nil
	}
	f, _ := p.Price.Float64()
	return &f
}
