package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of an executed trade
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "BUY"
	TransactionTypeSell TransactionType = "SELL"
)

// Transaction represents one executed trade (a lot) in the domain layer.
// Transactions are immutable once created; positions are derived by
// aggregating the full transaction history, never by mutating rows.
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	InstrumentID  uuid.UUID
	Type          TransactionType
	Shares        decimal.Decimal // always positive; sign comes from Type
	PricePerShare decimal.Decimal
	Date          time.Time
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.Type != TransactionTypeBuy && t.Type != TransactionTypeSell {
		return errors.New("transaction type must be BUY or SELL")
	}

	if t.Shares.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction shares must be positive")
	}

	if t.PricePerShare.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction price per share must be positive")
	}

	return nil
}

// CashImpact returns the signed change this trade applies to the cash
// balance: negative for a BUY, positive for a SELL.
func (t *Transaction) CashImpact() decimal.Decimal {
	total := t.Shares.Mul(t.PricePerShare)
	if t.Type == TransactionTypeBuy {
		return total.Neg()
	}
	return total
}
