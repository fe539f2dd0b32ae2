package domain

import (
	"errors"

	"github.com/google/uuid"
)

// InstrumentType classifies a tradable or quotable asset
type InstrumentType string

const (
	InstrumentTypeStock    InstrumentType = "STOCK"
	InstrumentTypeETF      InstrumentType = "ETF"
	InstrumentTypeCurrency InstrumentType = "CURRENCY"
	InstrumentTypeIndex    InstrumentType = "INDEX"
	InstrumentTypeCrypto   InstrumentType = "CRYPTO"
)

// QuoteKind describes how the historical series of an instrument is stored
type QuoteKind string

const (
	// QuoteKindPrice means each observation is a market price level
	QuoteKindPrice QuoteKind = "PRICE"
	// QuoteKindRate means each observation is a periodic percentage rate
	// (e.g. an interbank reference rate) that must be compounded into an
	// accumulated index before it can be compared against price levels
	QuoteKindRate QuoteKind = "RATE"
)

// Instrument represents a tradable/quotable asset in the domain layer:
// a stock, ETF, currency pair or rate index
type Instrument struct {
	ID        uuid.UUID
	Ticker    string
	Name      string
	Type      InstrumentType
	QuoteKind QuoteKind
	// Benchmark marks instruments used as comparison references for
	// basket performance (reference rates, inflation indices)
	Benchmark bool
}

// DecimalPlaces returns the display/rounding precision for share
// quantities and amounts of this instrument class.
// Crypto instruments use 8 decimals, everything else uses 2.
// This affects only formatting of suggested quantities, never the
// internal arithmetic.
func (i *Instrument) DecimalPlaces() int32 {
	if i.Type == InstrumentTypeCrypto {
		return 8
	}
	return 2
}

// Validate ensures the instrument adheres to domain rules
// Returns an error if validation fails
func (i *Instrument) Validate() error {
	if i.Ticker == "" {
		return errors.New("instrument ticker cannot be empty")
	}

	switch i.Type {
	case InstrumentTypeStock, InstrumentTypeETF, InstrumentTypeCurrency,
		InstrumentTypeIndex, InstrumentTypeCrypto:
	default:
		return errors.New("instrument type must be STOCK, ETF, CURRENCY, INDEX or CRYPTO")
	}

	switch i.QuoteKind {
	case QuoteKindPrice, QuoteKindRate:
	default:
		return errors.New("instrument quote kind must be PRICE or RATE")
	}

	// Rate series only make sense for index-type instruments
	if i.QuoteKind == QuoteKindRate && i.Type != InstrumentTypeIndex {
		return errors.New("rate-quoted instruments must be of type INDEX")
	}

	return nil
}
