package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstrumentRepository defines the interface for instrument persistence operations
type InstrumentRepository interface {
	// GetByID retrieves an instrument by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Instrument, error)

	// GetByTicker retrieves an instrument by its ticker symbol
	GetByTicker(ctx context.Context, ticker string) (*Instrument, error)

	// Create creates a new instrument
	Create(ctx context.Context, instrument *Instrument) error

	// List retrieves instruments, optionally filtered by type
	// If typeFilter is empty, returns all instruments
	List(ctx context.Context, typeFilter InstrumentType) ([]*Instrument, error)

	// ListBenchmarks retrieves instruments flagged as benchmarks
	ListBenchmarks(ctx context.Context) ([]*Instrument, error)
}

// PriceHistoryRepository defines the interface for historical price persistence operations
type PriceHistoryRepository interface {
	// AddBatch stores a batch of price points, skipping dates that
	// already exist for the instrument
	AddBatch(ctx context.Context, points []PricePoint) error

	// GetLatest retrieves the most recent price point for an instrument
	GetLatest(ctx context.Context, instrumentID uuid.UUID) (*PricePoint, error)

	// ListByInstrument retrieves an instrument's price points ordered
	// ascending by date. Zero from/to values mean unbounded.
	ListByInstrument(ctx context.Context, instrumentID uuid.UUID, from, to time.Time) ([]PricePoint, error)

	// LatestDate returns the date of the most recent stored point, or
	// the zero time when the series is empty
	LatestDate(ctx context.Context, instrumentID uuid.UUID) (time.Time, error)
}

// TransactionRepository defines the interface for trade persistence operations
type TransactionRepository interface {
	// Create creates a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// ListByUser retrieves all of a user's transactions ordered
	// ascending by date, as required by the valuation engine
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Transaction, error)

	// List retrieves a paginated list of a user's transactions ordered
	// descending by date. If instrumentID is nil, all instruments are
	// included.
	List(ctx context.Context, userID uuid.UUID, limit, offset int, instrumentID *uuid.UUID) ([]Transaction, error)

	// Count returns the number of a user's transactions, optionally
	// filtered by instrument
	Count(ctx context.Context, userID uuid.UUID, instrumentID *uuid.UUID) (int, error)
}

// PortfolioRepository defines the interface for portfolio persistence operations
type PortfolioRepository interface {
	// GetOrCreate retrieves the user's portfolio, creating an empty one
	// (zero cash balance) if none exists yet
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Portfolio, error)

	// SetCashBalance replaces the portfolio's cash balance
	SetCashBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*Portfolio, error)

	// AdjustCashBalance applies a signed delta to the cash balance
	AdjustCashBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error
}

// BasketRepository defines the interface for basket persistence operations
type BasketRepository interface {
	// Create creates a new basket with its allocations
	Create(ctx context.Context, basket *Basket) error

	// GetByID retrieves a basket with its allocations
	GetByID(ctx context.Context, id uuid.UUID) (*Basket, error)

	// ListByUser retrieves all baskets owned by a user, ordered by name
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Basket, error)

	// Update replaces the basket's name and allocations atomically
	Update(ctx context.Context, basket *Basket) error

	// Delete removes the basket and its allocations
	Delete(ctx context.Context, id uuid.UUID) error
}

// FundRepository defines the interface for investment fund persistence operations
type FundRepository interface {
	// Create creates a new fund
	Create(ctx context.Context, fund *InvestmentFund) error

	// ListByUser retrieves all funds owned by a user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*InvestmentFund, error)

	// Update replaces the fund's mutable fields (name, values)
	Update(ctx context.Context, fund *InvestmentFund) error

	// Delete removes the fund
	Delete(ctx context.Context, id uuid.UUID) error
}

// RetirementRepository defines the interface for retirement simulation persistence operations
type RetirementRepository interface {
	// Create stores a new simulation
	Create(ctx context.Context, sim *RetirementSimulation) error

	// GetByID retrieves a simulation
	GetByID(ctx context.Context, id uuid.UUID) (*RetirementSimulation, error)

	// ListByUser retrieves all simulations owned by a user, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*RetirementSimulation, error)

	// Update replaces the simulation's inputs and results
	Update(ctx context.Context, sim *RetirementSimulation) error

	// Delete removes the simulation
	Delete(ctx context.Context, id uuid.UUID) error
}
