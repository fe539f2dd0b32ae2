package valuation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// PortfolioView is the aggregate valuation of a user's holdings:
// cash, derived positions and externally managed funds.
type PortfolioView struct {
	PortfolioID uuid.UUID
	CashBalance float64
	Positions   []Position
	FundsValue  float64
	TotalValue  float64
	// MissingPrices lists instruments referenced by transactions that
	// have no stored price; their value contribution is zero and the
	// result should be treated as partial
	MissingPrices []uuid.UUID
}

// ValuationService computes portfolio valuations from transaction
// history and latest stored prices
type ValuationService struct {
	TransactionRepo domain.TransactionRepository
	PriceRepo       domain.PriceHistoryRepository
	PortfolioRepo   domain.PortfolioRepository
	FundRepo        domain.FundRepository
	Log             zerolog.Logger
}

// NewValuationService creates a new ValuationService instance
func NewValuationService(
	transactionRepo domain.TransactionRepository,
	priceRepo domain.PriceHistoryRepository,
	portfolioRepo domain.PortfolioRepository,
	fundRepo domain.FundRepository,
	log zerolog.Logger,
) *ValuationService {
	return &ValuationService{
		TransactionRepo: transactionRepo,
		PriceRepo:       priceRepo,
		PortfolioRepo:   portfolioRepo,
		FundRepo:        fundRepo,
		Log:             log.With().Str("component", "valuation").Logger(),
	}
}

// GetPortfolio computes the user's current portfolio valuation.
// Total value = cash balance + position values + fund values.
// An instrument without any stored price yields a position with a nil
// current price and a zero contribution; this is logged as a warning
// and reported via MissingPrices rather than failing the request.
func (s *ValuationService) GetPortfolio(ctx context.Context, userID uuid.UUID) (*PortfolioView, error) {
	portfolio, err := s.PortfolioRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	transactions, err := s.TransactionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	prices, missing, err := s.latestPrices(ctx, transactions)
	if err != nil {
		return nil, err
	}

	positions := BuildPositions(transactions, prices)

	funds, err := s.FundRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	fundsValue := 0.0
	for _, fund := range funds {
		v, _ := fund.CurrentValue.Float64()
		fundsValue += v
	}

	cash, _ := portfolio.CashBalance.Float64()

	total := cash + fundsValue
	for _, pos := range positions {
		total += pos.CurrentValue
	}

	return &PortfolioView{
		PortfolioID:   portfolio.ID,
		CashBalance:   cash,
		Positions:     positions,
		FundsValue:    fundsValue,
		TotalValue:    total,
		MissingPrices: missing,
	}, nil
}

// latestPrices resolves the most recent stored price for every
// instrument referenced by the transactions. Instruments with no price
// row at all are reported in the second return value and logged.
func (s *ValuationService) latestPrices(ctx context.Context, transactions []domain.Transaction) (map[uuid.UUID]*float64, []uuid.UUID, error) {
	prices := make(map[uuid.UUID]*float64)
	missing := make([]uuid.UUID, 0)

	for _, tx := range transactions {
		if _, seen := prices[tx.InstrumentID]; seen {
			continue
		}

		point, err := s.PriceRepo.GetLatest(ctx, tx.InstrumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.Log.Warn().
					Str("instrument_id", tx.InstrumentID.String()).
					Msg("instrument referenced by transactions has no stored price; valuing position at zero")
				prices[tx.InstrumentID] = nil
				missing = append(missing, tx.InstrumentID)
				continue
			}
			return nil, nil, fmt.Errorf("failed to load latest price: %w", err)
		}

		prices[tx.InstrumentID] = point.PriceFloat()
	}

	return prices, missing, nil
}
