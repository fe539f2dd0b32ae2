// Package trading records buy/sell transactions and manages the cash
// balance and externally-held investment funds that feed the valuation
// and rebalancing engines.
package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// TradingService handles trade recording and portfolio cash/fund state
type TradingService struct {
	TransactionRepo domain.TransactionRepository
	InstrumentRepo  domain.InstrumentRepository
	PortfolioRepo   domain.PortfolioRepository
	FundRepo        domain.FundRepository
	Log             zerolog.Logger
}

// NewTradingService creates a new TradingService instance
func NewTradingService(
	txRepo domain.TransactionRepository,
	instrumentRepo domain.InstrumentRepository,
	portfolioRepo domain.PortfolioRepository,
	fundRepo domain.FundRepository,
	log zerolog.Logger,
) *TradingService {
	return &TradingService{
		TransactionRepo: txRepo,
		InstrumentRepo:  instrumentRepo,
		PortfolioRepo:   portfolioRepo,
		FundRepo:        fundRepo,
		Log:             log.With().Str("component", "trading").Logger(),
	}
}

// RecordTrade validates and stores a trade, then adjusts the cash
// balance by its cash impact (negative for buys, positive for sells).
// The referenced instrument must exist.
func (s *TradingService) RecordTrade(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if _, err := s.InstrumentRepo.GetByID(ctx, tx.InstrumentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("instrument %s: %w", tx.InstrumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to load instrument: %w", err)
	}

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}

	if err := s.PortfolioRepo.AdjustCashBalance(ctx, tx.UserID, tx.CashImpact()); err != nil {
		return fmt.Errorf("failed to adjust cash balance: %w", err)
	}

	s.Log.Info().
		Str("transaction_id", tx.ID.String()).
		Str("type", string(tx.Type)).
		Str("shares", tx.Shares.String()).
		Msg("trade recorded")
	return nil
}

// TradePage is one page of a user's trade history
type TradePage struct {
	Trades []domain.Transaction
	Total  int
	Limit  int
	Offset int
}

// ListTrades retrieves a page of the user's trades, newest first,
// optionally filtered to one instrument
func (s *TradingService) ListTrades(ctx context.Context, userID uuid.UUID, limit, offset int, instrumentID *uuid.UUID) (*TradePage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	trades, err := s.TransactionRepo.List(ctx, userID, limit, offset, instrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	total, err := s.TransactionRepo.Count(ctx, userID, instrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count trades: %w", err)
	}

	return &TradePage{Trades: trades, Total: total, Limit: limit, Offset: offset}, nil
}

// UpdateCashBalance replaces the user's cash balance
func (s *TradingService) UpdateCashBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*domain.Portfolio, error) {
	if balance.LessThan(decimal.Zero) {
		return nil, errors.New("cash balance cannot be negative")
	}
	return s.PortfolioRepo.SetCashBalance(ctx, userID, balance)
}

// CreateFund stores an externally-held investment fund
func (s *TradingService) CreateFund(ctx context.Context, fund *domain.InvestmentFund) error {
	if err := fund.Validate(); err != nil {
		return err
	}
	if fund.IndexInstrumentID != nil {
		if _, err := s.InstrumentRepo.GetByID(ctx, *fund.IndexInstrumentID); err != nil {
			return fmt.Errorf("index instrument: %w", err)
		}
	}
	if fund.ID == uuid.Nil {
		fund.ID = uuid.New()
	}
	return s.FundRepo.Create(ctx, fund)
}

// ListFunds retrieves the user's funds
func (s *TradingService) ListFunds(ctx context.Context, userID uuid.UUID) ([]*domain.InvestmentFund, error) {
	return s.FundRepo.ListByUser(ctx, userID)
}

// UpdateFund replaces a fund's mutable fields. Funds owned by other
// users are reported as not found.
func (s *TradingService) UpdateFund(ctx context.Context, userID uuid.UUID, fund *domain.InvestmentFund) error {
	owned, err := s.ownedFund(ctx, userID, fund.ID)
	if err != nil {
		return err
	}
	fund.UserID = owned.UserID

	if err := fund.Validate(); err != nil {
		return err
	}
	return s.FundRepo.Update(ctx, fund)
}

// DeleteFund removes one of the user's funds
func (s *TradingService) DeleteFund(ctx context.Context, userID, fundID uuid.UUID) error {
	if _, err := s.ownedFund(ctx, userID, fundID); err != nil {
		return err
	}
	return s.FundRepo.Delete(ctx, fundID)
}

func (s *TradingService) ownedFund(ctx context.Context, userID, fundID uuid.UUID) (*domain.InvestmentFund, error) {
	funds, err := s.FundRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, f := range funds {
		if f.ID == fundID {
			return f, nil
		}
	}
	return nil, domain.ErrNotFound
}
