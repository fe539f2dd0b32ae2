package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// portfolioRepository implements domain.PortfolioRepository
type portfolioRepository struct {
	db *DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *DB) domain.PortfolioRepository {
	return &portfolioRepository{db: db}
}

// GetOrCreate retrieves the user's portfolio, creating an empty one if
// none exists yet
func (r *portfolioRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	portfolio, err := r.get(ctx, userID)
	if err == nil {
		return portfolio, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	created := &domain.Portfolio{
		ID:          uuid.New(),
		UserID:      userID,
		CashBalance: decimal.Zero,
	}
	query := `
		INSERT INTO portfolios (id, user_id, cash_balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, created.ID, created.UserID, created.CashBalance.String()); err != nil {
		return nil, fmt.Errorf("failed to insert portfolio: %w", err)
	}

	// re-read in case a concurrent request won the insert
	return r.get(ctx, userID)
}

// SetCashBalance replaces the portfolio's cash balance
func (r *portfolioRepository) SetCashBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*domain.Portfolio, error) {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	query := `UPDATE portfolios SET cash_balance = $1 WHERE user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, balance.String(), userID); err != nil {
		return nil, fmt.Errorf("failed to update cash balance: %w", err)
	}
	return r.get(ctx, userID)
}

// AdjustCashBalance applies a signed delta to the cash balance
func (r *portfolioRepository) AdjustCashBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	query := `UPDATE portfolios SET cash_balance = cash_balance + $1 WHERE user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, delta.String(), userID); err != nil {
		return fmt.Errorf("failed to adjust cash balance: %w", err)
	}
	return nil
}

func (r *portfolioRepository) get(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	query := `SELECT id, user_id, cash_balance FROM portfolios WHERE user_id = $1`

	var portfolio domain.Portfolio
	var balance string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&portfolio.ID, &portfolio.UserID, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan portfolio: %w", err)
	}

	if portfolio.CashBalance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("failed to parse cash balance: %w", err)
	}
	return &portfolio, nil
}
