package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// fundRepository implements domain.FundRepository
type fundRepository struct {
	db *DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *DB) domain.FundRepository {
	return &fundRepository{db: db}
}

// Create creates a new fund
func (r *fundRepository) Create(ctx context.Context, fund *domain.InvestmentFund) error {
	query := `
		INSERT INTO investment_funds (id, user_id, name, initial_investment, current_value, investment_date, index_instrument_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		fund.ID,
		fund.UserID,
		fund.Name,
		fund.InitialInvestment.String(),
		fund.CurrentValue.String(),
		fund.InvestmentDate,
		fund.IndexInstrumentID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund: %w", err)
	}
	return nil
}

// ListByUser retrieves all funds owned by a user
func (r *fundRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.InvestmentFund, error) {
	query := `
		SELECT id, user_id, name, initial_investment, current_value, investment_date, index_instrument_id
		FROM investment_funds
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	var funds []*domain.InvestmentFund
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, err
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}
	return funds, nil
}

// Update replaces the fund's mutable fields
func (r *fundRepository) Update(ctx context.Context, fund *domain.InvestmentFund) error {
	query := `
		UPDATE investment_funds
		SET name = $1, initial_investment = $2, current_value = $3, investment_date = $4, index_instrument_id = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		fund.Name,
		fund.InitialInvestment.String(),
		fund.CurrentValue.String(),
		fund.InvestmentDate,
		fund.IndexInstrumentID,
		fund.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fund: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the fund
func (r *fundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM investment_funds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fund: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanFund(rows *sql.Rows) (*domain.InvestmentFund, error) {
	var fund domain.InvestmentFund
	var initial, current string

	err := rows.Scan(
		&fund.ID,
		&fund.UserID,
		&fund.Name,
		&initial,
		&current,
		&fund.InvestmentDate,
		&fund.IndexInstrumentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan fund: %w", err)
	}

	if fund.InitialInvestment, err = decimal.NewFromString(initial); err != nil {
		return nil, fmt.Errorf("failed to parse initial investment: %w", err)
	}
	if fund.CurrentValue, err = decimal.NewFromString(current); err != nil {
		return nil, fmt.Errorf("failed to parse current value: %w", err)
	}
	return &fund, nil
}
