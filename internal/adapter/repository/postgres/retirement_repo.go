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

// retirementRepository implements domain.RetirementRepository
type retirementRepository struct {
	db *DB
}

// NewRetirementRepository creates a new retirement simulation repository
func NewRetirementRepository(db *DB) domain.RetirementRepository {
	return &retirementRepository{db: db}
}

const retirementColumns = `id, user_id, name, current_age, initial_wealth, monthly_contribution,
	retirement_age, desired_annual_income, years_in_retirement,
	annual_inflation, real_accumulation_rate, real_retirement_rate,
	required_wealth, projected_wealth, first_withdrawal, surplus, viable, created_at`

// Create stores a new simulation
func (r *retirementRepository) Create(ctx context.Context, sim *domain.RetirementSimulation) error {
	query := `
		INSERT INTO retirement_simulations (` + retirementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.db.ExecContext(ctx, query,
		sim.ID,
		sim.UserID,
		sim.Name,
		sim.CurrentAge,
		sim.InitialWealth.String(),
		sim.MonthlyContribution.String(),
		sim.RetirementAge,
		sim.DesiredAnnualIncome.String(),
		sim.YearsInRetirement,
		sim.AnnualInflation.String(),
		sim.RealAccumulationRate.String(),
		sim.RealRetirementRate.String(),
		sim.RequiredWealth.String(),
		sim.ProjectedWealth.String(),
		sim.FirstWithdrawal.String(),
		sim.Surplus.String(),
		sim.Viable,
		sim.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert retirement simulation: %w", err)
	}
	return nil
}

// GetByID retrieves a simulation
func (r *retirementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RetirementSimulation, error) {
	query := `SELECT ` + retirementColumns + ` FROM retirement_simulations WHERE id = $1`
	sim, err := scanRetirement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get retirement simulation: %w", err)
	}
	return sim, nil
}

// ListByUser retrieves all simulations owned by a user, newest first
func (r *retirementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.RetirementSimulation, error) {
	query := `SELECT ` + retirementColumns + ` FROM retirement_simulations WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query retirement simulations: %w", err)
	}
	defer rows.Close()

	var sims []*domain.RetirementSimulation
	for rows.Next() {
		sim, err := scanRetirement(rows)
		if err != nil {
			return nil, err
		}
		sims = append(sims, sim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate retirement simulations: %w", err)
	}
	return sims, nil
}

// Update replaces the simulation's inputs and results
func (r *retirementRepository) Update(ctx context.Context, sim *domain.RetirementSimulation) error {
	query := `
		UPDATE retirement_simulations
		SET name = $1, current_age = $2, initial_wealth = $3, monthly_contribution = $4,
			retirement_age = $5, desired_annual_income = $6, years_in_retirement = $7,
			annual_inflation = $8, real_accumulation_rate = $9, real_retirement_rate = $10,
			required_wealth = $11, projected_wealth = $12, first_withdrawal = $13,
			surplus = $14, viable = $15
		WHERE id = $16
	`
	result, err := r.db.ExecContext(ctx, query,
		sim.Name,
		sim.CurrentAge,
		sim.InitialWealth.String(),
		sim.MonthlyContribution.String(),
		sim.RetirementAge,
		sim.DesiredAnnualIncome.String(),
		sim.YearsInRetirement,
		sim.AnnualInflation.String(),
		sim.RealAccumulationRate.String(),
		sim.RealRetirementRate.String(),
		sim.RequiredWealth.String(),
		sim.ProjectedWealth.String(),
		sim.FirstWithdrawal.String(),
		sim.Surplus.String(),
		sim.Viable,
		sim.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update retirement simulation: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the simulation
func (r *retirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM retirement_simulations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete retirement simulation: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRetirement(row interface{ Scan(dest ...any) error }) (*domain.RetirementSimulation, error) {
	var sim domain.RetirementSimulation
	dec := make([]string, 10)

	err := row.Scan(
		&sim.ID,
		&sim.UserID,
		&sim.Name,
		&sim.CurrentAge,
		&dec[0],
		&dec[1],
		&sim.RetirementAge,
		&dec[2],
		&sim.YearsInRetirement,
		&dec[3],
		&dec[4],
		&dec[5],
		&dec[6],
		&dec[7],
		&dec[8],
		&dec[9],
		&sim.Viable,
		&sim.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	targets := []*decimal.Decimal{
		&sim.InitialWealth, &sim.MonthlyContribution, &sim.DesiredAnnualIncome,
		&sim.AnnualInflation, &sim.RealAccumulationRate, &sim.RealRetirementRate,
		&sim.RequiredWealth, &sim.ProjectedWealth, &sim.FirstWithdrawal, &sim.Surplus,
	}
	for i, target := range targets {
		if *target, err = decimal.NewFromString(dec[i]); err != nil {
			return nil, fmt.Errorf("failed to parse retirement decimal: %w", err)
		}
	}
	return &sim, nil
}
