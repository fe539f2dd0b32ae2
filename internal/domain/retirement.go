package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RetirementSimulation represents a saved retirement plan: the user's
// input parameters plus the feasibility results computed from them.
// Results are recomputed on every update so stored rows never drift
// from their inputs.
type RetirementSimulation struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string

	// Current situation
	CurrentAge          int
	InitialWealth       decimal.Decimal
	MonthlyContribution decimal.Decimal

	// Goals
	RetirementAge       int
	DesiredAnnualIncome decimal.Decimal
	YearsInRetirement   int

	// Assumptions, expressed as percentages (12.5 means 12.5%)
	AnnualInflation      decimal.Decimal
	RealAccumulationRate decimal.Decimal
	RealRetirementRate   decimal.Decimal

	// Computed results
	RequiredWealth  decimal.Decimal
	ProjectedWealth decimal.Decimal
	FirstWithdrawal decimal.Decimal
	Surplus         decimal.Decimal
	Viable          bool

	CreatedAt time.Time
}

// Validate ensures the simulation parameters adhere to domain rules
// Returns an error if validation fails
func (s *RetirementSimulation) Validate() error {
	if s.Name == "" {
		return errors.New("simulation name cannot be empty")
	}

	if s.CurrentAge < 18 || s.CurrentAge > 100 {
		return errors.New("current age must be between 18 and 100")
	}

	if s.RetirementAge < 18 || s.RetirementAge > 120 {
		return errors.New("retirement age must be between 18 and 120")
	}

	if s.RetirementAge <= s.CurrentAge {
		return errors.New("retirement age must be greater than current age")
	}

	if s.YearsInRetirement < 1 || s.YearsInRetirement > 100 {
		return errors.New("years in retirement must be between 1 and 100")
	}

	if s.InitialWealth.LessThan(decimal.Zero) {
		return errors.New("initial wealth cannot be negative")
	}

	if s.MonthlyContribution.LessThan(decimal.Zero) {
		return errors.New("monthly contribution cannot be negative")
	}

	if s.DesiredAnnualIncome.LessThanOrEqual(decimal.Zero) {
		return errors.New("desired annual income must be positive")
	}

	return nil
}
