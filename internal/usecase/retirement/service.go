package retirement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// SimulationService persists named retirement simulations, recomputing
// the feasibility results whenever the inputs change
type SimulationService struct {
	Repo domain.RetirementRepository
	Log  zerolog.Logger
}

// NewSimulationService creates a new SimulationService instance
func NewSimulationService(repo domain.RetirementRepository, log zerolog.Logger) *SimulationService {
	return &SimulationService{
		Repo: repo,
		Log:  log.With().Str("component", "retirement").Logger(),
	}
}

// Simulate computes the feasibility verdict for the simulation's
// inputs without persisting anything
func (s *SimulationService) Simulate(sim *domain.RetirementSimulation) (Feasibility, error) {
	if err := sim.Validate(); err != nil {
		return Feasibility{}, err
	}
	return Feasible(paramsFromSimulation(sim)), nil
}

// Create validates the inputs, computes the results and stores the
// simulation
func (s *SimulationService) Create(ctx context.Context, sim *domain.RetirementSimulation) error {
	if err := sim.Validate(); err != nil {
		return err
	}

	applyResults(sim, Feasible(paramsFromSimulation(sim)))

	if sim.ID == uuid.Nil {
		sim.ID = uuid.New()
	}
	if err := s.Repo.Create(ctx, sim); err != nil {
		return fmt.Errorf("failed to create simulation: %w", err)
	}

	s.Log.Info().
		Str("simulation_id", sim.ID.String()).
		Bool("viable", sim.Viable).
		Msg("retirement simulation created")
	return nil
}

// Get retrieves one of the user's simulations. Simulations owned by
// other users are reported as not found.
func (s *SimulationService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.RetirementSimulation, error) {
	sim, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sim.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return sim, nil
}

// List retrieves all of the user's simulations, newest first
func (s *SimulationService) List(ctx context.Context, userID uuid.UUID) ([]*domain.RetirementSimulation, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Update replaces the simulation's inputs and recomputes its results
func (s *SimulationService) Update(ctx context.Context, userID uuid.UUID, sim *domain.RetirementSimulation) error {
	existing, err := s.Get(ctx, userID, sim.ID)
	if err != nil {
		return err
	}
	sim.UserID = existing.UserID
	sim.CreatedAt = existing.CreatedAt

	if err := sim.Validate(); err != nil {
		return err
	}

	applyResults(sim, Feasible(paramsFromSimulation(sim)))

	if err := s.Repo.Update(ctx, sim); err != nil {
		return fmt.Errorf("failed to update simulation: %w", err)
	}
	return nil
}

// Delete removes one of the user's simulations
func (s *SimulationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

// ProjectionFor builds the wealth and income paths for a stored
// simulation, using the given tax rate for the withdrawal gross-up
func (s *SimulationService) ProjectionFor(sim *domain.RetirementSimulation, taxRate float64) (WealthProjection, IncomeProjection) {
	params := paramsFromSimulation(sim)
	params.TaxRate = taxRate

	wealth := ProjectWealth(params)
	income := ProjectIncome(
		params.DesiredAnnualIncome,
		params.YearsInRetirement,
		params.RetirementAge,
		params.CurrentAge,
		params.AnnualInflation,
	)
	return wealth, income
}

func paramsFromSimulation(sim *domain.RetirementSimulation) ProjectionParams {
	initialWealth, _ := sim.InitialWealth.Float64()
	contribution, _ := sim.MonthlyContribution.Float64()
	income, _ := sim.DesiredAnnualIncome.Float64()
	inflation, _ := sim.AnnualInflation.Float64()
	accumulationRate, _ := sim.RealAccumulationRate.Float64()
	retirementRate, _ := sim.RealRetirementRate.Float64()

	return ProjectionParams{
		CurrentAge:           sim.CurrentAge,
		InitialWealth:        initialWealth,
		MonthlyContribution:  contribution,
		RetirementAge:        sim.RetirementAge,
		YearsInRetirement:    sim.YearsInRetirement,
		AnnualInflation:      inflation,
		RealAccumulationRate: accumulationRate,
		RealRetirementRate:   retirementRate,
		DesiredAnnualIncome:  income,
	}
}

func applyResults(sim *domain.RetirementSimulation, result Feasibility) {
	sim.RequiredWealth = decimal.NewFromFloat(result.RequiredWealth)
	sim.ProjectedWealth = decimal.NewFromFloat(result.ProjectedWealth)
	sim.FirstWithdrawal = decimal.NewFromFloat(result.FirstWithdrawal)
	sim.Surplus = decimal.NewFromFloat(result.Surplus)
	sim.Viable = result.Viable
}
