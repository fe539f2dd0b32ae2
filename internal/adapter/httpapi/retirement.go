package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

type simulationRequest struct {
	Name                 string `json:"name"`
	CurrentAge           int    `json:"current_age"`
	InitialWealth        string `json:"initial_wealth"`
	MonthlyContribution  string `json:"monthly_contribution"`
	RetirementAge        int    `json:"retirement_age"`
	DesiredAnnualIncome  string `json:"desired_annual_income"`
	YearsInRetirement    int    `json:"years_in_retirement"`
	AnnualInflation      string `json:"annual_inflation"`
	RealAccumulationRate string `json:"real_accumulation_rate"`
	RealRetirementRate   string `json:"real_retirement_rate"`
}

type simulationResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	CurrentAge           int    `json:"current_age"`
	InitialWealth        string `json:"initial_wealth"`
	MonthlyContribution  string `json:"monthly_contribution"`
	RetirementAge        int    `json:"retirement_age"`
	DesiredAnnualIncome  string `json:"desired_annual_income"`
	YearsInRetirement    int    `json:"years_in_retirement"`
	AnnualInflation      string `json:"annual_inflation"`
	RealAccumulationRate string `json:"real_accumulation_rate"`
	RealRetirementRate   string `json:"real_retirement_rate"`
	RequiredWealth       string `json:"required_wealth"`
	ProjectedWealth      string `json:"projected_wealth"`
	FirstWithdrawal      string `json:"first_withdrawal"`
	Surplus              string `json:"surplus"`
	Viable               bool   `json:"viable"`
	CreatedAt            string `json:"created_at"`
}

func toSimulationResponse(sim *domain.RetirementSimulation) simulationResponse {
	return simulationResponse{
		ID:                   sim.ID.String(),
		Name:                 sim.Name,
		CurrentAge:           sim.CurrentAge,
		InitialWealth:        sim.InitialWealth.String(),
		MonthlyContribution:  sim.MonthlyContribution.String(),
		RetirementAge:        sim.RetirementAge,
		DesiredAnnualIncome:  sim.DesiredAnnualIncome.String(),
		YearsInRetirement:    sim.YearsInRetirement,
		AnnualInflation:      sim.AnnualInflation.String(),
		RealAccumulationRate: sim.RealAccumulationRate.String(),
		RealRetirementRate:   sim.RealRetirementRate.String(),
		RequiredWealth:       sim.RequiredWealth.String(),
		ProjectedWealth:      sim.ProjectedWealth.String(),
		FirstWithdrawal:      sim.FirstWithdrawal.String(),
		Surplus:              sim.Surplus.String(),
		Viable:               sim.Viable,
		CreatedAt:            sim.CreatedAt.Format(time.RFC3339),
	}
}

func simulationFromRequest(req simulationRequest, userID uuid.UUID) (*domain.RetirementSimulation, error) {
	sim := &domain.RetirementSimulation{
		UserID:            userID,
		Name:              req.Name,
		CurrentAge:        req.CurrentAge,
		RetirementAge:     req.RetirementAge,
		YearsInRetirement: req.YearsInRetirement,
	}

	fields := []struct {
		name   string
		raw    string
		target *decimal.Decimal
	}{
		{"initial_wealth", req.InitialWealth, &sim.InitialWealth},
		{"monthly_contribution", req.MonthlyContribution, &sim.MonthlyContribution},
		{"desired_annual_income", req.DesiredAnnualIncome, &sim.DesiredAnnualIncome},
		{"annual_inflation", req.AnnualInflation, &sim.AnnualInflation},
		{"real_accumulation_rate", req.RealAccumulationRate, &sim.RealAccumulationRate},
		{"real_retirement_rate", req.RealRetirementRate, &sim.RealRetirementRate},
	}
	for _, field := range fields {
		value, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s format", field.name)
		}
		*field.target = value
	}
	return sim, nil
}

type feasibilityResponse struct {
	RequiredWealth    float64 `json:"required_wealth"`
	ProjectedWealth   float64 `json:"projected_wealth"`
	FirstWithdrawal   float64 `json:"first_withdrawal"`
	Surplus           float64 `json:"surplus"`
	Viable            bool    `json:"viable"`
	AccumulationYears int     `json:"accumulation_years"`
}

// simulateRetirement computes feasibility without persisting anything
func (s *Server) simulateRetirement(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req simulationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sim, err := simulationFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.Retirement.Simulate(sim)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, feasibilityResponse{
		RequiredWealth:    result.RequiredWealth,
		ProjectedWealth:   result.ProjectedWealth,
		FirstWithdrawal:   result.FirstWithdrawal,
		Surplus:           result.Surplus,
		Viable:            result.Viable,
		AccumulationYears: result.AccumulationYears,
	})
}

func (s *Server) createSimulation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req simulationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sim, err := simulationFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sim.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Retirement.Create(r.Context(), sim); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSimulationResponse(sim))
}

func (s *Server) listSimulations(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	sims, err := s.Retirement.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]simulationResponse, 0, len(sims))
	for _, sim := range sims {
		resp = append(resp, toSimulationResponse(sim))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getSimulation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	simID, err := uuid.Parse(chi.URLParam(r, "simulationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	sim, err := s.Retirement.Get(r.Context(), userID, simID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSimulationResponse(sim))
}

func (s *Server) updateSimulation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	simID, err := uuid.Parse(chi.URLParam(r, "simulationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	var req simulationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sim, err := simulationFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sim.ID = simID
	if err := sim.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Retirement.Update(r.Context(), userID, sim); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSimulationResponse(sim))
}

func (s *Server) deleteSimulation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	simID, err := uuid.Parse(chi.URLParam(r, "simulationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	if err := s.Retirement.Delete(r.Context(), userID, simID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// defaultTaxRate is the flat percentage applied to the earnings share
// of gross withdrawals when the caller does not override it
const defaultTaxRate = 15.0

type yearSnapshotResponse struct {
	Age                int     `json:"age"`
	Year               int     `json:"year"`
	Wealth             float64 `json:"wealth"`
	Phase              string  `json:"phase"`
	ContributedCapital float64 `json:"contributed_capital"`
	Earnings           float64 `json:"earnings"`
}

type incomeYearResponse struct {
	Age         int     `json:"age"`
	Year        int     `json:"year"`
	GrossIncome float64 `json:"gross_income"`
	NetIncome   float64 `json:"net_income"`
}

type projectionResponse struct {
	Wealth struct {
		Years         []yearSnapshotResponse `json:"years"`
		InitialWealth float64                `json:"initial_wealth"`
		PeakWealth    float64                `json:"peak_wealth"`
		FinalWealth   float64                `json:"final_wealth"`
		RetirementAge int                    `json:"retirement_age"`
	} `json:"wealth"`
	Income struct {
		Years         []incomeYearResponse `json:"years"`
		InitialIncome float64              `json:"initial_income"`
		FinalIncome   float64              `json:"final_income"`
		GrowthPct     float64              `json:"growth_pct"`
	} `json:"income"`
}

func (s *Server) getProjection(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	simID, err := uuid.Parse(chi.URLParam(r, "simulationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	// tax_rate is a percentage, matching the projection parameters
	// (15 means 15%)
	taxRate := defaultTaxRate
	if raw := r.URL.Query().Get("tax_rate"); raw != "" {
		taxRate, err = strconv.ParseFloat(raw, 64)
		if err != nil || taxRate < 0 || taxRate >= 100 {
			writeError(w, http.StatusBadRequest, "tax_rate must be a percentage in [0, 100)")
			return
		}
	}

	sim, err := s.Retirement.Get(r.Context(), userID, simID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	wealth, income := s.Retirement.ProjectionFor(sim, taxRate)

	var resp projectionResponse
	resp.Wealth.Years = make([]yearSnapshotResponse, 0, len(wealth.Years))
	for _, snap := range wealth.Years {
		resp.Wealth.Years = append(resp.Wealth.Years, yearSnapshotResponse{
			Age:                snap.Age,
			Year:               snap.Year,
			Wealth:             snap.Wealth,
			Phase:              string(snap.Phase),
			ContributedCapital: snap.ContributedCapital,
			Earnings:           snap.Earnings,
		})
	}
	resp.Wealth.InitialWealth = wealth.InitialWealth
	resp.Wealth.PeakWealth = wealth.PeakWealth
	resp.Wealth.FinalWealth = wealth.FinalWealth
	resp.Wealth.RetirementAge = wealth.RetirementAge

	resp.Income.Years = make([]incomeYearResponse, 0, len(income.Years))
	for _, year := range income.Years {
		resp.Income.Years = append(resp.Income.Years, incomeYearResponse{
			Age:         year.Age,
			Year:        year.Year,
			GrossIncome: year.GrossIncome,
			NetIncome:   year.NetIncome,
		})
	}
	resp.Income.InitialIncome = income.InitialIncome
	resp.Income.FinalIncome = income.FinalIncome
	resp.Income.GrowthPct = income.GrowthPct

	writeJSON(w, http.StatusOK, resp)
}
