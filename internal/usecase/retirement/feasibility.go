package retirement

import "math"

// Feasibility is the closed-form verdict on a retirement plan:
// projected wealth at retirement versus the wealth the withdrawal plan
// requires.
type Feasibility struct {
	RequiredWealth    float64
	ProjectedWealth   float64
	FirstWithdrawal   float64
	Surplus           float64
	Viable            bool
	AccumulationYears int
}

// Feasible compares the future value of the current plan against the
// present value of the retirement withdrawals.
//
// Projected wealth is the FV of the initial balance compounded at the
// real accumulation rate plus the FV of the monthly contributions as
// an annuity at the equivalent monthly rate. Required wealth is the PV
// of an annuity paying the inflation-adjusted income over the
// retirement period at the real retirement rate. Zero rates degrade to
// plain sums.
func Feasible(p ProjectionParams) Feasibility {
	accumulationYears := p.RetirementAge - p.CurrentAge
	accumulationMonths := accumulationYears * 12

	inflation := p.AnnualInflation / 100
	accumulationRate := p.RealAccumulationRate / 100
	retirementRate := p.RealRetirementRate / 100

	monthlyRate := math.Pow(1+accumulationRate, 1.0/12) - 1

	fvInitial := p.InitialWealth * math.Pow(1+accumulationRate, float64(accumulationYears))

	fvContributions := 0.0
	if p.MonthlyContribution > 0 {
		if monthlyRate > 0 {
			fvContributions = p.MonthlyContribution *
				((math.Pow(1+monthlyRate, float64(accumulationMonths)) - 1) / monthlyRate)
		} else {
			fvContributions = p.MonthlyContribution * float64(accumulationMonths)
		}
	}

	projected := fvInitial + fvContributions

	firstWithdrawal := p.DesiredAnnualIncome * math.Pow(1+inflation, float64(accumulationYears))

	required := 0.0
	if retirementRate > 0 {
		required = firstWithdrawal *
			((1 - math.Pow(1+retirementRate, -float64(p.YearsInRetirement))) / retirementRate)
	} else {
		required = firstWithdrawal * float64(p.YearsInRetirement)
	}

	surplus := projected - required

	return Feasibility{
		RequiredWealth:    required,
		ProjectedWealth:   projected,
		FirstWithdrawal:   firstWithdrawal,
		Surplus:           surplus,
		Viable:            surplus >= 0,
		AccumulationYears: accumulationYears,
	}
}
