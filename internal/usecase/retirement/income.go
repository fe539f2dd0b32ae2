package retirement

import "math"

// IncomeYear is one decumulation year's income in nominal and
// today's-money terms
type IncomeYear struct {
	Age         int
	Year        int
	GrossIncome float64
	NetIncome   float64
}

// IncomeProjection is the income-evolution series over the whole
// retirement period
type IncomeProjection struct {
	Years         []IncomeYear
	InitialIncome float64
	FinalIncome   float64
	GrowthPct     float64
}

// ProjectIncome reports, per retirement year, the constant desired
// income in today's money against the inflation-adjusted nominal
// figure actually withdrawn, for a nominal-vs-real comparison.
func ProjectIncome(desiredAnnualIncome float64, yearsInRetirement, retirementAge, currentAge int, annualInflation float64) IncomeProjection {
	accumulationYears := retirementAge - currentAge
	inflation := annualInflation / 100

	projection := IncomeProjection{}
	for year := 1; year <= yearsInRetirement; year++ {
		projection.Years = append(projection.Years, IncomeYear{
			Age:         retirementAge + year,
			Year:        year,
			GrossIncome: desiredAnnualIncome * math.Pow(1+inflation, float64(accumulationYears+year-1)),
			NetIncome:   desiredAnnualIncome,
		})
	}

	if len(projection.Years) > 0 {
		projection.InitialIncome = projection.Years[0].GrossIncome
		projection.FinalIncome = projection.Years[len(projection.Years)-1].GrossIncome
	}
	if projection.InitialIncome > 0 {
		projection.GrowthPct = (projection.FinalIncome - projection.InitialIncome) / projection.InitialIncome * 100
	}

	return projection
}
