// Package retirement simulates multi-decade wealth accumulation and
// decumulation: year-by-year projections, income evolution and a
// closed-form feasibility verdict, plus persistence of named
// simulations.
package retirement

import "math"

// Phase tags a projection year as accumulation or decumulation
type Phase string

const (
	PhaseAccumulation Phase = "ACCUMULATION"
	PhaseDecumulation Phase = "DECUMULATION"
)

// ProjectionParams are the scalar inputs of the year-by-year wealth
// simulation. Rates and the tax rate are percentages (12.5 means
// 12.5%).
type ProjectionParams struct {
	CurrentAge           int
	InitialWealth        float64
	MonthlyContribution  float64
	RetirementAge        int
	YearsInRetirement    int
	AnnualInflation      float64
	RealAccumulationRate float64
	RealRetirementRate   float64
	DesiredAnnualIncome  float64
	TaxRate              float64
}

// YearSnapshot is one year of the projected wealth path
type YearSnapshot struct {
	Age                int
	Year               int
	Wealth             float64
	Phase              Phase
	ContributedCapital float64
	Earnings           float64
}

// WealthProjection is the full simulated path plus summary figures
type WealthProjection struct {
	Years         []YearSnapshot
	InitialWealth float64
	PeakWealth    float64
	FinalWealth   float64
	RetirementAge int
}

// ProjectWealth simulates the wealth path year by year.
//
// Accumulation (years 0..N, N = retirementAge-currentAge): each year's
// snapshot is taken first, then growth is applied, then the yearly
// contribution is added, except in the final accumulation year which
// receives no contribution. Decumulation (years 1..M): growth is
// applied first, then the inflation-adjusted withdrawal target is
// grossed up for tax on the earnings proportion of the balance and
// subtracted. The path truncates once wealth is depleted; reported
// wealth and earnings are floored at zero.
func ProjectWealth(p ProjectionParams) WealthProjection {
	accumulationYears := p.RetirementAge - p.CurrentAge
	inflation := p.AnnualInflation / 100
	accumulationRate := p.RealAccumulationRate / 100
	retirementRate := p.RealRetirementRate / 100
	taxRate := p.TaxRate / 100
	yearlyContribution := p.MonthlyContribution * 12

	projection := WealthProjection{
		InitialWealth: p.InitialWealth,
		RetirementAge: p.RetirementAge,
	}

	wealth := p.InitialWealth
	contributed := p.InitialWealth

	for year := 0; year <= accumulationYears; year++ {
		projection.Years = append(projection.Years, YearSnapshot{
			Age:                p.CurrentAge + year,
			Year:               year,
			Wealth:             wealth,
			Phase:              PhaseAccumulation,
			ContributedCapital: contributed,
			Earnings:           wealth - contributed,
		})

		wealth = wealth * (1 + accumulationRate)

		if year < accumulationYears {
			wealth += yearlyContribution
			contributed += yearlyContribution
		}
	}

	for year := 1; year <= p.YearsInRetirement; year++ {
		wealth = wealth * (1 + retirementRate)

		// Withdrawal target in nominal terms, inflated from today
		target := p.DesiredAnnualIncome * math.Pow(1+inflation, float64(accumulationYears+year-1))

		earningsProportion := 0.0
		if wealth != 0 {
			earningsProportion = clamp((wealth-contributed)/wealth, 0, 1)
		}
		grossWithdrawal := target / (1 - earningsProportion*taxRate)

		wealth -= grossWithdrawal

		projection.Years = append(projection.Years, YearSnapshot{
			Age:                p.RetirementAge + year,
			Year:               accumulationYears + year,
			Wealth:             math.Max(0, wealth),
			Phase:              PhaseDecumulation,
			ContributedCapital: contributed,
			Earnings:           math.Max(0, wealth-contributed),
		})

		if wealth <= 0 {
			break
		}
	}

	for _, snapshot := range projection.Years {
		if snapshot.Wealth > projection.PeakWealth {
			projection.PeakWealth = snapshot.Wealth
		}
	}
	if len(projection.Years) > 0 {
		projection.FinalWealth = projection.Years[len(projection.Years)-1].Wealth
	}

	return projection
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
