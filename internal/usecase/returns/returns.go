// Package returns holds the pure price/return arithmetic: percentage
// changes, annualization, rate compounding and the volatility/Sharpe
// statistics. Functions return nil (or a zero sentinel) on degenerate
// input instead of panicking, so callers can surface partial results.
package returns

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/simaogato/riskparity-backend/internal/usecase/timeseries"
)

// BaseIndex is the starting level for accumulated indices derived from
// rate series.
const BaseIndex = 100.0

// daysPerYear is the annualization convention. Exactly 365 is used
// uniformly throughout the engine.
const daysPerYear = 365.0

// PercentageChange returns the percentage change from previous to
// current: (current-previous)/previous*100. It returns nil when either
// input is nil or previous is zero.
func PercentageChange(previous, current *float64) *float64 {
	if previous == nil || current == nil || *previous == 0 {
		return nil
	}
	change := (*current - *previous) / *previous * 100
	return &change
}

// CumulativeReturn returns the total percentage return between a start
// and end price. It is the same computation as PercentageChange and
// exists for readability at call sites dealing with period ends.
func CumulativeReturn(startPrice, endPrice *float64) *float64 {
	return PercentageChange(startPrice, endPrice)
}

// AnnotatedPoint pairs an observation with its percentage change versus
// the immediately preceding observation.
type AnnotatedPoint struct {
	timeseries.Point
	Change *float64
}

// AnnotateSeries computes each element's percentage change versus the
// previous element of a date-ascending series. The first element's
// change is always nil.
func AnnotateSeries(series []timeseries.Point) []AnnotatedPoint {
	if len(series) == 0 {
		return []AnnotatedPoint{}
	}

	out := make([]AnnotatedPoint, len(series))
	for i, p := range series {
		out[i] = AnnotatedPoint{Point: p}
		if i == 0 {
			continue
		}
		out[i].Change = PercentageChange(series[i-1].Price, p.Price)
	}
	return out
}

// InstrumentPoint is an observation tagged with the instrument it
// belongs to, for multi-instrument series.
type InstrumentPoint struct {
	InstrumentID string
	timeseries.Point
}

// AnnotatedInstrumentPoint pairs an instrument observation with its
// within-instrument percentage change.
type AnnotatedInstrumentPoint struct {
	InstrumentPoint
	Change *float64
}

// AnnotateByInstrument partitions the input by instrument identifier
// and computes percentage changes within each instrument's own
// chronological order, never across instruments.
func AnnotateByInstrument(series []InstrumentPoint) []AnnotatedInstrumentPoint {
	if len(series) == 0 {
		return []AnnotatedInstrumentPoint{}
	}

	byInstrument := make(map[string][]InstrumentPoint)
	order := make([]string, 0)
	for _, p := range series {
		if _, ok := byInstrument[p.InstrumentID]; !ok {
			order = append(order, p.InstrumentID)
		}
		byInstrument[p.InstrumentID] = append(byInstrument[p.InstrumentID], p)
	}

	out := make([]AnnotatedInstrumentPoint, 0, len(series))
	for _, id := range order {
		group := byInstrument[id]
		for i, p := range group {
			annotated := AnnotatedInstrumentPoint{InstrumentPoint: p}
			if i > 0 {
				annotated.Change = PercentageChange(group[i-1].Price, p.Price)
			}
			out = append(out, annotated)
		}
	}
	return out
}

// AnnualizedReturn converts a total percentage return over a number of
// days into an annualized percentage using a 365-day year:
// ((1+total/100)^(365/days) - 1) * 100. Returns 0 when days <= 0.
func AnnualizedReturn(totalReturnPct float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return (math.Pow(1+totalReturnPct/100, daysPerYear/float64(days)) - 1) * 100
}

// IndexPoint is one element of an accumulated index series derived by
// compounding a periodic rate series from a fixed base.
type IndexPoint struct {
	timeseries.Point
	Index float64
}

// AccumulatedIndex treats each observation's price as a periodic
// percentage rate and compounds from base: index[i] =
// index[i-1]*(1+rate[i]/100), starting at base. A missing rate carries
// the previous index forward unchanged.
func AccumulatedIndex(series []timeseries.Point, base float64) []IndexPoint {
	if len(series) == 0 {
		return []IndexPoint{}
	}

	out := make([]IndexPoint, len(series))
	current := base
	for i, p := range series {
		if p.Price != nil {
			current = current * (1 + *p.Price/100)
		}
		out[i] = IndexPoint{Point: p, Index: current}
	}
	return out
}

// NormalizedReturn converts an accumulated index level into a
// percentage return relative to the base: (index-base)/base*100.
func NormalizedReturn(index, base float64) float64 {
	return (index - base) / base * 100
}

// NormalizedReturns applies NormalizedReturn to each element of an
// accumulated index series.
func NormalizedReturns(series []IndexPoint, base float64) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = NormalizedReturn(p.Index, base)
	}
	return out
}

// PeriodicReturns derives the period-over-period percentage returns of
// a price level series. Elements with a zero predecessor are skipped.
func PeriodicReturns(prices []float64) []float64 {
	out := make([]float64, 0, len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1]*100)
	}
	return out
}

// Volatility returns the sample standard deviation (Bessel-corrected)
// of a returns series, or 0 with fewer than 2 observations.
func Volatility(rets []float64) float64 {
	if len(rets) < 2 {
		return 0
	}
	return stat.StdDev(rets, nil)
}

// SharpeRatio returns (portfolioReturn - riskFreeRate) / volatility,
// or 0 when volatility is 0.
func SharpeRatio(portfolioReturn, riskFreeRate, volatility float64) float64 {
	if volatility == 0 {
		return 0
	}
	return (portfolioReturn - riskFreeRate) / volatility
}
