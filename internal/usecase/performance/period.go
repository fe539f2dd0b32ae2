package performance

import (
	"fmt"
	"time"
)

// Period selects the date range a basket performance query covers
type Period string

const (
	Period1M  Period = "1M"
	Period3M  Period = "3M"
	Period6M  Period = "6M"
	Period1Y  Period = "1Y"
	PeriodYTD Period = "YTD"
	PeriodAll Period = "ALL"
)

// allPeriodsStart is the floor used for the ALL period; the closest
// price lookups clamp it to the earliest available data.
var allPeriodsStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParsePeriod validates a period selector coming from the API
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Period1M, Period3M, Period6M, Period1Y, PeriodYTD, PeriodAll:
		return Period(s), nil
	}
	return "", fmt.Errorf("invalid period: %q", s)
}

// Range resolves the period into a concrete [start, end] date range
// relative to reference. The end is clamped to end-of-day and the
// start to start-of-day.
func (p Period) Range(reference time.Time) (start, end time.Time) {
	end = endOfDay(reference)

	switch p {
	case Period1M:
		start = end.AddDate(0, -1, 0)
	case Period3M:
		start = end.AddDate(0, -3, 0)
	case Period6M:
		start = end.AddDate(0, -6, 0)
	case Period1Y:
		start = end.AddDate(-1, 0, 0)
	case PeriodYTD:
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
	case PeriodAll:
		start = allPeriodsStart
	}

	return startOfDay(start), end
}

// Label returns a human-readable description of the period
func (p Period) Label() string {
	switch p {
	case Period1M:
		return "Last month"
	case Period3M:
		return "Last 3 months"
	case Period6M:
		return "Last 6 months"
	case Period1Y:
		return "Last year"
	case PeriodYTD:
		return "Year to date"
	case PeriodAll:
		return "Since inception"
	}
	return string(p)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
