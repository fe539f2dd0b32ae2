// Package timeseries locates values inside sparse historical series:
// closest-price lookup with boundary clamping and calendar-month
// bucketing. All functions are pure; input order does not matter, the
// package sorts internally.
package timeseries

import (
	"sort"
	"time"
)

// Point is one observation of a series. Price is nil for missing
// observations; nil points are ignored by lookups.
type Point struct {
	Date  time.Time
	Price *float64
}

// SortAscending returns a copy of the series ordered ascending by date.
// The input slice is never mutated.
func SortAscending(series []Point) []Point {
	sorted := make([]Point, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// ClosestPrice returns the price of the observation closest to
// targetDate. Dates before all data clamp to the first observation and
// dates after all data clamp to the last one. On an exact distance tie
// the earlier observation wins. Nil-price points are filtered out
// first; an effectively empty series yields nil.
func ClosestPrice(series []Point, targetDate time.Time) *float64 {
	valid := make([]Point, 0, len(series))
	for _, p := range series {
		if p.Price != nil {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sorted := SortAscending(valid)

	first := sorted[0]
	last := sorted[len(sorted)-1]

	if !targetDate.After(first.Date) {
		return first.Price
	}
	if !targetDate.Before(last.Date) {
		return last.Price
	}

	closest := 0
	closestDiff := absDuration(targetDate.Sub(sorted[0].Date))

	for i := 1; i < len(sorted); i++ {
		diff := absDuration(targetDate.Sub(sorted[i].Date))
		if diff < closestDiff {
			closestDiff = diff
			closest = i
		}
	}

	return sorted[closest].Price
}

// GroupByMonth buckets the series by calendar month, keeping the point
// with the latest date within each bucket (last observation of the
// month). The result is ordered ascending by date.
func GroupByMonth(series []Point) []Point {
	type monthKey struct {
		year  int
		month time.Month
	}

	grouped := make(map[monthKey]Point)
	for _, p := range series {
		key := monthKey{year: p.Date.Year(), month: p.Date.Month()}
		existing, ok := grouped[key]
		if !ok || p.Date.After(existing.Date) {
			grouped[key] = p
		}
	}

	out := make([]Point, 0, len(grouped))
	for _, p := range grouped {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out
}

// DaysBetween returns the number of days from start to end, rounding
// any partial day up.
func DaysBetween(start, end time.Time) int {
	diff := end.Sub(start)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
