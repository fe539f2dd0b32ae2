package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClosestPrice(t *testing.T) {
	d1 := day(2024, time.January, 1)
	d3 := day(2024, time.January, 9)

	series := []Point{
		{Date: d1, Price: fp(100)},
		{Date: d3, Price: fp(110)},
	}

	tests := []struct {
		name   string
		target time.Time
		want   *float64
	}{
		{
			name:   "between points, closer to the later one",
			target: day(2024, time.January, 7),
			want:   fp(110),
		},
		{
			name:   "between points, closer to the earlier one",
			target: day(2024, time.January, 3),
			want:   fp(100),
		},
		{
			name:   "before all data clamps to first",
			target: day(2023, time.December, 1),
			want:   fp(100),
		},
		{
			name:   "after all data clamps to last",
			target: day(2024, time.February, 1),
			want:   fp(110),
		},
		{
			name:   "exact distance tie keeps the earlier point",
			target: day(2024, time.January, 5),
			want:   fp(100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClosestPrice(series, tt.target)
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestClosestPrice_IgnoresNilPrices(t *testing.T) {
	series := []Point{
		{Date: day(2024, time.January, 1), Price: nil},
		{Date: day(2024, time.January, 2), Price: fp(50)},
	}

	got := ClosestPrice(series, day(2024, time.January, 1))
	require.NotNil(t, got)
	assert.Equal(t, 50.0, *got)
}

func TestClosestPrice_EmptySeries(t *testing.T) {
	assert.Nil(t, ClosestPrice(nil, day(2024, time.January, 1)))
	assert.Nil(t, ClosestPrice([]Point{{Date: day(2024, time.January, 1), Price: nil}}, day(2024, time.January, 1)))
}

func TestClosestPrice_UnsortedInput(t *testing.T) {
	series := []Point{
		{Date: day(2024, time.March, 1), Price: fp(130)},
		{Date: day(2024, time.January, 1), Price: fp(100)},
		{Date: day(2024, time.February, 1), Price: fp(120)},
	}

	got := ClosestPrice(series, day(2024, time.February, 3))
	require.NotNil(t, got)
	assert.Equal(t, 120.0, *got)
}

func TestGroupByMonth(t *testing.T) {
	series := []Point{
		{Date: day(2024, time.January, 5), Price: fp(101)},
		{Date: day(2024, time.January, 31), Price: fp(105)},
		{Date: day(2024, time.January, 12), Price: fp(99)},
		{Date: day(2024, time.February, 10), Price: fp(110)},
		{Date: day(2023, time.December, 29), Price: fp(95)},
	}

	got := GroupByMonth(series)

	require.Len(t, got, 3)
	assert.Equal(t, day(2023, time.December, 29), got[0].Date)
	assert.Equal(t, day(2024, time.January, 31), got[1].Date)
	assert.Equal(t, 105.0, *got[1].Price)
	assert.Equal(t, day(2024, time.February, 10), got[2].Date)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 31, DaysBetween(day(2024, time.January, 1), day(2024, time.February, 1)))
	assert.Equal(t, 0, DaysBetween(day(2024, time.January, 1), day(2024, time.January, 1)))
	// Partial days round up
	assert.Equal(t, 1, DaysBetween(day(2024, time.January, 1), day(2024, time.January, 1).Add(6*time.Hour)))
}

func TestSortAscending_DoesNotMutateInput(t *testing.T) {
	series := []Point{
		{Date: day(2024, time.February, 1), Price: fp(2)},
		{Date: day(2024, time.January, 1), Price: fp(1)},
	}

	_ = SortAscending(series)

	assert.Equal(t, day(2024, time.February, 1), series[0].Date)
}
