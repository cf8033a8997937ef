package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func year2025() Bound {
	return Bound{Start: Date(2025, time.January, 1), End: Date(2025, time.December, 31)}
}

func TestPositionOf_Endpoints(t *testing.T) {
	b, err := NewBound(Date(2025, time.January, 1), Date(2025, time.January, 31))
	require.NoError(t, err)

	assert.Equal(t, 31, b.TotalDays())
	assert.InDelta(t, 0, b.PositionOf(Date(2025, time.January, 1)), 1e-9)
	assert.InDelta(t, 100, b.PositionOf(Date(2025, time.January, 31)), 1e-9)
	assert.InDelta(t, 50, b.PositionOf(Date(2025, time.January, 16)), 1e-9)
}

func TestNewBound_RejectsInverted(t *testing.T) {
	_, err := NewBound(Date(2025, time.March, 2), Date(2025, time.March, 1))
	assert.ErrorIs(t, err, ErrInvertedBound)
}

func TestNewBound_TruncatesTimeOfDay(t *testing.T) {
	b, err := NewBound(
		time.Date(2025, time.May, 1, 17, 30, 0, 0, time.UTC),
		time.Date(2025, time.May, 3, 23, 59, 59, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, Date(2025, time.May, 1), b.Start)
	assert.Equal(t, Date(2025, time.May, 3), b.End)
	assert.Equal(t, 3, b.TotalDays())
}

func TestRoundTrip_DayGranularity(t *testing.T) {
	bounds := []Bound{
		year2025(),
		{Start: Date(2025, time.January, 1), End: Date(2025, time.January, 31)},
		{Start: Date(2024, time.February, 20), End: Date(2024, time.March, 5)},
		{Start: Date(2023, time.June, 1), End: Date(2026, time.June, 1)},
	}
	for _, b := range bounds {
		for d := b.Start; !d.After(b.End); d = d.AddDate(0, 0, 1) {
			got := b.DateAtPosition(b.PositionOf(d))
			assert.WithinDuration(t, d, got, Day, "bound %v date %v", b.Start, d)
		}
	}
}

func TestMapper_ClampsOutOfRange(t *testing.T) {
	b := year2025()

	assert.Equal(t, 0.0, b.PositionOf(Date(2024, time.June, 1)))
	assert.Equal(t, 100.0, b.PositionOf(Date(2026, time.June, 1)))

	for _, pct := range []float64{-500, -0.1, 100.1, 1e6} {
		d := b.DateAtPosition(pct)
		assert.True(t, b.Contains(d), "DateAtPosition(%v) = %v escapes the bound", pct, d)
	}

	rect := Rect{Left: 10, Width: 100}
	for _, x := range []int{-100, 0, 9, 10, 60, 110, 111, 5000} {
		pct := PercentFromPointerX(x, rect)
		assert.GreaterOrEqual(t, pct, 0.0)
		assert.LessOrEqual(t, pct, 100.0)
	}
	assert.Equal(t, 50.0, PercentFromPointerX(60, rect))
	assert.Equal(t, 0.0, PercentFromPointerX(60, Rect{Left: 10}))
}

func TestSingleDayBound(t *testing.T) {
	d := Date(2025, time.July, 4)
	b, err := NewBound(d, d)
	require.NoError(t, err)

	assert.Equal(t, 1, b.TotalDays())
	assert.Equal(t, 0.0, b.PositionOf(d))
	assert.Equal(t, d, b.DateAtPosition(100))
	assert.Equal(t, 0, b.DaysForDelta(40, 80))
}

func TestTodayPosition(t *testing.T) {
	b := Bound{Start: Date(2025, time.January, 1), End: Date(2025, time.January, 31)}

	_, ok := b.TodayPosition(Date(2025, time.February, 1))
	assert.False(t, ok)

	pos, ok := b.TodayPosition(time.Date(2025, time.January, 31, 15, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 100, pos, 1e-9)
}

func TestBoundFor(t *testing.T) {
	now := time.Date(2025, time.August, 10, 9, 0, 0, 0, time.UTC)
	start := Date(2025, time.March, 1)
	end := Date(2025, time.September, 30)

	assert.Equal(t, year2025(), BoundFor(nil, nil, now))
	assert.Equal(t, Bound{Start: start, End: end}, BoundFor(&start, &end, now))
	assert.Equal(t, Bound{Start: start, End: Date(2025, time.December, 31)}, BoundFor(&start, nil, now))
	assert.Equal(t, Bound{Start: Date(2025, time.January, 1), End: end}, BoundFor(nil, &end, now))

	inverted := BoundFor(&end, &start, now)
	assert.Equal(t, year2025(), inverted, "inverted project dates fall back to the calendar year")

	nye := Date(2025, time.December, 31)
	assert.Equal(t, Bound{Start: nye, End: Date(2026, time.December, 31)}, BoundFor(&nye, nil, now))
}

func TestMonthStarts(t *testing.T) {
	b := Bound{Start: Date(2025, time.January, 15), End: Date(2025, time.March, 10)}
	assert.Equal(t, []time.Time{
		Date(2025, time.January, 15),
		Date(2025, time.February, 1),
		Date(2025, time.March, 1),
	}, b.MonthStarts())
}

func TestColumnOf_InvertsTrackRect(t *testing.T) {
	const cells = 73
	rect := TrackRect(20, 3, cells, 5)
	for col := 0; col < cells; col++ {
		pct := PercentFromPointerX(rect.Left+col, rect)
		assert.Equal(t, col, ColumnOf(pct, cells))
	}
	assert.Equal(t, 0, ColumnOf(0, cells))
	assert.Equal(t, cells-1, ColumnOf(100, cells))
	assert.Equal(t, 0, ColumnOf(55, 1))
}

func TestDaysForDelta(t *testing.T) {
	b := year2025()
	assert.Equal(t, 10, b.DaysForDelta(10, 364))
	assert.Equal(t, -7, b.DaysForDelta(-7, 364))
	assert.Equal(t, 20, b.DaysForDelta(10, 182))
	assert.Equal(t, 0, b.DaysForDelta(10, 0))
}
