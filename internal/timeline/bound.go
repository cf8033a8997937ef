package timeline

import (
	"math"
	"time"
)

// Day is the only granularity the timeline knows about.
const Day = 24 * time.Hour

// Bound is the inclusive date range a timeline displays.
type Bound struct {
	Start time.Time
	End   time.Time
}

// Rect is a container rectangle in pointer units (terminal cells).
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Point is a pointer position in the same units as Rect.
type Point struct {
	X int
	Y int
}

// Truncate drops the time-of-day, keeping the calendar date as UTC midnight.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date is a shorthand for a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NewBound normalizes both ends to whole days.
func NewBound(start, end time.Time) (Bound, error) {
	b := Bound{Start: Truncate(start), End: Truncate(end)}
	if b.End.Before(b.Start) {
		return Bound{}, ErrInvertedBound
	}
	return b, nil
}

// DefaultBound covers the calendar year containing now.
func DefaultBound(now time.Time) Bound {
	y := now.Year()
	return Bound{Start: Date(y, time.January, 1), End: Date(y, time.December, 31)}
}

// BoundFor derives the bound from a project's dates, falling back to the
// calendar year for whatever is missing.
func BoundFor(start, end *time.Time, now time.Time) Bound {
	switch {
	case start != nil && end != nil:
		if b, err := NewBound(*start, *end); err == nil {
			return b
		}
		return DefaultBound(now)
	case start != nil:
		s := Truncate(*start)
		e := Date(s.Year(), time.December, 31)
		if !e.After(s) {
			e = s.AddDate(1, 0, 0)
		}
		return Bound{Start: s, End: e}
	case end != nil:
		e := Truncate(*end)
		s := Date(e.Year(), time.January, 1)
		if !s.Before(e) {
			s = e.AddDate(-1, 0, 0)
		}
		return Bound{Start: s, End: e}
	}
	return DefaultBound(now)
}

// daysBetween counts whole days from a to b, rounding partial days up.
func daysBetween(a, b time.Time) int {
	return int(math.Ceil(Truncate(b).Sub(Truncate(a)).Hours() / 24))
}

// TotalDays is the number of calendar days in the bound, both ends included.
func (b Bound) TotalDays() int {
	return daysBetween(b.Start, b.End) + 1
}

// span is the number of day intervals the track is divided into.
func (b Bound) span() int {
	return b.TotalDays() - 1
}

// Contains reports whether date falls inside the bound.
func (b Bound) Contains(date time.Time) bool {
	d := Truncate(date)
	return !d.Before(b.Start) && !d.After(b.End)
}

// PositionOf maps date onto [0,100]. Dates outside the bound are clamped to
// the nearest edge.
func (b Bound) PositionOf(date time.Time) float64 {
	span := b.span()
	if span <= 0 {
		return 0
	}
	pct := float64(daysBetween(b.Start, date)) / float64(span) * 100
	return clampPercent(pct)
}

// DateAtPosition is the inverse of PositionOf, rounded to the nearest day.
// The round trip is exact only at day granularity.
func (b Bound) DateAtPosition(percent float64) time.Time {
	days := int(math.Round(clampPercent(percent) / 100 * float64(b.span())))
	return b.Start.AddDate(0, 0, days)
}

// DaysForDelta converts a horizontal pointer displacement inside a container
// of the given width into a whole-day offset.
func (b Bound) DaysForDelta(deltaX, width int) int {
	if width <= 0 {
		return 0
	}
	percentDelta := float64(deltaX) / float64(width) * 100
	return int(math.Round(percentDelta / 100 * float64(b.span())))
}

// TodayPosition returns the position of today, or false when today is not
// on the timeline.
func (b Bound) TodayPosition(today time.Time) (float64, bool) {
	if !b.Contains(today) {
		return 0, false
	}
	return b.PositionOf(today), true
}

// MonthStarts lists the first day of every month that falls in the bound.
// The bound start is always included so the ruler has a left label.
func (b Bound) MonthStarts() []time.Time {
	out := []time.Time{b.Start}
	m := Date(b.Start.Year(), b.Start.Month(), 1).AddDate(0, 1, 0)
	for !m.After(b.End) {
		out = append(out, m)
		m = m.AddDate(0, 1, 0)
	}
	return out
}

// PercentFromPointerX maps a pointer column into [0,100] relative to rect.
func PercentFromPointerX(x int, rect Rect) float64 {
	if rect.Width <= 0 {
		return 0
	}
	return clampPercent(float64(x-rect.Left) / float64(rect.Width) * 100)
}

// ColumnOf maps a percentage onto one of cells columns so that 0 lands on the
// first column and 100 on the last. It is the inverse of PercentFromPointerX
// for a rect of width cells-1 (see TrackRect).
func ColumnOf(percent float64, cells int) int {
	if cells <= 1 {
		return 0
	}
	return int(math.Round(clampPercent(percent) / 100 * float64(cells-1)))
}

// TrackRect builds the container rect for a track that is cells columns wide
// starting at left. The width is measured between the first and last column
// so both bound endpoints are reachable with the pointer.
func TrackRect(left, top, cells, height int) Rect {
	w := cells - 1
	if w < 0 {
		w = 0
	}
	return Rect{Left: left, Top: top, Width: w, Height: height}
}

func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// clamp pulls d into the bound.
func (b Bound) clamp(d time.Time) time.Time {
	switch {
	case d.Before(b.Start):
		return b.Start
	case d.After(b.End):
		return b.End
	}
	return d
}
