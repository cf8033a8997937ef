package timeline

import "time"

// Tolerance separates a click from a drag. A horizontal displacement must
// exceed MinMotion to shift dates, and the vertical displacement must stay
// below VerticalBand.
type Tolerance struct {
	MinMotion    int
	VerticalBand int
}

// DefaultTolerance is tuned for pixel pointers; terminal front ends may
// configure something tighter.
var DefaultTolerance = Tolerance{MinMotion: 5, VerticalBand: 50}

// MoveSession is a single in-progress move of a milestone body or a pinpoint.
// The duration of a milestone is captured at pointer-down and never changes.
type MoveSession struct {
	ItemID      string
	Kind        Kind
	OriginRowID *string
	Origin      Point
	Start       time.Time
	End         time.Time

	bound     Bound
	container Rect
	tol       Tolerance
	last      Point
}

func newMilestoneMove(m Milestone, origin Point, bound Bound, container Rect, tol Tolerance) *MoveSession {
	var row *string
	if m.RowID != nil {
		row = strPtr(*m.RowID)
	}
	return &MoveSession{
		ItemID:      m.ID,
		Kind:        KindMilestone,
		OriginRowID: row,
		Origin:      origin,
		Start:       Truncate(m.Start),
		End:         Truncate(m.End),
		bound:       bound,
		container:   container,
		tol:         tol,
		last:        origin,
	}
}

// Duration is the captured span between the item's edges.
func (s *MoveSession) Duration() time.Duration { return s.End.Sub(s.Start) }

// Move records the latest pointer position. Nothing is committed.
func (s *MoveSession) Move(p Point) { s.last = p }

// Preview returns the day shift a release at the last pointer position would
// commit, or 0 when the shift would be dropped.
func (s *MoveSession) Preview() int {
	days, ok := s.dayShift(s.last)
	if !ok {
		return 0
	}
	return days
}

// dayShift converts the pointer displacement since pointer-down into whole
// days, rejecting clicks, mostly-vertical gestures and shifts that would leave
// the bound.
func (s *MoveSession) dayShift(p Point) (int, bool) {
	dx := p.X - s.Origin.X
	dy := abs(p.Y - s.Origin.Y)
	if abs(dx) <= s.tol.MinMotion || dy >= s.tol.VerticalBand {
		return 0, false
	}
	days := s.bound.DaysForDelta(dx, s.container.Width)
	if days == 0 {
		return 0, false
	}
	start := s.Start.AddDate(0, 0, days)
	end := start.Add(s.Duration())
	if start.Before(s.bound.Start) || end.After(s.bound.End) {
		return 0, false
	}
	return days, true
}

// release merges row reassignment and date shift into one command. drop is
// the droppable row under the pointer, nil when there is none.
func (s *MoveSession) release(p Point, drop *string) (PendingCommand, bool) {
	s.last = p
	var patch Patch
	if drop != nil && !sameRow(drop, s.OriginRowID) {
		patch.RowID = strPtr(*drop)
	}
	if days, ok := s.dayShift(p); ok {
		start := s.Start.AddDate(0, 0, days)
		switch s.Kind {
		case KindPinpoint:
			patch.Date = timePtr(start)
		default:
			patch.Start = timePtr(start)
			patch.End = timePtr(start.Add(s.Duration()))
		}
	}
	if patch.IsEmpty() {
		return PendingCommand{}, false
	}
	return PendingCommand{Kind: s.Kind, ItemID: s.ItemID, Patch: patch}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
