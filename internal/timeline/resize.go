package timeline

import "time"

// Direction is the edge being dragged by a resize.
type Direction int

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// ResizeSession is a single in-progress edge drag. The anchors hold the
// persisted dates; only the live dates change while the pointer moves.
type ResizeSession struct {
	ItemID      string
	Direction   Direction
	AnchorStart time.Time
	AnchorEnd   time.Time
	LiveStart   time.Time
	LiveEnd     time.Time
	Origin      Point

	bound     Bound
	container Rect
	tol       Tolerance
}

func newResizeSession(m Milestone, dir Direction, origin Point, bound Bound, container Rect, tol Tolerance) *ResizeSession {
	start, end := Truncate(m.Start), Truncate(m.End)
	return &ResizeSession{
		ItemID:      m.ID,
		Direction:   dir,
		AnchorStart: start,
		AnchorEnd:   end,
		LiveStart:   start,
		LiveEnd:     end,
		Origin:      origin,
		bound:       bound,
		container:   container,
		tol:         tol,
	}
}

// Move recomputes the live edge from the pointer column. Within MinMotion of
// the press column the edges stay at their anchors. The live edge stays at
// least one day from the opposite anchor and inside the bound.
func (s *ResizeSession) Move(p Point) {
	if abs(p.X-s.Origin.X) <= s.tol.MinMotion {
		s.LiveStart, s.LiveEnd = s.AnchorStart, s.AnchorEnd
		return
	}
	live := s.bound.DateAtPosition(PercentFromPointerX(p.X, s.container))
	switch s.Direction {
	case Left:
		limit := s.AnchorEnd.Add(-Day)
		if live.After(limit) {
			live = limit
		}
		s.LiveStart = s.bound.clamp(live)
	case Right:
		limit := s.AnchorStart.Add(Day)
		if live.Before(limit) {
			live = limit
		}
		s.LiveEnd = s.bound.clamp(live)
	}
}

// Changed reports whether the live range differs from the anchors.
func (s *ResizeSession) Changed() bool {
	return !s.LiveStart.Equal(s.AnchorStart) || !s.LiveEnd.Equal(s.AnchorEnd)
}

// Preview applies the live range to m when m is the item being resized.
func (s *ResizeSession) Preview(m Milestone) Milestone {
	if m.ID != s.ItemID {
		return m
	}
	m.Start, m.End = s.LiveStart, s.LiveEnd
	return m
}

// release turns the session into a command carrying both dates, or nothing
// when the edges ended where they started.
func (s *ResizeSession) release() (PendingCommand, bool) {
	if !s.Changed() {
		return PendingCommand{}, false
	}
	return PendingCommand{
		Kind:   KindMilestone,
		ItemID: s.ItemID,
		Patch:  Patch{Start: timePtr(s.LiveStart), End: timePtr(s.LiveEnd)},
	}, true
}
