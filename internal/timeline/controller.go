package timeline

// Controller owns the single active interaction slot. A drag, point move or
// resize is started explicitly, receives pointer moves and the release as
// method calls, and is discarded when it resolves. Starting a second session
// while one is live is rejected with ErrSessionActive.
type Controller struct {
	bound Bound
	tol   Tolerance

	resize *ResizeSession
	move   *MoveSession

	Selection Selection
}

// NewController creates a controller for bound with the given drag tolerance.
func NewController(bound Bound, tol Tolerance) *Controller {
	return &Controller{bound: bound, tol: tol}
}

// Bound is the range every session started from now on maps against.
func (c *Controller) Bound() Bound { return c.bound }

// SetBound replaces the bound. It is refused while a session is live, since
// the bound must not change mid-gesture.
func (c *Controller) SetBound(b Bound) error {
	if c.Active() {
		return ErrSessionActive
	}
	c.bound = b
	return nil
}

// Active reports whether a session is in progress.
func (c *Controller) Active() bool { return c.resize != nil || c.move != nil }

// Resizing returns the live resize session, if any.
func (c *Controller) Resizing() (*ResizeSession, bool) { return c.resize, c.resize != nil }

// Moving returns the live move session, if any.
func (c *Controller) Moving() (*MoveSession, bool) { return c.move, c.move != nil }

// BeginResize starts an edge drag on m pressed at origin. container is
// measured once here and reused for every subsequent move.
func (c *Controller) BeginResize(m Milestone, dir Direction, origin Point, container Rect) (*ResizeSession, error) {
	if c.Active() {
		return nil, ErrSessionActive
	}
	c.resize = newResizeSession(m, dir, origin, c.bound, container, c.tol)
	return c.resize, nil
}

// BeginMove starts a body drag on m.
func (c *Controller) BeginMove(m Milestone, origin Point, container Rect) (*MoveSession, error) {
	if c.Active() {
		return nil, ErrSessionActive
	}
	c.move = newMilestoneMove(m, origin, c.bound, container, c.tol)
	return c.move, nil
}

// BeginPointMove selects p and starts a move on it.
func (c *Controller) BeginPointMove(p Pinpoint, origin Point, container Rect) (*MoveSession, error) {
	if c.Active() {
		return nil, ErrSessionActive
	}
	c.Selection.Select(p.ID)
	c.move = newPointMove(p, origin, c.bound, container, c.tol)
	return c.move, nil
}

// Move forwards a pointer move to the live session. It reports false when
// there is nothing to update.
func (c *Controller) Move(p Point) bool {
	switch {
	case c.resize != nil:
		c.resize.Move(p)
		return true
	case c.move != nil:
		c.move.Move(p)
		return true
	}
	return false
}

// Release ends the live session. It returns the command to commit, or false
// when the gesture changed nothing. The session is discarded either way.
func (c *Controller) Release(p Point, drop *string) (PendingCommand, bool) {
	switch {
	case c.resize != nil:
		s := c.resize
		c.resize = nil
		s.Move(p)
		return s.release()
	case c.move != nil:
		s := c.move
		c.move = nil
		return s.release(p, drop)
	}
	return PendingCommand{}, false
}

// PreviewMilestones renders the live state of the session over items
// without touching the committed list.
func (c *Controller) PreviewMilestones(items []Milestone) []Milestone {
	if c.resize == nil && (c.move == nil || c.move.Kind != KindMilestone) {
		return items
	}
	out := make([]Milestone, len(items))
	for i, m := range items {
		switch {
		case c.resize != nil:
			m = c.resize.Preview(m)
		case m.ID == c.move.ItemID:
			if days := c.move.Preview(); days != 0 {
				m.Start = c.move.Start.AddDate(0, 0, days)
				m.End = m.Start.Add(c.move.Duration())
			}
		}
		out[i] = m
	}
	return out
}

// PreviewPinpoints renders the live point move over items.
func (c *Controller) PreviewPinpoints(items []Pinpoint) []Pinpoint {
	if c.move == nil || c.move.Kind != KindPinpoint {
		return items
	}
	days := c.move.Preview()
	if days == 0 {
		return items
	}
	out := make([]Pinpoint, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == c.move.ItemID {
			out[i].Date = c.move.Start.AddDate(0, 0, days)
		}
	}
	return out
}
