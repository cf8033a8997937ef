package timeline

// Point markers reuse the move session with a zero-length range: there is no
// resize for a durationless item, and a release yields {RowID?, Date?}.

func newPointMove(p Pinpoint, origin Point, bound Bound, container Rect, tol Tolerance) *MoveSession {
	d := Truncate(p.Date)
	return &MoveSession{
		ItemID:      p.ID,
		Kind:        KindPinpoint,
		OriginRowID: strPtr(p.RowID),
		Origin:      origin,
		Start:       d,
		End:         d,
		bound:       bound,
		container:   container,
		tol:         tol,
		last:        origin,
	}
}

// MarkerPosition is where a pinpoint is drawn on the track.
func MarkerPosition(p Pinpoint, b Bound) float64 {
	return b.PositionOf(p.Date)
}

// Selection tracks the one active pinpoint. Selecting a marker deselects any
// other; it is independent of drag state.
type Selection struct {
	id string
}

// Select makes id the active marker.
func (s *Selection) Select(id string) { s.id = id }

// Toggle selects id, or clears the selection when id is already active.
func (s *Selection) Toggle(id string) {
	if s.id == id {
		s.id = ""
		return
	}
	s.id = id
}

// Clear deselects everything.
func (s *Selection) Clear() { s.id = "" }

// Active returns the selected id.
func (s Selection) Active() (string, bool) { return s.id, s.id != "" }

// IsSelected reports whether id is the active marker.
func (s Selection) IsSelected(id string) bool { return id != "" && s.id == id }
