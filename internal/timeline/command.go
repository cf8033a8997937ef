package timeline

import "time"

// Patch carries only the fields a gesture changed. Start and End are always
// set together.
type Patch struct {
	RowID *string
	Start *time.Time
	End   *time.Time
	Date  *time.Time
	Order *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.RowID == nil && p.Start == nil && p.End == nil && p.Date == nil && p.Order == nil
}

// PendingCommand is the outcome of a completed gesture: applied to local
// state right away and handed to a Committer afterwards.
type PendingCommand struct {
	Kind   Kind
	ItemID string
	Patch  Patch
}

// Committer persists a command. Surfacing a failure and reverting the
// optimistic local value is the caller's job.
type Committer interface {
	Commit(cmd PendingCommand) error
}

// ApplyMilestone merges the patch into m.
func (p Patch) ApplyMilestone(m Milestone) Milestone {
	if p.RowID != nil {
		m.RowID = strPtr(*p.RowID)
	}
	if p.Start != nil {
		m.Start = *p.Start
	}
	if p.End != nil {
		m.End = *p.End
	}
	return m
}

// ApplyPinpoint merges the patch into pp.
func (p Patch) ApplyPinpoint(pp Pinpoint) Pinpoint {
	if p.RowID != nil {
		pp.RowID = *p.RowID
	}
	if p.Date != nil {
		pp.Date = *p.Date
	}
	return pp
}

// ApplyRow merges the patch into r.
func (p Patch) ApplyRow(r Row) Row {
	if p.Order != nil {
		r.Order = *p.Order
	}
	return r
}

// ApplyMilestones returns a copy of items with the command applied. The input
// slice is not modified so readers never observe a half-updated list.
func (c PendingCommand) ApplyMilestones(items []Milestone) []Milestone {
	out := make([]Milestone, len(items))
	copy(out, items)
	if c.Kind != KindMilestone {
		return out
	}
	for i := range out {
		if out[i].ID == c.ItemID {
			out[i] = c.Patch.ApplyMilestone(out[i])
		}
	}
	return out
}

// ApplyPinpoints returns a copy of items with the command applied.
func (c PendingCommand) ApplyPinpoints(items []Pinpoint) []Pinpoint {
	out := make([]Pinpoint, len(items))
	copy(out, items)
	if c.Kind != KindPinpoint {
		return out
	}
	for i := range out {
		if out[i].ID == c.ItemID {
			out[i] = c.Patch.ApplyPinpoint(out[i])
		}
	}
	return out
}

// ApplyRows returns a copy of rows with the command applied.
func (c PendingCommand) ApplyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	if c.Kind != KindRow {
		return out
	}
	for i := range out {
		if out[i].ID == c.ItemID {
			out[i] = c.Patch.ApplyRow(out[i])
		}
	}
	return out
}
