// Package timeline is the scheduling and direct-manipulation engine behind the
// milestone view: date/position mapping, row grouping, item placement and the
// drag, resize and point-move sessions that turn pointer gestures into a single
// committed patch.
//
// Nothing in this package performs I/O. Commits are described as
// PendingCommand values and handed to a Committer by the caller.
package timeline

import (
	"errors"
	"time"
)

var (
	ErrInvertedBound = errors.New("timeline: bound start is after end")
	ErrInvalidRange  = errors.New("timeline: start date is after end date")
	ErrSessionActive = errors.New("timeline: another interaction session is active")
	ErrNestedRow     = errors.New("timeline: rows may only be nested one level deep")
	ErrUnknownRow    = errors.New("timeline: unknown row")
	ErrNotTopLevel   = errors.New("timeline: only top-level rows can be reordered")
)

// Kind identifies which entity a command targets.
type Kind string

const (
	KindRow       Kind = "row"
	KindMilestone Kind = "milestone"
	KindPinpoint  Kind = "pinpoint"
)

// Status of a milestone.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

var Statuses = []Status{StatusPlanned, StatusInProgress, StatusDone, StatusBlocked}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Row struct {
	ID        string
	ProjectID string
	Name      string
	Color     string
	Order     int
	ParentID  *string
}

// IsTopLevel reports whether the row has no parent.
func (r Row) IsTopLevel() bool { return r.ParentID == nil }

// Milestone is a duration-bearing item. A nil RowID places it in the
// unassigned lane.
type Milestone struct {
	ID        string
	ProjectID string
	RowID     *string
	Name      string
	Start     time.Time
	End       time.Time
	Status    Status
	Color     string
}

// Days is the inclusive length of the milestone in days.
func (m Milestone) Days() int {
	return daysBetween(m.Start, m.End) + 1
}

// Validate enforces start <= end.
func (m Milestone) Validate() error {
	if Truncate(m.End).Before(Truncate(m.Start)) {
		return ErrInvalidRange
	}
	return nil
}

// Pinpoint is a single-date item. It always belongs to a row.
type Pinpoint struct {
	ID          string
	ProjectID   string
	RowID       string
	Date        time.Time
	Name        string
	Color       string
	Description string
}

func sameRow(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
