package store

import (
	"time"

	"github.com/sadopc/planline/internal/timeline"
)

const dateLayout = "2006-01-02"

type Project struct {
	ID        string
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Bound is the timeline range for the project, falling back to the calendar
// year around now for missing dates.
func (p Project) Bound(now time.Time) timeline.Bound {
	return timeline.BoundFor(p.StartDate, p.EndDate, now)
}

type Setting struct {
	Key   string
	Value string
}

// Board is everything the timeline view renders for one project.
type Board struct {
	Project    Project
	Rows       []timeline.Row
	Milestones []timeline.Milestone
	Pinpoints  []timeline.Pinpoint
}

// RowName resolves a row id for display.
func (b Board) RowName(id *string) string {
	if id == nil {
		return "Unassigned"
	}
	for _, r := range b.Rows {
		if r.ID == *id {
			return r.Name
		}
	}
	return "Unassigned"
}

func formatDate(t time.Time) string {
	return timeline.Truncate(t).Format(dateLayout)
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func formatOptDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}
