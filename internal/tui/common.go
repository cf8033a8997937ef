package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimeline viewState = iota
	viewRows
	viewReports
	viewProjects
)

var viewNames = []string{"Timeline", "Rows", "Reports", "Projects"}

// --- Messages ---

// boardMsg carries a freshly loaded board. A nil board means no project is
// active.
type boardMsg struct {
	board *store.Board
	err   error
}

// projectSelectedMsg switches every view to another project.
type projectSelectedMsg struct {
	id string
}

// committedMsg reports commands that reached the store.
type committedMsg struct {
	cmds []timeline.PendingCommand
}

// commitFailedMsg reports a rejected commit. The optimistic state is stale.
type commitFailedMsg struct {
	cmd timeline.PendingCommand
	err error
}

// rowDeletedMsg tells the timeline a row and its children are gone.
type rowDeletedMsg struct {
	id string
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

const dateLayout = "2006-01-02"

var nowFunc = time.Now

func formatDay(t time.Time) string {
	return t.Format(dateLayout)
}

func formatRange(start, end time.Time) string {
	if start.Equal(end) {
		return start.Format("Jan 02, 2006")
	}
	if start.Year() == end.Year() {
		return fmt.Sprintf("%s – %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	}
	return fmt.Sprintf("%s – %s", start.Format("Jan 02, 2006"), end.Format("Jan 02, 2006"))
}

// parseDay parses YYYY-MM-DD into a UTC day.
func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("use YYYY-MM-DD")
	}
	return timeline.Truncate(t), nil
}

// truncate shortens s to w cells, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	r := []rune(s)
	if w <= 0 {
		return ""
	}
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
