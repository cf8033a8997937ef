package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/planline/internal/timeline"
)

const milestoneColumns = `id, project_id, row_id, name, start_date, end_date, status, color`

func scanMilestone(sc scanner) (timeline.Milestone, error) {
	var m timeline.Milestone
	var rowID sql.NullString
	var start, end, status string
	if err := sc.Scan(&m.ID, &m.ProjectID, &rowID, &m.Name, &start, &end, &status, &m.Color); err != nil {
		return timeline.Milestone{}, err
	}
	if rowID.Valid {
		m.RowID = &rowID.String
	}
	m.Start = parseDate(start)
	m.End = parseDate(end)
	m.Status = timeline.Status(status)
	return m, nil
}

func (s *Store) CreateMilestone(projectID string, rowID *string, name string, start, end time.Time, status timeline.Status, color string) (*timeline.Milestone, error) {
	m := timeline.Milestone{Start: start, End: end}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("milestone %q: %w", name, err)
	}
	if status == "" {
		status = timeline.StatusPlanned
	}
	if !status.Valid() {
		return nil, fmt.Errorf("milestone %q: unknown status %q", name, status)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO milestones (id, project_id, row_id, name, start_date, end_date, status, color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, projectID, rowID, name, formatDate(start), formatDate(end), string(status), color, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert milestone: %w", err)
	}
	return s.GetMilestone(id)
}

func (s *Store) GetMilestone(id string) (*timeline.Milestone, error) {
	m, err := scanMilestone(s.db.QueryRow(`SELECT `+milestoneColumns+` FROM milestones WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("milestone", id, err)
	}
	return &m, nil
}

func (s *Store) ListMilestones(projectID string) ([]timeline.Milestone, error) {
	rows, err := s.db.Query(
		`SELECT `+milestoneColumns+` FROM milestones WHERE project_id = ? ORDER BY start_date, name`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var out []timeline.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PatchMilestone writes only the fields set in p. The merged range must still
// satisfy start <= end.
func (s *Store) PatchMilestone(id string, p timeline.Patch) (*timeline.Milestone, error) {
	cur, err := s.GetMilestone(id)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return cur, nil
	}
	merged := p.ApplyMilestone(*cur)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("patch milestone %s: %w", id, err)
	}

	var sets []string
	var args []any
	if p.RowID != nil {
		sets = append(sets, "row_id = ?")
		args = append(args, *p.RowID)
	}
	if p.Start != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, formatDate(*p.Start))
	}
	if p.End != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, formatDate(*p.End))
	}
	if len(sets) == 0 {
		return cur, nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id)

	_, err = s.db.Exec(`UPDATE milestones SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("patch milestone %s: %w", id, err)
	}
	return s.GetMilestone(id)
}

func (s *Store) SetMilestoneStatus(id string, status timeline.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE milestones SET status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
	if err != nil {
		return fmt.Errorf("set milestone status %s: %w", id, err)
	}
	return expectOne(res, "milestone", id)
}

func (s *Store) DeleteMilestone(id string) error {
	res, err := s.db.Exec(`DELETE FROM milestones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete milestone %s: %w", id, err)
	}
	return expectOne(res, "milestone", id)
}
