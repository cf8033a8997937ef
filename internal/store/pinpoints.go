package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/planline/internal/timeline"
)

const pinpointColumns = `id, project_id, row_id, date, name, color, description`

func scanPinpoint(sc scanner) (timeline.Pinpoint, error) {
	var p timeline.Pinpoint
	var date string
	if err := sc.Scan(&p.ID, &p.ProjectID, &p.RowID, &date, &p.Name, &p.Color, &p.Description); err != nil {
		return timeline.Pinpoint{}, err
	}
	p.Date = parseDate(date)
	return p, nil
}

func (s *Store) CreatePinpoint(projectID, rowID string, date time.Time, name, color, description string) (*timeline.Pinpoint, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO pinpoints (id, project_id, row_id, date, name, color, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, projectID, rowID, formatDate(date), name, color, description, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pinpoint: %w", err)
	}
	return s.GetPinpoint(id)
}

func (s *Store) GetPinpoint(id string) (*timeline.Pinpoint, error) {
	p, err := scanPinpoint(s.db.QueryRow(`SELECT `+pinpointColumns+` FROM pinpoints WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("pinpoint", id, err)
	}
	return &p, nil
}

func (s *Store) ListPinpoints(projectID string) ([]timeline.Pinpoint, error) {
	rows, err := s.db.Query(
		`SELECT `+pinpointColumns+` FROM pinpoints WHERE project_id = ? ORDER BY date, name`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pinpoints: %w", err)
	}
	defer rows.Close()

	var out []timeline.Pinpoint
	for rows.Next() {
		p, err := scanPinpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PatchPinpoint writes only the row and/or date set in p.
func (s *Store) PatchPinpoint(id string, p timeline.Patch) (*timeline.Pinpoint, error) {
	var sets []string
	var args []any
	if p.RowID != nil {
		sets = append(sets, "row_id = ?")
		args = append(args, *p.RowID)
	}
	if p.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, formatDate(*p.Date))
	}
	if len(sets) == 0 {
		return s.GetPinpoint(id)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id)

	res, err := s.db.Exec(`UPDATE pinpoints SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("patch pinpoint %s: %w", id, err)
	}
	if err := expectOne(res, "pinpoint", id); err != nil {
		return nil, err
	}
	return s.GetPinpoint(id)
}

func (s *Store) DeletePinpoint(id string) error {
	res, err := s.db.Exec(`DELETE FROM pinpoints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pinpoint %s: %w", id, err)
	}
	return expectOne(res, "pinpoint", id)
}
