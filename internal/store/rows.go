package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/planline/internal/timeline"
)

const rowColumns = `id, project_id, parent_id, name, color, sort_order`

func scanRow(sc scanner) (timeline.Row, error) {
	var r timeline.Row
	var parent sql.NullString
	if err := sc.Scan(&r.ID, &r.ProjectID, &parent, &r.Name, &r.Color, &r.Order); err != nil {
		return timeline.Row{}, err
	}
	if parent.Valid {
		r.ParentID = &parent.String
	}
	return r, nil
}

// CreateRow appends a row after its siblings. A parent must be a top-level
// row of the same project.
func (s *Store) CreateRow(projectID, name, color string, parentID *string) (*timeline.Row, error) {
	if parentID != nil {
		parent, err := s.GetRow(*parentID)
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("row parent %s: %w", *parentID, timeline.ErrUnknownRow)
		}
		if err != nil {
			return nil, err
		}
		if !parent.IsTopLevel() || parent.ProjectID != projectID {
			return nil, timeline.ErrNestedRow
		}
	}

	var next int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM timeline_rows WHERE project_id = ? AND parent_id IS ?`,
		projectID, parentID,
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("next row order: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	id := uuid.New().String()
	_, err = s.db.Exec(
		`INSERT INTO timeline_rows (id, project_id, parent_id, name, color, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, projectID, parentID, name, color, next, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert row: %w", err)
	}
	return s.GetRow(id)
}

func (s *Store) GetRow(id string) (*timeline.Row, error) {
	r, err := scanRow(s.db.QueryRow(`SELECT `+rowColumns+` FROM timeline_rows WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("row", id, err)
	}
	return &r, nil
}

func (s *Store) ListRows(projectID string) ([]timeline.Row, error) {
	rows, err := s.db.Query(
		`SELECT `+rowColumns+` FROM timeline_rows WHERE project_id = ? ORDER BY sort_order, name`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	var out []timeline.Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRow(id, name, color string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE timeline_rows SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
		name, color, now, id,
	)
	if err != nil {
		return fmt.Errorf("update row %s: %w", id, err)
	}
	return expectOne(res, "row", id)
}

// PatchRowOrder writes only the order column.
func (s *Store) PatchRowOrder(id string, order int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE timeline_rows SET sort_order = ?, updated_at = ? WHERE id = ?`, order, now, id,
	)
	if err != nil {
		return fmt.Errorf("patch row %s: %w", id, err)
	}
	return expectOne(res, "row", id)
}

// DeleteRow removes a row and its children. Their milestones become
// unassigned; their pinpoints are removed.
func (s *Store) DeleteRow(id string) error {
	res, err := s.db.Exec(`DELETE FROM timeline_rows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete row %s: %w", id, err)
	}
	return expectOne(res, "row", id)
}
