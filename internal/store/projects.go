package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateProject(name string, start, end *time.Time) (*Project, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("project %q: end date is before start date", name)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, start_date, end_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, formatOptDate(start), formatOptDate(end), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(id)
}

const projectColumns = `id, name, start_date, end_date, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (Project, error) {
	var p Project
	var start, end sql.NullString
	var createdAt, updatedAt string
	if err := sc.Scan(&p.ID, &p.Name, &start, &end, &createdAt, &updatedAt); err != nil {
		return Project{}, err
	}
	if start.Valid {
		t := parseDate(start.String)
		p.StartDate = &t
	}
	if end.Valid {
		t := parseDate(end.String)
		p.EndDate = &t
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func (s *Store) GetProject(id string) (*Project, error) {
	p, err := scanProject(s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("project", id, err)
	}
	return &p, nil
}

// FindProject resolves a project by id or by exact name.
func (s *Store) FindProject(ref string) (*Project, error) {
	p, err := scanProject(s.db.QueryRow(
		`SELECT `+projectColumns+` FROM projects WHERE id = ? OR name = ? ORDER BY name LIMIT 1`, ref, ref,
	))
	if err != nil {
		return nil, notFound("project", ref, err)
	}
	return &p, nil
}

// ResolveProject picks the project to open. Each non-empty ref is tried in
// order, then the remembered active project, then the first project by name.
// It returns ErrNotFound when a given ref matches nothing or no project exists.
func (s *Store) ResolveProject(refs ...string) (*Project, error) {
	for _, ref := range refs {
		if ref != "" {
			return s.FindProject(ref)
		}
	}
	if id, err := s.GetSetting(SettingActiveProject); err == nil {
		if p, err := s.GetProject(id); err == nil {
			return p, nil
		}
	}
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("resolve project: %w", ErrNotFound)
	}
	return &projects[0], nil
}

func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) UpdateProject(id, name string, start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("project %q: end date is before start date", name)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE projects SET name = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		name, formatOptDate(start), formatOptDate(end), now, id,
	)
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return expectOne(res, "project", id)
}

func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return expectOne(res, "project", id)
}

// LoadBoard reads a project with all of its rows and items.
func (s *Store) LoadBoard(projectID string) (*Board, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	rows, err := s.ListRows(projectID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.ListMilestones(projectID)
	if err != nil {
		return nil, err
	}
	pinpoints, err := s.ListPinpoints(projectID)
	if err != nil {
		return nil, err
	}
	return &Board{Project: *p, Rows: rows, Milestones: milestones, Pinpoints: pinpoints}, nil
}

func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
