package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/planline/internal/store"
)

const (
	formProject     = "project"
	formEditProject = "edit_project"
	formDelete      = "delete_project"
)

type projectForm struct {
	name    string
	start   string
	end     string
	confirm bool
}

type projectsModel struct {
	store  *store.Store
	log    *log.Logger
	width  int
	height int

	projects []store.Project
	activeID string
	cursor   int

	formActive bool
	form       *huh.Form
	formType   string
	editingID  string
	fields     *projectForm
}

func newProjectsModel(s *store.Store, opts Options) projectsModel {
	return projectsModel{
		store:    s,
		log:      opts.logger(),
		activeID: opts.ProjectID,
		fields:   &projectForm{},
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	projects []store.Project
	err      error
}

func (p projectsModel) refresh() tea.Cmd {
	s := p.store
	return func() tea.Msg {
		projects, err := s.ListProjects()
		return projectsDataMsg{projects: projects, err: err}
	}
}

// activate remembers id as the active project and switches every view to it.
func (p projectsModel) activate(id string) tea.Cmd {
	s := p.store
	return func() tea.Msg {
		if err := s.SetSetting(store.SettingActiveProject, id); err != nil {
			return statusMsg{text: fmt.Sprintf("Could not switch project: %v", err), isError: true}
		}
		return projectSelectedMsg{id: id}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		if msg.err != nil {
			p.log.Error("list projects", "err", msg.err)
			return p, statusCmd(fmt.Sprintf("Load failed: %v", msg.err), true)
		}
		p.projects = msg.projects
		p.cursor = clamp(p.cursor, 0, max(0, len(p.projects)-1))
		return p, nil

	case projectSelectedMsg:
		p.activeID = msg.id
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.projects)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if p.cursor < len(p.projects) {
				return p, p.activate(p.projects[p.cursor].ID)
			}
		case key.Matches(msg, keys.New):
			return p.showProjectForm(nil)
		case key.Matches(msg, keys.Edit):
			if p.cursor < len(p.projects) {
				return p.showProjectForm(&p.projects[p.cursor])
			}
		case key.Matches(msg, keys.Delete):
			if p.cursor < len(p.projects) {
				return p.showDeleteForm(p.projects[p.cursor])
			}
		}
	}
	return p, nil
}

func validateOptionalDay(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateDay(s)
}

func optionalDay(s string) *time.Time {
	t, err := parseDay(s)
	if err != nil {
		return nil
	}
	return &t
}

func formatOptionalDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDay(*t)
}

// showProjectForm opens the create form, or the edit form when proj is set.
func (p projectsModel) showProjectForm(proj *store.Project) (projectsModel, tea.Cmd) {
	*p.fields = projectForm{}
	p.formType = formProject
	if proj != nil {
		*p.fields = projectForm{
			name:  proj.Name,
			start: formatOptionalDay(proj.StartDate),
			end:   formatOptionalDay(proj.EndDate),
		}
		p.formType = formEditProject
		p.editingID = proj.ID
	}
	f := p.fields

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project name").Validate(validateName).Value(&f.name),
			huh.NewInput().Title("Start (YYYY-MM-DD, optional)").Validate(validateOptionalDay).Value(&f.start),
			huh.NewInput().Title("End (YYYY-MM-DD, optional)").Validate(validateOptionalDay).Value(&f.end),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showDeleteForm(proj store.Project) (projectsModel, tea.Cmd) {
	*p.fields = projectForm{}
	p.formType = formDelete
	p.editingID = proj.ID
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q with all of its rows and items?", proj.Name)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&p.fields.confirm),
		),
	).WithShowHelp(true)
	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.formActive = false
		p.form = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}
	if p.form.State != huh.StateCompleted {
		return p, cmd
	}
	p.formActive = false

	f := p.fields
	name := strings.TrimSpace(f.name)
	start, end := optionalDay(f.start), optionalDay(f.end)

	switch p.formType {
	case formProject:
		proj, err := p.store.CreateProject(name, start, end)
		if err != nil {
			p.log.Error("create project", "name", name, "err", err)
			return p, statusCmd(fmt.Sprintf("Create failed: %v", err), true)
		}
		p.log.Info("project created", "id", proj.ID, "name", proj.Name)
		return p, tea.Batch(p.refresh(), p.activate(proj.ID))

	case formEditProject:
		if err := p.store.UpdateProject(p.editingID, name, start, end); err != nil {
			p.log.Error("update project", "id", p.editingID, "err", err)
			return p, statusCmd(fmt.Sprintf("Update failed: %v", err), true)
		}
		cmds := []tea.Cmd{p.refresh(), statusCmd("Project updated", false)}
		if p.editingID == p.activeID {
			cmds = append(cmds, func() tea.Msg { return projectSelectedMsg{id: p.editingID} })
		}
		return p, tea.Batch(cmds...)

	case formDelete:
		if !f.confirm {
			return p, nil
		}
		if err := p.store.DeleteProject(p.editingID); err != nil {
			p.log.Error("delete project", "id", p.editingID, "err", err)
			return p, statusCmd(fmt.Sprintf("Delete failed: %v", err), true)
		}
		p.log.Info("project deleted", "id", p.editingID)
		cmds := []tea.Cmd{p.refresh(), statusCmd("Project deleted", false)}
		if p.editingID == p.activeID {
			cmds = append(cmds, func() tea.Msg { return projectSelectedMsg{} })
		}
		return p, tea.Batch(cmds...)
	}
	return p, cmd
}

func (p projectsModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		title := "New Project"
		switch p.formType {
		case formEditProject:
			title = "Edit Project"
		case formDelete:
			title = "Delete Project"
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", p.form.View()))
	}

	title := titleStyle.Render("Projects")
	if len(p.projects) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No projects yet. Press n to create one.")))
	}

	rows := []string{
		title,
		"",
		mutedStyle.Render(fmt.Sprintf("  %-2s %-28s %-12s %-12s", "", "Name", "Start", "End")),
	}
	for i, proj := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := " "
		if proj.ID == p.activeID {
			mark = successStyle.Render("●")
		}
		start, end := formatOptionalDay(proj.StartDate), formatOptionalDay(proj.EndDate)
		if start == "" {
			start = "-"
		}
		if end == "" {
			end = "-"
		}
		rows = append(rows, style.Render(cursor)+mark+style.Render(fmt.Sprintf(" %-28s %-12s %-12s", truncate(proj.Name, 28), start, end)))
	}

	rows = append(rows, "", mutedStyle.Render("  enter: open  n: new  u: edit  x: delete"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
