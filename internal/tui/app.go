package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	zone "github.com/lrstanley/bubblezone"

	"github.com/sadopc/planline/internal/export"
	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
)

// Options configures the TUI.
type Options struct {
	ProjectID  string
	LabelWidth int
	Tolerance  timeline.Tolerance
	Logger     *log.Logger
	ExportDir  string
	Zones      *zone.Manager
}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	log       *log.Logger
	zones     *zone.Manager
	exportDir string
	width     int
	height    int

	projectID     string
	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timeline timelineModel
	rows     rowsModel
	reports  reportsModel
	projects projectsModel

	help      help.Model
	status    string
	statusErr bool
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

func NewApp(s *store.Store, opts Options) App {
	opts.Logger = opts.logger()
	if opts.Zones == nil {
		opts.Zones = zone.New()
	}
	if opts.ExportDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
			opts.Logger.Warn("home dir unavailable, exporting to the working directory", "err", err)
		}
		opts.ExportDir = home
	}

	h := help.New()
	h.ShowAll = false

	a := App{
		store:     s,
		log:       opts.Logger,
		zones:     opts.Zones,
		exportDir: opts.ExportDir,
		projectID: opts.ProjectID,
		timeline:  newTimelineModel(s, opts),
		rows:      newRowsModel(s, opts),
		reports:   newReportsModel(s, opts),
		projects:  newProjectsModel(s, opts),
		help:      h,
	}
	if a.projectID == "" {
		a.activeView = viewProjects
	}
	return a
}

// Run starts the program on the alternate screen with mouse tracking.
func Run(s *store.Store, opts Options) error {
	p := tea.NewProgram(NewApp(s, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.timeline.refresh(), a.projects.refresh())
}

func tabZone(i int) string { return "tab-" + strconv.Itoa(i) }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timeline.setSize(a.width, contentHeight)
		a.timeline.setTop(lipgloss.Height(a.renderHeader()))
		a.rows.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child form captures every key.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if a.projectID == "" {
				a.status, a.statusErr = "Open a project before exporting", true
				return a, nil
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewTimeline)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewRows)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewReports)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewProjects)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && !a.timeline.ctrl.Active() {
			for i := range viewNames {
				if z := a.zones.Get(tabZone(i)); z != nil && z.InBounds(msg) {
					return a.switchView(viewState(i))
				}
			}
		}
		// Pointer-up always reaches the timeline so a gesture resolves
		// even if the pointer left the track.
		if a.activeView == viewTimeline || a.timeline.ctrl.Active() || a.timeline.draggingRow != "" {
			var cmd tea.Cmd
			a.timeline, cmd = a.timeline.update(msg)
			return a, cmd
		}
		return a, nil

	case boardMsg, committedMsg, commitFailedMsg, rowDeletedMsg:
		var cmd tea.Cmd
		a.timeline, cmd = a.timeline.update(msg)
		return a, cmd

	case rowsDataMsg:
		var cmd tea.Cmd
		a.rows, cmd = a.rows.update(msg)
		return a, cmd

	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd

	case projectsDataMsg:
		var cmd tea.Cmd
		a.projects, cmd = a.projects.update(msg)
		return a, cmd

	case projectSelectedMsg:
		return a.selectProject(msg.id)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

// selectProject points every view at id. An empty id means the active
// project was deleted.
func (a App) selectProject(id string) (tea.Model, tea.Cmd) {
	a.log.Info("project selected", "project", id)
	a.projectID = id
	a.timeline.setProject(id)
	a.rows.projectID = id
	a.rows.viewingItems = false
	a.rows.cursor = 0
	a.reports.projectID = id
	a.projects.activeID = id

	if id != "" {
		a.activeView = viewTimeline
	}
	cmds := []tea.Cmd{a.timeline.refresh(), a.rows.refresh(), a.reports.refresh(), a.projects.refresh()}
	return a, tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimeline:
		a.timeline, cmd = a.timeline.update(msg)
	case viewRows:
		a.rows, cmd = a.rows.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewRows:
		return a.rows.formActive
	case viewProjects:
		return a.projects.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimeline:
		return a.timeline.refresh()
	case viewRows:
		return a.rows.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewProjects:
		return a.projects.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimeline:
		content = a.timeline.view()
	case viewRows:
		content = a.rows.view()
	case viewReports:
		content = a.reports.view()
	case viewProjects:
		content = a.projects.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return a.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		style := inactiveTabStyle
		if viewState(i) == a.activeView {
			style = activeTabStyle
		}
		tabs = append(tabs, a.zones.Mark(tabZone(i), style.Render(name)))
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("planline")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		right = style.Render(" " + a.status)
	}

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	s, id, dir, logger := a.store, a.projectID, a.exportDir, a.log
	return func() tea.Msg {
		b, err := s.LoadBoard(id)
		if err != nil {
			logger.Error("export", "project", id, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		path := filepath.Join(dir, export.FileName(b.Project.Name, f, nowFunc()))
		if err := export.Write(f, b, path); err != nil {
			logger.Error("export", "path", path, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		logger.Info("exported", "project", id, "format", f, "path", path)
		return exportDoneMsg{path: path}
	}
}
