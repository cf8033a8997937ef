package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
)

var rowColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

const (
	kindRow = "row"
	formNew = "new"
	formRow = "edit_row"
)

// itemForm holds form values behind a pointer so they survive value copies
// of the model.
type itemForm struct {
	kind   string
	name   string
	color  string
	parent string
	row    string
	start  string
	end    string
	date   string
	status string
	desc   string
}

// listItem is one entry of a lane drill-down.
type listItem struct {
	kind      timeline.Kind
	milestone timeline.Milestone
	pinpoint  timeline.Pinpoint
}

type rowsModel struct {
	store  *store.Store
	log    *log.Logger
	width  int
	height int

	projectID string
	board     *store.Board
	lanes     []timeline.Row

	cursor       int // lane cursor; len(lanes) is the unassigned lane
	itemCursor   int
	viewingItems bool

	formActive bool
	form       *huh.Form
	formType   string
	editingID  string
	fields     *itemForm
}

func newRowsModel(s *store.Store, opts Options) rowsModel {
	return rowsModel{
		store:     s,
		log:       opts.logger(),
		projectID: opts.ProjectID,
		fields:    &itemForm{},
	}
}

func (r *rowsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type rowsDataMsg struct {
	board *store.Board
	err   error
}

func (r rowsModel) refresh() tea.Cmd {
	id := r.projectID
	s := r.store
	return func() tea.Msg {
		if id == "" {
			return rowsDataMsg{}
		}
		b, err := s.LoadBoard(id)
		return rowsDataMsg{board: b, err: err}
	}
}

func (r rowsModel) update(msg tea.Msg) (rowsModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case rowsDataMsg:
		if msg.err != nil {
			r.log.Error("load rows", "project", r.projectID, "err", msg.err)
			return r, statusCmd(fmt.Sprintf("Load failed: %v", msg.err), true)
		}
		r.board = msg.board
		r.lanes = nil
		if r.board != nil {
			r.lanes = timeline.Lanes(timeline.GroupRows(r.board.Rows))
		}
		r.cursor = clamp(r.cursor, 0, len(r.lanes))
		r.itemCursor = clamp(r.itemCursor, 0, max(0, len(r.items())-1))
		return r, nil

	case tea.KeyMsg:
		if r.board == nil {
			return r, nil
		}
		if r.viewingItems {
			return r.updateItemView(msg)
		}
		return r.updateRowList(msg)
	}
	return r, nil
}

func (r rowsModel) selectedRow() (timeline.Row, bool) {
	if r.cursor < len(r.lanes) {
		return r.lanes[r.cursor], true
	}
	return timeline.Row{}, false
}

// items lists the milestones then pinpoints of the lane under the cursor.
func (r rowsModel) items() []listItem {
	if r.board == nil {
		return nil
	}
	ms := timeline.IndexMilestones(r.board.Milestones, r.board.Rows)
	ps := timeline.IndexPinpoints(r.board.Pinpoints, r.board.Rows)

	var mlist []timeline.Milestone
	var plist []timeline.Pinpoint
	if row, ok := r.selectedRow(); ok {
		mlist, plist = ms.ForRow(row.ID), ps.ForRow(row.ID)
	} else {
		mlist, plist = ms.Unassigned(), ps.Unassigned()
	}

	var out []listItem
	for _, m := range mlist {
		out = append(out, listItem{kind: timeline.KindMilestone, milestone: m})
	}
	for _, p := range plist {
		out = append(out, listItem{kind: timeline.KindPinpoint, pinpoint: p})
	}
	return out
}

func (r rowsModel) updateRowList(msg tea.KeyMsg) (rowsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if r.cursor > 0 {
			r.cursor--
		}
	case key.Matches(msg, keys.Down):
		if r.cursor < len(r.lanes) {
			r.cursor++
		}
	case key.Matches(msg, keys.Enter):
		r.viewingItems = true
		r.itemCursor = 0
	case key.Matches(msg, keys.New):
		return r.showNewForm("")
	case key.Matches(msg, keys.Edit):
		if row, ok := r.selectedRow(); ok {
			return r.showEditRowForm(row)
		}
	case key.Matches(msg, keys.Delete):
		if row, ok := r.selectedRow(); ok {
			if err := r.store.DeleteRow(row.ID); err != nil {
				r.log.Error("delete row", "row", row.ID, "err", err)
				return r, statusCmd(fmt.Sprintf("Delete failed: %v", err), true)
			}
			r.log.Info("row deleted", "row", row.ID)
			id := row.ID
			return r, tea.Batch(r.refresh(), statusCmd("Row deleted", false), func() tea.Msg { return rowDeletedMsg{id: id} })
		}
	}
	return r, nil
}

func (r rowsModel) updateItemView(msg tea.KeyMsg) (rowsModel, tea.Cmd) {
	items := r.items()
	switch {
	case key.Matches(msg, keys.Back):
		r.viewingItems = false
	case key.Matches(msg, keys.Up):
		if r.itemCursor > 0 {
			r.itemCursor--
		}
	case key.Matches(msg, keys.Down):
		if r.itemCursor < len(items)-1 {
			r.itemCursor++
		}
	case key.Matches(msg, keys.New):
		row := ""
		if lane, ok := r.selectedRow(); ok {
			row = lane.ID
		}
		return r.showNewForm(row)
	case key.Matches(msg, keys.Status):
		if r.itemCursor < len(items) && items[r.itemCursor].kind == timeline.KindMilestone {
			m := items[r.itemCursor].milestone
			next := nextStatus(m.Status)
			if err := r.store.SetMilestoneStatus(m.ID, next); err != nil {
				r.log.Error("set status", "milestone", m.ID, "err", err)
				return r, statusCmd(fmt.Sprintf("Status change failed: %v", err), true)
			}
			return r, r.refresh()
		}
	case key.Matches(msg, keys.Delete):
		if r.itemCursor >= len(items) {
			return r, nil
		}
		it := items[r.itemCursor]
		var err error
		if it.kind == timeline.KindMilestone {
			err = r.store.DeleteMilestone(it.milestone.ID)
		} else {
			err = r.store.DeletePinpoint(it.pinpoint.ID)
		}
		if err != nil {
			r.log.Error("delete item", "kind", it.kind, "err", err)
			return r, statusCmd(fmt.Sprintf("Delete failed: %v", err), true)
		}
		return r, tea.Batch(r.refresh(), statusCmd("Deleted", false))
	}
	return r, nil
}

// nextStatus cycles through the statuses in declaration order.
func nextStatus(s timeline.Status) timeline.Status {
	for i, st := range timeline.Statuses {
		if st == s {
			return timeline.Statuses[(i+1)%len(timeline.Statuses)]
		}
	}
	return timeline.StatusPlanned
}

// --- Forms ---

func colorOptions() []huh.Option[string] {
	out := make([]huh.Option[string], len(rowColors))
	for i, c := range rowColors {
		out[i] = huh.NewOption(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("●")+" "+c, c)
	}
	return out
}

func validateDay(s string) error {
	_, err := parseDay(strings.TrimSpace(s))
	return err
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// showNewForm opens the create form. A non-empty row preselects the lane.
func (r rowsModel) showNewForm(row string) (rowsModel, tea.Cmd) {
	today := timeline.Truncate(nowFunc())
	bound := r.board.Project.Bound(today)
	if !bound.Contains(today) {
		today = bound.Start
	}
	*r.fields = itemForm{
		kind:   string(timeline.KindMilestone),
		color:  rowColors[0],
		row:    row,
		start:  formatDay(today),
		end:    formatDay(today.AddDate(0, 0, 7)),
		date:   formatDay(today),
		status: string(timeline.StatusPlanned),
	}
	f := r.fields

	kinds := []huh.Option[string]{
		huh.NewOption("Milestone", string(timeline.KindMilestone)),
	}
	if len(r.lanes) > 0 {
		kinds = append(kinds, huh.NewOption("Pinpoint", string(timeline.KindPinpoint)))
	}
	kinds = append(kinds, huh.NewOption("Row", kindRow))

	parents := []huh.Option[string]{huh.NewOption("(top level)", "")}
	milestoneRows := []huh.Option[string]{huh.NewOption("Unassigned", "")}
	var pinRows []huh.Option[string]
	for _, lane := range r.lanes {
		if lane.IsTopLevel() {
			parents = append(parents, huh.NewOption(lane.Name, lane.ID))
		}
		milestoneRows = append(milestoneRows, huh.NewOption(lane.Name, lane.ID))
		pinRows = append(pinRows, huh.NewOption(lane.Name, lane.ID))
	}

	statuses := make([]huh.Option[string], len(timeline.Statuses))
	for i, s := range timeline.Statuses {
		statuses[i] = huh.NewOption(string(s), string(s))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[string]().Title("Kind").Options(kinds...).Value(&f.kind),
		),
		huh.NewGroup(
			huh.NewInput().Title("Row name").Validate(validateName).Value(&f.name),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(&f.color),
			huh.NewSelect[string]().Title("Parent").Options(parents...).Value(&f.parent),
		).WithHideFunc(func() bool { return f.kind != kindRow }),
		huh.NewGroup(
			huh.NewInput().Title("Milestone name").Validate(validateName).Value(&f.name),
			huh.NewInput().Title("Start (YYYY-MM-DD)").Validate(validateDay).Value(&f.start),
			huh.NewInput().Title("End (YYYY-MM-DD)").Validate(validateDay).Value(&f.end),
			huh.NewSelect[string]().Title("Status").Options(statuses...).Value(&f.status),
			huh.NewSelect[string]().Title("Row").Options(milestoneRows...).Value(&f.row),
		).WithHideFunc(func() bool { return f.kind != string(timeline.KindMilestone) }),
	}
	if len(pinRows) > 0 {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Pinpoint name").Validate(validateName).Value(&f.name),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Validate(validateDay).Value(&f.date),
			huh.NewSelect[string]().Title("Row").Options(pinRows...).Value(&f.row),
			huh.NewInput().Title("Description").Value(&f.desc),
		).WithHideFunc(func() bool { return f.kind != string(timeline.KindPinpoint) }))
	}

	r.form = huh.NewForm(groups...).WithShowHelp(true).WithShowErrors(true)
	r.formType = formNew
	r.formActive = true
	return r, r.form.Init()
}

func (r rowsModel) showEditRowForm(row timeline.Row) (rowsModel, tea.Cmd) {
	*r.fields = itemForm{name: row.Name, color: row.Color}
	if r.fields.color == "" {
		r.fields.color = rowColors[0]
	}
	f := r.fields
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Row name").Validate(validateName).Value(&f.name),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(&f.color),
		),
	).WithShowHelp(true).WithShowErrors(true)
	r.formType = formRow
	r.editingID = row.ID
	r.formActive = true
	return r, r.form.Init()
}

func (r rowsModel) updateForm(msg tea.Msg) (rowsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		r.formActive = false
		r.form = nil
		return r, nil
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}
	if r.form.State != huh.StateCompleted {
		return r, cmd
	}

	r.formActive = false
	if err := r.submit(); err != nil {
		r.log.Error("save form", "type", r.formType, "kind", r.fields.kind, "err", err)
		return r, statusCmd(fmt.Sprintf("Save failed: %v", err), true)
	}
	return r, tea.Batch(r.refresh(), statusCmd("Saved", false))
}

// submit writes the completed form to the store.
func (r rowsModel) submit() error {
	f := r.fields
	name := strings.TrimSpace(f.name)
	if r.formType == formRow {
		return r.store.UpdateRow(r.editingID, name, f.color)
	}

	switch f.kind {
	case kindRow:
		var parent *string
		if f.parent != "" {
			parent = &f.parent
		}
		_, err := r.store.CreateRow(r.projectID, name, f.color, parent)
		return err
	case string(timeline.KindPinpoint):
		date, err := parseDay(f.date)
		if err != nil {
			return err
		}
		row := f.row
		if row == "" && len(r.lanes) > 0 {
			row = r.lanes[0].ID
		}
		_, err = r.store.CreatePinpoint(r.projectID, row, date, name, "", strings.TrimSpace(f.desc))
		return err
	default:
		start, err := parseDay(f.start)
		if err != nil {
			return err
		}
		end, err := parseDay(f.end)
		if err != nil {
			return err
		}
		var row *string
		if f.row != "" {
			row = &f.row
		}
		_, err = r.store.CreateMilestone(r.projectID, row, name, start, end, timeline.Status(f.status), "")
		return err
	}
}

// --- Rendering ---

func (r rowsModel) view() string {
	w := r.width - 4
	if r.formActive && r.form != nil {
		title := titleStyle.Render("New Item")
		if r.formType == formRow {
			title = titleStyle.Render("Edit Row")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", r.form.View()))
	}
	if r.board == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Rows"), "", mutedStyle.Render("No project selected. Press 4 to create or pick one.")))
	}
	if r.viewingItems {
		return r.renderItems()
	}
	return r.renderRowList()
}

func (r rowsModel) renderRowList() string {
	w := r.width - 4
	ms := timeline.IndexMilestones(r.board.Milestones, r.board.Rows)
	ps := timeline.IndexPinpoints(r.board.Pinpoints, r.board.Rows)

	rows := []string{
		titleStyle.Render(r.board.Project.Name + " - Rows"),
		"",
		mutedStyle.Render(fmt.Sprintf("  %-3s %-28s %10s %10s", "", "Row", "Milestones", "Pinpoints")),
	}
	line := func(i int, dot, name string, nm, np int) string {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		return style.Render(cursor) + dot + style.Render(fmt.Sprintf(" %-28s %10d %10d", truncate(name, 28), nm, np))
	}
	for i, lane := range r.lanes {
		dot := colorStyle(lane.Color, colorMuted).Render("●")
		name := lane.Name
		if !lane.IsTopLevel() {
			name = "  └ " + lane.Name
		}
		rows = append(rows, line(i, dot, name, ms.Count(lane.ID), ps.Count(lane.ID)))
	}
	rows = append(rows, line(len(r.lanes), unassignedStyle.Render("○"), "Unassigned",
		len(ms.Unassigned()), len(ps.Unassigned())))

	rows = append(rows, "", mutedStyle.Render("  n: new  u: edit row  x: delete row  enter: items"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (r rowsModel) renderItems() string {
	w := r.width - 4
	title := "Unassigned"
	if row, ok := r.selectedRow(); ok {
		title = row.Name
	}
	rows := []string{titleStyle.Render(title + " - Items"), ""}

	items := r.items()
	if len(items) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing here. Press n to add an item."))
	}
	for i, it := range items {
		cursor := "  "
		style := normalItemStyle
		if i == r.itemCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		var text string
		if it.kind == timeline.KindMilestone {
			m := it.milestone
			status := colorStyle("", statusColors[string(m.Status)]).Render(fmt.Sprintf("%-12s", m.Status))
			text = style.Render(fmt.Sprintf("%s▬ %-24s %-26s ", cursor, truncate(m.Name, 24), formatRange(m.Start, m.End))) + status
		} else {
			p := it.pinpoint
			text = style.Render(fmt.Sprintf("%s◆ %-24s %-26s ", cursor, truncate(p.Name, 24), formatDay(p.Date))) + mutedStyle.Render(p.Description)
		}
		rows = append(rows, text)
	}

	rows = append(rows, "", mutedStyle.Render("  n: new  s: cycle status  x: delete  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
