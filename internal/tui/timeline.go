package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	zone "github.com/lrstanley/bubblezone"

	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
)

// Layout of the timeline panel in view-local cells.
const (
	panelInsetX = 3               // border + horizontal padding
	panelInsetY = 2               // border + vertical padding
	laneTop     = panelInsetY + 2 // title and ruler lines
	panelChrome = 8               // lines outside the lanes: insets, title, ruler, gap, hint

	trackZone = "timeline-track"
)

type hitKind int

const (
	hitNone hitKind = iota
	hitBody
	hitLeft
	hitRight
	hitMarker
)

// hit is what owns one track cell in a lane.
type hit struct {
	kind hitKind
	id   string
}

type timelineModel struct {
	store     *store.Store
	committer timeline.Committer
	log       *log.Logger
	zones     *zone.Manager
	now       func() time.Time

	width      int
	height     int
	top        int // screen row where the view starts
	labelWidth int

	projectID string
	board     *store.Board
	tree      *timeline.RowTree
	groups    []timeline.RowGroup
	lanes     []timeline.Row
	ctrl      *timeline.Controller
	tol       timeline.Tolerance

	draggingRow string // top-level row being reordered from its label
	hover       int    // lane under the pointer during a gesture, -1 for none
	scroll      int
	err         error
}

func newTimelineModel(s *store.Store, opts Options) timelineModel {
	t := timelineModel{
		store:      s,
		committer:  s,
		log:        opts.logger(),
		zones:      opts.Zones,
		now:        nowFunc,
		labelWidth: opts.LabelWidth,
		projectID:  opts.ProjectID,
		tol:        opts.Tolerance,
		hover:      -1,
	}
	if t.labelWidth <= 0 {
		t.labelWidth = 22
	}
	t.ctrl = timeline.NewController(timeline.DefaultBound(t.now()), t.tol)
	return t
}

func (t *timelineModel) setSize(w, h int) {
	t.width = w
	t.height = h
	t.scroll = clamp(t.scroll, 0, max(0, t.laneCount()-t.visibleLanes()))
}

// setTop records the screen row of the view so pointer events can be
// translated to view-local coordinates.
func (t *timelineModel) setTop(y int) { t.top = y }

// setProject switches to another project. The board arrives with the next
// refresh.
func (t *timelineModel) setProject(id string) {
	t.projectID = id
	t.ctrl.Selection.Clear()
	t.scroll = 0
}

func (t timelineModel) refresh() tea.Cmd {
	id := t.projectID
	s := t.store
	return func() tea.Msg {
		if id == "" {
			return boardMsg{}
		}
		b, err := s.LoadBoard(id)
		return boardMsg{board: b, err: err}
	}
}

// commit persists cmds in order and reports the outcome as a message.
func (t timelineModel) commit(cmds ...timeline.PendingCommand) tea.Cmd {
	c := t.committer
	return func() tea.Msg {
		for _, cmd := range cmds {
			if err := c.Commit(cmd); err != nil {
				return commitFailedMsg{cmd: cmd, err: err}
			}
		}
		return committedMsg{cmds: cmds}
	}
}

func (t *timelineModel) setBoard(b *store.Board) {
	t.board = b
	t.tree = nil
	if b != nil {
		t.tree = timeline.NewRowTree(b.Rows)
	}
	t.regroup()
}

// regroup derives lanes from the row tree and refreshes the bound.
func (t *timelineModel) regroup() {
	t.groups = nil
	t.lanes = nil
	if t.board == nil {
		return
	}
	t.groups = t.tree.Groups()
	t.lanes = timeline.Lanes(t.groups)
	if err := t.ctrl.SetBound(t.board.Project.Bound(t.now())); err != nil {
		t.log.Debug("bound kept during gesture", "project", t.board.Project.ID)
	}
	t.scroll = clamp(t.scroll, 0, max(0, t.laneCount()-t.visibleLanes()))
}

// apply runs cmds against a copy of the board so views holding the old
// pointer never see a half-applied change. Row commands update the tree in
// place.
func (t *timelineModel) apply(cmds ...timeline.PendingCommand) {
	b := *t.board
	for _, cmd := range cmds {
		b.Rows = cmd.ApplyRows(b.Rows)
		b.Milestones = cmd.ApplyMilestones(b.Milestones)
		b.Pinpoints = cmd.ApplyPinpoints(b.Pinpoints)
	}
	t.board = &b
	for _, cmd := range cmds {
		if cmd.Kind != timeline.KindRow {
			continue
		}
		for _, r := range b.Rows {
			if r.ID != cmd.ItemID {
				continue
			}
			if err := t.tree.Upsert(r); err != nil {
				t.log.Warn("row tree", "row", r.ID, "err", err)
			}
		}
	}
	t.regroup()
}

// removeRow drops a deleted row and its children ahead of the reload.
// Their milestones fall back to the unassigned lane.
func (t *timelineModel) removeRow(id string) {
	if t.board == nil {
		return
	}
	t.tree.Remove(id)
	b := *t.board
	b.Rows = nil
	for _, r := range t.board.Rows {
		if _, ok := t.tree.Get(r.ID); ok {
			b.Rows = append(b.Rows, r)
		}
	}
	t.board = &b
	t.regroup()
}

func (t timelineModel) update(msg tea.Msg) (timelineModel, tea.Cmd) {
	switch msg := msg.(type) {
	case boardMsg:
		t.err = msg.err
		if msg.err != nil {
			t.log.Error("load board", "project", t.projectID, "err", msg.err)
			return t, nil
		}
		if msg.board != nil {
			if err := timeline.ValidateHierarchy(msg.board.Rows); err != nil {
				t.log.Warn("row hierarchy", "project", msg.board.Project.ID, "err", err)
			}
		}
		t.setBoard(msg.board)
		return t, nil

	case rowDeletedMsg:
		t.removeRow(msg.id)
		return t, t.refresh()

	case committedMsg:
		for _, cmd := range msg.cmds {
			t.log.Info("committed", "kind", cmd.Kind, "id", cmd.ItemID)
		}
		return t, statusCmd("Saved", false)

	case commitFailedMsg:
		t.log.Error("commit failed", "kind", msg.cmd.Kind, "id", msg.cmd.ItemID, "err", msg.err)
		return t, tea.Batch(t.refresh(), statusCmd(fmt.Sprintf("Save failed: %v", msg.err), true))

	case tea.MouseMsg:
		return t.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Delete):
			return t.deleteSelected()
		case key.Matches(msg, keys.Back):
			t.ctrl.Selection.Clear()
		case key.Matches(msg, keys.Reload):
			return t, t.refresh()
		case key.Matches(msg, keys.Up):
			t.scroll = max(0, t.scroll-1)
		case key.Matches(msg, keys.Down):
			t.scroll = min(max(0, t.laneCount()-t.visibleLanes()), t.scroll+1)
		}
	}
	return t, nil
}

func (t timelineModel) deleteSelected() (timelineModel, tea.Cmd) {
	id, ok := t.ctrl.Selection.Active()
	if !ok || t.board == nil {
		return t, nil
	}
	t.ctrl.Selection.Clear()
	b := *t.board
	b.Pinpoints = nil
	for _, p := range t.board.Pinpoints {
		if p.ID != id {
			b.Pinpoints = append(b.Pinpoints, p)
		}
	}
	t.setBoard(&b)

	s := t.store
	return t, func() tea.Msg {
		if err := s.DeletePinpoint(id); err != nil {
			return commitFailedMsg{cmd: timeline.PendingCommand{Kind: timeline.KindPinpoint, ItemID: id}, err: err}
		}
		return statusMsg{text: "Pinpoint deleted"}
	}
}

// --- Pointer handling ---

func (t timelineModel) handleMouse(msg tea.MouseMsg) (timelineModel, tea.Cmd) {
	if t.board == nil {
		return t, nil
	}
	p := timeline.Point{X: msg.X, Y: msg.Y - t.top}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			return t.press(p)
		case tea.MouseButtonWheelUp:
			t.scroll = max(0, t.scroll-1)
		case tea.MouseButtonWheelDown:
			t.scroll = min(max(0, t.laneCount()-t.visibleLanes()), t.scroll+1)
		}
	case tea.MouseActionMotion:
		if t.draggingRow != "" || t.ctrl.Active() {
			t.hover = -1
			if idx, _, ok := t.laneAt(p.Y); ok {
				t.hover = idx
			}
			t.ctrl.Move(p)
		}
	case tea.MouseActionRelease:
		return t.release(p)
	}
	return t, nil
}

func (t timelineModel) press(p timeline.Point) (timelineModel, tea.Cmd) {
	idx, row, ok := t.laneAt(p.Y)
	if !ok {
		return t, nil
	}
	rect := t.trackRect()

	// A row drag and a controller session never run together.
	if t.draggingRow != "" {
		t.log.Warn("session rejected", "row", t.draggingRow, "err", timeline.ErrSessionActive)
		return t, nil
	}

	if p.X < rect.Left {
		if p.X >= panelInsetX && row != nil && row.IsTopLevel() {
			if t.ctrl.Active() {
				t.log.Warn("row drag rejected", "row", row.ID, "err", timeline.ErrSessionActive)
				return t, nil
			}
			t.draggingRow = row.ID
			t.hover = idx
		}
		return t, nil
	}
	if p.X > rect.Left+rect.Width {
		return t, nil
	}

	ms, ps := t.placements()
	h := t.laneHits(row, ms, ps)[p.X-rect.Left]

	var err error
	switch h.kind {
	case hitLeft, hitRight, hitBody:
		m, found := findMilestone(t.board.Milestones, h.id)
		if !found {
			return t, nil
		}
		switch h.kind {
		case hitLeft:
			_, err = t.ctrl.BeginResize(m, timeline.Left, p, rect)
		case hitRight:
			_, err = t.ctrl.BeginResize(m, timeline.Right, p, rect)
		default:
			_, err = t.ctrl.BeginMove(m, p, rect)
		}
	case hitMarker:
		pin, found := findPinpoint(t.board.Pinpoints, h.id)
		if !found {
			return t, nil
		}
		_, err = t.ctrl.BeginPointMove(pin, p, rect)
	default:
		return t, nil
	}
	if err != nil {
		t.log.Warn("session rejected", "item", h.id, "err", err)
		return t, nil
	}
	t.hover = idx
	return t, nil
}

func (t timelineModel) release(p timeline.Point) (timelineModel, tea.Cmd) {
	t.hover = -1

	if t.draggingRow != "" {
		dragged := t.draggingRow
		t.draggingRow = ""
		idx, _, ok := t.laneAt(p.Y)
		if !ok {
			return t, nil
		}
		target, ok := t.groupParentAt(idx)
		if !ok {
			return t, nil
		}
		cmds, err := timeline.SwapOrder(t.board.Rows, dragged, target)
		if err != nil {
			t.log.Warn("row reorder rejected", "row", dragged, "target", target, "err", err)
			return t, nil
		}
		if len(cmds) == 0 {
			return t, nil
		}
		t.apply(cmds...)
		return t, t.commit(cmds...)
	}

	if !t.ctrl.Active() {
		return t, nil
	}
	cmd, ok := t.ctrl.Release(p, t.dropTarget(p))
	if !ok {
		return t, nil
	}
	t.apply(cmd)
	return t, t.commit(cmd)
}

// dropTarget is the droppable row under p. The unassigned lane is not a
// drop target.
func (t timelineModel) dropTarget(p timeline.Point) *string {
	rect := t.trackRect()
	if p.X < panelInsetX || p.X > rect.Left+rect.Width {
		return nil
	}
	_, row, ok := t.laneAt(p.Y)
	if !ok || row == nil {
		return nil
	}
	id := row.ID
	return &id
}

// --- Layout ---

func (t timelineModel) cells() int {
	return max(10, t.width-8-t.labelWidth-1)
}

// laneCount includes the trailing unassigned lane.
func (t timelineModel) laneCount() int {
	if t.tree == nil {
		return 1
	}
	return t.tree.Len() + 1
}

func (t timelineModel) visibleLanes() int {
	return clamp(t.height-panelChrome, 1, t.laneCount())
}

// trackRect is the container rectangle in view-local cells. When the track
// zone has been scanned its origin is taken from there.
func (t timelineModel) trackRect() timeline.Rect {
	rect := timeline.TrackRect(panelInsetX+t.labelWidth+1, laneTop, t.cells(), t.visibleLanes())
	if t.zones != nil {
		if z := t.zones.Get(trackZone); z != nil && !z.IsZero() {
			rect.Left = z.StartX
			rect.Top = z.StartY - t.top
		}
	}
	return rect
}

// laneAt resolves a view-local y to a lane index. The row is nil for the
// unassigned lane.
func (t timelineModel) laneAt(y int) (int, *timeline.Row, bool) {
	rel := y - laneTop
	if rel < 0 || rel >= t.visibleLanes() {
		return 0, nil, false
	}
	idx := t.scroll + rel
	if row, ok := timeline.LaneAt(t.groups, 1, idx); ok {
		return idx, &row, true
	}
	if idx == len(t.lanes) {
		return idx, nil, true
	}
	return 0, nil, false
}

// groupParentAt maps a lane to the top-level row of its group.
func (t timelineModel) groupParentAt(idx int) (string, bool) {
	off := 0
	for _, g := range t.groups {
		if idx < off+g.Size() {
			return g.Parent.ID, true
		}
		off += g.Size()
	}
	return "", false
}

// placements index the live preview so that rendering and hit-testing both
// see in-progress gestures.
func (t timelineModel) placements() (timeline.Placement[timeline.Milestone], timeline.Placement[timeline.Pinpoint]) {
	ms := t.ctrl.PreviewMilestones(t.board.Milestones)
	ps := t.ctrl.PreviewPinpoints(t.board.Pinpoints)
	return timeline.IndexMilestones(ms, t.board.Rows), timeline.IndexPinpoints(ps, t.board.Rows)
}

// laneHits lays out one lane's items over the track cells. Later items win
// overlapping cells and markers sit above bars.
func (t timelineModel) laneHits(row *timeline.Row, mp timeline.Placement[timeline.Milestone], pp timeline.Placement[timeline.Pinpoint]) []hit {
	var ms []timeline.Milestone
	var ps []timeline.Pinpoint
	if row == nil {
		ms, ps = mp.Unassigned(), pp.Unassigned()
	} else {
		ms, ps = mp.ForRow(row.ID), pp.ForRow(row.ID)
	}

	cells := t.cells()
	b := t.ctrl.Bound()
	out := make([]hit, cells)
	for _, m := range ms {
		sc := timeline.ColumnOf(b.PositionOf(m.Start), cells)
		ec := timeline.ColumnOf(b.PositionOf(m.End), cells)
		for c := sc; c <= ec; c++ {
			out[c] = hit{kind: hitBody, id: m.ID}
		}
		if ec-sc >= 2 {
			out[sc] = hit{kind: hitLeft, id: m.ID}
			out[ec] = hit{kind: hitRight, id: m.ID}
		}
	}
	for _, p := range ps {
		c := timeline.ColumnOf(timeline.MarkerPosition(p, b), cells)
		out[c] = hit{kind: hitMarker, id: p.ID}
	}
	return out
}

func findMilestone(items []timeline.Milestone, id string) (timeline.Milestone, bool) {
	for _, m := range items {
		if m.ID == id {
			return m, true
		}
	}
	return timeline.Milestone{}, false
}

func findPinpoint(items []timeline.Pinpoint, id string) (timeline.Pinpoint, bool) {
	for _, p := range items {
		if p.ID == id {
			return p, true
		}
	}
	return timeline.Pinpoint{}, false
}

// --- Rendering ---

func (t timelineModel) view() string {
	w := t.width - 4
	if t.board == nil {
		text := mutedStyle.Render("No project selected. Press 4 to create or pick one.")
		if t.err != nil {
			text = errorStyle.Render(fmt.Sprintf("Could not load project: %v", t.err))
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Timeline"), "", text))
	}

	mp, pp := t.placements()
	cells := t.cells()

	var labels, tracks []string
	end := min(t.laneCount(), t.scroll+t.visibleLanes())
	for idx := t.scroll; idx < end; idx++ {
		var row *timeline.Row
		if idx < len(t.lanes) {
			row = &t.lanes[idx]
		}
		labels = append(labels, t.renderLabel(idx, row))
		tracks = append(tracks, t.renderTrack(t.laneHits(row, mp, pp), mp, pp))
	}

	sep := strings.TrimSuffix(strings.Repeat(gridStyle.Render("│")+"\n", len(tracks)), "\n")
	track := strings.Join(tracks, "\n")
	if t.zones != nil {
		track = t.zones.Mark(trackZone, track)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(labels, "\n"), sep, track)

	ruler := strings.Repeat(" ", t.labelWidth) + gridStyle.Render("┬") + t.renderRuler(cells)
	hint := mutedStyle.Render("drag bar: move  drag ends: resize  drag label: reorder  x: delete marker  esc: clear")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, t.renderTitle(), ruler, body, "", hint),
	)
}

func (t timelineModel) renderTitle() string {
	b := t.ctrl.Bound()
	left := titleStyle.Render(t.board.Project.Name) + "  " + subtitleStyle.Render(formatRange(b.Start, b.End))

	var right string
	switch {
	case t.draggingRow != "":
		if r, ok := timeline.NewRowTree(t.board.Rows).Get(t.draggingRow); ok {
			right = highlightStyle.Render("Reordering " + r.Name)
		}
	default:
		if s, ok := t.ctrl.Resizing(); ok {
			right = highlightStyle.Render(fmt.Sprintf("Resizing %s edge: %s", s.Direction, formatRange(s.LiveStart, s.LiveEnd)))
		} else if s, ok := t.ctrl.Moving(); ok {
			start := s.Start.AddDate(0, 0, s.Preview())
			right = highlightStyle.Render("Moving to " + formatRange(start, start.Add(s.Duration())))
		} else if id, ok := t.ctrl.Selection.Active(); ok {
			if p, found := findPinpoint(t.board.Pinpoints, id); found {
				right = selectedMarkerStyle.Render("◆") + " " + normalItemStyle.Render(fmt.Sprintf("%s  %s", p.Name, formatDay(p.Date)))
				if p.Description != "" {
					right += mutedStyle.Render("  " + p.Description)
				}
			}
		}
	}
	gap := max(1, t.width-8-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (t timelineModel) renderRuler(cells int) string {
	b := t.ctrl.Bound()
	line := []rune(strings.Repeat(" ", cells))
	next := 0
	for _, ms := range b.MonthStarts() {
		c := timeline.ColumnOf(b.PositionOf(ms), cells)
		label := ms.Format("Jan")
		if ms.Month() == time.January || c == 0 {
			label = ms.Format("Jan 06")
		}
		if c < next || c+len(label) > cells {
			continue
		}
		copy(line[c:], []rune(label))
		next = c + len(label) + 1
	}
	out := mutedStyle.Render(string(line))
	if pos, ok := b.TodayPosition(t.now()); ok {
		c := timeline.ColumnOf(pos, cells)
		out = mutedStyle.Render(string(line[:c])) + todayStyle.Render("▼") + mutedStyle.Render(string(line[c+1:]))
	}
	return out
}

func (t timelineModel) renderLabel(idx int, row *timeline.Row) string {
	var text string
	style := normalItemStyle
	switch {
	case row == nil:
		text = "Unassigned"
		style = unassignedStyle
	case row.IsTopLevel():
		text = "▌" + row.Name
		style = colorStyle(row.Color, colorFg).Bold(true)
	default:
		text = " └ " + row.Name
		if idx+1 < len(t.lanes) && !t.lanes[idx+1].IsTopLevel() {
			text = " ├ " + row.Name
		}
	}

	if t.hover == idx && t.isDropLane(row) {
		style = dropTargetStyle
	}
	text = truncate(text, t.labelWidth)
	return style.Render(text) + strings.Repeat(" ", max(0, t.labelWidth-lipgloss.Width(text)))
}

// isDropLane reports whether the live gesture would land on row.
func (t timelineModel) isDropLane(row *timeline.Row) bool {
	if row == nil {
		return false
	}
	if t.draggingRow != "" {
		return row.IsTopLevel()
	}
	_, moving := t.ctrl.Moving()
	return moving
}

func (t timelineModel) renderTrack(hits []hit, mp timeline.Placement[timeline.Milestone], pp timeline.Placement[timeline.Pinpoint]) string {
	b := t.ctrl.Bound()
	cells := len(hits)

	grid := make(map[int]bool)
	for _, ms := range b.MonthStarts() {
		grid[timeline.ColumnOf(b.PositionOf(ms), cells)] = true
	}
	today := -1
	if pos, ok := b.TodayPosition(t.now()); ok {
		today = timeline.ColumnOf(pos, cells)
	}

	var sb strings.Builder
	for c, h := range hits {
		switch h.kind {
		case hitNone:
			switch {
			case c == today:
				sb.WriteString(todayStyle.Render("┊"))
			case grid[c]:
				sb.WriteString(gridStyle.Render("·"))
			default:
				sb.WriteByte(' ')
			}
		case hitMarker:
			p, _ := findPinpoint(t.board.Pinpoints, h.id)
			style := markerStyle
			if p.Color != "" {
				style = colorStyle(p.Color, colorAccent)
			}
			if t.ctrl.Selection.IsSelected(h.id) {
				style = selectedMarkerStyle
			}
			sb.WriteString(style.Render("◆"))
		default:
			m, _ := findMilestone(t.board.Milestones, h.id)
			style := colorStyle(m.Color, statusColors[string(m.Status)])
			glyph := "█"
			switch h.kind {
			case hitLeft:
				glyph = "▐"
				style = style.Inherit(handleStyle)
			case hitRight:
				glyph = "▌"
				style = style.Inherit(handleStyle)
			}
			sb.WriteString(style.Render(glyph))
		}
	}
	return sb.String()
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}
