package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
)

type reportMode int

const (
	reportByStatus reportMode = iota
	reportByRow
)

// loadValue is the number of scheduled milestone-days of one series.
type loadValue struct {
	Name  string
	Color string
	Days  int
	Count int
}

// monthLoad is one bar of the chart: a calendar month clipped to the bound.
type monthLoad struct {
	Month  time.Time
	Values []loadValue
}

type reportsModel struct {
	store  *store.Store
	log    *log.Logger
	width  int
	height int

	projectID string
	board     *store.Board
	mode      reportMode
	loads     []monthLoad

	chart barchart.Model
}

func newReportsModel(s *store.Store, opts Options) reportsModel {
	return reportsModel{
		store:     s,
		log:       opts.logger(),
		projectID: opts.ProjectID,
		chart:     barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	if r.board != nil {
		r.buildChart()
	}
}

type reportsDataMsg struct {
	board *store.Board
	err   error
}

func (r reportsModel) refresh() tea.Cmd {
	id := r.projectID
	s := r.store
	return func() tea.Msg {
		if id == "" {
			return reportsDataMsg{}
		}
		b, err := s.LoadBoard(id)
		return reportsDataMsg{board: b, err: err}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.err != nil {
			r.log.Error("load report", "project", r.projectID, "err", msg.err)
			return r, nil
		}
		r.board = msg.board
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Mode):
			if r.mode == reportByStatus {
				r.mode = reportByRow
			} else {
				r.mode = reportByStatus
			}
			r.buildChart()
		case key.Matches(msg, keys.Reload):
			return r, r.refresh()
		}
	}
	return r, nil
}

// overlapDays counts the whole days shared by two inclusive ranges.
func overlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	s, e := aStart, aEnd
	if bStart.After(s) {
		s = bStart
	}
	if bEnd.Before(e) {
		e = bEnd
	}
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s)/timeline.Day) + 1
}

// seriesOf returns the series names and colors for mode, plus a function
// assigning each milestone to a series index.
func seriesOf(b *store.Board, mode reportMode) ([]loadValue, func(timeline.Milestone) int) {
	if mode == reportByStatus {
		series := make([]loadValue, len(timeline.Statuses))
		index := make(map[timeline.Status]int)
		for i, s := range timeline.Statuses {
			series[i] = loadValue{Name: string(s), Color: string(statusColors[string(s)])}
			index[s] = i
		}
		return series, func(m timeline.Milestone) int {
			if i, ok := index[m.Status]; ok {
				return i
			}
			return 0
		}
	}

	// Child rows roll up into their group.
	var series []loadValue
	group := make(map[string]int)
	for i, g := range timeline.GroupRows(b.Rows) {
		series = append(series, loadValue{Name: g.Parent.Name, Color: g.Parent.Color})
		for _, r := range g.Lanes() {
			group[r.ID] = i
		}
	}
	unassigned := len(series)
	series = append(series, loadValue{Name: "Unassigned", Color: string(colorMuted)})
	return series, func(m timeline.Milestone) int {
		if m.RowID != nil {
			if i, ok := group[*m.RowID]; ok {
				return i
			}
		}
		return unassigned
	}
}

// monthlyLoad buckets milestone-days per calendar month of the bound. Every
// month carries every series, in series order.
func monthlyLoad(b *store.Board, bound timeline.Bound, mode reportMode) []monthLoad {
	if b == nil {
		return nil
	}
	series, assign := seriesOf(b, mode)
	starts := bound.MonthStarts()

	out := make([]monthLoad, len(starts))
	for i, ms := range starts {
		end := bound.End
		if i+1 < len(starts) {
			end = starts[i+1].AddDate(0, 0, -1)
		}
		values := make([]loadValue, len(series))
		copy(values, series)
		for _, m := range b.Milestones {
			d := overlapDays(timeline.Truncate(m.Start), timeline.Truncate(m.End), ms, end)
			if d == 0 {
				continue
			}
			v := &values[assign(m)]
			v.Days += d
			v.Count++
		}
		out[i] = monthLoad{Month: ms, Values: values}
	}
	return out
}

// totals sums the monthly loads per series. Count is the number of distinct
// milestones, not the number of months they touch.
func totals(b *store.Board, bound timeline.Bound, mode reportMode, loads []monthLoad) []loadValue {
	if b == nil || len(loads) == 0 {
		return nil
	}
	series, assign := seriesOf(b, mode)
	for _, l := range loads {
		for i, v := range l.Values {
			series[i].Days += v.Days
		}
	}
	for _, m := range b.Milestones {
		if overlapDays(timeline.Truncate(m.Start), timeline.Truncate(m.End), bound.Start, bound.End) > 0 {
			series[assign(m)].Count++
		}
	}
	return series
}

func (r *reportsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	if r.board == nil {
		r.loads = nil
		return
	}
	r.loads = monthlyLoad(r.board, r.board.Project.Bound(nowFunc()), r.mode)

	bars := make([]barchart.BarData, 0, len(r.loads))
	for _, l := range r.loads {
		var values []barchart.BarValue
		for _, v := range l.Values {
			if v.Days == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  v.Name,
				Value: float64(v.Days),
				Style: colorStyle(v.Color, colorPrimary),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: l.Month.Format("Jan"), Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4
	if r.board == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Reports"), "", mutedStyle.Render("No project selected. Press 4 to create or pick one.")))
	}

	statusTab := inactiveTabStyle.Render("By status")
	rowTab := inactiveTabStyle.Render("By row")
	if r.mode == reportByStatus {
		statusTab = activeTabStyle.Render("By status")
	} else {
		rowTab = activeTabStyle.Render("By row")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, statusTab, rowTab)

	bound := r.board.Project.Bound(nowFunc())
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", mutedStyle.Render(formatRange(bound.Start, bound.End)),
	)

	sums := totals(r.board, bound, r.mode, r.loads)
	nav := mutedStyle.Render("  m: switch mode  r: reload")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", renderLegend(sums), "", renderTotals(sums, w), "", nav,
		),
	)
}

func renderTotals(sums []loadValue, w int) string {
	var active []loadValue
	for _, s := range sums {
		if s.Count > 0 {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return mutedStyle.Render("  No milestones in this range")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-22s %10s %10s", "Series", "Milestones", "Days")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 44))),
	}
	for _, s := range active {
		dot := colorStyle(s.Color, colorPrimary).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-20s %10d %10d", dot, truncate(s.Name, 20), s.Count, s.Days))
	}
	return strings.Join(rows, "\n")
}

func renderLegend(sums []loadValue) string {
	var items []string
	for _, s := range sums {
		if s.Days == 0 {
			continue
		}
		items = append(items, colorStyle(s.Color, colorPrimary).Render("●")+" "+s.Name)
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
