package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// statusColors drive both the reports chart and the bar fallback color.
var statusColors = map[string]lipgloss.Color{
	"planned":     colorHighlight,
	"in_progress": colorWarning,
	"done":        colorSuccess,
	"blocked":     colorError,
}

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Timeline track
	gridStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	todayStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	handleStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true)

	markerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	selectedMarkerStyle = lipgloss.NewStyle().
				Foreground(colorWarning).
				Bold(true).
				Reverse(true)

	dropTargetStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true).
			Underline(true)

	unassignedStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)

// colorStyle renders in c, falling back to fallback for empty colors.
func colorStyle(c string, fallback lipgloss.Color) lipgloss.Style {
	if c == "" {
		return lipgloss.NewStyle().Foreground(fallback)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}
