package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/trainr/internal/ledger"
)

var (
	colorBrand     = lipgloss.Color("#6C63FF")
	colorWork      = lipgloss.Color("#FF6B6B")
	colorRest      = lipgloss.Color("#2EC4B6")
	colorDone      = lipgloss.Color("#2ECC71")
	colorHold      = lipgloss.Color("#F39C12") // paused sessions and targets still short
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorMuted     = lipgloss.Color("#666666")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// typeColors keeps an entry type the same color in every chart and list.
var typeColors = map[ledger.EntryType]lipgloss.Color{
	ledger.TypeWorkout:    colorWork,
	ledger.TypeNutrition:  colorHold,
	ledger.TypeMental:     colorBrand,
	ledger.TypeRecovery:   colorRest,
	ledger.TypeAssessment: colorHighlight,
}

func typeStyle(t ledger.EntryType) lipgloss.Style {
	c, ok := typeColors[t]
	if !ok {
		c = colorFg
	}
	return lipgloss.NewStyle().Foreground(c)
}

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 2)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)
	// the panel holding a live session
	activePanelStyle = panelStyle.BorderForeground(colorBrand)

	// Session countdown, by state.
	countdownStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Align(lipgloss.Center)
	countdownRunningStyle = countdownStyle.Foreground(colorDone)
	countdownPausedStyle  = countdownStyle.Foreground(colorHold)

	exercisePhaseStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWork)
	restPhaseStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorRest)

	// Weekly target bars.
	targetMetStyle   = lipgloss.NewStyle().Foreground(colorDone)
	targetShortStyle = lipgloss.NewStyle().Foreground(colorHold)
	emptyBarStyle    = lipgloss.NewStyle().Foreground(colorSubtle)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	subtitleStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle    = lipgloss.NewStyle().Foreground(colorWork)
	successStyle   = lipgloss.NewStyle().Foreground(colorDone)
	warningStyle   = lipgloss.NewStyle().Foreground(colorHold)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)
)
