package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/trainr/internal/export"
	"github.com/sadopc/trainr/internal/service"
	"github.com/sadopc/trainr/internal/session"
)

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON}

// App is the root Bubble Tea model.
type App struct {
	svc    *service.Service
	feed   *sessionFeed
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	workout   workoutModel
	log       logModel
	progress  progressModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(svc *service.Service) App {
	h := help.New()
	h.ShowAll = false

	a := App{
		svc:        svc,
		feed:       newSessionFeed(svc),
		activeView: viewDashboard,
		dashboard:  newDashboardModel(svc),
		workout:    newWorkoutModel(svc),
		log:        newLogModel(svc),
		progress:   newProgressModel(svc),
		settings:   newSettingsModel(svc),
		help:       h,
	}
	if snap, ok := svc.CurrentSession(); ok {
		a.dashboard, _ = a.dashboard.update(sessionMsg{snap: snap, open: true})
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.feed.next(),
		a.feed.nextRecorded(),
		a.dashboard.Init(),
		a.log.refresh(),
		a.settings.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.workout.setSize(a.width, contentHeight)
		a.log.setSize(a.width, contentHeight)
		a.progress.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.feed.close()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Dashboard):
			a.activeView = viewDashboard
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Workout):
			a.activeView = viewWorkout
			return a, nil
		case key.Matches(msg, keys.Log):
			a.activeView = viewLog
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Progress):
			a.activeView = viewProgress
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Settings):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.NextView):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case sessionMsg:
		if !msg.open {
			return a, nil
		}
		a.dashboard, _ = a.dashboard.update(msg)
		a.workout, _ = a.workout.update(msg)
		return a, a.feed.next()

	case sessionRecordedMsg:
		a.workout, _ = a.workout.update(msg)
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("Session not fully saved: %v", msg.err), true)
		} else {
			a.setStatus(recordedStatus(msg.rec), false)
		}
		return a, tea.Batch(a.feed.nextRecorded(), a.refreshAll())

	case dataChangedMsg:
		a.setStatus(msg.status, false)
		return a, a.refreshAll()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+strings.Join(msg.paths, ", "), false)
		a.exportPicking = false
		return a, nil

	// Data loads go to their owner whichever view is showing.
	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil
	case logDataMsg:
		var cmd tea.Cmd
		a.log, cmd = a.log.update(msg)
		return a, cmd
	case progressDataMsg:
		a.progress, _ = a.progress.update(msg)
		return a, nil
	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func recordedStatus(rec session.Record) string {
	if rec.Status == session.StatusCompleted {
		return fmt.Sprintf("%s complete: %d sets in %s", rec.Name, rec.CompletedCount, formatSeconds(rec.ElapsedSeconds))
	}
	return fmt.Sprintf("%s stopped after %s", rec.Name, formatSeconds(rec.ElapsedSeconds))
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewWorkout:
		a.workout, cmd = a.workout.update(msg)
	case viewLog:
		a.log, cmd = a.log.update(msg)
	case viewProgress:
		a.progress, cmd = a.progress.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewLog:
		return a.log.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewLog:
		return a.log.refresh()
	case viewProgress:
		return a.progress.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.dashboard.loadData(),
		a.log.refresh(),
		a.progress.refresh(),
		a.settings.refresh(),
	)
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewWorkout:
		content = a.workout.view()
	case viewLog:
		content = a.log.view()
	case viewProgress:
		content = a.progress.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := brandStyle.Render("trainr")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Session countdown in footer
	sessionInfo := ""
	if a.dashboard.isRunning() {
		sessionInfo = successStyle.Render(" ● " + formatCountdown(a.dashboard.countdown()))
		if a.dashboard.isPaused() {
			sessionInfo = warningStyle.Render(" ⏸ " + formatCountdown(a.dashboard.countdown()))
		}
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
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
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		dir := filepath.Join(home, "trainr-exports")
		paths, err := export.Write(dir, format, a.svc.AllEntries(), a.svc.History(), a.svc.Now())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{paths: paths}
	}
}
