package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/trainr/internal/catalog"
	"github.com/sadopc/trainr/internal/service"
	"github.com/sadopc/trainr/internal/session"
)

type workoutModel struct {
	svc    *service.Service
	width  int
	height int

	templates []catalog.WorkoutTemplate
	cursor    int

	snap   session.Snapshot
	active bool
	last   *session.Record
}

func newWorkoutModel(svc *service.Service) workoutModel {
	w := workoutModel{
		svc:       svc,
		templates: svc.Catalog().ListTemplates(),
	}
	if snap, ok := svc.CurrentSession(); ok {
		w.snap, w.active = snap, true
	}
	return w
}

func (w *workoutModel) setSize(width, height int) {
	w.width = width
	w.height = height
}

func (w workoutModel) update(msg tea.Msg) (workoutModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		w.snap = msg.snap
		w.active = !msg.snap.Phase.Terminal()
		return w, nil

	case sessionRecordedMsg:
		rec := msg.rec
		w.last = &rec
		return w, nil

	case tea.KeyMsg:
		if w.active {
			return w.updateActive(msg)
		}
		return w.updatePicker(msg)
	}
	return w, nil
}

func (w workoutModel) updatePicker(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if w.cursor > 0 {
			w.cursor--
		}
	case key.Matches(msg, keys.Down):
		if w.cursor < len(w.templates)-1 {
			w.cursor++
		}
	case key.Matches(msg, keys.StartSession), key.Matches(msg, keys.Enter):
		return w.start()
	}
	return w, nil
}

func (w workoutModel) updateActive(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.PauseSession):
		w.svc.ToggleSession()
	case key.Matches(msg, keys.SkipExercise):
		w.svc.SkipExercise()
	case key.Matches(msg, keys.EndSession):
		w.svc.StopSession()
	}
	return w, nil
}

func (w workoutModel) start() (workoutModel, tea.Cmd) {
	if len(w.templates) == 0 {
		return w, nil
	}
	tpl := w.templates[w.cursor]
	snap, err := w.svc.StartSession(tpl.ID)
	if err != nil {
		text := fmt.Sprintf("Error: %v", err)
		if errors.Is(err, session.ErrTemplateNotFound) {
			text = fmt.Sprintf("Template %q is no longer available", tpl.ID)
		}
		return w, func() tea.Msg { return statusMsg{text: text, isError: true} }
	}
	w.snap, w.active = snap, true
	return w, func() tea.Msg { return statusMsg{text: "Started " + tpl.Name} }
}

func (w workoutModel) view() string {
	if w.active {
		return w.renderSession()
	}
	return w.renderPicker()
}

func (w workoutModel) renderSession() string {
	width := w.width - 4
	s := w.snap
	title := titleStyle.Render(s.Template.Name)

	ex, _ := s.CurrentExercise()
	var clock, phaseLabel, detail string
	switch {
	case s.Paused:
		clock = countdownPausedStyle.Width(width - 6).Render(formatCountdown(s.Countdown))
		phaseLabel = warningStyle.Bold(true).Render("⏸  PAUSED")
	case s.Resting():
		clock = restPhaseStyle.Width(width - 6).Align(lipgloss.Center).Render(formatCountdown(s.Countdown))
		phaseLabel = restPhaseStyle.Render("REST")
	default:
		clock = exercisePhaseStyle.Width(width - 6).Align(lipgloss.Center).Render(formatCountdown(s.Countdown))
		phaseLabel = exercisePhaseStyle.Render("EXERCISE")
	}

	if s.Resting() {
		detail = mutedStyle.Render("Up next: ") + highlightStyle.Render(ex.Name) +
			mutedStyle.Render(fmt.Sprintf("  set %d/%d", s.CurrentSet, ex.Sets))
	} else {
		detail = highlightStyle.Render(ex.Name) + mutedStyle.Render(fmt.Sprintf("  set %d/%d", s.CurrentSet, ex.Sets))
		if ex.Reps != "" {
			detail += mutedStyle.Render("  reps: " + string(ex.Reps))
		}
	}

	rows := []string{title, "", clock, phaseLabel, "", detail}
	if !s.Resting() && ex.Instructions != "" {
		rows = append(rows, mutedStyle.Width(width-6).Align(lipgloss.Center).Render(ex.Instructions))
	}
	rows = append(rows,
		"",
		w.renderProgress(),
		mutedStyle.Render("elapsed "+formatSeconds(s.Elapsed)),
	)

	controls := mutedStyle.Render("space: pause/resume  n: skip  x: stop")
	return activePanelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, rows...), "", controls),
	)
}

// renderProgress draws one dot per planned set: done, skipped, current, pending.
func (w workoutModel) renderProgress() string {
	s := w.snap
	var parts []string
	for _, ce := range s.Completed {
		if ce.Skipped {
			parts = append(parts, warningStyle.Render("◌"))
		} else {
			parts = append(parts, successStyle.Render("●"))
		}
	}
	planned := s.Template.PlannedUnits()
	for i := len(s.Completed); i < planned; i++ {
		if i == len(s.Completed) && !s.Resting() {
			parts = append(parts, accentStyle.Render("◐"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", len(s.Completed), planned))
	return strings.Join(parts, " ") + counter
}

func (w workoutModel) renderPicker() string {
	width := w.width - 4
	rows := []string{titleStyle.Render("Choose a Workout"), ""}

	if len(w.templates) == 0 {
		rows = append(rows, mutedStyle.Render("No templates in the catalog."))
		return panelStyle.Width(width).Render(strings.Join(rows, "\n"))
	}

	for i, tpl := range w.templates {
		cursor := "  "
		style := normalItemStyle
		if i == w.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		meta := mutedStyle.Render(fmt.Sprintf("  %d exercises, %d sets, ~%d min",
			len(tpl.Exercises), tpl.PlannedUnits(), (tpl.TotalDuration+59)/60))
		rows = append(rows, style.Render(cursor+tpl.Name)+meta)
	}

	if w.cursor < len(w.templates) {
		tpl := w.templates[w.cursor]
		rows = append(rows, "", subtitleStyle.Render(tpl.Description))
		for _, ex := range tpl.Exercises {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-22s %dx %3ds  rest %ds", ex.Name, ex.Sets, ex.Duration, ex.RestTime)))
		}
	}

	if w.last != nil {
		rows = append(rows, "", w.renderLast())
	}

	rows = append(rows, "", mutedStyle.Render("  ↑/↓: choose  s/enter: start"))
	return panelStyle.Width(width).Render(strings.Join(rows, "\n"))
}

func (w workoutModel) renderLast() string {
	r := w.last
	status := successStyle.Render("✓ completed")
	if r.Status == session.StatusStopped {
		status = warningStyle.Render("■ stopped")
	}
	return fmt.Sprintf("Last: %s  %s  %d sets in %s",
		highlightStyle.Render(r.Name), status, r.CompletedCount, formatSeconds(r.ElapsedSeconds))
}
