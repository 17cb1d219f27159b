package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/trainr/internal/catalog"
	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/service"
)

type settingsModel struct {
	svc    *service.Service
	width  int
	height int

	data       settingsDataMsg
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	programStart *string
	weekStart    *string
}

type settingsDataMsg struct {
	programStart string // empty until set
	weekStart    time.Weekday
	week, day    int
}

func newSettingsModel(svc *service.Service) settingsModel {
	ps, ws := "", ""
	return settingsModel{
		svc:          svc,
		programStart: &ps,
		weekStart:    &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		msg := settingsDataMsg{weekStart: s.svc.WeekStart()}
		if start, ok := s.svc.ProgramStart(); ok {
			msg.programStart = start.Format(ledger.DateLayout)
		}
		msg.week, msg.day = s.svc.ProgramDay(s.svc.Now())
		return msg
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.data = msg
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.EditSettings):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.programStart = s.data.programStart
	if *s.programStart == "" {
		*s.programStart = s.svc.Now().Format(ledger.DateLayout)
	}
	*s.weekStart = strings.ToLower(s.data.weekStart.String())

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Program start (YYYY-MM-DD)").
				Description("First day of week 1").
				Value(s.programStart).
				Validate(validateDate),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("Program"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save(*s.programStart, *s.weekStart)
	}

	return s, cmd
}

func (s settingsModel) save(programStart, weekStart string) tea.Cmd {
	return func() tea.Msg {
		start, err := time.ParseInLocation(ledger.DateLayout, strings.TrimSpace(programStart), time.Local)
		if err != nil {
			return statusMsg{text: "Invalid program start: " + err.Error(), isError: true}
		}
		if err := s.svc.SetProgramStart(start); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		day := time.Monday
		if weekStart == "sunday" {
			day = time.Sunday
		}
		if err := s.svc.SetWeekStart(day); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return dataChangedMsg{status: "Settings saved"}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	start := s.data.programStart
	if start == "" {
		start = mutedStyle.Render("not set (week 1 until configured)")
	} else {
		start = highlightStyle.Render(start)
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(20).Render(label), value)
	}
	rows := []string{
		title,
		"",
		row("Program start", start),
		row("Week starts on", highlightStyle.Render(s.data.weekStart.String())),
		row("Program position", highlightStyle.Render(fmt.Sprintf("week %d of %d, day %d", s.data.week, catalog.ProgramWeeks, s.data.day))),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
