package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/trainr/internal/analytics"
	"github.com/sadopc/trainr/internal/catalog"
	"github.com/sadopc/trainr/internal/history"
	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/service"
	"github.com/sadopc/trainr/internal/session"
)

const recentSessions = 5

type dashboardModel struct {
	svc    *service.Service
	width  int
	height int

	snap   session.Snapshot
	active bool

	data dashboardDataMsg
}

type dashboardDataMsg struct {
	week, day int
	today     []ledger.Entry
	rollup    analytics.Rollup
	streaks   []analytics.Streak
	stats     history.Stats
	recent    []session.Record
	unlocked  int
	total     int
}

func newDashboardModel(svc *service.Service) dashboardModel {
	return dashboardModel{svc: svc}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.active }
func (d dashboardModel) isPaused() bool  { return d.active && d.snap.Paused }
func (d dashboardModel) countdown() int  { return d.snap.Countdown }

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		now := d.svc.Now()
		week, day := d.svc.ProgramDay(now)

		records := d.svc.History()
		if len(records) > recentSessions {
			records = records[len(records)-recentSessions:]
		}

		msg := dashboardDataMsg{
			week:    week,
			day:     day,
			today:   d.svc.Entries(now, now),
			rollup:  d.svc.WeeklyRollup(week),
			streaks: d.svc.Streaks(),
			stats:   d.svc.HistoryStats(),
			recent:  records,
		}
		for _, a := range d.svc.Achievements() {
			msg.total++
			if a.Unlocked() {
				msg.unlocked++
			}
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.data = msg
		return d, nil

	case sessionMsg:
		d.snap = msg.snap
		d.active = !msg.snap.Phase.Terminal()
		return d, nil
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderSessionPanel(w),
		d.renderTodayPanel(w),
		d.renderWeekPanel(w),
		d.renderRecentPanel(w),
	)
}

func (d dashboardModel) renderSessionPanel(w int) string {
	program := mutedStyle.Render(fmt.Sprintf("Week %d of %d · Day %d", d.data.week, catalog.ProgramWeeks, d.data.day))

	if !d.active {
		content := lipgloss.JoinVertical(lipgloss.Center,
			countdownStyle.Width(w-6).Render("--:--"),
			mutedStyle.Render("■  NO SESSION"),
			mutedStyle.Render("Press 2 to pick a workout"),
			program,
		)
		return panelStyle.Width(w).Render(content)
	}

	s := d.snap
	ex, _ := s.CurrentExercise()
	clock := countdownRunningStyle.Width(w - 6).Render(formatCountdown(s.Countdown))
	indicator := successStyle.Render("●  " + s.Phase.String())
	switch {
	case s.Paused:
		clock = countdownPausedStyle.Width(w - 6).Render(formatCountdown(s.Countdown))
		indicator = warningStyle.Render("⏸  PAUSED")
	case s.Resting():
		indicator = restPhaseStyle.Render("●  REST")
	}
	line := highlightStyle.Render(s.Template.Name) + mutedStyle.Render(" / "+ex.Name)

	content := lipgloss.JoinVertical(lipgloss.Center,
		clock,
		indicator,
		line,
		program,
	)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	header := titleStyle.Render("Today")
	if len(d.data.today) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Nothing logged today"),
		))
	}

	rows := []string{header}
	for _, e := range d.data.today {
		mark := successStyle.Render("✓")
		if !e.Completed {
			mark = mutedStyle.Render("·")
		}
		dot := lipgloss.NewStyle().Foreground(typeColors[e.Type]).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %s %-10s %-24s %s", mark, dot, e.Type, e.Activity, mutedStyle.Render(measureSummary(e.Measures))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderWeekPanel(w int) string {
	r := d.data.rollup
	header := titleStyle.Render(fmt.Sprintf("Week %d", d.data.week)) +
		mutedStyle.Render(fmt.Sprintf("  %d/%d workouts · %d/%d achievements", r.CompletedWorkouts, r.TotalWorkouts, d.data.unlocked, d.data.total))

	barWidth := max(10, min(40, w-40))
	target := func(label string, tp analytics.TargetProgress, format string) string {
		return fmt.Sprintf("  %-10s %s %s", label, progressBar(tp.Percent(), barWidth),
			mutedStyle.Render(fmt.Sprintf(format+" / "+format, tp.Actual, tp.Target)))
	}
	rows := []string{
		header,
		target("Miles", r.Miles, "%.1f"),
		target("Swim h", r.SwimHours, "%.1f"),
		target("Strength", r.StrengthSessions, "%.0f"),
		target("Mental h", r.MentalHours, "%.1f"),
	}

	var streaks []string
	for _, s := range d.data.streaks {
		if s.Current > 0 {
			streaks = append(streaks, fmt.Sprintf("%s %d", s.Type, s.Current))
		}
	}
	if len(streaks) > 0 {
		rows = append(rows, "", "  "+accentStyle.Render("🔥 ")+strings.Join(streaks, "  "))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	st := d.data.stats
	title := titleStyle.Render("Recent Sessions") +
		mutedStyle.Render(fmt.Sprintf("  %d total · %d this week · avg %s",
			st.TotalSessions, st.SessionsLast7Days, formatDuration(st.AverageDuration)))

	if len(d.data.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet"),
		))
	}

	rows := []string{title}
	for i := len(d.data.recent) - 1; i >= 0; i-- {
		r := d.data.recent[i]
		status := successStyle.Render("✓")
		if r.Status == session.StatusStopped {
			status = warningStyle.Render("■")
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-22s %s  %d sets",
			status, r.StartedAt.Local().Format("Jan 02 15:04"), r.Name, formatSeconds(r.ElapsedSeconds), r.CompletedCount))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
