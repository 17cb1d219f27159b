package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/trainr/internal/analytics"
	"github.com/sadopc/trainr/internal/catalog"
	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/service"
)

type progressMode int

const (
	progressTargets progressMode = iota // program week against its targets
	progressDaily                       // minutes trained per calendar day
)

type progressModel struct {
	svc    *service.Service
	width  int
	height int

	mode   progressMode
	week   int // program week shown in targets mode
	offset int // calendar weeks back from the current one in daily mode

	data  progressDataMsg
	chart barchart.Model
}

type progressDataMsg struct {
	rollup       analytics.Rollup
	days         []time.Time
	daily        []ledger.Entry
	streaks      []analytics.Streak
	trends       []analytics.Trend
	records      []analytics.PersonalRecord
	achievements []analytics.Achievement
}

func newProgressModel(svc *service.Service) progressModel {
	return progressModel{
		svc:   svc,
		week:  svc.CurrentWeek(),
		chart: barchart.New(60, 12),
	}
}

func (p *progressModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p progressModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := p.dateRange()
		var days []time.Time
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}
		return progressDataMsg{
			rollup:       p.svc.WeeklyRollup(p.week),
			days:         days,
			daily:        p.svc.Entries(from, to),
			streaks:      p.svc.Streaks(),
			trends:       p.svc.Trends(),
			records:      p.svc.PersonalRecords(),
			achievements: p.svc.Achievements(),
		}
	}
}

func (p progressModel) dateRange() (time.Time, time.Time) {
	from, to := p.svc.CalendarWeek(p.svc.Now())
	return from.AddDate(0, 0, -7*p.offset), to.AddDate(0, 0, -7*p.offset)
}

func (p progressModel) update(msg tea.Msg) (progressModel, tea.Cmd) {
	switch msg := msg.(type) {
	case progressDataMsg:
		p.data = msg
		p.buildChart()
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if p.mode == progressTargets {
				p.week = max(1, p.week-1)
			} else {
				p.offset++
			}
			return p, p.refresh()
		case key.Matches(msg, keys.Right):
			if p.mode == progressTargets {
				p.week = min(catalog.ProgramWeeks, p.week+1)
			} else if p.offset > 0 {
				p.offset--
			}
			return p, p.refresh()
		case key.Matches(msg, keys.Enter):
			if p.mode == progressTargets {
				p.mode = progressDaily
			} else {
				p.mode = progressTargets
			}
			p.offset = 0
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p *progressModel) buildChart() {
	chartWidth := max(p.width-8, 20)
	chartHeight := 12
	if p.height > 40 {
		chartHeight = 16
	}
	p.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	switch p.mode {
	case progressTargets:
		r := p.data.rollup
		for _, t := range []struct {
			label string
			tp    analytics.TargetProgress
		}{
			{"Miles", r.Miles},
			{"Swim h", r.SwimHours},
			{"Strength", r.StrengthSessions},
			{"Mental h", r.MentalHours},
		} {
			style := targetShortStyle
			if t.tp.Percent() >= 100 {
				style = targetMetStyle
			}
			bars = append(bars, barchart.BarData{
				Label:  t.label,
				Values: []barchart.BarValue{{Name: t.label, Value: min(t.tp.Percent(), 150), Style: style}},
			})
		}

	case progressDaily:
		for _, d := range p.data.days {
			date := d.Format(ledger.DateLayout)
			minutes := make(map[ledger.EntryType]float64)
			for _, e := range p.data.daily {
				if e.Date == date && e.Measures.Duration != nil {
					minutes[e.Type] += *e.Measures.Duration
				}
			}
			var values []barchart.BarValue
			for _, t := range ledger.Types {
				if v := minutes[t]; v > 0 {
					values = append(values, barchart.BarValue{
						Name:  string(t),
						Value: v,
						Style: typeStyle(t),
					})
				}
			}
			if len(values) == 0 {
				values = []barchart.BarValue{{Name: "", Value: 0, Style: emptyBarStyle}}
			}
			bars = append(bars, barchart.BarData{Label: d.Format("Mon 02"), Values: values})
		}
	}

	p.chart.PushAll(bars)
	p.chart.Draw()
}

func (p progressModel) view() string {
	w := p.width - 4

	targetsTab := inactiveTabStyle.Render("Targets")
	dailyTab := inactiveTabStyle.Render("Daily")
	var label string
	if p.mode == progressTargets {
		targetsTab = activeTabStyle.Render("Targets")
		label = fmt.Sprintf("Week %d of %d  (%% of target)", p.week, catalog.ProgramWeeks)
	} else {
		dailyTab = activeTabStyle.Render("Daily")
		from, to := p.dateRange()
		label = fmt.Sprintf("%s to %s  (minutes)", from.Format("Jan 02"), to.Format("Jan 02, 2006"))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Progress"), "  ", targetsTab, dailyTab, "  ", mutedStyle.Render(label),
	)

	sections := []string{header, "", p.chart.View(), ""}
	if p.mode == progressTargets {
		sections = append(sections, p.renderRollup(), "")
	} else {
		sections = append(sections, p.renderLegend(), "")
	}
	sections = append(sections,
		lipgloss.JoinHorizontal(lipgloss.Top, p.renderStreaks(), "    ", p.renderTrends()),
		"",
		p.renderRecords(),
		"",
		p.renderAchievements(),
		"",
		mutedStyle.Render("  ←/→: navigate  enter: switch mode"),
	)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (p progressModel) renderRollup() string {
	r := p.data.rollup
	if r.TotalWorkouts == 0 && len(r.EntriesByType) == 0 {
		return mutedStyle.Render("  Nothing logged for this week")
	}
	lines := []string{
		fmt.Sprintf("  Workouts %d/%d completed (%.0f%%)  distance %.1f mi  duration %.0f min",
			r.CompletedWorkouts, r.TotalWorkouts, r.CompletionRate, r.TotalDistance, r.TotalDuration),
	}
	var avgs []string
	if r.Sleep.Count > 0 {
		avgs = append(avgs, fmt.Sprintf("sleep %.1fh", r.Sleep.Value()))
	}
	if r.Mood.Count > 0 {
		avgs = append(avgs, fmt.Sprintf("mood %.1f", r.Mood.Value()))
	}
	if r.Energy.Count > 0 {
		avgs = append(avgs, fmt.Sprintf("energy %.1f", r.Energy.Value()))
	}
	if r.HeartRate.Count > 0 {
		avgs = append(avgs, fmt.Sprintf("heart rate %.0f", r.HeartRate.Value()))
	}
	if len(avgs) > 0 {
		lines = append(lines, mutedStyle.Render("  Averages: "+strings.Join(avgs, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (p progressModel) renderLegend() string {
	var items []string
	for _, t := range ledger.Types {
		dot := typeStyle(t).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, t))
	}
	return "  " + strings.Join(items, "  ")
}

func (p progressModel) renderStreaks() string {
	rows := []string{titleStyle.Render("Streaks")}
	for _, s := range p.data.streaks {
		current := mutedStyle.Render(fmt.Sprintf("%3d", s.Current))
		if s.Current > 0 {
			current = successStyle.Render(fmt.Sprintf("%3d", s.Current))
		}
		rows = append(rows, fmt.Sprintf("  %-11s %s  best %d", s.Type, current, s.Longest))
	}
	return strings.Join(rows, "\n")
}

func (p progressModel) renderTrends() string {
	rows := []string{titleStyle.Render("7-day Trends")}
	for _, t := range p.data.trends {
		var arrow string
		switch t.Direction {
		case analytics.Improving:
			arrow = successStyle.Render("▲")
		case analytics.Declining:
			arrow = errorStyle.Render("▼")
		default:
			arrow = mutedStyle.Render("■")
		}
		rows = append(rows, fmt.Sprintf("  %s %-9s %6.1f vs %.1f", arrow, t.Metric, t.Recent, t.Older))
	}
	return strings.Join(rows, "\n")
}

func (p progressModel) renderRecords() string {
	rows := []string{titleStyle.Render("Personal Records")}
	if len(p.data.records) == 0 {
		return strings.Join(append(rows, mutedStyle.Render("  None yet")), "\n")
	}
	for _, r := range p.data.records {
		line := fmt.Sprintf("  %-9s %s  %s  %s", r.Discipline,
			highlightStyle.Render(fmt.Sprintf("%g %s", r.Value, r.Unit)), mutedStyle.Render(r.Date), r.Activity)
		if r.PreviousRecord != nil {
			line += successStyle.Render(fmt.Sprintf("  +%g", r.Improvement()))
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func (p progressModel) renderAchievements() string {
	unlocked := 0
	var badges []string
	for _, a := range p.data.achievements {
		if a.Unlocked() {
			unlocked++
			badges = append(badges, successStyle.Render(a.Icon+" "+a.Title))
		} else {
			badges = append(badges, mutedStyle.Render("○ "+a.Title))
		}
	}
	title := titleStyle.Render(fmt.Sprintf("Achievements %d/%d", unlocked, len(p.data.achievements)))
	return title + "\n  " + strings.Join(badges, "  ")
}
