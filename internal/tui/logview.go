package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/progress"
	"github.com/sadopc/trainr/internal/service"
)

const logPageSize = 15

// entryFields backs the entry form. Measures are kept as text so blanks stay unset.
type entryFields struct {
	Type      string
	Date      string
	Activity  string
	Completed bool

	Duration, Distance, Weight, Reps, Sets  string
	Calories, Protein, Carbs, Fat, Hydration string
	Sleep, HeartRate                         string
	Mood, Energy, Soreness, Stress, Focus    string
	Notes                                    string
}

type logModel struct {
	svc    *service.Service
	width  int
	height int

	entries []ledger.Entry
	cursor  int
	filter  int // index into ledger.Types, -1 for all

	formActive bool
	form       *huh.Form
	editingID  string
	fields     *entryFields // pointer survives value copies
}

func newLogModel(svc *service.Service) logModel {
	return logModel{
		svc:    svc,
		filter: -1,
		fields: &entryFields{},
	}
}

func (l *logModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

type logDataMsg struct {
	entries []ledger.Entry
}

func (l logModel) refresh() tea.Cmd {
	return func() tea.Msg {
		var entries []ledger.Entry
		if l.filter < 0 {
			entries = l.svc.AllEntries()
		} else {
			entries = l.svc.EntriesOfType(ledger.Types[l.filter])
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Date != entries[j].Date {
				return entries[i].Date > entries[j].Date
			}
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		})
		return logDataMsg{entries: entries}
	}
}

func (l logModel) update(msg tea.Msg) (logModel, tea.Cmd) {
	if l.formActive && l.form != nil {
		return l.updateForm(msg)
	}

	switch msg := msg.(type) {
	case logDataMsg:
		l.entries = msg.entries
		if l.cursor >= len(l.entries) {
			l.cursor = max(0, len(l.entries)-1)
		}
		return l, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if l.cursor > 0 {
				l.cursor--
			}
		case key.Matches(msg, keys.Down):
			if l.cursor < len(l.entries)-1 {
				l.cursor++
			}
		case key.Matches(msg, keys.Left):
			l.filter--
			if l.filter < -1 {
				l.filter = len(ledger.Types) - 1
			}
			l.cursor = 0
			return l, l.refresh()
		case key.Matches(msg, keys.Right):
			l.filter++
			if l.filter >= len(ledger.Types) {
				l.filter = -1
			}
			l.cursor = 0
			return l, l.refresh()
		case key.Matches(msg, keys.AddEntry):
			return l.showForm(nil)
		case key.Matches(msg, keys.Enter):
			if len(l.entries) > 0 {
				e := l.entries[l.cursor]
				return l.showForm(&e)
			}
		case key.Matches(msg, keys.DeleteEntry):
			if len(l.entries) > 0 {
				return l, l.deleteEntry(l.entries[l.cursor].ID)
			}
		}
	}
	return l, nil
}

func (l logModel) deleteEntry(id string) tea.Cmd {
	return func() tea.Msg {
		if err := l.svc.DeleteEntry(context.Background(), id); err != nil {
			return statusMsg{text: fmt.Sprintf("Delete failed: %v", err), isError: true}
		}
		return dataChangedMsg{status: "Entry deleted"}
	}
}

// showForm opens the entry form, prefilled from e when editing.
func (l logModel) showForm(e *ledger.Entry) (logModel, tea.Cmd) {
	if e == nil {
		*l.fields = entryFields{
			Type:      string(ledger.TypeWorkout),
			Date:      l.svc.Now().Format(ledger.DateLayout),
			Completed: true,
		}
		l.editingID = ""
	} else {
		*l.fields = fieldsFromEntry(*e)
		l.editingID = e.ID
	}
	f := l.fields

	typeOptions := make([]huh.Option[string], len(ledger.Types))
	for i, t := range ledger.Types {
		typeOptions[i] = huh.NewOption(string(t), string(t))
	}

	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Type").Options(typeOptions...).Value(&f.Type),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(&f.Date).Validate(validateDate),
			huh.NewInput().Title("Activity").Value(&f.Activity),
			huh.NewConfirm().Title("Completed?").Value(&f.Completed),
		).Title("Entry"),
		huh.NewGroup(
			huh.NewInput().Title("Duration (min)").Value(&f.Duration).Validate(validateFloat),
			huh.NewInput().Title("Distance (mi)").Value(&f.Distance).Validate(validateFloat),
			huh.NewInput().Title("Weight (lbs)").Value(&f.Weight).Validate(validateFloat),
			huh.NewInput().Title("Reps").Value(&f.Reps).Validate(validateInt),
			huh.NewInput().Title("Sets").Value(&f.Sets).Validate(validateInt),
			huh.NewInput().Title("Heart rate (bpm)").Value(&f.HeartRate).Validate(validateInt),
		).Title("Training"),
		huh.NewGroup(
			huh.NewInput().Title("Calories").Value(&f.Calories).Validate(validateFloat),
			huh.NewInput().Title("Protein (g)").Value(&f.Protein).Validate(validateFloat),
			huh.NewInput().Title("Carbs (g)").Value(&f.Carbs).Validate(validateFloat),
			huh.NewInput().Title("Fat (g)").Value(&f.Fat).Validate(validateFloat),
			huh.NewInput().Title("Hydration (fl oz)").Value(&f.Hydration).Validate(validateFloat),
		).Title("Nutrition"),
		huh.NewGroup(
			huh.NewInput().Title("Sleep (hours)").Value(&f.Sleep).Validate(validateFloat),
			huh.NewInput().Title("Mood (1-10)").Value(&f.Mood).Validate(validateScore),
			huh.NewInput().Title("Energy (1-10)").Value(&f.Energy).Validate(validateScore),
			huh.NewInput().Title("Soreness (1-10)").Value(&f.Soreness).Validate(validateScore),
			huh.NewInput().Title("Stress (1-10)").Value(&f.Stress).Validate(validateScore),
			huh.NewInput().Title("Focus (1-10)").Value(&f.Focus).Validate(validateScore),
			huh.NewText().Title("Notes").Value(&f.Notes),
		).Title("Recovery & Mind"),
	).WithShowHelp(true).WithShowErrors(true)

	l.formActive = true
	return l, l.form.Init()
}

func (l logModel) updateForm(msg tea.Msg) (logModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		l.formActive = false
		l.form = nil
		return l, nil
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		l.formActive = false
		return l, l.save(*l.fields, l.editingID)
	}
	return l, cmd
}

func (l logModel) save(f entryFields, id string) tea.Cmd {
	return func() tea.Msg {
		e, err := f.entry()
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		ctx := context.Background()

		if id != "" {
			existing, err := l.svc.Entry(id)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Update failed: %v", err), isError: true}
			}
			e.ID = id
			e.Week, e.Day = existing.Week, existing.Day
			if e.Date != existing.Date {
				if on, err := time.ParseInLocation(ledger.DateLayout, e.Date, time.Local); err == nil {
					e.Week, e.Day = l.svc.ProgramDay(on)
				}
			}
			if _, err := l.svc.UpdateEntry(ctx, e); err != nil {
				return statusMsg{text: fmt.Sprintf("Update failed: %v", err), isError: true}
			}
			return dataChangedMsg{status: "Entry updated"}
		}

		res, err := l.svc.LogEntry(ctx, e)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Log failed: %v", err), isError: true}
		}
		return dataChangedMsg{status: loggedStatus(res)}
	}
}

// loggedStatus reports a new ledger entry with whatever it unlocked.
func loggedStatus(res progress.Result) string {
	parts := []string{fmt.Sprintf("Logged %s", res.Entry.Type)}
	if r := res.Record; r != nil {
		parts = append(parts, fmt.Sprintf("new %s record %g %s", r.Discipline, r.Value, r.Unit))
	}
	for _, a := range res.Unlocked {
		parts = append(parts, fmt.Sprintf("%s %s unlocked", a.Icon, a.Title))
	}
	return strings.Join(parts, " · ")
}

func (l logModel) view() string {
	w := l.width - 4

	if l.formActive && l.form != nil {
		title := titleStyle.Render("New Entry")
		if l.editingID != "" {
			title = titleStyle.Render("Edit Entry")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", l.form.View()))
	}

	filter := "all"
	if l.filter >= 0 {
		filter = string(ledger.Types[l.filter])
	}
	title := titleStyle.Render("Progress Ledger") + mutedStyle.Render("  showing: ") + highlightStyle.Render(filter)

	if len(l.entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No entries yet. Press a to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-10s %-5s %-10s %-24s %s", "Date", "W/D", "Type", "Activity", "Measures")))

	start := 0
	if l.cursor >= logPageSize {
		start = l.cursor - logPageSize + 1
	}
	end := min(start+logPageSize, len(l.entries))
	for i := start; i < end; i++ {
		e := l.entries[i]
		cursor := "  "
		style := normalItemStyle
		if i == l.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := successStyle.Render("✓")
		if !e.Completed {
			mark = mutedStyle.Render("·")
		}
		activity := e.Activity
		if len(activity) > 24 {
			activity = activity[:23] + "…"
		}
		row := style.Render(fmt.Sprintf("%s%-10s %-5s %-10s %-24s", cursor, e.Date, fmt.Sprintf("%d/%d", e.Week, e.Day), e.Type, activity))
		rows = append(rows, row+" "+mark+" "+mutedStyle.Render(measureSummary(e.Measures)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d entries  a: add  enter: edit  d: delete  ←/→: filter", len(l.entries))))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func measureSummary(m ledger.Measures) string {
	var parts []string
	addF := func(v *float64, unit string) {
		if v != nil {
			parts = append(parts, strconv.FormatFloat(*v, 'f', -1, 64)+unit)
		}
	}
	addI := func(v *int, unit string) {
		if v != nil {
			parts = append(parts, strconv.Itoa(*v)+unit)
		}
	}
	addF(m.Duration, "min")
	addF(m.Distance, "mi")
	addI(m.Reps, " reps")
	addI(m.Sets, " sets")
	addF(m.Calories, "kcal")
	addF(m.SleepHours, "h sleep")
	addI(m.Mood, " mood")
	return strings.Join(parts, " ")
}

// --- form conversion ---

func fieldsFromEntry(e ledger.Entry) entryFields {
	m := e.Measures
	return entryFields{
		Type:      string(e.Type),
		Date:      e.Date,
		Activity:  e.Activity,
		Completed: e.Completed,
		Duration:  floatText(m.Duration),
		Distance:  floatText(m.Distance),
		Weight:    floatText(m.Weight),
		Reps:      intText(m.Reps),
		Sets:      intText(m.Sets),
		Calories:  floatText(m.Calories),
		Protein:   floatText(m.Protein),
		Carbs:     floatText(m.Carbs),
		Fat:       floatText(m.Fat),
		Hydration: floatText(m.Hydration),
		Sleep:     floatText(m.SleepHours),
		HeartRate: intText(m.HeartRate),
		Mood:      intText(m.Mood),
		Energy:    intText(m.Energy),
		Soreness:  intText(m.Soreness),
		Stress:    intText(m.Stress),
		Focus:     intText(m.Focus),
		Notes:     e.Notes,
	}
}

// entry converts the form back. The ledger does the full validation.
func (f entryFields) entry() (ledger.Entry, error) {
	var err error
	float := func(s string) *float64 {
		s = strings.TrimSpace(s)
		if s == "" || err != nil {
			return nil
		}
		v, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			err = fmt.Errorf("%q is not a number", s)
			return nil
		}
		return ledger.Float(v)
	}
	integer := func(s string) *int {
		s = strings.TrimSpace(s)
		if s == "" || err != nil {
			return nil
		}
		v, perr := strconv.Atoi(s)
		if perr != nil {
			err = fmt.Errorf("%q is not a whole number", s)
			return nil
		}
		return ledger.Int(v)
	}

	e := ledger.Entry{
		Date:      strings.TrimSpace(f.Date),
		Type:      ledger.EntryType(f.Type),
		Activity:  strings.TrimSpace(f.Activity),
		Completed: f.Completed,
		Notes:     strings.TrimSpace(f.Notes),
		Measures: ledger.Measures{
			Duration:   float(f.Duration),
			Distance:   float(f.Distance),
			Weight:     float(f.Weight),
			Reps:       integer(f.Reps),
			Sets:       integer(f.Sets),
			Calories:   float(f.Calories),
			Protein:    float(f.Protein),
			Carbs:      float(f.Carbs),
			Fat:        float(f.Fat),
			Hydration:  float(f.Hydration),
			SleepHours: float(f.Sleep),
			HeartRate:  integer(f.HeartRate),
			Mood:       integer(f.Mood),
			Energy:     integer(f.Energy),
			Soreness:   integer(f.Soreness),
			Stress:     integer(f.Stress),
			Focus:      integer(f.Focus),
		},
	}
	return e, err
}

func floatText(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func validateDate(s string) error {
	if _, err := time.Parse(ledger.DateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func validateFloat(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number or leave blank")
	}
	return nil
}

func validateInt(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err != nil || v < 0 {
		return fmt.Errorf("enter a whole number or leave blank")
	}
	return nil
}

func validateScore(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err != nil || v < 1 || v > 10 {
		return fmt.Errorf("enter 1-10 or leave blank")
	}
	return nil
}
