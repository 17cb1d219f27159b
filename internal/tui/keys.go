package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	// Session
	StartSession key.Binding
	PauseSession key.Binding
	SkipExercise key.Binding
	EndSession   key.Binding

	// Ledger
	AddEntry     key.Binding
	DeleteEntry  key.Binding
	EditSettings key.Binding
	Export       key.Binding

	// Views
	Dashboard key.Binding
	Workout   key.Binding
	Log       key.Binding
	Progress  key.Binding
	Settings  key.Binding
	NextView  key.Binding

	Help  key.Binding
	Enter key.Binding
	Back  key.Binding
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Quit  key.Binding
}

// binding labels help with the first key.
func binding(help string, ks ...string) key.Binding {
	label := ks[0]
	if label == " " {
		label = "space"
	}
	return key.NewBinding(key.WithKeys(ks...), key.WithHelp(label, help))
}

var keys = keyMap{
	StartSession: binding("start session", "s"),
	PauseSession: binding("pause/resume", " "),
	SkipExercise: binding("skip exercise", "n"),
	EndSession:   binding("end session", "x"),

	AddEntry:     binding("log entry", "a"),
	DeleteEntry:  binding("delete entry", "d"),
	EditSettings: binding("edit settings", "a"),
	Export:       binding("export", "e"),

	Dashboard: binding("dashboard", "1"),
	Workout:   binding("workout", "2"),
	Log:       binding("log", "3"),
	Progress:  binding("progress", "4"),
	Settings:  binding("settings", "5"),
	NextView:  binding("next view", "tab"),

	Help:  binding("help", "?"),
	Enter: binding("select", "enter"),
	Back:  binding("back", "esc"),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartSession, k.PauseSession, k.SkipExercise, k.EndSession, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartSession, k.PauseSession, k.SkipExercise, k.EndSession},
		{k.AddEntry, k.DeleteEntry, k.EditSettings, k.Export},
		{k.Dashboard, k.Workout, k.Log, k.Progress, k.Settings, k.NextView},
		{k.Up, k.Down, k.Left, k.Right, k.Enter, k.Back, k.Quit},
	}
}
