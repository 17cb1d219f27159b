package store

type Setting struct {
	Key   string
	Value string
}

const (
	SettingProgramStart = "program_start" // YYYY-MM-DD, empty until the user picks a start date
	SettingWeekStart    = "week_start"
)
