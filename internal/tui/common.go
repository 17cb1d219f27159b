package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/trainr/internal/session"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewWorkout
	viewLog
	viewProgress
	viewSettings
)

var viewNames = []string{"Dashboard", "Workout", "Log", "Progress", "Settings"}

// --- Messages ---

// sessionMsg carries the latest session snapshot. open is false once the feed is closed.
type sessionMsg struct {
	snap session.Snapshot
	open bool
}

// sessionRecordedMsg arrives after a finished session has been written to history and the ledger.
type sessionRecordedMsg struct {
	rec session.Record
	err error
}

type statusMsg struct {
	text    string
	isError bool
}

// dataChangedMsg asks every view to reload from the service.
type dataChangedMsg struct {
	status string
}

type exportDoneMsg struct {
	paths []string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatCountdown renders a phase countdown as MM:SS.
func formatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// progressBar draws pct (0..100, clamped) as a bar of width cells.
func progressBar(pct float64, width int) string {
	if width < 1 {
		return ""
	}
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * float64(width))
	return successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}
