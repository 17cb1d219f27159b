package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/session"
)

var ledgerHeader = []string{
	"ID", "Date", "Week", "Day", "Type", "Activity", "Completed",
	"Duration (min)", "Distance (mi)", "Reps", "Weight", "Sets",
	"Calories", "Protein", "Carbs", "Fat", "Hydration (oz)", "Sleep (h)", "Heart Rate",
	"Mood", "Energy", "Soreness", "Stress", "Focus", "Notes",
}

var historyHeader = []string{
	"ID", "Template", "Name", "Status", "Start", "End", "Elapsed (s)", "Elapsed", "Completed", "Exercises",
}

func LedgerToCSV(entries []ledger.Entry, path string) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		m := e.Measures
		rows = append(rows, []string{
			e.ID,
			e.Date,
			strconv.Itoa(e.Week),
			strconv.Itoa(e.Day),
			string(e.Type),
			e.Activity,
			strconv.FormatBool(e.Completed),
			floatCell(m.Duration),
			floatCell(m.Distance),
			intCell(m.Reps),
			floatCell(m.Weight),
			intCell(m.Sets),
			floatCell(m.Calories),
			floatCell(m.Protein),
			floatCell(m.Carbs),
			floatCell(m.Fat),
			floatCell(m.Hydration),
			floatCell(m.SleepHours),
			intCell(m.HeartRate),
			intCell(m.Mood),
			intCell(m.Energy),
			intCell(m.Soreness),
			intCell(m.Stress),
			intCell(m.Focus),
			e.Notes,
		})
	}
	return writeCSV(path, ledgerHeader, rows)
}

func HistoryToCSV(records []session.Record, path string) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.TemplateID,
			r.Name,
			string(r.Status),
			r.StartedAt.Local().Format(time.RFC3339),
			r.EndedAt.Local().Format(time.RFC3339),
			strconv.Itoa(r.ElapsedSeconds),
			formatDuration(int64(r.ElapsedSeconds)),
			strconv.Itoa(r.CompletedCount),
			strconv.Itoa(r.TotalExercises),
		})
	}
	return writeCSV(path, historyHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
