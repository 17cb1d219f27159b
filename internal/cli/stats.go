package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/trainr/internal/service"
)

func newStatsCmd() *cobra.Command {
	var week int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print session history, weekly progress, streaks, trends and records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			if week == 0 {
				week = a.svc.CurrentWeek()
			}
			printStats(cmd.OutOrStdout(), a.svc, week)
			return nil
		},
	}
	cmd.Flags().IntVarP(&week, "week", "w", 0, "program week to summarize (default current)")
	return cmd
}

func printStats(out io.Writer, svc *service.Service, week int) {
	h := svc.HistoryStats()
	fmt.Fprintf(out, "Sessions: %d total, %d in the last 7 days, average %s\n",
		h.TotalSessions, h.SessionsLast7Days, h.AverageDuration.Round(time.Second))
	fmt.Fprintf(out, "Time trained: %s, %d exercises completed\n\n", h.TotalElapsed.Round(time.Second), h.TotalCompletedExercises)

	r := svc.WeeklyRollup(week)
	fmt.Fprintf(out, "Week %d: %d/%d workouts completed (%.0f%%)\n", week, r.CompletedWorkouts, r.TotalWorkouts, r.CompletionRate)
	targets := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TARGET", "ACTUAL", "GOAL", "%").
		Row("miles", fmt.Sprintf("%.1f", r.Miles.Actual), fmt.Sprintf("%.1f", r.Miles.Target), fmt.Sprintf("%.0f", r.Miles.Percent())).
		Row("swim hours", fmt.Sprintf("%.1f", r.SwimHours.Actual), fmt.Sprintf("%.1f", r.SwimHours.Target), fmt.Sprintf("%.0f", r.SwimHours.Percent())).
		Row("strength", fmt.Sprintf("%.0f", r.StrengthSessions.Actual), fmt.Sprintf("%.0f", r.StrengthSessions.Target), fmt.Sprintf("%.0f", r.StrengthSessions.Percent())).
		Row("mental hours", fmt.Sprintf("%.1f", r.MentalHours.Actual), fmt.Sprintf("%.1f", r.MentalHours.Target), fmt.Sprintf("%.0f", r.MentalHours.Percent()))
	fmt.Fprintln(out, targets.String())
	fmt.Fprintln(out)

	streaks := table.New().Border(lipgloss.NormalBorder()).Headers("STREAK", "CURRENT", "LONGEST")
	for _, s := range svc.Streaks() {
		streaks.Row(string(s.Type), strconv.Itoa(s.Current), strconv.Itoa(s.Longest))
	}
	fmt.Fprintln(out, streaks.String())
	fmt.Fprintln(out)

	trends := table.New().Border(lipgloss.NormalBorder()).Headers("TREND", "LAST 7 DAYS", "PRIOR 7 DAYS", "DIRECTION")
	for _, t := range svc.Trends() {
		trends.Row(t.Metric, fmt.Sprintf("%.1f", t.Recent), fmt.Sprintf("%.1f", t.Older), string(t.Direction))
	}
	fmt.Fprintln(out, trends.String())

	records := svc.PersonalRecords()
	if len(records) > 0 {
		fmt.Fprintln(out)
		prs := table.New().Border(lipgloss.NormalBorder()).Headers("RECORD", "VALUE", "DATE", "ACTIVITY")
		for _, pr := range records {
			prs.Row(pr.Discipline, fmt.Sprintf("%g %s", pr.Value, pr.Unit), pr.Date, pr.Activity)
		}
		fmt.Fprintln(out, prs.String())
	}

	unlocked := 0
	achievements := svc.Achievements()
	for _, a := range achievements {
		if a.Unlocked() {
			unlocked++
		}
	}
	fmt.Fprintf(out, "\nAchievements: %d/%d unlocked\n", unlocked, len(achievements))
}
