package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/trainr/internal/service"
	"github.com/sadopc/trainr/internal/session"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <template-id>",
		Short: "Run a workout session in the terminal without the dashboard",
		Long: `Run a template's exercises and rests in real time, printing each phase.
Interrupt with Ctrl-C to stop early; the partial session is still recorded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()
			return runSession(ctx, a.svc, args[0], cmd.OutOrStdout())
		},
	}
}

type recorded struct {
	rec session.Record
	err error
}

// runSession starts templateID and reports progress until the session has been recorded.
// Cancelling ctx stops the session.
func runSession(ctx context.Context, svc *service.Service, templateID string, out io.Writer) error {
	done := make(chan recorded, 1)
	svc.OnSessionRecorded(func(rec session.Record, err error) {
		select {
		case done <- recorded{rec, err}:
		default:
		}
	})

	updates, cancel := svc.SessionUpdates()
	defer cancel()

	snap, err := svc.StartSession(templateID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d exercises, %d sets\n", snap.Template.Name, len(snap.Template.Exercises), snap.Template.PlannedUnits())

	last := progressLine(snap)
	fmt.Fprintln(out, last)

	interrupted := ctx.Done()
	for {
		select {
		case <-interrupted:
			interrupted = nil
			svc.StopSession()
		case snap := <-updates:
			if line := progressLine(snap); line != last {
				fmt.Fprintln(out, line)
				last = line
			}
		case r := <-done:
			fmt.Fprintf(out, "%s: %d of %d sets in %s\n",
				r.rec.Status, r.rec.CompletedCount, snap.Template.PlannedUnits(), formatSeconds(r.rec.ElapsedSeconds))
			return r.err
		}
	}
}

// progressLine changes only on phase, exercise, set or pause transitions.
func progressLine(s session.Snapshot) string {
	if s.Phase.Terminal() {
		return fmt.Sprintf("  %s", s.Phase)
	}
	ex, ok := s.CurrentExercise()
	if !ok {
		return fmt.Sprintf("  %s", s.Phase)
	}
	line := fmt.Sprintf("  %-8s %s, set %d/%d", s.Phase, ex.Name, s.CurrentSet, ex.Sets)
	if s.Phase == session.PhaseExercising && ex.Reps != "" {
		line += fmt.Sprintf(" (%s)", ex.Reps)
	}
	if s.Paused {
		line += " [paused]"
	}
	return line
}

func formatSeconds(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
