// Package cli defines the trainr command tree.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/trainr/internal/tui"
)

var (
	configPath string
	version    = "dev" // set via ldflags at build time
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainr",
		Short: "Guided workouts and progress tracking for a 12-week program",
		Long: `trainr runs timed workout sessions from a template catalog and keeps a
ledger of training, nutrition, recovery and mental work, with weekly
roll-ups, streaks, trends, achievements and personal records.

Without a subcommand it opens the interactive dashboard.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			p := tea.NewProgram(tui.NewApp(a.svc), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/trainr/config.toml)")

	cmd.AddCommand(newTemplatesCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newLogCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newExportCmd())
	return cmd
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
