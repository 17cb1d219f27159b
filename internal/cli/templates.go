package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/trainr/internal/catalog"
)

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the workout templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Default()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), templatesTable(cat.ListTemplates()))
			return nil
		},
	}
}

func templatesTable(templates []catalog.WorkoutTemplate) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "EXERCISES", "SETS", "MINUTES")
	for _, tpl := range templates {
		t.Row(
			tpl.ID,
			tpl.Name,
			strconv.Itoa(len(tpl.Exercises)),
			strconv.Itoa(tpl.PlannedUnits()),
			strconv.Itoa((tpl.TotalDuration+59)/60),
		)
	}
	return t.String()
}
