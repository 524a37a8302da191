package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/lightweight/internal/storage"
	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	var limit int
	var exercise string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show logged sessions and their sets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := a.settings.Unit()
			if err != nil {
				return err
			}
			if exercise != "" {
				return a.showProgress(cmd, exercise, limit, unit)
			}

			sessions, err := a.api.SessionHistory(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to fetch history: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions logged yet")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatHistory(sessions, unit))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", storage.DefaultHistoryLimit, "maximum sessions to show")
	cmd.Flags().StringVar(&exercise, "exercise", "", "show progress for one exercise instead")
	return cmd
}

func formatHistory(sessions []storage.SessionWithSets, unit string) string {
	var b strings.Builder
	for _, s := range sessions {
		status := "in progress"
		if s.CompletedAt != nil {
			status = fmt.Sprintf("completed in %s", s.CompletedAt.Sub(s.StartedAt).Round(time.Minute))
		}
		fmt.Fprintf(&b, "%s  %s  (%s)\n", s.StartedAt.Local().Format("2006-01-02 15:04"), s.Workout.Name, status)
		for _, set := range s.Sets {
			fmt.Fprintf(&b, "    %-24s %s × %d\n", set.ExerciseName, formatWeight(set.ActualWeight, unit), set.ActualReps)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *app) showProgress(cmd *cobra.Command, exercise string, limit int, unit string) error {
	points, err := a.api.ExerciseProgress(cmd.Context(), exercise, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch progress: %w", err)
	}
	if len(points) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No sets logged for %s\n", exercise)
		return nil
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.LoggedAt.Local().Format("2006-01-02"),
			p.WorkoutName,
			formatWeight(p.ActualWeight, unit) + " × " + strconv.Itoa(p.ActualReps),
			formatWeight(p.TargetWeight, unit) + " × " + strconv.Itoa(p.TargetReps),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Date", "Workout", "Actual", "Target"}, rows))
	return nil
}
