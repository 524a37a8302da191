package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals and per-workout session stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.api.GetDataStats(cmd.Context(), a.now())
			if err != nil {
				return fmt.Errorf("failed to fetch stats: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workouts: %d   Exercises: %d   Upcoming: %d\n", st.TotalWorkouts, st.TotalExercises, st.UpcomingCommits)
			fmt.Fprintf(out, "Sessions: %d (%d completed)   Sets: %d\n", st.TotalSessions, st.CompletedSessions, st.TotalSets)
			if len(st.SessionsByWorkout) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(st.SessionsByWorkout))
			for _, w := range st.SessionsByWorkout {
				rows = append(rows, []string{
					w.Name, strconv.FormatInt(w.Sessions, 10), strconv.FormatInt(w.Completed, 10), fmt.Sprintf("%.0f min", w.AvgDurationMin),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Workout", "Sessions", "Completed", "Avg duration"}, rows))
			return nil
		},
	}
}
