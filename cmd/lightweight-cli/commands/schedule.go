package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/storage"
	"github.com/spf13/cobra"
)

func newScheduleCommand(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "List upcoming workout commitments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from := a.now()
			commitments, err := a.api.ListCommitments(cmd.Context(), from, from.AddDate(0, 0, days))
			if err != nil {
				return fmt.Errorf("failed to list commitments: %w", err)
			}
			if len(commitments) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing scheduled in the next %d days\n", days)
				return nil
			}
			rows := make([][]string, 0, len(commitments))
			for _, c := range commitments {
				note := ""
				if c.Note != nil {
					note = *c.Note
				}
				rows = append(rows, []string{c.ScheduledDate.Format(storage.DateLayout), c.Workout.Name, note, c.ID.String()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Date", "Workout", "Note", "ID"}, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 14, "how many days ahead to show")

	cmd.AddCommand(
		newScheduleAddCommand(a),
		newScheduleRemoveCommand(a),
		newScheduleStartCommand(a),
		newCalendarCommand(a),
	)
	return cmd
}

func newScheduleAddCommand(a *app) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "add <workout-id> <YYYY-MM-DD>",
		Short: "Commit to a workout on a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workoutID, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			date, err := time.Parse(storage.DateLayout, args[1])
			if err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD", args[1])
			}
			c := models.Commitment{WorkoutID: workoutID, ScheduledDate: date}
			if note != "" {
				c.Note = &note
			}
			created, err := a.api.InsertCommitment(cmd.Context(), c)
			if err != nil {
				return fmt.Errorf("failed to schedule workout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled for %s (%s)\n", created.ScheduledDate.Format(storage.DateLayout), created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	return cmd
}

func newScheduleRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <commitment-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a commitment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("commitment", args[0])
			if err != nil {
				return err
			}
			if err := a.api.DeleteCommitment(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to remove commitment: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed")
			return nil
		},
	}
}

func newScheduleStartCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start <commitment-id>",
		Short: "Start the session for a commitment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("commitment", args[0])
			if err != nil {
				return err
			}
			sess, err := a.api.StartCommitment(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to start commitment: %w", err)
			}
			return a.runSession(cmd, *sess, nil)
		},
	}
}

func newCalendarCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month of commitments and completed sessions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := a.now()
			if len(args) == 1 {
				t, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("invalid month %q, want YYYY-MM", args[0])
				}
				month = t
			}
			days, err := a.api.MonthCalendar(cmd.Context(), month.Year(), month.Month())
			if err != nil {
				return fmt.Errorf("failed to load calendar: %w", err)
			}
			var rows [][]string
			for _, d := range days {
				if len(d.Commitments) == 0 && d.CompletedSessions == 0 {
					continue
				}
				planned := ""
				for i, c := range d.Commitments {
					if i > 0 {
						planned += ", "
					}
					planned += c.Workout.Name
				}
				rows = append(rows, []string{d.Date, planned, strconv.Itoa(d.CompletedSessions)})
			}
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing planned or completed in %s\n", month.Format("January 2006"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Date", "Planned", "Completed"}, rows))
			return nil
		},
	}
}
