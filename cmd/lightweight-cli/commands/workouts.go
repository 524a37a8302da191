package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/claude/lightweight/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newWorkoutsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workouts, err := a.api.ListWorkouts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}
			if len(workouts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workouts yet. Create one with: lightweight-cli workouts add <name>")
				return nil
			}
			rows := make([][]string, 0, len(workouts))
			for _, w := range workouts {
				rows = append(rows, []string{w.ID.String(), w.Name, w.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Description"}, rows))
			return nil
		},
	}

	cmd.AddCommand(newWorkoutAddCommand(a), newWorkoutExercisesCommand(a), newExerciseAddCommand(a), newWorkoutImportCommand(a))
	return cmd
}

func newWorkoutAddCommand(a *app) *cobra.Command {
	var description, color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.api.InsertWorkout(cmd.Context(), models.Workout{
				Name:        args[0],
				Description: description,
				Color:       color,
			})
			if err != nil {
				return fmt.Errorf("failed to create workout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created workout %s (%s)\n", w.Name, w.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().StringVar(&color, "color", "", "display color, e.g. #7c3aed")
	return cmd
}

func newWorkoutExercisesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exercises <workout-id>",
		Short: "List the exercises of a workout in session order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			exercises, err := a.api.ListExercises(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to list exercises: %w", err)
			}
			unit, err := a.settings.Unit()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(exercises))
			for i, e := range exercises {
				rows = append(rows, []string{
					strconv.Itoa(i + 1), e.Name, e.Focus,
					formatWeight(e.TargetWeight, unit), strconv.Itoa(e.TargetReps),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "Exercise", "Focus", "Target", "Reps"}, rows))
			return nil
		},
	}
}

func newExerciseAddCommand(a *app) *cobra.Command {
	var (
		focus, video string
		weight       float64
		reps         int
	)
	cmd := &cobra.Command{
		Use:   "add-exercise <workout-id> <name>",
		Short: "Append an exercise to a workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			e := models.Exercise{
				WorkoutID:    id,
				Name:         args[1],
				Focus:        focus,
				TargetWeight: weight,
				TargetReps:   reps,
				OrderIndex:   -1,
			}
			if video != "" {
				e.VideoURL = &video
			}
			created, err := a.api.InsertExercise(cmd.Context(), e)
			if err != nil {
				return fmt.Errorf("failed to add exercise: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s at position %d\n", created.Name, created.OrderIndex+1)
			return nil
		},
	}
	cmd.Flags().StringVar(&focus, "focus", "", "focus area, e.g. Chest")
	cmd.Flags().Float64Var(&weight, "weight", 0, "target weight, 0 for bodyweight")
	cmd.Flags().IntVar(&reps, "reps", 8, "target reps")
	cmd.Flags().StringVar(&video, "video", "", "demonstration video reference")
	return cmd
}

func parseID(what, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, raw, err)
	}
	return id, nil
}

func newWorkoutImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <export.csv>",
		Short: "Create workouts from an Alpha Progression CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open export: %w", err)
			}
			defer f.Close()

			result, err := a.api.ImportAlpha(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Parsed %d sessions: created %d workouts with %d exercises\n",
				result.SessionsParsed, result.WorkoutsCreated, result.ExercisesCreated)
			if len(result.Skipped) > 0 {
				fmt.Fprintf(out, "Skipped existing: %s\n", strings.Join(result.Skipped, ", "))
			}
			if result.Message != "" {
				fmt.Fprintln(out, result.Message)
			}
			return nil
		},
	}
}
