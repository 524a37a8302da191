package alpha

import (
	"sort"

	"github.com/claude/lightweight/internal/models"
)

// DefaultTargetReps is used when a header carries no rep target.
const DefaultTargetReps = 8

// Plan is a workout template derived from the logged sessions sharing a name.
type Plan struct {
	Workout   models.Workout
	Exercises []models.Exercise
}

// BuildPlans folds parsed sessions into one template per session name, in
// first-seen order. The latest session with a name defines its exercise list;
// each exercise targets the heaviest working set recorded for it under that name.
func BuildPlans(sessions []Session) []Plan {
	var order []string
	latest := make(map[string]Session)
	heaviest := make(map[string]map[string]float64)

	for _, s := range sessions {
		prev, seen := latest[s.Name]
		if !seen {
			order = append(order, s.Name)
			heaviest[s.Name] = make(map[string]float64)
		}
		if !seen || s.Date.After(prev.Date) {
			latest[s.Name] = s
		}
		for _, ex := range s.Exercises {
			if w := topWeight(ex.Sets); w > heaviest[s.Name][ex.Name] {
				heaviest[s.Name][ex.Name] = w
			}
		}
	}

	plans := make([]Plan, 0, len(order))
	for _, name := range order {
		s := latest[name]
		exercises := append([]Exercise(nil), s.Exercises...)
		sort.SliceStable(exercises, func(i, j int) bool { return exercises[i].Number < exercises[j].Number })

		p := Plan{Workout: models.Workout{Name: name, Description: "Imported from Alpha Progression"}}
		for i, ex := range exercises {
			reps := ex.TargetReps
			if reps <= 0 {
				reps = DefaultTargetReps
			}
			p.Exercises = append(p.Exercises, models.Exercise{
				Name:         ex.Name,
				Focus:        ex.Equipment,
				TargetWeight: heaviest[name][ex.Name],
				TargetReps:   reps,
				OrderIndex:   i,
			})
		}
		plans = append(plans, p)
	}
	return plans
}

// topWeight returns the heaviest external load among the sets. Bodyweight-plus
// sets count their added load.
func topWeight(sets []Set) float64 {
	var top float64
	for _, s := range sets {
		if s.WeightKg > top {
			top = s.WeightKg
		}
	}
	return top
}
