package session

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Set is one performed set.
type Set struct {
	Weight float64
	Reps   int
}

// Target is the prescribed load of an exercise. A zero weight means bodyweight.
type Target struct {
	Weight float64
	Reps   int
}

// Outcome classifies a set against its target.
type Outcome int

const (
	OutcomeMet Outcome = iota
	OutcomeExceeded
	OutcomeMissed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMet:
		return "met"
	case OutcomeExceeded:
		return "exceeded"
	case OutcomeMissed:
		return "missed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Reason says which dimension exceeded the target.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonWeight
	ReasonReps
)

func (r Reason) String() string {
	switch r {
	case ReasonWeight:
		return "weight"
	case ReasonReps:
		return "reps"
	default:
		return ""
	}
}

// Feedback is the result of evaluating a set. Surplus is the extra weight for
// ReasonWeight and the extra reps for ReasonReps.
type Feedback struct {
	Outcome Outcome
	Reason  Reason
	Surplus float64
}

// Evaluate classifies a set against its target. The first matching rule wins:
// heavier than target, same weight with more reps, short on either, exact hit.
func Evaluate(s Set, t Target) Feedback {
	switch {
	case s.Weight > t.Weight:
		return Feedback{Outcome: OutcomeExceeded, Reason: ReasonWeight, Surplus: s.Weight - t.Weight}
	case s.Weight == t.Weight && s.Reps > t.Reps:
		return Feedback{Outcome: OutcomeExceeded, Reason: ReasonReps, Surplus: float64(s.Reps - t.Reps)}
	case s.Weight < t.Weight || s.Reps < t.Reps:
		return Feedback{Outcome: OutcomeMissed}
	default:
		return Feedback{Outcome: OutcomeMet}
	}
}

// Message renders the feedback line shown after logging, with weights in unit.
func (f Feedback) Message(unit string) string {
	switch f.Outcome {
	case OutcomeExceeded:
		if f.Reason == ReasonWeight {
			return fmt.Sprintf("Beast mode. +%.1f%s over target.", f.Surplus, unit)
		}
		return fmt.Sprintf("+%d extra reps. Up the weight next session.", int(f.Surplus))
	case OutcomeMissed:
		return "Target missed. Rest well, you'll crush it next session."
	default:
		return "Target locked. Increase weight next session."
	}
}

// ParseSet parses raw weight and reps input. Weight must be a finite,
// non-negative number; reps must be a non-negative whole number.
func ParseSet(weight, reps string) (Set, error) {
	w, err := parseWeight(weight)
	if err != nil {
		return Set{}, err
	}
	r, err := parseReps(reps)
	if err != nil {
		return Set{}, err
	}
	return Set{Weight: w, Reps: r}, nil
}

func parseWeight(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &InputError{Field: "weight"}
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &InputError{Field: "weight", Value: raw, Err: unwrapNum(err)}
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, &InputError{Field: "weight", Value: raw, Err: errors.New("not a finite number")}
	}
	if w < 0 {
		return 0, &InputError{Field: "weight", Value: raw, Err: errors.New("must not be negative")}
	}
	return w, nil
}

func parseReps(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &InputError{Field: "reps"}
	}
	r, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InputError{Field: "reps", Value: raw, Err: unwrapNum(err)}
	}
	if r < 0 {
		return 0, &InputError{Field: "reps", Value: raw, Err: errors.New("must not be negative")}
	}
	return r, nil
}

// unwrapNum drops strconv's function/input prefix from a parse error.
func unwrapNum(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
