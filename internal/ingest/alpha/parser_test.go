package alpha

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseCompleteSessions verifies parsing a multi-session CSV with exercises and sets.
func TestParseCompleteSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	s1 := sessions[0]
	if s1.Name != "Legs · Day 2 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s1.Name = %q", s1.Name)
	}
	if want := time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC); !s1.Date.Equal(want) {
		t.Errorf("s1.Date = %v, want %v", s1.Date, want)
	}
	if len(s1.Exercises) != 6 {
		t.Fatalf("s1 exercises = %d, want 6", len(s1.Exercises))
	}

	tests := []struct {
		name      string
		equipment string
		reps      int
		sets      int
	}{
		{"Hack Squats", "Machine", 8, 3},
		{"Sumo Squats", "Smith machine", 10, 2},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 3},
		{"Reverse Lunges", "Dumbbells", 10, 3},
		{"Standing Calf Raises", "Machine", 12, 3},
		{"Hanging Leg Raises", "Bodyweight", 12, 3},
	}
	for i, tt := range tests {
		ex := s1.Exercises[i]
		if ex.Number != i+1 {
			t.Errorf("ex%d.Number = %d", i+1, ex.Number)
		}
		if ex.Name != tt.name {
			t.Errorf("ex%d.Name = %q, want %q", i+1, ex.Name, tt.name)
		}
		if ex.Equipment != tt.equipment {
			t.Errorf("ex%d.Equipment = %q, want %q", i+1, ex.Equipment, tt.equipment)
		}
		if ex.TargetReps != tt.reps {
			t.Errorf("ex%d.TargetReps = %d, want %d", i+1, ex.TargetReps, tt.reps)
		}
		// Warm-ups live in the header and are not returned.
		if len(ex.Sets) != tt.sets {
			t.Errorf("ex%d sets = %d, want %d", i+1, len(ex.Sets), tt.sets)
		}
	}

	if got := s1.Exercises[4].Sets[0]; got.WeightKg != 157.5 || got.Reps != 11 {
		t.Errorf("calf raise set 1 = %+v, want 157.5kg x 11", got)
	}
	if got := s1.Exercises[2].Sets[0]; !got.Added || got.WeightKg != 35 {
		t.Errorf("hyperextension set 1 = %+v, want +35kg", got)
	}

	s2 := sessions[1]
	if s2.Name != "Push · Day 1 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s2.Name = %q", s2.Name)
	}
	if len(s2.Exercises) != 1 || s2.Exercises[0].Name != "Bench Press" {
		t.Errorf("s2 exercises = %+v", s2.Exercises)
	}
}

// TestEuropeanDecimal verifies that European decimal notation is correctly parsed.
// Alpha Progression uses commas as decimal separators (e.g. "102,5" = 102.5 kg).
func TestEuropeanDecimal(t *testing.T) {
	for in, want := range map[string]float64{"102,5": 102.5, "0,5": 0.5, "115": 115} {
		if got := parseEuropeanFloat(in); got != want {
			t.Errorf("parseEuropeanFloat(%q) = %f, want %f", in, got, want)
		}
	}
}

// TestBodyweightPlus verifies the +N notation for bodyweight exercises.
// "+35" means bodyweight plus 35kg (e.g. weighted pullups).
func TestBodyweightPlus(t *testing.T) {
	weight, added := parseWeight("+35")
	if !added {
		t.Error("expected added=true")
	}
	if weight != 35 {
		t.Errorf("weight = %f, want 35", weight)
	}
}

// TestBodyweightPlusZero verifies that +0 means bodyweight only.
func TestBodyweightPlusZero(t *testing.T) {
	weight, added := parseWeight("+0")
	if !added {
		t.Error("expected added=true")
	}
	if weight != 0 {
		t.Errorf("weight = %f, want 0", weight)
	}
}

func TestSetBeforeExercise(t *testing.T) {
	in := "\"Push\";\"2026-02-17 5:04 h\";\"1:12 hr\"\n1;100;6;0\n"
	if _, err := Parse(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for set data without exercise")
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestSplitExerciseNameEquipment verifies name/equipment splitting from the combined field.
func TestSplitExerciseNameEquipment(t *testing.T) {
	tests := []struct{ in, name, equip string }{
		{"Hack Squats · Machine", "Hack Squats", "Machine"},
		{"Squat · Low Bar · Barbell", "Squat · Low Bar", "Barbell"},
		{"Plank", "Plank", ""},
	}
	for _, tt := range tests {
		name, equip := splitExerciseNameEquipment(tt.in)
		if name != tt.name || equip != tt.equip {
			t.Errorf("split(%q) = %q, %q; want %q, %q", tt.in, name, equip, tt.name, tt.equip)
		}
	}
}
