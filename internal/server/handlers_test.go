package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/storage"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testKey = "test-key"

var fixedNow = time.Date(2026, 4, 14, 18, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *memRepo, *Metrics) {
	t.Helper()
	repo := newMemRepo()
	metrics, reg := NewTestMetrics()
	s := New(repo, testKey, metrics, reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return fixedNow }
	return s, repo, metrics
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-API-Key", testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return v
}

func seedWorkout(t *testing.T, repo *memRepo) (models.Workout, models.Exercise) {
	t.Helper()
	w := models.Workout{ID: uuid.New(), Name: "Push Day", Color: "#e8003d"}
	repo.workouts[w.ID] = w
	e := models.Exercise{ID: uuid.New(), WorkoutID: w.ID, Name: "Bench Press", TargetWeight: 100, TargetReps: 8}
	repo.exercises[e.ID] = e
	return w, e
}

func TestCreateAndListWorkouts(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", map[string]string{"name": "Leg Day"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	created := decode[models.Workout](t, rec)
	if created.Name != "Leg Day" || created.Color != storage.DefaultWorkoutColor {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/workouts", nil)
	list := decode[[]models.Workout](t, rec)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateWorkoutRequiresName(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/workouts", map[string]string{"description": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEmptyListsEncodeAsArray(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/workouts", nil)
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestGetWorkoutNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/workouts/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/workouts/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateExerciseDefaults(t *testing.T) {
	s, repo, _ := newTestServer(t)
	w, _ := seedWorkout(t, repo)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts/"+w.ID.String()+"/exercises",
		map[string]any{"name": "Dips", "focus": "triceps"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	e := decode[models.Exercise](t, rec)
	if e.TargetReps != storage.DefaultTargetReps {
		t.Errorf("TargetReps = %d, want %d", e.TargetReps, storage.DefaultTargetReps)
	}
	if e.TargetWeight != 0 || e.OrderIndex != 1 {
		t.Errorf("TargetWeight = %v OrderIndex = %d, want 0 and 1", e.TargetWeight, e.OrderIndex)
	}
}

func TestCreateExerciseValidation(t *testing.T) {
	s, repo, _ := newTestServer(t)
	w, _ := seedWorkout(t, repo)
	path := "/api/v1/workouts/" + w.ID.String() + "/exercises"

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"target_reps": 5}},
		{"zero reps", map[string]any{"name": "Squat", "target_reps": 0}},
		{"negative weight", map[string]any{"name": "Squat", "target_weight": -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, http.MethodPost, path, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	rec := do(t, s, http.MethodPost, "/api/v1/workouts/"+uuid.NewString()+"/exercises", map[string]any{"name": "Squat"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown workout status = %d, want 404", rec.Code)
	}
}

func TestUpdateExercisePartial(t *testing.T) {
	s, repo, _ := newTestServer(t)
	_, e := seedWorkout(t, repo)

	rec := do(t, s, http.MethodPut, "/api/v1/exercises/"+e.ID.String(), map[string]any{"target_weight": 105})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got := repo.exercises[e.ID]
	if got.TargetWeight != 105 || got.Name != "Bench Press" || got.TargetReps != 8 {
		t.Errorf("updated = %+v", got)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s, repo, metrics := newTestServer(t)
	w, e := seedWorkout(t, repo)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]any{"workout_id": w.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body)
	}
	sess := decode[models.SessionLog](t, rec)
	if !sess.StartedAt.Equal(fixedNow) {
		t.Errorf("StartedAt = %v, want %v", sess.StartedAt, fixedNow)
	}

	setID := uuid.New()
	body := map[string]any{"id": setID, "exercise_id": e.ID, "actual_weight": 105, "actual_reps": 8}
	for range 2 {
		rec = do(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID.String()+"/sets", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("log status = %d: %s", rec.Code, rec.Body)
		}
	}
	if len(repo.setLogs) != 1 {
		t.Errorf("set logs = %d, want 1 after a retried request", len(repo.setLogs))
	}
	if got := testutil.ToFloat64(metrics.CounterSetLogs.WithLabelValues("exceeded")); got != 2 {
		t.Errorf("exceeded counter = %v, want 2", got)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID.String(), nil)
	detail := decode[models.SessionDetail](t, rec)
	if detail.SetCount != 1 || detail.CompletedAt != nil {
		t.Errorf("detail = %+v", detail)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID.String()+"/complete", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("complete status = %d: %s", rec.Code, rec.Body)
	}
	if c := repo.sessions[sess.ID].CompletedAt; c == nil || !c.Equal(fixedNow) {
		t.Errorf("CompletedAt = %v", c)
	}

	later := fixedNow.Add(time.Hour)
	do(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID.String()+"/complete", map[string]any{"completed_at": later})
	if c := repo.sessions[sess.ID].CompletedAt; !c.Equal(fixedNow) {
		t.Errorf("second completion overwrote CompletedAt: %v", c)
	}
	if got := testutil.ToFloat64(metrics.CounterSessionsStarted); got != 1 {
		t.Errorf("started counter = %v, want 1", got)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/sessions", nil)
	history := decode[[]storage.SessionWithSets](t, rec)
	if len(history) != 1 || len(history[0].Sets) != 1 || history[0].Sets[0].ExerciseName != "Bench Press" {
		t.Errorf("history = %+v", history)
	}
}

func TestLogSetValidation(t *testing.T) {
	s, repo, _ := newTestServer(t)
	w, e := seedWorkout(t, repo)
	sess, _ := repo.StartSession(t.Context(), w.ID, fixedNow)
	path := "/api/v1/sessions/" + sess.ID.String() + "/sets"

	if rec := do(t, s, http.MethodPost, path, map[string]any{"actual_weight": 100, "actual_reps": 8}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing exercise status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, path, map[string]any{"exercise_id": e.ID, "actual_weight": -1, "actual_reps": 8}); rec.Code != http.StatusBadRequest {
		t.Errorf("negative weight status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, path, map[string]any{"exercise_id": uuid.New(), "actual_weight": 1, "actual_reps": 8}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown exercise status = %d, want 404", rec.Code)
	}
	other := "/api/v1/sessions/" + uuid.NewString() + "/sets"
	if rec := do(t, s, http.MethodPost, other, map[string]any{"exercise_id": e.ID, "actual_weight": 1, "actual_reps": 8}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", rec.Code)
	}
}

func TestCommitments(t *testing.T) {
	s, repo, _ := newTestServer(t)
	w, _ := seedWorkout(t, repo)

	rec := do(t, s, http.MethodPost, "/api/v1/commitments", map[string]any{"workout_id": w.ID, "scheduled_date": "2026-04-20"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	c := decode[models.Commitment](t, rec)
	if c.ScheduledDate.Format(storage.DateLayout) != "2026-04-20" {
		t.Errorf("ScheduledDate = %v", c.ScheduledDate)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/commitments", map[string]any{"workout_id": w.ID, "scheduled_date": "next tuesday"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/commitments/"+c.ID.String()+"/start", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body)
	}
	sess := decode[models.SessionLog](t, rec)
	if sess.WorkoutID != w.ID {
		t.Errorf("session workout = %v, want %v", sess.WorkoutID, w.ID)
	}

	rec = do(t, s, http.MethodDelete, "/api/v1/commitments/"+c.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodDelete, "/api/v1/commitments/"+c.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCalendar(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/calendar?month=2026-02", nil)
	days := decode[[]storage.CalendarDay](t, rec)
	if len(days) != 28 || days[0].Date != "2026-02-01" {
		t.Errorf("days = %d starting %s", len(days), days[0].Date)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/calendar", nil)
	days = decode[[]storage.CalendarDay](t, rec)
	if len(days) != 30 || days[0].Date != "2026-04-01" {
		t.Errorf("default month: %d days starting %s", len(days), days[0].Date)
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/calendar?month=April", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTrainingSummaryErrors(t *testing.T) {
	s, _, _ := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/v1/training-summary?bucket=year", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad bucket status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/training-summary", nil); rec.Code != http.StatusInternalServerError {
		t.Errorf("storage failure status = %d, want 500", rec.Code)
	}
}

func TestStats(t *testing.T) {
	s, repo, _ := newTestServer(t)
	seedWorkout(t, repo)
	rec := do(t, s, http.MethodGet, "/api/v1/stats", nil)
	stats := decode[storage.DataStats](t, rec)
	if stats.TotalWorkouts != 1 {
		t.Errorf("TotalWorkouts = %d, want 1", stats.TotalWorkouts)
	}
}

func TestHealth(t *testing.T) {
	s, repo, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	repo.pingErr = io.ErrUnexpectedEOF
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)
	do(t, s, http.MethodGet, "/api/v1/workouts", nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `lightweight_api_requests_total{method="GET",status="200"}`) {
		t.Errorf("metrics output missing request counter:\n%s", rec.Body)
	}
}

func TestParseTimeRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2026-01-01&end=2026-02-01T00:00:00Z", nil)
	start, end, err := parseTimeRange(req, fixedNow, 90)
	if err != nil {
		t.Fatalf("parseTimeRange: %v", err)
	}
	if start.Format(storage.DateLayout) != "2026-01-01" || end.Format(storage.DateLayout) != "2026-02-01" {
		t.Errorf("range = %v..%v", start, end)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	start, end, _ = parseTimeRange(req, fixedNow, 7)
	if !end.Equal(fixedNow) || !start.Equal(fixedNow.AddDate(0, 0, -7)) {
		t.Errorf("default range = %v..%v", start, end)
	}

	req = httptest.NewRequest(http.MethodGet, "/?start=yesterday", nil)
	if _, _, err := parseTimeRange(req, fixedNow, 7); err == nil {
		t.Error("expected error for unparseable start")
	}
}

func TestAlphaIngest(t *testing.T) {
	s, repo, _ := newTestServer(t)
	csv := `"Push";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;100;6;0
"2. Dips · Bodyweight · 10 reps"
#;KG;REPS;RIR
1;+10;10;1
`
	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/alpha", strings.NewReader(body))
		req.Header.Set("X-API-Key", testKey)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec
	}

	rec := send(csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	got := decode[map[string]any](t, rec)
	if got["workouts_created"] != float64(1) || got["exercises_created"] != float64(2) {
		t.Errorf("result = %v", got)
	}
	if len(repo.workouts) != 1 || len(repo.exercises) != 2 {
		t.Errorf("stored %d workouts, %d exercises", len(repo.workouts), len(repo.exercises))
	}
	for _, e := range repo.exercises {
		if e.Name == "Bench Press" && e.TargetWeight != 102.5 {
			t.Errorf("bench target = %v, want 102.5", e.TargetWeight)
		}
	}

	if rec := send("1;100;6;0\n"); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed status = %d, want 400", rec.Code)
	}
}

func TestCreateExerciseAfterDeleteKeepsOrder(t *testing.T) {
	s, repo, _ := newTestServer(t)
	w, first := seedWorkout(t, repo)
	path := "/api/v1/workouts/" + w.ID.String() + "/exercises"

	var created []models.Exercise
	for _, name := range []string{"Dips", "Flyes"} {
		rec := do(t, s, http.MethodPost, path, map[string]any{"name": name})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s status = %d", name, rec.Code)
		}
		created = append(created, decode[models.Exercise](t, rec))
	}
	if created[0].OrderIndex != 1 || created[1].OrderIndex != 2 {
		t.Fatalf("positions = %d, %d; want 1, 2", created[0].OrderIndex, created[1].OrderIndex)
	}

	if rec := do(t, s, http.MethodDelete, "/api/v1/exercises/"+first.ID.String(), nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec := do(t, s, http.MethodPost, path, map[string]any{"name": "Arnold Press"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	if got := decode[models.Exercise](t, rec).OrderIndex; got != 3 {
		t.Errorf("OrderIndex after delete = %d, want 3 (after Flyes)", got)
	}
}
