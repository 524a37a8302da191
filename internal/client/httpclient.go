package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/lightweight/internal/ingest"
	"github.com/claude/lightweight/internal/mcp"
	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/session"
	"github.com/claude/lightweight/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient talks to the lightweight REST API. It backs the session runtime
// and the MCP tools when the data service runs elsewhere.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time checks.
var (
	_ session.Store  = (*HTTPClient)(nil)
	_ mcp.DataSource = (*HTTPClient)(nil)
)

// New creates an HTTPClient targeting the given base URL.
func New(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the service.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.Path, e.Status, e.Message)
}

// Is lets errors.Is(err, storage.ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == storage.ErrNotFound && e.Status == http.StatusNotFound
}

// Permanent reports a rejected request that sending again will not fix.
// Timeouts and rate limiting stay retryable.
func (e *APIError) Permanent() bool {
	switch e.Status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.Status >= 400 && e.Status < 500
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, params, body, contentType, out)
}

// send issues a request with a raw body and decodes a JSON response into out.
func (c *HTTPClient) send(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{Path: path, Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func limitParam(limit int) url.Values {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

// --- workouts ---

func (c *HTTPClient) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	var out []models.Workout
	return out, c.get(ctx, "/api/v1/workouts", nil, &out)
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var out models.Workout
	if err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) InsertWorkout(ctx context.Context, w models.Workout) (*models.Workout, error) {
	in := map[string]string{"name": w.Name, "description": w.Description, "color": w.Color}
	var out models.Workout
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/workouts/"+id.String(), nil, nil, nil)
}

func (c *HTTPClient) ListExercises(ctx context.Context, workoutID uuid.UUID) ([]models.Exercise, error) {
	var out []models.Exercise
	return out, c.get(ctx, "/api/v1/workouts/"+workoutID.String()+"/exercises", nil, &out)
}

// InsertExercise appends an exercise to its workout. A negative OrderIndex
// lets the service place it last.
func (c *HTTPClient) InsertExercise(ctx context.Context, e models.Exercise) (*models.Exercise, error) {
	in := map[string]any{
		"name":          e.Name,
		"focus":         e.Focus,
		"target_weight": e.TargetWeight,
		"target_reps":   e.TargetReps,
		"video_url":     e.VideoURL,
	}
	if e.OrderIndex >= 0 {
		in["order_index"] = e.OrderIndex
	}
	var out models.Exercise
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts/"+e.WorkoutID.String()+"/exercises", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- sessions ---

func (c *HTTPClient) StartSession(ctx context.Context, workoutID uuid.UUID, startedAt time.Time) (*models.SessionLog, error) {
	in := map[string]any{"workout_id": workoutID, "started_at": startedAt.UTC()}
	var out models.SessionLog
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id uuid.UUID) (*models.SessionDetail, error) {
	var out models.SessionDetail
	if err := c.get(ctx, "/api/v1/sessions/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertSetLog posts a set with its client-generated ID so a retried
// request is not stored twice.
func (c *HTTPClient) InsertSetLog(ctx context.Context, l models.SetLog) error {
	in := map[string]any{
		"id":            l.ID,
		"exercise_id":   l.ExerciseID,
		"actual_weight": l.ActualWeight,
		"actual_reps":   l.ActualReps,
		"logged_at":     l.LoggedAt.UTC(),
	}
	return c.do(ctx, http.MethodPost, "/api/v1/sessions/"+l.SessionLogID.String()+"/sets", nil, in, nil)
}

func (c *HTTPClient) CompleteSession(ctx context.Context, sessionID uuid.UUID, completedAt time.Time) error {
	in := map[string]any{"completed_at": completedAt.UTC()}
	return c.do(ctx, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/complete", nil, in, nil)
}

func (c *HTTPClient) SessionHistory(ctx context.Context, limit int) ([]storage.SessionWithSets, error) {
	var out []storage.SessionWithSets
	return out, c.get(ctx, "/api/v1/sessions", limitParam(limit), &out)
}

func (c *HTTPClient) RecentSessions(ctx context.Context, limit int) ([]storage.SessionSummary, error) {
	var out []storage.SessionSummary
	return out, c.get(ctx, "/api/v1/sessions/recent", limitParam(limit), &out)
}

func (c *HTTPClient) ExerciseProgress(ctx context.Context, name string, limit int) ([]storage.ProgressPoint, error) {
	params := limitParam(limit)
	params.Set("name", name)
	var out []storage.ProgressPoint
	return out, c.get(ctx, "/api/v1/exercises/progress", params, &out)
}

// --- schedule ---

func (c *HTTPClient) ListCommitments(ctx context.Context, from, to time.Time) ([]storage.CommitmentWithWorkout, error) {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("from", from.Format(storage.DateLayout))
	}
	if !to.IsZero() {
		params.Set("to", to.Format(storage.DateLayout))
	}
	var out []storage.CommitmentWithWorkout
	return out, c.get(ctx, "/api/v1/commitments", params, &out)
}

func (c *HTTPClient) InsertCommitment(ctx context.Context, cm models.Commitment) (*models.Commitment, error) {
	in := map[string]any{
		"workout_id":     cm.WorkoutID,
		"scheduled_date": cm.ScheduledDate.Format(storage.DateLayout),
		"note":           cm.Note,
	}
	var out models.Commitment
	if err := c.do(ctx, http.MethodPost, "/api/v1/commitments", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteCommitment(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/commitments/"+id.String(), nil, nil, nil)
}

func (c *HTTPClient) StartCommitment(ctx context.Context, id uuid.UUID) (*models.SessionLog, error) {
	var out models.SessionLog
	if err := c.do(ctx, http.MethodPost, "/api/v1/commitments/"+id.String()+"/start", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) MonthCalendar(ctx context.Context, year int, month time.Month) ([]storage.CalendarDay, error) {
	params := url.Values{}
	params.Set("month", fmt.Sprintf("%04d-%02d", year, int(month)))
	var out []storage.CalendarDay
	return out, c.get(ctx, "/api/v1/calendar", params, &out)
}

// --- stats ---

func (c *HTTPClient) GetDataStats(ctx context.Context, _ time.Time) (*storage.DataStats, error) {
	var out storage.DataStats
	if err := c.get(ctx, "/api/v1/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))
	params.Set("bucket", bucketParam(bucket))
	var out []storage.TrainingSummaryPeriod
	return out, c.get(ctx, "/api/v1/training-summary", params, &out)
}

// bucketParam maps storage bucket values to the REST API bucket parameter.
func bucketParam(bucket string) string {
	switch bucket {
	case "1 day":
		return "day"
	case "1 month":
		return "month"
	default:
		return "week"
	}
}

// --- ingest ---

// ImportAlpha uploads an Alpha Progression CSV export and returns what was created.
func (c *HTTPClient) ImportAlpha(ctx context.Context, csv io.Reader) (*ingest.Result, error) {
	var out ingest.Result
	if err := c.send(ctx, http.MethodPost, "/api/v1/ingest/alpha", nil, csv, "text/csv", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Healthy reports whether the service answers its health check.
func (c *HTTPClient) Healthy(ctx context.Context) error {
	var out map[string]string
	if err := c.get(ctx, "/healthz", nil, &out); err != nil {
		return err
	}
	if out["status"] != "ok" {
		return errors.New("httpclient: service unhealthy")
	}
	return nil
}
