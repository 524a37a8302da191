package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// timeRange returns start/end, defaulting end to now and start to
// defaultDays before end.
func timeRange(startStr, endStr string, now time.Time, defaultDays int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = now
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -defaultDays)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) queryFailed(tool string, err error) (*mcp.CallToolResult, error) {
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error()), nil
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all workout programs with their IDs, descriptions and colors."),
)

var toolGetWorkoutExercises = mcp.NewTool("get_workout_exercises",
	mcp.WithDescription("List the exercises of a workout in session order, with target weight (0 means bodyweight) and target reps."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID from list_workouts")),
)

var toolGetSessionHistory = mcp.NewTool("get_session_history",
	mcp.WithDescription("Recent workout sessions, newest first, each with its logged sets (actual weight and reps per exercise)."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 30.")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Best set per session for an exercise over time, for tracking strength progression."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive exact match, e.g. 'Bench Press')")),
	mcp.WithNumber("limit", mcp.Description("Maximum data points. Defaults to 50.")),
)

var toolGetSchedule = mcp.NewTool("get_schedule",
	mcp.WithDescription("Workouts committed to specific dates."),
	mcp.WithString("start", mcp.Description("First date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithString("end", mcp.Description("End date, exclusive (YYYY-MM-DD). Defaults to 14 days after start.")),
)

var toolGetCalendar = mcp.NewTool("get_calendar",
	mcp.WithDescription("One entry per day of a month with scheduled commitments and the number of completed sessions."),
	mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Training volume per period: sessions per workout, sets, reps, tonnage and how many sets met their target."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to '1 week'."), mcp.Enum("1 day", "1 week", "1 month")),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Totals across all data: workouts, exercises, sessions, sets, upcoming commitments and per-workout session stats."),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		return h.queryFailed("list_workouts", err)
	}
	return jsonResult(workouts)
}

func (h *handlers) getWorkoutExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid workout_id: " + err.Error()), nil
	}

	exercises, err := h.ds.ListExercises(ctx, id)
	if err != nil {
		return h.queryFailed("get_workout_exercises", err)
	}
	return jsonResult(exercises)
}

func (h *handlers) getSessionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.SessionHistory(ctx, req.GetInt("limit", 30))
	if err != nil {
		return h.queryFailed("get_session_history", err)
	}
	return jsonResult(sessions)
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	points, err := h.ds.ExerciseProgress(ctx, name, req.GetInt("limit", 50))
	if err != nil {
		return h.queryFailed("get_exercise_progress", err)
	}
	return jsonResult(points)
}

func (h *handlers) getSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := h.now()
	if s := req.GetString("start", ""); s != "" {
		t, err := parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		start = t
	}
	end := start.AddDate(0, 0, 14)
	if s := req.GetString("end", ""); s != "" {
		t, err := parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		end = t
	}

	commitments, err := h.ds.ListCommitments(ctx, start, end)
	if err != nil {
		return h.queryFailed("get_schedule", err)
	}
	return jsonResult(commitments)
}

func (h *handlers) getCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	month := h.now()
	if s := req.GetString("month", ""); s != "" {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid month %q, want YYYY-MM", s)), nil
		}
		month = t
	}

	days, err := h.ds.MonthCalendar(ctx, month.Year(), month.Month())
	if err != nil {
		return h.queryFailed("get_calendar", err)
	}
	return jsonResult(days)
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := timeRange(req.GetString("start", ""), req.GetString("end", ""), h.now(), 90)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	bucket := req.GetString("bucket", "1 week")
	switch bucket {
	case "1 day", "1 week", "1 month":
	default:
		return mcp.NewToolResultError("bucket must be '1 day', '1 week' or '1 month'"), nil
	}

	summary, err := h.ds.GetTrainingSummary(ctx, start, end, bucket)
	if err != nil {
		return h.queryFailed("get_training_summary", err)
	}
	return jsonResult(summary)
}

func (h *handlers) getDataStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, h.now())
	if err != nil {
		return h.queryFailed("get_data_stats", err)
	}
	return jsonResult(stats)
}
