package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Lightweight", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Lightweight workout tracker. Query workouts and their exercises, logged sessions with sets, scheduled commitments, exercise progress and training volume."),
	)

	h := newHandlers(ds, log)

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkoutExercises, Handler: h.getWorkoutExercises},
		server.ServerTool{Tool: toolGetSessionHistory, Handler: h.getSessionHistory},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolGetSchedule, Handler: h.getSchedule},
		server.ServerTool{Tool: toolGetCalendar, Handler: h.getCalendar},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resUpcoming, Handler: h.upcomingCommitments},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

func newHandlers(ds DataSource, log *slog.Logger) *handlers {
	return &handlers{ds: ds, log: log, now: time.Now}
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"lightweight://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("The last few workout sessions with completion status and set counts"),
	mcp.WithMIMEType("application/json"),
)

var resUpcoming = mcp.NewResource(
	"lightweight://upcoming_commitments",
	"Upcoming Commitments",
	mcp.WithResourceDescription("Workouts scheduled for the next 14 days"),
	mcp.WithMIMEType("application/json"),
)
