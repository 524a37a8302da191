package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/lightweight/internal/ingest/alpha"
	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Repository is the storage surface the API serves. *storage.DB implements it.
type Repository interface {
	Ping(ctx context.Context) error

	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	InsertWorkout(ctx context.Context, w models.Workout) (*models.Workout, error)
	DeleteWorkout(ctx context.Context, id uuid.UUID) error

	ListExercises(ctx context.Context, workoutID uuid.UUID) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	InsertExercise(ctx context.Context, e models.Exercise) (*models.Exercise, error)
	UpdateExercise(ctx context.Context, e models.Exercise) error
	DeleteExercise(ctx context.Context, id uuid.UUID) error

	StartSession(ctx context.Context, workoutID uuid.UUID, startedAt time.Time) (*models.SessionLog, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.SessionLog, error)
	CompleteSession(ctx context.Context, sessionID uuid.UUID, completedAt time.Time) error
	RecentSessions(ctx context.Context, limit int) ([]storage.SessionSummary, error)
	SessionHistory(ctx context.Context, limit int) ([]storage.SessionWithSets, error)
	InsertSetLog(ctx context.Context, l models.SetLog) error
	CountSetLogs(ctx context.Context, sessionID uuid.UUID) (int, error)
	ExerciseProgress(ctx context.Context, name string, limit int) ([]storage.ProgressPoint, error)

	ListCommitments(ctx context.Context, from, to time.Time) ([]storage.CommitmentWithWorkout, error)
	InsertCommitment(ctx context.Context, c models.Commitment) (*models.Commitment, error)
	DeleteCommitment(ctx context.Context, id uuid.UUID) error
	StartCommitment(ctx context.Context, id uuid.UUID, at time.Time) (*models.SessionLog, error)
	MonthCalendar(ctx context.Context, year int, month time.Month) ([]storage.CalendarDay, error)

	GetDataStats(ctx context.Context, today time.Time) (*storage.DataStats, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
}

var _ Repository = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      Repository
	log     *slog.Logger
	apiKey  string
	metrics *Metrics
	gather  prometheus.Gatherer
	alpha   *alpha.Provider
	now     func() time.Time
	router  chi.Router
}

// New creates a new Server with all routes configured. Metrics are served from gatherer.
func New(db Repository, apiKey string, metrics *Metrics, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		log:     log,
		apiKey:  apiKey,
		metrics: metrics,
		gather:  gatherer,
		alpha:   alpha.NewProvider(db, log),
		now:     time.Now,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Instrument(s.metrics))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleCreateWorkout)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Delete("/workouts/{id}", s.handleDeleteWorkout)
		r.Get("/workouts/{id}/exercises", s.handleListExercises)
		r.Post("/workouts/{id}/exercises", s.handleCreateExercise)

		r.Get("/exercises/progress", s.handleExerciseProgress)
		r.Put("/exercises/{id}", s.handleUpdateExercise)
		r.Delete("/exercises/{id}", s.handleDeleteExercise)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions", s.handleSessionHistory)
		r.Get("/sessions/recent", s.handleRecentSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/sets", s.handleLogSet)
		r.Post("/sessions/{id}/complete", s.handleCompleteSession)

		r.Get("/commitments", s.handleListCommitments)
		r.Post("/commitments", s.handleCreateCommitment)
		r.Delete("/commitments/{id}", s.handleDeleteCommitment)
		r.Post("/commitments/{id}/start", s.handleStartCommitment)
		r.Get("/calendar", s.handleCalendar)

		r.Get("/stats", s.handleStats)
		r.Get("/training-summary", s.handleTrainingSummary)

		r.Post("/ingest/alpha", s.handleAlphaIngest)
	})
}

// SetMCP mounts an MCP transport at /mcp behind the API key.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", h)
}
