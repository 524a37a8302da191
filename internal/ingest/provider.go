package ingest

// Result holds the outcome of importing workout templates.
type Result struct {
	SessionsParsed   int      `json:"sessions_parsed"`
	WorkoutsCreated  int      `json:"workouts_created"`
	ExercisesCreated int      `json:"exercises_created"`
	Skipped          []string `json:"skipped,omitempty"`

	Message string `json:"message,omitempty"`
}
