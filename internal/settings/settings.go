package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Weight units accepted by SetUnit.
const (
	UnitKg  = "kg"
	UnitLbs = "lbs"
)

const (
	keyUnit          = "unit"
	keyActiveSession = "active_session"
	keyActiveWorkout = "active_workout"
)

// ErrInvalidUnit is returned by SetUnit for anything other than kg or lbs.
var ErrInvalidUnit = errors.New("unit must be kg or lbs")

// Store keeps client-side preferences in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite settings database at dir/state.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating settings table: %w", err)
	}

	return &Store{db: db}, nil
}

// DefaultDir returns the per-user directory used when client.state_dir is unset.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lightweight")
	}
	return ".lightweight"
}

func (s *Store) get(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// Unit returns the weight unit, kg when never set.
func (s *Store) Unit() (string, error) {
	v, ok, err := s.get(keyUnit)
	if err != nil || !ok {
		return UnitKg, err
	}
	return v, nil
}

// SetUnit stores the weight unit.
func (s *Store) SetUnit(unit string) error {
	if unit != UnitKg && unit != UnitLbs {
		return fmt.Errorf("%q: %w", unit, ErrInvalidUnit)
	}
	return s.set(keyUnit, unit)
}

// ActiveSession returns the session the terminal client last started and
// has not finished. ok is false when there is none.
func (s *Store) ActiveSession() (sessionID, workoutID uuid.UUID, ok bool, err error) {
	sv, found, err := s.get(keyActiveSession)
	if err != nil || !found {
		return uuid.Nil, uuid.Nil, false, err
	}
	wv, found, err := s.get(keyActiveWorkout)
	if err != nil || !found {
		return uuid.Nil, uuid.Nil, false, err
	}
	if sessionID, err = uuid.Parse(sv); err != nil {
		return uuid.Nil, uuid.Nil, false, fmt.Errorf("parsing active session: %w", err)
	}
	if workoutID, err = uuid.Parse(wv); err != nil {
		return uuid.Nil, uuid.Nil, false, fmt.Errorf("parsing active workout: %w", err)
	}
	return sessionID, workoutID, true, nil
}

// SetActiveSession remembers a running session so it can be resumed.
func (s *Store) SetActiveSession(sessionID, workoutID uuid.UUID) error {
	if err := s.set(keyActiveSession, sessionID.String()); err != nil {
		return err
	}
	return s.set(keyActiveWorkout, workoutID.String())
}

// ClearActiveSession forgets the running session.
func (s *Store) ClearActiveSession() error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key IN (?, ?)`, keyActiveSession, keyActiveWorkout)
	if err != nil {
		return fmt.Errorf("clearing active session: %w", err)
	}
	return nil
}

// Close closes the settings database.
func (s *Store) Close() error {
	return s.db.Close()
}
