package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event is one committed gesture.
type Event struct {
	ID        string    `json:"id"`
	Gesture   string    `json:"gesture"`
	Previous  string    `json:"previous"`
	Shape     string    `json:"shape"`
	Color     string    `json:"color"`
	Tension   float64   `json:"tension"`
	CreatedAt time.Time `json:"createdAt"`
}

// HookRun records the outcome of one hook execution for an event.
type HookRun struct {
	ID        int64         `json:"id"`
	EventID   string        `json:"eventId"`
	Hook      string        `json:"hook"`
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// EventRepository journals gesture commits.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e, assigning an ID and timestamp when they are empty.
func (r *EventRepository) Record(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Previous == "" {
		e.Previous = "none"
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, gesture, previous, shape, color, tension, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Gesture, e.Previous, e.Shape, e.Color, e.Tension, e.CreatedAt,
	)
	return err
}

// Get returns the event with id, or ErrNotFound.
func (r *EventRepository) Get(id string) (*Event, error) {
	e := &Event{}
	err := r.db.QueryRow(
		`SELECT id, gesture, previous, shape, color, tension, created_at
		 FROM gesture_events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Gesture, &e.Previous, &e.Shape, &e.Color, &e.Tension, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, gesture, previous, shape, color, tension, created_at
		 FROM gesture_events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Gesture, &e.Previous, &e.Shape, &e.Color, &e.Tension, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Count returns the number of journaled events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM gesture_events`).Scan(&n)
	return n, err
}

// Prune keeps the newest keep events and deletes the rest together with
// their hook runs. It returns the number of events removed.
func (r *EventRepository) Prune(keep int) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM gesture_events WHERE id NOT IN (
			SELECT id FROM gesture_events ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// RecordHookRun stores the outcome of a hook run for an existing event.
func (r *EventRepository) RecordHookRun(run *HookRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	success := 0
	if run.Success {
		success = 1
	}

	result, err := r.db.Exec(
		`INSERT INTO hook_runs (event_id, hook, success, message, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.EventID, run.Hook, success, run.Message, run.Duration.Milliseconds(), run.CreatedAt,
	)
	if err != nil {
		return err
	}

	run.ID, err = result.LastInsertId()
	return err
}

// HookRuns returns the hook runs of an event in execution order.
func (r *EventRepository) HookRuns(eventID string) ([]*HookRun, error) {
	rows, err := r.db.Query(
		`SELECT id, event_id, hook, success, message, duration_ms, created_at
		 FROM hook_runs WHERE event_id = ? ORDER BY id`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*HookRun
	for rows.Next() {
		run := &HookRun{}
		var success int
		var ms int64
		if err := rows.Scan(&run.ID, &run.EventID, &run.Hook, &success, &run.Message, &ms, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Success = success != 0
		run.Duration = time.Duration(ms) * time.Millisecond
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
