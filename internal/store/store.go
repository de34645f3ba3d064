// Package store keeps locally added events in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	_ "modernc.org/sqlite"

	appLog "daycard/internal/log"
	"daycard/internal/model"
	"daycard/internal/schedule"
)

// ErrNotFound is returned when an event id does not exist.
var ErrNotFound = errors.New("store: event not found")

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	title TEXT NOT NULL,
	subtitle TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	start_time TEXT,
	end_time TEXT,
	all_day INTEGER NOT NULL DEFAULT 0,
	color TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
`

// DefaultColor is used when NewEvent.Color is empty.
const DefaultColor = "cornflowerblue"

// NewEvent is the input of Add.
type NewEvent struct {
	Date        string `validate:"required,datetime=2006-01-02"`
	Title       string `validate:"required,max=200"`
	Subtitle    string `validate:"max=200"`
	Description string `validate:"max=2000"`
	StartTime   string `validate:"omitempty,clock"`
	EndTime     string `validate:"omitempty,clock"`
	AllDay      bool
	Color       string `validate:"omitempty,max=64,csscolor"`
}

// Store is a sqlite-backed event store. It implements source.Source.
type Store struct {
	db       *sql.DB
	path     string
	validate *validator.Validate
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// throwaway database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: database path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// sqlite serialises writers; one connection also keeps :memory: stable.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Store{db: db, path: path, validate: newValidator()}, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseMinutes(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("csscolor", func(fl validator.FieldLevel) bool {
		return model.IsCSSColor(fl.Field().String())
	})
	return v
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Name() string { return "sqlite:" + s.path }

// Add validates and inserts an event, returning its id.
func (s *Store) Add(ctx context.Context, ev NewEvent) (int, error) {
	if err := s.validate.Struct(ev); err != nil {
		return 0, fmt.Errorf("store: invalid event: %w", err)
	}
	if !ev.AllDay && (ev.StartTime == "" || ev.EndTime == "") {
		return 0, errors.New("store: invalid event: timed events need start and end time")
	}
	if ev.Color == "" {
		ev.Color = DefaultColor
	}

	var start, end sql.NullString
	if !ev.AllDay {
		start = sql.NullString{String: ev.StartTime, Valid: true}
		end = sql.NullString{String: ev.EndTime, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (date, title, subtitle, description, start_time, end_time, all_day, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.Date, ev.Title, ev.Subtitle, ev.Description, start, end, ev.AllDay, ev.Color)
	if err != nil {
		return 0, fmt.Errorf("store: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert id: %w", err)
	}

	appLog.Debug("store event added", "id", id, "date", ev.Date, "title", ev.Title)
	return int(id), nil
}

// Delete removes an event by id.
func (s *Store) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DayEvents returns the events stored for day in insertion order.
func (s *Store) DayEvents(ctx context.Context, day time.Time) ([]model.CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, subtitle, description, start_time, end_time, all_day, color
		FROM events
		WHERE date = ?
		ORDER BY id
	`, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	out := make([]model.CalendarEvent, 0)
	for rows.Next() {
		var (
			ev         model.CalendarEvent
			start, end sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Subtitle, &ev.Description, &start, &end, &ev.AllDay, &ev.Color); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		ev.StoreID = ev.ID
		ev.StartTime = start.String
		ev.EndTime = end.String
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return out, nil
}
