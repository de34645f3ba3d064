package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"daycard/internal/model"
)

// fileEntry is a schedule file event. Date is "YYYY-MM-DD"; an empty Date
// makes the entry part of the floating schedule shown on every day.
type fileEntry struct {
	Date                string `yaml:"date,omitempty"`
	model.CalendarEvent `yaml:",inline"`
}

type fileDoc struct {
	Events []fileEntry `yaml:"events"`
}

// File reads events from a YAML schedule file on every call, so edits show
// up on the next render.
type File struct {
	path string
}

// NewFile returns a File source for path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file:" + f.path }

// DayEvents returns the floating schedule plus the entries dated day, in file
// order. Entries without an id are numbered by their position in the day.
func (f *File) DayEvents(_ context.Context, day time.Time) ([]model.CalendarEvent, error) {
	if f.path == "" {
		return nil, errors.New("schedule file path is empty")
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	return parseSchedule(data, day)
}

func parseSchedule(data []byte, day time.Time) ([]model.CalendarEvent, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schedule file: %w", err)
	}

	key := day.Format("2006-01-02")
	out := make([]model.CalendarEvent, 0, len(doc.Events))
	for _, e := range doc.Events {
		if e.Date != "" && e.Date != key {
			continue
		}
		ev := e.CalendarEvent
		if ev.ID == 0 {
			ev.ID = len(out) + 1
		}
		out = append(out, ev)
	}
	return out, nil
}
