// Package source supplies the card with one day's calendar events.
package source

import (
	"context"
	"errors"
	"time"

	appLog "daycard/internal/log"
	"daycard/internal/model"
)

// Source returns the events of a single day in display order.
type Source interface {
	Name() string
	DayEvents(ctx context.Context, day time.Time) ([]model.CalendarEvent, error)
}

// Multi concatenates the events of several sources in order.
type Multi struct {
	sources []Source
}

// NewMulti builds a Multi over the given sources; nil entries are skipped.
func NewMulti(sources ...Source) *Multi {
	m := &Multi{}
	for _, s := range sources {
		if s != nil {
			m.sources = append(m.sources, s)
		}
	}
	return m
}

func (m *Multi) Name() string { return "multi" }

// Len returns the number of wrapped sources.
func (m *Multi) Len() int { return len(m.sources) }

// DayEvents collects events from every source. A failing source is logged and
// skipped; the returned error is non-nil only when every source failed. IDs
// are renumbered 1..n so they stay unique across sources; StoreID is kept.
func (m *Multi) DayEvents(ctx context.Context, day time.Time) ([]model.CalendarEvent, error) {
	out := make([]model.CalendarEvent, 0)
	var failures []error

	for _, s := range m.sources {
		events, err := s.DayEvents(ctx, day)
		if err != nil {
			appLog.Error("source failed; skipping", err, "source", s.Name(), "date", day.Format("2006-01-02"))
			failures = append(failures, err)
			continue
		}
		out = append(out, events...)
	}

	if len(m.sources) > 0 && len(failures) == len(m.sources) {
		return nil, errors.Join(failures...)
	}

	for i := range out {
		out[i].ID = i + 1
	}
	return out, nil
}
