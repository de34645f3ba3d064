// Package card holds the day-schedule card's view state and builds the
// render-ready view model from the layout engine's output.
package card

import (
	"net/url"
	"strconv"
	"time"
)

// DateLayout is the query/CLI format for the displayed day.
const DateLayout = "2006-01-02"

// View is the card's render mode.
type View string

const (
	ViewTimeline View = "timeline"
	ViewList     View = "list"
)

// ParseView maps a string to a View, defaulting to the timeline.
func ParseView(s string) View {
	if View(s) == ViewList {
		return ViewList
	}
	return ViewTimeline
}

// State is the card's UI state. Methods return a new State; the receiver is
// never modified.
type State struct {
	Date      time.Time
	View      View
	Use24Hour bool
}

// NewState returns the state for the given day at local midnight.
func NewState(day time.Time, view View, use24Hour bool) State {
	return State{Date: startOfDay(day), View: view, Use24Hour: use24Hour}
}

// Navigate moves the displayed day by direction days.
func (s State) Navigate(direction int) State {
	s.Date = s.Date.AddDate(0, 0, direction)
	return s
}

// Today jumps to the day containing now.
func (s State) Today(now time.Time) State {
	s.Date = startOfDay(now)
	return s
}

// ToggleView flips between timeline and list.
func (s State) ToggleView() State {
	if s.View == ViewList {
		s.View = ViewTimeline
	} else {
		s.View = ViewList
	}
	return s
}

// ToggleFormat flips between 12-hour and 24-hour clocks.
func (s State) ToggleFormat() State {
	s.Use24Hour = !s.Use24Hour
	return s
}

// IsToday reports whether the displayed day is the calendar day of now.
func (s State) IsToday(now time.Time) bool {
	return sameDay(s.Date, now.In(s.Date.Location()))
}

// Query encodes the state as /calendar query parameters.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set("date", s.Date.Format(DateLayout))
	q.Set("view", string(s.View))
	if s.Use24Hour {
		q.Set("fmt", "24")
	} else {
		q.Set("fmt", "12")
	}
	return q
}

// StateFromQuery decodes query parameters, using def for missing values.
// A malformed date falls back to def's date.
func StateFromQuery(q url.Values, def State) State {
	s := def
	if d := q.Get("date"); d != "" {
		if t, err := time.ParseInLocation(DateLayout, d, def.Date.Location()); err == nil {
			s.Date = t
		}
	}
	if v := q.Get("view"); v != "" {
		s.View = ParseView(v)
	}
	switch q.Get("fmt") {
	case "24":
		s.Use24Hour = true
	case "12":
		s.Use24Hour = false
	}
	return s
}

// Title formats the date like "Sat 17th October".
func Title(t time.Time) string {
	return t.Format("Mon") + " " + ordinal(t.Day()) + " " + t.Format("January")
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
