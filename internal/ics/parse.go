package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "daycard/internal/log"
	"daycard/internal/model"
)

// ParsedEvent is the normalized representation of a VEVENT.
type ParsedEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time // zero when the VEVENT has no usable end
	AllDay bool

	// Recurring is set for VEVENTs with an RRULE; only their first instance
	// is shown.
	Recurring bool
	// IsOverride marks RECURRENCE-ID instances, which are ignored.
	IsOverride bool
}

// ParseICS parses a single ICS payload. VEVENTs that fail to parse are
// logged and skipped.
func ParseICS(feedID string, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse %s: %w", feedID, err)
	}

	events := make([]ParsedEvent, 0)
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			appLog.Error("ics vevent parse failed", err, "id", feedID)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "id", feedID, "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtStart)

	var err error
	if out.AllDay {
		out.Start, err = ve.GetAllDayStartAt()
		if err != nil {
			return out, fmt.Errorf("DTSTART: %w", err)
		}
		if end, err := ve.GetAllDayEndAt(); err == nil {
			out.End = end
		}
	} else {
		out.Start, err = ve.GetStartAt()
		if err != nil {
			return out, fmt.Errorf("DTSTART: %w", err)
		}
		if end, err := ve.GetEndAt(); err == nil {
			out.End = end
		}
	}

	out.Recurring = ve.GetProperty(ical.ComponentPropertyRrule) != nil
	out.IsOverride = ve.GetProperty("RECURRENCE-ID") != nil
	return out, nil
}

// isDateValue reports VALUE=DATE or a DTSTART without a time part.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// EventsOn maps parsed events onto day as card events, keeping feed order.
// Timed events are converted to loc wall-clock "HH:MM"; an end at the
// following midnight becomes "24:00". Timed events reaching further into
// another day are skipped, as are recurrence overrides. All-day events show
// on every date in [start, end).
func EventsOn(events []ParsedEvent, day time.Time, loc *time.Location, color string) []model.CalendarEvent {
	if loc == nil {
		loc = time.Local
	}
	want := civil(day)
	out := make([]model.CalendarEvent, 0)

	for _, ev := range events {
		if ev.IsOverride {
			continue
		}
		ce := model.CalendarEvent{
			Title:       ev.Summary,
			Subtitle:    ev.Location,
			Description: ev.Description,
			Color:       color,
		}

		if ev.AllDay {
			first := civil(ev.Start)
			last := first.AddDate(0, 0, 1)
			if !ev.End.IsZero() && civil(ev.End).After(first) {
				last = civil(ev.End)
			}
			if want.Before(first) || !want.Before(last) {
				continue
			}
			ce.AllDay = true
			out = append(out, ce)
			continue
		}

		start := ev.Start.In(loc)
		if !civil(start).Equal(want) {
			continue
		}
		ce.StartTime = start.Format("15:04")
		if !ev.End.IsZero() {
			end := ev.End.In(loc)
			switch {
			case civil(end).Equal(want):
				ce.EndTime = end.Format("15:04")
			case end.Equal(time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc)):
				ce.EndTime = "24:00"
			default:
				appLog.Debug("ics multi-day event skipped", "uid", ev.UID)
				continue
			}
		}
		out = append(out, ce)
	}
	return out
}

// civil returns the calendar date of t as midnight UTC.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
