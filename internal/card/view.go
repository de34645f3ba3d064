package card

import (
	"time"

	"daycard/internal/model"
	"daycard/internal/schedule"
)

// Presentation constants of the card.
const (
	TimelineViewport  = 500
	ListViewport      = 576
	MinEventHeight    = 20
	InlineTimeCutoff  = 45
	defaultEventColor = "slategray"
)

// Options configures Build.
type Options struct {
	Layout     schedule.Options
	ShowAllDay bool
}

// HourMarker is one of the 24 grid lines of the timeline.
type HourMarker struct {
	Top   float64
	Label string
}

// Box is a positioned timeline event ready for rendering.
type Box struct {
	model.PositionedEvent
	// DisplayHeight is Height floored at MinEventHeight.
	DisplayHeight float64
	TimeRange     string
	// InlineTime puts the time range on the title row for short events.
	InlineTime bool
}

// Row is one entry of the list view or the all-day group.
type Row struct {
	model.CalendarEvent
	TimeText string
}

// Link is a toolbar action expressed as target state.
type Link struct {
	Label  string
	State  State
	Active bool
}

// Card is the view model for one render of the schedule card.
type Card struct {
	State   State
	Title   string
	IsToday bool

	Prev, Next, Today Link
	FormatToggle      Link
	ViewToggle        Link

	Markers        []HourMarker
	AllDay         []Row
	Timed          []Box
	List           []Row
	TimelineHeight float64

	// Scroll is the viewport offset to jump to; nil when there is nothing
	// to scroll to or the list view is active.
	Scroll *schedule.ScrollTarget

	Layout schedule.Result
}

// Build lays out events for the displayed day and assembles the view model.
// now is read once and drives both "today" detection and scroll selection.
func Build(events []model.CalendarEvent, st State, now time.Time, opts Options) Card {
	res := schedule.Layout(events, opts.Layout)
	today := st.IsToday(now)

	c := Card{
		State:          st,
		Title:          Title(st.Date),
		IsToday:        today,
		Prev:           Link{Label: "‹", State: st.Navigate(-1)},
		Next:           Link{Label: "›", State: st.Navigate(1)},
		Today:          Link{Label: "Today", State: st.Today(now), Active: today},
		FormatToggle:   Link{Label: formatLabel(st.Use24Hour), State: st.ToggleFormat()},
		ViewToggle:     Link{Label: viewToggleLabel(st.View), State: st.ToggleView()},
		TimelineHeight: res.Height,
		Layout:         res,
	}

	hourHeight := res.Height / schedule.HoursPerDay
	c.Markers = make([]HourMarker, 0, schedule.HoursPerDay)
	for h := 0; h < schedule.HoursPerDay; h++ {
		c.Markers = append(c.Markers, HourMarker{
			Top:   float64(h) * hourHeight,
			Label: schedule.FormatDisplay(schedule.HourLabel(h), st.Use24Hour),
		})
	}

	if opts.ShowAllDay {
		for _, ev := range res.AllDay {
			c.AllDay = append(c.AllDay, Row{CalendarEvent: withColor(ev), TimeText: "All Day"})
		}
	}

	for _, pe := range res.Timed {
		pe.CalendarEvent = withColor(pe.CalendarEvent)
		c.Timed = append(c.Timed, Box{
			PositionedEvent: pe,
			DisplayHeight:   max(pe.Height, MinEventHeight),
			TimeRange:       schedule.FormatRange(pe.StartTime, pe.EndTime, st.Use24Hour),
			InlineTime:      pe.Height < InlineTimeCutoff,
		})
	}

	// The list shows every event in input order, including ones the timeline
	// could not place.
	for _, ev := range events {
		row := Row{CalendarEvent: withColor(ev), TimeText: "All Day"}
		if !ev.AllDay {
			row.TimeText = schedule.FormatRange(ev.StartTime, ev.EndTime, st.Use24Hour)
		}
		c.List = append(c.List, row)
	}

	if st.View == ViewTimeline {
		if target, ok := schedule.SelectScrollTarget(res.Timed, schedule.MinutesOf(now), today); ok {
			c.Scroll = &target
		}
	}
	return c
}

func withColor(ev model.CalendarEvent) model.CalendarEvent {
	if ev.Color == "" {
		ev.Color = defaultEventColor
	}
	return ev
}

func formatLabel(use24Hour bool) string {
	if use24Hour {
		return "24h"
	}
	return "12h"
}

func viewToggleLabel(v View) string {
	if v == ViewList {
		return "Timeline"
	}
	return "List"
}

// ViewportHeight is the scrollable area's height for the active view.
func (c Card) ViewportHeight() float64 {
	if c.State.View == ViewList {
		return ListViewport
	}
	return TimelineViewport
}
