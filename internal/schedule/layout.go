package schedule

import (
	"slices"

	"daycard/internal/model"
)

// Layout defaults.
const (
	DefaultHourHeight   = 60.0
	DefaultCascadeStep  = 42.0
	DefaultAdjacentStep = 10.0
	HoursPerDay         = 24
)

// Policy selects how horizontally overlapping events are staggered.
type Policy string

const (
	// PolicyCascade shifts every later event that starts before an earlier
	// one ends to the earlier event's offset plus Step pixels, so chains of
	// overlapping events fan out further right.
	PolicyCascade Policy = "cascade"

	// PolicyAdjacent compares each event with its immediate predecessor only
	// and shifts it by Step percent of the available width on overlap.
	PolicyAdjacent Policy = "adjacent"
)

// ParsePolicy maps a config value to a Policy, reporting unknown values.
func ParsePolicy(s string) (Policy, bool) {
	switch Policy(s) {
	case PolicyCascade, PolicyAdjacent:
		return Policy(s), true
	default:
		return PolicyCascade, false
	}
}

// Options configures Layout. Zero values fall back to the defaults.
type Options struct {
	HourHeight float64
	Policy     Policy
	Step       float64
}

// DefaultOptions returns the cascade layout at 60px per hour.
func DefaultOptions() Options {
	return Options{
		HourHeight: DefaultHourHeight,
		Policy:     PolicyCascade,
		Step:       DefaultCascadeStep,
	}
}

func (o Options) normalized() Options {
	if o.HourHeight <= 0 {
		o.HourHeight = DefaultHourHeight
	}
	if _, ok := ParsePolicy(string(o.Policy)); !ok {
		o.Policy = PolicyCascade
	}
	if o.Step <= 0 {
		if o.Policy == PolicyAdjacent {
			o.Step = DefaultAdjacentStep
		} else {
			o.Step = DefaultCascadeStep
		}
	}
	return o
}

// Result is the output of Layout.
type Result struct {
	// Timed holds positioned events sorted by Top, input order on ties.
	Timed []model.PositionedEvent
	// AllDay holds all-day events in input order.
	AllDay []model.CalendarEvent
	// Dropped counts timed events without usable start/end times.
	Dropped int
	// Height is the full timeline height in pixels.
	Height float64
}

// Layout positions a day's events. It is a pure function of its inputs:
// calling it twice with the same events and options yields equal results.
func Layout(events []model.CalendarEvent, opts Options) Result {
	opts = opts.normalized()
	res := Result{
		Timed:  make([]model.PositionedEvent, 0, len(events)),
		AllDay: make([]model.CalendarEvent, 0),
		Height: HoursPerDay * opts.HourHeight,
	}

	for _, ev := range events {
		if ev.AllDay {
			res.AllDay = append(res.AllDay, ev)
			continue
		}
		pe, ok := position(ev, opts.HourHeight)
		if !ok {
			res.Dropped++
			continue
		}
		res.Timed = append(res.Timed, pe)
	}

	slices.SortStableFunc(res.Timed, func(a, b model.PositionedEvent) int {
		switch {
		case a.Top < b.Top:
			return -1
		case a.Top > b.Top:
			return 1
		default:
			return 0
		}
	})

	switch opts.Policy {
	case PolicyAdjacent:
		staggerAdjacent(res.Timed, opts.Step)
	default:
		staggerCascade(res.Timed, opts.Step)
	}
	return res
}

func position(ev model.CalendarEvent, hourHeight float64) (model.PositionedEvent, bool) {
	if !ev.HasTimes() {
		return model.PositionedEvent{}, false
	}
	start, err := ParseMinutes(ev.StartTime)
	if err != nil {
		return model.PositionedEvent{}, false
	}
	end, err := ParseMinutes(ev.EndTime)
	if err != nil {
		return model.PositionedEvent{}, false
	}
	return model.PositionedEvent{
		CalendarEvent: ev,
		Top:           float64(start/60)*hourHeight + float64(start%60)/60*hourHeight,
		Height:        float64(end-start) / 60 * hourHeight,
		StartMinutes:  start,
		EndMinutes:    end,
		LeftUnit:      model.UnitPixels,
	}, true
}

// staggerCascade expects events sorted by Top.
func staggerCascade(events []model.PositionedEvent, step float64) {
	for i := range events {
		end := events[i].Top + events[i].Height
		for j := i + 1; j < len(events); j++ {
			if events[j].Top >= end {
				break
			}
			events[j].Left = events[i].Left + step
		}
	}
}

// staggerAdjacent expects events sorted by Top.
func staggerAdjacent(events []model.PositionedEvent, percent float64) {
	for i := range events {
		events[i].LeftUnit = model.UnitPercent
		if i == 0 {
			continue
		}
		prev := events[i-1]
		if events[i].Top < prev.Top+prev.Height {
			events[i].Left = percent
		}
	}
}
