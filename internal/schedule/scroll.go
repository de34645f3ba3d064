package schedule

import (
	"time"

	"daycard/internal/model"
)

// ScrollTarget is where a timeline viewport should jump to.
type ScrollTarget struct {
	EventID int     `json:"event_id"`
	Offset  float64 `json:"offset"`
}

// MinutesOf returns the wall-clock minutes since midnight of t.
func MinutesOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SelectScrollTarget picks the event to scroll to. When the displayed day is
// today it is the first event starting at or after nowMinutes, falling back
// to the day's last event once everything is in the past. On any other day
// it is the earliest event. It reports false when there is nothing to scroll
// to.
func SelectScrollTarget(events []model.PositionedEvent, nowMinutes int, isToday bool) (ScrollTarget, bool) {
	if len(events) == 0 {
		return ScrollTarget{}, false
	}

	earliest, latest := 0, 0
	upcoming := -1
	for i, ev := range events {
		if ev.StartMinutes < events[earliest].StartMinutes {
			earliest = i
		}
		if ev.StartMinutes >= events[latest].StartMinutes {
			latest = i
		}
		if ev.StartMinutes >= nowMinutes && (upcoming < 0 || ev.StartMinutes < events[upcoming].StartMinutes) {
			upcoming = i
		}
	}

	pick := earliest
	if isToday {
		pick = latest
		if upcoming >= 0 {
			pick = upcoming
		}
	}
	return ScrollTarget{EventID: events[pick].ID, Offset: events[pick].Top}, true
}
