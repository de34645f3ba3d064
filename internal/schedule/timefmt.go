// Package schedule turns a day's calendar events into positions on a
// 24-hour vertical axis and picks the event a viewport should scroll to.
package schedule

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedTime is returned for clock strings that are not "HH:MM".
var ErrMalformedTime = errors.New("schedule: malformed HH:MM time")

const minutesPerDay = 24 * 60

// ParseMinutes converts an "HH:MM" clock string into minutes since midnight.
// Hours 0–23 are accepted with one or two digits, minutes must have two.
// "24:00" is accepted as the end-of-day marker.
func ParseMinutes(t string) (int, error) {
	hour, minute, err := splitClock(t)
	if err != nil {
		return 0, err
	}
	return hour*60 + minute, nil
}

func splitClock(t string) (int, int, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(t), ":")
	if !ok || len(hs) == 0 || len(hs) > 2 || len(ms) != 2 || !allDigits(hs) || !allDigits(ms) {
		return 0, 0, ErrMalformedTime
	}
	hour, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, ErrMalformedTime
	}
	minute, err := strconv.Atoi(ms)
	if err != nil || minute > 59 {
		return 0, 0, ErrMalformedTime
	}
	if hour > 24 || (hour == 24 && minute != 0) {
		return 0, 0, ErrMalformedTime
	}
	return hour, minute, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatDisplay renders a clock string for display. In 24-hour mode the
// string is returned as is; otherwise it becomes "h:MM AM" / "h:MM PM" with
// midnight shown as 12 AM and noon as 12 PM.
func FormatDisplay(t string, use24Hour bool) string {
	if t == "" {
		return ""
	}
	if use24Hour {
		return t
	}
	hour, minute, err := splitClock(t)
	if err != nil {
		return t
	}
	period := "AM"
	if hour%24 >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return strconv.Itoa(display) + ":" + pad2(minute) + " " + period
}

// FormatRange renders "start - end" in display form.
func FormatRange(start, end string, use24Hour bool) string {
	return FormatDisplay(start, use24Hour) + " - " + FormatDisplay(end, use24Hour)
}

// HourLabel returns the clock string for the top of the given hour.
func HourLabel(hour int) string {
	return pad2(hour) + ":00"
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
