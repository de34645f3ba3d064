package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daycard/internal/card"
	"daycard/internal/model"
	"daycard/internal/schedule"
)

var testNow = time.Date(2026, 10, 17, 9, 15, 0, 0, time.UTC)

func TestParseDay(t *testing.T) {
	for in, want := range map[string]string{
		"":           "2026-10-17",
		"today":      "2026-10-17",
		"Tomorrow":   "2026-10-18",
		"yesterday":  "2026-10-16",
		"2026-12-31": "2026-12-31",
	} {
		d, err := parseDay(in, testNow)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.Format(card.DateLayout), in)
	}

	_, err := parseDay("17/10/2026", testNow)
	assert.Error(t, err)
}

func TestParseAddArgs(t *testing.T) {
	ev, err := parseAddArgs([]string{"09:00-10:30", "Morning", "Meeting"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", ev.Date)
	assert.Equal(t, "09:00", ev.StartTime)
	assert.Equal(t, "10:30", ev.EndTime)
	assert.Equal(t, "Morning Meeting", ev.Title)
	assert.False(t, ev.AllDay)

	ev, err = parseAddArgs([]string{"tomorrow", "allday", "Offsite"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", ev.Date)
	assert.True(t, ev.AllDay)
	assert.Empty(t, ev.StartTime)
	assert.Equal(t, "Offsite", ev.Title)

	ev, err = parseAddArgs([]string{"2026-11-02", "13:00-14:00", "Dentist"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-02", ev.Date)

	_, err = parseAddArgs([]string{"lunch", "Food"}, testNow)
	assert.Error(t, err)

	_, err = parseAddArgs([]string{"someday", "09:00-10:00", "x"}, testNow)
	assert.Error(t, err)
}

func TestPrintCardTimeline(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: 1, StoreID: 5, Title: "Standup", StartTime: "09:00", EndTime: "09:30"},
		{ID: 2, Title: "Review", StartTime: "09:15", EndTime: "10:00"},
		{ID: 3, Title: "Offsite", AllDay: true},
		{ID: 4, Title: "Someday"},
	}
	opts := card.Options{Layout: schedule.DefaultOptions(), ShowAllDay: true}
	c := card.Build(events, card.NewState(testNow, card.ViewTimeline, true), testNow, opts)

	var buf bytes.Buffer
	require.NoError(t, printCard(&buf, c))
	out := buf.String()

	assert.Contains(t, out, "Sat 17th October (today)")
	assert.Contains(t, out, "Offsite")
	assert.Contains(t, out, "09:00 - 09:30")
	assert.Contains(t, out, "#5")
	assert.Contains(t, out, "left=42px")
	assert.Contains(t, out, "1 event(s) without times")
	assert.Contains(t, out, "scroll: event 2 at 555px")
}

func TestPrintCardEmptyList(t *testing.T) {
	c := card.Build(nil, card.NewState(testNow, card.ViewList, false), testNow, card.Options{Layout: schedule.DefaultOptions()})

	var buf bytes.Buffer
	require.NoError(t, printCard(&buf, c))
	assert.Contains(t, buf.String(), "No events")
	assert.NotContains(t, buf.String(), "scroll:")
}

func TestParseNow(t *testing.T) {
	got, err := parseNow("", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, got)

	got, err = parseNow("14:30", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC), got)

	got, err = parseNow("2026-10-18T23:00", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC), got)

	_, err = parseNow("noon", testNow)
	assert.Error(t, err)
}
