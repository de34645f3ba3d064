package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daycard/internal/model"
	"daycard/internal/schedule"
)

func defaultOptions() Options {
	return Options{Layout: schedule.DefaultOptions(), ShowAllDay: true}
}

func TestBuildTimedAndAllDayScenario(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: 1, Title: "Morning Meeting", StartTime: "09:00", EndTime: "10:00", Color: "cornflowerblue"},
		{ID: 2, Title: "Offsite", AllDay: true, Color: "mediumpurple"},
	}
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	c := Build(events, NewState(now, ViewTimeline, false), now, defaultOptions())
	require.Len(t, c.Timed, 1)
	assert.Equal(t, 1, c.Timed[0].ID)
	require.Len(t, c.AllDay, 1)
	assert.Equal(t, 2, c.AllDay[0].ID)

	require.Len(t, c.List, 2)
	assert.Equal(t, 1, c.List[0].ID)
	assert.Equal(t, "9:00 AM - 10:00 AM", c.List[0].TimeText)
	assert.Equal(t, 2, c.List[1].ID)
	assert.Equal(t, "All Day", c.List[1].TimeText)
}

func TestBuildHourMarkers(t *testing.T) {
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	c := Build(nil, NewState(now, ViewTimeline, false), now, defaultOptions())
	require.Len(t, c.Markers, 24)
	assert.Equal(t, "12:00 AM", c.Markers[0].Label)
	assert.Equal(t, "1:00 PM", c.Markers[13].Label)
	assert.Equal(t, 780.0, c.Markers[13].Top)
	assert.Equal(t, 1440.0, c.TimelineHeight)
	assert.Nil(t, c.Scroll)

	c = Build(nil, NewState(now, ViewTimeline, true), now, defaultOptions())
	assert.Equal(t, "13:00", c.Markers[13].Label)
}

func TestBuildBoxes(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: 1, Title: "short", StartTime: "09:00", EndTime: "09:30"},
		{ID: 2, Title: "long", StartTime: "10:00", EndTime: "11:00", Color: "indianred"},
		{ID: 3, Title: "inverted", StartTime: "13:00", EndTime: "12:00"},
	}
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	c := Build(events, NewState(now, ViewTimeline, true), now, defaultOptions())
	require.Len(t, c.Timed, 3)

	assert.True(t, c.Timed[0].InlineTime)
	assert.Equal(t, 30.0, c.Timed[0].DisplayHeight)
	assert.Equal(t, defaultEventColor, c.Timed[0].Color)
	assert.Equal(t, "09:00 - 09:30", c.Timed[0].TimeRange)

	assert.False(t, c.Timed[1].InlineTime)
	assert.Equal(t, "indianred", c.Timed[1].Color)

	assert.Equal(t, -60.0, c.Timed[2].Height)
	assert.Equal(t, float64(MinEventHeight), c.Timed[2].DisplayHeight)
}

func TestBuildScrollTarget(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: 1, Title: "a", StartTime: "09:00", EndTime: "10:00"},
		{ID: 2, Title: "b", StartTime: "15:00", EndTime: "16:00"},
		{ID: 3, Title: "c", StartTime: "18:00", EndTime: "19:00"},
	}
	now := time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)

	c := Build(events, NewState(now, ViewTimeline, false), now, defaultOptions())
	require.NotNil(t, c.Scroll)
	assert.Equal(t, 2, c.Scroll.EventID)
	assert.True(t, c.IsToday)
	assert.True(t, c.Today.Active)

	tomorrow := NewState(now, ViewTimeline, false).Navigate(1)
	c = Build(events, tomorrow, now, defaultOptions())
	require.NotNil(t, c.Scroll)
	assert.Equal(t, 1, c.Scroll.EventID)
	assert.False(t, c.IsToday)

	c = Build(events, NewState(now, ViewList, false), now, defaultOptions())
	assert.Nil(t, c.Scroll)
}

func TestBuildHidesAllDayGroup(t *testing.T) {
	events := []model.CalendarEvent{{ID: 1, Title: "Offsite", AllDay: true}}
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	c := Build(events, NewState(now, ViewTimeline, false), now, Options{Layout: schedule.DefaultOptions()})
	assert.Empty(t, c.AllDay)
	assert.Len(t, c.List, 1)
}

func TestBuildToolbarLinks(t *testing.T) {
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	c := Build(nil, NewState(now, ViewTimeline, false), now, defaultOptions())
	assert.Equal(t, "Sat 17th October", c.Title)
	assert.Equal(t, "2026-10-16", c.Prev.State.Date.Format(DateLayout))
	assert.Equal(t, "2026-10-18", c.Next.State.Date.Format(DateLayout))
	assert.Equal(t, "12h", c.FormatToggle.Label)
	assert.True(t, c.FormatToggle.State.Use24Hour)
	assert.Equal(t, ViewList, c.ViewToggle.State.View)
}

func TestViewportHeight(t *testing.T) {
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, float64(TimelineViewport), Build(nil, NewState(now, ViewTimeline, false), now, defaultOptions()).ViewportHeight())
	assert.Equal(t, float64(ListViewport), Build(nil, NewState(now, ViewList, false), now, defaultOptions()).ViewportHeight())
}
