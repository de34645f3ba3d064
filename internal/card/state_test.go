package card

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStateNavigation(t *testing.T) {
	st := NewState(time.Date(2026, 10, 31, 15, 4, 0, 0, time.UTC), ViewTimeline, false)
	assert.Equal(t, day(2026, 10, 31), st.Date)

	next := st.Navigate(1)
	assert.Equal(t, day(2026, 11, 1), next.Date)
	assert.Equal(t, day(2026, 10, 31), st.Date, "receiver must not change")
	assert.Equal(t, day(2026, 10, 30), st.Navigate(-1).Date)

	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2026, 10, 17), next.Today(now).Date)
	assert.True(t, next.Today(now).IsToday(now))
	assert.False(t, next.IsToday(now))
}

func TestStateToggles(t *testing.T) {
	st := NewState(day(2026, 10, 17), ViewTimeline, false)
	assert.Equal(t, ViewList, st.ToggleView().View)
	assert.Equal(t, ViewTimeline, st.ToggleView().ToggleView().View)
	assert.True(t, st.ToggleFormat().Use24Hour)
	assert.False(t, st.ToggleFormat().ToggleFormat().Use24Hour)
}

func TestStateQueryRoundTrip(t *testing.T) {
	st := NewState(day(2026, 10, 17), ViewList, true)
	q := st.Query()
	assert.Equal(t, "2026-10-17", q.Get("date"))
	assert.Equal(t, "list", q.Get("view"))
	assert.Equal(t, "24", q.Get("fmt"))

	def := NewState(day(2026, 1, 1), ViewTimeline, false)
	assert.Equal(t, st, StateFromQuery(q, def))
}

func TestStateFromQueryFallbacks(t *testing.T) {
	def := NewState(day(2026, 1, 1), ViewTimeline, true)
	got := StateFromQuery(url.Values{"date": {"yesterday"}, "view": {"grid"}}, def)
	assert.Equal(t, def, got)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Sat 17th October", Title(day(2026, 10, 17)))
	assert.Equal(t, "Thu 1st October", Title(day(2026, 10, 1)))
	assert.Equal(t, "Fri 2nd October", Title(day(2026, 10, 2)))
	assert.Equal(t, "Sat 3rd October", Title(day(2026, 10, 3)))
	assert.Equal(t, "Sun 11th October", Title(day(2026, 10, 11)))
	assert.Equal(t, "Mon 12th October", Title(day(2026, 10, 12)))
	assert.Equal(t, "Tue 13th October", Title(day(2026, 10, 13)))
	assert.Equal(t, "Thu 22nd October", Title(day(2026, 10, 22)))
}
