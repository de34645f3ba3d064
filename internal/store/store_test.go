package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndDayEvents(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	id1, err := s.Add(ctx, NewEvent{Date: "2026-10-17", Title: "Client Call", StartTime: "15:00", EndTime: "16:00", Color: "indianred"})
	require.NoError(t, err)
	id2, err := s.Add(ctx, NewEvent{Date: "2026-10-17", Title: "Offsite", AllDay: true, StartTime: "08:00"})
	require.NoError(t, err)
	_, err = s.Add(ctx, NewEvent{Date: "2026-10-18", Title: "Brunch", StartTime: "11:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Less(t, id1, id2)

	events, err := s.DayEvents(ctx, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, id1, events[0].ID)
	assert.Equal(t, id1, events[0].StoreID)
	assert.Equal(t, "15:00", events[0].StartTime)
	assert.Equal(t, "16:00", events[0].EndTime)
	assert.Equal(t, "indianred", events[0].Color)
	assert.False(t, events[0].AllDay)

	assert.Equal(t, id2, events[1].ID)
	assert.Equal(t, id2, events[1].StoreID)
	assert.True(t, events[1].AllDay)
	assert.Empty(t, events[1].StartTime)
	assert.Equal(t, DefaultColor, events[1].Color)
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	cases := map[string]NewEvent{
		"missing title": {Date: "2026-10-17", StartTime: "09:00", EndTime: "10:00"},
		"bad date":      {Date: "17/10/2026", Title: "x", StartTime: "09:00", EndTime: "10:00"},
		"bad clock":     {Date: "2026-10-17", Title: "x", StartTime: "9am", EndTime: "10:00"},
		"missing end":   {Date: "2026-10-17", Title: "x", StartTime: "09:00"},
		"signed hour":   {Date: "2026-10-17", Title: "x", StartTime: "+9:00", EndTime: "10:00"},
		"signed minute": {Date: "2026-10-17", Title: "x", StartTime: "09:00", EndTime: "10:+5"},
		"css in color":  {Date: "2026-10-17", Title: "x", StartTime: "09:00", EndTime: "10:00", Color: "red; background:url(//x)"},
	}
	for name, ev := range cases {
		_, err := s.Add(ctx, ev)
		assert.Error(t, err, name)
	}

	for _, color := range []string{"teal", "#0a0", "#00aa00cc", "rgb(10, 20, 30)", "hsl(200, 50%, 40%)"} {
		_, err := s.Add(ctx, NewEvent{Date: "2026-10-17", Title: "x", StartTime: "09:00", EndTime: "10:00", Color: color})
		assert.NoError(t, err, color)
	}

	_, err := s.Add(ctx, NewEvent{Date: "2026-10-17", StartTime: "09:00", EndTime: "10:00"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Title", verrs[0].Field())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	id, err := s.Add(ctx, NewEvent{Date: "2026-10-17", Title: "x", StartTime: "09:00", EndTime: "24:00"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)

	events, err := s.DayEvents(ctx, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "events.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Add(context.Background(), NewEvent{Date: "2026-10-17", Title: "x", AllDay: true})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	events, err := s.DayEvents(context.Background(), time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "sqlite:"+path, s.Name())
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
