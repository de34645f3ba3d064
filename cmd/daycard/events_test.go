package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daycard/internal/card"
	"daycard/internal/config"
	"daycard/internal/schedule"
	"daycard/internal/store"
)

func TestParseStoreRef(t *testing.T) {
	id, err := parseStoreRef("#12")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	id, err = parseStoreRef("3")
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	for _, bad := range []string{"", "#", "#x", "0", "-2"} {
		_, err := parseStoreRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestRmRemovesEventShownByShow(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Database = filepath.Join(t.TempDir(), "events.db")
	a := &app{cfg: cfg, loc: time.UTC}
	t.Cleanup(a.close)

	st, err := a.openStore()
	require.NoError(t, err)
	_, err = st.Add(ctx, store.NewEvent{Date: "2026-10-16", Title: "Yoga", StartTime: "07:00", EndTime: "08:00"})
	require.NoError(t, err)
	dentistID, err := st.Add(ctx, store.NewEvent{Date: "2026-10-17", Title: "Dentist", StartTime: "13:00", EndTime: "14:00"})
	require.NoError(t, err)

	src, err := a.buildSource()
	require.NoError(t, err)
	events, err := src.DayEvents(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, events, 1)

	c := card.Build(events, card.NewState(testNow, card.ViewList, true), testNow, card.Options{Layout: schedule.DefaultOptions()})
	var buf bytes.Buffer
	require.NoError(t, printCard(&buf, c))
	shown := storeRef(events[0])
	assert.Contains(t, buf.String(), shown)

	id, err := parseStoreRef(shown)
	require.NoError(t, err)
	assert.Equal(t, dentistID, id)
	require.NoError(t, st.Delete(ctx, id))

	left, err := src.DayEvents(ctx, testNow)
	require.NoError(t, err)
	assert.Empty(t, left)

	other, err := src.DayEvents(ctx, testNow.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "Yoga", other[0].Title)
}
