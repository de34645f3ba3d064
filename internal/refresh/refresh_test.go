package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New("every now and then")
	require.Error(t, err)

	_, err = New("* * *")
	require.Error(t, err)
}

func TestNewAcceptsStandardAndDescriptors(t *testing.T) {
	for _, spec := range []string{"*/15 * * * *", "0 6 * * 1-5", "@hourly", "@every 5m"} {
		s, err := New(spec)
		require.NoError(t, err, spec)
		assert.NotNil(t, s)
	}
}

func TestRunNowRunsAllJobsInOrder(t *testing.T) {
	s, err := New("@hourly")
	require.NoError(t, err)

	var order []string
	s.Add("invalidate", func(context.Context) error {
		order = append(order, "invalidate")
		return nil
	})
	s.Add("broken", func(context.Context) error {
		order = append(order, "broken")
		return errors.New("boom")
	})
	s.Add("capture", func(context.Context) error {
		order = append(order, "capture")
		return nil
	})

	s.RunNow(context.Background())
	assert.Equal(t, []string{"invalidate", "broken", "capture"}, order)
}

func TestStartStop(t *testing.T) {
	s, err := New("@every 1h")
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Stop()
	assert.Error(t, s.ctx.Err())
}
