package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_Every(t *testing.T) {
	s := New(nil)
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name     string
		job      string
		interval time.Duration
		fn       JobFunc
		wantErr  error
	}{
		{"valid", "roll", time.Second, noop, nil},
		{"duplicate", "roll", time.Second, noop, ErrDuplicateJob},
		{"no name", "", time.Second, noop, ErrInvalidJob},
		{"no interval", "save", 0, noop, ErrInvalidJob},
		{"no func", "flush", time.Second, nil, ErrInvalidJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Every(tt.job, tt.interval, tt.fn)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(zap.NewNop())
	var runs atomic.Int32
	require.NoError(t, s.Every("tick", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.Running())
	assert.ErrorIs(t, s.Every("late", time.Second, func(context.Context) error { return nil }), ErrSchedulerRunning)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.False(t, s.Running())

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after stop")

	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "tick", status[0].Name)
	assert.EqualValues(t, after, status[0].Runs)
	assert.Zero(t, status[0].Failures)
}

func TestScheduler_RunNowRecordsFailures(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Every("save", time.Hour, func(context.Context) error {
		return errors.New("db down")
	}))
	require.NoError(t, s.Every("boom", time.Hour, func(context.Context) error {
		panic("bad pricer")
	}))

	ctx := context.Background()
	assert.EqualError(t, s.RunNow(ctx, "save"), "db down")
	assert.ErrorContains(t, s.RunNow(ctx, "boom"), "bad pricer")
	assert.ErrorIs(t, s.RunNow(ctx, "missing"), ErrInvalidJob)

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "boom", status[0].Name)
	assert.EqualValues(t, 1, status[0].Failures)
	assert.Equal(t, "db down", status[1].LastError)
}

func TestScheduler_StopIdempotent(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	assert.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.NoError(t, s.Stop(ctx))
	assert.NoError(t, s.Stop(ctx))
}
