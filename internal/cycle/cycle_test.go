package cycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartsPausedSoUpdateDoesNotAdvance(t *testing.T) {
	var updates atomic.Int64
	c, err := New(Config{TargetUPS: 200, TargetFPS: 200}, zerolog.Nop(),
		func() { updates.Add(1) }, func() {})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_ = c.Run(ctx)

	assert.Zero(t, updates.Load())
	assert.Zero(t, c.Ticks())
}

func TestResumeAdvancesTicks(t *testing.T) {
	var updates atomic.Int64
	c, err := New(Config{TargetUPS: 500, TargetFPS: 500}, zerolog.Nop(),
		func() { updates.Add(1) }, func() {})
	require.NoError(t, err)
	c.Resume()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = c.Run(ctx)

	assert.Greater(t, updates.Load(), int64(0))
	assert.Greater(t, c.Ticks(), uint64(0))
}

func TestTickCapStopsTheRun(t *testing.T) {
	c, err := New(Config{TargetUPS: 1000, TargetFPS: 1000, TickCap: 5}, zerolog.Nop(),
		func() {}, func() {})
	require.NoError(t, err)
	c.Resume()

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after reaching tick cap")
	}
	assert.Equal(t, uint64(5), c.Ticks())
}

func TestStopJoinsLoops(t *testing.T) {
	c, err := New(DefaultConfig(), zerolog.Nop(), func() {}, func() {})
	require.NoError(t, err)
	c.Resume()

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	c.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cause Run to return")
	}
}

func TestPauseResumeToggle(t *testing.T) {
	c, err := New(DefaultConfig(), zerolog.Nop(), func() {}, func() {})
	require.NoError(t, err)
	assert.True(t, c.Paused())
	c.Resume()
	assert.False(t, c.Paused())
	c.Pause()
	assert.True(t, c.Paused())
}
