package pass

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckElapsedRecordsOverrunOnce(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.manager.Create(context.Background(), "s1", "t1", "RESTROOM", "restroom")
	require.NoError(t, err)
	p, err := env.active.Get(created.PassID)
	require.NoError(t, err)

	// Past the 5 minute budget.
	*env.clock = env.clock.Add(6 * time.Minute)

	done, err := env.manager.checkElapsed(p)
	require.NoError(t, err)
	assert.False(t, done, "an overrun pass stays in the active store")
	assert.Equal(t, []string{"time limit exceeded"}, p.Violations())
	assert.Contains(t, env.notifier.all(), "time limit exceeded")

	// The condition re-fires on later ticks but the violation and alert
	// are not duplicated.
	*env.clock = env.clock.Add(time.Minute)
	done, err = env.manager.checkElapsed(p)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, []string{"time limit exceeded"}, p.Violations())
	assert.Equal(t, []string{"time limit exceeded"}, env.notifier.all())

	// Still present and still active.
	current, err := env.active.Get(created.PassID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, StatusActive, current.Status())
}

func TestCheckElapsedWithinBudget(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.manager.Create(context.Background(), "s1", "t1", "COUNSELOR", "counselor office")
	require.NoError(t, err)
	p, err := env.active.Get(created.PassID)
	require.NoError(t, err)

	*env.clock = env.clock.Add(10 * time.Minute) // budget is 30 minutes

	done, err := env.manager.checkElapsed(p)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, p.Violations())
}

func TestCheckElapsedExitsWhenPassAbsent(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.manager.Create(context.Background(), "s1", "t1", "RESTROOM", "restroom")
	require.NoError(t, err)
	p, err := env.active.Get(created.PassID)
	require.NoError(t, err)

	_, err = env.manager.Complete(context.Background(), created.PassID)
	require.NoError(t, err)

	done, err := env.manager.checkElapsed(p)
	require.NoError(t, err)
	assert.True(t, done, "the monitor exits once the pass leaves the active store")
}

func TestCheckElapsedReportsStoreErrors(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.manager.Create(context.Background(), "s1", "t1", "RESTROOM", "restroom")
	require.NoError(t, err)
	p, err := env.active.Get(created.PassID)
	require.NoError(t, err)

	env.active.getErr = errors.New("store down")

	done, err := env.manager.checkElapsed(p)
	assert.Error(t, err)
	assert.False(t, done, "a faulty poll must not terminate the monitor")
}

func TestWatchStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	env.manager.pollInterval = 5 * time.Millisecond

	created, err := env.manager.Create(context.Background(), "s1", "t1", "RESTROOM", "restroom")
	require.NoError(t, err)
	p, err := env.active.Get(created.PassID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		env.manager.watch(ctx, p)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestCompleteCancelsMonitor(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.manager.Create(context.Background(), "s1", "t1", "RESTROOM", "restroom")
	require.NoError(t, err)

	_, err = env.manager.Complete(context.Background(), created.PassID)
	require.NoError(t, err)

	env.manager.mu.Lock()
	_, stillRegistered := env.manager.monitors[created.PassID]
	env.manager.mu.Unlock()
	assert.False(t, stillRegistered)

	// Close returns only once every monitor goroutine has exited; a
	// leaked monitor would hang here.
	doneCh := make(chan struct{})
	go func() {
		env.manager.Close()
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("monitor goroutine leaked past completion")
	}
}
