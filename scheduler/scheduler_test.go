package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStarter struct {
	mu    sync.Mutex
	calls []time.Time
	count int
	err   error
}

func (f *fakeStarter) StartDueMatches(ctx context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return f.count, f.err
}

func (f *fakeStarter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestScheduler(t *testing.T, starter MatchStarter) *Scheduler {
	t.Helper()
	s, err := NewScheduler(starter, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestRunOnce(t *testing.T) {
	starter := &fakeStarter{count: 2}
	s := newTestScheduler(t, starter)
	fixed := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.Equal(t, 2, s.RunOnce(context.Background()))
	require.Len(t, starter.calls, 1)
	assert.Equal(t, fixed, starter.calls[0])

	starter.err = errors.New("database is down")
	assert.Zero(t, s.RunOnce(context.Background()))
}

func TestStartRunsJobImmediately(t *testing.T) {
	starter := &fakeStarter{}
	s := newTestScheduler(t, starter)

	require.NoError(t, s.Start(context.Background(), time.Hour))
	assert.Eventually(t, func() bool { return starter.callCount() >= 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}
