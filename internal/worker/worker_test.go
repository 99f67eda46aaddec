package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingScanner struct {
	warnings atomic.Int32
	overdues atomic.Int32
}

func (s *countingScanner) RunWarningScan(context.Context) (int, error) {
	s.warnings.Add(1)
	return 0, nil
}

func (s *countingScanner) RunOverdueScan(context.Context) (int, error) {
	s.overdues.Add(1)
	return 0, errors.New("postgres unavailable")
}

func TestSLAScheduler_RunsBothScansUntilCancelled(t *testing.T) {
	scanner := &countingScanner{}
	scheduler := NewSLAScheduler(scanner, 5*time.Millisecond, 5*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	assert.Eventually(t, func() bool {
		return scanner.warnings.Load() >= 2 && scanner.overdues.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	scheduler.Wait()

	warnings := scanner.warnings.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, warnings, scanner.warnings.Load())
}

func TestNewSLAScheduler_DefaultsIntervals(t *testing.T) {
	scheduler := NewSLAScheduler(&countingScanner{}, 0, -time.Second, zaptest.NewLogger(t))
	assert.Equal(t, time.Hour, scheduler.warningInterval)
	assert.Equal(t, 15*time.Minute, scheduler.overdueInterval)
}

func TestPool_RunsSubmittedTasks(t *testing.T) {
	pool, err := NewPool(2, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pool.Release(time.Second)

	done := make(chan struct{})
	require.NoError(t, pool.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestPool_RejectsWhenSaturated(t *testing.T) {
	pool, err := NewPool(1, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pool.Release(time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	assert.Error(t, pool.Submit(func() {}))
	assert.Equal(t, 1, pool.Running())
	close(release)
}
