// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWorker counts runs and blocks until its context is cancelled.
type mockWorker struct {
	runCount atomic.Int32
}

func (m *mockWorker) Run(ctx context.Context) {
	m.runCount.Add(1)
	<-ctx.Done()
}

type spyJob struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	interval time.Duration
}

func (s *spyJob) Start(_ context.Context, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	s.interval = interval
}

func (s *spyJob) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func runUntilCancelled(t *testing.T, ws *Workers) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()
	return func() {
		stop()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("workers did not exit")
		}
	}
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1, w2, w3 := &mockWorker{}, &mockWorker{}, &mockWorker{}
	cancel := runUntilCancelled(t, NewWorkers(w1, w2, w3))

	require.Eventually(t, func() bool {
		return w1.runCount.Load() == 1 && w2.runCount.Load() == 1 && w3.runCount.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
}

func TestWorkers_Run_Empty(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewWorkers().Run(ctx)
	(&Workers{}).Run(ctx)
}

func TestSyncWorker_StartsAndStopsJob(t *testing.T) {
	job := &spyJob{}
	cancel := runUntilCancelled(t, NewWorkers(NewSyncWorker(job, time.Minute)))

	require.Eventually(t, func() bool {
		job.mu.Lock()
		defer job.mu.Unlock()
		return job.started
	}, time.Second, 5*time.Millisecond)

	cancel()

	job.mu.Lock()
	defer job.mu.Unlock()
	assert.True(t, job.stopped)
	assert.Equal(t, time.Minute, job.interval)
}
