// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spySyncService counts PerformBatchSync calls.
type spySyncService struct {
	calls atomic.Int64
	err   error
}

func (s *spySyncService) PerformBatchSync(context.Context) (models.BatchSyncResult, error) {
	s.calls.Add(1)
	return models.BatchSyncResult{}, s.err
}

func (s *spySyncService) ResumeSync(context.Context) {}

func (s *spySyncService) QueueLength(context.Context) (int, error) {
	return 0, nil
}

func TestNewSyncJob_ReturnsInterface(t *testing.T) {
	job := NewSyncJob(&spySyncService{}, logger.Nop())
	require.NotNil(t, job)
}

func TestSyncJob_Start_CallsPerformBatchSync(t *testing.T) {
	spy := &spySyncService{}
	job := NewSyncJob(spy, logger.Nop())

	// about five ticks fit into 55ms
	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "PerformBatchSync called %d times", got)
}

func TestSyncJob_Stop_StopsGoroutine(t *testing.T) {
	spy := &spySyncService{}
	job := NewSyncJob(spy, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, callsAfterStop, spy.calls.Load(), "no calls after Stop")
}

func TestSyncJob_Stop_WithoutStart(t *testing.T) {
	job := NewSyncJob(&spySyncService{}, logger.Nop())
	assert.NotPanics(t, job.Stop)
}

func TestSyncJob_ContextCancelStopsJob(t *testing.T) {
	spy := &spySyncService{}
	job := NewSyncJob(spy, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	cancel()
	time.Sleep(15 * time.Millisecond)

	calls := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, spy.calls.Load())
	job.Stop()
}

func TestSyncJob_RestartReplacesRunningJob(t *testing.T) {
	spy := &spySyncService{err: ErrSyncInProgress}
	job := NewSyncJob(spy, logger.Nop())

	job.Start(context.Background(), time.Hour)
	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(35 * time.Millisecond)
	job.Stop()

	assert.Positive(t, spy.calls.Load())
}
