// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/adapter"
	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
)

type syncService struct {
	store     store.Store
	remote    adapter.RemoteEndpoint
	conflicts ConflictService
	cache     CacheService
	network   NetworkState
	ids       utils.IDGenerator

	exchangeTimeout time.Duration
	maxAttempts     int
	sleep           func(ctx context.Context, d time.Duration) error

	mu sync.Mutex

	logger *logger.Logger
}

func NewSyncService(s store.Store, remote adapter.RemoteEndpoint, conflicts ConflictService, cache CacheService,
	network NetworkState, ids utils.IDGenerator, cfg config.Sync, logger *logger.Logger) SyncService {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = models.MaxSyncAttempts
	}
	timeout := cfg.ExchangeTimeout
	if timeout <= 0 {
		timeout = config.DefaultExchangeTimeout
	}

	return &syncService{
		store:           s,
		remote:          remote,
		conflicts:       conflicts,
		cache:           cache,
		network:         network,
		ids:             ids,
		exchangeTimeout: timeout,
		maxAttempts:     maxAttempts,
		sleep:           sleepContext,
		logger:          logger,
	}
}

// PerformBatchSync drains the queue once, priority group by priority group,
// in sub-batches sized for the current link. Per-entry failures never stop
// the run; losing connectivity does, leaving the rest queued.
func (s *syncService) PerformBatchSync(ctx context.Context) (models.BatchSyncResult, error) {
	if !s.mu.TryLock() {
		return models.BatchSyncResult{}, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	var result models.BatchSyncResult
	if !s.network.Online() {
		return result, nil
	}

	entries, err := s.store.Queue().PendingEntries(ctx)
	if err != nil {
		return result, fmt.Errorf("load sync queue: %w", err)
	}

	first := true
	for _, group := range groupByPriority(entries) {
		batchSize := max(s.network.Settings().BatchSize, 1)

		for start := 0; start < len(group); start += batchSize {
			if !s.network.Online() {
				result.Aborted = true
				s.logger.Warn().Str("func", "*syncService.PerformBatchSync").
					Int("priority", group[start].Priority).Msg("connectivity lost, sync aborted")
				return result, nil
			}

			if delay := s.network.Settings().BatchDelay; !first && delay > 0 {
				if err = s.sleep(ctx, delay); err != nil {
					return result, err
				}
			}
			first = false

			batchID := s.ids.Generate()
			for _, entry := range group[start:min(start+batchSize, len(group))] {
				if err = s.syncEntry(ctx, entry, batchID, &result); err != nil {
					return result, err
				}
			}
		}
	}

	s.logger.Info().Str("func", "*syncService.PerformBatchSync").
		Int("success", result.Success).Int("failed", result.Failed).
		Int("conflicts", result.Conflicts).Int("deferred", result.Deferred).
		Msg("sync finished")

	return result, nil
}

// ResumeSync runs a sync after connectivity came back.
func (s *syncService) ResumeSync(ctx context.Context) {
	result, err := s.PerformBatchSync(ctx)
	if errors.Is(err, ErrSyncInProgress) {
		s.logger.Debug().Str("func", "*syncService.ResumeSync").Msg("sync already running")
		return
	}
	if err != nil {
		s.logger.Err(err).Str("func", "*syncService.ResumeSync").Msg("resumed sync failed")
		return
	}
	s.logger.Info().Str("func", "*syncService.ResumeSync").
		Int("success", result.Success).Bool("aborted", result.Aborted).Msg("resumed sync done")
}

func (s *syncService) QueueLength(ctx context.Context) (int, error) {
	n, err := s.store.Queue().QueueLength(ctx)
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// syncEntry exchanges one queue entry. Only storage failures and
// cancellation of ctx are returned.
func (s *syncService) syncEntry(ctx context.Context, entry models.SyncQueueEntry, batchID string, result *models.BatchSyncResult) error {
	if err := s.store.Queue().AssignBatch(ctx, entry.EntityType, entry.RecordID, batchID); err != nil {
		return fmt.Errorf("assign batch: %w", err)
	}

	record, err := s.store.Records().GetRecord(ctx, entry.EntityType, entry.RecordID)
	if errors.Is(err, store.ErrNotFound) {
		return s.dropEntry(ctx, entry)
	}
	if err != nil {
		return fmt.Errorf("get queued record: %w", err)
	}
	if record.SyncStatus == models.SyncStatusConflict {
		return s.dropEntry(ctx, entry)
	}

	req := models.ExchangeRequest{
		Operation:   entry.Operation,
		BaseVersion: record.RemoteVersion,
		Record:      record,
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, s.exchangeTimeout)
	ack, err := s.remote.Exchange(exchangeCtx, req)
	cancel()

	if err == nil {
		if err = s.acknowledge(ctx, record, ack); err != nil {
			return err
		}
		result.Success++
		return nil
	}

	if remote, ok := adapter.AsConflict(err); ok {
		conflict := s.conflicts.Resolve(record, remote)
		if _, err = s.conflicts.Apply(ctx, conflict); err != nil {
			return fmt.Errorf("apply conflict resolution: %w", err)
		}
		result.Conflicts++
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.recordFailure(ctx, entry, err, result)
}

// acknowledge records the remote version. The record only becomes synced
// when it was not written again while the exchange was in flight.
func (s *syncService) acknowledge(ctx context.Context, sent models.VersionedRecord, ack models.ExchangeAck) error {
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		current, err := tx.Records().GetRecord(ctx, sent.EntityType, sent.ID)
		if errors.Is(err, store.ErrNotFound) {
			return tx.Queue().RemoveEntry(ctx, sent.EntityType, sent.ID)
		}
		if err != nil {
			return fmt.Errorf("get acknowledged record: %w", err)
		}

		if current.Version != sent.Version {
			return tx.Records().SetSyncState(ctx, current.EntityType, current.ID, current.SyncStatus, ack.Version)
		}

		if current.Deleted {
			if err = tx.Records().DeleteRecord(ctx, current.EntityType, current.ID); err != nil {
				return fmt.Errorf("remove tombstone: %w", err)
			}
		} else if err = tx.Records().SetSyncState(ctx, current.EntityType, current.ID, models.SyncStatusSynced, ack.Version); err != nil {
			return fmt.Errorf("mark synced: %w", err)
		}
		return tx.Queue().RemoveEntry(ctx, current.EntityType, current.ID)
	})
	if err != nil {
		return fmt.Errorf("acknowledge %s/%s: %w", sent.EntityType, sent.ID, err)
	}

	if err = s.cache.Invalidate(ctx, sent.EntityType, sent.ID); err != nil {
		s.logger.Err(err).Str("func", "*syncService.acknowledge").Msg("failed to invalidate cache entry")
	}
	return nil
}

// recordFailure counts a transient failure and drops the entry once it
// went past the retry ceiling.
func (s *syncService) recordFailure(ctx context.Context, entry models.SyncQueueEntry, cause error, result *models.BatchSyncResult) error {
	attempts, err := s.store.Queue().RecordAttempt(ctx, entry.EntityType, entry.RecordID)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}

	if attempts > s.maxAttempts {
		if err = s.store.Queue().RemoveEntry(ctx, entry.EntityType, entry.RecordID); err != nil {
			return fmt.Errorf("drop exhausted entry: %w", err)
		}
		result.Failed++
		s.logger.Err(fmt.Errorf("%w: %w", ErrExhaustedRetry, cause)).Str("func", "*syncService.recordFailure").
			Str("entity_type", entry.EntityType.String()).Str("id", entry.RecordID).
			Int("attempts", attempts).Msg("sync entry dropped")
		return nil
	}

	result.Deferred++
	s.logger.Warn().Err(cause).Str("func", "*syncService.recordFailure").
		Str("entity_type", entry.EntityType.String()).Str("id", entry.RecordID).
		Int("attempts", attempts).Msg("exchange failed, entry kept")
	return nil
}

func (s *syncService) dropEntry(ctx context.Context, entry models.SyncQueueEntry) error {
	if err := s.store.Queue().RemoveEntry(ctx, entry.EntityType, entry.RecordID); err != nil {
		return fmt.Errorf("remove queue entry: %w", err)
	}
	return nil
}

// groupByPriority splits entries already ordered by (priority, seq) into
// runs of equal priority.
func groupByPriority(entries []models.SyncQueueEntry) [][]models.SyncQueueEntry {
	var groups [][]models.SyncQueueEntry
	for i, entry := range entries {
		if i == 0 || entry.Priority != entries[i-1].Priority {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], entry)
	}
	return groups
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
