// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// queueRepository is the SQLite implementation of [QueueRepository].
type queueRepository struct {
	db *DB
	q  querier
}

// NewQueueRepository constructs a [QueueRepository] on db.
func NewQueueRepository(db *DB) QueueRepository {
	return &queueRepository{db: db, q: db.DB}
}

func (r *queueRepository) Enqueue(ctx context.Context, entry models.SyncQueueEntry) error {
	log := logger.FromContext(ctx)

	enqueuedAt := entry.EnqueuedAt
	if enqueuedAt.IsZero() {
		enqueuedAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx, enqueue,
		string(entry.EntityType),
		entry.RecordID,
		string(entry.Operation),
		enqueuedAt.UnixMilli(),
		entry.Priority,
		entry.RecordVersion,
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("entity_type", string(entry.EntityType)).
			Str("record_id", entry.RecordID).
			Str("operation", string(entry.Operation)).
			Msg("failed to enqueue sync entry")
		return r.db.storageError("enqueue", ErrExecutingStatement, err)
	}

	return nil
}

func (r *queueRepository) GetEntry(ctx context.Context, entityType models.EntityType, recordID string) (models.SyncQueueEntry, error) {
	entry, err := scanQueueEntry(r.q.QueryRowContext(ctx, getQueueEntry, string(entityType), recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncQueueEntry{}, fmt.Errorf("queue entry %s/%s: %w", entityType, recordID, ErrNotFound)
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "queueRepository.GetEntry").
			Str("entity_type", string(entityType)).
			Str("record_id", recordID).
			Msg("failed to get queue entry")
		return models.SyncQueueEntry{}, r.db.storageError("get queue entry", ErrScanningRow, err)
	}
	return entry, nil
}

func (r *queueRepository) PendingEntries(ctx context.Context) ([]models.SyncQueueEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildPendingEntriesQuery()
	if err != nil {
		log.Err(err).Str("func", "queueRepository.PendingEntries").Msg("failed to create query")
		return nil, queryBuildError("list pending entries", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.PendingEntries").Msg("failed to query sync queue")
		return nil, r.db.storageError("pending entries", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.SyncQueueEntry
	for rows.Next() {
		entry, scanErr := scanQueueEntry(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "queueRepository.PendingEntries").Msg("failed to scan queue row")
			return nil, r.db.storageError("pending entries", ErrScanningRow, scanErr)
		}
		entries = append(entries, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "queueRepository.PendingEntries").Msg("error occurred during rows iteration")
		return nil, r.db.storageError("pending entries", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

func (r *queueRepository) AssignBatch(ctx context.Context, entityType models.EntityType, recordID, batchID string) error {
	if _, err := r.q.ExecContext(ctx, assignBatch, batchID, string(entityType), recordID); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "queueRepository.AssignBatch").
			Str("record_id", recordID).
			Str("batch_id", batchID).
			Msg("failed to tag queue entry with batch")
		return r.db.storageError("assign batch", ErrExecutingStatement, err)
	}
	return nil
}

func (r *queueRepository) RecordAttempt(ctx context.Context, entityType models.EntityType, recordID string) (int, error) {
	var attempts int
	err := r.q.QueryRowContext(ctx, recordAttempt, string(entityType), recordID).Scan(&attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("queue entry %s/%s: %w", entityType, recordID, ErrNotFound)
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "queueRepository.RecordAttempt").
			Str("entity_type", string(entityType)).
			Str("record_id", recordID).
			Msg("failed to increment attempt count")
		return 0, r.db.storageError("record attempt", ErrExecutingStatement, err)
	}
	return attempts, nil
}

func (r *queueRepository) RemoveEntry(ctx context.Context, entityType models.EntityType, recordID string) error {
	if _, err := r.q.ExecContext(ctx, removeQueueEntry, string(entityType), recordID); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "queueRepository.RemoveEntry").
			Str("entity_type", string(entityType)).
			Str("record_id", recordID).
			Msg("failed to remove queue entry")
		return r.db.storageError("remove queue entry", ErrExecutingStatement, err)
	}
	return nil
}

func (r *queueRepository) QueueLength(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, queueLength).Scan(&n); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "queueRepository.QueueLength").
			Msg("failed to count queue entries")
		return 0, r.db.storageError("queue length", ErrExecutingQuery, err)
	}
	return n, nil
}

func scanQueueEntry(row rowScanner) (models.SyncQueueEntry, error) {
	var (
		e          models.SyncQueueEntry
		entityType string
		operation  string
		enqueuedAt int64
	)
	err := row.Scan(
		&e.Seq,
		&entityType,
		&e.RecordID,
		&operation,
		&enqueuedAt,
		&e.AttemptCount,
		&e.Priority,
		&e.BatchID,
		&e.RecordVersion,
	)
	if err != nil {
		return models.SyncQueueEntry{}, err
	}
	e.EntityType = models.EntityType(entityType)
	e.Operation = models.Operation(operation)
	e.EnqueuedAt = time.UnixMilli(enqueuedAt)
	return e, nil
}
