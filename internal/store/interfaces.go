// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-nutri-sync/models"
)

// RecordRepository persists authoritative versioned records.
type RecordRepository interface {
	// GetRecord returns the record, tombstones included, or ErrNotFound.
	GetRecord(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error)
	// PutRecord inserts or replaces the record and its index fields.
	PutRecord(ctx context.Context, record models.VersionedRecord) error
	// DeleteRecord physically removes the row. Missing rows are not an error.
	DeleteRecord(ctx context.Context, entityType models.EntityType, id string) error
	// SetSyncState updates sync status and remote version without touching
	// the record version. Returns ErrNotFound for a missing row.
	SetSyncState(ctx context.Context, entityType models.EntityType, id string, status models.SyncStatus, remoteVersion int64) error
	// ScanRecords returns live records ordered by the requested index.
	ScanRecords(ctx context.Context, entityType models.EntityType, opts models.ScanOptions) ([]models.VersionedRecord, error)
	// CountRecords counts live records of entityType.
	CountRecords(ctx context.Context, entityType models.EntityType) (int, error)
}

// QueueRepository persists the outbound sync queue.
type QueueRepository interface {
	// Enqueue adds an entry or coalesces it into the existing entry of the
	// same (entity type, record id), keeping its Seq and EnqueuedAt.
	Enqueue(ctx context.Context, entry models.SyncQueueEntry) error
	// GetEntry returns the entry for the record or ErrNotFound.
	GetEntry(ctx context.Context, entityType models.EntityType, recordID string) (models.SyncQueueEntry, error)
	// PendingEntries lists entries ordered by (priority, seq).
	PendingEntries(ctx context.Context) ([]models.SyncQueueEntry, error)
	// AssignBatch tags the entry with the sub-batch that picked it.
	AssignBatch(ctx context.Context, entityType models.EntityType, recordID, batchID string) error
	// RecordAttempt increments the attempt counter and returns its new value.
	RecordAttempt(ctx context.Context, entityType models.EntityType, recordID string) (int, error)
	// RemoveEntry drops the entry. Missing entries are not an error.
	RemoveEntry(ctx context.Context, entityType models.EntityType, recordID string) error
	// QueueLength counts queued entries.
	QueueLength(ctx context.Context) (int, error)
}

// ConflictRepository persists conflict decisions.
type ConflictRepository interface {
	SaveConflict(ctx context.Context, conflict models.ConflictRecord) error
	GetConflict(ctx context.Context, id string) (models.ConflictRecord, error)
	// ListConflicts returns conflicts ordered by creation time, optionally
	// only the unresolved ones.
	ListConflicts(ctx context.Context, pendingOnly bool) ([]models.ConflictRecord, error)
	// ResolveConflict stamps an unresolved conflict. Returns ErrNotFound when
	// no unresolved conflict has that id.
	ResolveConflict(ctx context.Context, id string, resolution models.Resolution, merged json.RawMessage, at time.Time) error
}

// CacheRepository persists the derived read cache. Payloads are stored as
// given; compression is the caller's concern.
type CacheRepository interface {
	PutEntry(ctx context.Context, entry models.CacheEntry) error
	GetEntry(ctx context.Context, entityType models.EntityType, id string) (models.CacheEntry, error)
	TouchEntry(ctx context.Context, entityType models.EntityType, id string, at time.Time) error
	DeleteEntry(ctx context.Context, entityType models.EntityType, id string) error
	// RankedEntries lists entries without payload, least valuable first:
	// ascending by (priority, last accessed).
	RankedEntries(ctx context.Context) ([]models.CacheEntry, error)
	// Totals returns the entry count and the sum of SizeBytes.
	Totals(ctx context.Context) (entries int, totalBytes int64, err error)
}

// RemoteRecordRepository persists the records held by the reference sync
// endpoint.
type RemoteRecordRepository interface {
	GetRemoteRecord(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error)
	PutRemoteRecord(ctx context.Context, record models.VersionedRecord) error
	DeleteRemoteRecord(ctx context.Context, entityType models.EntityType, id string) error
}

// Store groups the repositories and the transaction boundary.
type Store interface {
	Records() RecordRepository
	Queue() QueueRepository
	Conflicts() ConflictRepository
	Cache() CacheRepository
	Remote() RemoteRecordRepository

	// WithinTx runs fn against a transactional view of the store. fn's
	// writes are committed together when it returns nil and discarded
	// otherwise. Nested calls join the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Close() error
}
