// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the engine of the local-first store: version
// stamping, progressive loads, the read cache, conflict resolution and the
// sync orchestrator, plus the service behind the reference sync endpoint.
package service

import (
	"context"
	"encoding/json"
	"iter"
	"time"

	"github.com/MKhiriev/go-nutri-sync/models"
)

// VersionService stamps application writes into versioned records.
type VersionService interface {
	Save(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) (models.VersionedRecord, error)
	Delete(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error)
	Get(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error)
}

// LoaderService serves paged reads of one entity type.
type LoaderService interface {
	// LoadPage returns a one-shot sequence: iterating it a second time
	// yields nothing.
	LoadPage(ctx context.Context, entityType models.EntityType, opts models.PageOptions) iter.Seq2[models.VersionedRecord, error]
}

// CacheService maintains the bounded read cache.
type CacheService interface {
	Touch(ctx context.Context, record models.VersionedRecord) error
	Cleanup(ctx context.Context) (int, error)
	Lookup(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, bool, error)
	Invalidate(ctx context.Context, entityType models.EntityType, id string) error
	Stats(ctx context.Context) (models.CacheStats, error)
}

// ConflictService decides and applies local/remote divergences.
type ConflictService interface {
	// Resolve is pure: it only decides.
	Resolve(local, remote models.VersionedRecord) models.ConflictRecord
	Apply(ctx context.Context, conflict models.ConflictRecord) (models.VersionedRecord, error)
	ListPending(ctx context.Context) ([]models.ConflictRecord, error)
	ResolveManual(ctx context.Context, conflictID string, resolution models.Resolution, merged json.RawMessage) (models.VersionedRecord, error)
}

// SyncService drains the sync queue against the remote endpoint.
type SyncService interface {
	PerformBatchSync(ctx context.Context) (models.BatchSyncResult, error)
	ResumeSync(ctx context.Context)
	QueueLength(ctx context.Context) (int, error)
}

// SyncJob runs PerformBatchSync periodically.
type SyncJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}

// RemoteService applies exchanges on the reference sync endpoint.
type RemoteService interface {
	Exchange(ctx context.Context, req models.ExchangeRequest) (models.ExchangeAck, error)
	Fetch(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error)
}

// RemoteServiceWrapper decorates a RemoteService with extra behaviour such as
// validation.
type RemoteServiceWrapper interface {
	Wrap(RemoteService) RemoteService
}

// NetworkState is the read-only view of connectivity the services consult.
type NetworkState interface {
	Profile() models.NetworkProfile
	Settings() models.AdaptiveSettings
	Online() bool
}
