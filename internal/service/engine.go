// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-nutri-sync/internal/adapter"
	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
)

// Engine is the handle of one local-first store instance. It is built once
// and shared by every caller of the process.
type Engine struct {
	Versions  VersionService
	Loader    LoaderService
	Cache     CacheService
	Conflicts ConflictService
	Sync      SyncService
	SyncJob   SyncJob
	Network   NetworkState

	store store.Store
}

type engineOptions struct {
	clock utils.Clock
	ids   utils.IDGenerator
}

// EngineOption customises NewEngine.
type EngineOption func(*engineOptions)

// WithClock replaces the system clock.
func WithClock(clock utils.Clock) EngineOption {
	return func(o *engineOptions) { o.clock = clock }
}

// WithIDGenerator replaces the UUID generator of batch and conflict ids.
func WithIDGenerator(ids utils.IDGenerator) EngineOption {
	return func(o *engineOptions) { o.ids = ids }
}

func NewEngine(s store.Store, remote adapter.RemoteEndpoint, network NetworkState, app config.App, syncCfg config.Sync, log *logger.Logger, opts ...EngineOption) *Engine {
	o := engineOptions{clock: utils.SystemClock{}, ids: utils.UUIDGenerator{}}
	for _, opt := range opts {
		opt(&o)
	}

	cache := NewCacheService(s, network, o.clock, log.ForComponent("cache"))
	conflicts := NewConflictService(s, cache, o.clock, o.ids, app.ClientID, log.ForComponent("conflict"))
	syncService := NewSyncService(s, remote, conflicts, cache, network, o.ids, syncCfg, log.ForComponent("sync"))

	return &Engine{
		Versions:  NewVersionService(s, cache, o.clock, app.ClientID, log.ForComponent("version")),
		Loader:    NewLoaderService(s, cache, network, log.ForComponent("loader")),
		Cache:     cache,
		Conflicts: conflicts,
		Sync:      syncService,
		SyncJob:   NewSyncJob(syncService, log.ForComponent("sync-job")),
		Network:   network,
		store:     s,
	}
}

// ResumeSync matches network.ResumeFunc.
func (e *Engine) ResumeSync(ctx context.Context) {
	e.Sync.ResumeSync(ctx)
}

// Close stops the sync job and closes the store.
func (e *Engine) Close() error {
	e.SyncJob.Stop()
	return e.store.Close()
}
