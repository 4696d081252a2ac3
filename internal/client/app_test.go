// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/config"
	httpHandler "github.com/MKhiriev/go-nutri-sync/internal/handler/http"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHashKey = "shared-secret"

type syncServer struct {
	*httptest.Server
	services *service.Services
}

func newSyncServer(t *testing.T) *syncServer {
	t.Helper()
	s := store.NewMemoryStore()
	services := service.NewServices(s)
	h := httpHandler.NewHandler(services, config.App{HashKey: testHashKey}, logger.Nop())

	srv := httptest.NewServer(h.Init())
	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})
	return &syncServer{Server: srv, services: services}
}

func newTestApp(t *testing.T, serverURL, clientID string) *App {
	t.Helper()
	cfg := &config.ClientConfig{
		App:     config.App{ClientID: clientID, HashKey: testHashKey},
		Adapter: config.Adapter{HTTPAddress: serverURL, RequestTimeout: 5 * time.Second},
		Storage: config.Storage{DSN: store.MemoryDSN},
		Network: config.Network{ProbeTimeout: 2 * time.Second},
	}

	app, err := NewApp(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func recipe(t *testing.T, name string, calories int) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"name": name, "calories": calories})
	require.NoError(t, err)
	return payload
}

func TestNewApp_InvalidAdapterAddress(t *testing.T) {
	cfg := &config.ClientConfig{Storage: config.Storage{DSN: store.MemoryDSN}}
	_, err := NewApp(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestApp_OfflineUntilProbed(t *testing.T) {
	srv := newSyncServer(t)
	app := newTestApp(t, srv.URL, "device-a")
	ctx := context.Background()

	_, err := app.Engine.Versions.Save(ctx, models.EntityRecipe, "r1", recipe(t, "porridge", 320))
	require.NoError(t, err)

	result, err := app.Engine.Sync.PerformBatchSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.BatchSyncResult{}, result)

	profile := app.Probe(ctx)
	require.True(t, profile.Online)

	result, err = app.Engine.Sync.PerformBatchSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	got, err := app.Engine.Versions.Get(ctx, models.EntityRecipe, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, int64(1), got.RemoteVersion)

	remote, err := srv.services.RemoteService.Fetch(ctx, models.EntityRecipe, "r1")
	require.NoError(t, err)
	assert.Equal(t, got.ContentHash, remote.ContentHash)
	assert.Equal(t, "device-a", remote.OriginClientID)
}

func TestApp_TwoDevicesConverge(t *testing.T) {
	srv := newSyncServer(t)
	a := newTestApp(t, srv.URL, "device-a")
	b := newTestApp(t, srv.URL, "device-b")
	ctx := context.Background()
	a.Probe(ctx)
	b.Probe(ctx)

	_, err := a.Engine.Versions.Save(ctx, models.EntityRecipe, "r1", recipe(t, "porridge", 320))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	newer, err := b.Engine.Versions.Save(ctx, models.EntityRecipe, "r1", recipe(t, "porridge", 350))
	require.NoError(t, err)

	result, err := a.Engine.Sync.PerformBatchSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	// b is stale against the server, its newer write wins and is requeued
	result, err = b.Engine.Sync.PerformBatchSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Conflicts)

	result, err = b.Engine.Sync.PerformBatchSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	remote, err := srv.services.RemoteService.Fetch(ctx, models.EntityRecipe, "r1")
	require.NoError(t, err)
	assert.Equal(t, newer.ContentHash, remote.ContentHash)
	assert.Equal(t, int64(2), remote.Version)

	conflicts, err := b.Engine.Conflicts.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestApp_DeletePropagates(t *testing.T) {
	srv := newSyncServer(t)
	app := newTestApp(t, srv.URL, "device-a")
	ctx := context.Background()
	app.Probe(ctx)

	_, err := app.Engine.Versions.Save(ctx, models.EntityRecipe, "r1", recipe(t, "porridge", 320))
	require.NoError(t, err)
	_, err = app.Engine.Sync.PerformBatchSync(ctx)
	require.NoError(t, err)

	_, err = app.Engine.Versions.Delete(ctx, models.EntityRecipe, "r1")
	require.NoError(t, err)
	result, err := app.Engine.Sync.PerformBatchSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	_, err = srv.services.RemoteService.Fetch(ctx, models.EntityRecipe, "r1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = app.Engine.Versions.Get(ctx, models.EntityRecipe, "r1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	n, err := app.Engine.Sync.QueueLength(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	srv := newSyncServer(t)
	app := newTestApp(t, srv.URL, "device-a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, app.monitor.Online, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
