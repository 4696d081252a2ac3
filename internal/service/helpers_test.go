// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/adapter"
	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/network"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-a"

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeNetwork is a NetworkState scripted by tests.
type fakeNetwork struct {
	mu      sync.RWMutex
	profile models.NetworkProfile
	limits  network.Limits
}

func newFakeNetwork(class models.EffectiveClass, dataSaver bool) *fakeNetwork {
	return &fakeNetwork{
		profile: models.NetworkProfile{Online: true, EffectiveClass: class, DataSaver: dataSaver},
		limits:  network.DefaultLimits(),
	}
}

func (f *fakeNetwork) Profile() models.NetworkProfile {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.profile
}

func (f *fakeNetwork) Settings() models.AdaptiveSettings {
	p := f.Profile()
	f.mu.RLock()
	defer f.mu.RUnlock()
	return network.Adapt(p.EffectiveClass, p.DataSaver, f.limits)
}

func (f *fakeNetwork) Online() bool {
	return f.Profile().Online
}

func (f *fakeNetwork) setOnline(online bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile.Online = online
}

func (f *fakeNetwork) setLimits(l network.Limits) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = l
}

// seqIDs hands out predictable ids.
type seqIDs struct {
	prefix string
	n      atomic.Int64
}

func (s *seqIDs) Generate() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1))
}

type testEnv struct {
	store   store.Store
	clock   *utils.ManualClock
	network *fakeNetwork
	engine  *Engine
}

func newTestEnv(t *testing.T, remote adapter.RemoteEndpoint, net *fakeNetwork) *testEnv {
	t.Helper()
	if net == nil {
		net = newFakeNetwork(models.Class4G, false)
	}

	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })

	clock := utils.NewManualClock(testStart)
	engine := NewEngine(s, remote, net,
		config.App{ClientID: testClientID},
		config.Sync{ExchangeTimeout: time.Second, MaxAttempts: models.MaxSyncAttempts},
		logger.Nop(),
		WithClock(clock),
		WithIDGenerator(&seqIDs{prefix: "id"}),
	)
	// no real sleeping between sub-batches in tests
	engine.Sync.(*syncService).sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	return &testEnv{store: s, clock: clock, network: net, engine: engine}
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func hashOf(t *testing.T, payload string) string {
	t.Helper()
	canonical, err := utils.CanonicalObject([]byte(payload))
	require.NoError(t, err)
	h, err := utils.ContentHash(canonical)
	require.NoError(t, err)
	return h
}

func queueIDs(t *testing.T, s store.Store) []string {
	t.Helper()
	entries, err := s.Queue().PendingEntries(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.RecordID)
	}
	return ids
}
