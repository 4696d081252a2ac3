// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/entity"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/internal/validators"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Save ─────────────────────────────────────────────────────────────────────

func TestVersionService_Save_SequentialVersions(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	first, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	env.clock.Advance(time.Second)
	second, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":2}`))
	require.NoError(t, err)

	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, hashOf(t, `{"a":2}`), second.ContentHash)
	assert.Equal(t, models.SyncStatusPending, second.SyncStatus)
	assert.Equal(t, testClientID, second.OriginClientID)
	assert.Equal(t, testStart.Add(time.Second).UnixMilli(), second.LastModified)

	stored, err := env.store.Records().GetRecord(ctx, "note", "1")
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestVersionService_Save_VersionGrowsByOne(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		rec, err := env.engine.Versions.Save(ctx, "note", "n", raw(t, map[string]int{"i": i}))
		require.NoError(t, err)
		assert.Equal(t, int64(i), rec.Version)
	}
}

func TestVersionService_Save_CanonicalPayload(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec, err := env.engine.Versions.Save(context.Background(), "note", "1", json.RawMessage(`{ "b": 2, "a": 1 }`))
	require.NoError(t, err)

	assert.JSONEq(t, `{"a":1,"b":2}`, string(rec.Payload))
	assert.Equal(t, `{"a":1,"b":2}`, string(rec.Payload))
	assert.Equal(t, hashOf(t, `{"b":2,"a":1}`), rec.ContentHash)
}

func TestVersionService_Save_EnqueuesOneEntryPerID(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	_, err := env.engine.Versions.Save(ctx, models.EntityRecipe, "r1", json.RawMessage(`{"name":"soup"}`))
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.engine.Versions.Save(ctx, models.EntityRecipe, "r1", json.RawMessage(`{"name":"soup","favorite":true}`))
	require.NoError(t, err)

	entry, err := env.store.Queue().GetEntry(ctx, models.EntityRecipe, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.OperationCreate, entry.Operation)
	assert.Equal(t, entity.PriorityFavoriteRecipe, entry.Priority)
	assert.Equal(t, int64(2), entry.RecordVersion)
	assert.True(t, entry.EnqueuedAt.Equal(testStart), "first enqueue time is kept")

	n, err := env.engine.Sync.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVersionService_Save_Priorities(t *testing.T) {
	tests := []struct {
		name       string
		entityType models.EntityType
		payload    string
		want       int
	}{
		{"nutrition log", models.EntityNutritionLog, `{"date":"2026-03-01"}`, entity.PriorityLog},
		{"activity log", models.EntityActivityLog, `{"date":"2026-03-01"}`, entity.PriorityLog},
		{"favorite recipe", models.EntityRecipe, `{"name":"x","favorite":true}`, entity.PriorityFavoriteRecipe},
		{"recipe", models.EntityRecipe, `{"name":"x"}`, entity.PriorityRecipe},
		{"ingredient", models.EntityIngredient, `{"name":"salt"}`, entity.PriorityReference},
		{"generic", "user_settings", `{"theme":"dark"}`, entity.PriorityDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil, nil)
			ctx := context.Background()

			_, err := env.engine.Versions.Save(ctx, tt.entityType, "id", json.RawMessage(tt.payload))
			require.NoError(t, err)

			entry, err := env.store.Queue().GetEntry(ctx, tt.entityType, "id")
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Priority)
		})
	}
}

func TestVersionService_Save_UpdateAfterSync(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	_, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.NoError(t, env.store.Records().SetSyncState(ctx, "note", "1", models.SyncStatusSynced, 4))
	require.NoError(t, env.store.Queue().RemoveEntry(ctx, "note", "1"))

	rec, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":2}`))
	require.NoError(t, err)
	assert.Equal(t, int64(4), rec.RemoteVersion)

	entry, err := env.store.Queue().GetEntry(ctx, "note", "1")
	require.NoError(t, err)
	assert.Equal(t, models.OperationUpdate, entry.Operation)
}

func TestVersionService_Save_ConflictRecordNotQueued(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	_, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.NoError(t, env.store.Records().SetSyncState(ctx, "note", "1", models.SyncStatusConflict, 0))
	require.NoError(t, env.store.Queue().RemoveEntry(ctx, "note", "1"))

	rec, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":2}`))
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusConflict, rec.SyncStatus)
	assert.Equal(t, int64(2), rec.Version)

	_, err = env.store.Queue().GetEntry(ctx, "note", "1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVersionService_Save_Validation(t *testing.T) {
	tests := []struct {
		name       string
		entityType models.EntityType
		id         string
		payload    string
		field      string
		wantErr    error
	}{
		{"empty type", "", "1", `{}`, validators.FieldEntityType, validators.ErrEmptyEntityType},
		{"empty id", "note", "", `{}`, validators.FieldID, validators.ErrEmptyID},
		{"array payload", "note", "1", `[1,2]`, validators.FieldPayload, validators.ErrPayloadNotObject},
		{"broken payload", "note", "1", `{"a":`, validators.FieldPayload, nil},
		{"recipe without name", models.EntityRecipe, "1", `{"tags":["x"]}`, validators.FieldPayload, entity.ErrMissingName},
		{"log with bad date", models.EntityNutritionLog, "1", `{"date":"01.03.2026"}`, validators.FieldPayload, entity.ErrInvalidDate},
		{"keys equal after nfc", "note", "1", "{\"é\":1,\"e\u0301\":2}", validators.FieldPayload, utils.ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil, nil)
			ctx := context.Background()

			_, err := env.engine.Versions.Save(ctx, tt.entityType, tt.id, json.RawMessage(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			n, err := env.engine.Sync.QueueLength(ctx)
			require.NoError(t, err)
			assert.Zero(t, n, "nothing is persisted on validation failure")
		})
	}
}

func TestVersionService_Save_RefreshesCache(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	saved, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)

	cached, ok, err := env.engine.Cache.Lookup(ctx, "note", "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved, cached)
}

// ── Get ──────────────────────────────────────────────────────────────────────

func TestVersionService_Get(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	saved, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.NoError(t, env.engine.Cache.Invalidate(ctx, "note", "1"))

	got, err := env.engine.Versions.Get(ctx, "note", "1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, ok, err := env.engine.Cache.Lookup(ctx, "note", "1")
	require.NoError(t, err)
	assert.True(t, ok, "read-through fills the cache")

	_, err = env.engine.Versions.Get(ctx, "note", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = env.engine.Versions.Get(ctx, "", "1")
	assert.ErrorIs(t, err, ErrValidation)
}

// ── Delete ───────────────────────────────────────────────────────────────────

func TestVersionService_Delete_UnsentRecordIsRemoved(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	_, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)

	tombstone, err := env.engine.Versions.Delete(ctx, "note", "1")
	require.NoError(t, err)
	assert.True(t, tombstone.Deleted)
	assert.Equal(t, int64(2), tombstone.Version)

	_, err = env.store.Records().GetRecord(ctx, "note", "1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, queueIDs(t, env.store))
}

func TestVersionService_Delete_SyncedRecordIsTombstoned(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	_, err := env.engine.Versions.Save(ctx, models.EntityRecipe, "r1", json.RawMessage(`{"name":"soup"}`))
	require.NoError(t, err)
	require.NoError(t, env.store.Records().SetSyncState(ctx, models.EntityRecipe, "r1", models.SyncStatusSynced, 1))
	require.NoError(t, env.store.Queue().RemoveEntry(ctx, models.EntityRecipe, "r1"))

	tombstone, err := env.engine.Versions.Delete(ctx, models.EntityRecipe, "r1")
	require.NoError(t, err)
	assert.True(t, tombstone.Deleted)
	assert.Equal(t, int64(2), tombstone.Version)
	assert.Equal(t, models.SyncStatusPending, tombstone.SyncStatus)

	stored, err := env.store.Records().GetRecord(ctx, models.EntityRecipe, "r1")
	require.NoError(t, err)
	assert.True(t, stored.Deleted)

	entry, err := env.store.Queue().GetEntry(ctx, models.EntityRecipe, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.OperationDelete, entry.Operation)
	assert.Equal(t, entity.PriorityRecipe, entry.Priority)

	_, err = env.engine.Versions.Get(ctx, models.EntityRecipe, "r1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = env.engine.Versions.Delete(ctx, models.EntityRecipe, "r1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVersionService_Delete_SentCreateIsTombstoned(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	_, err := env.engine.Versions.Save(ctx, "note", "1", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.NoError(t, env.store.Queue().AssignBatch(ctx, "note", "1", "batch-1"))

	_, err = env.engine.Versions.Delete(ctx, "note", "1")
	require.NoError(t, err)

	stored, err := env.store.Records().GetRecord(ctx, "note", "1")
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
	assert.Equal(t, []string{"1"}, queueIDs(t, env.store))
}

func TestVersionService_Delete_Missing(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, err := env.engine.Versions.Delete(context.Background(), "note", "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
