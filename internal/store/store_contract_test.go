// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Both implementations must behave the same; every test below runs twice.
// ---------------------------------------------------------------------------

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			t.Helper()
			dsn := filepath.Join(t.TempDir(), "nutrisync.db")
			s, err := NewStore(context.Background(), config.Storage{DSN: dsn}, logger.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

func testRecord(id string, payload string, version int64) models.VersionedRecord {
	return models.VersionedRecord{
		ID:             id,
		EntityType:     models.EntityRecipe,
		Payload:        json.RawMessage(payload),
		Version:        version,
		LastModified:   1_700_000_000_000 + version,
		OriginClientID: "client-a",
		ContentHash:    "hash-" + id,
		SyncStatus:     models.SyncStatusPending,
	}
}

func ids(recs []models.VersionedRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

// ── Records ─────────────────────────────────────────────────────────────────

func TestStore_RecordRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec := testRecord("r1", `{"name":"soup"}`, 1)
		rec.RemoteVersion = 3

		require.NoError(t, s.Records().PutRecord(ctx, rec))

		got, err := s.Records().GetRecord(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		assert.Equal(t, rec, got)

		_, err = s.Records().GetRecord(ctx, models.EntityRecipe, "missing")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = s.Records().GetRecord(ctx, models.EntityIngredient, "r1")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_PutRecordReplaces(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Records().PutRecord(ctx, testRecord("r1", `{"name":"a"}`, 1)))
		require.NoError(t, s.Records().PutRecord(ctx, testRecord("r1", `{"name":"b"}`, 2)))

		got, err := s.Records().GetRecord(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		assert.JSONEq(t, `{"name":"b"}`, string(got.Payload))

		n, err := s.Records().CountRecords(ctx, models.EntityRecipe)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestStore_SetSyncState(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Records().PutRecord(ctx, testRecord("r1", `{"name":"a"}`, 4)))

		require.NoError(t, s.Records().SetSyncState(ctx, models.EntityRecipe, "r1", models.SyncStatusSynced, 9))
		got, err := s.Records().GetRecord(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
		assert.Equal(t, int64(9), got.RemoteVersion)
		assert.Equal(t, int64(4), got.Version)

		err = s.Records().SetSyncState(ctx, models.EntityRecipe, "nope", models.SyncStatusSynced, 1)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_ScanRecords(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		recs := []models.VersionedRecord{
			testRecord("c", `{"name":"c","category":"soup","favorite":true}`, 3),
			testRecord("a", `{"name":"a","category":"dessert"}`, 1),
			testRecord("d", `{"name":"d"}`, 5),
			testRecord("b", `{"name":"b","category":"soup","favorite":false}`, 2),
		}
		for _, r := range recs {
			require.NoError(t, s.Records().PutRecord(ctx, r))
		}
		tomb := testRecord("e", `{"name":"e","category":"soup"}`, 6)
		tomb.Deleted = true
		require.NoError(t, s.Records().PutRecord(ctx, tomb))
		other := testRecord("z", `{"name":"z"}`, 1)
		other.EntityType = models.EntityIngredient
		require.NoError(t, s.Records().PutRecord(ctx, other))

		tests := []struct {
			name string
			opts models.ScanOptions
			want []string
		}{
			{"default id ascending", models.ScanOptions{}, []string{"a", "b", "c", "d"}},
			{"id descending", models.ScanOptions{Direction: models.Descending}, []string{"d", "c", "b", "a"}},
			{"by version with limit", models.ScanOptions{Index: models.IndexVersion, Limit: 2}, []string{"a", "b"}},
			{"by version offset", models.ScanOptions{Index: models.IndexVersion, Offset: 1, Limit: 2}, []string{"b", "c"}},
			{"offset without limit", models.ScanOptions{Offset: 3}, []string{"d"}},
			{"offset past end", models.ScanOptions{Offset: 10}, []string{}},
			{"category filter", models.ScanOptions{Index: models.IndexCategory, Value: "soup"}, []string{"b", "c"}},
			{"category order nulls first", models.ScanOptions{Index: models.IndexCategory}, []string{"d", "a", "b", "c"}},
			{"favorite filter", models.ScanOptions{Index: models.IndexFavorite, Value: true}, []string{"c"}},
			{"last modified descending", models.ScanOptions{Index: models.IndexLastModified, Direction: models.Descending, Limit: 1}, []string{"d"}},
			{"sync status filter", models.ScanOptions{Index: models.IndexSyncStatus, Value: models.SyncStatusPending, Limit: 2}, []string{"a", "b"}},
			{"no match", models.ScanOptions{Index: models.IndexUserID, Value: "u1"}, []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.Records().ScanRecords(ctx, models.EntityRecipe, tt.opts)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(got))
			})
		}

		_, err := s.Records().ScanRecords(ctx, models.EntityRecipe, models.ScanOptions{Index: "calories"})
		require.ErrorIs(t, err, ErrBuildingSQLQuery)
		var se *StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "scan records", se.Op)
		assert.False(t, se.Retryable())

		n, err := s.Records().CountRecords(ctx, models.EntityRecipe)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})
}

func TestStore_DeleteRecord(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Records().PutRecord(ctx, testRecord("r1", `{"name":"a"}`, 1)))
		require.NoError(t, s.Records().DeleteRecord(ctx, models.EntityRecipe, "r1"))
		require.NoError(t, s.Records().DeleteRecord(ctx, models.EntityRecipe, "r1"))

		_, err := s.Records().GetRecord(ctx, models.EntityRecipe, "r1")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

// ── Queue ───────────────────────────────────────────────────────────────────

func TestStore_QueueCoalescing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		q := s.Queue()
		first := time.UnixMilli(1_000)

		require.NoError(t, q.Enqueue(ctx, models.SyncQueueEntry{
			RecordID: "r1", EntityType: models.EntityRecipe, Operation: models.OperationCreate,
			EnqueuedAt: first, Priority: 3, RecordVersion: 1,
		}))
		_, err := q.RecordAttempt(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)

		require.NoError(t, q.Enqueue(ctx, models.SyncQueueEntry{
			RecordID: "r1", EntityType: models.EntityRecipe, Operation: models.OperationUpdate,
			EnqueuedAt: time.UnixMilli(5_000), Priority: 2, RecordVersion: 2,
		}))

		n, err := q.QueueLength(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		e, err := q.GetEntry(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		assert.Equal(t, models.OperationCreate, e.Operation)
		assert.Equal(t, int64(2), e.RecordVersion)
		assert.Equal(t, 2, e.Priority)
		assert.Equal(t, 0, e.AttemptCount)
		assert.Equal(t, first.UnixMilli(), e.EnqueuedAt.UnixMilli())

		require.NoError(t, q.Enqueue(ctx, models.SyncQueueEntry{
			RecordID: "r1", EntityType: models.EntityRecipe, Operation: models.OperationDelete,
			EnqueuedAt: time.UnixMilli(6_000), Priority: 2, RecordVersion: 3,
		}))
		e, err = q.GetEntry(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		assert.Equal(t, models.OperationDelete, e.Operation)
	})
}

func TestStore_QueueOrdering(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		q := s.Queue()
		add := func(id string, prio int) {
			require.NoError(t, q.Enqueue(ctx, models.SyncQueueEntry{
				RecordID: id, EntityType: models.EntityRecipe, Operation: models.OperationCreate,
				EnqueuedAt: time.UnixMilli(1), Priority: prio, RecordVersion: 1,
			}))
		}
		add("low-1", 5)
		add("high-1", 1)
		add("mid", 3)
		add("high-2", 1)
		add("low-2", 5)

		entries, err := q.PendingEntries(ctx)
		require.NoError(t, err)
		got := make([]string, 0, len(entries))
		for _, e := range entries {
			got = append(got, e.RecordID)
		}
		assert.Equal(t, []string{"high-1", "high-2", "mid", "low-1", "low-2"}, got)
		assert.Less(t, entries[0].Seq, entries[1].Seq)
	})
}

func TestStore_QueueAttemptsAndRemoval(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		q := s.Queue()
		require.NoError(t, q.Enqueue(ctx, models.SyncQueueEntry{
			RecordID: "r1", EntityType: models.EntityRecipe, Operation: models.OperationCreate,
			EnqueuedAt: time.UnixMilli(1), Priority: 3, RecordVersion: 1,
		}))

		for want := 1; want <= 3; want++ {
			got, err := q.RecordAttempt(ctx, models.EntityRecipe, "r1")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		require.NoError(t, q.AssignBatch(ctx, models.EntityRecipe, "r1", "batch-1"))
		e, err := q.GetEntry(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		assert.Equal(t, "batch-1", e.BatchID)

		require.NoError(t, q.RemoveEntry(ctx, models.EntityRecipe, "r1"))
		require.NoError(t, q.RemoveEntry(ctx, models.EntityRecipe, "r1"))

		_, err = q.GetEntry(ctx, models.EntityRecipe, "r1")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = q.RecordAttempt(ctx, models.EntityRecipe, "r1")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

// ── Conflicts ───────────────────────────────────────────────────────────────

func TestStore_Conflicts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		c := s.Conflicts()

		resolved := time.UnixMilli(3_000)
		history := models.ConflictRecord{
			ID: "c1", EntityType: models.EntityRecipe, RecordID: "r1",
			Local:      testRecord("r1", `{"name":"l"}`, 2),
			Remote:     testRecord("r1", `{"name":"r"}`, 3),
			Resolution: models.ResolutionRemote,
			CreatedAt:  time.UnixMilli(1_000),
			ResolvedAt: &resolved,
		}
		pending := models.ConflictRecord{
			ID: "c2", EntityType: models.EntityRecipe, RecordID: "r2",
			Local:      testRecord("r2", `{"name":"l"}`, 2),
			Remote:     testRecord("r2", `{"name":"r"}`, 2),
			Resolution: models.ResolutionManual,
			CreatedAt:  time.UnixMilli(2_000),
		}
		require.NoError(t, c.SaveConflict(ctx, history))
		require.NoError(t, c.SaveConflict(ctx, pending))

		got, err := c.GetConflict(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, history.Local, got.Local)
		assert.Equal(t, history.Remote, got.Remote)
		require.NotNil(t, got.ResolvedAt)
		assert.Equal(t, resolved.UnixMilli(), got.ResolvedAt.UnixMilli())

		list, err := c.ListConflicts(ctx, true)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "c2", list[0].ID)

		merged := json.RawMessage(`{"name":"m"}`)
		require.NoError(t, c.ResolveConflict(ctx, "c2", models.ResolutionMerge, merged, time.UnixMilli(4_000)))
		err = c.ResolveConflict(ctx, "c2", models.ResolutionLocal, nil, time.UnixMilli(5_000))
		require.ErrorIs(t, err, ErrNotFound)

		list, err = c.ListConflicts(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, list)

		all, err := c.ListConflicts(ctx, false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "c1", all[0].ID)
		assert.Equal(t, models.ResolutionMerge, all[1].Resolution)
		assert.JSONEq(t, `{"name":"m"}`, string(all[1].MergedPayload))

		_, err = c.GetConflict(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

// ── Cache ───────────────────────────────────────────────────────────────────

func TestStore_Cache(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		c := s.Cache()
		put := func(id string, prio int, at int64, size int64) {
			require.NoError(t, c.PutEntry(ctx, models.CacheEntry{
				ID: id, EntityType: models.EntityRecipe, Payload: json.RawMessage("blob-" + id),
				Version: 1, Priority: prio, LastAccessed: time.UnixMilli(at), SizeBytes: size,
			}))
		}
		put("old-fresh", 10, 100, 10)
		put("stale", 1, 500, 20)
		put("mid", 5, 200, 30)
		put("stale-older", 1, 300, 40)

		n, total, err := c.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, int64(100), total)

		ranked, err := c.RankedEntries(ctx)
		require.NoError(t, err)
		order := make([]string, 0, len(ranked))
		for _, e := range ranked {
			order = append(order, e.ID)
			assert.Empty(t, e.Payload)
		}
		assert.Equal(t, []string{"stale-older", "stale", "mid", "old-fresh"}, order)

		require.NoError(t, c.TouchEntry(ctx, models.EntityRecipe, "stale-older", time.UnixMilli(900)))
		ranked, err = c.RankedEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, "stale", ranked[0].ID)

		got, err := c.GetEntry(ctx, models.EntityRecipe, "mid")
		require.NoError(t, err)
		assert.Equal(t, "blob-mid", string(got.Payload))
		assert.Equal(t, int64(200), got.LastAccessed.UnixMilli())

		require.NoError(t, c.DeleteEntry(ctx, models.EntityRecipe, "mid"))
		_, err = c.GetEntry(ctx, models.EntityRecipe, "mid")
		require.ErrorIs(t, err, ErrNotFound)

		n, total, err = c.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, int64(70), total)
	})
}

// ── Remote records ──────────────────────────────────────────────────────────

func TestStore_RemoteRecords(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec := testRecord("r1", `{"name":"srv"}`, 7)

		require.NoError(t, s.Remote().PutRemoteRecord(ctx, rec))
		got, err := s.Remote().GetRemoteRecord(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.Version)
		assert.Equal(t, int64(7), got.RemoteVersion)
		assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
		assert.Equal(t, rec.ContentHash, got.ContentHash)
		assert.False(t, got.Deleted)

		tomb := rec
		tomb.Version = 8
		tomb.Deleted = true
		require.NoError(t, s.Remote().PutRemoteRecord(ctx, tomb))
		got, err = s.Remote().GetRemoteRecord(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		assert.True(t, got.Deleted)
		assert.Equal(t, int64(8), got.Version)

		require.NoError(t, s.Remote().DeleteRemoteRecord(ctx, models.EntityRecipe, "r1"))
		_, err = s.Remote().GetRemoteRecord(ctx, models.EntityRecipe, "r1")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

// ── Transactions ────────────────────────────────────────────────────────────

func TestStore_WithinTx(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		boom := errors.New("boom")

		err := s.WithinTx(ctx, func(tx Store) error {
			require.NoError(t, tx.Records().PutRecord(ctx, testRecord("r1", `{"name":"a"}`, 1)))
			require.NoError(t, tx.Queue().Enqueue(ctx, models.SyncQueueEntry{
				RecordID: "r1", EntityType: models.EntityRecipe, Operation: models.OperationCreate,
				EnqueuedAt: time.UnixMilli(1), Priority: 3, RecordVersion: 1,
			}))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Records().GetRecord(ctx, models.EntityRecipe, "r1")
		require.ErrorIs(t, err, ErrNotFound)
		n, err := s.Queue().QueueLength(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		err = s.WithinTx(ctx, func(tx Store) error {
			if err := tx.Records().PutRecord(ctx, testRecord("r1", `{"name":"a"}`, 1)); err != nil {
				return err
			}
			// nested calls join the outer transaction
			return tx.WithinTx(ctx, func(inner Store) error {
				return inner.Queue().Enqueue(ctx, models.SyncQueueEntry{
					RecordID: "r1", EntityType: models.EntityRecipe, Operation: models.OperationCreate,
					EnqueuedAt: time.UnixMilli(1), Priority: 3, RecordVersion: 1,
				})
			})
		})
		require.NoError(t, err)

		_, err = s.Records().GetRecord(ctx, models.EntityRecipe, "r1")
		require.NoError(t, err)
		n, err = s.Queue().QueueLength(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
