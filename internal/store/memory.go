// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/entity"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// MemoryDSN selects the in-memory store in [NewStore].
const MemoryDSN = "memory"

type recordKey struct {
	entityType models.EntityType
	id         string
}

type memoryState struct {
	records   map[recordKey]models.VersionedRecord
	queue     map[recordKey]models.SyncQueueEntry
	nextSeq   int64
	conflicts map[string]models.ConflictRecord
	cache     map[recordKey]models.CacheEntry
	remote    map[recordKey]models.VersionedRecord
}

func newMemoryState() *memoryState {
	return &memoryState{
		records:   make(map[recordKey]models.VersionedRecord),
		queue:     make(map[recordKey]models.SyncQueueEntry),
		nextSeq:   1,
		conflicts: make(map[string]models.ConflictRecord),
		cache:     make(map[recordKey]models.CacheEntry),
		remote:    make(map[recordKey]models.VersionedRecord),
	}
}

// clone copies the maps; values are treated as immutable once stored.
func (m *memoryState) clone() *memoryState {
	return &memoryState{
		records:   maps.Clone(m.records),
		queue:     maps.Clone(m.queue),
		nextSeq:   m.nextSeq,
		conflicts: maps.Clone(m.conflicts),
		cache:     maps.Clone(m.cache),
		remote:    maps.Clone(m.remote),
	}
}

// memoryStore is a [Store] kept entirely in process memory. Transactions
// work on a copy of the state that replaces the original on success.
type memoryStore struct {
	mu    *sync.Mutex
	state *memoryState
	inTx  bool
}

// NewMemoryStore constructs an empty in-memory [Store].
func NewMemoryStore() Store {
	return &memoryStore{mu: &sync.Mutex{}, state: newMemoryState()}
}

func (s *memoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memoryStore) Records() RecordRepository      { return memoryRecords{s} }
func (s *memoryStore) Queue() QueueRepository         { return memoryQueue{s} }
func (s *memoryStore) Conflicts() ConflictRepository  { return memoryConflicts{s} }
func (s *memoryStore) Cache() CacheRepository         { return memoryCache{s} }
func (s *memoryStore) Remote() RemoteRecordRepository { return memoryRemote{s} }

func (s *memoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "begin transaction", Class: NonRetryable, Err: fmt.Errorf("%w: %w", ErrBeginningTransaction, err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryStore{mu: s.mu, state: s.state.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (s *memoryStore) Close() error { return nil }

type memoryRecords struct{ s *memoryStore }

func (r memoryRecords) GetRecord(_ context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	defer r.s.lock()()
	rec, ok := r.s.state.records[recordKey{entityType, id}]
	if !ok {
		return models.VersionedRecord{}, fmt.Errorf("record %s/%s: %w", entityType, id, ErrNotFound)
	}
	return rec.Clone(), nil
}

func (r memoryRecords) PutRecord(_ context.Context, record models.VersionedRecord) error {
	defer r.s.lock()()
	r.s.state.records[recordKey{record.EntityType, record.ID}] = record.Clone()
	return nil
}

func (r memoryRecords) DeleteRecord(_ context.Context, entityType models.EntityType, id string) error {
	defer r.s.lock()()
	delete(r.s.state.records, recordKey{entityType, id})
	return nil
}

func (r memoryRecords) SetSyncState(_ context.Context, entityType models.EntityType, id string, status models.SyncStatus, remoteVersion int64) error {
	defer r.s.lock()()
	key := recordKey{entityType, id}
	rec, ok := r.s.state.records[key]
	if !ok {
		return fmt.Errorf("record %s/%s: %w", entityType, id, ErrNotFound)
	}
	rec.SyncStatus = status
	rec.RemoteVersion = remoteVersion
	r.s.state.records[key] = rec
	return nil
}

func (r memoryRecords) ScanRecords(_ context.Context, entityType models.EntityType, opts models.ScanOptions) ([]models.VersionedRecord, error) {
	index := opts.Index
	if index == "" {
		index = models.IndexID
	}
	if !index.Valid() {
		return nil, queryBuildError("scan records", fmt.Errorf("%w: unsupported index %q", ErrBuildingSQLQuery, index))
	}

	defer r.s.lock()()

	var filter any
	if opts.Value != nil {
		filter = indexValue(opts.Value)
	}

	type row struct {
		rec models.VersionedRecord
		key any
	}
	rows := make([]row, 0)
	for k, rec := range r.s.state.records {
		if k.entityType != entityType || rec.Deleted {
			continue
		}
		v := recordIndexValue(rec, index)
		if opts.Value != nil && v != filter {
			continue
		}
		rows = append(rows, row{rec: rec, key: v})
	}

	slices.SortFunc(rows, func(a, b row) int {
		c := compareIndexValues(a.key, b.key)
		if c == 0 {
			c = cmp.Compare(a.rec.ID, b.rec.ID)
		}
		if opts.Direction == models.Descending {
			return -c
		}
		return c
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(rows) {
			return []models.VersionedRecord{}, nil
		}
		rows = rows[opts.Offset:]
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	out := make([]models.VersionedRecord, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.rec.Clone())
	}
	return out, nil
}

func (r memoryRecords) CountRecords(_ context.Context, entityType models.EntityType) (int, error) {
	defer r.s.lock()()
	n := 0
	for k, rec := range r.s.state.records {
		if k.entityType == entityType && !rec.Deleted {
			n++
		}
	}
	return n, nil
}

// recordIndexValue returns the value of index for rec in the same shape the
// SQLite columns hold; nil for an absent entity field.
func recordIndexValue(rec models.VersionedRecord, index models.Index) any {
	switch index {
	case models.IndexID:
		return rec.ID
	case models.IndexVersion:
		return rec.Version
	case models.IndexLastModified:
		return rec.LastModified
	case models.IndexSyncStatus:
		return string(rec.SyncStatus)
	}

	f := entity.KindOf(rec.EntityType).IndexFields(rec.Payload)
	switch index {
	case models.IndexCategory:
		return derefAny(f.Category)
	case models.IndexFavorite:
		return derefAny(f.Favorite)
	case models.IndexDate:
		return derefAny(f.Date)
	case models.IndexUserID:
		return derefAny(f.UserID)
	}
	return nil
}

func derefAny[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// compareIndexValues orders like SQLite: NULL first, then by value.
func compareIndexValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return cmp.Compare(boolInt(av), boolInt(bv))
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type memoryQueue struct{ s *memoryStore }

func (q memoryQueue) Enqueue(_ context.Context, entry models.SyncQueueEntry) error {
	defer q.s.lock()()
	key := recordKey{entry.EntityType, entry.RecordID}
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now()
	}

	existing, ok := q.s.state.queue[key]
	if !ok {
		entry.Seq = q.s.state.nextSeq
		q.s.state.nextSeq++
		entry.AttemptCount = 0
		entry.BatchID = ""
		q.s.state.queue[key] = entry
		return nil
	}

	op := entry.Operation
	if existing.Operation == models.OperationCreate && op == models.OperationUpdate {
		op = models.OperationCreate
	}
	existing.Operation = op
	existing.AttemptCount = 0
	existing.Priority = entry.Priority
	existing.RecordVersion = entry.RecordVersion
	q.s.state.queue[key] = existing
	return nil
}

func (q memoryQueue) GetEntry(_ context.Context, entityType models.EntityType, recordID string) (models.SyncQueueEntry, error) {
	defer q.s.lock()()
	e, ok := q.s.state.queue[recordKey{entityType, recordID}]
	if !ok {
		return models.SyncQueueEntry{}, fmt.Errorf("queue entry %s/%s: %w", entityType, recordID, ErrNotFound)
	}
	return e, nil
}

func (q memoryQueue) PendingEntries(context.Context) ([]models.SyncQueueEntry, error) {
	defer q.s.lock()()
	entries := slices.Collect(maps.Values(q.s.state.queue))
	slices.SortFunc(entries, func(a, b models.SyncQueueEntry) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return entries, nil
}

func (q memoryQueue) AssignBatch(_ context.Context, entityType models.EntityType, recordID, batchID string) error {
	defer q.s.lock()()
	key := recordKey{entityType, recordID}
	if e, ok := q.s.state.queue[key]; ok {
		e.BatchID = batchID
		q.s.state.queue[key] = e
	}
	return nil
}

func (q memoryQueue) RecordAttempt(_ context.Context, entityType models.EntityType, recordID string) (int, error) {
	defer q.s.lock()()
	key := recordKey{entityType, recordID}
	e, ok := q.s.state.queue[key]
	if !ok {
		return 0, fmt.Errorf("queue entry %s/%s: %w", entityType, recordID, ErrNotFound)
	}
	e.AttemptCount++
	q.s.state.queue[key] = e
	return e.AttemptCount, nil
}

func (q memoryQueue) RemoveEntry(_ context.Context, entityType models.EntityType, recordID string) error {
	defer q.s.lock()()
	delete(q.s.state.queue, recordKey{entityType, recordID})
	return nil
}

func (q memoryQueue) QueueLength(context.Context) (int, error) {
	defer q.s.lock()()
	return len(q.s.state.queue), nil
}

type memoryConflicts struct{ s *memoryStore }

func (c memoryConflicts) SaveConflict(_ context.Context, conflict models.ConflictRecord) error {
	defer c.s.lock()()
	if _, exists := c.s.state.conflicts[conflict.ID]; exists {
		return &StorageError{Op: "save conflict", Class: NonRetryable, Err: fmt.Errorf("%w: duplicate conflict id %s", ErrExecutingStatement, conflict.ID)}
	}
	c.s.state.conflicts[conflict.ID] = cloneConflict(conflict)
	return nil
}

func (c memoryConflicts) GetConflict(_ context.Context, id string) (models.ConflictRecord, error) {
	defer c.s.lock()()
	conflict, ok := c.s.state.conflicts[id]
	if !ok {
		return models.ConflictRecord{}, fmt.Errorf("conflict %s: %w", id, ErrNotFound)
	}
	return cloneConflict(conflict), nil
}

func (c memoryConflicts) ListConflicts(_ context.Context, pendingOnly bool) ([]models.ConflictRecord, error) {
	defer c.s.lock()()
	var out []models.ConflictRecord
	for _, conflict := range c.s.state.conflicts {
		if pendingOnly && !conflict.Pending() {
			continue
		}
		out = append(out, cloneConflict(conflict))
	}
	slices.SortFunc(out, func(a, b models.ConflictRecord) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (c memoryConflicts) ResolveConflict(_ context.Context, id string, resolution models.Resolution, merged json.RawMessage, at time.Time) error {
	defer c.s.lock()()
	conflict, ok := c.s.state.conflicts[id]
	if !ok || !conflict.Pending() {
		return fmt.Errorf("unresolved conflict %s: %w", id, ErrNotFound)
	}
	conflict.Resolution = resolution
	conflict.MergedPayload = append(json.RawMessage(nil), merged...)
	if len(merged) == 0 {
		conflict.MergedPayload = nil
	}
	resolvedAt := time.UnixMilli(at.UnixMilli())
	conflict.ResolvedAt = &resolvedAt
	c.s.state.conflicts[id] = conflict
	return nil
}

func cloneConflict(c models.ConflictRecord) models.ConflictRecord {
	out := c
	out.Local = c.Local.Clone()
	out.Remote = c.Remote.Clone()
	if c.MergedPayload != nil {
		out.MergedPayload = append(json.RawMessage(nil), c.MergedPayload...)
	}
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}

type memoryCache struct{ s *memoryStore }

func (c memoryCache) PutEntry(_ context.Context, entry models.CacheEntry) error {
	defer c.s.lock()()
	entry.Payload = append(json.RawMessage(nil), entry.Payload...)
	c.s.state.cache[recordKey{entry.EntityType, entry.ID}] = entry
	return nil
}

func (c memoryCache) GetEntry(_ context.Context, entityType models.EntityType, id string) (models.CacheEntry, error) {
	defer c.s.lock()()
	e, ok := c.s.state.cache[recordKey{entityType, id}]
	if !ok {
		return models.CacheEntry{}, fmt.Errorf("cache entry %s/%s: %w", entityType, id, ErrNotFound)
	}
	e.Payload = append(json.RawMessage(nil), e.Payload...)
	return e, nil
}

func (c memoryCache) TouchEntry(_ context.Context, entityType models.EntityType, id string, at time.Time) error {
	defer c.s.lock()()
	key := recordKey{entityType, id}
	if e, ok := c.s.state.cache[key]; ok {
		e.LastAccessed = at
		c.s.state.cache[key] = e
	}
	return nil
}

func (c memoryCache) DeleteEntry(_ context.Context, entityType models.EntityType, id string) error {
	defer c.s.lock()()
	delete(c.s.state.cache, recordKey{entityType, id})
	return nil
}

func (c memoryCache) RankedEntries(context.Context) ([]models.CacheEntry, error) {
	defer c.s.lock()()
	entries := make([]models.CacheEntry, 0, len(c.s.state.cache))
	for _, e := range c.s.state.cache {
		e.Payload = nil
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b models.CacheEntry) int {
		if n := cmp.Compare(a.Priority, b.Priority); n != 0 {
			return n
		}
		if n := a.LastAccessed.Compare(b.LastAccessed); n != 0 {
			return n
		}
		if n := cmp.Compare(a.EntityType, b.EntityType); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return entries, nil
}

func (c memoryCache) Totals(context.Context) (int, int64, error) {
	defer c.s.lock()()
	var total int64
	for _, e := range c.s.state.cache {
		total += e.SizeBytes
	}
	return len(c.s.state.cache), total, nil
}

type memoryRemote struct{ s *memoryStore }

func (r memoryRemote) GetRemoteRecord(_ context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	defer r.s.lock()()
	rec, ok := r.s.state.remote[recordKey{entityType, id}]
	if !ok {
		return models.VersionedRecord{}, fmt.Errorf("remote record %s/%s: %w", entityType, id, ErrNotFound)
	}
	return rec.Clone(), nil
}

func (r memoryRemote) PutRemoteRecord(_ context.Context, record models.VersionedRecord) error {
	defer r.s.lock()()
	rec := record.Clone()
	rec.SyncStatus = models.SyncStatusSynced
	rec.RemoteVersion = rec.Version
	r.s.state.remote[recordKey{record.EntityType, record.ID}] = rec
	return nil
}

func (r memoryRemote) DeleteRemoteRecord(_ context.Context, entityType models.EntityType, id string) error {
	defer r.s.lock()()
	delete(r.s.state.remote, recordKey{entityType, id})
	return nil
}
