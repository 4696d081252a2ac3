// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-nutri-sync/models"
)

const (
	getRecord = `
		SELECT
			entity_type,
			id,
			payload,
			version,
			last_modified,
			origin_client_id,
			content_hash,
			sync_status,
			remote_version,
			deleted
		FROM records
		WHERE entity_type = ? AND id = ?;`

	putRecord = `
		INSERT INTO records (
			entity_type,
			id,
			payload,
			version,
			last_modified,
			origin_client_id,
			content_hash,
			sync_status,
			remote_version,
			deleted,
			category,
			favorite,
			date,
			user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, id) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			last_modified = excluded.last_modified,
			origin_client_id = excluded.origin_client_id,
			content_hash = excluded.content_hash,
			sync_status = excluded.sync_status,
			remote_version = excluded.remote_version,
			deleted = excluded.deleted,
			category = excluded.category,
			favorite = excluded.favorite,
			date = excluded.date,
			user_id = excluded.user_id;`

	deleteRecord = `DELETE FROM records WHERE entity_type = ? AND id = ?;`

	setSyncState = `
		UPDATE records
		SET sync_status = ?, remote_version = ?
		WHERE entity_type = ? AND id = ?;`

	countRecords = `SELECT COUNT(*) FROM records WHERE entity_type = ? AND deleted = 0;`

	// a newer write keeps Seq/EnqueuedAt; create stays create until the
	// remote has seen the record, delete always wins
	enqueue = `
		INSERT INTO sync_queue (
			entity_type,
			record_id,
			operation,
			enqueued_at,
			attempt_count,
			priority,
			batch_id,
			record_version
		) VALUES (?, ?, ?, ?, 0, ?, '', ?)
		ON CONFLICT (entity_type, record_id) DO UPDATE SET
			operation = CASE
				WHEN sync_queue.operation = 'create' AND excluded.operation = 'update' THEN 'create'
				ELSE excluded.operation
			END,
			attempt_count = 0,
			priority = excluded.priority,
			record_version = excluded.record_version;`

	getQueueEntry = `
		SELECT
			seq,
			entity_type,
			record_id,
			operation,
			enqueued_at,
			attempt_count,
			priority,
			batch_id,
			record_version
		FROM sync_queue
		WHERE entity_type = ? AND record_id = ?;`

	assignBatch = `UPDATE sync_queue SET batch_id = ? WHERE entity_type = ? AND record_id = ?;`

	recordAttempt = `
		UPDATE sync_queue
		SET attempt_count = attempt_count + 1
		WHERE entity_type = ? AND record_id = ?
		RETURNING attempt_count;`

	removeQueueEntry = `DELETE FROM sync_queue WHERE entity_type = ? AND record_id = ?;`

	queueLength = `SELECT COUNT(*) FROM sync_queue;`

	saveConflict = `
		INSERT INTO conflicts (
			id,
			entity_type,
			record_id,
			local_record,
			remote_record,
			resolution,
			merged_payload,
			created_at,
			resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	getConflict = `
		SELECT
			id,
			entity_type,
			record_id,
			local_record,
			remote_record,
			resolution,
			merged_payload,
			created_at,
			resolved_at
		FROM conflicts
		WHERE id = ?;`

	resolveConflict = `
		UPDATE conflicts
		SET resolution = ?, merged_payload = ?, resolved_at = ?
		WHERE id = ? AND resolved_at IS NULL;`

	putCacheEntry = `
		INSERT INTO cache_entries (
			entity_type,
			id,
			payload,
			version,
			priority,
			last_accessed,
			size_bytes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, id) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			priority = excluded.priority,
			last_accessed = excluded.last_accessed,
			size_bytes = excluded.size_bytes;`

	getCacheEntry = `
		SELECT
			entity_type,
			id,
			payload,
			version,
			priority,
			last_accessed,
			size_bytes
		FROM cache_entries
		WHERE entity_type = ? AND id = ?;`

	touchCacheEntry = `UPDATE cache_entries SET last_accessed = ? WHERE entity_type = ? AND id = ?;`

	deleteCacheEntry = `DELETE FROM cache_entries WHERE entity_type = ? AND id = ?;`

	cacheTotals = `SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM cache_entries;`

	getRemoteRecord = `
		SELECT
			entity_type,
			id,
			payload,
			version,
			last_modified,
			origin_client_id,
			content_hash,
			deleted
		FROM remote_records
		WHERE entity_type = ? AND id = ?;`

	putRemoteRecord = `
		INSERT INTO remote_records (
			entity_type,
			id,
			payload,
			version,
			last_modified,
			origin_client_id,
			content_hash,
			deleted,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, id) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			last_modified = excluded.last_modified,
			origin_client_id = excluded.origin_client_id,
			content_hash = excluded.content_hash,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at;`

	deleteRemoteRecord = `DELETE FROM remote_records WHERE entity_type = ? AND id = ?;`
)

var recordColumns = []string{
	"entity_type",
	"id",
	"payload",
	"version",
	"last_modified",
	"origin_client_id",
	"content_hash",
	"sync_status",
	"remote_version",
	"deleted",
}

var queueColumns = []string{
	"seq",
	"entity_type",
	"record_id",
	"operation",
	"enqueued_at",
	"attempt_count",
	"priority",
	"batch_id",
	"record_version",
}

var conflictColumns = []string{
	"id",
	"entity_type",
	"record_id",
	"local_record",
	"remote_record",
	"resolution",
	"merged_payload",
	"created_at",
	"resolved_at",
}

// indexColumns maps a load index to its column in the records table.
var indexColumns = map[models.Index]string{
	models.IndexID:           "id",
	models.IndexVersion:      "version",
	models.IndexLastModified: "last_modified",
	models.IndexSyncStatus:   "sync_status",
	models.IndexCategory:     "category",
	models.IndexFavorite:     "favorite",
	models.IndexDate:         "date",
	models.IndexUserID:       "user_id",
}

// buildScanRecordsQuery builds the progressive-load scan: live records of one
// entity type, optionally filtered by index value, ordered by the index with
// id as tie breaker, with offset and limit applied in SQL.
func buildScanRecordsQuery(entityType models.EntityType, opts models.ScanOptions) (string, []any, error) {
	index := opts.Index
	if index == "" {
		index = models.IndexID
	}
	column, ok := indexColumns[index]
	if !ok {
		return "", nil, fmt.Errorf("%w: unsupported index %q", ErrBuildingSQLQuery, index)
	}

	dir := "ASC"
	if opts.Direction == models.Descending {
		dir = "DESC"
	}

	builder := sq.Select(recordColumns...).
		From("records").
		Where(sq.Eq{"entity_type": string(entityType)}).
		Where(sq.Eq{"deleted": false})

	if opts.Value != nil {
		builder = builder.Where(sq.Eq{column: indexValue(opts.Value)})
	}

	builder = builder.OrderBy(column + " " + dir)
	if column != "id" {
		builder = builder.OrderBy("id " + dir)
	}

	if opts.Limit > 0 {
		builder = builder.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			// SQLite requires LIMIT before OFFSET
			builder = builder.Limit(uint64(1 << 62))
		}
		builder = builder.Offset(uint64(opts.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// indexValue normalizes filter values to what the records columns hold.
func indexValue(v any) any {
	switch val := v.(type) {
	case models.SyncStatus:
		return string(val)
	case models.EntityType:
		return string(val)
	case int:
		return int64(val)
	default:
		return v
	}
}

// buildPendingEntriesQuery lists the queue in sync order.
func buildPendingEntriesQuery() (string, []any, error) {
	query, args, err := sq.Select(queueColumns...).
		From("sync_queue").
		OrderBy("priority ASC", "seq ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildListConflictsQuery lists conflicts oldest first.
func buildListConflictsQuery(pendingOnly bool) (string, []any, error) {
	builder := sq.Select(conflictColumns...).From("conflicts")
	if pendingOnly {
		builder = builder.Where(sq.Eq{"resolved_at": nil})
	}
	query, args, err := builder.OrderBy("created_at ASC", "id ASC").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildRankedCacheQuery lists cache entries in eviction order.
func buildRankedCacheQuery() (string, []any, error) {
	query, args, err := sq.Select("entity_type", "id", "version", "priority", "last_accessed", "size_bytes").
		From("cache_entries").
		OrderBy("priority ASC", "last_accessed ASC", "entity_type ASC", "id ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
