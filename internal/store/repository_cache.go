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

// cacheRepository is the SQLite implementation of [CacheRepository].
type cacheRepository struct {
	db *DB
	q  querier
}

// NewCacheRepository constructs a [CacheRepository] on db.
func NewCacheRepository(db *DB) CacheRepository {
	return &cacheRepository{db: db, q: db.DB}
}

func (r *cacheRepository) PutEntry(ctx context.Context, entry models.CacheEntry) error {
	_, err := r.q.ExecContext(ctx, putCacheEntry,
		string(entry.EntityType),
		entry.ID,
		[]byte(entry.Payload),
		entry.Version,
		entry.Priority,
		entry.LastAccessed.UnixMilli(),
		entry.SizeBytes,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.PutEntry").
			Str("entity_type", string(entry.EntityType)).
			Str("id", entry.ID).
			Msg("failed to upsert cache entry")
		return r.db.storageError("put cache entry", ErrExecutingStatement, err)
	}
	return nil
}

func (r *cacheRepository) GetEntry(ctx context.Context, entityType models.EntityType, id string) (models.CacheEntry, error) {
	var (
		e            models.CacheEntry
		et           string
		payload      []byte
		lastAccessed int64
	)
	err := r.q.QueryRowContext(ctx, getCacheEntry, string(entityType), id).Scan(
		&et,
		&e.ID,
		&payload,
		&e.Version,
		&e.Priority,
		&lastAccessed,
		&e.SizeBytes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CacheEntry{}, fmt.Errorf("cache entry %s/%s: %w", entityType, id, ErrNotFound)
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.GetEntry").
			Str("entity_type", string(entityType)).
			Str("id", id).
			Msg("failed to get cache entry")
		return models.CacheEntry{}, r.db.storageError("get cache entry", ErrScanningRow, err)
	}

	e.EntityType = models.EntityType(et)
	e.Payload = append([]byte(nil), payload...)
	e.LastAccessed = time.UnixMilli(lastAccessed)
	return e, nil
}

func (r *cacheRepository) TouchEntry(ctx context.Context, entityType models.EntityType, id string, at time.Time) error {
	if _, err := r.q.ExecContext(ctx, touchCacheEntry, at.UnixMilli(), string(entityType), id); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.TouchEntry").
			Str("entity_type", string(entityType)).
			Str("id", id).
			Msg("failed to refresh cache entry")
		return r.db.storageError("touch cache entry", ErrExecutingStatement, err)
	}
	return nil
}

func (r *cacheRepository) DeleteEntry(ctx context.Context, entityType models.EntityType, id string) error {
	if _, err := r.q.ExecContext(ctx, deleteCacheEntry, string(entityType), id); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.DeleteEntry").
			Str("entity_type", string(entityType)).
			Str("id", id).
			Msg("failed to delete cache entry")
		return r.db.storageError("delete cache entry", ErrExecutingStatement, err)
	}
	return nil
}

func (r *cacheRepository) RankedEntries(ctx context.Context) ([]models.CacheEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildRankedCacheQuery()
	if err != nil {
		log.Err(err).Str("func", "cacheRepository.RankedEntries").Msg("failed to create query")
		return nil, queryBuildError("rank cache entries", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "cacheRepository.RankedEntries").Msg("failed to query cache entries")
		return nil, r.db.storageError("ranked cache entries", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.CacheEntry
	for rows.Next() {
		var (
			e            models.CacheEntry
			et           string
			lastAccessed int64
		)
		if scanErr := rows.Scan(&et, &e.ID, &e.Version, &e.Priority, &lastAccessed, &e.SizeBytes); scanErr != nil {
			log.Err(scanErr).Str("func", "cacheRepository.RankedEntries").Msg("failed to scan cache row")
			return nil, r.db.storageError("ranked cache entries", ErrScanningRow, scanErr)
		}
		e.EntityType = models.EntityType(et)
		e.LastAccessed = time.UnixMilli(lastAccessed)
		entries = append(entries, e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "cacheRepository.RankedEntries").Msg("error occurred during rows iteration")
		return nil, r.db.storageError("ranked cache entries", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

func (r *cacheRepository) Totals(ctx context.Context) (int, int64, error) {
	var (
		n     int
		total int64
	)
	if err := r.q.QueryRowContext(ctx, cacheTotals).Scan(&n, &total); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.Totals").
			Msg("failed to sum cache sizes")
		return 0, 0, r.db.storageError("cache totals", ErrExecutingQuery, err)
	}
	return n, total, nil
}
