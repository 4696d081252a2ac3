// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// conflictRepository is the SQLite implementation of [ConflictRepository].
// Record snapshots are stored as JSON documents.
type conflictRepository struct {
	db *DB
	q  querier
}

// NewConflictRepository constructs a [ConflictRepository] on db.
func NewConflictRepository(db *DB) ConflictRepository {
	return &conflictRepository{db: db, q: db.DB}
}

func (r *conflictRepository) SaveConflict(ctx context.Context, conflict models.ConflictRecord) error {
	log := logger.FromContext(ctx)

	local, err := json.Marshal(conflict.Local)
	if err != nil {
		return r.db.storageError("save conflict", ErrEncodingColumn, err)
	}
	remote, err := json.Marshal(conflict.Remote)
	if err != nil {
		return r.db.storageError("save conflict", ErrEncodingColumn, err)
	}

	_, err = r.q.ExecContext(ctx, saveConflict,
		conflict.ID,
		string(conflict.EntityType),
		conflict.RecordID,
		local,
		remote,
		string(conflict.Resolution),
		nullableBytes(conflict.MergedPayload),
		conflict.CreatedAt.UnixMilli(),
		nullableMillis(conflict.ResolvedAt),
	)
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.SaveConflict").
			Str("conflict_id", conflict.ID).
			Str("record_id", conflict.RecordID).
			Str("resolution", string(conflict.Resolution)).
			Msg("failed to save conflict")
		return r.db.storageError("save conflict", ErrExecutingStatement, err)
	}

	return nil
}

func (r *conflictRepository) GetConflict(ctx context.Context, id string) (models.ConflictRecord, error) {
	c, err := scanConflict(r.q.QueryRowContext(ctx, getConflict, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ConflictRecord{}, fmt.Errorf("conflict %s: %w", id, ErrNotFound)
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "conflictRepository.GetConflict").
			Str("conflict_id", id).
			Msg("failed to get conflict")
		return models.ConflictRecord{}, r.db.storageError("get conflict", ErrScanningRow, err)
	}
	return c, nil
}

func (r *conflictRepository) ListConflicts(ctx context.Context, pendingOnly bool) ([]models.ConflictRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListConflictsQuery(pendingOnly)
	if err != nil {
		log.Err(err).Str("func", "conflictRepository.ListConflicts").Msg("failed to create query")
		return nil, queryBuildError("list conflicts", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.ListConflicts").
			Bool("pending_only", pendingOnly).
			Msg("failed to query conflicts")
		return nil, r.db.storageError("list conflicts", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var conflicts []models.ConflictRecord
	for rows.Next() {
		c, scanErr := scanConflict(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "conflictRepository.ListConflicts").Msg("failed to scan conflict row")
			return nil, r.db.storageError("list conflicts", ErrScanningRow, scanErr)
		}
		conflicts = append(conflicts, c)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "conflictRepository.ListConflicts").Msg("error occurred during rows iteration")
		return nil, r.db.storageError("list conflicts", ErrScanningRows, rowsErr)
	}

	return conflicts, nil
}

func (r *conflictRepository) ResolveConflict(ctx context.Context, id string, resolution models.Resolution, merged json.RawMessage, at time.Time) error {
	res, err := r.q.ExecContext(ctx, resolveConflict, string(resolution), nullableBytes(merged), at.UnixMilli(), id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "conflictRepository.ResolveConflict").
			Str("conflict_id", id).
			Msg("failed to resolve conflict")
		return r.db.storageError("resolve conflict", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return r.db.storageError("resolve conflict", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return fmt.Errorf("unresolved conflict %s: %w", id, ErrNotFound)
	}

	return nil
}

func scanConflict(row rowScanner) (models.ConflictRecord, error) {
	var (
		c          models.ConflictRecord
		entityType string
		local      []byte
		remote     []byte
		resolution string
		merged     []byte
		createdAt  int64
		resolvedAt sql.NullInt64
	)
	err := row.Scan(
		&c.ID,
		&entityType,
		&c.RecordID,
		&local,
		&remote,
		&resolution,
		&merged,
		&createdAt,
		&resolvedAt,
	)
	if err != nil {
		return models.ConflictRecord{}, err
	}

	if err = json.Unmarshal(local, &c.Local); err != nil {
		return models.ConflictRecord{}, fmt.Errorf("decode local snapshot: %w", err)
	}
	if err = json.Unmarshal(remote, &c.Remote); err != nil {
		return models.ConflictRecord{}, fmt.Errorf("decode remote snapshot: %w", err)
	}

	c.EntityType = models.EntityType(entityType)
	c.Resolution = models.Resolution(resolution)
	if len(merged) > 0 {
		c.MergedPayload = append([]byte(nil), merged...)
	}
	c.CreatedAt = time.UnixMilli(createdAt)
	if resolvedAt.Valid {
		t := time.UnixMilli(resolvedAt.Int64)
		c.ResolvedAt = &t
	}
	return c, nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullableMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
