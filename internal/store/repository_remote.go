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

// remoteRecordRepository is the SQLite implementation of
// [RemoteRecordRepository] used by the reference sync endpoint.
type remoteRecordRepository struct {
	db *DB
	q  querier
}

// NewRemoteRecordRepository constructs a [RemoteRecordRepository] on db.
func NewRemoteRecordRepository(db *DB) RemoteRecordRepository {
	return &remoteRecordRepository{db: db, q: db.DB}
}

func (r *remoteRecordRepository) GetRemoteRecord(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	var (
		rec     models.VersionedRecord
		et      string
		payload []byte
	)
	err := r.q.QueryRowContext(ctx, getRemoteRecord, string(entityType), id).Scan(
		&et,
		&rec.ID,
		&payload,
		&rec.Version,
		&rec.LastModified,
		&rec.OriginClientID,
		&rec.ContentHash,
		&rec.Deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VersionedRecord{}, fmt.Errorf("remote record %s/%s: %w", entityType, id, ErrNotFound)
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "remoteRecordRepository.GetRemoteRecord").
			Str("entity_type", string(entityType)).
			Str("id", id).
			Msg("failed to get remote record")
		return models.VersionedRecord{}, r.db.storageError("get remote record", ErrScanningRow, err)
	}

	rec.EntityType = models.EntityType(et)
	rec.Payload = append([]byte(nil), payload...)
	rec.SyncStatus = models.SyncStatusSynced
	rec.RemoteVersion = rec.Version
	return rec, nil
}

func (r *remoteRecordRepository) PutRemoteRecord(ctx context.Context, record models.VersionedRecord) error {
	_, err := r.q.ExecContext(ctx, putRemoteRecord,
		string(record.EntityType),
		record.ID,
		[]byte(record.Payload),
		record.Version,
		record.LastModified,
		record.OriginClientID,
		record.ContentHash,
		record.Deleted,
		time.Now().UnixMilli(),
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "remoteRecordRepository.PutRemoteRecord").
			Str("entity_type", string(record.EntityType)).
			Str("id", record.ID).
			Int64("version", record.Version).
			Msg("failed to upsert remote record")
		return r.db.storageError("put remote record", ErrExecutingStatement, err)
	}
	return nil
}

func (r *remoteRecordRepository) DeleteRemoteRecord(ctx context.Context, entityType models.EntityType, id string) error {
	if _, err := r.q.ExecContext(ctx, deleteRemoteRecord, string(entityType), id); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "remoteRecordRepository.DeleteRemoteRecord").
			Str("entity_type", string(entityType)).
			Str("id", id).
			Msg("failed to delete remote record")
		return r.db.storageError("delete remote record", ErrExecutingStatement, err)
	}
	return nil
}
