// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-nutri-sync/internal/entity"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// recordRepository is the SQLite implementation of [RecordRepository].
type recordRepository struct {
	db *DB
	q  querier
}

// NewRecordRepository constructs a [RecordRepository] on db.
func NewRecordRepository(db *DB) RecordRepository {
	return &recordRepository{db: db, q: db.DB}
}

func (r *recordRepository) GetRecord(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	log := logger.FromContext(ctx)

	rec, err := scanRecord(r.q.QueryRowContext(ctx, getRecord, string(entityType), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VersionedRecord{}, fmt.Errorf("record %s/%s: %w", entityType, id, ErrNotFound)
		}
		log.Err(err).
			Str("func", "recordRepository.GetRecord").
			Str("entity_type", string(entityType)).
			Str("id", id).
			Msg("failed to get record")
		return models.VersionedRecord{}, r.db.storageError("get record", ErrScanningRow, err)
	}

	return rec, nil
}

func (r *recordRepository) PutRecord(ctx context.Context, record models.VersionedRecord) error {
	log := logger.FromContext(ctx)

	idx := entity.KindOf(record.EntityType).IndexFields(record.Payload)
	_, err := r.q.ExecContext(ctx, putRecord,
		string(record.EntityType),
		record.ID,
		[]byte(record.Payload),
		record.Version,
		record.LastModified,
		record.OriginClientID,
		record.ContentHash,
		string(record.SyncStatus),
		record.RemoteVersion,
		record.Deleted,
		idx.Category,
		idx.Favorite,
		idx.Date,
		idx.UserID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.PutRecord").
			Str("entity_type", string(record.EntityType)).
			Str("id", record.ID).
			Int64("version", record.Version).
			Msg("failed to upsert record")
		return r.db.storageError("put record", ErrExecutingStatement, err)
	}

	return nil
}

func (r *recordRepository) DeleteRecord(ctx context.Context, entityType models.EntityType, id string) error {
	log := logger.FromContext(ctx)

	if _, err := r.q.ExecContext(ctx, deleteRecord, string(entityType), id); err != nil {
		log.Err(err).
			Str("func", "recordRepository.DeleteRecord").
			Str("entity_type", string(entityType)).
			Str("id", id).
			Msg("failed to delete record")
		return r.db.storageError("delete record", ErrExecutingStatement, err)
	}

	return nil
}

func (r *recordRepository) SetSyncState(ctx context.Context, entityType models.EntityType, id string, status models.SyncStatus, remoteVersion int64) error {
	log := logger.FromContext(ctx)

	res, err := r.q.ExecContext(ctx, setSyncState, string(status), remoteVersion, string(entityType), id)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.SetSyncState").
			Str("entity_type", string(entityType)).
			Str("id", id).
			Str("status", string(status)).
			Msg("failed to update sync state")
		return r.db.storageError("set sync state", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return r.db.storageError("set sync state", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s/%s: %w", entityType, id, ErrNotFound)
	}

	return nil
}

func (r *recordRepository) ScanRecords(ctx context.Context, entityType models.EntityType, opts models.ScanOptions) ([]models.VersionedRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildScanRecordsQuery(entityType, opts)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ScanRecords").
			Str("entity_type", string(entityType)).
			Str("index", string(opts.Index)).
			Msg("failed to create query")
		return nil, queryBuildError("scan records", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ScanRecords").
			Str("entity_type", string(entityType)).
			Msg("failed to execute scan query")
		return nil, r.db.storageError("scan records", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.VersionedRecord, 0, max(opts.Limit, 0))
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.ScanRecords").
				Str("entity_type", string(entityType)).
				Msg("failed to scan record row")
			return nil, r.db.storageError("scan records", ErrScanningRow, scanErr)
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recordRepository.ScanRecords").
			Str("entity_type", string(entityType)).
			Msg("error occurred during rows iteration")
		return nil, r.db.storageError("scan records", ErrScanningRows, rowsErr)
	}

	return records, nil
}

func (r *recordRepository) CountRecords(ctx context.Context, entityType models.EntityType) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, countRecords, string(entityType)).Scan(&n); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "recordRepository.CountRecords").
			Str("entity_type", string(entityType)).
			Msg("failed to count records")
		return 0, r.db.storageError("count records", ErrExecutingQuery, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.VersionedRecord, error) {
	var (
		rec        models.VersionedRecord
		entityType string
		payload    []byte
		status     string
	)
	err := row.Scan(
		&entityType,
		&rec.ID,
		&payload,
		&rec.Version,
		&rec.LastModified,
		&rec.OriginClientID,
		&rec.ContentHash,
		&status,
		&rec.RemoteVersion,
		&rec.Deleted,
	)
	if err != nil {
		return models.VersionedRecord{}, err
	}
	rec.EntityType = models.EntityType(entityType)
	rec.Payload = append([]byte(nil), payload...)
	rec.SyncStatus = models.SyncStatus(status)
	return rec, nil
}
