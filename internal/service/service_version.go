// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-nutri-sync/internal/entity"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/internal/validators"
	"github.com/MKhiriev/go-nutri-sync/models"
)

type versionService struct {
	store     store.Store
	cache     CacheService
	validator validators.Validator
	clock     utils.Clock
	clientID  string

	logger *logger.Logger
}

func NewVersionService(s store.Store, cache CacheService, clock utils.Clock, clientID string, logger *logger.Logger) VersionService {
	return &versionService{
		store:     s,
		cache:     cache,
		validator: validators.NewRecordValidator(),
		clock:     clock,
		clientID:  clientID,
		logger:    logger,
	}
}

// Save stamps payload as the next version of (entityType, id) and queues it
// for sync. Record and queue entry are committed together.
func (v *versionService) Save(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) (models.VersionedRecord, error) {
	req := models.WriteRequest{EntityType: entityType, ID: id, Payload: payload}
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.VersionedRecord{}, newValidationError(err)
	}

	canonical, err := entity.Encode(payload)
	if err != nil {
		return models.VersionedRecord{}, newValidationError(err)
	}
	hash, err := utils.ContentHash(canonical)
	if err != nil {
		return models.VersionedRecord{}, newValidationError(err)
	}

	now := v.clock.Now()
	record := models.VersionedRecord{
		ID:             id,
		EntityType:     entityType,
		Payload:        canonical,
		Version:        1,
		LastModified:   now.UnixMilli(),
		OriginClientID: v.clientID,
		ContentHash:    hash,
		SyncStatus:     models.SyncStatusPending,
	}

	err = v.store.WithinTx(ctx, func(tx store.Store) error {
		op := models.OperationCreate
		existing, err := tx.Records().GetRecord(ctx, entityType, id)
		switch {
		case err == nil:
			record.Version = existing.Version + 1
			record.RemoteVersion = existing.RemoteVersion
			if existing.RemoteVersion > 0 {
				op = models.OperationUpdate
			}
			if existing.SyncStatus == models.SyncStatusConflict {
				record.SyncStatus = models.SyncStatusConflict
			}
		case errors.Is(err, store.ErrNotFound):
		default:
			return fmt.Errorf("get current record: %w", err)
		}

		if err = tx.Records().PutRecord(ctx, record); err != nil {
			return fmt.Errorf("put record: %w", err)
		}
		// conflicted records wait for an external decision
		if record.SyncStatus == models.SyncStatusConflict {
			return nil
		}

		entry := models.SyncQueueEntry{
			RecordID:      id,
			EntityType:    entityType,
			Operation:     op,
			EnqueuedAt:    now,
			Priority:      entity.Classify(entityType, canonical),
			RecordVersion: record.Version,
		}
		if err = tx.Queue().Enqueue(ctx, entry); err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
		return nil
	})
	if err != nil {
		v.logger.Err(err).Str("func", "*versionService.Save").
			Str("entity_type", entityType.String()).Str("id", id).
			Msg("failed to save record")
		return models.VersionedRecord{}, err
	}

	v.refreshCache(ctx, record)

	v.logger.Debug().Str("func", "*versionService.Save").
		Str("entity_type", entityType.String()).Str("id", id).
		Int64("version", record.Version).Msg("record saved")

	return record, nil
}

// Delete tombstones the record and queues the deletion. A record the remote
// has never seen is removed outright.
func (v *versionService) Delete(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	if err := v.validator.Validate(ctx, models.WriteRequest{EntityType: entityType, ID: id}, validators.FieldEntityType, validators.FieldID); err != nil {
		return models.VersionedRecord{}, newValidationError(err)
	}

	now := v.clock.Now()
	var tombstone models.VersionedRecord

	err := v.store.WithinTx(ctx, func(tx store.Store) error {
		existing, err := tx.Records().GetRecord(ctx, entityType, id)
		if err != nil {
			return fmt.Errorf("get current record: %w", err)
		}
		if existing.Deleted {
			return fmt.Errorf("record %s/%s is deleted: %w", entityType, id, store.ErrNotFound)
		}

		tombstone = existing.Clone()
		tombstone.Version = existing.Version + 1
		tombstone.LastModified = now.UnixMilli()
		tombstone.OriginClientID = v.clientID
		tombstone.Deleted = true
		if existing.SyncStatus != models.SyncStatusConflict {
			tombstone.SyncStatus = models.SyncStatusPending
		}

		if tombstone.SyncStatus != models.SyncStatusConflict && existing.RemoteVersion == 0 {
			unsent, err := v.neverSent(ctx, tx, entityType, id)
			if err != nil {
				return err
			}
			if unsent {
				if err = tx.Records().DeleteRecord(ctx, entityType, id); err != nil {
					return fmt.Errorf("delete record: %w", err)
				}
				if err = tx.Queue().RemoveEntry(ctx, entityType, id); err != nil {
					return fmt.Errorf("remove queue entry: %w", err)
				}
				return nil
			}
		}

		if err = tx.Records().PutRecord(ctx, tombstone); err != nil {
			return fmt.Errorf("put tombstone: %w", err)
		}
		if tombstone.SyncStatus == models.SyncStatusConflict {
			return nil
		}

		entry := models.SyncQueueEntry{
			RecordID:      id,
			EntityType:    entityType,
			Operation:     models.OperationDelete,
			EnqueuedAt:    now,
			Priority:      entity.Classify(entityType, existing.Payload),
			RecordVersion: tombstone.Version,
		}
		if err = tx.Queue().Enqueue(ctx, entry); err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.VersionedRecord{}, err
	}

	if err = v.cache.Invalidate(ctx, entityType, id); err != nil {
		v.logger.Err(err).Str("func", "*versionService.Delete").
			Str("entity_type", entityType.String()).Str("id", id).
			Msg("failed to invalidate cache entry")
	}

	return tombstone, nil
}

// neverSent reports whether no sync sub-batch ever picked the record's
// queue entry.
func (v *versionService) neverSent(ctx context.Context, tx store.Store, entityType models.EntityType, id string) (bool, error) {
	entry, err := tx.Queue().GetEntry(ctx, entityType, id)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get queue entry: %w", err)
	}
	return entry.BatchID == "", nil
}

// Get reads a live record, cache first.
func (v *versionService) Get(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	if err := v.validator.Validate(ctx, models.WriteRequest{EntityType: entityType, ID: id}, validators.FieldEntityType, validators.FieldID); err != nil {
		return models.VersionedRecord{}, newValidationError(err)
	}

	cached, ok, err := v.cache.Lookup(ctx, entityType, id)
	if err != nil {
		v.logger.Err(err).Str("func", "*versionService.Get").Msg("cache lookup failed, reading store")
	}
	if ok && !cached.Deleted {
		return cached, nil
	}

	record, err := v.store.Records().GetRecord(ctx, entityType, id)
	if err != nil {
		return models.VersionedRecord{}, fmt.Errorf("get record %s/%s: %w", entityType, id, err)
	}
	if record.Deleted {
		return models.VersionedRecord{}, fmt.Errorf("record %s/%s is deleted: %w", entityType, id, store.ErrNotFound)
	}

	v.refreshCache(ctx, record)
	return record, nil
}

func (v *versionService) refreshCache(ctx context.Context, record models.VersionedRecord) {
	if err := v.cache.Touch(ctx, record); err != nil {
		v.logger.Err(err).Str("func", "*versionService.refreshCache").
			Str("entity_type", record.EntityType.String()).Str("id", record.ID).
			Msg("failed to touch cache entry")
		return
	}
	if _, err := v.cache.Cleanup(ctx); err != nil {
		v.logger.Err(err).Str("func", "*versionService.refreshCache").Msg("cache cleanup failed")
	}
}
