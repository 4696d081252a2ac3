// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/entity"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/internal/validators"
	"github.com/MKhiriev/go-nutri-sync/models"
)

type conflictService struct {
	store     store.Store
	cache     CacheService
	clock     utils.Clock
	ids       utils.IDGenerator
	validator validators.Validator
	clientID  string

	logger *logger.Logger
}

func NewConflictService(s store.Store, cache CacheService, clock utils.Clock, ids utils.IDGenerator, clientID string, logger *logger.Logger) ConflictService {
	return &conflictService{
		store:     s,
		cache:     cache,
		clock:     clock,
		ids:       ids,
		validator: validators.NewRecordValidator(),
		clientID:  clientID,
		logger:    logger,
	}
}

// Resolve decides a divergent pair:
//  1. same content (and same deletion state): remote;
//  2. newer side wins by LastModified;
//  3. on a tie the entity kind may merge both payloads, else manual.
func (c *conflictService) Resolve(local, remote models.VersionedRecord) models.ConflictRecord {
	conflict := models.ConflictRecord{
		EntityType: local.EntityType,
		RecordID:   local.ID,
		Local:      local.Clone(),
		Remote:     remote.Clone(),
	}
	if conflict.RecordID == "" {
		conflict.EntityType = remote.EntityType
		conflict.RecordID = remote.ID
	}

	switch {
	case local.ContentHash == remote.ContentHash && local.Deleted == remote.Deleted:
		conflict.Resolution = models.ResolutionRemote
	case local.LastModified > remote.LastModified:
		conflict.Resolution = models.ResolutionLocal
	case remote.LastModified > local.LastModified:
		conflict.Resolution = models.ResolutionRemote
	case local.Deleted || remote.Deleted:
		conflict.Resolution = models.ResolutionManual
	default:
		merged, ok, err := entity.KindOf(local.EntityType).Merge(local.Payload, remote.Payload)
		if err != nil || !ok {
			conflict.Resolution = models.ResolutionManual
			break
		}
		conflict.Resolution = models.ResolutionMerge
		conflict.MergedPayload = merged
	}

	return conflict
}

// Apply persists the decision together with the conflict row. Manual
// conflicts stay pending; every other resolution is stored resolved.
func (c *conflictService) Apply(ctx context.Context, conflict models.ConflictRecord) (models.VersionedRecord, error) {
	now := c.clock.Now()
	if conflict.ID == "" {
		conflict.ID = c.ids.Generate()
	}
	if conflict.CreatedAt.IsZero() {
		conflict.CreatedAt = now
	}
	if conflict.Resolution == models.ResolutionManual {
		conflict.ResolvedAt = nil
	} else {
		conflict.ResolvedAt = &now
	}

	var result models.VersionedRecord
	err := c.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		result, err = c.applyResolution(ctx, tx, conflict, now)
		if err != nil {
			return err
		}
		if err = tx.Conflicts().SaveConflict(ctx, conflict); err != nil {
			return fmt.Errorf("save conflict: %w", err)
		}
		return nil
	})
	if err != nil {
		c.logger.Err(err).Str("func", "*conflictService.Apply").
			Str("entity_type", conflict.EntityType.String()).Str("id", conflict.RecordID).
			Str("resolution", string(conflict.Resolution)).Msg("failed to apply conflict resolution")
		return models.VersionedRecord{}, err
	}

	c.invalidate(ctx, conflict.EntityType, conflict.RecordID)

	c.logger.Info().Str("func", "*conflictService.Apply").
		Str("entity_type", conflict.EntityType.String()).Str("id", conflict.RecordID).
		Str("resolution", string(conflict.Resolution)).Msg("conflict resolved")

	return result, nil
}

func (c *conflictService) ListPending(ctx context.Context) ([]models.ConflictRecord, error) {
	conflicts, err := c.store.Conflicts().ListConflicts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list pending conflicts: %w", err)
	}
	return conflicts, nil
}

// ResolveManual settles a pending manual conflict with an external choice.
// merged is only read for ResolutionMerge.
func (c *conflictService) ResolveManual(ctx context.Context, conflictID string, resolution models.Resolution, merged json.RawMessage) (models.VersionedRecord, error) {
	switch resolution {
	case models.ResolutionLocal, models.ResolutionRemote:
		merged = nil
	case models.ResolutionMerge:
	default:
		return models.VersionedRecord{}, fmt.Errorf("%w: %q", ErrInvalidResolution, resolution)
	}

	now := c.clock.Now()
	var (
		result   models.VersionedRecord
		conflict models.ConflictRecord
	)
	err := c.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		conflict, err = tx.Conflicts().GetConflict(ctx, conflictID)
		if err != nil {
			return fmt.Errorf("get conflict %s: %w", conflictID, err)
		}
		if !conflict.Pending() {
			return fmt.Errorf("conflict %s: %w", conflictID, ErrConflictResolved)
		}

		if resolution == models.ResolutionMerge {
			req := models.WriteRequest{EntityType: conflict.EntityType, Payload: merged}
			if err = c.validator.Validate(ctx, req, validators.FieldPayload); err != nil {
				return newValidationError(err)
			}
			if merged, err = entity.Encode(merged); err != nil {
				return newValidationError(err)
			}
		}

		conflict.Resolution = resolution
		conflict.MergedPayload = merged
		if result, err = c.applyResolution(ctx, tx, conflict, now); err != nil {
			return err
		}

		err = tx.Conflicts().ResolveConflict(ctx, conflictID, resolution, merged, now)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("conflict %s: %w", conflictID, ErrConflictResolved)
		}
		if err != nil {
			return fmt.Errorf("resolve conflict %s: %w", conflictID, err)
		}
		return nil
	})
	if err != nil {
		return models.VersionedRecord{}, err
	}

	c.invalidate(ctx, conflict.EntityType, conflict.RecordID)
	return result, nil
}

func (c *conflictService) applyResolution(ctx context.Context, tx store.Store, conflict models.ConflictRecord, now time.Time) (models.VersionedRecord, error) {
	current, err := tx.Records().GetRecord(ctx, conflict.EntityType, conflict.RecordID)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return models.VersionedRecord{}, fmt.Errorf("get local record: %w", err)
	}

	switch conflict.Resolution {
	case models.ResolutionRemote:
		return c.applyRemote(ctx, tx, current, found, conflict.Remote)
	case models.ResolutionLocal:
		if !found {
			return models.VersionedRecord{}, fmt.Errorf("keep local %s/%s: %w", conflict.EntityType, conflict.RecordID, store.ErrNotFound)
		}
		return c.keepLocal(ctx, tx, current, conflict.Remote, now)
	case models.ResolutionMerge:
		if !found {
			return models.VersionedRecord{}, fmt.Errorf("merge %s/%s: %w", conflict.EntityType, conflict.RecordID, store.ErrNotFound)
		}
		return c.applyMerge(ctx, tx, current, conflict.Remote, conflict.MergedPayload, now)
	case models.ResolutionManual:
		if !found {
			return models.VersionedRecord{}, fmt.Errorf("hold %s/%s: %w", conflict.EntityType, conflict.RecordID, store.ErrNotFound)
		}
		return c.holdForManual(ctx, tx, current)
	default:
		return models.VersionedRecord{}, fmt.Errorf("%w: %q", ErrInvalidResolution, conflict.Resolution)
	}
}

// applyRemote makes the remote snapshot the local state. It is an applied
// remote write, so the local version still grows by one.
func (c *conflictService) applyRemote(ctx context.Context, tx store.Store, current models.VersionedRecord, found bool, remote models.VersionedRecord) (models.VersionedRecord, error) {
	if err := tx.Queue().RemoveEntry(ctx, remote.EntityType, remote.ID); err != nil {
		return models.VersionedRecord{}, fmt.Errorf("remove queue entry: %w", err)
	}

	if remote.Deleted {
		if err := tx.Records().DeleteRecord(ctx, remote.EntityType, remote.ID); err != nil {
			return models.VersionedRecord{}, fmt.Errorf("delete local record: %w", err)
		}
		return remote.Clone(), nil
	}

	if found && !current.Deleted && current.ContentHash == remote.ContentHash {
		if err := tx.Records().SetSyncState(ctx, current.EntityType, current.ID, models.SyncStatusSynced, remote.Version); err != nil {
			return models.VersionedRecord{}, fmt.Errorf("mark synced: %w", err)
		}
		current.SyncStatus = models.SyncStatusSynced
		current.RemoteVersion = remote.Version
		return current, nil
	}

	record := remote.Clone()
	record.Version = current.Version + 1
	record.SyncStatus = models.SyncStatusSynced
	record.RemoteVersion = remote.Version
	record.Deleted = false
	if err := tx.Records().PutRecord(ctx, record); err != nil {
		return models.VersionedRecord{}, fmt.Errorf("put remote record: %w", err)
	}
	return record, nil
}

// keepLocal acknowledges the remote version and queues the local state
// again so the next exchange overrides it.
func (c *conflictService) keepLocal(ctx context.Context, tx store.Store, current, remote models.VersionedRecord, now time.Time) (models.VersionedRecord, error) {
	if err := tx.Records().SetSyncState(ctx, current.EntityType, current.ID, models.SyncStatusPending, remote.Version); err != nil {
		return models.VersionedRecord{}, fmt.Errorf("mark pending: %w", err)
	}
	current.SyncStatus = models.SyncStatusPending
	current.RemoteVersion = remote.Version

	op := models.OperationUpdate
	if current.Deleted {
		op = models.OperationDelete
	}
	if err := c.requeue(ctx, tx, current, op, now); err != nil {
		return models.VersionedRecord{}, err
	}
	return current, nil
}

func (c *conflictService) applyMerge(ctx context.Context, tx store.Store, current, remote models.VersionedRecord, merged json.RawMessage, now time.Time) (models.VersionedRecord, error) {
	hash, err := utils.ContentHash(merged)
	if err != nil {
		return models.VersionedRecord{}, fmt.Errorf("hash merged payload: %w", err)
	}

	record := current.Clone()
	record.Payload = append(json.RawMessage(nil), merged...)
	record.ContentHash = hash
	record.Version = current.Version + 1
	record.LastModified = now.UnixMilli()
	record.OriginClientID = c.clientID
	record.SyncStatus = models.SyncStatusPending
	record.RemoteVersion = remote.Version
	record.Deleted = false

	if err = tx.Records().PutRecord(ctx, record); err != nil {
		return models.VersionedRecord{}, fmt.Errorf("put merged record: %w", err)
	}
	if err = c.requeue(ctx, tx, record, models.OperationUpdate, now); err != nil {
		return models.VersionedRecord{}, err
	}
	return record, nil
}

// holdForManual parks the record until an external decision arrives.
func (c *conflictService) holdForManual(ctx context.Context, tx store.Store, current models.VersionedRecord) (models.VersionedRecord, error) {
	if err := tx.Records().SetSyncState(ctx, current.EntityType, current.ID, models.SyncStatusConflict, current.RemoteVersion); err != nil {
		return models.VersionedRecord{}, fmt.Errorf("mark conflict: %w", err)
	}
	if err := tx.Queue().RemoveEntry(ctx, current.EntityType, current.ID); err != nil {
		return models.VersionedRecord{}, fmt.Errorf("remove queue entry: %w", err)
	}
	current.SyncStatus = models.SyncStatusConflict
	return current, nil
}

func (c *conflictService) requeue(ctx context.Context, tx store.Store, record models.VersionedRecord, op models.Operation, now time.Time) error {
	entry := models.SyncQueueEntry{
		RecordID:      record.ID,
		EntityType:    record.EntityType,
		Operation:     op,
		EnqueuedAt:    now,
		Priority:      entity.Classify(record.EntityType, record.Payload),
		RecordVersion: record.Version,
	}
	if err := tx.Queue().Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("requeue: %w", err)
	}
	return nil
}

func (c *conflictService) invalidate(ctx context.Context, entityType models.EntityType, id string) {
	if err := c.cache.Invalidate(ctx, entityType, id); err != nil {
		c.logger.Err(err).Str("func", "*conflictService.invalidate").
			Str("entity_type", entityType.String()).Str("id", id).
			Msg("failed to invalidate cache entry")
	}
}
