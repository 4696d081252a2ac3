// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/models"
)

type remoteService struct {
	store store.Store
}

func NewRemoteService(s store.Store) RemoteService {
	return &remoteService{store: s}
}

// Exchange applies a client write when the client saw the latest server
// version, or when server and client already agree. Any other write is
// rejected with a VersionConflictError carrying the server row.
func (r *remoteService) Exchange(ctx context.Context, req models.ExchangeRequest) (models.ExchangeAck, error) {
	incoming := req.Record
	deleting := req.Operation == models.OperationDelete
	log := logger.FromContext(ctx)

	var ack models.ExchangeAck
	err := r.store.WithinTx(ctx, func(tx store.Store) error {
		current, err := tx.Remote().GetRemoteRecord(ctx, incoming.EntityType, incoming.ID)
		found := err == nil
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("get server record: %w", err)
		}

		if found {
			if current.ContentHash == incoming.ContentHash && current.Deleted == deleting {
				ack.Version = current.Version
				return nil
			}
			if req.BaseVersion < current.Version {
				return &VersionConflictError{Current: current}
			}
		}

		stored := incoming.Clone()
		stored.Version = current.Version + 1
		stored.Deleted = deleting
		stored.SyncStatus = models.SyncStatusSynced
		stored.RemoteVersion = stored.Version
		if err = tx.Remote().PutRemoteRecord(ctx, stored); err != nil {
			return fmt.Errorf("put server record: %w", err)
		}
		ack.Version = stored.Version
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			log.Info().Str("func", "*remoteService.Exchange").
				Str("entity_type", incoming.EntityType.String()).Str("id", incoming.ID).
				Int64("base_version", req.BaseVersion).Msg("stale exchange rejected")
		}
		return models.ExchangeAck{}, err
	}

	log.Debug().Str("func", "*remoteService.Exchange").
		Str("entity_type", incoming.EntityType.String()).Str("id", incoming.ID).
		Str("operation", string(req.Operation)).Int64("version", ack.Version).Msg("exchange accepted")
	return ack, nil
}

// Fetch returns the live server row. Tombstones are reported as not found.
func (r *remoteService) Fetch(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	record, err := r.store.Remote().GetRemoteRecord(ctx, entityType, id)
	if err != nil {
		return models.VersionedRecord{}, fmt.Errorf("get server record %s/%s: %w", entityType, id, err)
	}
	if record.Deleted {
		return models.VersionedRecord{}, fmt.Errorf("server record %s/%s is deleted: %w", entityType, id, store.ErrNotFound)
	}
	return record, nil
}
