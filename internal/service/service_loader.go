// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/network"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/validators"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// cleanupEvery bounds how many records a page may touch before the cache
// budget is enforced again.
const cleanupEvery = 10

type loaderService struct {
	store     store.Store
	cache     CacheService
	network   NetworkState
	validator validators.Validator

	logger *logger.Logger
}

func NewLoaderService(s store.Store, cache CacheService, network NetworkState, logger *logger.Logger) LoaderService {
	return &loaderService{
		store:     s,
		cache:     cache,
		network:   network,
		validator: validators.NewRecordValidator(),
		logger:    logger,
	}
}

// LoadPage scans one page of entityType under the current page cap. The
// store is only read once the sequence is iterated.
func (l *loaderService) LoadPage(ctx context.Context, entityType models.EntityType, opts models.PageOptions) iter.Seq2[models.VersionedRecord, error] {
	var consumed atomic.Bool

	return func(yield func(models.VersionedRecord, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}

		scan, err := l.scanOptions(ctx, entityType, opts)
		if err != nil {
			yield(models.VersionedRecord{}, err)
			return
		}

		records, err := l.store.Records().ScanRecords(ctx, entityType, scan)
		if err != nil {
			yield(models.VersionedRecord{}, fmt.Errorf("scan %s: %w", entityType, err))
			return
		}

		l.logger.Debug().Str("func", "*loaderService.LoadPage").
			Str("entity_type", entityType.String()).Str("index", string(scan.Index)).
			Int("limit", scan.Limit).Int("offset", scan.Offset).
			Int("priority", opts.Priority).Int("found", len(records)).
			Msg("page loaded")

		cleanup := func() {
			if _, err := l.cache.Cleanup(ctx); err != nil {
				l.logger.Err(err).Str("func", "*loaderService.LoadPage").Msg("cache cleanup failed")
			}
		}
		defer cleanup()

		for i, record := range records {
			if err = ctx.Err(); err != nil {
				yield(models.VersionedRecord{}, err)
				return
			}
			if err = l.cache.Touch(ctx, record); err != nil {
				l.logger.Err(err).Str("func", "*loaderService.LoadPage").
					Str("id", record.ID).Msg("failed to touch cache entry")
			}
			if (i+1)%cleanupEvery == 0 {
				cleanup()
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// scanOptions applies defaults and the adaptive page cap to opts.
func (l *loaderService) scanOptions(ctx context.Context, entityType models.EntityType, opts models.PageOptions) (models.ScanOptions, error) {
	if err := l.validator.Validate(ctx, models.WriteRequest{EntityType: entityType}, validators.FieldEntityType); err != nil {
		return models.ScanOptions{}, newValidationError(err)
	}

	scan := models.ScanOptions{
		Index:     opts.Index,
		Value:     opts.Value,
		Direction: opts.Direction,
		Offset:    max(opts.Offset, 0),
		Limit:     l.network.Settings().PageCap,
	}
	if scan.Limit <= 0 {
		scan.Limit = network.DefaultMaxPageSize
	}
	if opts.Limit > 0 && opts.Limit < scan.Limit {
		scan.Limit = opts.Limit
	}
	if scan.Index == "" {
		scan.Index = models.IndexID
	}
	if !scan.Index.Valid() {
		return models.ScanOptions{}, &ValidationError{Field: "index", Reason: fmt.Sprintf("unsupported index %q", scan.Index)}
	}
	switch scan.Direction {
	case "":
		scan.Direction = models.Ascending
	case models.Ascending, models.Descending:
	default:
		return models.ScanOptions{}, &ValidationError{Field: "direction", Reason: fmt.Sprintf("unsupported direction %q", scan.Direction)}
	}
	return scan, nil
}
