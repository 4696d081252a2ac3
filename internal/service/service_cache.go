// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/golang/snappy"
)

// Recency scores of cache entries, by age of the record's last write.
const (
	cachePriorityDay   = 10
	cachePriorityWeek  = 7
	cachePriorityMonth = 5
	cachePriorityOld   = 1

	day = 24 * time.Hour
)

type cacheService struct {
	store   store.Store
	network NetworkState
	clock   utils.Clock

	logger *logger.Logger
}

func NewCacheService(s store.Store, network NetworkState, clock utils.Clock, logger *logger.Logger) CacheService {
	return &cacheService{
		store:   s,
		network: network,
		clock:   clock,
		logger:  logger,
	}
}

// agePriority scores a record by the age of its last write.
func agePriority(now, lastModified time.Time) int {
	age := now.Sub(lastModified)
	switch {
	case age < day:
		return cachePriorityDay
	case age < 7*day:
		return cachePriorityWeek
	case age < 30*day:
		return cachePriorityMonth
	default:
		return cachePriorityOld
	}
}

// Touch caches a snappy-compressed snapshot of record. Tombstones drop
// their entry instead.
func (c *cacheService) Touch(ctx context.Context, record models.VersionedRecord) error {
	if record.Deleted {
		return c.Invalidate(ctx, record.EntityType, record.ID)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode cache snapshot: %w", err)
	}

	now := c.clock.Now()
	entry := models.CacheEntry{
		ID:           record.ID,
		EntityType:   record.EntityType,
		Payload:      snappy.Encode(nil, raw),
		Version:      record.Version,
		Priority:     agePriority(now, record.LastModifiedTime()),
		LastAccessed: now,
		SizeBytes:    int64(len(record.Payload)),
	}
	if err = c.store.Cache().PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// Cleanup evicts the least valuable entries until the cache fits the
// current budget. It returns the number of evicted entries.
func (c *cacheService) Cleanup(ctx context.Context) (int, error) {
	budget := c.network.Settings().CacheBudgetBytes
	evicted := 0

	err := c.store.WithinTx(ctx, func(tx store.Store) error {
		_, total, err := tx.Cache().Totals(ctx)
		if err != nil {
			return fmt.Errorf("cache totals: %w", err)
		}
		if total <= budget {
			return nil
		}

		ranked, err := tx.Cache().RankedEntries(ctx)
		if err != nil {
			return fmt.Errorf("rank cache entries: %w", err)
		}
		for _, entry := range ranked {
			if total <= budget {
				break
			}
			if err = tx.Cache().DeleteEntry(ctx, entry.EntityType, entry.ID); err != nil {
				return fmt.Errorf("evict %s/%s: %w", entry.EntityType, entry.ID, err)
			}
			total -= entry.SizeBytes
			evicted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if evicted > 0 {
		c.logger.Debug().Str("func", "*cacheService.Cleanup").
			Int("evicted", evicted).Int64("budget", budget).Msg("cache entries evicted")
	}
	return evicted, nil
}

// Lookup returns the cached snapshot and refreshes its access time. A
// corrupted entry is dropped and reported as a miss.
func (c *cacheService) Lookup(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, bool, error) {
	entry, err := c.store.Cache().GetEntry(ctx, entityType, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.VersionedRecord{}, false, nil
	}
	if err != nil {
		return models.VersionedRecord{}, false, fmt.Errorf("get cache entry: %w", err)
	}

	record, err := decodeSnapshot(entry.Payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("func", "*cacheService.Lookup").
			Str("entity_type", entityType.String()).Str("id", id).
			Msg("dropping corrupted cache entry")
		if err = c.store.Cache().DeleteEntry(ctx, entityType, id); err != nil {
			return models.VersionedRecord{}, false, fmt.Errorf("drop corrupted cache entry: %w", err)
		}
		return models.VersionedRecord{}, false, nil
	}

	if err = c.store.Cache().TouchEntry(ctx, entityType, id, c.clock.Now()); err != nil {
		return models.VersionedRecord{}, false, fmt.Errorf("touch cache entry: %w", err)
	}
	return record, true, nil
}

func decodeSnapshot(compressed []byte) (models.VersionedRecord, error) {
	var record models.VersionedRecord
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return record, fmt.Errorf("decompress cache snapshot: %w", err)
	}
	if err = json.Unmarshal(raw, &record); err != nil {
		return record, fmt.Errorf("decode cache snapshot: %w", err)
	}
	return record, nil
}

func (c *cacheService) Invalidate(ctx context.Context, entityType models.EntityType, id string) error {
	if err := c.store.Cache().DeleteEntry(ctx, entityType, id); err != nil {
		return fmt.Errorf("invalidate cache entry: %w", err)
	}
	return nil
}

func (c *cacheService) Stats(ctx context.Context) (models.CacheStats, error) {
	entries, total, err := c.store.Cache().Totals(ctx)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("cache totals: %w", err)
	}
	return models.CacheStats{
		Entries:     entries,
		TotalBytes:  total,
		BudgetBytes: c.network.Settings().CacheBudgetBytes,
	}, nil
}
