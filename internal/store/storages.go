// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
)

// NewStore initialises the storage layer described by cfg:
//  1. cfg.DSN == MemoryDSN selects the in-memory store;
//  2. otherwise an SQLite database is opened at cfg.DSN, creating the file
//     if needed, and the embedded migrations are applied.
func NewStore(ctx context.Context, cfg config.Storage, log *logger.Logger) (Store, error) {
	log.Info().Str("dsn", cfg.DSN).Msg("creating new store...")

	if cfg.DSN == MemoryDSN {
		return NewMemoryStore(), nil
	}

	db, err := NewConnectSQLite(ctx, cfg.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewSQLStore(db), nil
}
