// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package migrations embeds the SQLite schema of the local store and of the
// reference sync endpoint and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var schema embed.FS

// ErrNilDB is returned by Migrate when no database handle is supplied.
var ErrNilDB = errors.New("db is nil")

// Migrate brings db up to the latest embedded schema version and returns
// the number of migrations it applied. Each call uses its own goose
// provider, so databases can be migrated concurrently.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("apply schema: %w", ErrNilDB)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, schema)
	if err != nil {
		return 0, fmt.Errorf("load schema migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("apply schema: %w", err)
	}

	return len(results), nil
}
