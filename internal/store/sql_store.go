// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
)

// sqlStore is the SQLite-backed [Store]. A transactional view shares the DB
// but routes every repository through the open *sql.Tx.
type sqlStore struct {
	db   *DB
	inTx bool

	records   *recordRepository
	queue     *queueRepository
	conflicts *conflictRepository
	cache     *cacheRepository
	remote    *remoteRecordRepository
}

// NewSQLStore constructs a [Store] on an open, migrated DB.
func NewSQLStore(db *DB) Store {
	return bindSQLStore(db, db.DB, false)
}

func bindSQLStore(db *DB, q querier, inTx bool) *sqlStore {
	return &sqlStore{
		db:        db,
		inTx:      inTx,
		records:   &recordRepository{db: db, q: q},
		queue:     &queueRepository{db: db, q: q},
		conflicts: &conflictRepository{db: db, q: q},
		cache:     &cacheRepository{db: db, q: q},
		remote:    &remoteRecordRepository{db: db, q: q},
	}
}

func (s *sqlStore) Records() RecordRepository      { return s.records }
func (s *sqlStore) Queue() QueueRepository         { return s.queue }
func (s *sqlStore) Conflicts() ConflictRepository  { return s.conflicts }
func (s *sqlStore) Cache() CacheRepository         { return s.cache }
func (s *sqlStore) Remote() RemoteRecordRepository { return s.remote }

func (s *sqlStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		log.Err(err).Str("func", "sqlStore.WithinTx").Msg("failed to begin transaction")
		return s.db.storageError("begin transaction", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if err = fn(bindSQLStore(s.db, tx, true)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "sqlStore.WithinTx").Msg("failed to commit transaction")
		return s.db.storageError("commit transaction", ErrCommitingTransaction, err)
	}

	return nil
}

func (s *sqlStore) Close() error {
	if s.inTx {
		return nil
	}
	return s.db.Close()
}
