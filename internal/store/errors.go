// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record, queue entry, conflict or cache entry
// does not exist. Tombstoned records are reported as found by GetRecord and
// hidden from scans.
var ErrNotFound = errors.New("not found")

// Low-level database operation errors. They are wrapped inside a
// [StorageError] together with the driver error.
var (
	// ErrBuildingSQLQuery is returned when constructing a dynamic SQL query
	// fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the driver cannot start a
	// transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing fails. The
	// transaction is rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when an INSERT, UPDATE or DELETE
	// fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a single row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a result set fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingColumn is returned when a value cannot be serialized into
	// its column.
	ErrEncodingColumn = errors.New("failed to encode column value")
)

// StorageError reports a failed store operation. Callers treat it as fatal
// to the current call; Class tells whether retrying the call may help.
type StorageError struct {
	Op    string
	Class ErrorClassification
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the underlying failure is transient.
func (e *StorageError) Retryable() bool {
	return e.Class == Retryable
}

// queryBuildError wraps a failure to assemble a dynamic query. Such
// failures never go away on retry.
func queryBuildError(op string, err error) error {
	return &StorageError{Op: op, Class: NonRetryable, Err: err}
}

// IsStorageError reports whether err carries a [StorageError].
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
