// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-nutri-sync/internal/validators"
	"github.com/MKhiriev/go-nutri-sync/models"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrExhaustedRetry marks a queue entry dropped after too many failed
	// exchanges. It is logged and counted, never returned to callers.
	ErrExhaustedRetry = errors.New("sync retries exhausted")

	ErrSyncInProgress    = errors.New("sync already in progress")
	ErrConflictResolved  = errors.New("conflict already resolved")
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrVersionConflict is returned by the remote service when an exchange
	// is based on a stale version.
	ErrVersionConflict = errors.New("version conflict")
)

// ValidationError reports a rejected write before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// newValidationError converts a validator failure into a ValidationError,
// keeping the offending field when the validator reported one.
func newValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fe *validators.FieldError
	if errors.As(err, &fe) {
		return &ValidationError{Field: fe.Field, Reason: fe.Err.Error(), Err: err}
	}
	return &ValidationError{Reason: err.Error(), Err: err}
}

// VersionConflictError carries the row the remote service holds for a
// rejected exchange.
type VersionConflictError struct {
	Current models.VersionedRecord
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: %s/%s is at version %d", ErrVersionConflict, e.Current.EntityType, e.Current.ID, e.Current.Version)
}

func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// AsVersionConflict returns the server row carried by err, if any.
func AsVersionConflict(err error) (models.VersionedRecord, bool) {
	var vc *VersionConflictError
	if errors.As(err, &vc) {
		return vc.Current, true
	}
	return models.VersionedRecord{}, false
}
