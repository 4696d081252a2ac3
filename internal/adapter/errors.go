// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-nutri-sync/models"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("version conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// ErrNetwork wraps transport failures: refused connections, DNS errors,
	// timeouts and cancelled requests.
	ErrNetwork = errors.New("network error")

	// ErrInvalidResponse is returned when a 2xx or 409 body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response body")
)

// ConflictError is returned by [RemoteEndpoint.Exchange] when the remote
// rejected a write because its version is newer than the client's base.
type ConflictError struct {
	Remote models.VersionedRecord
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: remote %s/%s is at version %d",
		ErrConflict, e.Remote.EntityType, e.Remote.ID, e.Remote.Version)
}

// Is makes errors.Is(err, ErrConflict) hold for a *ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// AsConflict extracts the conflicting remote snapshot from err.
func AsConflict(err error) (models.VersionedRecord, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr.Remote, true
	}
	return models.VersionedRecord{}, false
}
