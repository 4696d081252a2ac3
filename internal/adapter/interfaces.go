// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport-layer client of the remote sync
// endpoint.
//
// The primary abstraction is [RemoteEndpoint], which decouples the sync
// orchestrator from the underlying protocol. The package ships an HTTP/REST
// implementation built on resty ([NewHTTPRemoteEndpoint]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrConflict] for 409, [ErrNetwork] for transport failures).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-nutri-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_endpoint_mock.go -package=mock

// RemoteEndpoint exchanges versioned records with the remote sync endpoint.
type RemoteEndpoint interface {
	// Exchange pushes one queue entry. On acceptance it returns the version
	// now stored remotely. A version conflict is reported as a
	// [*ConflictError] carrying the current remote snapshot; every other
	// failure is transient from the caller's point of view.
	Exchange(ctx context.Context, req models.ExchangeRequest) (models.ExchangeAck, error)

	// Fetch returns the remote snapshot of one record. Returns [ErrNotFound]
	// (wrapped) when the remote has no row for the id.
	Fetch(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error)

	// Ping checks that the endpoint is reachable. It satisfies the
	// connectivity probe contract of the network package.
	Ping(ctx context.Context) error
}
