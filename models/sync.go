// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// BatchSyncResult summarises one drain cycle of the sync queue.
type BatchSyncResult struct {
	// Success counts entries acknowledged by the remote.
	Success int `json:"success"`
	// Failed counts entries dropped after exceeding the retry ceiling.
	Failed int `json:"failed"`
	// Conflicts counts conflict responses routed to the resolver.
	Conflicts int `json:"conflicts"`
	// Deferred counts transient failures left queued for a later cycle.
	Deferred int `json:"deferred"`
	// Aborted is set when connectivity dropped mid-run.
	Aborted bool `json:"aborted"`
}

// ExchangeRequest is the body sent to the remote sync endpoint for one queue
// entry.
type ExchangeRequest struct {
	// Operation replayed on the remote.
	Operation Operation `json:"operation"`
	// BaseVersion is the last remote version the client has seen for the id.
	BaseVersion int64 `json:"baseVersion"`
	// Record is the local snapshot being pushed.
	Record VersionedRecord `json:"record"`
}

// ExchangeAck is returned by the remote on successful application.
type ExchangeAck struct {
	// Version is the remote version now stored for the id.
	Version int64 `json:"version"`
}

// ConflictResponse is the 409 body: the current remote snapshot.
type ConflictResponse struct {
	Remote VersionedRecord `json:"remote"`
}
