// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// SyncStatus describes whether a record still has to reach the remote
// endpoint. It is the single source of truth a UI layer uses to render
// pending, synced or conflict badges.
type SyncStatus string

const (
	// SyncStatusPending marks a record with local changes the remote has not
	// acknowledged yet.
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusSynced marks a record whose current version was acknowledged
	// by the remote endpoint.
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusConflict marks a record with an unresolved manual conflict.
	// Such records are excluded from automatic sync.
	SyncStatusConflict SyncStatus = "conflict"
)

// Valid reports whether s is one of the known statuses.
func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSynced, SyncStatusConflict:
		return true
	}
	return false
}

// VersionedRecord is a payload stamped with version, hash and sync metadata.
// It is the unit of storage of the local-first store: one row per
// (EntityType, ID).
type VersionedRecord struct {
	// ID is stable per logical entity.
	ID string `json:"id"`

	// EntityType names the logical table the record lives in
	// (e.g. "recipe", "nutrition_log").
	EntityType EntityType `json:"entityType"`

	// Payload is the canonical JSON object of the entity.
	Payload json.RawMessage `json:"payload"`

	// Version is positive and grows by exactly one per accepted local write
	// or applied remote write.
	Version int64 `json:"version"`

	// LastModified is the write time in epoch milliseconds.
	LastModified int64 `json:"lastModified"`

	// OriginClientID identifies the writer (device/install id).
	OriginClientID string `json:"originClientId"`

	// ContentHash is the hex digest of the canonical payload.
	ContentHash string `json:"contentHash"`

	// SyncStatus is the current sync state of this version.
	SyncStatus SyncStatus `json:"syncStatus"`

	// RemoteVersion is the last version of this id acknowledged by the
	// remote endpoint, 0 if the remote has never seen it. Sent as the base
	// version of every exchange.
	RemoteVersion int64 `json:"remoteVersion"`

	// Deleted marks a tombstone waiting for the remote to acknowledge the
	// deletion. Tombstones are hidden from reads.
	Deleted bool `json:"deleted"`
}

// LastModifiedTime returns LastModified as a [time.Time].
func (r VersionedRecord) LastModifiedTime() time.Time {
	return time.UnixMilli(r.LastModified)
}

// Clone returns a deep copy of r so callers may mutate the payload freely.
func (r VersionedRecord) Clone() VersionedRecord {
	c := r
	if r.Payload != nil {
		c.Payload = append(json.RawMessage(nil), r.Payload...)
	}
	return c
}
