// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Resolution is the outcome of reconciling a local/remote pair.
type Resolution string

const (
	ResolutionLocal  Resolution = "local"
	ResolutionRemote Resolution = "remote"
	ResolutionMerge  Resolution = "merge"
	// ResolutionManual needs an external actor; the pair is kept until then.
	ResolutionManual Resolution = "manual"
)

// ConflictRecord keeps both snapshots of a divergent id and the decision
// taken for them. Manual conflicts stay with ResolvedAt == nil until an
// external actor resolves them; automatic ones are stored resolved.
type ConflictRecord struct {
	ID            string          `json:"id"`
	EntityType    EntityType      `json:"entityType"`
	RecordID      string          `json:"recordId"`
	Local         VersionedRecord `json:"localVersion"`
	Remote        VersionedRecord `json:"remoteVersion"`
	Resolution    Resolution      `json:"resolution"`
	MergedPayload json.RawMessage `json:"mergedPayload,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	ResolvedAt    *time.Time      `json:"resolvedAt,omitempty"`
}

// Pending reports whether the conflict still waits for an external decision.
func (c ConflictRecord) Pending() bool {
	return c.ResolvedAt == nil
}
