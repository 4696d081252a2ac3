// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// WriteRequest is an application write before it is stamped into a
// VersionedRecord.
type WriteRequest struct {
	EntityType EntityType      `json:"entityType"`
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload"`
}
