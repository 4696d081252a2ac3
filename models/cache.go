// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is a row of the bounded auxiliary read cache. It is derived
// data: evicting it never touches the authoritative VersionedRecord.
type CacheEntry struct {
	ID           string          `json:"id"`
	EntityType   EntityType      `json:"entityType"`
	Payload      json.RawMessage `json:"payload"`
	Version      int64           `json:"version"`
	Priority     int             `json:"priority"`
	LastAccessed time.Time       `json:"lastAccessed"`
	SizeBytes    int64           `json:"sizeBytes"`
}

// CacheStats summarises the cache against its current budget.
type CacheStats struct {
	Entries     int   `json:"entries"`
	TotalBytes  int64 `json:"totalBytes"`
	BudgetBytes int64 `json:"budgetBytes"`
}
