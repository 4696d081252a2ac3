// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Index names a column a progressive load can order and filter by.
type Index string

const (
	IndexID           Index = "id"
	IndexVersion      Index = "version"
	IndexLastModified Index = "last_modified"
	IndexSyncStatus   Index = "sync_status"
	IndexCategory     Index = "category"
	IndexFavorite     Index = "favorite"
	IndexDate         Index = "date"
	IndexUserID       Index = "user_id"
)

// Valid reports whether i is a supported index.
func (i Index) Valid() bool {
	switch i {
	case IndexID, IndexVersion, IndexLastModified, IndexSyncStatus,
		IndexCategory, IndexFavorite, IndexDate, IndexUserID:
		return true
	}
	return false
}

// Direction is the scan order over an index.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// PageOptions parameterise a progressive load.
type PageOptions struct {
	// Limit is the requested page size; zero or negative means "use the cap".
	Limit int
	// Offset skips that many matching records.
	Offset int
	// Index orders (and optionally filters) the scan. Defaults to IndexID.
	Index Index
	// Value, when non-nil, restricts the scan to rows whose Index equals it.
	Value any
	// Direction of the scan. Defaults to Ascending.
	Direction Direction
	// Priority is a caller hint carried into logs.
	Priority int
}

// ScanOptions is the store-level form of a page request: limits are final.
type ScanOptions struct {
	Index     Index
	Value     any
	Direction Direction
	Offset    int
	Limit     int
}

// IndexFields are the entity-specific filter columns extracted from a
// payload at write time.
type IndexFields struct {
	Category *string
	Favorite *bool
	Date     *string
	UserID   *string
}
