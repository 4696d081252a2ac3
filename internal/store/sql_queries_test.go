// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTime() time.Time { return time.UnixMilli(1_700_000_000_000) }

func Test_buildScanRecordsQuery(t *testing.T) {
	tests := []struct {
		name     string
		opts     models.ScanOptions
		contains []string
		args     []any
	}{
		{
			name:     "defaults",
			opts:     models.ScanOptions{},
			contains: []string{"FROM records", "WHERE entity_type = ? AND deleted = ?", "ORDER BY id ASC"},
			args:     []any{"recipe", false},
		},
		{
			name:     "filter and descending",
			opts:     models.ScanOptions{Index: models.IndexCategory, Value: "soup", Direction: models.Descending, Limit: 5, Offset: 10},
			contains: []string{"category = ?", "ORDER BY category DESC, id DESC", "LIMIT 5", "OFFSET 10"},
			args:     []any{"recipe", false, "soup"},
		},
		{
			name:     "sync status value normalized",
			opts:     models.ScanOptions{Index: models.IndexSyncStatus, Value: models.SyncStatusConflict},
			contains: []string{"sync_status = ?"},
			args:     []any{"recipe", false, "conflict"},
		},
		{
			name:     "offset without limit",
			opts:     models.ScanOptions{Offset: 3},
			contains: []string{"LIMIT", "OFFSET 3"},
			args:     []any{"recipe", false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildScanRecordsQuery(models.EntityRecipe, tt.opts)
			require.NoError(t, err)
			for _, part := range tt.contains {
				assert.Contains(t, query, part)
			}
			assert.Equal(t, tt.args, args)
			// SQLite placeholders
			assert.NotContains(t, query, "$1")
		})
	}

	_, _, err := buildScanRecordsQuery(models.EntityRecipe, models.ScanOptions{Index: "nope"})
	require.ErrorIs(t, err, ErrBuildingSQLQuery)
}

func Test_buildPendingEntriesQuery(t *testing.T) {
	query, args, err := buildPendingEntriesQuery()
	require.NoError(t, err)
	assert.Empty(t, args)
	assert.Contains(t, query, "FROM sync_queue")
	assert.True(t, strings.HasSuffix(query, "ORDER BY priority ASC, seq ASC"))
}

func Test_buildListConflictsQuery(t *testing.T) {
	query, _, err := buildListConflictsQuery(true)
	require.NoError(t, err)
	assert.Contains(t, query, "resolved_at IS NULL")

	query, _, err = buildListConflictsQuery(false)
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
}

func Test_buildRankedCacheQuery(t *testing.T) {
	query, _, err := buildRankedCacheQuery()
	require.NoError(t, err)
	assert.Contains(t, query, "ORDER BY priority ASC, last_accessed ASC")
	assert.NotContains(t, query, "payload")
}
