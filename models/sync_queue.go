// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Operation is the kind of change a queue entry carries to the remote.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// MaxSyncAttempts is the retry ceiling: an entry whose AttemptCount exceeds it
// is dropped from the queue.
const MaxSyncAttempts = 5

// SyncQueueEntry references a record that has to be pushed to the remote.
// There is at most one entry per (EntityType, RecordID); a later write to the
// same id updates the entry in place and keeps its FIFO position.
type SyncQueueEntry struct {
	// Seq is the FIFO position assigned at first enqueue.
	Seq int64 `json:"seq"`

	// RecordID references the VersionedRecord.
	RecordID string `json:"recordId"`

	// EntityType of the referenced record.
	EntityType EntityType `json:"entityType"`

	// Operation to replay on the remote.
	Operation Operation `json:"operation"`

	// EnqueuedAt is the time of first enqueue.
	EnqueuedAt time.Time `json:"enqueuedAt"`

	// AttemptCount is the number of failed exchanges so far.
	AttemptCount int `json:"attemptCount"`

	// Priority orders the queue; lower syncs sooner.
	Priority int `json:"priority"`

	// BatchID tags the sync sub-batch that last picked this entry.
	BatchID string `json:"batchId,omitempty"`

	// RecordVersion is the record version this entry was written for. A
	// success acknowledgement only clears the entry when the record has not
	// been written again in the meantime.
	RecordVersion int64 `json:"recordVersion"`
}

// Exhausted reports whether the entry went past the retry ceiling.
func (e SyncQueueEntry) Exhausted() bool {
	return e.AttemptCount > MaxSyncAttempts
}
