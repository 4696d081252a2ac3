// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the client's background loops: the periodic sync
// job, the connectivity probe and the network monitor.
package workers

import "context"

// Worker is a background loop. Run blocks until ctx is cancelled.
//
// [network.Monitor] and [network.ProbeProvider] satisfy Worker directly;
// the sync job is adapted by [NewSyncWorker].
type Worker interface {
	Run(ctx context.Context)
}
