// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the lifecycle contract of a runnable client.
type Client interface {
	// Run starts the background loops and blocks until ctx is cancelled.
	Run(ctx context.Context) error

	// Close releases the local store.
	Close() error
}
