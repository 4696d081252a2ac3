// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server is the reference sync endpoint as seen by cmd/server.
type Server interface {
	// Run serves until ctx is cancelled or SIGINT, SIGTERM or SIGQUIT
	// arrives, then drains in-flight requests.
	Run(ctx context.Context) error

	// Shutdown stops accepting connections.
	Shutdown()
}
