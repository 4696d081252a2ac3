// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the local-first engine of one device.
//
// It wires configuration, the local store, the remote adapter and the
// network monitor into a [service.Engine], and runs the background loops
// that keep the store in sync.
package client
