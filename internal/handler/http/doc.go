// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the HTTP transport of the reference sync endpoint.
//
// It wires the chi routes of the sync contract and the middleware in front
// of them: request tracing, access logging, compression and the HashSHA256
// integrity check. Requests are then delegated to the remote service.
package http
