// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains message constants shared by the reference sync
// endpoint handlers and middleware.
//
// All Msg* constants are written into HTTP response bodies, so the wording
// clients see stays the same across routes.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded or inflated.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError is returned for failures the client cannot fix.
	// Storage errors are never echoed to callers.
	MsgInternalServerError = "internal server error"

	// MsgDataNotFound is returned when the requested record does not exist
	// on the server or has been deleted.
	MsgDataNotFound = "data not found"

	// MsgRequestTimeout is returned when handling exceeds the configured
	// request timeout.
	MsgRequestTimeout = "request timeout"
)
