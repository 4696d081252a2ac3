// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrPathMismatch is returned when the record in an exchange body does
	// not belong to the entity type and id of the request path.
	ErrPathMismatch = errors.New("record does not match request path")

	// ErrMissingSignature is returned when signing is enabled and the
	// request carries no HashSHA256 header.
	ErrMissingSignature = errors.New("missing request signature")

	// ErrInvalidSignature is returned when the HashSHA256 header does not
	// match the request body.
	ErrInvalidSignature = errors.New("integrity check failed")
)
