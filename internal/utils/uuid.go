// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import "github.com/google/uuid"

// IDGenerator produces identifiers for sync batches and conflict rows.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator is the production [IDGenerator]. Ids are time-ordered v7
// UUIDs so conflict rows sort by creation; a random v4 is used if the v7
// source fails.
type UUIDGenerator struct{}

// Generate returns a new UUID string.
func (UUIDGenerator) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}
