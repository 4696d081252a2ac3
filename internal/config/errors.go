// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned when a configuration section is incomplete or
// out of range.
var (
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	ErrInvalidAppConfigs     = errors.New("invalid app configuration")
	ErrInvalidSyncConfigs    = errors.New("invalid sync configuration")
	ErrInvalidCacheConfigs   = errors.New("invalid cache configuration")
	ErrInvalidNetworkConfigs = errors.New("invalid network configuration")
	ErrInvalidServerConfigs  = errors.New("invalid server configuration")
	// ErrInvalidLoggingConfigs is returned for an unknown log level.
	ErrInvalidLoggingConfigs = errors.New("invalid logging configuration")
)
