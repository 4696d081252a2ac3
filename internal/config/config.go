// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// client engine and the reference sync server. It is populated by merging
// defaults, an optional JSON file, environment variables and command-line
// flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds identity and integrity settings.
	App App `envPrefix:"APP_"`

	// Server holds the listen address of the reference sync server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the address of the remote sync endpoint the client talks
	// to.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local store location.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync tunes the sync orchestrator and its periodic job.
	Sync Sync `envPrefix:"SYNC_"`

	// Cache sets the read cache budgets.
	Cache Cache `envPrefix:"CACHE_"`

	// Network tunes connectivity probing and resume behaviour.
	Network Network `envPrefix:"NETWORK_"`

	// Logging selects log level and destination.
	Logging Logging `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level settings.
type App struct {
	// ClientID identifies this device in every record it writes.
	// Env: APP_CLIENT_ID
	ClientID string `env:"CLIENT_ID"`

	// HashKey is the HMAC key used for the HashSHA256 request header.
	// Empty disables signing and verification.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// MaxPageSize caps progressive loads on fast connections.
	// Env: APP_MAX_PAGE_SIZE
	MaxPageSize int `env:"MAX_PAGE_SIZE"`

	// Version is reported in startup logs.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Server holds network and timeout settings for the reference sync server.
type Server struct {
	// HTTPAddress is the host:port the server listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds the handling of a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds outbound transport settings of the client.
type Adapter struct {
	// HTTPAddress is the base address of the remote sync endpoint.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the resty client timeout for a single call.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds the local store location.
type Storage struct {
	// DSN is a SQLite file path, or "memory" for the in-process store.
	// Env: STORAGE_DSN
	DSN string `env:"DSN"`
}

// Sync tunes the sync orchestrator.
type Sync struct {
	// Interval is the period of the background sync job.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// ExchangeTimeout bounds a single queue entry exchange.
	// Env: SYNC_EXCHANGE_TIMEOUT
	ExchangeTimeout time.Duration `env:"EXCHANGE_TIMEOUT"`

	// MaxAttempts is the retry ceiling per queue entry.
	// Env: SYNC_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// BatchDelay is slept between sub-batches under data saver.
	// Env: SYNC_BATCH_DELAY
	BatchDelay time.Duration `env:"BATCH_DELAY"`
}

// Cache sets the read cache budgets in bytes.
type Cache struct {
	// BudgetBytes applies when data saver is off.
	// Env: CACHE_BUDGET_BYTES
	BudgetBytes int64 `env:"BUDGET_BYTES"`

	// DataSaverBudgetBytes applies when data saver is on.
	// Env: CACHE_DATA_SAVER_BUDGET_BYTES
	DataSaverBudgetBytes int64 `env:"DATA_SAVER_BUDGET_BYTES"`
}

// Network tunes connectivity probing.
type Network struct {
	// SettleDelay is waited after reconnect before resuming sync.
	// Env: NETWORK_SETTLE_DELAY
	SettleDelay time.Duration `env:"SETTLE_DELAY"`

	// ProbeInterval is the period of remote pings.
	// Env: NETWORK_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// ProbeTimeout bounds a single ping.
	// Env: NETWORK_PROBE_TIMEOUT
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT"`

	// DataSaver forces reduced batches, pages and cache.
	// Env: NETWORK_DATA_SAVER
	DataSaver bool `env:"DATA_SAVER"`
}

// Logging selects level and destination.
type Logging struct {
	// Level is a zerolog level name ("debug", "info", ...).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`

	// File is the client log file; empty means next to the executable.
	// Env: LOG_FILE
	File string `env:"FILE"`
}
