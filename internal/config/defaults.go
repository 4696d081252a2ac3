// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

const (
	DefaultAdapterAddress   = "localhost:8080"
	DefaultRequestTimeout   = 15 * time.Second
	DefaultClientDSN        = "nutrisync.db"
	DefaultServerDSN        = "nutrisync-server.db"
	DefaultMaxPageSize      = 50
	DefaultSyncInterval     = time.Minute
	DefaultExchangeTimeout  = 10 * time.Second
	DefaultMaxAttempts      = 5
	DefaultBatchDelay       = 500 * time.Millisecond
	DefaultCacheBudget      = 20 << 20
	DefaultDataSaverBudget  = 5 << 20
	DefaultSettleDelay      = 2 * time.Second
	DefaultProbeInterval    = 30 * time.Second
	DefaultProbeTimeout     = 5 * time.Second
	DefaultLogLevel         = "info"
	fallbackClientIDPrefix  = "nutrisync-"
	fallbackClientIDUnknown = "nutrisync-client"
)

func clientDefaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			ClientID:    defaultClientID(),
			MaxPageSize: DefaultMaxPageSize,
		},
		Adapter: Adapter{
			HTTPAddress:    DefaultAdapterAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Storage: Storage{DSN: DefaultClientDSN},
		Sync: Sync{
			Interval:        DefaultSyncInterval,
			ExchangeTimeout: DefaultExchangeTimeout,
			MaxAttempts:     DefaultMaxAttempts,
			BatchDelay:      DefaultBatchDelay,
		},
		Cache: Cache{
			BudgetBytes:          DefaultCacheBudget,
			DataSaverBudgetBytes: DefaultDataSaverBudget,
		},
		Network: Network{
			SettleDelay:   DefaultSettleDelay,
			ProbeInterval: DefaultProbeInterval,
			ProbeTimeout:  DefaultProbeTimeout,
		},
		Logging: Logging{Level: DefaultLogLevel},
	}
}

func serverDefaults() *StructuredConfig {
	return &StructuredConfig{
		Server: Server{
			HTTPAddress:    DefaultAdapterAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Storage: Storage{DSN: DefaultServerDSN},
		Logging: Logging{Level: DefaultLogLevel},
	}
}

// defaultClientID is derived from the host name so it stays stable across
// runs of the same device.
func defaultClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return fallbackClientIDUnknown
	}
	return fallbackClientIDPrefix + host
}
