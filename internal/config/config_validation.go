// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.App.ClientID == "" || cfg.App.MaxPageSize <= 0 {
		return ErrInvalidAppConfigs
	}

	if cfg.Sync.Interval <= 0 || cfg.Sync.ExchangeTimeout <= 0 || cfg.Sync.MaxAttempts < 1 || cfg.Sync.BatchDelay < 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Cache.BudgetBytes <= 0 || cfg.Cache.DataSaverBudgetBytes <= 0 {
		return ErrInvalidCacheConfigs
	}

	if cfg.Network.SettleDelay < 0 || cfg.Network.ProbeInterval <= 0 || cfg.Network.ProbeTimeout <= 0 {
		return ErrInvalidNetworkConfigs
	}

	return validateLogging(cfg.Logging)
}

func (cfg *ServerConfig) validate() error {
	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	return validateLogging(cfg.Logging)
}

func validateLogging(cfg Logging) error {
	switch cfg.Level {
	case "", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		return nil
	}
	return fmt.Errorf("%w: unknown level %q", ErrInvalidLoggingConfigs, cfg.Level)
}
