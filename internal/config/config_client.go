// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
)

// ClientConfig is the view of [StructuredConfig] used by the client engine.
type ClientConfig struct {
	App     App
	Adapter Adapter
	Storage Storage
	Sync    Sync
	Cache   Cache
	Network Network
	Logging Logging
}

// ServerConfig is the view of [StructuredConfig] used by the reference sync
// server.
type ServerConfig struct {
	App     App
	Server  Server
	Storage Storage
	Logging Logging
}

// GetClientConfig loads defaults, JSON, environment and the parsed flags,
// maps the client sections and validates them.
func GetClientConfig(flags *Flags) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults(clientDefaults()).
		withEnv().
		withFlags(flags).
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App:     cfg.App,
		Adapter: cfg.Adapter,
		Storage: cfg.Storage,
		Sync:    cfg.Sync,
		Cache:   cfg.Cache,
		Network: cfg.Network,
		Logging: cfg.Logging,
	}

	return clientCfg, clientCfg.validate()
}

// GetServerConfig is the server counterpart of [GetClientConfig].
func GetServerConfig(flags *Flags) (*ServerConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults(serverDefaults()).
		withEnv().
		withFlags(flags).
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		App:     cfg.App,
		Server:  cfg.Server,
		Storage: cfg.Storage,
		Logging: cfg.Logging,
	}

	return serverCfg, serverCfg.validate()
}
