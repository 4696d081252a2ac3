// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-nutri-sync/internal/adapter"
	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/network"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/workers"
	"github.com/MKhiriev/go-nutri-sync/models"
)

type App struct {
	Engine *service.Engine

	probe   *network.ProbeProvider
	monitor *network.Monitor
	cfg     *config.ClientConfig

	logger *logger.Logger
}

// NewApp opens the local store and builds the engine on top of it. The
// network is reported offline until the first probe.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	log.Info().Str("client_id", cfg.App.ClientID).Msg("creating client app...")

	remote, err := adapter.NewHTTPRemoteEndpoint(cfg.Adapter, cfg.App, log.ForComponent("adapter"))
	if err != nil {
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}

	s, err := store.NewStore(ctx, cfg.Storage, log.ForComponent("store"))
	if err != nil {
		return nil, fmt.Errorf("create local store: %w", err)
	}

	probe := network.NewProbeProvider(remote, cfg.Network.ProbeInterval, cfg.Network.ProbeTimeout, cfg.Network.DataSaver)
	monitor := network.NewMonitor(probe, limitsFromConfig(cfg), cfg.Network.SettleDelay, log.ForComponent("network"))

	engine := service.NewEngine(s, remote, monitor, cfg.App, cfg.Sync, log)
	monitor.OnResume(engine.ResumeSync)

	return &App{
		Engine:  engine,
		probe:   probe,
		monitor: monitor,
		cfg:     cfg,
		logger:  log,
	}, nil
}

func limitsFromConfig(cfg *config.ClientConfig) network.Limits {
	return network.Limits{
		MaxPageSize:          cfg.App.MaxPageSize,
		CacheBudgetBytes:     cfg.Cache.BudgetBytes,
		DataSaverBudgetBytes: cfg.Cache.DataSaverBudgetBytes,
		DataSaverBatchDelay:  cfg.Sync.BatchDelay,
	}
}

// Probe pings the remote endpoint once and makes the result the current
// network profile.
func (a *App) Probe(ctx context.Context) models.NetworkProfile {
	profile := a.probe.Probe(ctx)
	a.monitor.Observe(profile)
	return profile
}

// Run probes connectivity, resumes sync on reconnects and drains the queue
// periodically until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().
		Dur("sync_interval", a.cfg.Sync.Interval).
		Dur("probe_interval", a.cfg.Network.ProbeInterval).
		Msg("starting background sync")

	workers.NewWorkers(
		a.probe,
		a.monitor,
		workers.NewSyncWorker(a.Engine.SyncJob, a.cfg.Sync.Interval),
	).Run(ctx)

	a.logger.Info().Msg("background sync stopped")
	return nil
}

func (a *App) Close() error {
	return a.Engine.Close()
}
