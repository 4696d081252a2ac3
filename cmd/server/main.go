// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/handler"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/server"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/spf13/pflag"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(buildInfo)

	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	flags := config.RegisterServerFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.GetServerConfig(flags)
	log := logger.NewLogger("nutrisync-server")
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	log = log.WithLevel(cfg.Logging.Level)
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	log.Debug().Any("server", cfg.Server).Str("dsn", cfg.Storage.DSN).Msg("received configs")

	s, err := store.NewStore(context.Background(), cfg.Storage, log.ForComponent("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("error creating store")
	}
	defer s.Close()

	services := service.NewServices(s)

	handlers, err := handler.NewHandlers(services, cfg.Server, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err := srv.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
}
