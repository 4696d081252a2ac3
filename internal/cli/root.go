// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli implements the nutrisync client commands on top of a
// [client.App].
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MKhiriev/go-nutri-sync/internal/client"
	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/spf13/cobra"
)

const clientRole = "nutrisync-client"

// RootOptions holds state shared by all commands.
type RootOptions struct {
	flags     *config.Flags
	buildInfo models.AppBuildInfo
}

// NewRootCommand creates the root command of the client CLI.
func NewRootCommand(buildInfo models.AppBuildInfo) *cobra.Command {
	opts := &RootOptions{buildInfo: buildInfo}

	cmd := &cobra.Command{
		Use:           "nutrisync",
		Short:         "Local-first nutrition data store",
		Long:          "Reads and writes records in the local store and syncs them with the remote endpoint.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.flags = config.RegisterClientFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		NewSaveCommand(opts),
		NewGetCommand(opts),
		NewDeleteCommand(opts),
		NewLoadCommand(opts),
		NewSyncCommand(opts),
		NewConflictsCommand(opts),
		NewResolveCommand(opts),
		NewStatsCommand(opts),
		NewRunCommand(opts),
		NewVersionCommand(opts),
	)

	return cmd
}

// withApp opens the client app for the duration of fn.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *client.App) error) error {
	cfg, err := config.GetClientConfig(o.flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.buildInfo.Known() {
		cfg.App.Version = o.buildInfo.BuildVersion()
	}

	log := logger.NewClientLogger(clientRole, cfg.Logging.File).WithLevel(cfg.Logging.Level)
	ctx := log.WithContext(cmd.Context())

	app, err := client.NewApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init client app: %w", err)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			log.Err(cerr).Str("func", "*RootOptions.withApp").Msg("error closing client app")
		}
	}()

	return fn(ctx, app)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
