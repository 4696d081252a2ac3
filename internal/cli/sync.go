// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-nutri-sync/internal/client"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Probe the remote endpoint and drain the sync queue once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				if profile := app.Probe(ctx); !profile.Online {
					fmt.Fprintln(cmd.ErrOrStderr(), "remote endpoint unreachable, nothing was sent")
				}
				result, err := app.Engine.Sync.PerformBatchSync(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Keep the store in sync until interrupted",
		Long: `Probes connectivity periodically, resumes sync after reconnects and
drains the queue on the configured interval. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return app.Run(ctx)
			})
		},
	}
}

// NewConflictsCommand creates the conflicts command.
func NewConflictsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List conflicts waiting for a manual decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				conflicts, err := app.Engine.Conflicts.ListPending(ctx)
				if err != nil {
					return err
				}
				if conflicts == nil {
					conflicts = []models.ConflictRecord{}
				}
				return writeJSON(cmd.OutOrStdout(), conflicts)
			})
		},
	}
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(opts *RootOptions) *cobra.Command {
	var merged string

	cmd := &cobra.Command{
		Use:   "resolve <conflict-id> <local|remote|merge>",
		Short: "Decide a pending conflict",
		Long: `Applies a manual decision to a pending conflict. A merge needs the
merged JSON object payload in --payload ("-" reads it from stdin).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload json.RawMessage
			if merged != "" {
				var err error
				if payload, err = readPayload(cmd.InOrStdin(), merged); err != nil {
					return err
				}
			}
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				record, err := app.Engine.Conflicts.ResolveManual(ctx, args[0], models.Resolution(args[1]), payload)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), record)
			})
		},
	}

	cmd.Flags().StringVar(&merged, "payload", "", "Merged payload for a merge resolution")

	return cmd
}

type statsOutput struct {
	Cache       models.CacheStats       `json:"cache"`
	QueueLength int                     `json:"queueLength"`
	Network     models.NetworkProfile   `json:"network"`
	Settings    models.AdaptiveSettings `json:"settings"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print cache, queue and network state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				if probe {
					app.Probe(ctx)
				}
				cache, err := app.Engine.Cache.Stats(ctx)
				if err != nil {
					return err
				}
				queued, err := app.Engine.Sync.QueueLength(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), statsOutput{
					Cache:       cache,
					QueueLength: queued,
					Network:     app.Engine.Network.Profile(),
					Settings:    app.Engine.Network.Settings(),
				})
			})
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Ping the remote endpoint first")

	return cmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), opts.buildInfo)
			return err
		},
	}
}
