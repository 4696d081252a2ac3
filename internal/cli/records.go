// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/MKhiriev/go-nutri-sync/internal/client"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/spf13/cobra"
)

// NewSaveCommand creates the save command.
func NewSaveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <entity-type> <id> <payload|->",
		Short: "Create or update a record",
		Long: `Stamps the JSON object payload as a new local version and queues it
for sync. Pass "-" to read the payload from stdin.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[2])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				record, err := app.Engine.Versions.Save(ctx, models.EntityType(args[0]), args[1], payload)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), record)
			})
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity-type> <id>",
		Short: "Print the current version of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				record, err := app.Engine.Versions.Get(ctx, models.EntityType(args[0]), args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), record)
			})
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity-type> <id>",
		Short: "Delete a record and queue the deletion for sync",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				record, err := app.Engine.Versions.Delete(ctx, models.EntityType(args[0]), args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), record)
			})
		},
	}
}

type loadOptions struct {
	index     string
	value     string
	direction string
	limit     int
	offset    int
}

// NewLoadCommand creates the load command.
func NewLoadCommand(opts *RootOptions) *cobra.Command {
	lo := &loadOptions{}

	cmd := &cobra.Command{
		Use:   "load <entity-type>",
		Short: "Print one page of records",
		Long: `Prints one page of records of an entity type, one JSON object per line.
The page size is capped by the current network profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := lo.pageOptions()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *client.App) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for record, err := range app.Engine.Loader.LoadPage(ctx, models.EntityType(args[0]), page) {
					if err != nil {
						return err
					}
					if err = enc.Encode(record); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&lo.index, "index", "", "Index to order and filter by (id, version, last_modified, sync_status, category, favorite, date, user_id)")
	cmd.Flags().StringVar(&lo.value, "value", "", "Only records whose index equals this value")
	cmd.Flags().StringVar(&lo.direction, "direction", "", "Scan direction (asc, desc)")
	cmd.Flags().IntVar(&lo.limit, "limit", 0, "Requested page size")
	cmd.Flags().IntVar(&lo.offset, "offset", 0, "Records to skip")

	return cmd
}

func (lo *loadOptions) pageOptions() (models.PageOptions, error) {
	page := models.PageOptions{
		Index:     models.Index(lo.index),
		Direction: models.Direction(lo.direction),
		Limit:     lo.limit,
		Offset:    lo.offset,
	}
	if lo.value == "" {
		return page, nil
	}

	switch page.Index {
	case models.IndexFavorite:
		v, err := strconv.ParseBool(lo.value)
		if err != nil {
			return page, fmt.Errorf("invalid favorite value %q: %w", lo.value, err)
		}
		page.Value = v
	case models.IndexVersion, models.IndexLastModified:
		v, err := strconv.ParseInt(lo.value, 10, 64)
		if err != nil {
			return page, fmt.Errorf("invalid %s value %q: %w", page.Index, lo.value, err)
		}
		page.Value = v
	default:
		page.Value = lo.value
	}
	return page, nil
}

func readPayload(stdin io.Reader, arg string) (json.RawMessage, error) {
	if arg != "-" {
		return json.RawMessage(arg), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read payload from stdin: %w", err)
	}
	return data, nil
}
