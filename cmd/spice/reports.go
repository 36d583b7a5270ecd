package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-report/internal/cli"
	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/config"
	"github.com/Veraticus/spice-report/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse archived reports",
		Long: `Browse the reports stored in the local archive.

Reports are archived when a report command runs with --archive or with
archive.enabled set in the config file.`,
	}

	cmd.AddCommand(reportsListCmd())
	cmd.AddCommand(reportsShowCmd())

	return cmd
}

func reportsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			limit, _ := cmd.Flags().GetInt("limit")

			return withArchive(cmd.Context(), func(archive *storage.Archive) error {
				reports, err := archive.List(cmd.Context(), name, limit)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderArchive(reports))
				return err
			})
		},
	}

	cmd.Flags().String("name", "", "only list reports with this name")
	cmd.Flags().Int("limit", 20, "maximum number of reports (0 for all)")

	return cmd
}

func reportsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd.Context(), func(archive *storage.Archive) error {
				stored, err := archive.Get(cmd.Context(), args[0])
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("no archived report with id %s", args[0]), err)
				}
				if err != nil {
					return err
				}

				var buf bytes.Buffer
				if err := json.Indent(&buf, []byte(stored.Payload), "", "    "); err != nil {
					return fmt.Errorf("archived report %s is corrupt: %w", stored.ID, err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), buf.String())
				return err
			})
		},
	}
}

// withArchive opens the configured archive for the duration of fn.
func withArchive(ctx context.Context, fn func(*storage.Archive) error) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	archive, err := initArchive(ctx, cfg.Archive.Path, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := archive.Close(); err != nil {
			slog.Warn("Failed to close archive", "error", err)
		}
	}()

	return fn(archive)
}
