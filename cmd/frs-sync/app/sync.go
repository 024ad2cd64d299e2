package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/frsworks/frs-sync/internal/app"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full sync and exit",
	Long: `Run one full sync of every loan officer from the FRS API and print the
result as JSON. It uses the same storage as the server, so it can run from
a cron job against a database deployment.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	syncCmd.Flags().String("data-dir", "./data", "Directory for settings and media when no database is configured")

	if err := syncCmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
}

type syncOutput struct {
	Total   int    `json:"total"`
	Synced  int    `json:"synced"`
	Errors  int    `json:"errors"`
	Message string `json:"message"`
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return fmt.Errorf("failed to get data-dir flag: %w", err)
	}

	components, err := app.NewComponents(ctx, app.WithConfig(cfg), app.WithDataDirectory(dataDir))
	if err != nil {
		return fmt.Errorf("failed to build sync components: %w", err)
	}
	defer components.Close()

	result, err := components.SyncManager.PerformFullSync(ctx)
	if err != nil {
		return fmt.Errorf("full sync failed: %w", err)
	}

	slog.Info("Full sync finished", "total", result.Total, "synced", result.Synced, "errors", result.Errors)

	output, err := json.MarshalIndent(syncOutput{
		Total:   result.Total,
		Synced:  result.Synced,
		Errors:  result.Errors,
		Message: result.Message,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format sync result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return err
}
