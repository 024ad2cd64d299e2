package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frsworks/frs-sync/internal/auth"
	"github.com/frsworks/frs-sync/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin API token",
	Long: `Issue a signed bearer token for the admin API using the auth secret from
the configuration file (or FRS_AUTH_JWT_SECRET).`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	tokenCmd.Flags().String("subject", "admin", "Subject recorded in the token")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	if err := tokenCmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	authCfg := cfg.Auth
	if authCfg == nil {
		authCfg = &config.AuthConfig{}
	}
	if authCfg.Disabled {
		return fmt.Errorf("admin API authentication is disabled in the configuration")
	}

	subject, err := cmd.Flags().GetString("subject")
	if err != nil {
		return fmt.Errorf("failed to get subject flag: %w", err)
	}
	ttl, err := cmd.Flags().GetDuration("ttl")
	if err != nil {
		return fmt.Errorf("failed to get ttl flag: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	secret, err := authCfg.GetSecret()
	if err != nil {
		return err
	}

	token, err := auth.IssueToken(secret, authCfg.Issuer, subject, ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
