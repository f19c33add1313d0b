package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/dbprobe/pkg/config"
	"github.com/compozy/dbprobe/pkg/logger"
)

// RootCmd builds the dbprobe command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbprobe",
		Short: "Check database connectivity and seed test users",
		Long: `dbprobe normalizes DATABASE_URL for a synchronous driver, opens a single
connection and runs a few statements against it. It works with hosted
PostgreSQL and with local SQLite files.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupGlobalConfig,
	}

	pf := root.PersistentFlags()
	pf.String("env-file", ".env", "Path to a .env file loaded before configuration")
	pf.String("database-url", "", "Connection string (overrides DATABASE_URL)")
	pf.Duration("connect-timeout", 0, "Connection timeout, 0 keeps the driver default")
	pf.String("user-table", "", "Name of the user table")
	pf.String("username-column", "", "Column holding the username (e.g. user_name)")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "Output logs in JSON format")
	pf.Bool("log-source", false, "Include source file and line in logs")
	pf.Bool("debug", false, "Enable debug logging")

	root.AddCommand(
		CheckCmd(),
		EnsureUserCmd(),
		InsertUserCmd(),
		NormalizeCmd(),
		ConfigCmd(),
	)
	return root
}

// setupGlobalConfig loads the .env file and configuration, installs the
// logger and stores both in the command context.
func setupGlobalConfig(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	envPath, err := loadEnvFile(cmd)
	if err != nil {
		return err
	}
	flags := make(map[string]any)
	extractCLIFlags(cmd, flags)
	svc := config.NewService()
	cfg, err := svc.Load(ctx, config.NewCLIProvider(flags))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logSource, err := logger.GetLogSource(cmd)
	if err != nil {
		return err
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, logSource, cfg.Runtime.Debug)
	log.Debug("Configuration loaded", "env_file", envPath, "log_level", cfg.Runtime.LogLevel)
	if cfg.UsesDefaultSecrets() {
		log.Warn("AUTH_SECRET or BETTER_AUTH_SECRET still uses the placeholder value")
	}
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithConfig(ctx, cfg, svc)
	cmd.SetContext(ctx)
	return nil
}

// configFrom returns the configuration installed by setupGlobalConfig.
func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	return cfg, nil
}
