package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/flywaysum/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "flywaysum",
	Short: "Flyway checksum calculator and repair tool",
	Long: `flywaysum computes Flyway migration checksums and repairs edited migrations.

When a migration that Flyway already applied has been changed, repair appends
a short SQL line comment ("--" followed by 1 to 8 printable characters) so the
file checksums to the value recorded in flyway_schema_history again. The
original file is kept next to it with a backup suffix (default .old).

Exit Codes:
  0  - Success (checksums match or file repaired)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - User denied rewrite approval
  13 - No matching comment within search limits
  14 - Verification of the repaired content failed
  15 - File content is not valid UTF-8
  16 - Script not found in flyway_schema_history`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", "",
		"Path to a flywaysum.yaml file (default: ./flywaysum.yaml when present)")
}

// getVerboseFlag returns the value of the persistent --verbose flag.
func getVerboseFlag(cmd *cobra.Command) bool {
	f := cmd.Flag("verbose")
	return f != nil && f.Value.String() == "true"
}

// loadProjectConfig loads .env from the working directory, then the config
// file named by --config, then ./flywaysum.yaml. A missing default file
// yields the built-in defaults; a missing --config file is an error.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	if err := config.LoadEnv("."); err != nil {
		return nil, err
	}

	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		cfg, err := config.LoadFile(f.Value.String())
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f.Value.String(), err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}

// commandContext is cancelled by Ctrl+C or SIGTERM, and after timeout when
// timeout is positive.
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
