package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vvka-141/flywaysum/internal/config"
	"github.com/vvka-141/flywaysum/internal/db"
	"github.com/vvka-141/flywaysum/internal/logging"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

var historyCmd = &cobra.Command{
	Use:   "history [script]",
	Short: "Read applied checksums from flyway_schema_history",
	Long: `History connects to the database Flyway migrates and prints the checksum
recorded by the latest successful application of script. With --all every
row of the history table is listed instead.

The connection string is resolved in this order:
  1. --connection flag
  2. connection in flywaysum.yaml
  3. $FLYWAYSUM_CONNECTION
  4. $DATABASE_URL
A .env file in the working directory is loaded first.

Examples:
  flywaysum history V2__add_users.sql --connection postgresql://app@localhost/app
  flywaysum history --all`,
	Args: func(cmd *cobra.Command, args []string) error {
		if historyFlags.all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runHistory,
}

type historyFlagValues struct {
	connection string
	schema     string
	table      string
	all        bool
}

var historyFlags historyFlagValues

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.connection, "connection", "",
		"PostgreSQL connection string (URI or key=value format)")
	historyCmd.Flags().StringVar(&historyFlags.schema, "schema", "",
		"Schema of the history table (default \"public\" or history.schema in flywaysum.yaml)")
	historyCmd.Flags().StringVar(&historyFlags.table, "table", "",
		"Name of the history table (default \"flyway_schema_history\" or history.table in flywaysum.yaml)")
	historyCmd.Flags().BoolVar(&historyFlags.all, "all", false, "List every row of the history table")
}

func runHistory(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeout)
	defer cancel()

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), verbose)
	opts := historyOptions{
		connection: historyFlags.connection,
		schema:     historyFlags.schema,
		table:      historyFlags.table,
	}

	return withHistory(ctx, cfg, opts, logger, func(reader *db.HistoryReader) error {
		if historyFlags.all {
			entries, err := reader.List(ctx)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		}

		sum, err := reader.Checksum(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Script: %s\n", args[0])
		fmt.Fprintf(out, "  Checksum: %d (%s)\n", sum.Int32(), sum.Hex())
		return nil
	})
}

type historyOptions struct {
	connection string
	schema     string
	table      string
}

// withHistory connects to the history database and calls fn with a reader
// for the configured table. The pool is closed when fn returns.
func withHistory(
	ctx context.Context,
	cfg *config.ProjectConfig,
	opts historyOptions,
	logger flywaysum.Logger,
	fn func(*db.HistoryReader) error,
) error {
	schema, tableName := cfg.History.Schema, cfg.History.Table
	if opts.schema != "" {
		schema = opts.schema
	}
	if opts.table != "" {
		tableName = opts.table
	}

	pool, err := db.NewConnector(config.ResolveConnection(opts.connection, cfg), logger).Connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	reader, err := db.NewHistoryReader(pool, schema, tableName)
	if err != nil {
		return err
	}
	return fn(reader)
}

func printHistory(out io.Writer, entries []flywaysum.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "History table is empty")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		sum, hex := "", ""
		if e.Checksum != nil {
			sum = strconv.FormatInt(int64(e.Checksum.Int32()), 10)
			hex = e.Checksum.Hex()
		}
		rows = append(rows, []string{
			strconv.Itoa(e.InstalledRank),
			e.Version,
			e.Script,
			sum,
			hex,
			strconv.FormatBool(e.Success),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RANK", "VERSION", "SCRIPT", "CHECKSUM", "HEX", "SUCCESS").
		Rows(rows...)
	fmt.Fprintln(out, t.Render())
}
