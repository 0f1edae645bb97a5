package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/flywaysum/internal/checksum"
	"github.com/vvka-141/flywaysum/internal/config"
	"github.com/vvka-141/flywaysum/internal/db"
	"github.com/vvka-141/flywaysum/internal/files/filesystem"
	"github.com/vvka-141/flywaysum/internal/logging"
	"github.com/vvka-141/flywaysum/internal/repair"
	"github.com/vvka-141/flywaysum/internal/search"
	"github.com/vvka-141/flywaysum/internal/tui"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

var repairCmd = &cobra.Command{
	Use:   "repair (<src> <dst> | <dst> --target <checksum> | <dst> --from-history)",
	Short: "Make a modified migration reproduce its original checksum",
	Long: `Repair appends a SQL line comment to dst so that its Flyway checksum equals
the target checksum, and keeps the original next to it.

The target is one of:
  <src>                  the checksum of another file (usually the applied version)
  --target <checksum>    a literal checksum, signed decimal or 0x-prefixed hex
  --from-history         the checksum in flyway_schema_history for --script
                         (default: the file name of dst)

If the checksums already match nothing is changed. Otherwise every comment
"--" followed by 1 to --max-length printable ASCII characters is tried,
shortest first. Trailing newlines of dst are removed, the comment is added
as the new last line, and the result is verified before anything is
written. dst is then renamed to dst+--backup-suffix and the repaired
content written in its place.

Confirmation:
  interactive terminal   prompt before rewriting
  --force                rewrite after a short countdown
  --yes                  rewrite immediately
  --dry-run              search and verify only, never write

Examples:
  flywaysum repair applied/V3__orders.sql sql/V3__orders.sql
  flywaysum repair sql/V3__orders.sql --target -1209367123 --yes
  flywaysum repair sql/V3__orders.sql --from-history --connection $DATABASE_URL`,
	Args: func(cmd *cobra.Command, args []string) error {
		if repairFlags.target != "" || repairFlags.fromHistory {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runRepair,
}

type repairFlagValues struct {
	target       string
	fromHistory  bool
	script       string
	dryRun       bool
	yes, force   bool
	workers      int
	maxLength    int
	backupSuffix string
	connection   string
	schema       string
	table        string
}

var repairFlags repairFlagValues

func init() {
	rootCmd.AddCommand(repairCmd)

	repairCmd.Flags().StringVar(&repairFlags.target, "target", "",
		"Target checksum as signed decimal or 0x-prefixed hex (replaces <src>)")
	repairCmd.Flags().BoolVar(&repairFlags.fromHistory, "from-history", false,
		"Read the target checksum from flyway_schema_history (replaces <src>)")
	repairCmd.Flags().StringVar(&repairFlags.script, "script", "",
		"Script name to look up with --from-history (default: file name of dst)")
	repairCmd.MarkFlagsMutuallyExclusive("target", "from-history")

	repairCmd.Flags().BoolVar(&repairFlags.dryRun, "dry-run", false,
		"Search and verify, but do not modify any file")
	repairCmd.Flags().BoolVarP(&repairFlags.yes, "yes", "y", false,
		"Rewrite without asking")
	repairCmd.Flags().BoolVar(&repairFlags.force, "force", false,
		"Rewrite after a countdown instead of asking\n"+
			"Use in CI/CD pipelines where no terminal is attached")
	repairCmd.MarkFlagsMutuallyExclusive("yes", "force")

	repairCmd.Flags().IntVar(&repairFlags.workers, "workers", flywaysum.DefaultWorkers,
		"Concurrent search workers per comment length")
	repairCmd.Flags().IntVar(&repairFlags.maxLength, "max-length", flywaysum.DefaultMaxCommentLength,
		"Longest comment body to try, 1 to 8 characters after \"--\"")
	repairCmd.Flags().StringVar(&repairFlags.backupSuffix, "backup-suffix", flywaysum.DefaultBackupSuffix,
		"Suffix appended to dst for the backup of the original")

	repairCmd.Flags().StringVar(&repairFlags.connection, "connection", "",
		"PostgreSQL connection string for --from-history")
	repairCmd.Flags().StringVar(&repairFlags.schema, "schema", "",
		"Schema of the history table for --from-history")
	repairCmd.Flags().StringVar(&repairFlags.table, "table", "",
		"History table name for --from-history")
}

// applyRepairFlags overrides cfg with flags the user set explicitly.
func applyRepairFlags(cmd *cobra.Command, cfg *config.ProjectConfig) error {
	if cmd.Flags().Changed("workers") {
		cfg.Workers = repairFlags.workers
	}
	if cmd.Flags().Changed("max-length") {
		cfg.MaxLength = repairFlags.maxLength
	}
	if cmd.Flags().Changed("backup-suffix") {
		cfg.BackupSuffix = repairFlags.backupSuffix
	}
	return cfg.Validate()
}

func runRepair(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	out := cmd.OutOrStdout()

	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRepairFlags(cmd, cfg); err != nil {
		return err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeout)
	defer cancel()

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), verbose)
	interactive := tui.IsInteractive()

	forcer := search.NewForcer(search.Config{
		Workers:   cfg.Workers,
		MaxLength: cfg.MaxLength,
		Verbose:   verbose,
	}, logger)

	svc := repair.NewService(
		filesystem.NewOSFileSystem(),
		checksum.New(),
		newSearcher(forcer, interactive, cmd.ErrOrStderr(), logger),
		selectApprover(repairFlags.yes, repairFlags.force, interactive, verbose),
		logger,
	)

	dst := args[len(args)-1]
	target, err := resolveTarget(ctx, cmd, svc, cfg, logger, args)
	if err != nil {
		return err
	}

	current, err := svc.Checksum(dst)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Target file: %s\n", dst)
	printChecksumLine(out, "  Checksum: ", current)
	fmt.Fprintln(out)

	if current == target {
		fmt.Fprintln(out, tui.SuccessStyle.Render(tui.SymbolCheck+" All OK! Checksums match!"))
		return nil
	}

	fmt.Fprintln(out, "Checksums differ. Starting brute-force to find matching comment...")
	fmt.Fprintln(out)

	result, err := svc.Repair(ctx, dst, target, repair.Options{
		BackupSuffix: cfg.BackupSuffix,
		DryRun:       repairFlags.dryRun,
	})
	if err != nil {
		if errors.Is(err, flywaysum.ErrNotFound) {
			fmt.Fprintln(out, tui.ErrorStyle.Render(tui.SymbolCross+" Could not find printable comment within search limits"))
		}
		return err
	}
	printRepairResult(out, result)
	return nil
}

// resolveTarget returns the checksum dst must reproduce.
func resolveTarget(
	ctx context.Context,
	cmd *cobra.Command,
	svc *repair.Service,
	cfg *config.ProjectConfig,
	logger flywaysum.Logger,
	args []string,
) (flywaysum.Checksum, error) {
	out := cmd.OutOrStdout()

	switch {
	case repairFlags.target != "":
		target, err := flywaysum.ParseChecksum(repairFlags.target)
		if err != nil {
			return 0, fmt.Errorf("%w: --target: %v", flywaysum.ErrInvalidConfig, err)
		}
		printChecksumLine(out, "Target checksum: ", target)
		fmt.Fprintln(out)
		return target, nil

	case repairFlags.fromHistory:
		script := repairFlags.script
		if script == "" {
			script = filepath.Base(args[0])
		}

		var target flywaysum.Checksum
		opts := historyOptions{
			connection: repairFlags.connection,
			schema:     repairFlags.schema,
			table:      repairFlags.table,
		}
		err := withHistory(ctx, cfg, opts, logger, func(reader *db.HistoryReader) error {
			sum, err := reader.Checksum(ctx, script)
			target = sum
			return err
		})
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(out, "History script: %s\n", script)
		printChecksumLine(out, "  Checksum: ", target)
		fmt.Fprintln(out)
		return target, nil

	default:
		src := args[0]
		target, err := svc.Checksum(src)
		if err != nil {
			return 0, err
		}
		fmt.Fprintln(out, "=== Flyway Checksum Calculator ===")
		fmt.Fprintf(out, "Source file: %s\n", src)
		printChecksumLine(out, "  Checksum: ", target)
		fmt.Fprintln(out)
		return target, nil
	}
}

func printChecksumLine(out io.Writer, label string, sum flywaysum.Checksum) {
	fmt.Fprintf(out, "%s%d (%s)\n", label, sum.Int32(), sum.Hex())
}

func printRepairResult(out io.Writer, result repair.Result) {
	fmt.Fprintln(out, tui.SuccessStyle.Render(fmt.Sprintf("%s Found printable comment: '%s'", tui.SymbolCheck, result.Comment)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Verifying Solution ===")
	printChecksumLine(out, "Modified content checksum: ", result.Repaired)
	printChecksumLine(out, "Target checksum:           ", result.Target)
	fmt.Fprintln(out)

	if !result.Written {
		fmt.Fprintln(out, tui.MutedStyle.Render(fmt.Sprintf("Dry run: %s was not modified", result.Path)))
		return
	}

	fmt.Fprintf(out, "Original file backed up to: %s\n", result.BackupPath)
	fmt.Fprintf(out, "Modified file saved to: %s\n", result.Path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.SuccessStyle.Render("SUCCESS! File has been updated with matching comment."))
}
