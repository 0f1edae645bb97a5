package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/vvka-141/flywaysum/internal/checksum"
	"github.com/vvka-141/flywaysum/internal/files/filesystem"
	"github.com/vvka-141/flywaysum/internal/files/scanner"
	"github.com/vvka-141/flywaysum/internal/tui"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <path>...",
	Short: "Calculate Flyway checksums of files or migration directories",
	Long: `Checksum prints the Flyway checksum of each path.

For a file the checksum is printed as Flyway stores it (a signed 32-bit
integer) and in hexadecimal, together with the file size.

For a directory every .sql file below it is checksummed and listed with its
migration kind and version, as derived from Flyway's naming convention:
  V<version>__<description>.sql   versioned
  U<version>__<description>.sql   undo
  R__<description>.sql            repeatable

Files that cannot be read or are not valid UTF-8 are reported together after
the listing, and the command exits non-zero.

Examples:
  flywaysum checksum sql/V1__init.sql
  flywaysum checksum src/main/resources/db/migration`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChecksum,
}

func init() {
	rootCmd.AddCommand(checksumCmd)
}

func runChecksum(cmd *cobra.Command, args []string) error {
	fsProvider := filesystem.NewOSFileSystem()
	fileScanner := scanner.NewScannerWithFS(checksum.New(), fsProvider)
	out := cmd.OutOrStdout()

	var errs *multierror.Error
	for _, path := range args {
		info, err := fsProvider.Stat(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		if info.IsDir() {
			result, err := fileScanner.ScanDirectory(path)
			printScanResult(out, path, result)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			}
			continue
		}

		file, err := fileScanner.ScanFile(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		printFileChecksum(out, file)
	}
	return errs.ErrorOrNil()
}

func printFileChecksum(out io.Writer, file flywaysum.MigrationFile) {
	fmt.Fprintf(out, "Source file: %s\n", file.Path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Calculating Checksum ===")
	fmt.Fprintf(out, "Checksum (Flyway): %d\n", file.Checksum.Int32())
	fmt.Fprintf(out, "Checksum (hex): %s\n", file.Checksum.Hex())
	fmt.Fprintf(out, "File size: %d bytes\n", file.Size)
	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.SuccessStyle.Render(tui.SymbolCheck+" Checksum calculated successfully!"))
}

func printScanResult(out io.Writer, dir string, result flywaysum.ScanResult) {
	fmt.Fprintf(out, "Directory: %s\n", dir)
	if len(result.Files) == 0 {
		fmt.Fprintln(out, tui.MutedStyle.Render("No .sql files found"))
		return
	}

	rows := make([][]string, 0, len(result.Files))
	for _, f := range result.Files {
		rows = append(rows, []string{
			f.RelativePath,
			f.Kind.String(),
			f.Version,
			strconv.FormatInt(int64(f.Checksum.Int32()), 10),
			f.Checksum.Hex(),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tui.MutedStyle).
		Headers("FILE", "KIND", "VERSION", "CHECKSUM", "HEX").
		Rows(rows...)
	fmt.Fprintln(out, t.Render())
	fmt.Fprintf(out, "%d file(s)\n", len(result.Files))
}
