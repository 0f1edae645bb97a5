package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/flywaysum/internal/checksum"
	"github.com/vvka-141/flywaysum/internal/config"
	"github.com/vvka-141/flywaysum/internal/tui"
	"github.com/vvka-141/flywaysum/internal/ui"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// repairFixture prepares a working directory with an applied and an edited
// migration. The edited file only differs by trailing blank lines and needs
// the comment "--A".
func repairFixture(t *testing.T) (src, dst string) {
	t.Helper()
	resetRepairFlags()
	t.Cleanup(resetRepairFlags)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(tui.EnvNonInteractive, "1")

	src = filepath.Join(dir, "applied", "V3__orders.sql")
	dst = filepath.Join(dir, "sql", "V3__orders.sql")
	writeFile(t, src, "SELECT 1;\n--A\n")
	writeFile(t, dst, "SELECT 1;\n\n\n")
	require.NoError(t, repairCmd.Flags().Set("max-length", "2"))
	return src, dst
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRunRepair_RewritesWithBackup(t *testing.T) {
	src, dst := repairFixture(t)
	require.NoError(t, repairCmd.Flags().Set("yes", "true"))
	out, errOut := captureOutput(t, repairCmd)

	require.NoError(t, runRepair(repairCmd, []string{src, dst}))

	assert.Equal(t, "SELECT 1;\n--A\n", readFile(t, dst))
	assert.Equal(t, "SELECT 1;\n\n\n", readFile(t, dst+".old"))

	assert.Contains(t, out.String(), "Found printable comment: '--A'")
	assert.Contains(t, out.String(), "Original file backed up to: "+dst+".old")
	assert.Contains(t, errOut.String(), "Trying comment length: 1")
}

func TestRunRepair_AlreadyMatching(t *testing.T) {
	src, dst := repairFixture(t)
	writeFile(t, dst, readFile(t, src))
	out, _ := captureOutput(t, repairCmd)

	require.NoError(t, runRepair(repairCmd, []string{src, dst}))

	assert.Contains(t, out.String(), "All OK! Checksums match!")
	_, err := os.Stat(dst + ".old")
	assert.True(t, os.IsNotExist(err))
}

func TestRunRepair_DryRun(t *testing.T) {
	src, dst := repairFixture(t)
	require.NoError(t, repairCmd.Flags().Set("dry-run", "true"))
	out, _ := captureOutput(t, repairCmd)

	require.NoError(t, runRepair(repairCmd, []string{src, dst}))

	assert.Equal(t, "SELECT 1;\n\n\n", readFile(t, dst))
	assert.Contains(t, out.String(), "Dry run")
}

func TestRunRepair_UnattendedWithoutConsent(t *testing.T) {
	src, dst := repairFixture(t)
	captureOutput(t, repairCmd)

	err := runRepair(repairCmd, []string{src, dst})
	require.ErrorIs(t, err, flywaysum.ErrApprovalDenied)
	assert.Equal(t, flywaysum.ExitApprovalDenied, flywaysum.ExitCodeForError(err))
	assert.Equal(t, "SELECT 1;\n\n\n", readFile(t, dst))
}

func TestRunRepair_ExplicitTarget(t *testing.T) {
	_, dst := repairFixture(t)
	require.NoError(t, repairCmd.Flags().Set("yes", "true"))
	require.NoError(t, repairCmd.Flags().Set("backup-suffix", ".orig"))

	// crc32("SELECT 1;--zz")
	sum, err := newTestChecksum("SELECT 1;\n--zz\n")
	require.NoError(t, err)
	require.NoError(t, repairCmd.Flags().Set("target", sum.Hex()))
	captureOutput(t, repairCmd)

	require.NoError(t, runRepair(repairCmd, []string{dst}))
	assert.Equal(t, "SELECT 1;\n--zz\n", readFile(t, dst))
	assert.Equal(t, "SELECT 1;\n\n\n", readFile(t, dst+".orig"))
}

func TestRunRepair_NotFound(t *testing.T) {
	_, dst := repairFixture(t)
	require.NoError(t, repairCmd.Flags().Set("max-length", "1"))
	require.NoError(t, repairCmd.Flags().Set("yes", "true"))

	sum, err := newTestChecksum("SELECT 1;\n--zz\n")
	require.NoError(t, err)
	require.NoError(t, repairCmd.Flags().Set("target", sum.Hex()))
	out, _ := captureOutput(t, repairCmd)

	err = runRepair(repairCmd, []string{dst})
	require.ErrorIs(t, err, flywaysum.ErrNotFound)
	assert.Equal(t, flywaysum.ExitNotFound, flywaysum.ExitCodeForError(err))
	assert.Contains(t, out.String(), "Could not find printable comment")
	assert.Equal(t, "SELECT 1;\n\n\n", readFile(t, dst))
}

func TestRunRepair_InvalidInput(t *testing.T) {
	t.Run("bad target", func(t *testing.T) {
		_, dst := repairFixture(t)
		require.NoError(t, repairCmd.Flags().Set("target", "0xNOPE"))
		captureOutput(t, repairCmd)

		err := runRepair(repairCmd, []string{dst})
		assert.ErrorIs(t, err, flywaysum.ErrInvalidConfig)
	})

	t.Run("max length out of range", func(t *testing.T) {
		src, dst := repairFixture(t)
		require.NoError(t, repairCmd.Flags().Set("max-length", "9"))
		captureOutput(t, repairCmd)

		err := runRepair(repairCmd, []string{src, dst})
		assert.ErrorIs(t, err, flywaysum.ErrInvalidConfig)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		src, dst := repairFixture(t)
		writeFile(t, dst, "SELECT '\xff';")
		captureOutput(t, repairCmd)

		err := runRepair(repairCmd, []string{src, dst})
		assert.Equal(t, flywaysum.ExitInvalidContent, flywaysum.ExitCodeForError(err))
	})
}

func TestRunRepair_ConfigFile(t *testing.T) {
	src, dst := repairFixture(t)
	resetRepairFlags()
	require.NoError(t, repairCmd.Flags().Set("yes", "true"))
	writeFile(t, config.ConfigFileName, "workers: 2\nmax_length: 1\nbackup_suffix: .bak\n")
	captureOutput(t, repairCmd)

	require.NoError(t, runRepair(repairCmd, []string{src, dst}))
	assert.Equal(t, "SELECT 1;\n\n\n", readFile(t, dst+".bak"))
}

func TestSelectApprover(t *testing.T) {
	assert.IsType(t, ui.AutoApprover{}, selectApprover(true, false, true, false))
	assert.IsType(t, &ui.ForcedApprover{}, selectApprover(false, true, false, false))
	assert.IsType(t, &ui.InteractiveApprover{}, selectApprover(false, false, true, false))
	assert.IsType(t, unattendedApprover{}, selectApprover(false, false, false, false))
}

func newTestChecksum(content string) (flywaysum.Checksum, error) {
	return checksum.New().CalculateString(content)
}
