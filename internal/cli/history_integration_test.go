package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/flywaysum/internal/db"
	"github.com/vvka-141/flywaysum/internal/logging"
	"github.com/vvka-141/flywaysum/internal/testinfra"
)

// seedHistory creates a Flyway history table in a fresh schema holding one
// applied migration and returns the schema name.
func seedHistory(t *testing.T, connString, script string, checksum int32) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewConnector(connString, logging.NewNullLogger()).Connect(ctx)
	require.NoError(t, err)
	defer pool.Close()

	schema := "flywaysum_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	quoted := pgx.Identifier{schema}.Sanitize()
	table := pgx.Identifier{schema, "flyway_schema_history"}.Sanitize()

	_, err = pool.Exec(ctx, "CREATE SCHEMA "+quoted)
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanup, err := db.NewConnector(connString, logging.NewNullLogger()).Connect(context.Background())
		if err != nil {
			return
		}
		defer cleanup.Close()
		_, _ = cleanup.Exec(context.Background(), "DROP SCHEMA "+quoted+" CASCADE")
	})

	_, err = pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE %s (
    installed_rank INT NOT NULL PRIMARY KEY,
    version VARCHAR(50),
    description VARCHAR(200) NOT NULL,
    type VARCHAR(20) NOT NULL,
    script VARCHAR(1000) NOT NULL,
    checksum INTEGER,
    installed_by VARCHAR(100) NOT NULL,
    installed_on TIMESTAMP NOT NULL DEFAULT now(),
    execution_time INTEGER NOT NULL,
    success BOOLEAN NOT NULL
)`, table))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s
(installed_rank, version, description, type, script, checksum, installed_by, execution_time, success)
VALUES (1, '3', 'orders', 'SQL', $1, $2, 'flyway', 5, true)`, table), script, checksum)
	require.NoError(t, err)
	return schema
}

func TestHistoryAndRepairFromHistory_Integration(t *testing.T) {
	connString := testinfra.RequireDatabase(t)

	applied, err := newTestChecksum("SELECT 1;\n--A\n")
	require.NoError(t, err)
	schema := seedHistory(t, connString, "V3__orders.sql", applied.Int32())

	t.Run("history prints the applied checksum", func(t *testing.T) {
		resetHistoryFlags()
		defer resetHistoryFlags()
		t.Chdir(t.TempDir())
		historyFlags.connection = connString
		historyFlags.schema = schema
		out, _ := captureOutput(t, historyCmd)

		require.NoError(t, runHistory(historyCmd, []string{"V3__orders.sql"}))
		assert.Contains(t, out.String(), applied.Hex())
	})

	t.Run("history lists all rows", func(t *testing.T) {
		resetHistoryFlags()
		defer resetHistoryFlags()
		t.Chdir(t.TempDir())
		historyFlags.connection = connString
		historyFlags.schema = schema
		historyFlags.all = true
		out, _ := captureOutput(t, historyCmd)

		require.NoError(t, runHistory(historyCmd, nil))
		assert.Contains(t, out.String(), "V3__orders.sql")
	})

	t.Run("repair reads its target from history", func(t *testing.T) {
		_, dst := repairFixture(t)
		for name, value := range map[string]string{
			"from-history": "true",
			"yes":          "true",
			"connection":   connString,
			"schema":       schema,
		} {
			require.NoError(t, repairCmd.Flags().Set(name, value))
		}
		out, _ := captureOutput(t, repairCmd)

		require.NoError(t, runRepair(repairCmd, []string{dst}))
		assert.Equal(t, "V3__orders.sql", filepath.Base(dst))
		assert.Contains(t, out.String(), "History script: V3__orders.sql")
		assert.Equal(t, "SELECT 1;\n--A\n", readFile(t, dst))
	})
}
