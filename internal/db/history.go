package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

const pgUndefinedTable = "42P01"

// Querier is the subset of *pgxpool.Pool and pgx.Conn used to read history.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// HistoryReader reads Flyway's schema history table.
type HistoryReader struct {
	q     Querier
	table string
}

// NewHistoryReader returns a reader for schema.table. Both identifiers are
// quoted, so they are matched case-sensitively.
func NewHistoryReader(q Querier, schema, table string) (*HistoryReader, error) {
	if q == nil {
		panic("querier cannot be nil")
	}
	if schema == "" || table == "" {
		return nil, fmt.Errorf("%w: history schema and table must not be empty", flywaysum.ErrInvalidConfig)
	}
	return &HistoryReader{q: q, table: pgx.Identifier{schema, table}.Sanitize()}, nil
}

// Checksum returns the checksum recorded by the most recent successful
// application of script.
func (r *HistoryReader) Checksum(ctx context.Context, script string) (flywaysum.Checksum, error) {
	query := fmt.Sprintf(`SELECT checksum FROM %s
WHERE script = $1 AND success
ORDER BY installed_rank DESC
LIMIT 1`, r.table)

	var sum *int32
	if err := r.q.QueryRow(ctx, query, script).Scan(&sum); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: no successful entry for %q in %s", flywaysum.ErrHistoryNotFound, script, r.table)
		}
		return 0, r.wrap(err)
	}
	if sum == nil {
		return 0, fmt.Errorf("%w: entry for %q in %s has no checksum", flywaysum.ErrHistoryNotFound, script, r.table)
	}
	return flywaysum.Checksum(uint32(*sum)), nil
}

// List returns every history row ordered by installed rank.
func (r *HistoryReader) List(ctx context.Context) ([]flywaysum.HistoryEntry, error) {
	query := fmt.Sprintf(`SELECT installed_rank, version, description, script, checksum, installed_on, success
FROM %s
ORDER BY installed_rank`, r.table)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, r.wrap(err)
	}

	entries, err := pgx.CollectRows(rows, scanHistoryEntry)
	if err != nil {
		return nil, r.wrap(err)
	}
	return entries, nil
}

func scanHistoryEntry(row pgx.CollectableRow) (flywaysum.HistoryEntry, error) {
	var (
		e           flywaysum.HistoryEntry
		version     *string
		sum         *int32
		installedOn time.Time
	)
	if err := row.Scan(&e.InstalledRank, &version, &e.Description, &e.Script, &sum, &installedOn, &e.Success); err != nil {
		return e, err
	}
	if version != nil {
		e.Version = *version
	}
	if sum != nil {
		c := flywaysum.Checksum(uint32(*sum))
		e.Checksum = &c
	}
	e.InstalledOn = installedOn
	return e, nil
}

func (r *HistoryReader) wrap(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%w: table %s does not exist", flywaysum.ErrHistoryNotFound, r.table)
	}
	return fmt.Errorf("failed to read %s: %w", r.table, err)
}

var _ flywaysum.HistoryReader = (*HistoryReader)(nil)
