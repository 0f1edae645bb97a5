package flywaysum

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Checksum is a Flyway migration checksum: the CRC-32 of the normalized
// script content. Flyway stores it as a signed 32-bit integer; only the bit
// pattern is significant.
type Checksum uint32

// Int32 returns the checksum as Flyway stores it in flyway_schema_history.
func (c Checksum) Int32() int32 {
	return int32(c)
}

// Hex returns the checksum as 0x-prefixed uppercase hexadecimal.
func (c Checksum) Hex() string {
	return fmt.Sprintf("0x%X", uint32(c))
}

// String formats the checksum as "<signed decimal> (<hex>)".
func (c Checksum) String() string {
	return fmt.Sprintf("%d (%s)", c.Int32(), c.Hex())
}

// ParseChecksum parses a checksum given as a signed or unsigned 32-bit
// decimal, or as hexadecimal with a 0x prefix.
func ParseChecksum(s string) (Checksum, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty checksum")
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex checksum %q: %w", s, err)
		}
		return Checksum(v), nil
	}

	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid checksum %q: %w", s, err)
		}
		return Checksum(uint32(int32(v))), nil
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid checksum %q: %w", s, err)
	}
	return Checksum(v), nil
}

// MigrationKind classifies a SQL file by Flyway's naming convention.
type MigrationKind int

const (
	// KindScript is any .sql file that does not follow the migration naming convention.
	KindScript MigrationKind = iota
	// KindVersioned is V<version>__<description>.sql.
	KindVersioned
	// KindUndo is U<version>__<description>.sql.
	KindUndo
	// KindRepeatable is R__<description>.sql.
	KindRepeatable
)

func (k MigrationKind) String() string {
	switch k {
	case KindVersioned:
		return "versioned"
	case KindUndo:
		return "undo"
	case KindRepeatable:
		return "repeatable"
	default:
		return "script"
	}
}

// MigrationFile describes one scanned SQL file and its Flyway checksum.
type MigrationFile struct {
	Path         string
	RelativePath string
	Kind         MigrationKind
	Version      string
	Description  string
	Size         int64
	Checksum     Checksum
}

// ScanResult holds the migrations found under a directory.
type ScanResult struct {
	Files []MigrationFile
}

// HistoryEntry is one row of flyway_schema_history.
type HistoryEntry struct {
	InstalledRank int
	Version       string
	Description   string
	Script        string
	// Checksum is nil for rows without one (baselines, deletes).
	Checksum    *Checksum
	InstalledOn time.Time
	Success     bool
}

// HistoryReader reads applied migration checksums from Flyway's history table.
type HistoryReader interface {
	// Checksum returns the checksum of the latest successful application of script.
	Checksum(ctx context.Context, script string) (Checksum, error)

	// List returns all history rows ordered by installed rank.
	List(ctx context.Context) ([]HistoryEntry, error)
}
