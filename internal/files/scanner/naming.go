package scanner

import (
	"path"
	"strings"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

const (
	sqlSuffix          = ".sql"
	migrationSeparator = "__"
)

// ParseName classifies a file name. Version underscores become dots and
// description underscores become spaces, as Flyway displays them.
func ParseName(name string) (kind flywaysum.MigrationKind, version, description string) {
	base := path.Base(name)
	if !IsSQLFile(base) {
		return flywaysum.KindScript, "", ""
	}
	stem := base[:len(base)-len(sqlSuffix)]

	if len(stem) < 1 {
		return flywaysum.KindScript, "", ""
	}
	prefix, rest := stem[0], stem[1:]

	head, desc, ok := strings.Cut(rest, migrationSeparator)
	if !ok {
		return flywaysum.KindScript, "", ""
	}
	description = strings.ReplaceAll(desc, "_", " ")

	switch prefix {
	case 'R':
		if head != "" {
			return flywaysum.KindScript, "", ""
		}
		return flywaysum.KindRepeatable, "", description
	case 'V', 'U':
		if !validVersion(head) {
			return flywaysum.KindScript, "", ""
		}
		version = strings.ReplaceAll(head, "_", ".")
		if prefix == 'U' {
			return flywaysum.KindUndo, version, description
		}
		return flywaysum.KindVersioned, version, description
	default:
		return flywaysum.KindScript, "", ""
	}
}

// validVersion accepts digits separated by single dots or underscores.
func validVersion(v string) bool {
	if v == "" {
		return false
	}
	prevSep := true
	for i := 0; i < len(v); i++ {
		switch c := v[i]; {
		case c >= '0' && c <= '9':
			prevSep = false
		case c == '.' || c == '_':
			if prevSep {
				return false
			}
			prevSep = true
		default:
			return false
		}
	}
	return !prevSep
}

// IsSQLFile reports whether name has a .sql extension, ignoring case.
func IsSQLFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), sqlSuffix)
}
