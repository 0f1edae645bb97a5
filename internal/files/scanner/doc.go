// Package scanner discovers SQL migrations in a directory tree and computes
// their Flyway checksums.
//
// File names are classified by Flyway's convention: V<version>__<desc>.sql
// for versioned migrations, U<version>__<desc>.sql for undo migrations and
// R__<desc>.sql for repeatable ones. Any other .sql file is reported as a
// plain script. Files that cannot be read or are not valid UTF-8 do not stop
// the scan; their errors are returned together once the walk finishes.
package scanner
