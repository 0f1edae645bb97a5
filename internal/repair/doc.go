// Package repair rewrites a migration so its Flyway checksum matches a target.
//
// The repaired file is the original content with trailing newlines trimmed,
// followed by a newline, a "--" comment found by the search, and a final
// newline. The result is re-checksummed before anything is written, and the
// original file is kept next to it under a backup suffix.
package repair
