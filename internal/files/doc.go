// Package files groups the file handling used by flywaysum.
//
// Sub-packages:
//   - filesystem: filesystem abstraction with OS and in-memory implementations
//   - scanner: Flyway migration discovery and checksum calculation
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/flywaysum/internal/checksum"
//	    "github.com/vvka-141/flywaysum/internal/files/scanner"
//	)
//
//	fileScanner := scanner.NewScanner(checksum.New())
//	result, err := fileScanner.ScanDirectory("./src/main/resources/db/migration")
package files
