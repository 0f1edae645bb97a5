package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo so callers can use either interchangeably.
type FileInfo = fs.FileInfo

// File is an individual file discovered during a walk.
type File interface {
	// Path returns the absolute path to the file
	Path() string

	// RelativePath returns the slash-separated path relative to the walked root
	RelativePath() string

	// Info returns file metadata
	Info() FileInfo

	// ReadContent returns the file's raw bytes
	ReadContent() ([]byte, error)
}

// Directory is a directory tree that can be traversed.
type Directory interface {
	// Path returns the absolute path to the directory
	Path() string

	// Walk visits every file and directory below Path in lexical order.
	// Walking stops at the first error returned by fn. A panic inside fn is
	// converted to an error.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider is the set of operations the scanner and the repair
// orchestrator need. Missing paths are reported with errors wrapping
// fs.ErrNotExist.
type FileSystemProvider interface {
	// Open opens a directory for walking
	Open(path string) (Directory, error)

	// ReadFile reads the full contents of a file
	ReadFile(path string) ([]byte, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)

	// WriteFile creates or truncates the file at path
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Rename moves oldPath to newPath, replacing newPath if it exists
	Rename(oldPath, newPath string) error
}
