// Package filesystem abstracts the file operations used to scan migration
// directories and to rewrite scripts in place.
//
// Key interfaces:
//   - FileSystemProvider: opens directories, reads, writes and renames files
//   - Directory: a tree that can be walked
//   - File: an individual file with metadata and a content accessor
//
// Implementations:
//   - OSFileSystem: production implementation backed by the os package
//   - MemoryFileSystem: in-memory implementation for tests
package filesystem
