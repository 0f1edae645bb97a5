package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// memoryEntry is a file or directory node. Content is copied on the way in
// and out so callers cannot mutate stored bytes.
type memoryEntry struct {
	absPath string
	relPath string
	content []byte
	info    *memoryFileInfo
}

func (e *memoryEntry) Path() string         { return e.absPath }
func (e *memoryEntry) RelativePath() string { return e.relPath }
func (e *memoryEntry) Info() FileInfo       { return e.info }

func (e *memoryEntry) ReadContent() ([]byte, error) {
	return append([]byte(nil), e.content...), nil
}

type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	entries := d.fs.entriesUnder(d.absPath)

	for _, entry := range entries {
		if err := d.visit(fn, entry); err != nil {
			return err
		}
	}
	return nil
}

func (d *memoryDirectory) visit(fn func(File, error) error, entry *memoryEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("walk callback panicked at %s: %v", entry.absPath, r)
		}
	}()

	rel := strings.TrimPrefix(strings.TrimPrefix(entry.absPath, d.absPath), "/")
	if rel == "" {
		rel = "."
	}
	view := *entry
	view.relPath = rel
	return fn(&view, nil)
}

// MemoryFileSystem implements FileSystemProvider in memory. Relative paths
// resolve against the root given to NewMemoryFileSystem. It is safe for
// concurrent use.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	root    string
}

// NewMemoryFileSystem creates an empty filesystem containing only root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		entries: make(map[string]*memoryEntry),
		root:    root,
	}
	mfs.entries[root] = newDirEntry(root)
	return mfs
}

func newDirEntry(absPath string) *memoryEntry {
	return &memoryEntry{
		absPath: absPath,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
		},
	}
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// AddFile adds or replaces a file with mode 0644.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.put(mfs.resolve(filePath), []byte(content), 0644)
}

func (mfs *MemoryFileSystem) put(absPath string, content []byte, perm fs.FileMode) {
	mfs.entries[absPath] = &memoryEntry{
		absPath: absPath,
		content: append([]byte(nil), content...),
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    perm.Perm(),
			modTime: time.Now(),
		},
	}
	mfs.ensureParents(absPath)
}

func (mfs *MemoryFileSystem) ensureParents(p string) {
	for dir := path.Dir(p); dir != p; p, dir = dir, path.Dir(dir) {
		if _, ok := mfs.entries[dir]; ok {
			return
		}
		mfs.entries[dir] = newDirEntry(dir)
	}
}

func (mfs *MemoryFileSystem) entriesUnder(base string) []*memoryEntry {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	prefix := strings.TrimSuffix(base, "/") + "/"
	var out []*memoryEntry
	for p, e := range mfs.entries {
		if p == base || strings.HasPrefix(p, prefix) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].absPath < out[j].absPath })
	return out
}

func notExist(op, p string) error {
	return &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
}

// Open implements FileSystemProvider.Open
func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	absPath := mfs.resolve(openPath)

	mfs.mu.RLock()
	entry, ok := mfs.entries[absPath]
	mfs.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("failed to access path: %w", notExist("open", openPath))
	}
	if !entry.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", openPath)
	}
	return &memoryDirectory{absPath: absPath, fs: mfs}, nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	entry, ok := mfs.entries[mfs.resolve(filePath)]
	if !ok {
		return nil, notExist("read", filePath)
	}
	if entry.info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fmt.Errorf("is a directory")}
	}
	return entry.ReadContent()
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	entry, ok := mfs.entries[mfs.resolve(statPath)]
	if !ok {
		return nil, notExist("stat", statPath)
	}
	return entry.info, nil
}

// WriteFile implements FileSystemProvider.WriteFile
func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.resolve(filePath)
	if entry, ok := mfs.entries[absPath]; ok && entry.info.IsDir() {
		return &fs.PathError{Op: "write", Path: filePath, Err: fmt.Errorf("is a directory")}
	}
	mfs.put(absPath, data, perm)
	return nil
}

// Rename implements FileSystemProvider.Rename for files.
func (mfs *MemoryFileSystem) Rename(oldPath, newPath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	from := mfs.resolve(oldPath)
	entry, ok := mfs.entries[from]
	if !ok {
		return notExist("rename", oldPath)
	}
	if entry.info.IsDir() {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fmt.Errorf("renaming directories is not supported")}
	}

	delete(mfs.entries, from)
	mfs.put(mfs.resolve(newPath), entry.content, entry.info.mode)
	return nil
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
