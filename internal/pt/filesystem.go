package pt

import (
	"io"
	"io/fs"
)

// FilesystemManager abstracts every file operation the core performs so that
// tests can inject failures without touching the catalog code paths.
// Paths are absolute strings.
type FilesystemManager interface {
	// Resolve converts a raw path to an absolute path and validates that it
	// is a regular file or directory (not a symlink, device, pipe or socket).
	Resolve(rawPath string) (string, fs.FileInfo, error)

	// Open opens a regular file for streaming reads.
	Open(path string) (io.ReadCloser, error)

	// Stat returns fresh file info for a path.
	Stat(path string) (fs.FileInfo, error)

	// Exists reports whether anything is present at path.
	Exists(path string) (bool, error)

	// MkdirAll creates a directory and its parents. Pre-existence is not an error.
	MkdirAll(path string) error

	// CopyNew copies src to dst, creating dst exclusively. It fails if dst
	// already exists and removes a partially written dst on any failure.
	// Returns the number of bytes copied.
	CopyNew(src, dst string) (int64, error)

	// Move relocates src to dst without ever replacing an existing dst.
	// On a single volume the move is atomic; across volumes the file is fully
	// copied into place before src is removed. On error src is left intact.
	Move(src, dst string) error

	// Remove deletes a single file. A missing file yields an error wrapping fs.ErrNotExist.
	Remove(path string) error

	// WriteAtomic writes path by streaming into a temp file in the same
	// directory and renaming it over path once fn succeeds.
	WriteAtomic(path string, fn func(w io.Writer) error) error

	// Glob returns the paths matching pattern (filepath.Match syntax).
	Glob(pattern string) ([]string, error)

	// FindFiles lists regular files under dir, descending when recursive is true.
	FindFiles(dir string, recursive bool) ([]string, error)

	// IsIgnored reports whether path matches an ignore pattern relative to root.
	IsIgnored(path string, root string) (bool, error)
}
