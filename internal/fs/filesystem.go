package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"pictier/internal/pt"
)

// OSFilesystemManager is the real filesystem implementation of pt.FilesystemManager.
type OSFilesystemManager struct {
	ignorePatterns []string
}

// NewOSFilesystemManager creates a filesystem manager on the real filesystem.
// ignorePatterns are applied on top of the defaults and any ignore file
// found at an ingestion root.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignorePatterns: ignorePatterns}
}

// Resolve converts rawPath to an absolute path and rejects special files.
func (m *OSFilesystemManager) Resolve(rawPath string) (string, fs.FileInfo, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return "", nil, fmt.Errorf("symlinks not supported: %s", absPath)
	case mode&os.ModeDevice != 0:
		return "", nil, fmt.Errorf("device files not supported: %s", absPath)
	case mode&os.ModeNamedPipe != 0:
		return "", nil, fmt.Errorf("named pipes not supported: %s", absPath)
	case mode&os.ModeSocket != 0:
		return "", nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return absPath, info, nil
}

// Open opens a regular file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path)
	}
	return os.Open(path)
}

// Stat returns fresh file info for a path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether anything, including a dangling symlink, is at path.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// MkdirAll creates path and its parents.
func (m *OSFilesystemManager) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// CopyNew copies src to a newly created dst and carries over the source
// modification time. dst is removed if anything fails after it was created.
func (m *OSFilesystemManager) CopyNew(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chtimes(dst, info.ModTime(), info.ModTime())
	}
	if err != nil {
		os.Remove(dst)
		return 0, err
	}
	return n, nil
}

// Move relocates src to dst without replacing an existing dst.
//
// On one volume the file is hard-linked into place and the source unlinked,
// so dst either appears complete or not at all. Across volumes the bytes are
// copied to a temp file beside dst, synced and linked into place before src
// is removed. Filesystems without hard links fall back to rename after
// checking dst is free.
func (m *OSFilesystemManager) Move(src, dst string) error {
	err := os.Link(src, dst)
	switch {
	case err == nil:
		if err := os.Remove(src); err != nil {
			os.Remove(dst)
			return fmt.Errorf("removing source after link: %w", err)
		}
		return nil
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("destination exists: %w", err)
	case errors.Is(err, fs.ErrNotExist):
		return err
	case errors.Is(err, syscall.EXDEV):
		return m.moveAcrossVolumes(src, dst)
	}

	exists, statErr := m.Exists(dst)
	if statErr != nil {
		return statErr
	}
	if exists {
		return fmt.Errorf("destination exists: %s: %w", dst, fs.ErrExist)
	}
	return os.Rename(src, dst)
}

func (m *OSFilesystemManager) moveAcrossVolumes(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".pictier-move-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmp, in)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("copying across volumes: %w", err)
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		return err
	}

	if err := os.Link(tmpPath, dst); err != nil {
		return fmt.Errorf("placing file: %w", err)
	}
	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return fmt.Errorf("removing source after copy: %w", err)
	}
	return nil
}

// Remove deletes a single file.
func (m *OSFilesystemManager) Remove(path string) error {
	return os.Remove(path)
}

// WriteAtomic streams fn's output into a temp file beside path and renames
// it over path once fn and the sync succeed.
func (m *OSFilesystemManager) WriteAtomic(path string, fn func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pictier-write-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	err = fn(tmp)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Glob returns paths matching pattern.
func (m *OSFilesystemManager) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// FindFiles lists regular files under dir in lexical order.
func (m *OSFilesystemManager) FindFiles(dir string, recursive bool) ([]string, error) {
	var paths []string

	if recursive {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking directory: %w", err)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// IsIgnored checks path against the default patterns, the configured
// patterns and the ignore file at root.
func (m *OSFilesystemManager) IsIgnored(path string, root string) (bool, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false, fmt.Errorf("computing relative path: %w", err)
	}

	filePatterns, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return false, err
	}

	all := make([]string, 0, len(defaultIgnorePatterns)+len(m.ignorePatterns)+len(filePatterns))
	all = append(all, defaultIgnorePatterns...)
	all = append(all, m.ignorePatterns...)
	all = append(all, filePatterns...)

	return NewIgnoreMatcher(all).Match(rel), nil
}

// Compile-time check that OSFilesystemManager implements pt.FilesystemManager interface
var _ pt.FilesystemManager = (*OSFilesystemManager)(nil)
