package testutil

import (
	"io"
	"sync"

	"pictier/internal/pt"
)

// FaultyFilesystem wraps a filesystem manager and lets a test fail moves,
// copies, removals or atomic writes on demand. A nil hook passes through.
type FaultyFilesystem struct {
	pt.FilesystemManager

	mu         sync.Mutex
	MoveFunc   func(src, dst string) error
	CopyFunc   func(src, dst string) error
	RemoveFunc func(path string) error
	WriteFunc  func(path string) error
	moves      [][2]string
}

func (f *FaultyFilesystem) Move(src, dst string) error {
	f.mu.Lock()
	f.moves = append(f.moves, [2]string{src, dst})
	hook := f.MoveFunc
	f.mu.Unlock()

	if hook != nil {
		if err := hook(src, dst); err != nil {
			return err
		}
	}
	return f.FilesystemManager.Move(src, dst)
}

func (f *FaultyFilesystem) CopyNew(src, dst string) (int64, error) {
	f.mu.Lock()
	hook := f.CopyFunc
	f.mu.Unlock()

	if hook != nil {
		if err := hook(src, dst); err != nil {
			return 0, err
		}
	}
	return f.FilesystemManager.CopyNew(src, dst)
}

func (f *FaultyFilesystem) Remove(path string) error {
	f.mu.Lock()
	hook := f.RemoveFunc
	f.mu.Unlock()

	if hook != nil {
		if err := hook(path); err != nil {
			return err
		}
	}
	return f.FilesystemManager.Remove(path)
}

func (f *FaultyFilesystem) WriteAtomic(path string, fn func(w io.Writer) error) error {
	f.mu.Lock()
	hook := f.WriteFunc
	f.mu.Unlock()

	if hook != nil {
		if err := hook(path); err != nil {
			return err
		}
	}
	return f.FilesystemManager.WriteAtomic(path, fn)
}

// Moves returns every (src, dst) pair passed to Move, including failed ones.
func (f *FaultyFilesystem) Moves() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]string, len(f.moves))
	copy(out, f.moves)
	return out
}
