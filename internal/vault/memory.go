package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"pictier/internal/pt"
)

// MemoryVault keeps snapshots in memory. It is safe for concurrent use.
type MemoryVault struct {
	name      string
	mu        sync.RWMutex
	snapshots map[string][]byte // libraryID -> snapshot
	versions  map[string]int64  // libraryID -> version
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string][]byte),
		versions:  make(map[string]int64),
	}
}

func (m *MemoryVault) PutSnapshot(libraryID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[libraryID] = data
	m.versions[libraryID] = version
	return nil
}

func (m *MemoryVault) GetSnapshot(libraryID string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.snapshots[libraryID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, libraryID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (m *MemoryVault) GetSnapshotVersion(libraryID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[libraryID], nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

var _ pt.Vault = (*MemoryVault)(nil)
