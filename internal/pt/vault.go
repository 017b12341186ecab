package pt

import "io"

// Vault stores catalog snapshots off the library machine. Snapshots are
// streamed so a large catalog never has to fit in memory.
type Vault interface {
	// PutSnapshot stores the catalog snapshot for a library.
	// size is the number of bytes that will be read from r.
	// version is stored alongside the snapshot for consistency checks.
	PutSnapshot(libraryID string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the latest catalog snapshot for a library to w.
	GetSnapshot(libraryID string, w io.Writer) error

	// GetSnapshotVersion returns the stored snapshot version.
	// Returns 0 if no snapshot has been stored for this library.
	GetSnapshotVersion(libraryID string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
