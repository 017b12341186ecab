// Package vault stores catalog snapshots away from the library: in memory
// for tests, on a mounted filesystem, or in S3.
package vault

import "errors"

// ErrSnapshotNotFound is returned by GetSnapshot when no snapshot has been
// stored for a library.
var ErrSnapshotNotFound = errors.New("snapshot not found")
