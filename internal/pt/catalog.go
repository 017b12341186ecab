package pt

import (
	"context"
	"time"

	"pictier/internal/database/sqlc"
)

// Catalog is the system of record for photos. Lookups that find nothing
// return (nil, nil). Every list method excludes soft-deleted rows except
// ListTrashedPhotos.
type Catalog interface {
	// Photo operations

	// InsertPhoto inserts a new photo row. It fails if an active row with
	// the same content hash already exists.
	InsertPhoto(ctx context.Context, photo *sqlc.Photo) error

	// FindPhoto returns a photo by ID regardless of its trash state.
	FindPhoto(ctx context.Context, id string) (*sqlc.Photo, error)

	// FindActivePhoto returns a photo by ID only if it is not soft-deleted.
	FindActivePhoto(ctx context.Context, id string) (*sqlc.Photo, error)

	// FindActivePhotoByHash returns the active photo with the given content hash.
	FindActivePhotoByHash(ctx context.Context, hash string) (*sqlc.Photo, error)

	// ListActivePhotos returns every active photo ordered by creation time.
	ListActivePhotos(ctx context.Context) ([]*sqlc.Photo, error)

	// ListActivePhotosByTier returns active photos in a single tier.
	ListActivePhotosByTier(ctx context.Context, tier string) ([]*sqlc.Photo, error)

	// ListTrashedPhotos returns soft-deleted photos ordered by deletion time.
	ListTrashedPhotos(ctx context.Context) ([]*sqlc.Photo, error)

	// CountActivePhotosByTier returns active row counts keyed by tier name.
	CountActivePhotosByTier(ctx context.Context) (map[string]int64, error)

	// UpdatePhotoLocation records a completed move between tiers.
	UpdatePhotoLocation(ctx context.Context, id, storagePath, tier string, updatedAt time.Time) error

	// MarkPhotoDeleted records a completed move into the trash.
	MarkPhotoDeleted(ctx context.Context, id, storagePath string, deletedAt time.Time) error

	// DeletePhoto removes the row entirely.
	DeletePhoto(ctx context.Context, id string) error

	// Operation journal

	// CreateOperation records the start of a mutating CLI command.
	CreateOperation(operation, parameters string) (*sqlc.Operation, error)

	// FinishOperation stamps an operation with its end time and status.
	FinishOperation(id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*sqlc.Operation, error)

	// MaxOperationID returns the highest operation ID, or 0.
	MaxOperationID() (int64, error)

	// Close closes the catalog.
	Close() error
}
