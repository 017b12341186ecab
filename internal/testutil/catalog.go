package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pictier/internal/database"
	"pictier/internal/database/sqlc"
	"pictier/internal/pt"
)

// NewTestCatalog creates an in-memory SQLite catalog with the schema
// applied. It is closed when the test completes.
func NewTestCatalog(t *testing.T) *database.SQLiteCatalog {
	t.Helper()

	db, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("opening catalog: %v", err)
	}
	if _, err := db.Exec(database.Schema); err != nil {
		db.Close()
		t.Fatalf("applying schema: %v", err)
	}

	catalog := database.NewSQLiteCatalogFromDB(db)
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

// NewFileCatalog creates a migrated SQLite catalog file under t.TempDir().
// It is closed when the test completes.
func NewFileCatalog(t *testing.T) *database.SQLiteCatalog {
	t.Helper()

	catalog, err := database.NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("opening catalog: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })
	if err := catalog.Migrate(); err != nil {
		t.Fatalf("migrating catalog: %v", err)
	}
	return catalog
}

// FaultyCatalog wraps a catalog and fails selected writes. Nil error fields
// pass through.
type FaultyCatalog struct {
	pt.Catalog

	mu             sync.Mutex
	InsertErr      error
	UpdateErr      error
	MarkDeletedErr error
	DeleteErr      error
}

func (c *FaultyCatalog) InsertPhoto(ctx context.Context, photo *sqlc.Photo) error {
	if err := c.fault(&c.InsertErr); err != nil {
		return err
	}
	return c.Catalog.InsertPhoto(ctx, photo)
}

func (c *FaultyCatalog) UpdatePhotoLocation(ctx context.Context, id, storagePath, tier string, updatedAt time.Time) error {
	if err := c.fault(&c.UpdateErr); err != nil {
		return err
	}
	return c.Catalog.UpdatePhotoLocation(ctx, id, storagePath, tier, updatedAt)
}

func (c *FaultyCatalog) MarkPhotoDeleted(ctx context.Context, id, storagePath string, deletedAt time.Time) error {
	if err := c.fault(&c.MarkDeletedErr); err != nil {
		return err
	}
	return c.Catalog.MarkPhotoDeleted(ctx, id, storagePath, deletedAt)
}

func (c *FaultyCatalog) DeletePhoto(ctx context.Context, id string) error {
	if err := c.fault(&c.DeleteErr); err != nil {
		return err
	}
	return c.Catalog.DeletePhoto(ctx, id)
}

func (c *FaultyCatalog) fault(field *error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *field
}
