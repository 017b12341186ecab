package database

import (
	"fmt"
	"path/filepath"

	"pictier/internal/config"
)

// NewCatalogFromConfig creates a catalog based on the database config type.
// In-memory catalogs are migrated immediately since nothing else could.
func NewCatalogFromConfig(cfg config.DatabaseConfig, libraryID string) (*SQLiteCatalog, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		return NewSQLiteCatalog(CatalogPath(cfg, libraryID))
	case "memory":
		c, err := NewSQLiteCatalog(":memory:")
		if err != nil {
			return nil, err
		}
		if err := c.Migrate(); err != nil {
			c.Close()
			return nil, fmt.Errorf("migrating in-memory catalog: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// CatalogPath is the SQLite file used for a library.
func CatalogPath(cfg config.DatabaseConfig, libraryID string) string {
	return filepath.Join(cfg.DataDir, libraryID+".db")
}
