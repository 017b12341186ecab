package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"pictier/internal/database/migrations"
	"pictier/internal/database/sqlc"
	"pictier/internal/pt"
)

// SQLiteCatalog implements pt.Catalog using SQLite.
type SQLiteCatalog struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
}

// NewSQLiteCatalog opens a catalog at path, which can be a file path or
// ":memory:" for an in-memory database.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteCatalog{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
	}, nil
}

// NewSQLiteCatalogFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteCatalogFromDB(db *sql.DB) *SQLiteCatalog {
	return &SQLiteCatalog{
		db:      db,
		queries: sqlc.New(db),
	}
}

// connParams are applied by the driver to every connection it opens, so
// each pooled connection enforces foreign keys and waits on a busy writer.
const connParams = "_foreign_keys=on&_busy_timeout=5000"

// OpenConnection opens a SQLite database with connParams set on every
// connection. Exported for tools and tests that need the same settings.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Photo operations

func (s *SQLiteCatalog) InsertPhoto(ctx context.Context, photo *sqlc.Photo) error {
	err := s.queries.InsertPhoto(ctx, sqlc.InsertPhotoParams{
		ID:           photo.ID,
		OriginalPath: photo.OriginalPath,
		StoragePath:  photo.StoragePath,
		Tier:         photo.Tier,
		ContentHash:  photo.ContentHash,
		CreatedAt:    photo.CreatedAt,
		UpdatedAt:    photo.UpdatedAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting photo %s: %w", photo.ID, pt.ErrHashConflict)
		}
		return fmt.Errorf("inserting photo: %w", err)
	}
	return nil
}

func (s *SQLiteCatalog) FindPhoto(ctx context.Context, id string) (*sqlc.Photo, error) {
	photo, err := s.queries.GetPhotoByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding photo: %w", err)
	}
	return &photo, nil
}

func (s *SQLiteCatalog) FindActivePhoto(ctx context.Context, id string) (*sqlc.Photo, error) {
	photo, err := s.queries.GetActivePhotoByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding active photo: %w", err)
	}
	return &photo, nil
}

func (s *SQLiteCatalog) FindActivePhotoByHash(ctx context.Context, hash string) (*sqlc.Photo, error) {
	photo, err := s.queries.GetActivePhotoByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding photo by hash: %w", err)
	}
	return &photo, nil
}

func (s *SQLiteCatalog) ListActivePhotos(ctx context.Context) ([]*sqlc.Photo, error) {
	photos, err := s.queries.ListActivePhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active photos: %w", err)
	}
	return toPointers(photos), nil
}

func (s *SQLiteCatalog) ListActivePhotosByTier(ctx context.Context, tier string) ([]*sqlc.Photo, error) {
	photos, err := s.queries.ListActivePhotosByTier(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("listing photos by tier: %w", err)
	}
	return toPointers(photos), nil
}

func (s *SQLiteCatalog) ListTrashedPhotos(ctx context.Context) ([]*sqlc.Photo, error) {
	photos, err := s.queries.ListTrashedPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing trashed photos: %w", err)
	}
	return toPointers(photos), nil
}

func (s *SQLiteCatalog) CountActivePhotosByTier(ctx context.Context) (map[string]int64, error) {
	rows, err := s.queries.CountActivePhotosByTier(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting photos by tier: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Tier] = r.Count
	}
	return counts, nil
}

func (s *SQLiteCatalog) UpdatePhotoLocation(ctx context.Context, id, storagePath, tier string, updatedAt time.Time) error {
	n, err := s.queries.UpdatePhotoLocation(ctx, sqlc.UpdatePhotoLocationParams{
		StoragePath: storagePath,
		Tier:        tier,
		UpdatedAt:   updatedAt,
		ID:          id,
	})
	if err != nil {
		return fmt.Errorf("updating photo location: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating photo location: %w: %s", pt.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteCatalog) MarkPhotoDeleted(ctx context.Context, id, storagePath string, deletedAt time.Time) error {
	n, err := s.queries.MarkPhotoDeleted(ctx, sqlc.MarkPhotoDeletedParams{
		StoragePath: storagePath,
		DeletedAt:   sql.NullTime{Time: deletedAt, Valid: true},
		UpdatedAt:   deletedAt,
		ID:          id,
	})
	if err != nil {
		return fmt.Errorf("marking photo deleted: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("marking photo deleted: %w: %s", pt.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteCatalog) DeletePhoto(ctx context.Context, id string) error {
	n, err := s.queries.DeletePhotoByID(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deleting photo: %w: %s", pt.ErrNotFound, id)
	}
	return nil
}

// Operation journal

func (s *SQLiteCatalog) CreateOperation(operation string, parameters string) (*sqlc.Operation, error) {
	op, err := s.queries.InsertOperation(context.Background(), sqlc.InsertOperationParams{
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteCatalog) FinishOperation(id int64, status string) error {
	err := s.queries.UpdateOperationFinished(context.Background(), sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteCatalog) ListOperations(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.queries.GetOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}

	result := make([]*sqlc.Operation, len(ops))
	for i := range ops {
		result[i] = &ops[i]
	}
	return result, nil
}

func (s *SQLiteCatalog) MaxOperationID() (int64, error) {
	id, err := s.queries.GetMaxOperationID(context.Background())
	if err != nil {
		return 0, fmt.Errorf("getting max operation ID: %w", err)
	}
	return id, nil
}

// Maintenance

// CheckMigrations verifies the schema is at the latest migration version.
func (s *SQLiteCatalog) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate applies any pending migrations.
func (s *SQLiteCatalog) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the catalog at destPath using VACUUM INTO.
func (s *SQLiteCatalog) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteCatalog) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func toPointers(photos []sqlc.Photo) []*sqlc.Photo {
	result := make([]*sqlc.Photo, len(photos))
	for i := range photos {
		result[i] = &photos[i]
	}
	return result
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Compile-time check that SQLiteCatalog implements pt.Catalog interface
var _ pt.Catalog = (*SQLiteCatalog)(nil)
