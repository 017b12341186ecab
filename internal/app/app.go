package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"pictier/internal/config"
	"pictier/internal/database"
	"pictier/internal/database/sqlc"
	"pictier/internal/encryption"
	"pictier/internal/fs"
	"pictier/internal/metrics"
	"pictier/internal/pt"
	"pictier/internal/thumbnail"
	"pictier/internal/vault"
	"pictier/internal/workers"
)

// PTApp is the application layer between the CLI and PTService.
// It constructs all dependencies from config, journals the command being
// run, and on Close waits for background work, snapshots the catalog to
// the vault and exports metrics.
type PTApp struct {
	cfg       *config.Config
	catalog   *database.SQLiteCatalog
	vault     pt.Vault     // nil when no vault is configured
	encryptor pt.Encryptor // nil when snapshots are stored as-is
	pool      *pt.TaskPool
	metrics   *metrics.Recorder
	service   *pt.PTService
	logger    pt.Logger
	op        *Operation
	logFile   *os.File
}

// NewPTApp creates a fully wired PTApp from the given config.
// operation names the CLI command being run and args are recorded with it.
// The caller must call Close when done.
func NewPTApp(ctx context.Context, cfg *config.Config, operation string, args []string) (*PTApp, error) {
	return newPTApp(ctx, cfg, operation, args, os.Stderr)
}

func newPTApp(ctx context.Context, cfg *config.Config, operation string, args []string, stderr io.Writer) (*PTApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, cfg.LogLevel, opID, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &PTApp{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		op:      NewOperation(operation, args),
		metrics: metrics.NewRecorder(),
	}
	if err := a.wire(ctx); err != nil {
		a.abort()
		return nil, err
	}
	return a, nil
}

func (a *PTApp) wire(ctx context.Context) error {
	cfg := a.cfg
	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	layout := pt.NewLayout(cfg.Library.DataRoot)
	if err := layout.EnsureDirs(fsmgr); err != nil {
		return fmt.Errorf("preparing library: %w", err)
	}

	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	a.catalog = catalog

	if err := catalog.CheckMigrations(); err != nil {
		return fmt.Errorf("catalog schema out of date (run `pictier db migrate`): %w", err)
	}

	if len(cfg.Vaults) > 0 {
		v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			return fmt.Errorf("creating vault: %w", err)
		}
		if err := checkSnapshotVersion(v, catalog, cfg.LibraryID); err != nil {
			return err
		}
		a.vault = v
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc != nil && !enc.IsConfigured() {
		return fmt.Errorf("encryption keys missing (run `pictier config encryption init`)")
	}
	a.encryptor = enc

	a.pool = pt.NewTaskPool(
		workers.ForCPU(cfg.Thumbnails.Workers),
		cfg.Thumbnails.QueueSize,
		a.logger,
		a.metrics,
	)

	a.service = pt.NewPTService(
		catalog,
		fsmgr,
		layout,
		thumbnail.NewRenderer(cfg.Thumbnails.JPEGQuality),
		a.pool,
		a.logger,
		pt.RealClock{},
		pt.UUIDGenerator{},
		a.metrics,
		pt.Options{
			MaxNameAttempts:       cfg.Library.MaxNameAttempts,
			ThumbnailMaxDimension: cfg.Thumbnails.MaxDimension,
			BurstWindow:           time.Duration(cfg.Grouping.BurstWindowSeconds) * time.Second,
			GroupWorkers:          workers.ForCPU(cfg.Grouping.Workers),
		},
	)
	return nil
}

// openCatalog opens the configured catalog, creating its directory.
func openCatalog(cfg *config.Config) (*database.SQLiteCatalog, error) {
	if cfg.Database.Type == "sqlite" && cfg.Database.DataDir != "" {
		if err := os.MkdirAll(cfg.Database.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	catalog, err := database.NewCatalogFromConfig(cfg.Database, cfg.LibraryID)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	return catalog, nil
}

// checkSnapshotVersion refuses to run against a catalog older than the
// vault's snapshot; writing to it would overwrite newer history.
func checkSnapshotVersion(v pt.Vault, catalog *database.SQLiteCatalog, libraryID string) error {
	remote, err := v.GetSnapshotVersion(libraryID)
	if err != nil {
		return fmt.Errorf("checking remote snapshot version: %w", err)
	}
	local, err := catalog.MaxOperationID()
	if err != nil {
		return fmt.Errorf("checking local catalog version: %w", err)
	}
	if remote > local {
		return fmt.Errorf("local catalog is behind vault snapshot (local=%d, remote=%d): run `pictier catalog pull`", local, remote)
	}
	return nil
}

// abort releases whatever wire managed to open.
func (a *PTApp) abort() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.catalog != nil {
		a.catalog.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// persistOperation records the operation in the catalog, giving it an ID.
// Only commands that mutate the library call it.
func (a *PTApp) persistOperation() error {
	if a.op.Persisted() {
		return nil
	}
	row, err := a.catalog.CreateOperation(a.op.Name, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	a.op.ID = row.ID
	return nil
}

// track marks the operation failed when err is set or any item failed.
func (a *PTApp) track(err error, failed int) {
	if err != nil || failed > 0 {
		a.op.Fail()
	}
}

// Ingest brings a single file into the intake tier.
func (a *PTApp) Ingest(ctx context.Context, path string) (*pt.IngestResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	res, err := a.service.Ingest(ctx, path)
	a.track(err, 0)
	return res, err
}

// IngestTree ingests every file under dir.
func (a *PTApp) IngestTree(ctx context.Context, dir string, recursive bool) (*pt.IngestTreeResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	res, err := a.service.IngestTree(ctx, dir, recursive)
	failed := 0
	if res != nil {
		failed = res.Failed
	}
	a.track(err, failed)
	return res, err
}

// Promote moves each photo to tier.
func (a *PTApp) Promote(ctx context.Context, tier string, ids []string) (*pt.BulkResult, error) {
	if _, err := pt.ParseTier(tier); err != nil {
		return nil, err
	}
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	res, err := a.service.PromoteMany(ctx, ids, tier)
	a.trackBulk(res, err)
	return res, err
}

// Delete trashes each photo, or removes it outright when permanent is set.
func (a *PTApp) Delete(ctx context.Context, ids []string, permanent bool) (*pt.BulkResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	res, err := a.service.DeleteMany(ctx, ids, permanent)
	a.trackBulk(res, err)
	return res, err
}

// PurgeTrash permanently removes everything in the trash.
func (a *PTApp) PurgeTrash(ctx context.Context) (*pt.BulkResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	res, err := a.service.PurgeTrash(ctx)
	a.trackBulk(res, err)
	return res, err
}

func (a *PTApp) trackBulk(res *pt.BulkResult, err error) {
	failed := 0
	if res != nil {
		failed = res.Failed
	}
	a.track(err, failed)
}

// Thumbnail returns a cached thumbnail path for a photo, rendering it if
// missing or stale. A size of 0 uses the configured dimension.
func (a *PTApp) Thumbnail(ctx context.Context, id string, size int) (string, error) {
	if size == 0 {
		size = a.cfg.Thumbnails.MaxDimension
	}
	if size == 0 {
		size = pt.DefaultThumbnailMaxDimension
	}
	return a.service.CachedThumbnail(ctx, id, size)
}

// Duplicates lists groups of active photos with identical content.
func (a *PTApp) Duplicates(ctx context.Context) ([]*pt.DuplicateGroup, error) {
	return a.service.DetectDuplicates(ctx)
}

// Bursts lists groups of photos taken in quick succession.
func (a *PTApp) Bursts(ctx context.Context) ([]*pt.BurstGroup, error) {
	return a.service.DetectBursts(ctx)
}

func (a *PTApp) List(ctx context.Context, opts pt.ListOptions) ([]*sqlc.Photo, error) {
	return a.service.List(ctx, opts)
}

func (a *PTApp) Show(ctx context.Context, id string) (*sqlc.Photo, error) {
	return a.service.Get(ctx, id)
}

func (a *PTApp) Status(ctx context.Context) (*pt.LibraryStatus, error) {
	return a.service.Status(ctx)
}

// GetHistory returns the most recent operations, newest first.
func (a *PTApp) GetHistory(limit int) ([]*sqlc.Operation, error) {
	return a.service.GetHistory(limit)
}

// Close finalizes the operation and releases all resources.
// Queued thumbnails finish first. For persisted operations the operation
// is closed out and a catalog snapshot, versioned by operation ID, is
// uploaded to the vault.
func (a *PTApp) Close() error {
	var errs []error

	a.pool.Close()

	if status, err := a.service.Status(context.Background()); err == nil {
		a.metrics.ObserveStatus(status)
	} else {
		a.logger.Warn("collecting library status for metrics", "error", err)
	}

	var snapshot string
	if a.op.Persisted() {
		if err := a.catalog.FinishOperation(a.op.ID, a.op.Status); err != nil {
			errs = append(errs, fmt.Errorf("finishing operation: %w", err))
		}
		if a.vault != nil {
			path, err := a.snapshotCatalog()
			if err != nil {
				errs = append(errs, err)
			}
			snapshot = path
		}
	}

	if err := a.catalog.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing catalog: %w", err))
	}

	if snapshot != "" {
		if err := a.uploadSnapshot(snapshot, a.op.ID); err != nil {
			errs = append(errs, err)
		} else {
			a.logger.Info("catalog snapshot uploaded", "version", a.op.ID)
		}
		os.RemoveAll(filepath.Dir(snapshot))
	}

	if path := a.cfg.Metrics.TextfilePath; path != "" {
		if err := a.metrics.WriteTextfile(path, time.Now()); err != nil {
			errs = append(errs, err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return errors.Join(errs...)
}

// snapshotCatalog copies the catalog into a fresh temp directory and
// returns the copy's path.
func (a *PTApp) snapshotCatalog() (string, error) {
	dir, err := os.MkdirTemp("", "pictier-snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}
	path := filepath.Join(dir, "catalog.db")
	if err := a.catalog.BackupTo(path); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("snapshotting catalog: %w", err)
	}
	return path, nil
}

// uploadSnapshot sends the snapshot at path to the vault, encrypting it
// first when an encryptor is configured.
func (a *PTApp) uploadSnapshot(path string, version int64) error {
	if a.encryptor != nil {
		sealed := path + ".age"
		if err := encryptFile(a.encryptor, path, sealed); err != nil {
			return err
		}
		path = sealed
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}
	if err := a.vault.PutSnapshot(a.cfg.LibraryID, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	return nil
}

func encryptFile(enc pt.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing encrypted snapshot: %w", err)
	}
	return nil
}
