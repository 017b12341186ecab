package testutil

import (
	"path/filepath"
	"testing"

	"pictier/internal/database"
	"pictier/internal/fs"
	"pictier/internal/pt"
	"pictier/internal/thumbnail"
)

// Env is a service wired to a real filesystem under t.TempDir() and an
// in-memory catalog. FS and Catalog wrap the real implementations so a test
// can inject failures after setup.
type Env struct {
	Service   *pt.PTService
	Catalog   *FaultyCatalog
	DB        *database.SQLiteCatalog
	FS        *FaultyFilesystem
	Layout    *pt.Layout
	Clock     *StubClock
	Logger    *RecordingLogger
	SourceDir string
}

// NewEnv builds an Env. No background pool is attached, so ingestion does
// not render thumbnails on its own.
func NewEnv(t *testing.T, opts pt.Options) *Env {
	t.Helper()
	return newEnv(t, NewTestCatalog(t), opts)
}

// NewFileEnv builds an Env over a migrated catalog file, so concurrent
// callers get separate pooled connections as in production.
func NewFileEnv(t *testing.T, opts pt.Options) *Env {
	t.Helper()
	return newEnv(t, NewFileCatalog(t), opts)
}

func newEnv(t *testing.T, db *database.SQLiteCatalog, opts pt.Options) *Env {
	t.Helper()

	root := t.TempDir()
	env := &Env{
		Catalog:   &FaultyCatalog{Catalog: db},
		DB:        db,
		FS:        &FaultyFilesystem{FilesystemManager: fs.NewOSFilesystemManager(nil)},
		Layout:    pt.NewLayout(filepath.Join(root, "library")),
		Clock:     FixedClock(),
		Logger:    &RecordingLogger{},
		SourceDir: filepath.Join(root, "source"),
	}
	if err := env.Layout.EnsureDirs(env.FS); err != nil {
		t.Fatalf("creating library layout: %v", err)
	}

	env.Service = pt.NewPTService(
		env.Catalog,
		env.FS,
		env.Layout,
		thumbnail.NewRenderer(thumbnail.DefaultJPEGQuality),
		nil,
		env.Logger,
		env.Clock,
		&SequentialIDs{},
		pt.NopRecorder{},
		opts,
	)
	return env
}

// Source returns the path of name inside the source directory.
func (e *Env) Source(name string) string {
	return filepath.Join(e.SourceDir, name)
}
