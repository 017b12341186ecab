package pt

import (
	"time"
)

const (
	// DefaultThumbnailMaxDimension is the longest thumbnail side used when
	// ingestion schedules a thumbnail.
	DefaultThumbnailMaxDimension = 256

	// DefaultBurstWindow is the largest gap between consecutive shots of a burst.
	DefaultBurstWindow = 10 * time.Second
)

// Options tunes the service. Zero values fall back to the defaults.
type Options struct {
	MaxNameAttempts       int
	ThumbnailMaxDimension int
	BurstWindow           time.Duration
	// GroupWorkers bounds the goroutines used to re-hash files when
	// detecting duplicates.
	GroupWorkers int
}

func (o Options) withDefaults() Options {
	if o.MaxNameAttempts <= 0 {
		o.MaxNameAttempts = DefaultMaxNameAttempts
	}
	if o.ThumbnailMaxDimension <= 0 {
		o.ThumbnailMaxDimension = DefaultThumbnailMaxDimension
	}
	if o.BurstWindow <= 0 {
		o.BurstWindow = DefaultBurstWindow
	}
	if o.GroupWorkers <= 0 {
		o.GroupWorkers = 1
	}
	return o
}

// PTService is the orchestration layer that coordinates the catalog, the
// filesystem and the thumbnail renderer to perform the library operations
// needed by the CLI.
//
// Every mutation of a photo holds that photo's lock for its whole
// filesystem-then-catalog sequence. The catalog is only updated after the
// filesystem step has succeeded.
type PTService struct {
	catalog  Catalog
	fsmgr    FilesystemManager
	layout   *Layout
	renderer ThumbnailRenderer
	pool     *TaskPool
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	rec      Recorder
	opts     Options
	locks    *keyedMutex
}

// NewPTService creates a new PTService with the provided dependencies.
// pool may be nil, in which case ingestion does not schedule thumbnails.
func NewPTService(catalog Catalog, fsmgr FilesystemManager, layout *Layout, renderer ThumbnailRenderer, pool *TaskPool, logger Logger, clock Clock, idgen IDGenerator, rec Recorder, opts Options) *PTService {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &PTService{
		catalog:  catalog,
		fsmgr:    fsmgr,
		layout:   layout,
		renderer: renderer,
		pool:     pool,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		rec:      rec,
		opts:     opts.withDefaults(),
		locks:    newKeyedMutex(),
	}
}

// Layout returns the directory layout the service manages.
func (s *PTService) Layout() *Layout {
	return s.layout
}

// BulkError pairs a photo ID with the error that stopped it.
type BulkError struct {
	ID  string
	Err error
}

func (e BulkError) Error() string {
	return e.ID + ": " + e.Err.Error()
}

// BulkResult summarises a multi-item operation. Items are processed
// independently; one failure does not undo or stop the others.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []BulkError
}

func (r *BulkResult) record(id string, err error) {
	if err != nil {
		r.Failed++
		r.Errors = append(r.Errors, BulkError{ID: id, Err: err})
		return
	}
	r.Succeeded++
}
