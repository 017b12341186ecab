package pt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"pictier/internal/database/sqlc"
)

// IngestResult is the outcome of a single ingestion. A duplicate is a
// normal result: Photo is then the existing row and nothing was copied.
type IngestResult struct {
	Photo     *sqlc.Photo
	Duplicate bool
}

// Ingest brings the file at sourcePath into the intake tier. Content is
// identified by hash; if an active photo already has the same content the
// existing row is returned and the library is left untouched.
func (s *PTService) Ingest(ctx context.Context, sourcePath string) (*IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, info, err := s.fsmgr.Resolve(sourcePath)
	if err != nil {
		return nil, ioErr("resolve", sourcePath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", src)
	}

	digest, err := HashFile(s.fsmgr, src)
	if err != nil {
		s.rec.Failed("ingest")
		return nil, err
	}

	unlock := s.locks.Lock(hashKey(digest))
	defer unlock()

	existing, err := s.catalog.FindActivePhotoByHash(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("checking for existing content: %w", err)
	}
	if existing != nil {
		s.logger.Info("duplicate content skipped", "path", src, "id", existing.ID)
		s.rec.Ingested(true)
		return &IngestResult{Photo: existing, Duplicate: true}, nil
	}

	dst, err := s.copyIntoTier(src, TierIntake)
	if err != nil {
		s.rec.Failed("ingest")
		return nil, err
	}

	now := s.clock.Now()
	photo := &sqlc.Photo{
		ID:           s.idgen.New(),
		OriginalPath: src,
		StoragePath:  dst,
		Tier:         string(TierIntake),
		ContentHash:  digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.catalog.InsertPhoto(ctx, photo); err != nil {
		if rmErr := s.fsmgr.Remove(dst); rmErr != nil {
			s.logger.Warn("removing orphaned copy", "path", dst, "error", rmErr)
		}
		if errors.Is(err, ErrHashConflict) {
			winner, findErr := s.catalog.FindActivePhotoByHash(ctx, digest)
			if findErr == nil && winner != nil {
				s.rec.Ingested(true)
				return &IngestResult{Photo: winner, Duplicate: true}, nil
			}
		}
		s.rec.Failed("ingest")
		return nil, fmt.Errorf("recording photo: %w", err)
	}

	s.logger.Info("photo ingested", "id", photo.ID, "path", dst)
	s.rec.Ingested(false)
	s.scheduleThumbnail(photo.ID)
	return &IngestResult{Photo: photo}, nil
}

// copyIntoTier copies src under the tier directory using a collision-free
// name. The target directory is locked while the name is chosen and the
// file created.
func (s *PTService) copyIntoTier(src string, tier Tier) (string, error) {
	dir := s.layout.DirFor(tier)
	if err := s.fsmgr.MkdirAll(dir); err != nil {
		return "", ioErr("mkdir", dir, err)
	}

	unlock := s.locks.Lock(dirKey(dir))
	defer unlock()

	dst, ok, err := AllocatePath(s.fsmgr, dir, filepath.Base(src), s.opts.MaxNameAttempts)
	if err != nil {
		return "", err
	}
	if !ok {
		s.logger.Warn("no free name found, falling back to original name", "dir", dir, "name", filepath.Base(src))
	}

	if _, err := s.fsmgr.CopyNew(src, dst); err != nil {
		return "", ioErr("copy", dst, err)
	}
	return dst, nil
}

// scheduleThumbnail queues a best-effort thumbnail for a new photo.
func (s *PTService) scheduleThumbnail(id string) {
	if s.pool == nil || s.renderer == nil {
		return
	}
	maxDim := s.opts.ThumbnailMaxDimension
	s.pool.Submit(Task{
		Name: "thumbnail " + id,
		Run: func(ctx context.Context) error {
			_, err := s.Thumbnail(ctx, id, maxDim)
			return err
		},
	})
}

// IngestTreeResult counts the outcome of ingesting a directory.
type IngestTreeResult struct {
	Ingested   int
	Duplicates int
	Ignored    int
	Failed     int
	// Errors is keyed by source path.
	Errors []BulkError
}

// IngestTree ingests every regular file under dir. Files matching the
// configured ignore patterns are skipped. Each file is independent: a
// failure is counted and the walk continues.
func (s *PTService) IngestTree(ctx context.Context, dir string, recursive bool) (*IngestTreeResult, error) {
	root, info, err := s.fsmgr.Resolve(dir)
	if err != nil {
		return nil, ioErr("resolve", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	files, err := s.fsmgr.FindFiles(root, recursive)
	if err != nil {
		return nil, fmt.Errorf("finding files: %w", err)
	}

	result := &IngestTreeResult{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		ignored, err := s.fsmgr.IsIgnored(f, root)
		if err != nil {
			return result, fmt.Errorf("checking ignore rules: %w", err)
		}
		if ignored {
			s.logger.Debug("file ignored", "path", f)
			result.Ignored++
			continue
		}

		res, err := s.Ingest(ctx, f)
		switch {
		case err != nil:
			s.logger.Warn("ingest failed", "path", f, "error", err)
			result.Failed++
			result.Errors = append(result.Errors, BulkError{ID: f, Err: err})
		case res.Duplicate:
			result.Duplicates++
		default:
			result.Ingested++
		}
	}

	s.logger.Info("directory ingested", "path", root, "ingested", result.Ingested, "duplicates", result.Duplicates, "failed", result.Failed)
	return result, nil
}
