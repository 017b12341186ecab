package pt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path/filepath"
	"time"
)

// ThumbnailRenderer turns an encoded image into a JPEG thumbnail.
// Decode failures must wrap ErrDecode and encode failures ErrEncode.
type ThumbnailRenderer interface {
	Render(r io.Reader, w io.Writer, maxDim int) error
}

// ThumbnailSize returns the dimensions of an image scaled so its longer
// side is maxDim. Images already within maxDim are never enlarged.
func ThumbnailSize(width, height, maxDim int) (int, int) {
	if width <= maxDim && height <= maxDim {
		return width, height
	}
	scale := func(short, long int) int {
		v := int(math.Round(float64(short) * float64(maxDim) / float64(long)))
		if v < 1 {
			v = 1
		}
		return v
	}
	if width >= height {
		return maxDim, scale(height, width)
	}
	return scale(width, height), maxDim
}

// ThumbnailPath is where the thumbnail of a photo at a size is cached.
func (l *Layout) ThumbnailPath(id string, maxDim int) string {
	return filepath.Join(l.ThumbnailDir(), fmt.Sprintf("%s_%d.jpg", id, maxDim))
}

// Thumbnail renders a thumbnail for an active photo and writes it to the
// cache, replacing any previous file. It returns the thumbnail path. The
// catalog is never modified and no lock is held while rendering.
func (s *PTService) Thumbnail(ctx context.Context, id string, maxDim int) (string, error) {
	if maxDim <= 0 {
		return "", fmt.Errorf("invalid thumbnail size: %d", maxDim)
	}

	photo, err := s.catalog.FindActivePhoto(ctx, id)
	if err != nil {
		return "", fmt.Errorf("finding photo: %w", err)
	}
	if photo == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.renderThumbnail(ctx, photo.ID, photo.StoragePath, maxDim)
}

// CachedThumbnail returns the cached thumbnail when it is at least as new
// as the photo's file and renders a fresh one otherwise.
func (s *PTService) CachedThumbnail(ctx context.Context, id string, maxDim int) (string, error) {
	if maxDim <= 0 {
		return "", fmt.Errorf("invalid thumbnail size: %d", maxDim)
	}

	photo, err := s.catalog.FindActivePhoto(ctx, id)
	if err != nil {
		return "", fmt.Errorf("finding photo: %w", err)
	}
	if photo == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	path := s.layout.ThumbnailPath(photo.ID, maxDim)
	if cached, err := s.fsmgr.Stat(path); err == nil {
		source, err := s.fsmgr.Stat(photo.StoragePath)
		if err != nil {
			return "", ioErr("stat", photo.StoragePath, err)
		}
		if !cached.ModTime().Before(source.ModTime()) {
			return path, nil
		}
		s.logger.Debug("thumbnail stale", "id", id, "size", maxDim)
	}
	return s.renderThumbnail(ctx, photo.ID, photo.StoragePath, maxDim)
}

func (s *PTService) renderThumbnail(ctx context.Context, id, source string, maxDim int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.renderer == nil {
		return "", fmt.Errorf("no thumbnail renderer configured")
	}

	dir := s.layout.ThumbnailDir()
	if err := s.fsmgr.MkdirAll(dir); err != nil {
		return "", ioErr("mkdir", dir, err)
	}

	start := time.Now()
	in, err := s.fsmgr.Open(source)
	if err != nil {
		return "", ioErr("thumbnail", source, err)
	}
	defer in.Close()

	path := s.layout.ThumbnailPath(id, maxDim)
	err = s.fsmgr.WriteAtomic(path, func(w io.Writer) error {
		return s.renderer.Render(in, w, maxDim)
	})
	if err != nil {
		s.rec.Failed("thumbnail")
		return "", ioErr("thumbnail", source, err)
	}

	// Rendering holds no photo lock. A permanent delete that ran meanwhile
	// has already swept this id's thumbnails, so drop the one just written.
	row, err := s.catalog.FindPhoto(ctx, id)
	if err != nil {
		return "", fmt.Errorf("finding photo: %w", err)
	}
	if row == nil {
		if err := s.fsmgr.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("removing thumbnail of deleted photo", "path", path, "error", err)
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.rec.ThumbnailRendered(time.Since(start))
	s.logger.Debug("thumbnail rendered", "id", id, "size", maxDim)
	return path, nil
}
