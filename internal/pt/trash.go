package pt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"pictier/internal/database/sqlc"
)

// Delete removes an active photo. A soft delete moves the file into the
// trash under a collision-free name and stamps the row; a permanent delete
// removes the file, the row and any cached thumbnails.
func (s *PTService) Delete(ctx context.Context, id string, permanent bool) error {
	unlock := s.locks.Lock(photoKey(id))
	defer unlock()

	photo, err := s.catalog.FindActivePhoto(ctx, id)
	if err != nil {
		return fmt.Errorf("finding photo: %w", err)
	}
	if photo == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if permanent {
		return s.deletePermanently(ctx, photo)
	}

	trash := s.layout.TrashDir()
	if err := s.fsmgr.MkdirAll(trash); err != nil {
		return ioErr("mkdir", trash, err)
	}

	unlockDir := s.locks.Lock(dirKey(trash))
	defer unlockDir()

	dst, ok, err := AllocatePath(s.fsmgr, trash, filepath.Base(photo.StoragePath), s.opts.MaxNameAttempts)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("no free name found in trash", "id", id)
	}

	if err := s.fsmgr.Move(photo.StoragePath, dst); err != nil {
		s.rec.Failed("delete")
		return ioErr("move", photo.StoragePath, err)
	}

	if err := s.catalog.MarkPhotoDeleted(ctx, id, dst, s.clock.Now()); err != nil {
		if mvErr := s.fsmgr.Move(dst, photo.StoragePath); mvErr != nil {
			s.logger.Error("moving file back after failed update", "id", id, "path", dst, "error", mvErr)
		}
		s.rec.Failed("delete")
		return fmt.Errorf("marking photo deleted: %w", err)
	}

	s.logger.Info("photo moved to trash", "id", id, "path", dst)
	s.rec.Deleted(false)
	return nil
}

func (s *PTService) deletePermanently(ctx context.Context, photo *sqlc.Photo) error {
	if err := s.fsmgr.Remove(photo.StoragePath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.rec.Failed("delete")
			return ioErr("remove", photo.StoragePath, err)
		}
		s.logger.Warn("photo file already missing", "id", photo.ID, "path", photo.StoragePath)
	}

	if err := s.catalog.DeletePhoto(ctx, photo.ID); err != nil {
		s.rec.Failed("delete")
		return fmt.Errorf("deleting photo: %w", err)
	}

	s.removeThumbnails(photo.ID)
	s.logger.Info("photo deleted permanently", "id", photo.ID)
	s.rec.Deleted(true)
	return nil
}

// removeThumbnails drops every cached size for a photo. Failures are logged.
func (s *PTService) removeThumbnails(id string) {
	pattern := filepath.Join(s.layout.ThumbnailDir(), id+"_*.jpg")
	matches, err := s.fsmgr.Glob(pattern)
	if err != nil {
		s.logger.Warn("listing thumbnails", "id", id, "error", err)
		return
	}
	for _, m := range matches {
		if err := s.fsmgr.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("removing thumbnail", "path", m, "error", err)
		}
	}
}

// DeleteMany deletes each ID independently.
func (s *PTService) DeleteMany(ctx context.Context, ids []string, permanent bool) (*BulkResult, error) {
	result := &BulkResult{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.record(id, s.Delete(ctx, id, permanent))
	}
	return result, nil
}

// PurgeTrash permanently removes every trashed photo and its file.
func (s *PTService) PurgeTrash(ctx context.Context) (*BulkResult, error) {
	trashed, err := s.catalog.ListTrashedPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing trash: %w", err)
	}

	result := &BulkResult{}
	for _, photo := range trashed {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.record(photo.ID, s.purgeOne(ctx, photo.ID))
	}
	s.logger.Info("trash purged", "removed", result.Succeeded, "failed", result.Failed)
	return result, nil
}

func (s *PTService) purgeOne(ctx context.Context, id string) error {
	unlock := s.locks.Lock(photoKey(id))
	defer unlock()

	// Re-read under the lock; the row may have changed since listing.
	photo, err := s.catalog.FindPhoto(ctx, id)
	if err != nil {
		return fmt.Errorf("finding photo: %w", err)
	}
	if photo == nil || !photo.DeletedAt.Valid {
		return nil
	}
	return s.deletePermanently(ctx, photo)
}
