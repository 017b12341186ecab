package pt

import (
	"context"
	"fmt"
	"path/filepath"

	"pictier/internal/database/sqlc"
)

// Promote moves an active photo into the named tier. Any tier may be
// targeted from any tier. The file keeps its basename; an occupied
// destination is an error, never an overwrite. If the move fails nothing
// changes; if recording the move fails the file is moved back.
func (s *PTService) Promote(ctx context.Context, id string, tierName string) (*sqlc.Photo, error) {
	tier, err := ParseTier(tierName)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(photoKey(id))
	defer unlock()

	photo, err := s.catalog.FindActivePhoto(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding photo: %w", err)
	}
	if photo == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := s.clock.Now()
	dir := s.layout.DirFor(tier)
	dst := filepath.Join(dir, filepath.Base(photo.StoragePath))

	if dst == photo.StoragePath {
		if err := s.catalog.UpdatePhotoLocation(ctx, id, photo.StoragePath, string(tier), now); err != nil {
			return nil, fmt.Errorf("updating photo: %w", err)
		}
		photo.UpdatedAt = now
		return photo, nil
	}

	if err := s.fsmgr.MkdirAll(dir); err != nil {
		return nil, ioErr("mkdir", dir, err)
	}
	if err := s.fsmgr.Move(photo.StoragePath, dst); err != nil {
		s.rec.Failed("promote")
		return nil, ioErr("move", photo.StoragePath, err)
	}

	if err := s.catalog.UpdatePhotoLocation(ctx, id, dst, string(tier), now); err != nil {
		if mvErr := s.fsmgr.Move(dst, photo.StoragePath); mvErr != nil {
			s.logger.Error("moving file back after failed update", "id", id, "path", dst, "error", mvErr)
		}
		s.rec.Failed("promote")
		return nil, fmt.Errorf("updating photo: %w", err)
	}

	s.logger.Info("photo promoted", "id", id, "from", photo.Tier, "to", string(tier))
	s.rec.Promoted(tier)

	photo.StoragePath = dst
	photo.Tier = string(tier)
	photo.UpdatedAt = now
	return photo, nil
}

// PromoteMany promotes each ID independently.
func (s *PTService) PromoteMany(ctx context.Context, ids []string, tierName string) (*BulkResult, error) {
	if _, err := ParseTier(tierName); err != nil {
		return nil, err
	}

	result := &BulkResult{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, err := s.Promote(ctx, id, tierName)
		result.record(id, err)
	}
	return result, nil
}
