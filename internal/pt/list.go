package pt

import (
	"context"
	"fmt"

	"pictier/internal/database/sqlc"
)

// Get returns an active photo by ID.
func (s *PTService) Get(ctx context.Context, id string) (*sqlc.Photo, error) {
	photo, err := s.catalog.FindActivePhoto(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding photo: %w", err)
	}
	if photo == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return photo, nil
}

// ListOptions selects which photos List returns. Trash and Tier are
// mutually exclusive; the zero value lists every active photo.
type ListOptions struct {
	Tier  string
	Trash bool
}

// List returns photos in catalog order. Trashed photos appear only when
// explicitly requested.
func (s *PTService) List(ctx context.Context, opts ListOptions) ([]*sqlc.Photo, error) {
	switch {
	case opts.Trash && opts.Tier != "":
		return nil, fmt.Errorf("cannot filter trash by tier")
	case opts.Trash:
		photos, err := s.catalog.ListTrashedPhotos(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing trash: %w", err)
		}
		return photos, nil
	case opts.Tier != "":
		tier, err := ParseTier(opts.Tier)
		if err != nil {
			return nil, err
		}
		photos, err := s.catalog.ListActivePhotosByTier(ctx, string(tier))
		if err != nil {
			return nil, fmt.Errorf("listing photos: %w", err)
		}
		return photos, nil
	default:
		photos, err := s.catalog.ListActivePhotos(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing photos: %w", err)
		}
		return photos, nil
	}
}

// LibraryStatus summarises where photos currently are.
type LibraryStatus struct {
	// Tiers holds one entry per tier in tier order, including empty tiers.
	Tiers   []TierCount
	Active  int64
	Trashed int64
}

// TierCount is the number of active photos in one tier.
type TierCount struct {
	Tier  Tier
	Count int64
}

// Status counts active photos per tier and photos in the trash.
func (s *PTService) Status(ctx context.Context) (*LibraryStatus, error) {
	counts, err := s.catalog.CountActivePhotosByTier(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting photos: %w", err)
	}
	trashed, err := s.catalog.ListTrashedPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing trash: %w", err)
	}

	status := &LibraryStatus{Trashed: int64(len(trashed))}
	for _, t := range tierOrder {
		n := counts[string(t)]
		status.Tiers = append(status.Tiers, TierCount{Tier: t, Count: n})
		status.Active += n
	}
	return status, nil
}

// GetHistory returns the most recent operations, newest first.
func (s *PTService) GetHistory(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.catalog.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
