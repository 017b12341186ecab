package pt

import (
	"fmt"
	"path/filepath"
)

// Tier is one stage of the curation lattice a photo can live in.
type Tier string

const (
	TierIntake    Tier = "intake"
	TierReviewed  Tier = "reviewed"
	TierFinalized Tier = "finalized"
	TierArchived  Tier = "archived"
)

// tierOrder is the canonical ordering of the closed tier set.
var tierOrder = []Tier{TierIntake, TierReviewed, TierFinalized, TierArchived}

// Tiers returns every valid tier in order.
func Tiers() []Tier {
	out := make([]Tier, len(tierOrder))
	copy(out, tierOrder)
	return out
}

// IsValidTier reports whether name is a member of the tier set.
func IsValidTier(name string) bool {
	for _, t := range tierOrder {
		if string(t) == name {
			return true
		}
	}
	return false
}

// ParseTier converts a caller-supplied name into a Tier.
func ParseTier(name string) (Tier, error) {
	if !IsValidTier(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, name)
	}
	return Tier(name), nil
}

func (t Tier) String() string { return string(t) }

// Layout maps tiers and the derived roots onto directories under a data root.
//
//	<data_root>/
//	  media/<tier>/   (one directory per tier)
//	  trash/          (soft-deleted files)
//	  thumbnails/     (derived artifacts)
type Layout struct {
	dataRoot string
}

// NewLayout creates a Layout rooted at dataRoot.
func NewLayout(dataRoot string) *Layout {
	return &Layout{dataRoot: dataRoot}
}

// DataRoot returns the configured data root.
func (l *Layout) DataRoot() string { return l.dataRoot }

// DirFor returns the storage directory for a tier.
func (l *Layout) DirFor(t Tier) string {
	return filepath.Join(l.dataRoot, "media", string(t))
}

// TrashDir returns the single shared trash root.
func (l *Layout) TrashDir() string {
	return filepath.Join(l.dataRoot, "trash")
}

// ThumbnailDir returns the thumbnail cache root.
func (l *Layout) ThumbnailDir() string {
	return filepath.Join(l.dataRoot, "thumbnails")
}

// EnsureDirs creates every tier directory plus the trash and thumbnail roots.
// Already-present directories are not an error.
func (l *Layout) EnsureDirs(fsmgr FilesystemManager) error {
	dirs := []string{l.TrashDir(), l.ThumbnailDir()}
	for _, t := range tierOrder {
		dirs = append(dirs, l.DirFor(t))
	}
	for _, d := range dirs {
		if err := fsmgr.MkdirAll(d); err != nil {
			return ioErr("mkdir", d, err)
		}
	}
	return nil
}
