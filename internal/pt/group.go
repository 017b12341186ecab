package pt

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pictier/internal/database/sqlc"
)

// DuplicateGroup is a set of active photos whose files currently hold
// identical bytes.
type DuplicateGroup struct {
	Hash   string
	Photos []*sqlc.Photo
}

// BurstGroup is a run of photos taken close together under a shared name prefix.
type BurstGroup struct {
	Prefix string
	Start  time.Time
	End    time.Time
	Photos []*sqlc.Photo
}

// DetectDuplicates re-hashes every active photo's file and groups photos
// that share a digest. The stored hash is not trusted since files may have
// changed on disk. Groups are ordered by digest and members keep catalog
// order. Any unreadable file aborts the scan.
func (s *PTService) DetectDuplicates(ctx context.Context) ([]*DuplicateGroup, error) {
	photos, err := s.catalog.ListActivePhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}

	digests := make([]string, len(photos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.GroupWorkers)
	for i, p := range photos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := HashFile(s.fsmgr, p.StoragePath)
			if err != nil {
				return err
			}
			digests[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byHash := make(map[string]*DuplicateGroup)
	for i, p := range photos {
		grp, ok := byHash[digests[i]]
		if !ok {
			grp = &DuplicateGroup{Hash: digests[i]}
			byHash[digests[i]] = grp
		}
		grp.Photos = append(grp.Photos, p)
	}

	var groups []*DuplicateGroup
	for _, grp := range byHash {
		if len(grp.Photos) > 1 {
			groups = append(groups, grp)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Hash < groups[j].Hash })

	s.logger.Info("duplicate scan complete", "photos", len(photos), "groups", len(groups))
	return groups, nil
}

// burstPrefix is the basename up to the first underscore, or the whole
// basename when there is none.
func burstPrefix(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '_'); i >= 0 {
		return base[:i]
	}
	return base
}

// DetectBursts orders active photos by file modification time and walks
// them once. A photo joins the open group when it was modified within the
// burst window of the previous photo and shares its name prefix. Only
// groups of two or more are returned. A file that cannot be stat'ed sorts
// as if modified at the Unix epoch.
func (s *PTService) DetectBursts(ctx context.Context) ([]*BurstGroup, error) {
	photos, err := s.catalog.ListActivePhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}

	type entry struct {
		photo   *sqlc.Photo
		modTime time.Time
		prefix  string
	}
	entries := make([]entry, 0, len(photos))
	for _, p := range photos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mt := time.Unix(0, 0).UTC()
		if info, err := s.fsmgr.Stat(p.StoragePath); err == nil {
			mt = info.ModTime()
		} else {
			s.logger.Debug("stat failed, using epoch", "id", p.ID, "error", err)
		}
		entries = append(entries, entry{photo: p, modTime: mt, prefix: burstPrefix(p.StoragePath)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].modTime.Before(entries[j].modTime) })

	var groups []*BurstGroup
	var open *BurstGroup
	var prev entry
	closeOpen := func() {
		if open != nil && len(open.Photos) > 1 {
			groups = append(groups, open)
		}
	}
	for i, e := range entries {
		if i > 0 && e.modTime.Sub(prev.modTime) <= s.opts.BurstWindow && e.prefix == prev.prefix {
			open.Photos = append(open.Photos, e.photo)
			open.End = e.modTime
		} else {
			closeOpen()
			open = &BurstGroup{Prefix: e.prefix, Start: e.modTime, End: e.modTime, Photos: []*sqlc.Photo{e.photo}}
		}
		prev = e
	}
	closeOpen()

	s.logger.Info("burst scan complete", "photos", len(photos), "groups", len(groups))
	return groups, nil
}
