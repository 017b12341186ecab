package pt

import (
	"fmt"
	"path/filepath"
)

// DefaultMaxNameAttempts is the number of " (n)" suffixes tried before
// AllocatePath gives up and falls back to the original name.
const DefaultMaxNameAttempts = 999

// AllocatePath returns a path under dir for name that does not collide with an
// existing file. The first free candidate among name, "stem (1).ext",
// "stem (2).ext", … is returned. If maxAttempts suffixes are all taken the
// original (colliding) path is returned with ok=false; callers treat that as
// degraded but not fatal, and the exclusive create that follows fails loudly.
//
// AllocatePath does not reserve the path. Callers serialise allocation per
// target directory.
func AllocatePath(fsmgr FilesystemManager, dir, name string, maxAttempts int) (path string, ok bool, err error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxNameAttempts
	}

	original := filepath.Join(dir, name)
	taken, err := fsmgr.Exists(original)
	if err != nil {
		return "", false, ioErr("stat", original, err)
	}
	if !taken {
		return original, true, nil
	}

	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for i := 1; i <= maxAttempts; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		taken, err := fsmgr.Exists(candidate)
		if err != nil {
			return "", false, ioErr("stat", candidate, err)
		}
		if !taken {
			return candidate, true, nil
		}
	}

	return original, false, nil
}
