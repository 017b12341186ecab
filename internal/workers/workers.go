// Package workers sizes goroutine pools from the CPUs the process may
// actually use. GOMAXPROCS follows container CPU limits, runtime.NumCPU
// does not, so every count here starts from GOMAXPROCS.
//
// PICTIER_WORKERS overrides the computed count for every pool, capped by
// the caller's limit.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that overrides ForCPU.
const EnvOverride = "PICTIER_WORKERS"

// ForCPU returns one worker per available CPU, at least 1 and at most
// limit. A limit of 0 means no cap. Image decoding and hashing use this.
func ForCPU(limit int) int {
	workers := runtime.GOMAXPROCS(0)
	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			workers = count
		}
	}

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}
