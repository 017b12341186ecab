package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory ignore file read during tree ingestion.
const IgnoreFileName = ".pictierignore"

// defaultIgnorePatterns apply to every ingestion regardless of config.
var defaultIgnorePatterns = []string{IgnoreFileName, ".DS_Store", "Thumbs.db", "desktop.ini"}

type ignoreKind int

const (
	// matchBase matches the pattern against the file's basename.
	matchBase ignoreKind = iota
	// matchPath matches the pattern against the slash-separated relative path.
	matchPath
	// matchDir matches any directory component of the relative path.
	matchDir
)

type ignorePattern struct {
	pattern string
	kind    ignoreKind
}

// IgnoreMatcher decides which files under an ingestion root are skipped.
//
//	*.xmp       basename glob, matches at any depth
//	raw/*.cr2   relative path glob
//	.cache/     directory name, skips everything below it
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher parses raw patterns. Blank lines and '#' comments are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		switch {
		case strings.HasSuffix(raw, "/"):
			m.patterns = append(m.patterns, ignorePattern{pattern: strings.TrimSuffix(raw, "/"), kind: matchDir})
		case strings.Contains(raw, "/"):
			m.patterns = append(m.patterns, ignorePattern{pattern: raw, kind: matchPath})
		default:
			m.patterns = append(m.patterns, ignorePattern{pattern: raw, kind: matchBase})
		}
	}
	return m
}

// Match reports whether relativePath should be ignored.
// Malformed patterns never match.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	normalized := filepath.ToSlash(relativePath)
	parts := strings.Split(normalized, "/")
	base := parts[len(parts)-1]

	for _, p := range m.patterns {
		switch p.kind {
		case matchBase:
			if ok, _ := filepath.Match(p.pattern, base); ok {
				return true
			}
		case matchPath:
			if ok, _ := filepath.Match(p.pattern, normalized); ok {
				return true
			}
		case matchDir:
			for _, dir := range parts[:len(parts)-1] {
				if ok, _ := filepath.Match(p.pattern, dir); ok {
					return true
				}
			}
		}
	}
	return false
}

// ParseIgnoreFile reads one pattern per line. A missing file yields no
// patterns and no error.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
