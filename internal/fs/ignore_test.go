package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# sidecars", "*.xmp"})
		if len(m.patterns) != 1 {
			t.Fatalf("expected 1 pattern, got %d", len(m.patterns))
		}
		if m.patterns[0].pattern != "*.xmp" {
			t.Errorf("expected *.xmp, got %s", m.patterns[0].pattern)
		}
	})

	t.Run("classifies pattern kinds", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"*.xmp", "raw/*.cr2", ".cache/"})
		want := []ignoreKind{matchBase, matchPath, matchDir}
		for i, k := range want {
			if m.patterns[i].kind != k {
				t.Errorf("pattern %d kind = %v, want %v", i, m.patterns[i].kind, k)
			}
		}
		if m.patterns[2].pattern != ".cache" {
			t.Errorf("directory pattern stored as %q", m.patterns[2].pattern)
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name         string
		patterns     []string
		relativePath string
		want         bool
	}{
		{"basename glob in root", []string{"*.xmp"}, "IMG_001.xmp", true},
		{"basename glob in subdirectory", []string{"*.xmp"}, filepath.Join("2024", "IMG_001.xmp"), true},
		{"basename glob other extension", []string{"*.xmp"}, "IMG_001.jpg", false},
		{"exact basename in subdirectory", []string{".DS_Store"}, filepath.Join("trip", ".DS_Store"), true},
		{"path glob", []string{"raw/*.cr2"}, filepath.Join("raw", "IMG_001.cr2"), true},
		{"path glob wrong directory", []string{"raw/*.cr2"}, filepath.Join("edit", "IMG_001.cr2"), false},
		{"directory pattern skips contents", []string{".cache/"}, filepath.Join("trip", ".cache", "a.jpg"), true},
		{"directory pattern ignores basename", []string{".cache/"}, ".cache", false},
		{"question mark", []string{"?.jpg"}, "a.jpg", true},
		{"question mark single char only", []string{"?.jpg"}, "ab.jpg", false},
		{"character class", []string{"*.[jJ][pP][gG]"}, "A.JPG", true},
		{"malformed pattern never matches", []string{"[.jpg"}, "[.jpg", false},
		{"no patterns", nil, "a.jpg", false},
		{"second pattern matches", []string{"*.xmp", "*.tmp"}, "upload.tmp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.relativePath); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.relativePath, got, tt.want)
			}
		})
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("reads raw lines", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), IgnoreFileName)
		content := "*.xmp\n# comment\n\n*.tmp\nraw/*.cr2\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}

		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(patterns) != 5 {
			t.Fatalf("expected 5 raw lines, got %d", len(patterns))
		}
		if m := NewIgnoreMatcher(patterns); len(m.patterns) != 3 {
			t.Errorf("expected 3 parsed patterns, got %d", len(m.patterns))
		}
	})

	t.Run("missing file yields nothing", func(t *testing.T) {
		t.Parallel()
		patterns, err := ParseIgnoreFile(filepath.Join(t.TempDir(), IgnoreFileName))
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if patterns != nil {
			t.Errorf("expected nil patterns, got %v", patterns)
		}
	})
}
