package pt_test

import (
	"os"
	"path/filepath"
	"testing"

	"pictier/internal/fs"
	"pictier/internal/pt"
	"pictier/internal/testutil"
)

func TestAllocatePath(t *testing.T) {
	fsmgr := fs.NewOSFilesystemManager(nil)

	t.Run("free name is used as is", func(t *testing.T) {
		dir := t.TempDir()
		got, ok, err := pt.AllocatePath(fsmgr, dir, "a.jpg", 0)
		if err != nil || !ok {
			t.Fatalf("AllocatePath() = %q, %v, %v", got, ok, err)
		}
		if got != filepath.Join(dir, "a.jpg") {
			t.Errorf("AllocatePath() = %q", got)
		}
	})

	t.Run("suffixes count up", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, filepath.Join(dir, "a.jpg"), nil)
		testutil.WriteFile(t, filepath.Join(dir, "a (1).jpg"), nil)

		got, ok, err := pt.AllocatePath(fsmgr, dir, "a.jpg", 0)
		if err != nil || !ok {
			t.Fatalf("AllocatePath() = %q, %v, %v", got, ok, err)
		}
		if filepath.Base(got) != "a (2).jpg" {
			t.Errorf("AllocatePath() = %q, want a (2).jpg", filepath.Base(got))
		}
	})

	t.Run("no extension", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, filepath.Join(dir, "README"), nil)

		got, _, err := pt.AllocatePath(fsmgr, dir, "README", 0)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(got) != "README (1)" {
			t.Errorf("AllocatePath() = %q, want README (1)", filepath.Base(got))
		}
	})

	t.Run("N placements yield N distinct paths", func(t *testing.T) {
		dir := t.TempDir()
		seen := make(map[string]bool)
		for i := 0; i < 12; i++ {
			got, ok, err := pt.AllocatePath(fsmgr, dir, "IMG.jpg", 0)
			if err != nil || !ok {
				t.Fatalf("AllocatePath() #%d = %q, %v, %v", i, got, ok, err)
			}
			if seen[got] {
				t.Fatalf("AllocatePath() returned %q twice", got)
			}
			seen[got] = true
			testutil.WriteFile(t, got, nil)
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 12 {
			t.Errorf("directory holds %d files, want 12", len(entries))
		}
	})

	t.Run("exhausted attempts fall back to the original", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, filepath.Join(dir, "a.jpg"), nil)
		testutil.WriteFile(t, filepath.Join(dir, "a (1).jpg"), nil)
		testutil.WriteFile(t, filepath.Join(dir, "a (2).jpg"), nil)

		got, ok, err := pt.AllocatePath(fsmgr, dir, "a.jpg", 2)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("ok = true with every candidate taken")
		}
		if got != filepath.Join(dir, "a.jpg") {
			t.Errorf("AllocatePath() = %q, want the original name", got)
		}
	})
}

func TestHashFile(t *testing.T) {
	fsmgr := fs.NewOSFilesystemManager(nil)
	dir := t.TempDir()

	a := testutil.WriteFile(t, filepath.Join(dir, "a.jpg"), []byte("hello"))
	b := testutil.WriteFile(t, filepath.Join(dir, "other-name.png"), []byte("hello"))
	c := testutil.WriteFile(t, filepath.Join(dir, "c.jpg"), []byte("hello!"))
	big := testutil.WriteFile(t, filepath.Join(dir, "big.bin"), make([]byte, 200*1024+7))

	ha, err := pt.HashFile(fsmgr, a)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if ha != helloSHA256 {
		t.Errorf("HashFile() = %s, want %s", ha, helloSHA256)
	}

	hb, _ := pt.HashFile(fsmgr, b)
	hc, _ := pt.HashFile(fsmgr, c)
	if ha != hb {
		t.Error("same bytes under different names hashed differently")
	}
	if ha == hc {
		t.Error("different bytes hashed the same")
	}

	if _, err := pt.HashFile(fsmgr, big); err != nil {
		t.Errorf("HashFile() on multi-chunk file error = %v", err)
	}

	if _, err := pt.HashFile(fsmgr, filepath.Join(dir, "missing")); !pt.IsIOError(err) {
		t.Errorf("HashFile() on missing file error = %v, want IOError", err)
	}
}

func TestParseTier(t *testing.T) {
	for _, tier := range pt.Tiers() {
		got, err := pt.ParseTier(string(tier))
		if err != nil || got != tier {
			t.Errorf("ParseTier(%q) = %q, %v", tier, got, err)
		}
	}
	for _, bad := range []string{"", "Intake", "trash", "thumbnails"} {
		if _, err := pt.ParseTier(bad); err == nil {
			t.Errorf("ParseTier(%q) accepted", bad)
		}
	}
}

func TestLayout(t *testing.T) {
	root := t.TempDir()
	l := pt.NewLayout(root)

	if err := l.EnsureDirs(fs.NewOSFilesystemManager(nil)); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	dirs := []string{l.TrashDir(), l.ThumbnailDir()}
	for _, tier := range pt.Tiers() {
		dirs = append(dirs, l.DirFor(tier))
	}
	seen := make(map[string]bool)
	for _, d := range dirs {
		if seen[d] {
			t.Errorf("directory %s used twice", d)
		}
		seen[d] = true
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", d, err)
		}
	}

	if got := l.ThumbnailPath("photo-7", 128); got != filepath.Join(l.ThumbnailDir(), "photo-7_128.jpg") {
		t.Errorf("ThumbnailPath() = %q", got)
	}
}
