package vault

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemVault(t *testing.T) {
	t.Run("creates directory structure", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")

		v, err := NewFileSystemVault("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(root, "snapshots")); err != nil {
			t.Errorf("snapshots directory not created: %v", err)
		}
		if v.name != "test" {
			t.Errorf("name = %q, want %q", v.name, "test")
		}
	})

	t.Run("works with existing directory", func(t *testing.T) {
		if _, err := NewFileSystemVault("test", t.TempDir()); err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
	})
}

func TestFileSystemVault_PutSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		size    int64
		wantErr bool
	}{
		{
			name: "store snapshot successfully",
			data: "catalog bytes",
			size: 13,
		},
		{
			name:    "size mismatch",
			data:    "catalog bytes",
			size:    100,
			wantErr: true,
		},
		{
			name: "empty snapshot",
			data: "",
			size: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			v, err := NewFileSystemVault("test", root)
			if err != nil {
				t.Fatalf("NewFileSystemVault() error = %v", err)
			}

			err = v.PutSnapshot("lib-1", strings.NewReader(tt.data), tt.size, 3)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PutSnapshot() error = %v, wantErr %v", err, tt.wantErr)
			}

			snapshotPath := filepath.Join(root, "snapshots", "lib-1.db")
			if tt.wantErr {
				if _, err := os.Stat(snapshotPath); !os.IsNotExist(err) {
					t.Errorf("snapshot file exists after failed put")
				}
				return
			}

			got, err := os.ReadFile(snapshotPath)
			if err != nil {
				t.Fatalf("reading snapshot: %v", err)
			}
			if string(got) != tt.data {
				t.Errorf("snapshot = %q, want %q", got, tt.data)
			}
		})
	}
}

func TestFileSystemVault_GetSnapshot(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	t.Run("not found", func(t *testing.T) {
		var buf bytes.Buffer
		if err := v.GetSnapshot("missing", &buf); !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("GetSnapshot() error = %v, want ErrSnapshotNotFound", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		data := "round trip data"
		if err := v.PutSnapshot("lib-1", strings.NewReader(data), int64(len(data)), 1); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetSnapshot("lib-1", &buf); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if buf.String() != data {
			t.Errorf("GetSnapshot() = %q, want %q", buf.String(), data)
		}
	})
}

func TestFileSystemVault_GetSnapshotVersion(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	version, err := v.GetSnapshotVersion("lib-1")
	if err != nil {
		t.Fatalf("GetSnapshotVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("GetSnapshotVersion() before put = %d, want 0", version)
	}

	for _, want := range []int64{5, 12} {
		if err := v.PutSnapshot("lib-1", strings.NewReader("x"), 1, want); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		got, err := v.GetSnapshotVersion("lib-1")
		if err != nil {
			t.Fatalf("GetSnapshotVersion() error = %v", err)
		}
		if got != want {
			t.Errorf("GetSnapshotVersion() = %d, want %d", got, want)
		}
	}

	t.Run("corrupt version file", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(root, "snapshots", "lib-2.version"), []byte("nope"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := v.GetSnapshotVersion("lib-2"); err == nil {
			t.Error("GetSnapshotVersion() expected error for corrupt version")
		}
	})
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("valid setup", func(t *testing.T) {
		v, err := NewFileSystemVault("test", t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if err := v.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("missing snapshot directory", func(t *testing.T) {
		root := t.TempDir()
		v, err := NewFileSystemVault("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		os.RemoveAll(filepath.Join(root, "snapshots"))

		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() expected error for missing directory")
		}
	})
}

func TestFileSystemVault_AtomicWrite(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	_ = v.PutSnapshot("lib-1", strings.NewReader("short"), 999, 1)

	entries, err := os.ReadDir(filepath.Join(root, "snapshots"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
