package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := NewConfig("lib-abc", "/home/user/.local/share/pictier")
	original.Vaults = []VaultConfig{
		{Type: "filesystem", Name: "usb", FSVaultRoot: "/mnt/usb/pictier"},
		{Type: "s3", Name: "offsite", S3Bucket: "photos", S3Region: "eu-west-1", S3UsePathStyle: true},
	}
	original.Encryption.Type = "age"
	original.Metrics.TextfilePath = "/var/lib/node_exporter/pictier.prom"
	original.Filesystem.Ignore = []string{"*.xmp", ".cache/"}

	var buf bytes.Buffer
	m := &Manager{}
	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.LibraryID != original.LibraryID {
		t.Errorf("LibraryID = %q, want %q", got.LibraryID, original.LibraryID)
	}
	if got.Library != original.Library {
		t.Errorf("Library = %+v, want %+v", got.Library, original.Library)
	}
	if got.Thumbnails != original.Thumbnails {
		t.Errorf("Thumbnails = %+v, want %+v", got.Thumbnails, original.Thumbnails)
	}
	if got.Grouping != original.Grouping {
		t.Errorf("Grouping = %+v, want %+v", got.Grouping, original.Grouping)
	}
	if len(got.Vaults) != 2 {
		t.Fatalf("len(Vaults) = %d, want 2", len(got.Vaults))
	}
	if got.Vaults[0] != original.Vaults[0] || got.Vaults[1] != original.Vaults[1] {
		t.Errorf("Vaults = %+v, want %+v", got.Vaults, original.Vaults)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if got.Metrics.TextfilePath != original.Metrics.TextfilePath {
		t.Errorf("Metrics.TextfilePath = %q", got.Metrics.TextfilePath)
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestRead_HandWritten(t *testing.T) {
	src := `
library_id = "family"
log_level = "debug"

[library]
data_root = "/srv/photos"

[thumbnails]
max_dimension = 512

[[vaults]]
type = "filesystem"
name = "nas"
fs_vault_root = "/mnt/nas/pictier"
`
	cfg, err := (&Manager{}).Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cfg.LibraryID != "family" || cfg.LogLevel != "debug" {
		t.Errorf("top level = %q %q", cfg.LibraryID, cfg.LogLevel)
	}
	if cfg.Library.DataRoot != "/srv/photos" || cfg.Thumbnails.MaxDimension != 512 {
		t.Errorf("sections = %+v %+v", cfg.Library, cfg.Thumbnails)
	}
	if len(cfg.Vaults) != 1 || cfg.Vaults[0].FSVaultRoot != "/mnt/nas/pictier" {
		t.Errorf("Vaults = %+v", cfg.Vaults)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("lib-1", "/data/pictier")

	checks := map[string][2]string{
		"LibraryID":      {cfg.LibraryID, "lib-1"},
		"LogDir":         {cfg.LogDir, "/data/pictier/log"},
		"DataRoot":       {cfg.Library.DataRoot, "/data/pictier/library"},
		"Database.Type":  {cfg.Database.Type, "sqlite"},
		"DataDir":        {cfg.Database.DataDir, "/data/pictier/db"},
		"Encryption":     {cfg.Encryption.Type, "none"},
		"PublicKeyPath":  {cfg.Encryption.PublicKeyPath, "/data/pictier/keys/pictier.pub"},
		"PrivateKeyPath": {cfg.Encryption.PrivateKeyPath, "/data/pictier/keys/pictier.key"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}
	if cfg.Thumbnails.MaxDimension != DefaultThumbnailDimension || cfg.Grouping.BurstWindowSeconds != DefaultBurstWindowSeconds {
		t.Errorf("defaults not applied: %+v %+v", cfg.Thumbnails, cfg.Grouping)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing library id", func(c *Config) { c.LibraryID = "" }},
		{"missing data root", func(c *Config) { c.Library.DataRoot = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad jpeg quality", func(c *Config) { c.Thumbnails.JPEGQuality = 101 }},
		{"negative thumbnail size", func(c *Config) { c.Thumbnails.MaxDimension = -1 }},
		{"unnamed vault", func(c *Config) { c.Vaults = []VaultConfig{{Type: "memory"}} }},
		{"duplicate vault names", func(c *Config) {
			c.Vaults = []VaultConfig{{Type: "memory", Name: "a"}, {Type: "memory", Name: "a"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("lib", "/data")
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestInitAndSave(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "pictier.toml")

		if err := Init(path, NewConfig("l1", dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "pictier.toml")
		cfg := NewConfig("l1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})

	t.Run("save overwrites", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "pictier.toml")
		cfg := NewConfig("l1", dir)
		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		cfg.Vaults = append(cfg.Vaults, VaultConfig{Type: "memory", Name: "mem"})
		if err := Save(path, cfg); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if len(got.Vaults) != 1 {
			t.Errorf("len(Vaults) = %d, want 1", len(got.Vaults))
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile(filepath.Join(t.TempDir(), "pictier.toml")); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})

	t.Run("returns error for invalid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pictier.toml")
		os.WriteFile(path, []byte("library_id = [unterminated"), 0o644)
		if _, err := ReadFromFile(path); err == nil {
			t.Fatal("ReadFromFile() expected error for invalid toml")
		}
	})
}
