package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for pictier.
type Config struct {
	LibraryID  string           `toml:"library_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"` // debug, info (default), warn, error
	Library    LibraryConfig    `toml:"library"`
	Database   DatabaseConfig   `toml:"database"`
	Thumbnails ThumbnailConfig  `toml:"thumbnails"`
	Grouping   GroupingConfig   `toml:"grouping"`
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// LibraryConfig locates the managed media tree.
type LibraryConfig struct {
	DataRoot        string `toml:"data_root"`
	MaxNameAttempts int    `toml:"max_name_attempts"` // collision suffixes tried before giving up
}

// DatabaseConfig represents configuration for the media catalog.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ThumbnailConfig tunes thumbnail rendering and the background pool.
type ThumbnailConfig struct {
	MaxDimension int `toml:"max_dimension"`
	JPEGQuality  int `toml:"jpeg_quality"`
	Workers      int `toml:"workers"`    // upper bound; 0 sizes to the CPUs available
	QueueSize    int `toml:"queue_size"` // pending tasks before new ones are dropped
}

// GroupingConfig tunes duplicate and burst detection.
type GroupingConfig struct {
	BurstWindowSeconds int `toml:"burst_window_seconds"`
	Workers            int `toml:"workers"`
}

// VaultConfig represents configuration for a catalog snapshot backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // for S3-compatible services
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
	S3UsePathStyle    bool   `toml:"s3_use_path_style,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// EncryptionConfig selects how catalog snapshots are encrypted before
// they leave the machine.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// MetricsConfig controls metric export. An empty path disables export.
type MetricsConfig struct {
	TextfilePath string `toml:"textfile_path"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

const (
	DefaultMaxNameAttempts    = 999
	DefaultThumbnailDimension = 256
	DefaultJPEGQuality        = 85
	DefaultQueueSize          = 64
	DefaultBurstWindowSeconds = 10
	DefaultWorkerLimit        = 8
)

// NewConfig creates a new Config with default locations under baseDir.
func NewConfig(libraryID, baseDir string) *Config {
	return &Config{
		LibraryID: libraryID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		LogLevel:  "info",
		Library: LibraryConfig{
			DataRoot:        filepath.Join(baseDir, "library"),
			MaxNameAttempts: DefaultMaxNameAttempts,
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		Thumbnails: ThumbnailConfig{
			MaxDimension: DefaultThumbnailDimension,
			JPEGQuality:  DefaultJPEGQuality,
			Workers:      DefaultWorkerLimit,
			QueueSize:    DefaultQueueSize,
		},
		Grouping: GroupingConfig{
			BurstWindowSeconds: DefaultBurstWindowSeconds,
			Workers:            DefaultWorkerLimit,
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "pictier.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "pictier.key"),
		},
	}
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.LibraryID == "" {
		return fmt.Errorf("library_id is required")
	}
	if c.Library.DataRoot == "" {
		return fmt.Errorf("library.data_root is required")
	}
	if c.LogLevel != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("unknown log_level: %s", c.LogLevel)
	}
	if c.Thumbnails.MaxDimension < 0 {
		return fmt.Errorf("thumbnails.max_dimension must be positive")
	}
	if q := c.Thumbnails.JPEGQuality; q != 0 && (q < 1 || q > 100) {
		return fmt.Errorf("thumbnails.jpeg_quality must be between 1 and 100")
	}
	names := make(map[string]bool)
	for _, v := range c.Vaults {
		if v.Name == "" {
			return fmt.Errorf("vault of type %q has no name", v.Type)
		}
		if names[v.Name] {
			return fmt.Errorf("duplicate vault name: %s", v.Name)
		}
		names[v.Name] = true
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes a new config file. It refuses to replace an existing one.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Save overwrites the config file at path.
func Save(path string, cfg *Config) error {
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}
