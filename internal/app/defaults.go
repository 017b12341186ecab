package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths are the locations pictier uses before any config has been read.
type Paths struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults resolves default paths, preferring environment variables:
//   - PICTIER_CONFIG_PATH: config file (default ~/.config/pictier.toml)
//   - PICTIER_HOME: data directory (default ~/.local/share/pictier)
func GetDefaults() (*Paths, error) {
	configPath := os.Getenv("PICTIER_CONFIG_PATH")
	baseDir := os.Getenv("PICTIER_HOME")

	if configPath == "" || baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(home, ".config", "pictier.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(home, ".local", "share", "pictier")
		}
	}

	return &Paths{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}
