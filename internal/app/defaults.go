package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - TUTO_CONFIG_PATH: config file location (default: ~/.config/tuto.toml)
//   - TUTO_HOME: base directory for logs and run history (default: ~/.local/share/tuto)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome("TUTO_CONFIG_PATH", ".config", "tuto.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := envOrHome("TUTO_HOME", ".local", "share", "tuto")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// envOrHome returns the value of key, or the home directory joined with elem.
func envOrHome(key string, elem ...string) (string, error) {
	if path := os.Getenv(key); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
