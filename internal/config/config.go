// ABOUTME: Musclog configuration with storage backend selection.
// ABOUTME: Holds the backend choice and data directory, plus the Repository factory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/docstore"
	"github.com/blopa/musclog-app-sub000/internal/sqlite"
	"github.com/blopa/musclog-app-sub000/internal/storage"
)

// Config stores tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "badger".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage. The SQLite backend
	// puts musclog.db here; the badger backend uses a docstore/ subfolder.
	// Supports ~ expansion. Defaults to ~/.local/share/musclog.
	DataDir string `json:"data_dir,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return sqlite.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository for the configured backend. Both
// backends share the device field-encryption key stored in the data dir.
func (c *Config) OpenStorage() (storage.Repository, error) {
	dataDir := c.GetDataDir()

	codec, err := crypto.OpenFieldCodec(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open field codec: %w", err)
	}

	switch backend := c.GetBackend(); backend {
	case "sqlite":
		return sqlite.Open(filepath.Join(dataDir, "musclog.db"), codec)
	case "badger":
		return docstore.Open(filepath.Join(dataDir, "docstore"), codec)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// OpenBackend opens a specific backend regardless of configuration. Used
// by the backend migration command to hold both stores open at once.
func (c *Config) OpenBackend(backend string) (storage.Repository, error) {
	override := *c
	override.Backend = backend
	return override.OpenStorage()
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "musclog", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
