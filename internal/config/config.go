// ABOUTME: cropfit configuration management with backend selection
// ABOUTME: Handles the JSON config file, .env and environment overrides, and the storage backend factory

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harper/cropfit/internal/charm"
	"github.com/harper/cropfit/internal/storage"
	"github.com/joho/godotenv"
)

// Backend names accepted by OpenStorage.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendCharm  = "charm"
)

// Environment variables that override the config file.
const (
	EnvBackend = "CROPFIT_BACKEND"
	EnvDataDir = "CROPFIT_DATA_DIR"
	EnvUser    = "CROPFIT_USER"
	EnvListen  = "CROPFIT_LISTEN"
	EnvCharm   = "CHARM_HOST"
)

// DefaultListenAddr is where `cropfit serve` listens when nothing is configured.
const DefaultListenAddr = "127.0.0.1:8080"

// Config stores cropfit configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "badger" or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for local data storage.
	// SQLite puts cropfit.db here, Badger puts its badger/ directory here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/cropfit.
	DataDir string `json:"data_dir,omitempty"`

	// User is the user id that scopes every field document.
	User string `json:"user,omitempty"`

	// CharmHost is the Charm server used by the charm backend and identity.
	CharmHost string `json:"charm_host,omitempty"`

	// ListenAddr is the HTTP API listen address.
	ListenAddr string `json:"listen_addr,omitempty"`
}

// defaultDBFilename is the SQLite database filename inside the data directory.
const defaultDBFilename = "cropfit.db"

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetListenAddr returns the HTTP listen address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// GetCharmHost returns the Charm server, defaulting to charm.DefaultCharmHost.
func (c *Config) GetCharmHost() string {
	if c.CharmHost == "" {
		return charm.DefaultCharmHost
	}
	return c.CharmHost
}

// defaultDataDir returns the default XDG data directory for cropfit.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "cropfit")
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

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	return c.OpenBackend(c.GetBackend())
}

// OpenBackend opens the named backend with this config's data directory.
func (c *Config) OpenBackend(backend string) (storage.Repository, error) {
	dataDir := c.GetDataDir()

	switch backend {
	case BackendSQLite:
		return storage.NewSQLiteDB(filepath.Join(dataDir, defaultDBFilename))
	case BackendBadger:
		return storage.NewBadgerStore(filepath.Join(dataDir, "badger"))
	case BackendCharm:
		return charm.NewClient(&charm.Config{CharmHost: c.GetCharmHost(), AutoSync: true})
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "cropfit", "config.json")
}

// LoadEnv loads a .env file from the working directory when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using the process environment")
	}
}

// Load reads config from disk, writing the defaults on first run, then
// applies environment overrides.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg := &Config{Backend: BackendSQLite}
		if saveErr := cfg.Save(); saveErr != nil {
			log.Warn("could not save default config", "err", saveErr)
		}
		cfg.ApplyEnv()
		return cfg, nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyEnv()
	return &cfg, nil
}

// ApplyEnv overrides fields from CROPFIT_* and CHARM_HOST variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.User = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvCharm); v != "" {
		c.CharmHost = v
	}
}

// Save writes config to disk atomically.
func (c *Config) Save() error {
	path := GetConfigPath()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user config directory
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
