// ABOUTME: Charm KV client wrapper using transactional Do API
// ABOUTME: Short-lived connections to avoid lock contention with the API and MCP servers

package charm

import (
	"fmt"
	"os"

	"github.com/charmbracelet/charm/kv"
	"github.com/harper/cropfit/internal/storage"
)

const (
	// DBName is the name of the Charm KV database for field documents.
	DBName = "cropfit"

	// DefaultCharmHost is the default Charm server to use.
	DefaultCharmHost = "charm.2389.dev"

	// FieldPrefix namespaces field documents; keys are field:<user>:<id>.
	FieldPrefix = "field:"
)

// Client holds configuration for KV operations.
// It does NOT hold a persistent connection. Each operation opens the
// database, performs the operation, and closes it.
type Client struct {
	dbName   string
	autoSync bool
}

// Config holds client configuration options.
type Config struct {
	// CharmHost is the Charm server to use (default: charm.2389.dev).
	CharmHost string
	// AutoSync enables automatic sync after writes.
	AutoSync bool
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = DefaultCharmHost
	}
	return &Config{
		CharmHost: host,
		AutoSync:  true,
	}
}

// NewClient creates a new client with the given config.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Set CHARM_HOST before any KV operations
	if err := os.Setenv("CHARM_HOST", cfg.CharmHost); err != nil {
		return nil, err
	}

	return &Client{
		dbName:   DBName,
		autoSync: cfg.AutoSync,
	}, nil
}

// DoReadOnly executes a function with read-only database access.
func (c *Client) DoReadOnly(fn func(k *kv.KV) error) error {
	return kv.DoReadOnly(c.dbName, fn)
}

// Do executes a function with write access to the database,
// syncing afterwards when AutoSync is enabled.
func (c *Client) Do(fn func(k *kv.KV) error) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if k.IsReadOnly() {
			return fmt.Errorf("database is locked by another process (MCP server?): %w", storage.ErrReadOnly)
		}
		if err := fn(k); err != nil {
			return err
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Sync triggers a manual sync with the charm server.
func (c *Client) Sync() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Sync()
	})
}

// Close is a no-op: with the Do API connections close after each operation.
func (c *Client) Close() error {
	return nil
}

// NewTestClient creates a client for testing without network access.
func NewTestClient(dbName string) (*Client, error) {
	return &Client{
		dbName:   dbName,
		autoSync: false,
	}, nil
}
