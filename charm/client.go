// ABOUTME: KV engine for the CRM backed by charm kv or a local badger database
// ABOUTME: Implements store.KV and adds charm cloud sync helpers
package charm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"

	"github.com/sustentalski/salescrm/store"
)

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// engine is the subset of charm's kv.KV the client needs. localEngine
// provides the same surface over a plain badger database.
type engine interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

// Client is a store.KV over charm kv (with optional cloud sync) or a local
// badger database.
type Client struct {
	engine engine
	config *Config
	remote bool
	closer func() error
	mu     sync.RWMutex
}

var _ store.KV = (*Client)(nil)

// InitClient opens the process-wide client once using the saved config.
func InitClient() error {
	clientOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			clientErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		globalClient, clientErr = Open(cfg)
	})
	return clientErr
}

// GetClient returns the process-wide client, opening it if needed.
func GetClient() (*Client, error) {
	if err := InitClient(); err != nil {
		return nil, err
	}
	if globalClient == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	return globalClient, nil
}

// Open opens the engine named by cfg.Backend. The sqlite backend lives in
// package db and is rejected here.
func Open(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Backend {
	case BackendLocal:
		dir, err := DataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		return OpenLocal(filepath.Join(dir, "local"), cfg)
	case BackendCharm, "":
		return openCharm(cfg)
	default:
		return nil, fmt.Errorf("backend %q is not served by charm", cfg.Backend)
	}
}

func openCharm(cfg *Config) (*Client, error) {
	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{engine: db, config: cfg, remote: true}

	// Pull remote changes before the first read.
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return c, nil
}

// OpenLocal opens a badger database in dir with no remote sync.
func OpenLocal(dir string, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", dir, err)
	}

	local := &localEngine{db: db}
	return &Client{engine: local, config: cfg, closer: local.Close}, nil
}

// Close releases the local database. The charm engine is left to process exit.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closer == nil {
		return nil
	}
	err := c.closer()
	c.closer = nil
	return err
}

// Config returns the client's config.
func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// Remote reports whether writes can sync to a charm server.
func (c *Client) Remote() bool {
	return c.remote
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// IsConnected reports whether the charm server answers with an ID.
func (c *Client) IsConnected() bool {
	if !c.remote {
		return false
	}
	_, err := c.ID()
	return err == nil
}

// Sync exchanges changes with the charm server. No-op for local engines.
func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Sync()
}

// Get returns the value for key or store.ErrNotFound.
func (c *Client) Get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, err := c.engine.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	return v, err
}

// Set stores value and syncs when auto-sync is on.
func (c *Client) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.engine.Set([]byte(key), value); err != nil {
		return err
	}
	if c.remote && c.config.AutoSync {
		_ = c.engine.Sync()
	}
	return nil
}

// Delete removes key and syncs when auto-sync is on.
func (c *Client) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.engine.Delete([]byte(key)); err != nil {
		return err
	}
	if c.remote && c.config.AutoSync {
		_ = c.engine.Sync()
	}
	return nil
}

// Keys returns every key in sorted order.
func (c *Client) Keys() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, err := c.engine.Keys()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = string(k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Reset wipes every key.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Reset()
}

// localEngine adapts badger to the engine interface.
type localEngine struct {
	db *badger.DB
}

func (l *localEngine) Get(key []byte) ([]byte, error) {
	var result []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (l *localEngine) Set(key, value []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (l *localEngine) Delete(key []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (l *localEngine) Keys() ([][]byte, error) {
	var keys [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (l *localEngine) Sync() error {
	return nil
}

func (l *localEngine) Reset() error {
	return l.db.DropAll()
}

func (l *localEngine) Close() error {
	return l.db.Close()
}
