// ABOUTME: Persisted settings for the CRM storage engine
// ABOUTME: Backend choice, charm server host and auto-sync preferences under XDG data home
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/charm/kv"
)

const (
	// DefaultCharmHost is the self-hosted charm server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the charm KV database and the XDG data directory.
	AppName = "salescrm"

	// ConfigFileName is where settings are stored inside the data directory.
	ConfigFileName = "config.json"
)

// Backend selects the storage engine behind the CRM collections.
type Backend string

// Backend constants.
const (
	BackendCharm  Backend = "charm"
	BackendLocal  Backend = "local"
	BackendSQLite Backend = "sqlite"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendCharm, BackendLocal, BackendSQLite:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want charm, local or sqlite)", s)
	}
}

// Config holds storage settings.
type Config struct {
	// Backend is the storage engine (default: charm)
	Backend Backend `json:"backend,omitempty"`

	// Host is the charm server hostname
	Host string `json:"host,omitempty"`

	// AutoSync pushes to the charm server after every write
	AutoSync bool `json:"auto_sync"`

	// StaleThreshold is how old local data may get before a sync is due
	StaleThreshold time.Duration `json:"stale_threshold,omitempty"`
}

// DefaultConfig returns the settings used when nothing is saved.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendCharm,
		Host:           DefaultCharmHost,
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
	}
}

// DataDir returns the application data directory, creating it if needed.
func DataDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func configPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadConfig reads settings from disk, falling back to defaults.
func LoadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig(), nil //nolint:nilerr // no data dir means defaults
	}
	return loadConfigFrom(path)
}

func loadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil //nolint:nilerr // corrupt settings fall back to defaults
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendCharm
	}
	if cfg.Host == "" {
		cfg.Host = DefaultCharmHost
	}
	if cfg.StaleThreshold == 0 {
		cfg.StaleThreshold = kv.DefaultStaleThreshold
	}
	return &cfg, nil
}

// Save writes the settings to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.saveTo(path)
}

func (c *Config) saveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// SetHost changes the charm server and saves.
func (c *Config) SetHost(host string) error {
	c.Host = host
	return c.Save()
}

// SetAutoSync toggles auto-sync and saves.
func (c *Config) SetAutoSync(enabled bool) error {
	c.AutoSync = enabled
	return c.Save()
}

// SetBackend changes the storage engine and saves.
func (c *Config) SetBackend(b Backend) error {
	c.Backend = b
	return c.Save()
}
