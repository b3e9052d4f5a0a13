// ABOUTME: Test utilities for creating isolated KV clients
// ABOUTME: Opens a local badger engine in a temporary directory, no charm server needed
package charm

import (
	"os"
	"path/filepath"
	"testing"
)

// NewTestClient opens a local client in a temporary directory.
// The returned cleanup function closes the database and removes the directory.
func NewTestClient(t *testing.T) (*Client, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "salescrm-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	cfg := &Config{
		Backend:  BackendLocal,
		Host:     "localhost",
		AutoSync: false,
	}

	c, err := OpenLocal(filepath.Join(tmpDir, AppName), cfg)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("Failed to open local client: %v", err)
	}

	cleanup := func() {
		if err := c.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Logf("Warning: failed to remove temp directory %s: %v", tmpDir, err)
		}
	}

	return c, cleanup
}
