// ABOUTME: Migration utility that copies CRM collections between storage engines
// ABOUTME: Supports dry-run and a JSON backup of the target before overwriting

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sustentalski/salescrm/charm"
	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/store"
)

type engine struct {
	kv    store.KV
	close func() error
}

func main() {
	from := flag.String("from", "", "Source backend: charm, local or sqlite (required)")
	to := flag.String("to", "", "Target backend: charm, local or sqlite (required)")
	dbPath := flag.String("db-path", "", "SQLite database path (default: ~/.local/share/salescrm/salescrm.db)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Export the target's collections before overwriting")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "migrate"})

	if *from == "" || *to == "" {
		logger.Fatal("Both -from and -to are required")
	}
	if *from == *to {
		logger.Fatal("Source and target are the same backend", "backend", *from)
	}

	if err := migrate(logger, *from, *to, *dbPath, *dryRun, *backup); err != nil {
		logger.Fatal("Migration failed", "err", err)
	}
	logger.Info("Migration completed successfully")
}

func migrate(logger *log.Logger, from, to, dbPath string, dryRun, createBackup bool) error {
	src, err := openEngine(from, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = src.close() }()

	present, err := presentKeys(src.kv)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}
	logger.Info("Source collections", "backend", from, "keys", present)

	if len(present) == 0 {
		logger.Warn("Source has no CRM data; nothing to copy")
		return nil
	}

	if dryRun {
		logger.Info("[DRY RUN] Would copy collections", "from", from, "to", to, "count", len(present))
		return nil
	}

	dst, err := openEngine(to, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open target: %w", err)
	}
	defer func() { _ = dst.close() }()

	if createBackup {
		path, err := backupTarget(dst.kv, to)
		if err != nil {
			return fmt.Errorf("failed to back up target: %w", err)
		}
		if path != "" {
			logger.Info("Backup created", "path", path)
		}
	}

	n, err := store.Copy(dst.kv, src.kv, crm.AllKeys)
	if err != nil {
		return fmt.Errorf("failed to copy collections: %w", err)
	}
	logger.Info("Copied collections", "count", n)
	return nil
}

func openEngine(name, dbPath string) (*engine, error) {
	backend, err := charm.ParseBackend(name)
	if err != nil {
		return nil, err
	}

	if backend == charm.BackendSQLite {
		if dbPath == "" {
			dir, err := charm.DataDir()
			if err != nil {
				return nil, err
			}
			dbPath = filepath.Join(dir, "salescrm.db")
		}
		database, err := db.OpenDatabase(dbPath)
		if err != nil {
			return nil, err
		}
		return &engine{kv: db.NewKVStore(database), close: database.Close}, nil
	}

	cfg, err := charm.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Backend = backend
	client, err := charm.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &engine{kv: client, close: client.Close}, nil
}

func presentKeys(kv store.KV) ([]string, error) {
	var present []string
	for _, key := range crm.AllKeys {
		_, err := kv.Get(key)
		switch {
		case errors.Is(err, store.ErrNotFound):
			continue
		case err != nil:
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		present = append(present, key)
	}
	return present, nil
}

// backupTarget writes the target's current collections as an export file.
// Returns "" when the target holds nothing worth keeping.
func backupTarget(kv store.KV, backend string) (string, error) {
	present, err := presentKeys(kv)
	if err != nil || len(present) == 0 {
		return "", err
	}

	state := crm.Open(kv, crm.WithLogger(log.New(os.Stderr)))
	path := fmt.Sprintf("%s.backup.%s.json", backend, time.Now().Format("20060102-150405"))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := state.Export(f); err != nil {
		return "", err
	}
	return path, nil
}
