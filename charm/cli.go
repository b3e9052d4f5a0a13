// ABOUTME: CLI commands for storage backend and charm sync operations
// ABOUTME: SSH key auth for sync, backend switching and wiping the sust_v2_* collections

package charm

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/charm/client"

	"github.com/sustentalski/salescrm/crm"
)

// SyncLinkCommand connects this device to a Charm account over SSH key
// auth and pulls whatever CRM collections the account already holds.
func SyncLinkCommand(args []string) error {
	fs := flag.NewFlagSet("sync link", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Backend != BackendCharm {
		return fmt.Errorf("backend is %s; run 'salescrm sync backend charm' first", cfg.Backend)
	}

	fmt.Printf("Linking to Charm Cloud (%s) with this device's SSH key...\n\n", cfg.Host)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return fmt.Errorf("failed to get charm client: %w", err)
	}
	if id, err := cc.ID(); err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", cfg.AutoSync)

	cols, err := CRMCollections(c)
	if err != nil {
		return err
	}
	fmt.Println("\nCRM collections on this account:")
	printCollections(os.Stdout, cols)
	return nil
}

// SyncStatusCommand shows current sync configuration and status.
func SyncStatusCommand(args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return showSyncStatus(cfg)
}

func showSyncStatus(cfg *Config) error {
	fmt.Println("Storage Status")
	fmt.Println("──────────────")
	fmt.Printf("Backend:   %s\n", cfg.Backend)
	fmt.Printf("Server:    %s\n", cfg.Host)
	fmt.Printf("Auto-sync: %v\n", cfg.AutoSync)

	if cfg.Backend == BackendSQLite {
		fmt.Println("\nCRM collections live in the SQLite database; charm sync is idle.")
		return nil
	}

	c, err := GetClient()
	if err != nil {
		fmt.Printf("\nStatus: store unavailable (%v)\n", err)
		return nil //nolint:nilerr // a locked or missing store is reported, not fatal
	}

	if !c.Remote() {
		fmt.Println("\nStatus: Local only (nothing leaves this device)")
	} else if id, err := c.ID(); err != nil {
		fmt.Println("\nStatus: Connected (ID unavailable)")
	} else {
		fmt.Println("\nStatus: Connected to Charm Cloud")
		fmt.Printf("ID:        %s\n", id)
	}

	cols, err := CRMCollections(c)
	if err != nil {
		return err
	}
	fmt.Printf("\nCRM collections (%d of %d):\n", len(cols), len(crm.AllKeys))
	printCollections(os.Stdout, cols)

	if c.Remote() {
		fmt.Println("\nCharm uses SSH keys for authentication; no login required.")
	}
	return nil
}

// SyncUnlinkCommand explains how to detach this device from the Charm
// account. Charm has no unlink API; the SSH key has to be removed by hand.
func SyncUnlinkCommand(args []string) error {
	fs := flag.NewFlagSet("sync unlink", flag.ExitOnError)
	_ = fs.Parse(args)

	fmt.Println("To unlink your device from Charm Cloud:")
	fmt.Println()
	fmt.Println("  1. Remove this device's SSH key from your Charm account")
	fmt.Println("  2. Delete local charm data: rm -rf ~/.local/share/charm")
	fmt.Println()

	dir, err := DataDir()
	if err != nil {
		return err
	}
	c, err := GetClient()
	if err != nil {
		fmt.Printf("Local CRM data in %s is not touched.\n", dir)
		return nil //nolint:nilerr // the instructions above do not depend on the store
	}
	cols, err := CRMCollections(c)
	if err != nil {
		return err
	}
	fmt.Printf("These CRM collections stay in %s:\n", dir)
	printCollections(os.Stdout, cols)
	fmt.Println("\nExport them first with 'salescrm export' if the device is being retired.")
	return nil
}

// SyncWipeCommand resets the KV store, removing every sust_v2_* collection
// including users and the active session.
func SyncWipeCommand(args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	if !*confirm {
		cols, err := CRMCollections(c)
		if err != nil {
			return err
		}
		fmt.Println("WARNING: This deletes every CRM collection in this store:")
		printCollections(os.Stdout, cols)
		fmt.Println()
		fmt.Println("Registered users and the active session go too; you will need to register again.")
		fmt.Println("To confirm, run:")
		fmt.Println("  salescrm sync wipe --confirm")
		return nil
	}

	if err := wipe(os.Stdout, c); err != nil {
		return err
	}
	if c.Remote() {
		fmt.Println("Your Charm account is still linked; the next sync pushes the empty store.")
	}
	return nil
}

// SyncNowCommand syncs immediately and reports which CRM collections
// changed record counts.
func SyncNowCommand(args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "List every CRM collection after syncing")
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if !c.Remote() {
		fmt.Println("Backend is local; nothing to sync.")
		return nil
	}

	before, err := CRMCollections(c)
	if err != nil {
		return err
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	after, err := CRMCollections(c)
	if err != nil {
		return err
	}

	changed := changedCollections(before, after)
	if len(changed) == 0 {
		fmt.Println("✓ Synced (no CRM changes pulled)")
	} else {
		fmt.Printf("✓ Synced; %d collections changed:\n", len(changed))
		printCollections(os.Stdout, changed)
	}
	if *verbose {
		fmt.Println("\nAll CRM collections:")
		printCollections(os.Stdout, after)
	}
	return nil
}

// SetAutoSyncCommand toggles pushing to Charm after every collection write.
func SetAutoSyncCommand(args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ExitOnError)
	enable := fs.Bool("enable", false, "Sync after every CRM write")
	disable := fs.Bool("disable", false, "Only sync on 'salescrm sync now'")
	_ = fs.Parse(args)

	if *enable == *disable {
		fmt.Println("Usage: salescrm sync auto --enable|--disable")
		return nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetAutoSync(*enable); err != nil {
		return fmt.Errorf("failed to save auto-sync: %w", err)
	}

	if *enable {
		fmt.Println("✓ Auto-sync enabled; each sust_v2_* write is pushed right away")
	} else {
		fmt.Println("✓ Auto-sync disabled; run 'salescrm sync now' to push changes")
	}
	return nil
}

// SyncBackendCommand shows or changes the storage backend.
func SyncBackendCommand(args []string) error {
	fs := flag.NewFlagSet("sync backend", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if fs.NArg() == 0 {
		fmt.Printf("Backend: %s\n", cfg.Backend)
		return nil
	}

	backend, err := ParseBackend(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := cfg.SetBackend(backend); err != nil {
		return fmt.Errorf("failed to save backend: %w", err)
	}

	fmt.Printf("✓ Backend set to %s\n", backend)
	fmt.Println("Existing data stays in the previous backend; use 'salescrm migrate' to copy it.")
	return nil
}
