// ABOUTME: Data transfer CLI commands
// ABOUTME: JSON export and import of the whole CRM
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sustentalski/salescrm/crm"
)

// ExportCommand writes every collection to a JSON file.
func ExportCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: sustentalski_export_DATE.json, - for stdout)")
	_ = fs.Parse(args)

	if *output == "-" {
		return state.Export(stdout)
	}

	path := *output
	if path == "" {
		path = crm.ExportFileName(time.Now())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := state.Export(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	printf("✓ Exported to %s\n", path)
	return nil
}

// ImportCommand replaces collections with the ones in a JSON export.
func ImportCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("file path required")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()

	applied, err := state.Import(f)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		printLine("Nothing to import")
		return nil
	}

	printf("✓ Imported %s\n", strings.Join(applied, ", "))
	return nil
}
