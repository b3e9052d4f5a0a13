// ABOUTME: AI analysis CLI commands
// ABOUTME: Analyze a file locally or through a running server, list, show and delete saved analyses
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sustentalski/salescrm/analysis"
	"github.com/sustentalski/salescrm/crm"
)

// AnalyzeCommand analyzes a file and saves the result.
func AnalyzeCommand(state *crm.State, analyzer crm.Analyzer, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	remote := fs.String("remote", "", "Send the file to a running server instead (e.g. "+analysis.DefaultEndpoint+")")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("file path required")
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if *remote != "" {
		analyzer = analysis.NewClient(*remote, nil)
	}

	printf("Analisando %s...\n\n", filepath.Base(path))
	a, err := state.Analyze(context.Background(), analyzer, filepath.Base(path), string(data))
	if err != nil {
		return err
	}

	printLine(a.Content)
	printf("\n✓ Analysis saved (ID: %s)\n", a.ID)
	return nil
}

// ListAnalysesCommand lists saved analyses.
func ListAnalysesCommand(state *crm.State, args []string) error {
	analyses := state.Analyses()
	if len(analyses) == 0 {
		printLine("No analyses saved")
		return nil
	}

	w := newTable("DATE\tFILE\tPREVIEW\tID", "----\t----\t-------\t--")
	for _, a := range analyses {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.CreatedAt.Local().Format("02/01/2006 15:04"), a.FileName, truncate(firstLine(a.Content), 50), a.ID)
	}
	return w.Flush()
}

// ShowAnalysisCommand prints one saved analysis.
func ShowAnalysisCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("analysis ID required")
	}
	a, err := state.GetAnalysis(args[0])
	if err != nil {
		return err
	}
	printf("%s (%s)\n\n%s\n", a.FileName, a.CreatedAt.Local().Format("02/01/2006 15:04"), a.Content)
	return nil
}

// DeleteAnalysisCommand deletes a saved analysis.
func DeleteAnalysisCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("analysis ID required")
	}
	if err := state.DeleteAnalysis(args[0]); err != nil {
		return err
	}
	printf("✓ Deleted analysis %s\n", args[0])
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
