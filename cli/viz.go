// ABOUTME: Visualization CLI commands
// ABOUTME: Terminal dashboard and graphviz pipeline graphs
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/viz"
)

// DashboardCommand prints pipeline stats.
func DashboardCommand(state *crm.State, args []string) error {
	stats := viz.GenerateDashboardStats(state, time.Now())
	printLine(viz.RenderDashboard(stats))
	return nil
}

// VizGraphCommand renders one of the graph kinds as DOT or SVG.
func VizGraphCommand(state *crm.State, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("viz graph", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	svg := fs.Bool("svg", false, "Render SVG instead of DOT")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("graph kind required (%s)", strings.Join(viz.GraphKinds, ", "))
	}
	kind := fs.Arg(0)
	entityID := fs.Arg(1)

	if kind == viz.GraphClient && entityID == "" {
		return fmt.Errorf("client graph requires a client ID")
	}

	generator := viz.NewGraphGenerator(state, logger)

	var (
		out string
		err error
	)
	if *svg {
		out, err = generator.GenerateSVG(kind, entityID)
	} else {
		out, err = generator.Generate(kind, entityID)
	}
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *output, err)
		}
		printf("✓ Graph written to %s\n", *output)
		return nil
	}

	printLine(out)
	return nil
}
