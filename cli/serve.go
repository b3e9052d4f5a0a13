// ABOUTME: Web server CLI command
// ABOUTME: Starts the dashboard and analysis endpoint
package cli

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/web"
)

// ServeCommand runs the web server until it fails.
func ServeCommand(state *crm.State, analyzer crm.Analyzer, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", envOr("PORT", web.DefaultPort), "Port to listen on")
	cors := fs.String("cors-origin", envOr("SALESCRM_CORS_ORIGIN", web.DefaultCORSOrigin), "Allowed CORS origin")
	_ = fs.Parse(args)

	server, err := web.NewServer(state, analyzer, web.Config{Port: *port, CORSOrigin: *cors}, logger)
	if err != nil {
		return err
	}
	return server.Start()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
