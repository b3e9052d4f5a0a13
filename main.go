// ABOUTME: Entry point for the salescrm CLI, TUI, web server and MCP server
// ABOUTME: Opens the configured storage engine and routes to subcommands
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/sustentalski/salescrm/analysis"
	"github.com/sustentalski/salescrm/charm"
	"github.com/sustentalski/salescrm/cli"
	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/store"
	"github.com/sustentalski/salescrm/tui"
)

const version = "0.1.0"

type stateCommand func(*crm.State, []string) error

// app holds what main opens lazily so each command only touches the
// engines it needs.
type app struct {
	logger  *log.Logger
	cfg     *charm.Config
	dbPath  string
	sqlite  *sql.DB
	state   *crm.State
	closers []func() error
}

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	backend := flag.String("backend", "", "Storage backend: charm, local or sqlite (default from config)")
	dbPath := flag.String("db-path", "", "SQLite database path (default: ~/.local/share/salescrm/salescrm.db)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("salescrm version %s\n", version)
		os.Exit(0)
	}

	_ = godotenv.Load()
	logger := newLogger()
	log.SetDefault(logger)

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := charm.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}
	if *backend != "" {
		b, err := charm.ParseBackend(*backend)
		if err != nil {
			logger.Fatal("Invalid backend", "err", err)
		}
		cfg.Backend = b
	}

	a := &app{logger: logger, cfg: cfg, dbPath: getDatabasePath(*dbPath)}
	err = a.run(args[0], args[1:])
	a.close()
	if err != nil {
		logger.Error("Command failed", "command", args[0], "err", err)
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "salescrm",
	})
	if lvl := os.Getenv("SALESCRM_LOG_LEVEL"); lvl != "" {
		level, err := log.ParseLevel(lvl)
		if err != nil {
			logger.Warn("Ignoring SALESCRM_LOG_LEVEL", "value", lvl, "err", err)
		} else {
			logger.SetLevel(level)
		}
	}
	return logger
}

func (a *app) run(command string, args []string) error {
	switch command {
	case "sync":
		return a.runSync(args)
	case "mcp":
		state, err := a.openState()
		if err != nil {
			return err
		}
		return cli.MCPCommand(state, a.analyzer(), a.logger, version)
	case "serve":
		state, err := a.openState()
		if err != nil {
			return err
		}
		return cli.ServeCommand(state, a.analyzer(), a.logger, args)
	case "tui":
		state, err := a.openState()
		if err != nil {
			return err
		}
		database, err := a.openSQLite()
		if err != nil {
			return err
		}
		return tui.Run(state, database, a.analyzer())
	case "clients":
		return a.dispatch(command, args, map[string]stateCommand{
			"add":     cli.AddClientCommand,
			"list":    cli.ListClientsCommand,
			"delete":  cli.DeleteClientCommand,
			"history": cli.ClientHistoryCommand,
		})
	case "agenda":
		return a.dispatch(command, args, map[string]stateCommand{
			"add":    cli.AddAgendaCommand,
			"list":   cli.ListAgendaCommand,
			"toggle": cli.ToggleAgendaCommand,
			"delete": cli.DeleteAgendaCommand,
		})
	case "followups":
		return a.dispatch(command, args, map[string]stateCommand{
			"list":        cli.FollowupListCommand,
			"show":        cli.FollowupShowCommand,
			"set":         cli.FollowupSetCommand,
			"delete":      cli.FollowupDeleteCommand,
			"metrics":     cli.MetricsCommand,
			"export-xlsx": cli.FollowupExportCommand,
		})
	case "campaigns":
		return a.dispatch(command, args, map[string]stateCommand{
			"save":   cli.SaveCampaignCommand,
			"list":   cli.ListCampaignsCommand,
			"delete": cli.DeleteCampaignCommand,
		})
	case "strategies":
		return a.dispatch(command, args, map[string]stateCommand{
			"add":    cli.AddStrategyCommand,
			"list":   cli.ListStrategiesCommand,
			"delete": cli.DeleteStrategyCommand,
		})
	case "analyses":
		return a.dispatch(command, args, map[string]stateCommand{
			"analyze": func(s *crm.State, args []string) error {
				return cli.AnalyzeCommand(s, a.analyzer(), args)
			},
			"list":   cli.ListAnalysesCommand,
			"show":   cli.ShowAnalysisCommand,
			"delete": cli.DeleteAnalysisCommand,
		})
	case "viz":
		return a.dispatch(command, args, map[string]stateCommand{
			"graph": func(s *crm.State, args []string) error {
				return cli.VizGraphCommand(s, a.logger, args)
			},
		})
	case "calendar", "dashboard", "register", "login", "logout", "whoami", "export", "import":
		commands := map[string]stateCommand{
			"calendar":  cli.CalendarCommand,
			"dashboard": cli.DashboardCommand,
			"register":  cli.RegisterCommand,
			"login":     cli.LoginCommand,
			"logout":    cli.LogoutCommand,
			"whoami":    cli.WhoamiCommand,
			"export":    cli.ExportCommand,
			"import":    cli.ImportCommand,
		}
		state, err := a.openState()
		if err != nil {
			return err
		}
		return commands[command](state, args)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	return nil
}

// dispatch routes "<group> <sub> [flags]" to the matching state command.
func (a *app) dispatch(group string, args []string, commands map[string]stateCommand) error {
	if len(args) == 0 {
		fmt.Printf("Error: %s requires a subcommand\n\n", group)
		printUsage()
		os.Exit(1)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Printf("Unknown %s command: %s\n\n", group, args[0])
		printUsage()
		os.Exit(1)
	}
	state, err := a.openState()
	if err != nil {
		return err
	}
	return cmd(state, args[1:])
}

func (a *app) runSync(args []string) error {
	if len(args) == 0 {
		return charm.SyncStatusCommand(nil)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "link":
		return charm.SyncLinkCommand(rest)
	case "status":
		return charm.SyncStatusCommand(rest)
	case "unlink":
		return charm.SyncUnlinkCommand(rest)
	case "wipe":
		return charm.SyncWipeCommand(rest)
	case "now":
		return charm.SyncNowCommand(rest)
	case "auto":
		return charm.SetAutoSyncCommand(rest)
	case "backend":
		return charm.SyncBackendCommand(rest)
	case "init":
		return cli.SyncInitCommand(rest)
	case "google-status":
		database, err := a.openSQLite()
		if err != nil {
			return err
		}
		return cli.GoogleSyncStatusCommand(database, rest)
	case "contacts", "calendar":
		state, err := a.openState()
		if err != nil {
			return err
		}
		database, err := a.openSQLite()
		if err != nil {
			return err
		}
		if sub == "contacts" {
			return cli.SyncContactsCommand(database, state, rest)
		}
		return cli.SyncCalendarCommand(database, state, rest)
	default:
		fmt.Printf("Unknown sync command: %s\n\n", sub)
		printUsage()
		os.Exit(1)
	}
	return nil
}

// openSQLite opens the SQLite database that holds the sqlite backend's
// collections and the Google sync bookkeeping.
func (a *app) openSQLite() (*sql.DB, error) {
	if a.sqlite != nil {
		return a.sqlite, nil
	}
	database, err := db.OpenDatabase(a.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.sqlite = database
	a.closers = append(a.closers, database.Close)
	return database, nil
}

func (a *app) openState() (*crm.State, error) {
	if a.state != nil {
		return a.state, nil
	}

	var kv store.KV
	switch a.cfg.Backend {
	case charm.BackendSQLite:
		database, err := a.openSQLite()
		if err != nil {
			return nil, err
		}
		kv = db.NewKVStore(database)
	default:
		client, err := charm.Open(a.cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s backend: %w", a.cfg.Backend, err)
		}
		a.closers = append(a.closers, client.Close)
		kv = client
	}

	a.logger.Debug("Opened storage", "backend", a.cfg.Backend)
	a.state = crm.Open(kv, crm.WithLogger(a.logger))
	return a.state, nil
}

func (a *app) analyzer() crm.Analyzer {
	return analysis.NewFallback(analysis.NewGemini(os.Getenv("GEMINI_API_KEY"), a.logger), a.logger)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Close failed", "err", err)
		}
	}
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	dir, err := charm.DataDir()
	if err != nil {
		return "salescrm.db"
	}
	return filepath.Join(dir, "salescrm.db")
}

func printUsage() {
	fmt.Printf(`salescrm v%s - Sales pipeline CRM

USAGE:
  salescrm [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --backend <name>       Storage backend: charm, local or sqlite (default from config)
  --db-path <path>       SQLite database path (default: ~/.local/share/salescrm/salescrm.db)

INTERFACES:
  salescrm tui           Full-screen terminal UI
  salescrm serve         Web dashboard and /analyze endpoint
    --port <port>          Port (default: $PORT or 5001)
    --cors-origin <url>    Allowed origin (default: http://localhost:5173)
  salescrm mcp           MCP server over stdio

SESSION:
  salescrm register      Create a user and log in
    --username, --password, --name, --cep, --cpf, --email
  salescrm login [--password <pw>] <username>
  salescrm logout
  salescrm whoami

CLIENTS:
  salescrm clients add --name <name> [--phone --email --company --role ...]
  salescrm clients list [--query <text>] [--limit N]
  salescrm clients delete <id>
  salescrm clients history <name or id>

AGENDA:
  salescrm agenda add --name <contact> [--when 2026-03-10T14:30 --type --priority --client <id>]
  salescrm agenda list [--query <text>] [--open] [--day YYYY-MM-DD]
  salescrm agenda toggle <id>
  salescrm agenda delete <id>
  salescrm calendar [--month YYYY-MM] [--day N]

FOLLOW-UPS:
  salescrm followups list [--query <text>] [--open]
  salescrm followups show <id>
  salescrm followups set <id> <field> <value>
  salescrm followups delete <id>
  salescrm followups metrics
  salescrm followups export-xlsx [--output <file>]

CAMPAIGNS AND STRATEGIES:
  salescrm campaigns save --name <name> [--id <id> to edit] [--product --status ...]
  salescrm campaigns list [--query <text>]
  salescrm campaigns delete <id>
  salescrm strategies add --week <range> [--campaign <name or id> ...]
  salescrm strategies list [--query <text>]
  salescrm strategies delete <id>

ANALYSES:
  salescrm analyses analyze [--remote <url>] <file>
  salescrm analyses list
  salescrm analyses show <id>
  salescrm analyses delete <id>

REPORTS:
  salescrm dashboard     Metrics dashboard
  salescrm viz graph <campaigns|pipeline|client|complete> [id] [--output <file>] [--svg]

DATA:
  salescrm export [--output <file>]   Write the JSON backup (default: sustentalski_export_<date>.json)
  salescrm import <file>              Replace collections from a JSON backup

SYNC:
  salescrm sync status | link | unlink | wipe | now
  salescrm sync auto --enable|--disable
  salescrm sync backend <charm|local|sqlite>
  salescrm sync init                  Authorize Google access
  salescrm sync contacts              Import Google contacts as clients
  salescrm sync calendar [--calendar <id>]  Push agenda items to Google Calendar
  salescrm sync google-status

ENVIRONMENT (.env is loaded when present):
  GEMINI_API_KEY, PORT, SALESCRM_CORS_ORIGIN, SALESCRM_LOG_LEVEL,
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET

`, version)
}
