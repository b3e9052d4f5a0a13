// ABOUTME: Google sync CLI commands
// ABOUTME: OAuth setup, contacts import, agenda push to Calendar and sync status
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/sync"
)

// SyncInitCommand runs the OAuth flow and stores the token.
func SyncInitCommand(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()

	config, err := sync.OAuthConfig()
	if err != nil {
		return err
	}
	state := uuid.NewString()

	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(sync.CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errChan <- fmt.Errorf("state mismatch in OAuth callback")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: sync.CallbackAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	printLine("Opening browser for Google OAuth...")
	printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)
	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)

		if err := sync.SaveToken(token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		printf("\n✓ Authenticated successfully\n")
		printf("✓ Tokens saved to %s\n\n", sync.TokenPath())
		printLine("Ready to sync! Run 'salescrm sync contacts' to import clients.")
		return nil

	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
}

// SyncContactsCommand imports Google Contacts as clients.
func SyncContactsCommand(database *sql.DB, state *crm.State, args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	token, err := sync.LoadToken()
	if err != nil {
		return err
	}

	client, err := sync.NewPeopleClient(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to create People client: %w", err)
	}

	if _, err := sync.ImportContacts(database, state, client); err != nil {
		return fmt.Errorf("contacts sync failed: %w", err)
	}
	return nil
}

// SyncCalendarCommand pushes open agenda items to Google Calendar.
func SyncCalendarCommand(database *sql.DB, state *crm.State, args []string) error {
	fs := flag.NewFlagSet("calendar", flag.ExitOnError)
	calendarID := fs.String("calendar", sync.DefaultCalendarID, "Target calendar ID")
	_ = fs.Parse(args)

	ctx := context.Background()
	token, err := sync.LoadToken()
	if err != nil {
		return err
	}

	client, err := sync.NewCalendarClient(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to create Calendar client: %w", err)
	}

	if _, err := sync.PushAgenda(ctx, database, state, client, *calendarID); err != nil {
		return fmt.Errorf("calendar sync failed: %w", err)
	}
	return nil
}

// GoogleSyncStatusCommand prints the last run of each Google sync.
func GoogleSyncStatusCommand(database *sql.DB, args []string) error {
	states, err := db.ListSyncStates(database)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		printLine("No Google sync has run yet")
		return nil
	}

	w := newTable("SERVICE\tSTATUS\tLAST SYNC\tITEMS\tERROR", "-------\t------\t---------\t-----\t-----")
	for _, s := range states {
		last := "-"
		if s.LastSyncTime != nil {
			last = s.LastSyncTime.Local().Format("02/01/2006 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.Service, s.Status, last, s.ItemsSynced, dash(truncate(s.ErrorMessage, 40)))
	}
	return w.Flush()
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
