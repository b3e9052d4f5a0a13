// ABOUTME: Google OAuth settings and token storage for the sync commands
// ABOUTME: Credentials come from the environment; refreshed tokens are written back to disk
package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	gosync "sync"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/people/v1"
)

const (
	// CallbackAddr is where the local redirect listener binds during `sync init`.
	CallbackAddr = "localhost:8080"
	// CallbackPath receives the authorization code.
	CallbackPath = "/oauth/callback"

	tokenFile = "google-credentials.json"
)

var (
	// ErrNoCredentials means GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET is unset.
	ErrNoCredentials = errors.New("google OAuth credentials not configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	// ErrNotAuthorized means `sync init` has not saved a token yet.
	ErrNotAuthorized = errors.New("not authorized with Google: run 'salescrm sync init'")
)

// Scopes lets the CRM read contacts (client import) and write events (agenda push).
var Scopes = []string{
	people.ContactsReadonlyScope,
	calendar.CalendarEventsScope,
}

// NewOAuthConfig builds the config from the environment. The credentials
// may be empty; OAuthConfig checks them.
func NewOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  "http://" + CallbackAddr + CallbackPath,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// OAuthConfig returns the config or ErrNoCredentials.
func OAuthConfig() (*oauth2.Config, error) {
	config := NewOAuthConfig()
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, ErrNoCredentials
	}
	return config, nil
}

// TokenPath is the saved token next to the rest of the CRM data.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "salescrm", tokenFile)
}

// SaveToken writes token to TokenPath with owner-only permissions.
func SaveToken(token *oauth2.Token) error {
	return saveTokenTo(TokenPath(), token)
}

func saveTokenTo(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// LoadToken reads the saved token. A missing file is ErrNotAuthorized.
func LoadToken() (*oauth2.Token, error) {
	return loadTokenFrom(TokenPath())
}

func loadTokenFrom(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// savingSource writes each newly refreshed token to disk so the next run
// starts from it instead of the expired one.
type savingSource struct {
	src  oauth2.TokenSource
	save func(*oauth2.Token) error

	mu   gosync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		// A failed save only costs a refresh on the next run.
		_ = s.save(token)
	}
	return token, nil
}
