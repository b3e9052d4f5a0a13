// ABOUTME: Authenticated Google API services for the sync commands
// ABOUTME: Builds Calendar and People services from a saved OAuth token and holds the progress writer
package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// Progress receives the human-readable progress of imports and pushes.
var Progress io.Writer = os.Stdout

func tokenClient(ctx context.Context, token *oauth2.Token) (*http.Client, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	src := &savingSource{
		src:  NewOAuthConfig().TokenSource(ctx, token),
		save: SaveToken,
		last: token.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

// NewCalendarClient creates a Google Calendar API service from an OAuth token.
func NewCalendarClient(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	client, err := tokenClient(ctx, token)
	if err != nil {
		return nil, err
	}
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return service, nil
}

// NewPeopleClient creates a Google People API service from an OAuth token.
func NewPeopleClient(ctx context.Context, token *oauth2.Token) (*people.Service, error) {
	client, err := tokenClient(ctx, token)
	if err != nil {
		return nil, err
	}
	service, err := people.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return service, nil
}
