package sync

import (
	"context"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNewGoogleClients(t *testing.T) {
	token := &oauth2.Token{
		AccessToken:  "test-access-token",
		TokenType:    "Bearer",
		RefreshToken: "test-refresh-token",
		Expiry:       time.Now().Add(1 * time.Hour),
	}

	cal, err := NewCalendarClient(context.Background(), token)
	if err != nil {
		t.Fatalf("NewCalendarClient failed: %v", err)
	}
	if cal == nil {
		t.Fatal("expected calendar service, got nil")
	}

	ppl, err := NewPeopleClient(context.Background(), token)
	if err != nil {
		t.Fatalf("NewPeopleClient failed: %v", err)
	}
	if ppl == nil {
		t.Fatal("expected people service, got nil")
	}
}

func TestNewGoogleClientsNilToken(t *testing.T) {
	if _, err := NewCalendarClient(context.Background(), nil); err == nil {
		t.Error("expected error for nil token")
	}
	if _, err := NewPeopleClient(context.Background(), nil); err == nil {
		t.Error("expected error for nil token")
	}
}
