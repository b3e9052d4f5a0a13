package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/store"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.InitSchema(database))
	return database
}

func newTestState() *crm.State {
	return crm.Open(store.NewMemory(), crm.WithLogger(log.New(io.Discard)))
}

func TestImportContact(t *testing.T) {
	database := setupTestDB(t)
	state := newTestState()
	importer := NewContactsImporter(database, state)

	created, err := importer.ImportContact(&GoogleContact{
		ResourceName: "people/123",
		Name:         "Ana Silva",
		Email:        "ana@example.com",
		Phone:        "11 99999-0000",
		Company:      "Solar SA",
		JobTitle:     "Síndica",
	})
	require.NoError(t, err)
	assert.True(t, created)

	clients := state.Clients()
	require.Len(t, clients, 1)
	assert.Equal(t, "Ana Silva", clients[0].Name)
	assert.Equal(t, "Síndica", clients[0].Role)
	assert.Equal(t, ImportedApproach, clients[0].Approach)

	// Every imported client gets a follow-up record.
	assert.Len(t, state.Followups(), 1)

	entityID, found, err := db.FindSynced(database, ContactsService, "people/123")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, clients[0].ID, entityID)

	// Same email under another resource links instead of duplicating.
	created, err = importer.ImportContact(&GoogleContact{ResourceName: "people/456", Name: "Ana S.", Email: "ANA@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, state.Clients(), 1)
}

func fakePeopleServer(t *testing.T, pages map[string]string) *people.Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/people/me/connections" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, pages[r.URL.Query().Get("pageToken")])
	}))
	t.Cleanup(srv.Close)

	svc, err := people.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return svc
}

func TestImportContacts(t *testing.T) {
	database := setupTestDB(t)
	state := newTestState()

	svc := fakePeopleServer(t, map[string]string{
		"": `{
			"connections": [
				{"resourceName": "people/1", "names": [{"displayName": "Ana Silva"}],
				 "emailAddresses": [{"value": "ana@work.com"}, {"value": "ana@example.com", "metadata": {"primary": true}}],
				 "birthdays": [{"date": {"year": 1990, "month": 3, "day": 7}}]},
				{"resourceName": "people/2", "emailAddresses": [{"value": "noname@example.com"}]}
			],
			"nextPageToken": "p2"
		}`,
		"p2": `{
			"connections": [
				{"resourceName": "people/3", "names": [{"displayName": "Bruno Costa"}],
				 "organizations": [{"name": "Vento Ltda", "title": "Gerente"}]}
			]
		}`,
	})

	n, err := ImportContacts(database, state, svc)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	clients := state.Clients()
	require.Len(t, clients, 2)
	// Newest first
	assert.Equal(t, "Bruno Costa", clients[0].Name)
	assert.Equal(t, "Vento Ltda", clients[0].Company)
	assert.Equal(t, "ana@example.com", clients[1].Email)
	assert.Equal(t, "1990-03-07", clients[1].Birthday)

	st, err := db.GetSyncState(database, ContactsService)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, db.SyncIdle, st.Status)
	assert.Equal(t, 2, st.ItemsSynced)

	// A second run finds everything in the sync log.
	n, err = ImportContacts(database, state, svc)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, state.Clients(), 2)
}

func TestImportContactsRecordsFailure(t *testing.T) {
	database := setupTestDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 403, "message": "denied"}})
	}))
	defer srv.Close()

	svc, err := people.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = ImportContacts(database, newTestState(), svc)
	require.Error(t, err)

	st, err := db.GetSyncState(database, ContactsService)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, db.SyncFailed, st.Status)
}
