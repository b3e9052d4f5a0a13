package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/models"
)

type fakeCalendar struct {
	mu       gosync.Mutex
	inserted []calendar.Event
	updated  []string
	next     int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ev calendar.Event
	_ = json.NewDecoder(r.Body).Decode(&ev)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/calendars/primary/events":
		f.next++
		f.inserted = append(f.inserted, ev)
		ev.Id = "evt" + strings.Repeat("x", f.next)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/calendars/primary/events/"):
		ev.Id = strings.TrimPrefix(r.URL.Path, "/calendars/primary/events/")
		f.updated = append(f.updated, ev.Id)
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ev)
}

func newFakeCalendar(t *testing.T) (*fakeCalendar, *calendar.Service) {
	t.Helper()
	fake := &fakeCalendar{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return fake, svc
}

func TestShouldSkipItem(t *testing.T) {
	skip, reason := shouldSkipItem(models.AgendaItem{ContactName: "Ana"})
	assert.True(t, skip)
	assert.Equal(t, "unscheduled", reason)

	skip, reason = shouldSkipItem(models.AgendaItem{ContactName: "Ana", Datetime: "2025-01-15T14:00", Done: true})
	assert.True(t, skip)
	assert.Equal(t, "done", reason)

	skip, _ = shouldSkipItem(models.AgendaItem{ContactName: "Ana", Datetime: "2025-01-15T14:00"})
	assert.False(t, skip)
}

func TestAgendaEvent(t *testing.T) {
	ev := agendaEvent(models.AgendaItem{
		ID:          "a_1",
		ContactName: "Ana Silva",
		Company:     "Solar SA",
		Datetime:    "2025-01-15T14:00",
		ContactType: models.ContactMeeting,
		Email:       "ana@example.com",
		Notes:       "levar proposta",
	})

	assert.Equal(t, "reunião: Ana Silva", ev.Summary)
	assert.Contains(t, ev.Description, "Empresa: Solar SA")
	assert.Contains(t, ev.Description, "levar proposta")
	assert.Equal(t, "a_1", ev.ExtendedProperties.Private["salescrmAgendaId"])
	require.Len(t, ev.Attendees, 1)
	assert.Equal(t, "ana@example.com", ev.Attendees[0].Email)
}

func TestPushAgenda(t *testing.T) {
	database := setupTestDB(t)
	state := newTestState()
	fake, svc := newFakeCalendar(t)

	scheduled, err := state.AddAgendaItem(models.AgendaItem{ContactName: "Ana Silva", Datetime: "2025-01-15T14:00"})
	require.NoError(t, err)
	_, err = state.AddAgendaItem(models.AgendaItem{ContactName: "Sem data"})
	require.NoError(t, err)

	n, err := PushAgenda(context.Background(), database, state, svc, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, fake.inserted, 1)
	assert.Equal(t, "ligação: Ana Silva", fake.inserted[0].Summary)

	eventID, found, err := db.FindSynced(database, CalendarService, scheduled.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "evtx", eventID)

	// Pushing again updates the existing event.
	n, err = PushAgenda(context.Background(), database, state, svc, DefaultCalendarID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, fake.inserted, 1)
	assert.Equal(t, []string{"evtx"}, fake.updated)

	st, err := db.GetSyncState(database, CalendarService)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, db.SyncIdle, st.Status)
}
