// ABOUTME: Pushes scheduled agenda items to Google Calendar
// ABOUTME: Creates or updates one event per agenda item and records the link in the sync log
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/models"
)

const (
	// CalendarService names the agenda push in the sync log.
	CalendarService = "calendar"

	// DefaultCalendarID is the signed-in user's main calendar.
	DefaultCalendarID = "primary"

	// EventDuration is how long a pushed event blocks in the calendar.
	EventDuration = 30 * time.Minute
)

// shouldSkipItem determines if an agenda item should not be pushed.
// Returns (true, reason) if the item should be skipped, (false, "") otherwise
func shouldSkipItem(item models.AgendaItem) (bool, string) {
	if item.Done {
		return true, "done"
	}
	if _, ok := item.When(); !ok {
		return true, "unscheduled"
	}
	return false, ""
}

// pluralize returns "s" if count != 1, otherwise ""
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

// agendaEvent builds the calendar event for an item. Callers check the item
// has a datetime.
func agendaEvent(item models.AgendaItem) *calendar.Event {
	start, _ := item.When()
	end := start.Add(EventDuration)

	var desc []string
	for _, line := range []struct{ label, value string }{
		{"Empresa", item.Company},
		{"Condomínio", item.Condominium},
		{"Telefone", item.Phone},
		{"E-mail", item.Email},
		{"Indicação", item.RelatedPerson},
		{"Origem", item.Source},
		{"Prioridade", string(item.Priority)},
	} {
		if line.value != "" {
			desc = append(desc, line.label+": "+line.value)
		}
	}
	if item.Notes != "" {
		desc = append(desc, "", item.Notes)
	}

	ev := &calendar.Event{
		Summary:     fmt.Sprintf("%s: %s", item.ContactType, item.ContactName),
		Description: strings.Join(desc, "\n"),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{"salescrmAgendaId": item.ID},
		},
	}
	if item.Email != "" && item.ContactType == models.ContactMeeting {
		ev.Attendees = []*calendar.EventAttendee{{Email: item.Email, DisplayName: item.ContactName}}
	}
	return ev
}

// PushAgenda creates a calendar event for every open, scheduled agenda item,
// updating the event when the item was pushed before. Returns how many
// events were written.
func PushAgenda(ctx context.Context, database *sql.DB, state *crm.State, client *calendar.Service, calendarID string) (int, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}

	_, _ = fmt.Fprintln(Progress, "Pushing agenda to Google Calendar...")
	if err := db.MarkSyncRunning(database, CalendarService); err != nil {
		return 0, fmt.Errorf("failed to update sync status: %w", err)
	}

	created, updated := 0, 0
	skipCounts := make(map[string]int)

	for _, item := range state.Agenda() {
		if skip, reason := shouldSkipItem(item); skip {
			skipCounts[reason]++
			continue
		}

		ev := agendaEvent(item)
		eventID, exists, err := db.FindSynced(database, CalendarService, item.ID)
		if err != nil {
			_ = db.MarkSyncFailed(database, CalendarService, err)
			return created + updated, err
		}

		var written *calendar.Event
		if exists {
			written, err = client.Events.Update(calendarID, eventID, ev).Context(ctx).Do()
			if apiErr, ok := err.(*googleapi.Error); ok && (apiErr.Code == 404 || apiErr.Code == 410) {
				// The event was deleted in Google Calendar; create it again
				exists = false
				written, err = client.Events.Insert(calendarID, ev).Context(ctx).Do()
			}
		} else {
			written, err = client.Events.Insert(calendarID, ev).Context(ctx).Do()
		}
		if err != nil {
			_ = db.MarkSyncFailed(database, CalendarService, err)
			return created + updated, fmt.Errorf("failed to push %q: %w", item.ContactName, err)
		}

		if err := db.RecordSynced(database, CalendarService, item.ID, "event", written.Id, written.HtmlLink); err != nil {
			_ = db.MarkSyncFailed(database, CalendarService, err)
			return created + updated, err
		}
		if exists {
			updated++
		} else {
			created++
		}
	}

	if err := db.MarkSyncDone(database, CalendarService, created+updated); err != nil {
		return created + updated, fmt.Errorf("failed to update sync status: %w", err)
	}

	_, _ = fmt.Fprintf(Progress, "\n✓ Created %d event%s, updated %d\n", created, pluralize(created), updated)
	for reason, count := range skipCounts {
		_, _ = fmt.Fprintf(Progress, "  ✓ Skipped %d %s item%s\n", count, reason, pluralize(count))
	}
	return created + updated, nil
}
