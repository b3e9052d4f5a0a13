// ABOUTME: Google Contacts API importer
// ABOUTME: Imports Google contacts as CRM clients with deduplication and a sync log
package sync

import (
	"database/sql"
	"fmt"

	"google.golang.org/api/people/v1"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/models"
)

const (
	// ContactsService names the contacts import in the sync log.
	ContactsService = "contacts"

	// ImportedApproach marks clients created from Google Contacts.
	ImportedApproach = "Google Contacts"
)

type ContactsImporter struct {
	db      *sql.DB
	state   *crm.State
	matcher *ClientMatcher
}

type GoogleContact struct {
	ResourceName string
	Name         string
	Email        string
	Phone        string
	Company      string
	JobTitle     string
	Birthday     string
	Address      string
}

// NewContactsImporter creates an importer whose matcher knows every current client.
func NewContactsImporter(database *sql.DB, state *crm.State) *ContactsImporter {
	return &ContactsImporter{
		db:      database,
		state:   state,
		matcher: NewClientMatcher(state.Clients()),
	}
}

// ImportContact imports a single contact from Google. It reports whether a
// new client was created; a contact matching an existing client is only
// linked in the sync log.
func (ci *ContactsImporter) ImportContact(gc *GoogleContact) (bool, error) {
	if existing, found := ci.matcher.FindMatch(gc.Email, gc.Name); found {
		if err := db.RecordSynced(ci.db, ContactsService, gc.ResourceName, "client", existing.ID, ""); err != nil {
			return false, fmt.Errorf("failed to log sync: %w", err)
		}
		return false, nil
	}

	client, err := ci.state.AddClient(models.Client{
		Name:     gc.Name,
		Email:    gc.Email,
		Phone:    gc.Phone,
		Company:  gc.Company,
		Role:     gc.JobTitle,
		Birthday: gc.Birthday,
		Address:  gc.Address,
		Approach: ImportedApproach,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create client: %w", err)
	}

	if err := db.RecordSynced(ci.db, ContactsService, gc.ResourceName, "client", client.ID, ""); err != nil {
		return false, fmt.Errorf("failed to log sync: %w", err)
	}

	// Add to matcher to prevent duplicates within the same import session
	ci.matcher.AddClient(client)
	return true, nil
}

// ImportContacts fetches contacts from the Google People API and imports
// the ones not seen before. Returns the number of clients created.
func ImportContacts(database *sql.DB, state *crm.State, client *people.Service) (int, error) {
	_, _ = fmt.Fprintln(Progress, "Syncing Google Contacts...")
	if err := db.MarkSyncRunning(database, ContactsService); err != nil {
		return 0, fmt.Errorf("failed to update sync status: %w", err)
	}

	importer := NewContactsImporter(database, state)

	totalFetched := 0
	newClients := 0
	matched := 0
	pageToken := ""

	for {
		call := client.People.Connections.List("people/me").
			PageSize(1000).
			PersonFields("names,emailAddresses,phoneNumbers,organizations,birthdays,addresses")

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Do()
		if err != nil {
			_ = db.MarkSyncFailed(database, ContactsService, err)
			return newClients, fmt.Errorf("failed to fetch contacts: %w", err)
		}

		if response == nil || response.Connections == nil {
			break
		}
		totalFetched += len(response.Connections)

		for _, person := range response.Connections {
			gc := convertPerson(person)

			// A client needs at least a name
			if gc.Name == "" {
				continue
			}

			_, exists, err := db.FindSynced(database, ContactsService, person.ResourceName)
			if err != nil {
				_, _ = fmt.Fprintf(Progress, "  ✗ Failed to check sync log for %q: %v\n", gc.Name, err)
				continue
			}
			if exists {
				continue
			}

			isNew, err := importer.ImportContact(gc)
			if err != nil {
				_, _ = fmt.Fprintf(Progress, "  ✗ Failed to import contact %q: %v\n", gc.Name, err)
				continue
			}
			if isNew {
				newClients++
			} else {
				matched++
			}
		}

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
		if newClients > 0 {
			_, _ = fmt.Fprintf(Progress, "  → Created %d clients so far...\n", newClients)
		}
	}

	if err := db.MarkSyncDone(database, ContactsService, newClients); err != nil {
		return newClients, fmt.Errorf("failed to update sync status: %w", err)
	}

	_, _ = fmt.Fprintf(Progress, "\n✓ Fetched %d contacts from Google\n", totalFetched)
	if newClients == 0 && matched == 0 {
		_, _ = fmt.Fprintln(Progress, "  ✓ No new contacts to import (all up to date)")
	}
	if newClients > 0 {
		_, _ = fmt.Fprintf(Progress, "  ✓ Created %d new clients\n", newClients)
	}
	if matched > 0 {
		_, _ = fmt.Fprintf(Progress, "  ✓ Linked %d existing clients\n", matched)
	}
	return newClients, nil
}

// convertPerson converts a People API Person to GoogleContact.
func convertPerson(person *people.Person) *GoogleContact {
	gc := &GoogleContact{
		ResourceName: person.ResourceName,
	}

	if len(person.Names) > 0 && person.Names[0].DisplayName != "" {
		gc.Name = person.Names[0].DisplayName
	}

	// Prefer the primary email, otherwise the first available
	for _, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		if gc.Email == "" {
			gc.Email = email.Value
		}
		if email.Metadata != nil && email.Metadata.Primary {
			gc.Email = email.Value
			break
		}
	}

	for _, phone := range person.PhoneNumbers {
		if phone.Value == "" {
			continue
		}
		if gc.Phone == "" {
			gc.Phone = phone.Value
		}
		if phone.Metadata != nil && phone.Metadata.Primary {
			gc.Phone = phone.Value
			break
		}
	}

	if len(person.Organizations) > 0 {
		org := person.Organizations[0]
		gc.Company = org.Name
		gc.JobTitle = org.Title
	}

	if len(person.Birthdays) > 0 {
		if d := person.Birthdays[0].Date; d != nil && d.Year > 0 && d.Month > 0 && d.Day > 0 {
			gc.Birthday = fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
		}
	}

	if len(person.Addresses) > 0 {
		gc.Address = person.Addresses[0].FormattedValue
	}

	return gc
}
