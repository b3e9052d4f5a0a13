// ABOUTME: Client records: create, list, lookup, search and delete
// ABOUTME: Every client change triggers follow-up reconciliation
package crm

import (
	"fmt"

	"github.com/sustentalski/salescrm/models"
)

func clientID(c models.Client) string { return c.ID }

// AddClient validates c, stores it first in the list and provisions its
// follow-up record.
func (s *State) AddClient(c models.Client) (models.Client, error) {
	created, err := models.NewClient(c, s.stamp())
	if err != nil {
		return models.Client{}, fmt.Errorf("invalid client: %w", err)
	}

	s.clients.Update(func(list []models.Client) []models.Client {
		return prepend(list, created)
	})
	s.ReconcileFollowups()
	return created, nil
}

// Clients returns all clients, newest first.
func (s *State) Clients() []models.Client {
	return s.clients.Get()
}

// GetClient looks up a client by id.
func (s *State) GetClient(id string) (models.Client, error) {
	c, ok := find(s.clients.Get(), id, clientID)
	if !ok {
		return models.Client{}, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// SearchClients filters by name, company, role, email, phone and address.
func (s *State) SearchClients(query string) []models.Client {
	return filter(s.clients.Get(), query, func(c models.Client) []string {
		return []string{c.Name, c.Company, c.Role, c.Email, c.Phone, c.Address, c.SocialHandles}
	})
}

// DeleteClient removes a client. Its follow-up record is intentionally left
// in place; the pipeline history survives the client.
func (s *State) DeleteClient(id string) error {
	var found bool
	s.clients.Update(func(list []models.Client) []models.Client {
		out, ok := without(list, id, clientID)
		found = ok
		return out
	})
	if !found {
		return fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return nil
}
