// ABOUTME: Agenda of scheduled outreach actions
// ABOUTME: Create (optionally prefilled from a client), toggle done, delete and search
package crm

import (
	"fmt"

	"github.com/sustentalski/salescrm/models"
)

func agendaID(a models.AgendaItem) string { return a.ID }

// AddAgendaItem validates and stores an item at the top of the agenda.
func (s *State) AddAgendaItem(a models.AgendaItem) (models.AgendaItem, error) {
	created, err := models.NewAgendaItem(a, s.stamp())
	if err != nil {
		return models.AgendaItem{}, fmt.Errorf("invalid agenda item: %w", err)
	}
	s.agenda.Update(func(list []models.AgendaItem) []models.AgendaItem {
		return prepend(list, created)
	})
	return created, nil
}

// AgendaDraftFromClient returns an unsaved agenda item carrying the client's
// contact details.
func (s *State) AgendaDraftFromClient(clientID string) (models.AgendaItem, error) {
	c, err := s.GetClient(clientID)
	if err != nil {
		return models.AgendaItem{}, err
	}
	return models.AgendaItem{
		ContactName: c.Name,
		Company:     c.Company,
		Phone:       c.Phone,
		Email:       c.Email,
		ContactType: models.ContactCall,
		Priority:    models.PriorityMedium,
	}, nil
}

// Agenda returns all items, newest first.
func (s *State) Agenda() []models.AgendaItem {
	return s.agenda.Get()
}

// GetAgendaItem looks up an item by id.
func (s *State) GetAgendaItem(id string) (models.AgendaItem, error) {
	a, ok := find(s.agenda.Get(), id, agendaID)
	if !ok {
		return models.AgendaItem{}, fmt.Errorf("agenda item %s: %w", id, ErrNotFound)
	}
	return a, nil
}

// ToggleAgendaDone flips the done flag and returns the updated item.
func (s *State) ToggleAgendaDone(id string) (models.AgendaItem, error) {
	var updated models.AgendaItem
	var found bool
	s.agenda.Update(func(list []models.AgendaItem) []models.AgendaItem {
		out, ok := replaced(list, id, agendaID, func(a models.AgendaItem) models.AgendaItem {
			a.Done = !a.Done
			updated = a
			return a
		})
		found = ok
		return out
	})
	if !found {
		return models.AgendaItem{}, fmt.Errorf("agenda item %s: %w", id, ErrNotFound)
	}
	return updated, nil
}

// DeleteAgendaItem removes an item.
func (s *State) DeleteAgendaItem(id string) error {
	var found bool
	s.agenda.Update(func(list []models.AgendaItem) []models.AgendaItem {
		out, ok := without(list, id, agendaID)
		found = ok
		return out
	})
	if !found {
		return fmt.Errorf("agenda item %s: %w", id, ErrNotFound)
	}
	return nil
}

// SearchAgenda filters by contact, related person, company, condominium,
// phone, email, notes and source.
func (s *State) SearchAgenda(query string) []models.AgendaItem {
	return filter(s.agenda.Get(), query, func(a models.AgendaItem) []string {
		return []string{a.ContactName, a.RelatedPerson, a.Company, a.Condominium, a.Phone, a.Email, a.Notes, a.Source}
	})
}
