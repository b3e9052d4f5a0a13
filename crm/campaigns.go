// ABOUTME: Marketing campaigns: create, edit in place, delete and search
// ABOUTME: Campaigns are referenced by weekly strategies
package crm

import (
	"fmt"

	"github.com/sustentalski/salescrm/models"
)

func campaignID(c models.Campaign) string { return c.ID }

// AddCampaign validates and stores a new campaign first in the list.
func (s *State) AddCampaign(c models.Campaign) (models.Campaign, error) {
	created, err := models.NewCampaign(c, s.stamp())
	if err != nil {
		return models.Campaign{}, fmt.Errorf("invalid campaign: %w", err)
	}
	s.campaigns.Update(func(list []models.Campaign) []models.Campaign {
		return prepend(list, created)
	})
	return created, nil
}

// UpdateCampaign replaces the campaign with c.ID, keeping its position,
// id and creation time.
func (s *State) UpdateCampaign(c models.Campaign) (models.Campaign, error) {
	if c.Name == "" {
		return models.Campaign{}, fmt.Errorf("invalid campaign: %w", &models.RequiredFieldError{Field: "name"})
	}
	if c.Status == "" {
		c.Status = models.StatusPlanned
	}
	if c.Channels == nil {
		c.Channels = models.NewChannelSet()
	}

	var updated models.Campaign
	var found bool
	s.campaigns.Update(func(list []models.Campaign) []models.Campaign {
		out, ok := replaced(list, c.ID, campaignID, func(old models.Campaign) models.Campaign {
			c.CreatedAt = old.CreatedAt
			updated = c
			return c
		})
		found = ok
		return out
	})
	if !found {
		return models.Campaign{}, fmt.Errorf("campaign %s: %w", c.ID, ErrNotFound)
	}
	return updated, nil
}

// Campaigns returns all campaigns, newest first.
func (s *State) Campaigns() []models.Campaign {
	return s.campaigns.Get()
}

// GetCampaign looks up a campaign by id.
func (s *State) GetCampaign(id string) (models.Campaign, error) {
	c, ok := find(s.campaigns.Get(), id, campaignID)
	if !ok {
		return models.Campaign{}, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// DeleteCampaign removes a campaign. Strategies keep the resolved name.
func (s *State) DeleteCampaign(id string) error {
	var found bool
	s.campaigns.Update(func(list []models.Campaign) []models.Campaign {
		out, ok := without(list, id, campaignID)
		found = ok
		return out
	})
	if !found {
		return fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	return nil
}

// SearchCampaigns filters by name, description, product, audience, status and notes.
func (s *State) SearchCampaigns(query string) []models.Campaign {
	return filter(s.campaigns.Get(), query, func(c models.Campaign) []string {
		return []string{c.Name, c.Description, string(c.Product), c.TargetAudience, string(c.Status), c.Notes}
	})
}

// SaveCampaign creates c when it has no id and edits it in place otherwise.
func (s *State) SaveCampaign(c models.Campaign) (models.Campaign, error) {
	if c.ID == "" {
		return s.AddCampaign(c)
	}
	return s.UpdateCampaign(c)
}
