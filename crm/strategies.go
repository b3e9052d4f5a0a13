// ABOUTME: Weekly outreach strategies linked to campaigns
// ABOUTME: Campaign references resolve to the campaign name at creation time
package crm

import (
	"fmt"

	"github.com/sustentalski/salescrm/models"
)

// OtherCampaign marks a strategy whose campaign is not in the list.
const OtherCampaign = "Outra"

func strategyID(st models.Strategy) string { return st.ID }

// AddStrategy validates and stores a strategy first in the list. CampaignID
// may be a campaign id, OtherCampaign or free text; the stored campaign name
// is the matching campaign's name, otherwise the reference itself.
func (s *State) AddStrategy(st models.Strategy) (models.Strategy, error) {
	created, err := models.NewStrategy(st, s.stamp())
	if err != nil {
		return models.Strategy{}, fmt.Errorf("invalid strategy: %w", err)
	}
	created.Campaign = s.resolveCampaignName(created.CampaignID)

	s.strategies.Update(func(list []models.Strategy) []models.Strategy {
		return prepend(list, created)
	})
	return created, nil
}

func (s *State) resolveCampaignName(ref string) string {
	if c, ok := find(s.campaigns.Get(), ref, campaignID); ok {
		return c.Name
	}
	return ref
}

// Strategies returns all strategies, newest first.
func (s *State) Strategies() []models.Strategy {
	return s.strategies.Get()
}

// DeleteStrategy removes a strategy.
func (s *State) DeleteStrategy(id string) error {
	var found bool
	s.strategies.Update(func(list []models.Strategy) []models.Strategy {
		out, ok := without(list, id, strategyID)
		found = ok
		return out
	})
	if !found {
		return fmt.Errorf("strategy %s: %w", id, ErrNotFound)
	}
	return nil
}

// SearchStrategies filters by week, group, names, product, campaign,
// indications and notes.
func (s *State) SearchStrategies(query string) []models.Strategy {
	return filter(s.strategies.Get(), query, func(st models.Strategy) []string {
		return []string{st.WeekRange, st.Group, st.Names, string(st.Product), st.Campaign, st.Indications, st.Notes}
	})
}
