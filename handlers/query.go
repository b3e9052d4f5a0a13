// ABOUTME: Universal query tool handler
// ABOUTME: Implements search plus key-value filtering across every CRM collection
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

type QueryHandlers struct {
	state *crm.State
}

func NewQueryHandlers(state *crm.State) *QueryHandlers {
	return &QueryHandlers{state: state}
}

type QueryCRMInput struct {
	EntityType string                 `json:"entity_type" jsonschema:"Type of entity to query (client, agenda, followup, campaign, strategy, analysis)"`
	Query      string                 `json:"query,omitempty" jsonschema:"Search text"`
	Filters    map[string]interface{} `json:"filters,omitempty" jsonschema:"Additional filters as key-value pairs"`
	Limit      int                    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string        `json:"entity_type"`
	Results    []interface{} `json:"results"`
	Count      int           `json:"count"`
}

func (h *QueryHandlers) QueryCRM(_ context.Context, _ *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	var results []interface{}

	switch input.EntityType {
	case "client":
		for _, c := range h.state.SearchClients(input.Query) {
			if matches(input.Filters, "company", c.Company) {
				results = append(results, clientToOutput(c))
			}
		}
	case "agenda":
		for _, a := range h.state.SearchAgenda(input.Query) {
			if matches(input.Filters, "priority", string(a.Priority)) &&
				matches(input.Filters, "contact_type", string(a.ContactType)) &&
				matchesBool(input.Filters, "done", a.Done) {
				results = append(results, agendaToOutput(a))
			}
		}
	case "followup":
		for _, f := range h.state.SearchFollowups(input.Query) {
			if followupMatches(input.Filters, f) {
				results = append(results, followupToOutput(f))
			}
		}
	case "campaign":
		for _, c := range h.state.SearchCampaigns(input.Query) {
			if matches(input.Filters, "status", string(c.Status)) &&
				matches(input.Filters, "product", string(c.Product)) {
				results = append(results, campaignToOutput(c))
			}
		}
	case "strategy":
		for _, st := range h.state.SearchStrategies(input.Query) {
			if matches(input.Filters, "product", string(st.Product)) &&
				matches(input.Filters, "campaign", st.Campaign) {
				results = append(results, strategyToOutput(st))
			}
		}
	case "analysis":
		for _, a := range h.state.Analyses() {
			if input.Query == "" || strings.Contains(strings.ToLower(a.FileName), strings.ToLower(input.Query)) {
				results = append(results, analysisToOutput(a))
			}
		}
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: client, agenda, followup, campaign, strategy, analysis)", input.EntityType)
	}

	results = limit(results, input.Limit)
	if results == nil {
		results = []interface{}{}
	}
	return nil, QueryCRMOutput{
		EntityType: input.EntityType,
		Results:    results,
		Count:      len(results),
	}, nil
}

// followupMatches treats every filter key as a follow-up field name.
func followupMatches(filters map[string]interface{}, f models.FollowupRecord) bool {
	for key := range filters {
		if _, ok := crm.LookupFollowupField(key); !ok {
			continue
		}
		if !matches(filters, key, crm.FollowupFieldValue(f, key)) {
			return false
		}
	}
	return true
}

// matches reports whether the filter named key is absent or equals value,
// ignoring case.
func matches(filters map[string]interface{}, key, value string) bool {
	want, ok := filters[key].(string)
	if !ok || want == "" {
		return true
	}
	return strings.EqualFold(want, value)
}

func matchesBool(filters map[string]interface{}, key string, value bool) bool {
	want, ok := filters[key].(bool)
	if !ok {
		return true
	}
	return want == value
}
