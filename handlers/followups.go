// ABOUTME: Follow-up MCP tool handlers
// ABOUTME: Implements find_followups, update_followup_field and get_metrics tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

type FollowupHandlers struct {
	state *crm.State
}

func NewFollowupHandlers(state *crm.State) *FollowupHandlers {
	return &FollowupHandlers{state: state}
}

type FindFollowupsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Search text matched against client name, account type and feedback"`
	ClientID string `json:"client_id,omitempty" jsonschema:"Return only the record of this client"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FollowupOutput struct {
	ID              string            `json:"id"`
	ClientID        string            `json:"client_id"`
	ClientName      string            `json:"client_name"`
	Fields          map[string]string `json:"fields"`
	CommissionValue float64           `json:"commission_value"`
	Closed          bool              `json:"closed"`
}

type FindFollowupsOutput struct {
	Followups []FollowupOutput `json:"followups"`
}

func (h *FollowupHandlers) FindFollowups(_ context.Context, _ *mcp.CallToolRequest, input FindFollowupsInput) (*mcp.CallToolResult, FindFollowupsOutput, error) {
	var records []models.FollowupRecord
	if input.ClientID != "" {
		f, err := h.state.FollowupForClient(input.ClientID)
		if err != nil {
			return nil, FindFollowupsOutput{}, err
		}
		records = []models.FollowupRecord{f}
	} else {
		records = limit(h.state.SearchFollowups(input.Query), input.Limit)
	}

	out := FindFollowupsOutput{Followups: make([]FollowupOutput, len(records))}
	for i, f := range records {
		out.Followups[i] = followupToOutput(f)
	}
	return nil, out, nil
}

type UpdateFollowupFieldInput struct {
	ID    string `json:"id" jsonschema:"Follow-up record ID (required)"`
	Field string `json:"field" jsonschema:"Field name such as sentInvoice, willClose or estimatedValue (required)"`
	Value string `json:"value" jsonschema:"New value; SIM/NÃO for flags, SIM/MORNO/NÃO for willClose"`
}

func (h *FollowupHandlers) UpdateFollowupField(_ context.Context, _ *mcp.CallToolRequest, input UpdateFollowupFieldInput) (*mcp.CallToolResult, FollowupOutput, error) {
	if input.ID == "" {
		return nil, FollowupOutput{}, fmt.Errorf("id is required")
	}
	if input.Field == "" {
		return nil, FollowupOutput{}, fmt.Errorf("field is required")
	}

	f, err := h.state.UpdateFollowupField(input.ID, input.Field, input.Value)
	if err != nil {
		return nil, FollowupOutput{}, err
	}
	return nil, followupToOutput(f), nil
}

type GetMetricsInput struct{}

func (h *FollowupHandlers) GetMetrics(_ context.Context, _ *mcp.CallToolRequest, _ GetMetricsInput) (*mcp.CallToolResult, crm.Metrics, error) {
	return nil, h.state.Metrics(), nil
}

func followupToOutput(f models.FollowupRecord) FollowupOutput {
	fields := make(map[string]string, len(crm.FollowupFields))
	for _, def := range crm.FollowupFields {
		fields[def.Name] = crm.FollowupFieldValue(f, def.Name)
	}
	return FollowupOutput{
		ID:              f.ID,
		ClientID:        f.ClientID,
		ClientName:      f.ClientName,
		Fields:          fields,
		CommissionValue: f.CommissionValue(),
		Closed:          f.Closed(),
	}
}
