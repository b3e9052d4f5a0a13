// ABOUTME: Agenda MCP tool handlers
// ABOUTME: Implements add_agenda_item, list_agenda, toggle_agenda_item and delete_agenda_item tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/calendar"
	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

type AgendaHandlers struct {
	state *crm.State
}

func NewAgendaHandlers(state *crm.State) *AgendaHandlers {
	return &AgendaHandlers{state: state}
}

type AddAgendaItemInput struct {
	ContactName   string `json:"contact_name" jsonschema:"Name of the person to contact (required)"`
	ClientID      string `json:"client_id,omitempty" jsonschema:"Prefill contact details from this client"`
	RelatedPerson string `json:"related_person,omitempty" jsonschema:"Person who referred the contact"`
	RelationNote  string `json:"relation_note,omitempty" jsonschema:"How the contact relates to that person"`
	Company       string `json:"company,omitempty" jsonschema:"Company name"`
	Condominium   string `json:"condominium,omitempty" jsonschema:"Condominium name"`
	Phone         string `json:"phone,omitempty" jsonschema:"Phone number"`
	Email         string `json:"email,omitempty" jsonschema:"Email address"`
	Datetime      string `json:"datetime,omitempty" jsonschema:"When to contact (YYYY-MM-DDTHH:MM)"`
	ContactType   string `json:"contact_type,omitempty" jsonschema:"ligação, whatsapp, visita, reunião or email (default ligação)"`
	Priority      string `json:"priority,omitempty" jsonschema:"alta, média or baixa (default média)"`
	Source        string `json:"source,omitempty" jsonschema:"Where the lead came from"`
	Notes         string `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

type AgendaItemOutput struct {
	ID          string `json:"id"`
	ContactName string `json:"contact_name"`
	Company     string `json:"company,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Datetime    string `json:"datetime,omitempty"`
	ContactType string `json:"contact_type"`
	Priority    string `json:"priority"`
	Notes       string `json:"notes,omitempty"`
	Done        bool   `json:"done"`
}

func (h *AgendaHandlers) AddAgendaItem(_ context.Context, _ *mcp.CallToolRequest, input AddAgendaItemInput) (*mcp.CallToolResult, AgendaItemOutput, error) {
	item := models.AgendaItem{}
	if input.ClientID != "" {
		draft, err := h.state.AgendaDraftFromClient(input.ClientID)
		if err != nil {
			return nil, AgendaItemOutput{}, err
		}
		item = draft
	}

	overlay(&item.ContactName, input.ContactName)
	overlay(&item.RelatedPerson, input.RelatedPerson)
	overlay(&item.RelationNote, input.RelationNote)
	overlay(&item.Company, input.Company)
	overlay(&item.Condominium, input.Condominium)
	overlay(&item.Phone, input.Phone)
	overlay(&item.Email, input.Email)
	overlay(&item.Datetime, input.Datetime)
	overlay(&item.Source, input.Source)
	overlay(&item.Notes, input.Notes)
	if input.ContactType != "" {
		item.ContactType = models.ContactType(input.ContactType)
	}
	if input.Priority != "" {
		item.Priority = models.Priority(input.Priority)
	}

	if item.ContactName == "" {
		return nil, AgendaItemOutput{}, fmt.Errorf("contact_name is required")
	}

	created, err := h.state.AddAgendaItem(item)
	if err != nil {
		return nil, AgendaItemOutput{}, fmt.Errorf("failed to create agenda item: %w", err)
	}
	return nil, agendaToOutput(created), nil
}

type ListAgendaInput struct {
	Day   string `json:"day,omitempty" jsonschema:"Only items scheduled on this day (YYYY-MM-DD)"`
	Query string `json:"query,omitempty" jsonschema:"Search text"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type ListAgendaOutput struct {
	Items []AgendaItemOutput `json:"items"`
}

func (h *AgendaHandlers) ListAgenda(_ context.Context, _ *mcp.CallToolRequest, input ListAgendaInput) (*mcp.CallToolResult, ListAgendaOutput, error) {
	items := h.state.SearchAgenda(input.Query)

	if input.Day != "" {
		day, err := time.ParseInLocation("2006-01-02", input.Day, time.Local)
		if err != nil {
			return nil, ListAgendaOutput{}, fmt.Errorf("invalid day %q: %w", input.Day, err)
		}
		items = calendar.ItemsOn(items, day)
	}

	items = limit(items, input.Limit)
	out := ListAgendaOutput{Items: make([]AgendaItemOutput, len(items))}
	for i, item := range items {
		out.Items[i] = agendaToOutput(item)
	}
	return nil, out, nil
}

type ToggleAgendaItemInput struct {
	ID string `json:"id" jsonschema:"Agenda item ID (required)"`
}

func (h *AgendaHandlers) ToggleAgendaItem(_ context.Context, _ *mcp.CallToolRequest, input ToggleAgendaItemInput) (*mcp.CallToolResult, AgendaItemOutput, error) {
	if input.ID == "" {
		return nil, AgendaItemOutput{}, fmt.Errorf("id is required")
	}
	item, err := h.state.ToggleAgendaDone(input.ID)
	if err != nil {
		return nil, AgendaItemOutput{}, err
	}
	return nil, agendaToOutput(item), nil
}

func (h *AgendaHandlers) DeleteAgendaItem(_ context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.state.DeleteAgendaItem(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

func agendaToOutput(a models.AgendaItem) AgendaItemOutput {
	return AgendaItemOutput{
		ID:          a.ID,
		ContactName: a.ContactName,
		Company:     a.Company,
		Phone:       a.Phone,
		Email:       a.Email,
		Datetime:    a.Datetime,
		ContactType: string(a.ContactType),
		Priority:    string(a.Priority),
		Notes:       a.Notes,
		Done:        a.Done,
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
