// ABOUTME: Client MCP tool handlers
// ABOUTME: Implements add_client, find_clients, delete_client and client_history tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

type ClientHandlers struct {
	state *crm.State
}

func NewClientHandlers(state *crm.State) *ClientHandlers {
	return &ClientHandlers{state: state}
}

type AddClientInput struct {
	Name          string `json:"name" jsonschema:"Client name (required)"`
	Address       string `json:"address,omitempty" jsonschema:"Street address"`
	Phone         string `json:"phone,omitempty" jsonschema:"Phone number"`
	Email         string `json:"email,omitempty" jsonschema:"Email address"`
	SocialHandles string `json:"social_handles,omitempty" jsonschema:"Social network handles"`
	Birthday      string `json:"birthday,omitempty" jsonschema:"Birthday (YYYY-MM-DD)"`
	Company       string `json:"company,omitempty" jsonschema:"Company name"`
	Role          string `json:"role,omitempty" jsonschema:"Role at the company"`
	Approach      string `json:"approach,omitempty" jsonschema:"How the client was approached"`
}

type ClientOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Company   string `json:"company,omitempty"`
	Role      string `json:"role,omitempty"`
	Approach  string `json:"approach,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (h *ClientHandlers) AddClient(_ context.Context, _ *mcp.CallToolRequest, input AddClientInput) (*mcp.CallToolResult, ClientOutput, error) {
	if input.Name == "" {
		return nil, ClientOutput{}, fmt.Errorf("name is required")
	}

	c, err := h.state.AddClient(models.Client{
		Name:          input.Name,
		Address:       input.Address,
		Phone:         input.Phone,
		Email:         input.Email,
		SocialHandles: input.SocialHandles,
		Birthday:      input.Birthday,
		Company:       input.Company,
		Role:          input.Role,
		Approach:      input.Approach,
	})
	if err != nil {
		return nil, ClientOutput{}, fmt.Errorf("failed to create client: %w", err)
	}
	return nil, clientToOutput(c), nil
}

type FindClientsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search text matched against every client field"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindClientsOutput struct {
	Clients []ClientOutput `json:"clients"`
}

func (h *ClientHandlers) FindClients(_ context.Context, _ *mcp.CallToolRequest, input FindClientsInput) (*mcp.CallToolResult, FindClientsOutput, error) {
	clients := limit(h.state.SearchClients(input.Query), input.Limit)

	result := make([]ClientOutput, len(clients))
	for i, c := range clients {
		result[i] = clientToOutput(c)
	}
	return nil, FindClientsOutput{Clients: result}, nil
}

type DeleteInput struct {
	ID string `json:"id" jsonschema:"Record ID (required)"`
}

type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (h *ClientHandlers) DeleteClient(_ context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.state.DeleteClient(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

type ClientHistoryInput struct {
	Name string `json:"name" jsonschema:"Client name or part of it (required)"`
}

type HistoryOutput struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Date        string `json:"date"`
	RefID       string `json:"ref_id"`
}

type ClientHistoryOutput struct {
	Entries []HistoryOutput `json:"entries"`
}

func (h *ClientHandlers) ClientHistory(_ context.Context, _ *mcp.CallToolRequest, input ClientHistoryInput) (*mcp.CallToolResult, ClientHistoryOutput, error) {
	if input.Name == "" {
		return nil, ClientHistoryOutput{}, fmt.Errorf("name is required")
	}
	entries := h.state.ClientHistory(input.Name)
	out := ClientHistoryOutput{Entries: make([]HistoryOutput, len(entries))}
	for i, e := range entries {
		out.Entries[i] = HistoryOutput{
			Kind:        e.Kind,
			Description: e.Description,
			Date:        e.Date.Format("2006-01-02T15:04"),
			RefID:       e.RefID,
		}
	}
	return nil, out, nil
}

func clientToOutput(c models.Client) ClientOutput {
	return ClientOutput{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Company:   c.Company,
		Role:      c.Role,
		Approach:  c.Approach,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func limit[T any](items []T, n int) []T {
	if n <= 0 {
		n = 10
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
