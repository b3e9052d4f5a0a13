// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to clients, follow-ups, agenda, campaigns and metrics via crm:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
)

type ResourceHandlers struct {
	state *crm.State
}

func NewResourceHandlers(state *crm.State) *ResourceHandlers {
	return &ResourceHandlers{state: state}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(_ context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	path := strings.TrimPrefix(uri, "crm://")
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "clients":
		if len(parts) == 1 {
			return jsonResource(uri, h.state.Clients())
		}
		return h.readClient(uri, parts[1])

	case "followups":
		return jsonResource(uri, h.state.Followups())

	case "agenda":
		return jsonResource(uri, h.state.Agenda())

	case "campaigns":
		return jsonResource(uri, h.state.Campaigns())

	case "strategies":
		return jsonResource(uri, h.state.Strategies())

	case "metrics":
		return jsonResource(uri, h.state.Metrics())

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

// readClient bundles a client with its follow-up record and history.
func (h *ResourceHandlers) readClient(uri, id string) (*mcp.ReadResourceResult, error) {
	client, err := h.state.GetClient(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	data := struct {
		Client   interface{}        `json:"client"`
		Followup interface{}        `json:"followup,omitempty"`
		History  []crm.HistoryEntry `json:"history"`
	}{
		Client:  client,
		History: h.state.ClientHistory(client.Name),
	}
	if f, err := h.state.FollowupForClient(id); err == nil {
		data.Followup = f
	}
	return jsonResource(uri, data)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
