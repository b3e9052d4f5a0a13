// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/viz"
)

type VizHandlers struct {
	generator *viz.GraphGenerator
}

func NewVizHandlers(state *crm.State, logger *log.Logger) *VizHandlers {
	return &VizHandlers{generator: viz.NewGraphGenerator(state, logger)}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: campaigns, pipeline, client or complete"`
	EntityID string `json:"entity_id,omitempty" jsonschema:"Client ID (required for client graphs)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(_ context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}
	if input.Type == viz.GraphClient && input.EntityID == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("entity_id required for client graph")
	}

	dot, err := h.generator.Generate(input.Type, input.EntityID)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	// Count nodes and edges for stats
	nodeCount := strings.Count(dot, "label=")
	edgeCount := strings.Count(dot, "->")

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}, nil
}
