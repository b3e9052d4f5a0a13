// ABOUTME: Analysis MCP tool handlers
// ABOUTME: Implements analyze_text and list_analyses tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

type AnalysisHandlers struct {
	state    *crm.State
	analyzer crm.Analyzer
}

func NewAnalysisHandlers(state *crm.State, analyzer crm.Analyzer) *AnalysisHandlers {
	return &AnalysisHandlers{state: state, analyzer: analyzer}
}

type AnalyzeTextInput struct {
	FileName string `json:"file_name" jsonschema:"Name recorded with the analysis (required)"`
	Content  string `json:"content" jsonschema:"Document text to analyze (required)"`
}

type AnalysisOutput struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (h *AnalysisHandlers) AnalyzeText(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeTextInput) (*mcp.CallToolResult, AnalysisOutput, error) {
	if input.FileName == "" {
		return nil, AnalysisOutput{}, fmt.Errorf("file_name is required")
	}
	if input.Content == "" {
		return nil, AnalysisOutput{}, fmt.Errorf("content is required")
	}

	a, err := h.state.Analyze(ctx, h.analyzer, input.FileName, input.Content)
	if err != nil {
		return nil, AnalysisOutput{}, err
	}
	return nil, analysisToOutput(a), nil
}

type ListAnalysesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type ListAnalysesOutput struct {
	Analyses []AnalysisOutput `json:"analyses"`
}

func (h *AnalysisHandlers) ListAnalyses(_ context.Context, _ *mcp.CallToolRequest, input ListAnalysesInput) (*mcp.CallToolResult, ListAnalysesOutput, error) {
	list := limit(h.state.Analyses(), input.Limit)
	out := ListAnalysesOutput{Analyses: make([]AnalysisOutput, len(list))}
	for i, a := range list {
		out.Analyses[i] = analysisToOutput(a)
	}
	return nil, out, nil
}

func analysisToOutput(a models.Analysis) AnalysisOutput {
	return AnalysisOutput{
		ID:        a.ID,
		FileName:  a.FileName,
		Content:   a.Content,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
