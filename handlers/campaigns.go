// ABOUTME: Campaign and strategy MCP tool handlers
// ABOUTME: Implements save/find/delete tools for campaigns and weekly strategies
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

type CampaignHandlers struct {
	state *crm.State
}

func NewCampaignHandlers(state *crm.State) *CampaignHandlers {
	return &CampaignHandlers{state: state}
}

type SaveCampaignInput struct {
	ID             string   `json:"id,omitempty" jsonschema:"Campaign ID; omit to create a new campaign"`
	Name           string   `json:"name" jsonschema:"Campaign name (required)"`
	Description    string   `json:"description,omitempty" jsonschema:"What the campaign is about"`
	StartDate      string   `json:"start_date,omitempty" jsonschema:"Start date (YYYY-MM-DD)"`
	EndDate        string   `json:"end_date,omitempty" jsonschema:"End date (YYYY-MM-DD)"`
	Product        string   `json:"product,omitempty" jsonschema:"RECIEE, RECIAG, GD, ML or ELETROPOSTO"`
	TargetAudience string   `json:"target_audience,omitempty" jsonschema:"Who the campaign targets"`
	ConversionGoal float64  `json:"conversion_goal,omitempty" jsonschema:"Target number of conversions"`
	Budget         float64  `json:"budget,omitempty" jsonschema:"Budget in BRL"`
	Channels       []string `json:"channels,omitempty" jsonschema:"email, reuniao, whatsapp, telefonema or visita"`
	Status         string   `json:"status,omitempty" jsonschema:"Planejada, Ativa, Pausada or Finalizada"`
	Notes          string   `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

type CampaignOutput struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	Product        string   `json:"product,omitempty"`
	ConversionGoal float64  `json:"conversion_goal"`
	Budget         float64  `json:"budget"`
	Channels       []string `json:"channels"`
	Status         string   `json:"status"`
}

func (h *CampaignHandlers) SaveCampaign(_ context.Context, _ *mcp.CallToolRequest, input SaveCampaignInput) (*mcp.CallToolResult, CampaignOutput, error) {
	if input.Name == "" {
		return nil, CampaignOutput{}, fmt.Errorf("name is required")
	}

	saved, err := h.state.SaveCampaign(models.Campaign{
		ID:             input.ID,
		Name:           input.Name,
		Description:    input.Description,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Product:        models.Product(input.Product),
		TargetAudience: input.TargetAudience,
		ConversionGoal: models.Number(input.ConversionGoal),
		Budget:         models.Number(input.Budget),
		Channels:       channelSet(input.Channels),
		Status:         models.CampaignStatus(input.Status),
		Notes:          input.Notes,
	})
	if err != nil {
		return nil, CampaignOutput{}, fmt.Errorf("failed to save campaign: %w", err)
	}
	return nil, campaignToOutput(saved), nil
}

type FindInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search text"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindCampaignsOutput struct {
	Campaigns []CampaignOutput `json:"campaigns"`
}

func (h *CampaignHandlers) FindCampaigns(_ context.Context, _ *mcp.CallToolRequest, input FindInput) (*mcp.CallToolResult, FindCampaignsOutput, error) {
	campaigns := limit(h.state.SearchCampaigns(input.Query), input.Limit)
	out := FindCampaignsOutput{Campaigns: make([]CampaignOutput, len(campaigns))}
	for i, c := range campaigns {
		out.Campaigns[i] = campaignToOutput(c)
	}
	return nil, out, nil
}

func (h *CampaignHandlers) DeleteCampaign(_ context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.state.DeleteCampaign(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

type AddStrategyInput struct {
	WeekRange   string   `json:"week_range" jsonschema:"Week the strategy covers, e.g. 06/01 a 10/01 (required)"`
	Group       string   `json:"group,omitempty" jsonschema:"Target group"`
	Names       string   `json:"names,omitempty" jsonschema:"People to approach"`
	Product     string   `json:"product,omitempty" jsonschema:"RECIEE, RECIAG, GD, ML or ELETROPOSTO"`
	Campaign    string   `json:"campaign,omitempty" jsonschema:"Campaign ID, Outra or a free-text campaign name"`
	Channels    []string `json:"channels,omitempty" jsonschema:"email, reuniao, whatsapp, telefonema or visita"`
	Indications string   `json:"indications,omitempty" jsonschema:"Referrals gathered"`
	Notes       string   `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

type StrategyOutput struct {
	ID          string   `json:"id"`
	WeekRange   string   `json:"week_range"`
	Group       string   `json:"group,omitempty"`
	Names       string   `json:"names,omitempty"`
	Product     string   `json:"product,omitempty"`
	Campaign    string   `json:"campaign,omitempty"`
	Channels    []string `json:"channels"`
	Indications string   `json:"indications,omitempty"`
}

func (h *CampaignHandlers) AddStrategy(_ context.Context, _ *mcp.CallToolRequest, input AddStrategyInput) (*mcp.CallToolResult, StrategyOutput, error) {
	if input.WeekRange == "" {
		return nil, StrategyOutput{}, fmt.Errorf("week_range is required")
	}

	st, err := h.state.AddStrategy(models.Strategy{
		WeekRange:   input.WeekRange,
		Group:       input.Group,
		Names:       input.Names,
		Product:     models.Product(input.Product),
		CampaignID:  input.Campaign,
		Channels:    channelSet(input.Channels),
		Indications: input.Indications,
		Notes:       input.Notes,
	})
	if err != nil {
		return nil, StrategyOutput{}, fmt.Errorf("failed to create strategy: %w", err)
	}
	return nil, strategyToOutput(st), nil
}

type FindStrategiesOutput struct {
	Strategies []StrategyOutput `json:"strategies"`
}

func (h *CampaignHandlers) FindStrategies(_ context.Context, _ *mcp.CallToolRequest, input FindInput) (*mcp.CallToolResult, FindStrategiesOutput, error) {
	strategies := limit(h.state.SearchStrategies(input.Query), input.Limit)
	out := FindStrategiesOutput{Strategies: make([]StrategyOutput, len(strategies))}
	for i, st := range strategies {
		out.Strategies[i] = strategyToOutput(st)
	}
	return nil, out, nil
}

func (h *CampaignHandlers) DeleteStrategy(_ context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.state.DeleteStrategy(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

func channelSet(names []string) models.ChannelSet {
	channels := make([]models.Channel, len(names))
	for i, n := range names {
		channels[i] = models.Channel(n)
	}
	return models.NewChannelSet(channels...)
}

func channelNames(set models.ChannelSet) []string {
	active := set.Active()
	names := make([]string, len(active))
	for i, c := range active {
		names[i] = string(c)
	}
	return names
}

func campaignToOutput(c models.Campaign) CampaignOutput {
	return CampaignOutput{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		Product:        string(c.Product),
		ConversionGoal: c.ConversionGoal.Float(),
		Budget:         c.Budget.Float(),
		Channels:       channelNames(c.Channels),
		Status:         string(c.Status),
	}
}

func strategyToOutput(st models.Strategy) StrategyOutput {
	return StrategyOutput{
		ID:          st.ID,
		WeekRange:   st.WeekRange,
		Group:       st.Group,
		Names:       st.Names,
		Product:     string(st.Product),
		Campaign:    st.Campaign,
		Channels:    channelNames(st.Channels),
		Indications: st.Indications,
	}
}
