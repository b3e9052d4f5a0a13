// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Provides client summary, follow-up suggestion and campaign planning prompts
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

type PromptHandlers struct {
	state *crm.State
}

func NewPromptHandlers(state *crm.State) *PromptHandlers {
	return &PromptHandlers{state: state}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(_ context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "client-summary":
		return h.getClientSummaryPrompt(arguments)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt()
	case "campaign-plan":
		return h.getCampaignPlanPrompt(arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getClientSummaryPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	clientID, ok := args["client_id"]
	if !ok {
		return nil, fmt.Errorf("client_id is required")
	}

	client, err := h.state.GetClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide a comprehensive summary of this client:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", client.Name))
	if client.Company != "" {
		promptText.WriteString(fmt.Sprintf("Company: %s\n", client.Company))
	}
	if client.Role != "" {
		promptText.WriteString(fmt.Sprintf("Role: %s\n", client.Role))
	}
	if client.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", client.Email))
	}
	if client.Phone != "" {
		promptText.WriteString(fmt.Sprintf("Phone: %s\n", client.Phone))
	}
	if client.Approach != "" {
		promptText.WriteString(fmt.Sprintf("Approach: %s\n", client.Approach))
	}

	if f, err := h.state.FollowupForClient(clientID); err == nil {
		promptText.WriteString("\nFollow-up:\n")
		for _, def := range crm.FollowupFields {
			if v := crm.FollowupFieldValue(f, def.Name); v != "" {
				promptText.WriteString(fmt.Sprintf("- %s: %s\n", def.Label, v))
			}
		}
	}

	history := h.state.ClientHistory(client.Name)
	if len(history) > 0 {
		promptText.WriteString(fmt.Sprintf("\nHistory (%d interactions):\n", len(history)))
		for _, e := range history {
			promptText.WriteString(fmt.Sprintf("- %s %s: %s\n", e.Date.Format("2006-01-02"), e.Kind, e.Description))
		}
	}

	promptText.WriteString("\nPlease analyze this client and provide:")
	promptText.WriteString("\n1. Where the client stands in the sales pipeline")
	promptText.WriteString("\n2. Recommendations for the next contact")
	promptText.WriteString("\n3. Risks that could stop the contract from closing")

	return userPrompt(fmt.Sprintf("Summary for client: %s", client.Name), promptText.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt() (*mcp.GetPromptResult, error) {
	var open []models.FollowupRecord
	for _, f := range h.state.Followups() {
		if !f.Closed() && f.DoesntWantProduct != models.Yes {
			open = append(open, f)
		}
	}

	var promptText strings.Builder
	promptText.WriteString("Here are the open follow-ups in the sales pipeline:\n\n")
	if len(open) == 0 {
		promptText.WriteString("(no open follow-ups)\n")
	}
	for _, f := range open {
		promptText.WriteString(fmt.Sprintf("- %s: invoice %s, proposal %s, presentation %s, will close %s, estimated %s",
			f.ClientName,
			crm.FollowupFieldValue(f, "sentInvoice"),
			crm.FollowupFieldValue(f, "proposalReady"),
			crm.FollowupFieldValue(f, "clientPresentation"),
			crm.FollowupFieldValue(f, "willClose"),
			crm.FormatBRL(f.EstimatedValue.Float())))
		if f.ReturnDays != "" {
			promptText.WriteString(fmt.Sprintf(", return in %s days", f.ReturnDays))
		}
		promptText.WriteString("\n")
	}

	m := h.state.Metrics()
	promptText.WriteString(fmt.Sprintf("\nConversion rate so far: %s of %d indications.\n",
		crm.FormatPercent(m.ConversionRate), m.TotalIndications))
	promptText.WriteString("\nSuggest which clients to contact this week, in priority order, and what to say to each one.")

	return userPrompt("Follow-up suggestions for open deals", promptText.String()), nil
}

func (h *PromptHandlers) getCampaignPlanPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	campaignID, ok := args["campaign_id"]
	if !ok {
		return nil, fmt.Errorf("campaign_id is required")
	}

	campaign, err := h.state.GetCampaign(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please draft a weekly outreach plan for this campaign:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", campaign.Name))
	promptText.WriteString(fmt.Sprintf("Status: %s\n", campaign.Status))
	if campaign.Product != "" {
		promptText.WriteString(fmt.Sprintf("Product: %s\n", campaign.Product))
	}
	if campaign.StartDate != "" || campaign.EndDate != "" {
		promptText.WriteString(fmt.Sprintf("Period: %s to %s\n", campaign.StartDate, campaign.EndDate))
	}
	if campaign.TargetAudience != "" {
		promptText.WriteString(fmt.Sprintf("Target audience: %s\n", campaign.TargetAudience))
	}
	promptText.WriteString(fmt.Sprintf("Conversion goal: %g\n", campaign.ConversionGoal.Float()))
	promptText.WriteString(fmt.Sprintf("Budget: %s\n", crm.FormatBRL(campaign.Budget.Float())))
	if channels := channelNames(campaign.Channels); len(channels) > 0 {
		promptText.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(channels, ", ")))
	}
	if campaign.Description != "" {
		promptText.WriteString(fmt.Sprintf("\nDescription: %s\n", campaign.Description))
	}

	var linked []models.Strategy
	for _, st := range h.state.Strategies() {
		if st.CampaignID == campaign.ID {
			linked = append(linked, st)
		}
	}
	if len(linked) > 0 {
		promptText.WriteString("\nStrategies already planned:\n")
		for _, st := range linked {
			promptText.WriteString(fmt.Sprintf("- %s: %s (%s)\n", st.WeekRange, st.Group, st.Names))
		}
	}

	promptText.WriteString("\nPropose the groups to approach each week, the channel to use and a short message for each.")

	return userPrompt(fmt.Sprintf("Outreach plan for campaign: %s", campaign.Name), promptText.String()), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
