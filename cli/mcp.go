// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/handlers"
)

// NewMCPServer builds the MCP server with every tool, resource and prompt registered.
func NewMCPServer(state *crm.State, analyzer crm.Analyzer, logger *log.Logger, version string) *mcp.Server {
	clientHandlers := handlers.NewClientHandlers(state)
	agendaHandlers := handlers.NewAgendaHandlers(state)
	followupHandlers := handlers.NewFollowupHandlers(state)
	campaignHandlers := handlers.NewCampaignHandlers(state)
	analysisHandlers := handlers.NewAnalysisHandlers(state, analyzer)
	queryHandlers := handlers.NewQueryHandlers(state)
	vizHandlers := handlers.NewVizHandlers(state, logger)
	resourceHandlers := handlers.NewResourceHandlers(state)
	promptHandlers := handlers.NewPromptHandlers(state)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "salescrm",
		Version: version,
	}, nil)

	// Clients
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_client",
		Description: "Register a new client; a default follow-up record is created for it",
	}, clientHandlers.AddClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_clients",
		Description: "Search clients by any field",
	}, clientHandlers.FindClients)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_client",
		Description: "Delete a client; its follow-up record is kept",
	}, clientHandlers.DeleteClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "client_history",
		Description: "List agenda items and follow-ups whose contact name matches, newest first",
	}, clientHandlers.ClientHistory)

	// Agenda
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_agenda_item",
		Description: "Schedule an outreach action, optionally prefilled from a client",
	}, agendaHandlers.AddAgendaItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_agenda",
		Description: "List agenda items, optionally only those on one day",
	}, agendaHandlers.ListAgenda)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_agenda_item",
		Description: "Flip the done flag of an agenda item",
	}, agendaHandlers.ToggleAgendaItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_agenda_item",
		Description: "Delete an agenda item",
	}, agendaHandlers.DeleteAgendaItem)

	// Follow-ups
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_followups",
		Description: "Search follow-up records by client name, account type or feedback",
	}, followupHandlers.FindFollowups)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_followup_field",
		Description: "Set one field of a follow-up record",
	}, followupHandlers.UpdateFollowupField)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_metrics",
		Description: "Pipeline metrics: indications, closed contracts, conversion rate, estimated value and commission",
	}, followupHandlers.GetMetrics)

	// Campaigns and strategies
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_campaign",
		Description: "Create a campaign, or update it when id is given",
	}, campaignHandlers.SaveCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_campaigns",
		Description: "Search campaigns",
	}, campaignHandlers.FindCampaigns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_campaign",
		Description: "Delete a campaign",
	}, campaignHandlers.DeleteCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_strategy",
		Description: "Add a weekly outreach strategy, optionally linked to a campaign",
	}, campaignHandlers.AddStrategy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_strategies",
		Description: "Search weekly strategies",
	}, campaignHandlers.FindStrategies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_strategy",
		Description: "Delete a weekly strategy",
	}, campaignHandlers.DeleteStrategy)

	// Analyses
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_text",
		Description: "Run the AI analysis over a document's text and save the result",
	}, analysisHandlers.AnalyzeText)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_analyses",
		Description: "List saved analyses, newest first",
	}, analysisHandlers.ListAnalyses)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_crm",
		Description: "Universal query tool for flexible filtering across all CRM entity types (client, agenda, followup, campaign, strategy, analysis)",
	}, queryHandlers.QueryCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of campaigns, the pipeline, one client or everything",
	}, vizHandlers.GenerateGraph)

	// Resources
	for _, r := range []struct{ uri, name, desc string }{
		{"crm://clients", "clients", "Every registered client"},
		{"crm://followups", "followups", "The follow-up sheet"},
		{"crm://agenda", "agenda", "Scheduled outreach actions"},
		{"crm://campaigns", "campaigns", "Marketing campaigns"},
		{"crm://strategies", "strategies", "Weekly outreach strategies"},
		{"crm://metrics", "metrics", "Pipeline metrics"},
	} {
		server.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.desc,
			MIMEType:    "application/json",
		}, resourceHandlers.ReadResource)
	}

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "crm://clients/{id}",
		Name:        "client",
		Description: "One client with its follow-up record and history",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	// Prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "client-summary",
		Description: "Summarize a client and suggest the next contact",
		Arguments: []*mcp.PromptArgument{
			{Name: "client_id", Description: "Client ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-suggestions",
		Description: "Prioritize the open follow-ups for this week",
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "campaign-plan",
		Description: "Draft a weekly outreach plan for a campaign",
		Arguments: []*mcp.PromptArgument{
			{Name: "campaign_id", Description: "Campaign ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(state *crm.State, analyzer crm.Analyzer, logger *log.Logger, version string) error {
	logger.Info("Starting CRM MCP server")

	server := NewMCPServer(state, analyzer, logger, version)

	// Run server on stdio transport
	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
