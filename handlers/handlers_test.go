// ABOUTME: MCP handler test suite
// ABOUTME: Exercises tools, resources and prompts over a state backed by in-memory SQLite
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/models"
)

func setupTestState(t *testing.T) *crm.State {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	if err := db.InitSchema(database); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	return crm.Open(db.NewKVStore(database), crm.WithLogger(log.New(io.Discard)))
}

type cannedAnalyzer struct{ text string }

func (a cannedAnalyzer) Analyze(context.Context, string, string) (string, error) {
	return a.text, nil
}

func addClient(t *testing.T, state *crm.State, name, company string) ClientOutput {
	t.Helper()
	h := NewClientHandlers(state)
	_, out, err := h.AddClient(context.Background(), nil, AddClientInput{Name: name, Company: company, Phone: "11 99999-0000"})
	if err != nil {
		t.Fatalf("AddClient failed: %v", err)
	}
	return out
}

func TestAddClientProvisionsFollowup(t *testing.T) {
	state := setupTestState(t)
	client := addClient(t, state, "Ana Silva", "Solar SA")

	if client.ID == "" {
		t.Fatal("Expected client ID to be set")
	}

	fh := NewFollowupHandlers(state)
	_, out, err := fh.FindFollowups(context.Background(), nil, FindFollowupsInput{ClientID: client.ID})
	if err != nil {
		t.Fatalf("FindFollowups failed: %v", err)
	}
	if len(out.Followups) != 1 {
		t.Fatalf("Expected 1 follow-up, got %d", len(out.Followups))
	}
	f := out.Followups[0]
	if f.ClientName != "Ana Silva" {
		t.Errorf("Expected client name Ana Silva, got %s", f.ClientName)
	}
	if f.Fields["sentInvoice"] != "NÃO" || f.Fields["willClose"] != "NÃO" {
		t.Errorf("Expected default NÃO flags, got %v", f.Fields)
	}
	if f.Fields["commissionPercent"] != "10" {
		t.Errorf("Expected default commission 10, got %s", f.Fields["commissionPercent"])
	}
}

func TestAddClientRequiresName(t *testing.T) {
	state := setupTestState(t)
	h := NewClientHandlers(state)

	_, _, err := h.AddClient(context.Background(), nil, AddClientInput{Email: "x@y.com"})
	if err == nil {
		t.Fatal("Expected error for missing name")
	}
}

func TestFindAndDeleteClient(t *testing.T) {
	state := setupTestState(t)
	h := NewClientHandlers(state)
	ana := addClient(t, state, "Ana Silva", "Solar SA")
	addClient(t, state, "Bruno Costa", "Vento Ltda")

	_, found, err := h.FindClients(context.Background(), nil, FindClientsInput{Query: "solar"})
	if err != nil {
		t.Fatalf("FindClients failed: %v", err)
	}
	if len(found.Clients) != 1 || found.Clients[0].ID != ana.ID {
		t.Fatalf("Expected only Ana, got %+v", found.Clients)
	}

	_, del, err := h.DeleteClient(context.Background(), nil, DeleteInput{ID: ana.ID})
	if err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}
	if !del.Deleted {
		t.Error("Expected deleted to be true")
	}

	if _, _, err := h.DeleteClient(context.Background(), nil, DeleteInput{ID: ana.ID}); err == nil {
		t.Error("Expected error deleting a missing client")
	}

	// The follow-up record outlives the client.
	if len(state.Followups()) != 2 {
		t.Errorf("Expected 2 follow-ups after delete, got %d", len(state.Followups()))
	}
}

func TestAgendaTools(t *testing.T) {
	state := setupTestState(t)
	client := addClient(t, state, "Ana Silva", "Solar SA")
	h := NewAgendaHandlers(state)
	ctx := context.Background()

	_, item, err := h.AddAgendaItem(ctx, nil, AddAgendaItemInput{ClientID: client.ID, Datetime: "2025-01-15T14:00"})
	if err != nil {
		t.Fatalf("AddAgendaItem failed: %v", err)
	}
	if item.ContactName != "Ana Silva" || item.Company != "Solar SA" {
		t.Errorf("Expected details prefilled from client, got %+v", item)
	}
	if item.ContactType != "ligação" || item.Priority != "média" {
		t.Errorf("Expected default contact type and priority, got %s/%s", item.ContactType, item.Priority)
	}

	if _, _, err := h.AddAgendaItem(ctx, nil, AddAgendaItemInput{ContactName: "Carla", Datetime: "2025-01-15T09:00"}); err != nil {
		t.Fatalf("AddAgendaItem failed: %v", err)
	}
	if _, _, err := h.AddAgendaItem(ctx, nil, AddAgendaItemInput{ContactName: "Davi", Datetime: "2025-01-16T09:00"}); err != nil {
		t.Fatalf("AddAgendaItem failed: %v", err)
	}

	_, day, err := h.ListAgenda(ctx, nil, ListAgendaInput{Day: "2025-01-15"})
	if err != nil {
		t.Fatalf("ListAgenda failed: %v", err)
	}
	if len(day.Items) != 2 {
		t.Fatalf("Expected 2 items on the day, got %d", len(day.Items))
	}
	if day.Items[0].ContactName != "Carla" {
		t.Errorf("Expected earliest item first, got %s", day.Items[0].ContactName)
	}

	if _, _, err := h.ListAgenda(ctx, nil, ListAgendaInput{Day: "15/01/2025"}); err == nil {
		t.Error("Expected error for malformed day")
	}

	_, toggled, err := h.ToggleAgendaItem(ctx, nil, ToggleAgendaItemInput{ID: item.ID})
	if err != nil {
		t.Fatalf("ToggleAgendaItem failed: %v", err)
	}
	if !toggled.Done {
		t.Error("Expected item to be done after toggle")
	}

	if _, _, err := h.DeleteAgendaItem(ctx, nil, DeleteInput{ID: item.ID}); err != nil {
		t.Fatalf("DeleteAgendaItem failed: %v", err)
	}
	if len(state.Agenda()) != 2 {
		t.Errorf("Expected 2 agenda items left, got %d", len(state.Agenda()))
	}
}

func TestAddAgendaItemRequiresContactName(t *testing.T) {
	state := setupTestState(t)
	h := NewAgendaHandlers(state)

	if _, _, err := h.AddAgendaItem(context.Background(), nil, AddAgendaItemInput{Notes: "call back"}); err == nil {
		t.Fatal("Expected error for missing contact name")
	}
}

func TestUpdateFollowupFieldAndMetrics(t *testing.T) {
	state := setupTestState(t)
	client := addClient(t, state, "Ana Silva", "")
	addClient(t, state, "Bruno Costa", "")
	h := NewFollowupHandlers(state)
	ctx := context.Background()

	f, err := state.FollowupForClient(client.ID)
	if err != nil {
		t.Fatalf("FollowupForClient failed: %v", err)
	}

	if _, _, err := h.UpdateFollowupField(ctx, nil, UpdateFollowupFieldInput{ID: f.ID, Field: "signedContract", Value: "SIM"}); err != nil {
		t.Fatalf("UpdateFollowupField failed: %v", err)
	}
	_, updated, err := h.UpdateFollowupField(ctx, nil, UpdateFollowupFieldInput{ID: f.ID, Field: "estimatedValue", Value: "1500"})
	if err != nil {
		t.Fatalf("UpdateFollowupField failed: %v", err)
	}
	if !updated.Closed {
		t.Error("Expected record to be closed")
	}
	if updated.CommissionValue != 150 {
		t.Errorf("Expected commission value 150, got %v", updated.CommissionValue)
	}

	if _, _, err := h.UpdateFollowupField(ctx, nil, UpdateFollowupFieldInput{ID: f.ID, Field: "willClose", Value: "TALVEZ"}); err == nil {
		t.Error("Expected error for value outside the options")
	}
	if _, _, err := h.UpdateFollowupField(ctx, nil, UpdateFollowupFieldInput{ID: f.ID, Field: "color", Value: "blue"}); err == nil {
		t.Error("Expected error for unknown field")
	}

	_, m, err := h.GetMetrics(ctx, nil, GetMetricsInput{})
	if err != nil {
		t.Fatalf("GetMetrics failed: %v", err)
	}
	if m.TotalIndications != 2 || m.ClosedCount != 1 {
		t.Errorf("Expected 2 indications and 1 closed, got %d/%d", m.TotalIndications, m.ClosedCount)
	}
	if m.ConversionRate != 50 {
		t.Errorf("Expected conversion rate 50, got %v", m.ConversionRate)
	}
	if m.TotalCommission != 150 {
		t.Errorf("Expected total commission 150, got %v", m.TotalCommission)
	}
}

func TestCampaignAndStrategyTools(t *testing.T) {
	state := setupTestState(t)
	h := NewCampaignHandlers(state)
	ctx := context.Background()

	_, created, err := h.SaveCampaign(ctx, nil, SaveCampaignInput{
		Name:     "Verão Solar",
		Product:  "GD",
		Budget:   5000,
		Channels: []string{"whatsapp", "email"},
	})
	if err != nil {
		t.Fatalf("SaveCampaign failed: %v", err)
	}
	if created.Status != "Planejada" {
		t.Errorf("Expected default status Planejada, got %s", created.Status)
	}
	if strings.Join(created.Channels, ",") != "email,whatsapp" {
		t.Errorf("Expected channels in display order, got %v", created.Channels)
	}

	_, edited, err := h.SaveCampaign(ctx, nil, SaveCampaignInput{ID: created.ID, Name: "Verão Solar 2", Status: "Ativa"})
	if err != nil {
		t.Fatalf("SaveCampaign edit failed: %v", err)
	}
	if edited.ID != created.ID || edited.Status != "Ativa" {
		t.Errorf("Expected edit in place, got %+v", edited)
	}
	if len(state.Campaigns()) != 1 {
		t.Errorf("Expected 1 campaign after edit, got %d", len(state.Campaigns()))
	}

	_, st, err := h.AddStrategy(ctx, nil, AddStrategyInput{WeekRange: "06/01 a 10/01", Group: "Síndicos", Campaign: created.ID})
	if err != nil {
		t.Fatalf("AddStrategy failed: %v", err)
	}
	if st.Campaign != "Verão Solar 2" {
		t.Errorf("Expected campaign name resolved, got %s", st.Campaign)
	}

	_, strategies, err := h.FindStrategies(ctx, nil, FindInput{Query: "síndicos"})
	if err != nil {
		t.Fatalf("FindStrategies failed: %v", err)
	}
	if len(strategies.Strategies) != 1 {
		t.Errorf("Expected 1 strategy, got %d", len(strategies.Strategies))
	}

	if _, _, err := h.AddStrategy(ctx, nil, AddStrategyInput{Group: "no week"}); err == nil {
		t.Error("Expected error for missing week range")
	}

	if _, _, err := h.DeleteStrategy(ctx, nil, DeleteInput{ID: st.ID}); err != nil {
		t.Fatalf("DeleteStrategy failed: %v", err)
	}
	if _, _, err := h.DeleteCampaign(ctx, nil, DeleteInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteCampaign failed: %v", err)
	}
	_, remaining, _ := h.FindCampaigns(ctx, nil, FindInput{})
	if len(remaining.Campaigns) != 0 {
		t.Errorf("Expected no campaigns, got %d", len(remaining.Campaigns))
	}
}

func TestAnalysisTools(t *testing.T) {
	state := setupTestState(t)
	h := NewAnalysisHandlers(state, cannedAnalyzer{text: "Resumo: ok"})
	ctx := context.Background()

	_, a, err := h.AnalyzeText(ctx, nil, AnalyzeTextInput{FileName: "fatura.txt", Content: "consumo 300 kWh"})
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if a.Content != "Resumo: ok" || a.FileName != "fatura.txt" {
		t.Errorf("Unexpected analysis %+v", a)
	}

	if _, _, err := h.AnalyzeText(ctx, nil, AnalyzeTextInput{FileName: "vazio.txt"}); err == nil {
		t.Error("Expected error for empty content")
	}

	_, list, err := h.ListAnalyses(ctx, nil, ListAnalysesInput{})
	if err != nil {
		t.Fatalf("ListAnalyses failed: %v", err)
	}
	if len(list.Analyses) != 1 {
		t.Errorf("Expected 1 analysis, got %d", len(list.Analyses))
	}
}

func TestQueryCRM(t *testing.T) {
	state := setupTestState(t)
	addClient(t, state, "Ana Silva", "Solar SA")
	addClient(t, state, "Bruno Costa", "Vento Ltda")
	h := NewQueryHandlers(state)
	ctx := context.Background()

	_, out, err := h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "client", Filters: map[string]interface{}{"company": "vento ltda"}})
	if err != nil {
		t.Fatalf("QueryCRM failed: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("Expected 1 client, got %d", out.Count)
	}
	if c, ok := out.Results[0].(ClientOutput); !ok || c.Name != "Bruno Costa" {
		t.Errorf("Expected Bruno Costa, got %+v", out.Results[0])
	}

	_, out, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "followup", Filters: map[string]interface{}{"signedContract": "SIM"}})
	if err != nil {
		t.Fatalf("QueryCRM failed: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("Expected no signed follow-ups, got %d", out.Count)
	}

	_, out, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "followup", Limit: 1})
	if err != nil {
		t.Fatalf("QueryCRM failed: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("Expected limit to apply, got %d", out.Count)
	}

	if _, _, err := h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "deal"}); err == nil {
		t.Error("Expected error for unknown entity type")
	}
}

func TestGenerateGraph(t *testing.T) {
	state := setupTestState(t)
	client := addClient(t, state, "Ana Silva", "Solar SA")
	h := NewVizHandlers(state, log.New(io.Discard))
	ctx := context.Background()

	_, out, err := h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "pipeline"})
	if err != nil {
		t.Fatalf("GenerateGraph failed: %v", err)
	}
	if !strings.Contains(out.DOTSource, "digraph") {
		t.Errorf("Expected DOT output, got %q", out.DOTSource)
	}

	if _, _, err := h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "client"}); err == nil {
		t.Error("Expected error for client graph without entity_id")
	}
	if _, _, err := h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "client", EntityID: client.ID}); err != nil {
		t.Errorf("GenerateGraph client failed: %v", err)
	}
	if _, _, err := h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "org-chart"}); err == nil {
		t.Error("Expected error for unknown graph type")
	}
}

func readResource(t *testing.T, h *ResourceHandlers, uri string) string {
	t.Helper()
	result, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	if err != nil {
		t.Fatalf("ReadResource %s failed: %v", uri, err)
	}
	if len(result.Contents) != 1 || result.Contents[0].MIMEType != "application/json" {
		t.Fatalf("Unexpected contents for %s: %+v", uri, result.Contents)
	}
	return result.Contents[0].Text
}

func TestReadResources(t *testing.T) {
	state := setupTestState(t)
	client := addClient(t, state, "Ana Silva", "Solar SA")
	h := NewResourceHandlers(state)

	var clients []map[string]interface{}
	if err := json.Unmarshal([]byte(readResource(t, h, "crm://clients")), &clients); err != nil {
		t.Fatalf("Invalid clients JSON: %v", err)
	}
	if len(clients) != 1 || clients[0]["name"] != "Ana Silva" {
		t.Errorf("Unexpected clients resource: %v", clients)
	}

	var one struct {
		Client   map[string]interface{} `json:"client"`
		Followup map[string]interface{} `json:"followup"`
	}
	if err := json.Unmarshal([]byte(readResource(t, h, "crm://clients/"+client.ID)), &one); err != nil {
		t.Fatalf("Invalid client JSON: %v", err)
	}
	if one.Followup["clientId"] != client.ID {
		t.Errorf("Expected follow-up bundled with client, got %v", one.Followup)
	}

	var m crm.Metrics
	if err := json.Unmarshal([]byte(readResource(t, h, "crm://metrics")), &m); err != nil {
		t.Fatalf("Invalid metrics JSON: %v", err)
	}
	if m.TotalIndications != 1 {
		t.Errorf("Expected 1 indication, got %d", m.TotalIndications)
	}

	for _, uri := range []string{"crm://followups", "crm://agenda", "crm://campaigns", "crm://strategies"} {
		readResource(t, h, uri)
	}

	if _, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "http://clients"}}); err == nil {
		t.Error("Expected error for wrong scheme")
	}
	if _, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "crm://deals"}}); err == nil {
		t.Error("Expected error for unknown resource")
	}
}

func getPrompt(h *PromptHandlers, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	return h.GetPrompt(context.Background(), &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
}

func TestPrompts(t *testing.T) {
	state := setupTestState(t)
	client := addClient(t, state, "Ana Silva", "Solar SA")
	h := NewPromptHandlers(state)

	result, err := getPrompt(h, "client-summary", map[string]string{"client_id": client.ID})
	if err != nil {
		t.Fatalf("client-summary failed: %v", err)
	}
	text := result.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(text, "Ana Silva") || !strings.Contains(text, "Solar SA") {
		t.Errorf("Expected client details in prompt, got %q", text)
	}

	if _, err := getPrompt(h, "client-summary", nil); err == nil {
		t.Error("Expected error without client_id")
	}

	result, err = getPrompt(h, "follow-up-suggestions", nil)
	if err != nil {
		t.Fatalf("follow-up-suggestions failed: %v", err)
	}
	if !strings.Contains(result.Messages[0].Content.(*mcp.TextContent).Text, "Ana Silva") {
		t.Error("Expected open follow-up listed")
	}

	campaign, err := state.AddCampaign(models.Campaign{Name: "Inverno"})
	if err != nil {
		t.Fatalf("AddCampaign failed: %v", err)
	}
	result, err = getPrompt(h, "campaign-plan", map[string]string{"campaign_id": campaign.ID})
	if err != nil {
		t.Fatalf("campaign-plan failed: %v", err)
	}
	if !strings.Contains(result.Description, "Inverno") {
		t.Errorf("Unexpected description %q", result.Description)
	}

	if _, err := getPrompt(h, "deal-analysis", nil); err == nil {
		t.Error("Expected error for unknown prompt")
	}
}
