// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Header metrics, funnel bars, upcoming agenda and active campaigns
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

// Stage is one funnel step with its record count.
type Stage struct {
	Key   string
	Label string
	Count int
}

// FunnelStages lists the pipeline steps in order.
func FunnelStages(m crm.Metrics) []Stage {
	return []Stage{
		{"indications", "Indicações", m.TotalIndications},
		{"sentInvoice", "Enviou fatura", m.Funnel.SentInvoice},
		{"proposalReady", "Proposta pronta", m.Funnel.ProposalReady},
		{"clientPresentation", "Apresentação", m.Funnel.ClientPresentation},
		{"willClose", "Vai fechar", m.Funnel.WillClose},
		{"sentDocuments", "Enviou docs", m.Funnel.SentDocuments},
		{"signedContract", "Assinou", m.Funnel.SignedContract},
		{"paid", "Pago", m.Funnel.Paid},
	}
}

// StageOf names the furthest step a record has reached.
func StageOf(f models.FollowupRecord) string {
	switch {
	case f.DoesntWantProduct == models.Yes:
		return "Não quer produto"
	case f.Paid == models.Yes:
		return "Pago"
	case f.SignedContract == models.Yes:
		return "Assinou"
	case f.SentDocuments == models.Yes:
		return "Enviou docs"
	case f.WillClose == models.OutlookYes:
		return "Vai fechar"
	case f.WillClose == models.OutlookWarm:
		return "Morno"
	case f.ClientPresentation == models.Yes:
		return "Apresentação"
	case f.ProposalReady == models.Yes:
		return "Proposta pronta"
	case f.SentInvoice == models.Yes:
		return "Enviou fatura"
	default:
		return "Indicação"
	}
}

// DashboardStats is everything the dashboard shows.
type DashboardStats struct {
	Metrics crm.Metrics
	Funnel  []Stage

	TotalClients    int
	TotalCampaigns  int
	TotalStrategies int
	OpenAgenda      int

	// Upcoming holds open agenda items in the next seven days, earliest first.
	Upcoming []models.AgendaItem

	ActiveCampaigns []models.Campaign
	User            string
}

// GenerateDashboardStats collects the dashboard numbers at now.
func GenerateDashboardStats(state *crm.State, now time.Time) *DashboardStats {
	m := state.Metrics()
	stats := &DashboardStats{
		Metrics:         m,
		Funnel:          FunnelStages(m),
		TotalClients:    len(state.Clients()),
		TotalCampaigns:  len(state.Campaigns()),
		TotalStrategies: len(state.Strategies()),
	}

	horizon := now.AddDate(0, 0, 7)
	for _, a := range state.Agenda() {
		if a.Done {
			continue
		}
		stats.OpenAgenda++
		if t, ok := a.When(); ok && !t.Before(now) && t.Before(horizon) {
			stats.Upcoming = append(stats.Upcoming, a)
		}
	}
	sortByWhen(stats.Upcoming)

	for _, c := range state.Campaigns() {
		if c.Status == models.StatusActive {
			stats.ActiveCampaigns = append(stats.ActiveCampaigns, c)
		}
	}

	if u, err := state.CurrentUser(); err == nil {
		stats.User = u.Username
	}
	return stats
}

func sortByWhen(items []models.AgendaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, _ := items[i].When()
		b, _ := items[j].When()
		return a.Before(b)
	})
}

// RenderDashboard formats stats for the terminal.
func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  SUSTENTALSKI CRM\n")
	if stats.User != "" {
		out.WriteString(fmt.Sprintf("  👤 %s\n", stats.User))
	}
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	m := stats.Metrics
	out.WriteString("RESUMO\n")
	out.WriteString(fmt.Sprintf("  Indicações: %d  Fechamentos: %d  Conversão: %s\n",
		m.TotalIndications, m.ClosedCount, crm.FormatPercent(m.ConversionRate)))
	out.WriteString(fmt.Sprintf("  Valor estimado: %s  Comissão: %s\n\n",
		crm.FormatBRL(m.TotalEstimated), crm.FormatBRL(m.TotalCommission)))

	out.WriteString("FUNIL\n")
	renderFunnel(&out, stats.Funnel)
	out.WriteString("\n")

	out.WriteString("CADASTROS\n")
	out.WriteString(fmt.Sprintf("  📇 %d clientes  📣 %d campanhas  🗓️  %d estratégias  📌 %d pendentes\n\n",
		stats.TotalClients, stats.TotalCampaigns, stats.TotalStrategies, stats.OpenAgenda))

	if len(stats.Upcoming) > 0 {
		out.WriteString("PRÓXIMOS 7 DIAS\n")
		for _, a := range stats.Upcoming {
			t, _ := a.When()
			out.WriteString(fmt.Sprintf("  %s  %-20s %s\n", t.Format("02/01 15:04"), a.ContactName, a.ContactType))
		}
		out.WriteString("\n")
	}

	if len(stats.ActiveCampaigns) > 0 {
		out.WriteString("CAMPANHAS ATIVAS\n")
		for _, c := range stats.ActiveCampaigns {
			out.WriteString(fmt.Sprintf("  • %s (%s → %s)\n", c.Name, c.StartDate, c.EndDate))
		}
	}

	return out.String()
}

func renderFunnel(out *strings.Builder, stages []Stage) {
	maxCount := 0
	for _, s := range stages {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range stages {
		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-18s %s  %3d\n", s.Label, bar, s.Count))
	}
}
