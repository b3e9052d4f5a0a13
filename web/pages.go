// ABOUTME: HTML pages rendered from embedded templates
// ABOUTME: Dashboard plus client, agenda, follow-up and campaign tables
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/viz"
)

func (s *Server) page(w http.ResponseWriter, title, content string, data map[string]any) {
	data["Title"] = title
	data["ContentTemplate"] = content
	data["Metrics"] = s.state.Metrics()
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats := viz.GenerateDashboardStats(s.state, s.now())
	s.page(w, "Dashboard", "dashboard-content", map[string]any{"Stats": stats})
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.page(w, "Clientes", "clients-content", map[string]any{
		"Query":   q,
		"Clients": s.state.SearchClients(q),
	})
}

func (s *Server) handleClientHistory(w http.ResponseWriter, r *http.Request) {
	c, err := s.state.GetClient(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Cliente não encontrado", http.StatusNotFound)
		return
	}
	s.page(w, "Histórico", "history-content", map[string]any{
		"Client":  c,
		"History": s.state.ClientHistory(c.Name),
	})
}

type followupRow struct {
	ID     string
	Client string
	Cells  []string
	Value  float64
	Comm   float64
	Closed bool
}

func (s *Server) handleFollowups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	var rows []followupRow
	for _, f := range s.state.SearchFollowups(q) {
		row := followupRow{ID: f.ID, Client: f.ClientName, Value: f.EstimatedValue.Float(), Comm: f.CommissionValue(), Closed: f.Closed()}
		for _, fld := range crm.FollowupFields {
			row.Cells = append(row.Cells, crm.FollowupFieldValue(f, fld.Name))
		}
		rows = append(rows, row)
	}
	s.page(w, "Follow-up", "followups-content", map[string]any{
		"Query":  q,
		"Fields": crm.FollowupFields,
		"Rows":   rows,
	})
}

func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.page(w, "Agenda", "agenda-content", map[string]any{
		"Query": q,
		"Items": s.state.SearchAgenda(q),
	})
}

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.page(w, "Campanhas", "campaigns-content", map[string]any{
		"Query":     q,
		"Campaigns": s.state.SearchCampaigns(q),
	})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.page(w, "Estratégia", "strategies-content", map[string]any{
		"Query":      q,
		"Strategies": s.state.SearchStrategies(q),
	})
}

func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = viz.GraphCampaigns
	}
	svg, err := s.generator.GenerateSVG(kind, r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.page(w, "Gráficos", "graphs-content", map[string]any{
		"Kinds": viz.GraphKinds,
		"Kind":  kind,
		"SVG":   svg,
	})
}
