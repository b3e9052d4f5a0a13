// ABOUTME: JSON read API and the /analyze upload endpoint
// ABOUTME: Collections, metrics and calendar month as JSON
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sustentalski/salescrm/calendar"
	"github.com/sustentalski/salescrm/crm"
)

func (s *Server) apiMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Metrics())
}

func (s *Server) apiClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.SearchClients(r.URL.Query().Get("q")))
}

func (s *Server) apiClientHistory(w http.ResponseWriter, r *http.Request) {
	c, err := s.state.GetClient(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	history := s.state.ClientHistory(c.Name)
	if history == nil {
		history = []crm.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) apiFollowups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.SearchFollowups(r.URL.Query().Get("q")))
}

func (s *Server) apiAgenda(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.SearchAgenda(r.URL.Query().Get("q")))
}

func (s *Server) apiCampaigns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.SearchCampaigns(r.URL.Query().Get("q")))
}

func (s *Server) apiStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.SearchStrategies(r.URL.Query().Get("q")))
}

func (s *Server) apiAnalyses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Analyses())
}

type calendarDay struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	HasEvent bool   `json:"hasEvent"`
	Today    bool   `json:"today"`
	Selected bool   `json:"selected"`
}

type calendarResponse struct {
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	Cells    []*calendarDay `json:"cells"`
	Selected any            `json:"selectedItems"`
}

// apiCalendar projects ?year=&month=&day= (defaults: current month, no day).
func (s *Server) apiCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	q := r.URL.Query()
	year, month := now.Year(), now.Month()
	if v, err := strconv.Atoi(q.Get("year")); err == nil {
		year = v
	}
	if v, err := strconv.Atoi(q.Get("month")); err == nil && v >= 1 && v <= 12 {
		month = time.Month(v)
	}
	var selected time.Time
	if v, err := strconv.Atoi(q.Get("day")); err == nil {
		selected = time.Date(year, month, v, 0, 0, 0, 0, now.Location())
		if selected.Month() != month {
			selected = now
		}
	}

	m := calendar.Project(year, month, s.state.Agenda(), now, selected)
	resp := calendarResponse{Year: m.Year, Month: int(m.Month), Selected: m.SelectedItems}
	for _, c := range m.Cells {
		if c == nil {
			resp.Cells = append(resp.Cells, nil)
			continue
		}
		resp.Cells = append(resp.Cells, &calendarDay{
			Date:     c.Date.Format("2006-01-02"),
			Day:      c.Number,
			HasEvent: c.HasEvent,
			Today:    c.Today,
			Selected: c.Selected,
		})
	}
	if m.SelectedItems == nil {
		resp.Selected = []any{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) apiExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+crm.ExportFileName(s.now())+`"`)
	if err := s.state.Export(w); err != nil {
		s.logger.Error("export failed", "err", err)
	}
}

func (s *Server) apiImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	applied, err := s.state.Import(r.Body)
	if err != nil {
		if errors.Is(err, crm.ErrInvalidFile) {
			writeError(w, http.StatusBadRequest, "Arquivo inválido")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if applied == nil {
		applied = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied})
}
