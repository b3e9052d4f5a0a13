// ABOUTME: HTTP server for the analysis endpoint, JSON API and HTML dashboard
// ABOUTME: chi router with request IDs, CORS and structured request logs
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sustentalski/salescrm/analysis"
	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/viz"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	// DefaultPort is used when PORT is not set.
	DefaultPort = "5001"

	// DefaultCORSOrigin is the dev frontend allowed to call the API.
	DefaultCORSOrigin = "http://localhost:5173"

	maxUploadBytes = 10 << 20
)

// Config holds server settings.
type Config struct {
	Port       string
	CORSOrigin string
}

// Server serves the CRM over HTTP.
type Server struct {
	state     *crm.State
	analyzer  analysis.Analyzer
	logger    *log.Logger
	config    Config
	templates *template.Template
	generator *viz.GraphGenerator
	now       func() time.Time
}

// NewServer builds a server. analyzer handles POST /analyze and is expected
// to fall back on its own; state may be nil to serve only /analyze.
func NewServer(state *crm.State, analyzer analysis.Analyzer, cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = DefaultCORSOrigin
	}

	funcMap := template.FuncMap{
		"brl":     crm.FormatBRL,
		"percent": crm.FormatPercent,
		"add": func(a, b int) int {
			return a + b
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec // graphviz output
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		state:     state,
		analyzer:  analyzer,
		logger:    logger,
		config:    cfg,
		templates: tmpl,
		now:       time.Now,
	}
	if state != nil {
		s.generator = viz.NewGraphGenerator(state, logger)
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(s.config.CORSOrigin))

	r.Post("/analyze", s.handleAnalyze)

	if s.state != nil {
		r.Get("/", s.handleDashboard)
		r.Get("/clients", s.handleClients)
		r.Get("/clients/{id}/history", s.handleClientHistory)
		r.Get("/followups", s.handleFollowups)
		r.Get("/agenda", s.handleAgenda)
		r.Get("/campaigns", s.handleCampaigns)
		r.Get("/strategies", s.handleStrategies)
		r.Get("/graphs", s.handleGraphs)

		r.Route("/api", func(r chi.Router) {
			r.Get("/metrics", s.apiMetrics)
			r.Get("/clients", s.apiClients)
			r.Get("/clients/{id}/history", s.apiClientHistory)
			r.Get("/followups", s.apiFollowups)
			r.Get("/agenda", s.apiAgenda)
			r.Get("/calendar", s.apiCalendar)
			r.Get("/campaigns", s.apiCampaigns)
			r.Get("/strategies", s.apiStrategies)
			r.Get("/analyses", s.apiAnalyses)
			r.Get("/export", s.apiExport)
			r.Post("/import", s.apiImport)
		})
	}
	return r
}

// Start listens on the configured port until the server fails.
func (s *Server) Start() error {
	addr := ":" + s.config.Port
	s.logger.Info("starting web server", "url", "http://localhost"+addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Arquivo muito grande.")
			return
		}
		writeError(w, http.StatusBadRequest, "Envie um arquivo no campo 'file'.")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("failed to read upload", "err", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	text, err := s.analyzer.Analyze(r.Context(), header.Filename, string(data))
	if err != nil {
		s.logger.Error("analysis failed", "file", header.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": text})
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
