package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustentalski/salescrm/analysis"
	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
	"github.com/sustentalski/salescrm/store"
)

type echoAnalyzer struct{ err error }

func (e echoAnalyzer) Analyze(_ context.Context, fileName, content string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return fileName + ": " + content, nil
}

func newTestServer(t *testing.T, a analysis.Analyzer) (*Server, *crm.State) {
	t.Helper()
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)
	state := crm.Open(store.NewMemory(), crm.WithClock(func() time.Time { return now }))
	srv, err := NewServer(state, a, Config{}, nil)
	require.NoError(t, err)
	srv.now = func() time.Time { return now }
	return srv, state
}

func upload(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnalyzeSuccess(t *testing.T) {
	srv, _ := newTestServer(t, echoAnalyzer{})
	body, ctype := upload(t, "file", "notas.txt", "conteúdo")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "notas.txt: conteúdo", decode(t, rec)["analysis"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, DefaultCORSOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAnalyzeMissingFile(t *testing.T) {
	srv, _ := newTestServer(t, echoAnalyzer{})
	body, ctype := upload(t, "other", "x.txt", "x")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Envie um arquivo no campo 'file'.", decode(t, rec)["error"])
}

func TestAnalyzeFailure(t *testing.T) {
	srv, _ := newTestServer(t, echoAnalyzer{err: errors.New("boom")})
	body, ctype := upload(t, "file", "x.txt", "x")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", decode(t, rec)["error"])
}

func TestAnalyzeWithFallbackNeverFails(t *testing.T) {
	srv, _ := newTestServer(t, analysis.NewFallback(analysis.NewGemini("", nil), nil))
	body, ctype := upload(t, "file", "x.txt", "texto")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	text, _ := decode(t, rec)["analysis"].(string)
	assert.Contains(t, text, "GEMINI_API_KEY não definido no .env")
}

func TestCORSPreflight(t *testing.T) {
	srv, err := NewServer(nil, echoAnalyzer{}, Config{CORSOrigin: "http://example.test"}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://example.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t, echoAnalyzer{})
	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestAPIMetricsAndLists(t *testing.T) {
	srv, state := newTestServer(t, echoAnalyzer{})
	c, err := state.AddClient(models.Client{Name: "Ana Silva"})
	require.NoError(t, err)
	_, err = state.AddAgendaItem(models.AgendaItem{ContactName: "Ana Silva", Datetime: "2025-01-10T14:00"})
	require.NoError(t, err)
	_, err = state.AddAgendaItem(models.AgendaItem{ContactName: "Ana Silva", Datetime: "2025-01-10T09:00"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["totalIndications"])

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients?q=ana", nil))
	var clients []models.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	require.Len(t, clients, 1)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients/"+c.ID+"/history", nil))
	var history []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 3)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar?year=2025&month=1&day=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cal struct {
		Cells         []*struct{ Day int } `json:"cells"`
		SelectedItems []models.AgendaItem  `json:"selectedItems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cal))
	assert.Len(t, cal.Cells, 3+31)
	require.Len(t, cal.SelectedItems, 2)
	assert.Equal(t, "2025-01-10T09:00", cal.SelectedItems[0].Datetime)
}

func TestAPIExportImport(t *testing.T) {
	srv, state := newTestServer(t, echoAnalyzer{})
	_, err := state.AddClient(models.Client{Name: "Ana"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sustentalski_export_2025-01-10.json")
	exported := rec.Body.String()

	other, otherState := newTestServer(t, echoAnalyzer{})
	rec = httptest.NewRecorder()
	other.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(exported)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, otherState.Clients(), 1)

	rec = httptest.NewRecorder()
	other.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("{oops")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Arquivo inválido", decode(t, rec)["error"])
}

func TestPagesRender(t *testing.T) {
	srv, state := newTestServer(t, echoAnalyzer{})
	c, err := state.AddClient(models.Client{Name: "Ana Silva"})
	require.NoError(t, err)
	_, err = state.AddCampaign(models.Campaign{Name: "Verão"})
	require.NoError(t, err)

	for _, path := range []string{"/", "/clients", "/clients/" + c.ID + "/history", "/followups", "/agenda", "/campaigns", "/strategies", "/graphs?type=pipeline"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Sustentalski CRM", path)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients?q=ana", nil))
	assert.Contains(t, rec.Body.String(), "Ana Silva")
}

func TestRequestIDFromMatchesResponseHeader(t *testing.T) {
	var seen string
	h := middleware.RequestID(echoRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Empty(t, RequestIDFrom(context.Background()))
}
