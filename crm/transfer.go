// ABOUTME: JSON export and import of every CRM collection
// ABOUTME: Import replaces present collections wholesale and never applies partially
package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sustentalski/salescrm/models"
)

// ErrInvalidFile is returned when an import document is not valid JSON.
var ErrInvalidFile = errors.New("invalid file")

// Export document keys.
const (
	ExportStrategies = "strategies"
	ExportAgenda     = "agenda"
	ExportFollowups  = "followups"
	ExportAnalyses   = "analyses"
	ExportClients    = "clients"
	ExportCampaigns  = "campaigns"
	ExportedAt       = "exportedAt"
)

// Snapshot is the export document.
type Snapshot struct {
	Strategies []models.Strategy       `json:"strategies"`
	Agenda     []models.AgendaItem     `json:"agenda"`
	Followups  []models.FollowupRecord `json:"followups"`
	Analyses   []models.Analysis       `json:"analyses"`
	Clients    []models.Client         `json:"clients"`
	Campaigns  []models.Campaign       `json:"campaigns"`
	ExportedAt models.Timestamp        `json:"exportedAt"`
}

// Snapshot captures every collection.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Strategies: nonNil(s.strategies.Get()),
		Agenda:     nonNil(s.agenda.Get()),
		Followups:  nonNil(s.followups.Get()),
		Analyses:   nonNil(s.analyses.Get()),
		Clients:    nonNil(s.clients.Get()),
		Campaigns:  nonNil(s.campaigns.Get()),
		ExportedAt: models.NewTimestamp(s.stamp()),
	}
}

// Export writes the snapshot as JSON indented by two spaces.
func (s *State) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.Snapshot()); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ExportFileName names the export file for the given day.
func ExportFileName(t time.Time) string {
	return "sustentalski_export_" + t.Format("2006-01-02") + ".json"
}

// Import reads an export document and replaces each collection it contains.
// Unknown keys are ignored and absent or null keys leave the collection as
// is. It returns the document keys that were applied.
func (s *State) Import(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ErrInvalidFile
	}

	var (
		strategies []models.Strategy
		agenda     []models.AgendaItem
		followups  []models.FollowupRecord
		analyses   []models.Analysis
		clients    []models.Client
		campaigns  []models.Campaign
	)
	targets := []struct {
		key string
		dst any
	}{
		{ExportStrategies, &strategies},
		{ExportAgenda, &agenda},
		{ExportFollowups, &followups},
		{ExportAnalyses, &analyses},
		{ExportClients, &clients},
		{ExportCampaigns, &campaigns},
	}

	var applied []string
	for _, t := range targets {
		raw, ok := doc[t.key]
		if !ok || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFile, t.key, err)
		}
		applied = append(applied, t.key)
	}

	for _, key := range applied {
		switch key {
		case ExportStrategies:
			s.strategies.Set(nonNil(strategies))
		case ExportAgenda:
			s.agenda.Set(nonNil(agenda))
		case ExportFollowups:
			s.followups.Set(nonNil(followups))
		case ExportAnalyses:
			s.analyses.Set(nonNil(analyses))
		case ExportClients:
			s.clients.Set(nonNil(clients))
		case ExportCampaigns:
			s.campaigns.Set(nonNil(campaigns))
		}
	}

	s.ReconcileFollowups()
	s.logger.Info("import applied", "keys", applied)
	return applied, nil
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
