// ABOUTME: Client history across agenda items and follow-ups
// ABOUTME: Matches by client name and lists newest first
package crm

import (
	"sort"
	"strings"
	"time"
)

// History entry kinds.
const (
	HistoryAgenda   = "Agenda"
	HistoryFollowup = "Follow-up"
)

const noNotes = "Sem notas"

// HistoryEntry is one interaction shown in a client's history.
type HistoryEntry struct {
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	RefID       string    `json:"refId"`
}

// ClientHistory merges agenda items and follow-ups whose contact name
// contains name (case-insensitive), newest first.
func (s *State) ClientHistory(name string) []HistoryEntry {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}

	var entries []HistoryEntry
	for _, a := range s.agenda.Get() {
		if !strings.Contains(strings.ToLower(a.ContactName), needle) {
			continue
		}
		date, ok := a.When()
		if !ok {
			date = a.CreatedAt.Time
		}
		entries = append(entries, HistoryEntry{
			Kind:        HistoryAgenda,
			Description: orDefault(a.Notes, noNotes),
			Date:        date,
			RefID:       a.ID,
		})
	}
	for _, f := range s.followups.Get() {
		if !strings.Contains(strings.ToLower(f.ClientName), needle) {
			continue
		}
		entries = append(entries, HistoryEntry{
			Kind:        HistoryFollowup,
			Description: orDefault(f.Feedback, noNotes),
			Date:        f.CreatedAt.Time,
			RefID:       f.ID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
