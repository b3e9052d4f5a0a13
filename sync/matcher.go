// ABOUTME: Client deduplication and matching logic
// ABOUTME: Finds existing clients by email, then by name, to prevent duplicates during sync
package sync

import (
	"strings"

	"github.com/sustentalski/salescrm/models"
)

type ClientMatcher struct {
	byEmail map[string]models.Client
	byName  map[string]models.Client
}

// NewClientMatcher creates a matcher from existing clients.
func NewClientMatcher(clients []models.Client) *ClientMatcher {
	m := &ClientMatcher{
		byEmail: make(map[string]models.Client),
		byName:  make(map[string]models.Client),
	}
	for _, c := range clients {
		m.AddClient(c)
	}
	return m
}

// FindMatch looks for an existing client by email, falling back to the
// exact name when the email is unknown.
func (m *ClientMatcher) FindMatch(email, name string) (models.Client, bool) {
	if normalized := normalizeEmail(email); normalized != "" {
		if c, found := m.byEmail[normalized]; found {
			return c, true
		}
	}
	if normalized := normalizeName(name); normalized != "" {
		if c, found := m.byName[normalized]; found {
			return c, true
		}
	}
	return models.Client{}, false
}

// AddClient adds a newly created client to the matcher to prevent duplicates
// within the same import session.
func (m *ClientMatcher) AddClient(c models.Client) {
	if email := normalizeEmail(c.Email); email != "" {
		m.byEmail[email] = c
	}
	if name := normalizeName(c.Name); name != "" {
		m.byName[name] = c
	}
}

// normalizeEmail converts email to lowercase for comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeName lowercases and collapses inner whitespace.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
