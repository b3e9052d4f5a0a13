// ABOUTME: TUI view for Google sync status and controls
// ABOUTME: Shows the contacts import and calendar push states and triggers them in the background
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/sync"
)

var (
	syncHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	syncServiceStyle = lipgloss.NewStyle().
				Bold(true).
				Width(12)

	syncIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	syncSyncingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)

	syncErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	syncSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	syncMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

var syncServices = []string{sync.ContactsService, sync.CalendarService}

// SyncCompleteMsg is sent when a sync operation completes.
type SyncCompleteMsg struct {
	Service string
	Items   int
	Error   error
}

func (m Model) renderSyncView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Google Sync"))
	s.WriteString("\n\n")

	s.WriteString(syncHeaderStyle.Render("Service Status"))
	s.WriteString("\n\n")

	for i, service := range syncServices {
		var state *db.SyncState
		for j := range m.syncStates {
			if m.syncStates[j].Service == service {
				state = &m.syncStates[j]
				break
			}
		}

		var row strings.Builder
		if i == m.selectedService {
			row.WriteString("▶ ")
		} else {
			row.WriteString("  ")
		}

		serviceName := strings.ToUpper(service[:1]) + service[1:]
		if i == m.selectedService {
			row.WriteString(syncSelectedStyle.Render(syncServiceStyle.Render(serviceName)))
		} else {
			row.WriteString(syncServiceStyle.Render(serviceName))
		}

		switch {
		case m.syncInProgress[service]:
			row.WriteString(syncSyncingStyle.Render("  ⟳ Syncing..."))
		case state == nil:
			row.WriteString(syncMessageStyle.Render("  Not synced yet"))
		case state.Status == db.SyncFailed:
			row.WriteString(syncErrorStyle.Render("  ✗ Error"))
			if state.ErrorMessage != "" {
				row.WriteString(syncErrorStyle.Render(": " + state.ErrorMessage))
			}
		default:
			row.WriteString(syncIdleStyle.Render("  ✓ Idle"))
			if state.LastSyncTime != nil {
				row.WriteString(syncMessageStyle.Render(" • Last synced " + formatTimeSince(m.now(), *state.LastSyncTime)))
			}
		}

		s.WriteString(row.String())
		s.WriteString("\n")
	}

	s.WriteString("\n")

	if len(m.syncMessages) > 0 {
		s.WriteString(syncHeaderStyle.Render("Recent Activity"))
		s.WriteString("\n\n")
		start := 0
		if len(m.syncMessages) > 5 {
			start = len(m.syncMessages) - 5
		}
		for i := start; i < len(m.syncMessages); i++ {
			s.WriteString(syncMessageStyle.Render("  " + m.syncMessages[i]))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(m.renderSyncHelp())

	return s.String()
}

func (m Model) renderSyncHelp() string {
	help := []string{
		"↑/↓: Select service",
		"Enter: Sync selected",
		"a: Sync all",
		"r: Refresh status",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m *Model) loadSyncStates() {
	if m.db == nil {
		m.syncStates = nil
		return
	}
	states, err := db.ListSyncStates(m.db)
	if err != nil {
		m.syncStates = nil
		m.addSyncMessage(fmt.Sprintf("✗ failed to load sync status: %v", err))
		return
	}
	m.syncStates = states
}

func (m Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedService > 0 {
			m.selectedService--
		}
	case "down", "j":
		if m.selectedService < len(syncServices)-1 {
			m.selectedService++
		}
	case "enter":
		service := syncServices[m.selectedService]
		if m.syncInProgress[service] {
			return m, nil
		}
		m.syncInProgress[service] = true
		m.addSyncMessage(fmt.Sprintf("Starting %s sync...", service))
		return m, m.syncService(service)
	case "a":
		var cmds []tea.Cmd
		for _, service := range syncServices {
			if m.syncInProgress[service] {
				continue
			}
			m.syncInProgress[service] = true
			m.addSyncMessage(fmt.Sprintf("Starting %s sync...", service))
			cmds = append(cmds, m.syncService(service))
		}
		return m, tea.Batch(cmds...)
	case "r":
		m.loadSyncStates()
	case "esc":
		m.viewMode = ViewList
	}

	return m, nil
}

// syncService runs one sync off the update loop. Status bookkeeping happens
// inside the sync functions.
func (m Model) syncService(service string) tea.Cmd {
	database, state := m.db, m.state
	return func() tea.Msg {
		ctx := context.Background()

		token, err := sync.LoadToken()
		if err != nil {
			return SyncCompleteMsg{Service: service, Error: err}
		}

		var n int
		switch service {
		case sync.ContactsService:
			client, cerr := sync.NewPeopleClient(ctx, token)
			if cerr != nil {
				return SyncCompleteMsg{Service: service, Error: cerr}
			}
			n, err = sync.ImportContacts(database, state, client)
		case sync.CalendarService:
			client, cerr := sync.NewCalendarClient(ctx, token)
			if cerr != nil {
				return SyncCompleteMsg{Service: service, Error: cerr}
			}
			n, err = sync.PushAgenda(ctx, database, state, client, sync.DefaultCalendarID)
		default:
			err = fmt.Errorf("unknown service %q", service)
		}

		return SyncCompleteMsg{Service: service, Items: n, Error: err}
	}
}

func (m *Model) addSyncMessage(msg string) {
	timestamp := m.now().Format("15:04:05")
	m.syncMessages = append(m.syncMessages, fmt.Sprintf("[%s] %s", timestamp, msg))
}

func (m *Model) handleSyncComplete(msg SyncCompleteMsg) {
	m.syncInProgress[msg.Service] = false

	if msg.Error != nil {
		m.addSyncMessage(fmt.Sprintf("✗ %s sync failed: %v", msg.Service, msg.Error))
	} else {
		m.addSyncMessage(fmt.Sprintf("✓ %s sync completed (%d items)", msg.Service, msg.Items))
	}

	m.loadSyncStates()
}

// formatTimeSince formats the age of t relative to now.
func formatTimeSince(now, t time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
