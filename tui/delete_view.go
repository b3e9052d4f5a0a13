// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Confirms deletion of clients, campaigns, strategies, agenda items and follow-ups
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// deleteTarget names the selected record for the dialog.
func (m Model) deleteTarget() (kind, name string, err error) {
	switch m.entityType {
	case EntityClients:
		c, err := m.state.GetClient(m.selectedID)
		return "cliente", c.Name, err
	case EntityCampaigns:
		c, err := m.state.GetCampaign(m.selectedID)
		return "campanha", c.Name, err
	case EntityStrategies:
		for _, st := range m.state.Strategies() {
			if st.ID == m.selectedID {
				return "estratégia", st.WeekRange + " " + st.Group, nil
			}
		}
		return "estratégia", "", fmt.Errorf("strategy %s not found", m.selectedID)
	case EntityAgenda:
		it, err := m.state.GetAgendaItem(m.selectedID)
		return "compromisso", it.ContactName, err
	case EntityFollowups:
		f, err := m.state.GetFollowup(m.selectedID)
		return "follow-up", f.ClientName, err
	}
	return "", "", fmt.Errorf("unknown entity type")
}

func (m Model) renderConfirmDeleteView() string {
	kind, name, err := m.deleteTarget()
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	title := warningStyle.Render("⚠  CONFIRMAR EXCLUSÃO  ⚠")
	message := fmt.Sprintf("Tem certeza que deseja excluir este %s?", kind)
	entityInfo := fmt.Sprintf("\n%s: %s\n", strings.ToUpper(kind), name)
	warning := "\nEsta ação não pode ser desfeita!"
	if m.entityType == EntityClients {
		warning += "\nO follow-up do cliente é mantido."
	}

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Sim, excluir (y)"),
		cancelButtonStyle.Render("Cancelar (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		warning,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.performDelete(); err != nil {
			m.err = err
			m.deleteMessage = ""
		} else {
			m.err = nil
			m.deleteMessage = "✓ Excluído"
			m.selectedID = ""
			if n := len(m.currentListing().ids); m.selectedRow >= n && n > 0 {
				m.selectedRow = n - 1
			}
		}
		m.viewMode = ViewList
	case "n", "N", "esc":
		m.viewMode = ViewList
	}

	return m, nil
}

func (m Model) performDelete() error {
	switch m.entityType {
	case EntityClients:
		return m.state.DeleteClient(m.selectedID)
	case EntityCampaigns:
		return m.state.DeleteCampaign(m.selectedID)
	case EntityStrategies:
		return m.state.DeleteStrategy(m.selectedID)
	case EntityAgenda:
		return m.state.DeleteAgendaItem(m.selectedID)
	case EntityFollowups:
		return m.state.DeleteFollowup(m.selectedID)
	default:
		return fmt.Errorf("unknown entity type")
	}
}
