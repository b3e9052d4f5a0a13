// ABOUTME: TUI view for the follow-up sheet
// ABOUTME: Pipeline table with status indicators and field-by-field editing of one record
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

var (
	fieldCursorStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func (m Model) followupsListing() listing {
	l := listing{columns: []table.Column{
		{Title: " ", Width: 3},
		{Title: "Cliente", Width: 22},
		{Title: "Produto", Width: 12},
		{Title: "Fatura", Width: 6},
		{Title: "Proposta", Width: 8},
		{Title: "Fechar?", Width: 7},
		{Title: "Assinou", Width: 7},
		{Title: "Pago", Width: 5},
		{Title: "Estimado", Width: 14},
		{Title: "Comissão", Width: 14},
	}}
	for _, f := range m.state.SearchFollowups(m.searchQuery) {
		l.rows = append(l.rows, table.Row{
			indicator(f),
			f.ClientName,
			string(f.AccountType),
			crm.FollowupFieldValue(f, "sentInvoice"),
			crm.FollowupFieldValue(f, "proposalReady"),
			crm.FollowupFieldValue(f, "willClose"),
			crm.FollowupFieldValue(f, "signedContract"),
			crm.FollowupFieldValue(f, "paid"),
			crm.FormatBRL(f.EstimatedValue.Float()),
			crm.FormatBRL(f.CommissionValue()),
		})
		l.ids = append(l.ids, f.ID)
	}
	return l
}

func indicator(f models.FollowupRecord) string {
	switch {
	case f.Closed():
		return "🟢"
	case f.DoesntWantProduct == models.Yes:
		return "🔴"
	case f.WillClose == models.OutlookYes || f.WillClose == models.OutlookWarm:
		return "🟡"
	default:
		return "⚪"
	}
}

func (m Model) renderFollowupDetail() string {
	f, err := m.state.GetFollowup(m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var s strings.Builder
	s.WriteString(m.renderField("Cliente", f.ClientName))
	if _, err := m.state.GetClient(f.ClientID); err != nil {
		s.WriteString(errorStyle.Render("  cliente removido"))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	for i, def := range crm.FollowupFields {
		value := crm.FollowupFieldValue(f, def.Name)
		if i == m.fieldRow && m.editingField {
			s.WriteString(fmt.Sprintf("%s %s\n", fieldLabelStyle.Render(def.Label+":"), m.fieldInput.View()))
			continue
		}
		line := m.renderField(def.Label, value)
		if opts := def.Options(); opts != nil {
			line = strings.TrimSuffix(line, "\n") + hintStyle.Render("  ←/→") + "\n"
		}
		if i == m.fieldRow {
			line = fieldCursorStyle.Render(strings.TrimSuffix(line, "\n")) + "\n"
		}
		s.WriteString(line)
	}

	s.WriteString("\n")
	s.WriteString(m.renderField("Valor comissão", crm.FormatBRL(f.CommissionValue())))
	return s.String()
}

func (m Model) renderFollowupHelp() string {
	if m.editingField {
		return helpStyle.Render("Enter: Save • Esc: Cancel")
	}
	help := []string{"↑/↓: Field", "←/→: Change option", "Enter: Edit text", "d: Delete", "Esc: Back", "q: Quit"}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleFollowupDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	def := crm.FollowupFields[m.fieldRow]

	if m.editingField {
		switch msg.String() {
		case "enter":
			_, m.err = m.state.UpdateFollowupField(m.selectedID, def.Name, m.fieldInput.Value())
			m.editingField = false
			return m, nil
		case "esc":
			m.editingField = false
			return m, nil
		}
		var cmd tea.Cmd
		m.fieldInput, cmd = m.fieldInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
	case "up", "k":
		if m.fieldRow > 0 {
			m.fieldRow--
		}
	case "down", "j":
		if m.fieldRow < len(crm.FollowupFields)-1 {
			m.fieldRow++
		}
	case "left", "right", " ":
		if opts := def.Options(); opts != nil {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			m.cycleFollowupOption(def, opts, delta)
		}
	case "enter":
		if def.Options() == nil {
			f, err := m.state.GetFollowup(m.selectedID)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.fieldInput = textinput.New()
			m.fieldInput.CharLimit = 200
			m.fieldInput.SetValue(crm.FollowupFieldValue(f, def.Name))
			if def.Kind == crm.FieldDate {
				m.fieldInput.Placeholder = "AAAA-MM-DD"
			}
			m.fieldInput.Focus()
			m.editingField = true
		}
	case "d":
		m.viewMode = ViewConfirmDelete
	}
	return m, nil
}

func (m *Model) cycleFollowupOption(def crm.FollowupField, opts []string, delta int) {
	f, err := m.state.GetFollowup(m.selectedID)
	if err != nil {
		m.err = err
		return
	}
	current := crm.FollowupFieldValue(f, def.Name)
	i := slices.Index(opts, current)
	if i < 0 {
		i = 0
	}
	next := opts[(i+delta+len(opts))%len(opts)]
	_, m.err = m.state.UpdateFollowupField(m.selectedID, def.Name, next)
}
