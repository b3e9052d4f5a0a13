// ABOUTME: Tabbed list view for the TUI
// ABOUTME: Per-tab tables with live search, selection and shortcuts into the other views
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

// listing is one tab's table content. ids line up with rows.
type listing struct {
	columns []table.Column
	rows    []table.Row
	ids     []string
}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SUSTENTALSKI CRM"))
	if u, err := m.state.CurrentUser(); err == nil {
		s.WriteString(helpStyle.Render("  " + u.Username))
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.entityType == EntityFollowups {
		s.WriteString(renderMetricsHeader(m.state.Metrics()))
		s.WriteString("\n\n")
	}

	if m.searching || m.searchQuery != "" {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n\n")
	}

	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if m.deleteMessage != "" {
		s.WriteString(statusStyle.Render(m.deleteMessage))
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		if EntityType(i) == m.entityType {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	l := m.currentListing()
	if len(l.rows) == 0 {
		return helpStyle.Render("Nenhum registro")
	}

	height := m.height - 12
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(l.columns),
		table.WithRows(l.rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	if m.selectedRow < len(l.rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

func (m Model) currentListing() listing {
	switch m.entityType {
	case EntityClients:
		return m.clientsListing()
	case EntityCampaigns:
		return m.campaignsListing()
	case EntityStrategies:
		return m.strategiesListing()
	case EntityAgenda:
		return m.agendaListing()
	case EntityFollowups:
		return m.followupsListing()
	}
	return listing{}
}

func (m Model) clientsListing() listing {
	l := listing{columns: []table.Column{
		{Title: "Nome", Width: 25},
		{Title: "Empresa", Width: 20},
		{Title: "Cargo", Width: 15},
		{Title: "Telefone", Width: 15},
		{Title: "Email", Width: 28},
	}}
	for _, c := range m.state.SearchClients(m.searchQuery) {
		l.rows = append(l.rows, table.Row{c.Name, c.Company, c.Role, c.Phone, c.Email})
		l.ids = append(l.ids, c.ID)
	}
	return l
}

func (m Model) campaignsListing() listing {
	l := listing{columns: []table.Column{
		{Title: "Nome", Width: 25},
		{Title: "Produto", Width: 12},
		{Title: "Status", Width: 11},
		{Title: "Início", Width: 11},
		{Title: "Fim", Width: 11},
		{Title: "Orçamento", Width: 14},
	}}
	for _, c := range m.state.SearchCampaigns(m.searchQuery) {
		l.rows = append(l.rows, table.Row{
			c.Name, string(c.Product), string(c.Status), c.StartDate, c.EndDate, crm.FormatBRL(c.Budget.Float()),
		})
		l.ids = append(l.ids, c.ID)
	}
	return l
}

func (m Model) strategiesListing() listing {
	l := listing{columns: []table.Column{
		{Title: "Semana", Width: 16},
		{Title: "Grupo", Width: 16},
		{Title: "Produto", Width: 12},
		{Title: "Campanha", Width: 20},
		{Title: "Canais", Width: 30},
	}}
	for _, st := range m.state.SearchStrategies(m.searchQuery) {
		l.rows = append(l.rows, table.Row{st.WeekRange, st.Group, string(st.Product), st.Campaign, channelLabels(st.Channels)})
		l.ids = append(l.ids, st.ID)
	}
	return l
}

func (m Model) agendaListing() listing {
	l := listing{columns: []table.Column{
		{Title: " ", Width: 2},
		{Title: "Quando", Width: 12},
		{Title: "Contato", Width: 22},
		{Title: "Tipo", Width: 10},
		{Title: "Prioridade", Width: 10},
		{Title: "Empresa", Width: 20},
	}}
	for _, it := range m.state.SearchAgenda(m.searchQuery) {
		l.rows = append(l.rows, table.Row{
			doneMark(it), whenLabel(it), it.ContactName, string(it.ContactType), string(it.Priority), it.Company,
		})
		l.ids = append(l.ids, it.ID)
	}
	return l
}

func doneMark(it models.AgendaItem) string {
	if it.Done {
		return "✓"
	}
	return "○"
}

func whenLabel(it models.AgendaItem) string {
	if t, ok := it.When(); ok {
		return t.Format("02/01 15:04")
	}
	return "-"
}

func channelLabels(set models.ChannelSet) string {
	var labels []string
	for _, c := range set.Active() {
		labels = append(labels, models.ChannelLabel(c))
	}
	return strings.Join(labels, ", ")
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: Details",
		"/: Search",
	}
	if m.entityType != EntityFollowups {
		help = append(help, "n: New")
	}
	help = append(help, "d: Delete")
	switch m.entityType {
	case EntityAgenda:
		help = append(help, "x: Done", "c: Calendar")
	case EntityFollowups:
		help = append(help, "g: Graph")
	case EntityCampaigns:
		help = append(help, "g: Graph")
	}
	help = append(help, "a: Análises")
	if m.db != nil {
		help = append(help, "s: Google sync")
	}
	help = append(help, "L: Logout", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	m.deleteMessage = ""
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.currentListing().ids)-1 {
			m.selectedRow++
		}
	case "tab", "right":
		m.switchTab((m.entityType + 1) % EntityType(len(tabNames)))
	case "shift+tab", "left":
		m.switchTab((m.entityType + EntityType(len(tabNames)) - 1) % EntityType(len(tabNames)))
	case "1", "2", "3", "4", "5":
		m.switchTab(EntityType(msg.String()[0] - '1'))
	case "enter":
		if id := m.getSelectedID(); id != "" {
			m.selectedID = id
			m.fieldRow = 0
			m.viewMode = ViewDetail
		}
	case "/":
		m.searching = true
		m.searchInput.Focus()
	case "esc":
		m.searchQuery = ""
		m.searchInput.SetValue("")
		m.selectedRow = 0
	case "n":
		if m.entityType != EntityFollowups {
			m.selectedID = ""
			m.initFormInputs("")
			m.viewMode = ViewEdit
		}
	case "d":
		if id := m.getSelectedID(); id != "" {
			m.selectedID = id
			m.viewMode = ViewConfirmDelete
		}
	case "x":
		if m.entityType == EntityAgenda {
			if id := m.getSelectedID(); id != "" {
				_, m.err = m.state.ToggleAgendaDone(id)
			}
		}
	case "c":
		if m.entityType == EntityAgenda {
			m.viewMode = ViewCalendar
		}
	case "g":
		if m.entityType == EntityCampaigns || m.entityType == EntityFollowups {
			m.selectedID = ""
			m.generateGraph()
			m.viewMode = ViewGraph
		}
	case "a":
		m.openAnalyses()
	case "s":
		if m.db != nil {
			m.loadSyncStates()
			m.viewMode = ViewSync
		}
	case "L":
		m.logout()
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchQuery = m.searchInput.Value()
	m.selectedRow = 0
	return m, cmd
}

func (m *Model) switchTab(t EntityType) {
	m.entityType = t
	m.selectedRow = 0
	m.searchQuery = ""
	m.searching = false
	m.searchInput.SetValue("")
	m.err = nil
}

func (m Model) getSelectedID() string {
	ids := m.currentListing().ids
	if m.selectedRow < len(ids) {
		return ids[m.selectedRow]
	}
	return ""
}

func renderMetricsHeader(metrics crm.Metrics) string {
	return fmt.Sprintf("Indicações: %d   Fechamentos: %d   Conversão: %s   Estimado: %s   Comissão: %s",
		metrics.TotalIndications, metrics.ClosedCount, crm.FormatPercent(metrics.ConversionRate),
		crm.FormatBRL(metrics.TotalEstimated), crm.FormatBRL(metrics.TotalCommission))
}
