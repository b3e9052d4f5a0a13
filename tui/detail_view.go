// ABOUTME: Detail view for the TUI
// ABOUTME: Read-only record pages with client history and per-tab actions
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustentalski/salescrm/crm"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(strings.ToUpper(tabNames[m.entityType])))
	s.WriteString("\n\n")

	switch m.entityType {
	case EntityClients:
		s.WriteString(m.renderClientDetail())
	case EntityCampaigns:
		s.WriteString(m.renderCampaignDetail())
	case EntityStrategies:
		s.WriteString(m.renderStrategyDetail())
	case EntityAgenda:
		s.WriteString(m.renderAgendaDetail())
	case EntityFollowups:
		s.WriteString(m.renderFollowupDetail())
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}
	s.WriteString("\n")

	if m.entityType == EntityFollowups {
		s.WriteString(m.renderFollowupHelp())
	} else {
		s.WriteString(m.renderDetailHelp())
	}

	return s.String()
}

func (m Model) renderClientDetail() string {
	c, err := m.state.GetClient(m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var s strings.Builder
	s.WriteString(m.renderField("Nome", c.Name))
	s.WriteString(m.renderField("Endereço", c.Address))
	s.WriteString(m.renderField("Telefone", c.Phone))
	s.WriteString(m.renderField("Email", c.Email))
	s.WriteString(m.renderField("Redes sociais", c.SocialHandles))
	s.WriteString(m.renderField("Aniversário", c.Birthday))
	s.WriteString(m.renderField("Empresa", c.Company))
	s.WriteString(m.renderField("Cargo", c.Role))
	s.WriteString(m.renderField("Abordagem", c.Approach))
	s.WriteString(m.renderField("Cadastrado em", c.CreatedAt.Local().Format("02/01/2006")))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("HISTÓRICO"))
	s.WriteString("\n")

	entries := m.state.ClientHistory(c.Name)
	if len(entries) == 0 {
		s.WriteString("  Nenhuma interação encontrada\n")
	}
	for _, e := range entries {
		date := "-"
		if !e.Date.IsZero() {
			date = e.Date.Format("02/01/2006 15:04")
		}
		s.WriteString(fmt.Sprintf("  • [%s] %s: %s\n", date, e.Kind, e.Description))
	}

	return s.String()
}

func (m Model) renderCampaignDetail() string {
	c, err := m.state.GetCampaign(m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var s strings.Builder
	s.WriteString(m.renderField("Nome", c.Name))
	s.WriteString(m.renderField("Descrição", c.Description))
	s.WriteString(m.renderField("Período", strings.Trim(c.StartDate+" → "+c.EndDate, " →")))
	s.WriteString(m.renderField("Produto", string(c.Product)))
	s.WriteString(m.renderField("Público-alvo", c.TargetAudience))
	s.WriteString(m.renderField("Meta conversão", crm.FormatPercent(c.ConversionGoal.Float())))
	s.WriteString(m.renderField("Orçamento", crm.FormatBRL(c.Budget.Float())))
	s.WriteString(m.renderField("Canais", channelLabels(c.Channels)))
	s.WriteString(m.renderField("Status", string(c.Status)))
	s.WriteString(m.renderField("Notas", c.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("ESTRATÉGIAS"))
	s.WriteString("\n")
	for _, st := range m.state.Strategies() {
		if st.CampaignID == c.ID {
			s.WriteString(fmt.Sprintf("  • %s %s\n", st.WeekRange, st.Group))
		}
	}

	return s.String()
}

func (m Model) renderStrategyDetail() string {
	var s strings.Builder
	for _, st := range m.state.Strategies() {
		if st.ID != m.selectedID {
			continue
		}
		s.WriteString(m.renderField("Semana", st.WeekRange))
		s.WriteString(m.renderField("Grupo", st.Group))
		s.WriteString(m.renderField("Nomes", st.Names))
		s.WriteString(m.renderField("Produto", string(st.Product)))
		s.WriteString(m.renderField("Campanha", st.Campaign))
		s.WriteString(m.renderField("Canais", channelLabels(st.Channels)))
		s.WriteString(m.renderField("Indicações", st.Indications))
		s.WriteString(m.renderField("Notas", st.Notes))
		return s.String()
	}
	return fmt.Sprintf("Error: strategy %s: %v", m.selectedID, crm.ErrNotFound)
}

func (m Model) renderAgendaDetail() string {
	it, err := m.state.GetAgendaItem(m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	status := "Pendente"
	if it.Done {
		status = "Concluído"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Contato", it.ContactName))
	s.WriteString(m.renderField("Indicado por", it.RelatedPerson))
	s.WriteString(m.renderField("Relação", it.RelationNote))
	s.WriteString(m.renderField("Empresa", it.Company))
	s.WriteString(m.renderField("Condomínio", it.Condominium))
	s.WriteString(m.renderField("Telefone", it.Phone))
	s.WriteString(m.renderField("Email", it.Email))
	s.WriteString(m.renderField("Quando", whenLabel(it)))
	s.WriteString(m.renderField("Tipo", string(it.ContactType)))
	s.WriteString(m.renderField("Prioridade", string(it.Priority)))
	s.WriteString(m.renderField("Origem", it.Source))
	s.WriteString(m.renderField("Notas", it.Notes))
	s.WriteString(m.renderField("Status", status))
	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{"Esc: Back"}
	switch m.entityType {
	case EntityClients:
		help = append(help, "a: Schedule", "g: Graph")
	case EntityCampaigns:
		help = append(help, "e: Edit", "g: Graph")
	case EntityAgenda:
		help = append(help, "x: Toggle done")
	}
	help = append(help, "d: Delete", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entityType == EntityFollowups {
		return m.handleFollowupDetailKeys(msg)
	}

	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
	case "d":
		m.viewMode = ViewConfirmDelete
	case "e":
		if m.entityType == EntityCampaigns {
			m.initFormInputs(m.selectedID)
			m.viewMode = ViewEdit
		}
	case "a":
		if m.entityType == EntityClients {
			clientID := m.selectedID
			m.switchTab(EntityAgenda)
			m.initAgendaForm(clientID)
			m.viewMode = ViewEdit
		}
	case "x":
		if m.entityType == EntityAgenda {
			_, m.err = m.state.ToggleAgendaDone(m.selectedID)
		}
	case "g":
		if m.entityType == EntityClients || m.entityType == EntityCampaigns {
			m.generateGraph()
			m.viewMode = ViewGraph
		}
	}

	return m, nil
}
