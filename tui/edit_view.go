// ABOUTME: Form view for creating records in the TUI
// ABOUTME: Client, campaign (create or edit in place), strategy and agenda forms
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sustentalski/salescrm/models"
)

var (
	clientFormLabels = []string{
		"Nome", "Endereço", "Telefone", "Email", "Redes sociais",
		"Aniversário (AAAA-MM-DD)", "Empresa", "Cargo", "Abordagem",
	}
	campaignFormLabels = []string{
		"Nome", "Descrição", "Início (AAAA-MM-DD)", "Fim (AAAA-MM-DD)",
		"Produto (RECIEE/RECIAG/GD/ML/ELETROPOSTO)", "Público-alvo", "Meta de conversão (%)",
		"Orçamento (R$)", "Canais (email, reuniao, whatsapp, telefonema, visita)",
		"Status (Planejada/Ativa/Pausada/Finalizada)", "Notas",
	}
	strategyFormLabels = []string{
		"Semana", "Grupo", "Nomes", "Produto", "Campanha (nome ou Outra)",
		"Canais (email, reuniao, whatsapp, telefonema, visita)", "Indicações", "Notas",
	}
	agendaFormLabels = []string{
		"Contato", "Indicado por", "Relação", "Empresa", "Condomínio", "Telefone", "Email",
		"Quando (AAAA-MM-DDTHH:MM)", "Tipo (ligação/whatsapp/visita/reunião/email)",
		"Prioridade (alta/média/baixa)", "Origem", "Notas",
	}
)

func (m Model) renderEditView() string {
	var s strings.Builder

	if m.editingID == "" {
		s.WriteString(titleStyle.Render("NOVO · " + tabNames[m.entityType]))
	} else {
		s.WriteString(titleStyle.Render("EDITAR · " + tabNames[m.entityType]))
	}
	s.WriteString("\n\n")

	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(fieldLabelStyle.Render(shortLabel(m.formLabels[i])))
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderEditHelp())

	return s.String()
}

// shortLabel drops the format hint, which is shown as the placeholder.
func shortLabel(label string) string {
	if i := strings.Index(label, " ("); i > 0 {
		return label[:i]
	}
	return label
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex - 1 + len(m.formInputs)) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		if err := m.saveEntity(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.viewMode = ViewList
		if m.editingID != "" {
			m.viewMode = ViewDetail
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

// initFormInputs builds the form for the active tab. id selects a campaign
// to edit; other tabs only create.
func (m *Model) initFormInputs(id string) {
	m.editingID = ""
	switch m.entityType {
	case EntityClients:
		m.setForm(clientFormLabels, nil)
	case EntityCampaigns:
		m.initCampaignForm(id)
	case EntityStrategies:
		m.setForm(strategyFormLabels, nil)
	case EntityAgenda:
		m.initAgendaForm("")
	}
}

func (m *Model) setForm(labels []string, values []string) {
	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = label
		inputs[i].CharLimit = 500
		if i < len(values) {
			inputs[i].SetValue(values[i])
		}
	}
	m.formInputs = inputs
	m.formLabels = labels
	m.focusIndex = 0
	m.err = nil
	m.updateFormFocus()
}

func (m *Model) initCampaignForm(id string) {
	if id == "" {
		m.setForm(campaignFormLabels, nil)
		return
	}
	c, err := m.state.GetCampaign(id)
	if err != nil {
		m.setForm(campaignFormLabels, nil)
		m.err = err
		return
	}
	m.setForm(campaignFormLabels, []string{
		c.Name, c.Description, c.StartDate, c.EndDate, string(c.Product), c.TargetAudience,
		numberText(c.ConversionGoal), numberText(c.Budget), channelKeys(c.Channels), string(c.Status), c.Notes,
	})
	m.editingID = id
}

// initAgendaForm opens a new agenda item, prefilled from a client when clientID is set.
func (m *Model) initAgendaForm(clientID string) {
	var values []string
	if clientID != "" {
		if d, err := m.state.AgendaDraftFromClient(clientID); err == nil {
			values = []string{d.ContactName, "", "", d.Company, "", d.Phone, d.Email, "", string(d.ContactType), string(d.Priority)}
		}
	}
	m.setForm(agendaFormLabels, values)
	m.editingID = ""
}

func numberText(n models.Number) string {
	if n.Float() == 0 {
		return ""
	}
	return fmt.Sprintf("%g", n.Float())
}

func channelKeys(set models.ChannelSet) string {
	var keys []string
	for _, c := range set.Active() {
		keys = append(keys, string(c))
	}
	return strings.Join(keys, ", ")
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) value(i int) string {
	return strings.TrimSpace(m.formInputs[i].Value())
}

func (m Model) saveEntity() error {
	switch m.entityType {
	case EntityClients:
		return m.saveClient()
	case EntityCampaigns:
		return m.saveCampaign()
	case EntityStrategies:
		return m.saveStrategy()
	case EntityAgenda:
		return m.saveAgendaItem()
	}
	return nil
}

func (m Model) saveClient() error {
	_, err := m.state.AddClient(models.Client{
		Name:          m.value(0),
		Address:       m.value(1),
		Phone:         m.value(2),
		Email:         m.value(3),
		SocialHandles: m.value(4),
		Birthday:      m.value(5),
		Company:       m.value(6),
		Role:          m.value(7),
		Approach:      m.value(8),
	})
	return err
}

func (m Model) saveCampaign() error {
	c := models.Campaign{}
	if m.editingID != "" {
		existing, err := m.state.GetCampaign(m.editingID)
		if err != nil {
			return err
		}
		c = existing
	}
	c.Name = m.value(0)
	c.Description = m.value(1)
	c.StartDate = m.value(2)
	c.EndDate = m.value(3)
	c.Product = models.Product(strings.ToUpper(m.value(4)))
	c.TargetAudience = m.value(5)
	c.ConversionGoal = models.ParseNumber(m.value(6))
	c.Budget = models.ParseNumber(m.value(7))
	c.Channels = models.ParseChannels(m.value(8))
	c.Status = models.CampaignStatus(m.value(9))
	c.Notes = m.value(10)

	_, err := m.state.SaveCampaign(c)
	return err
}

func (m Model) saveStrategy() error {
	_, err := m.state.AddStrategy(models.Strategy{
		WeekRange:   m.value(0),
		Group:       m.value(1),
		Names:       m.value(2),
		Product:     models.Product(strings.ToUpper(m.value(3))),
		CampaignID:  m.campaignRef(m.value(4)),
		Channels:    models.ParseChannels(m.value(5)),
		Indications: m.value(6),
		Notes:       m.value(7),
	})
	return err
}

// campaignRef maps a typed campaign name to its id; anything else is kept as typed.
func (m Model) campaignRef(typed string) string {
	for _, c := range m.state.Campaigns() {
		if strings.EqualFold(c.Name, typed) || c.ID == typed {
			return c.ID
		}
	}
	return typed
}

func (m Model) saveAgendaItem() error {
	item := models.AgendaItem{
		ContactName:   m.value(0),
		RelatedPerson: m.value(1),
		RelationNote:  m.value(2),
		Company:       m.value(3),
		Condominium:   m.value(4),
		Phone:         m.value(5),
		Email:         m.value(6),
		Datetime:      m.value(7),
		ContactType:   models.ContactType(m.value(8)),
		Priority:      models.Priority(m.value(9)),
		Source:        m.value(10),
		Notes:         m.value(11),
	}
	if item.Datetime != "" {
		if _, ok := item.When(); !ok {
			return fmt.Errorf("data inválida %q (use AAAA-MM-DDTHH:MM)", item.Datetime)
		}
	}
	_, err := m.state.AddAgendaItem(item)
	return err
}
