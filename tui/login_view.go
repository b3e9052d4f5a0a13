// ABOUTME: Login and registration screen for the TUI
// ABOUTME: Gates the CRM tabs behind a local user session
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustentalski/salescrm/crm"
)

var loginBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("170")).
	Padding(1, 2).
	Width(56)

var (
	loginLabels    = []string{"Usuário", "Senha"}
	registerLabels = []string{"Usuário", "Senha", "Confirmar senha", "Nome completo", "CEP ou cidade", "CPF", "Email"}
)

func (m *Model) initAuthInputs() {
	labels := loginLabels
	if m.registering {
		labels = registerLabels
	}

	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = label
		inputs[i].CharLimit = 100
		if strings.HasPrefix(label, "Senha") || strings.HasPrefix(label, "Confirmar") {
			inputs[i].EchoMode = textinput.EchoPassword
			inputs[i].EchoCharacter = '•'
		}
	}
	m.authInputs = inputs
	m.authFocus = 0
	m.updateAuthFocus()
}

func (m *Model) updateAuthFocus() {
	for i := range m.authInputs {
		if i == m.authFocus {
			m.authInputs[i].Focus()
		} else {
			m.authInputs[i].Blur()
		}
	}
}

func (m Model) renderLoginView() string {
	var s strings.Builder

	title := "SUSTENTALSKI CRM · Entrar"
	if m.registering {
		title = "SUSTENTALSKI CRM · Cadastro"
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n")

	for i, input := range m.authInputs {
		if i == m.authFocus {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(m.err.Error()))
		s.WriteString("\n")
	}

	help := []string{"Tab: Next field", "Enter: Submit", "Ctrl+R: Toggle register/login", "Ctrl+C: Quit"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, loginBoxStyle.Render(s.String()))
}

func (m Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		m.registering = !m.registering
		m.err = nil
		m.initAuthInputs()
		return m, nil
	case "tab", "down":
		m.authFocus = (m.authFocus + 1) % len(m.authInputs)
		m.updateAuthFocus()
		return m, nil
	case "shift+tab", "up":
		m.authFocus = (m.authFocus - 1 + len(m.authInputs)) % len(m.authInputs)
		m.updateAuthFocus()
		return m, nil
	case "enter":
		if err := m.submitAuth(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.viewMode = ViewList
		m.entityType = EntityClients
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m Model) submitAuth() error {
	v := func(i int) string { return m.authInputs[i].Value() }
	if !m.registering {
		_, err := m.state.Login(v(0), v(1))
		return err
	}
	// The form always has a confirmation field, so an empty one is a mismatch.
	if v(2) == "" && v(1) != "" {
		return crm.ErrPasswordMismatch
	}
	_, err := m.state.Register(crm.Registration{
		Username:  v(0),
		Password:  v(1),
		Confirm:   v(2),
		FullName:  v(3),
		CepOrCity: v(4),
		CPF:       v(5),
		Email:     v(6),
	})
	return err
}

// logout ends the session and returns to the login screen on the default tab.
func (m *Model) logout() {
	m.state.Logout()
	m.viewMode = ViewLogin
	m.entityType = EntityClients
	m.selectedRow = 0
	m.registering = false
	m.err = nil
	m.initAuthInputs()
}
