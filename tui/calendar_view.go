// ABOUTME: Calendar popup for the agenda tab
// ABOUTME: Month grid with event markers, month navigation and the selected day's items
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustentalski/salescrm/calendar"
	"github.com/sustentalski/salescrm/models"
)

var (
	calendarBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")).
				Padding(1, 2)

	dayStyle      = lipgloss.NewStyle().Width(5).Align(lipgloss.Right)
	dayEventStyle = dayStyle.Foreground(lipgloss.Color("170")).Bold(true)
	dayTodayStyle = dayStyle.Underline(true)
	daySelStyle   = dayStyle.Background(lipgloss.Color("39")).Foreground(lipgloss.Color("0"))
	weekdayStyle  = dayStyle.Foreground(lipgloss.Color("240"))
)

var (
	monthNames = []string{
		"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
		"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
	}
	weekdayNames = []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}
)

func (m Model) projection() calendar.Month[models.AgendaItem] {
	return calendar.ProjectFor(m.nav, m.state.Agenda())
}

func (m Model) renderCalendarView() string {
	grid := m.projection()

	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", monthNames[grid.Month-1], grid.Year)))
	s.WriteString("\n")

	for _, name := range weekdayNames {
		s.WriteString(weekdayStyle.Render(name))
	}
	s.WriteString("\n")

	for _, week := range grid.Weeks() {
		for _, d := range week {
			if d == nil {
				s.WriteString(dayStyle.Render(""))
				continue
			}
			label := fmt.Sprintf("%d", d.Number)
			if d.HasEvent {
				label += "•"
			}
			switch {
			case d.Selected:
				s.WriteString(daySelStyle.Render(label))
			case d.HasEvent:
				s.WriteString(dayEventStyle.Render(label))
			case d.Today:
				s.WriteString(dayTodayStyle.Render(label))
			default:
				s.WriteString(dayStyle.Render(label))
			}
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render(m.nav.Selected().Format("02/01/2006")))
	s.WriteString("\n")
	if len(grid.SelectedItems) == 0 {
		s.WriteString("  Nenhum compromisso\n")
	}
	for _, it := range grid.SelectedItems {
		t, _ := it.When()
		s.WriteString(fmt.Sprintf("  %s %s %s (%s)\n", doneMark(it), t.Format("15:04"), it.ContactName, it.ContactType))
	}

	help := []string{"←/→: Day", "↑/↓: Week", "[/]: Month", "t: Today", "Esc: Back"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, calendarBoxStyle.Render(s.String()))
}

func (m Model) handleCalendarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
	case "[", "pgup":
		m.nav.Prev()
	case "]", "pgdown":
		m.nav.Next()
	case "left", "h":
		m.moveDay(-1)
	case "right", "l":
		m.moveDay(1)
	case "up", "k":
		m.moveDay(-7)
	case "down", "j":
		m.moveDay(7)
	case "t":
		m.nav.Today()
	}
	return m, nil
}

// moveDay shifts the selection within the displayed month, starting from
// the 1st when the selection lies in another month.
func (m Model) moveDay(delta int) {
	year, month := m.nav.Month()
	sel := m.nav.Selected()
	day := 1
	if sel.Year() == year && sel.Month() == month {
		day = sel.Day() + delta
	}

	last := 0
	for _, c := range m.projection().Cells {
		if c != nil {
			last = c.Number
		}
	}
	day = max(1, min(day, last))
	m.nav.Select(day)
}
