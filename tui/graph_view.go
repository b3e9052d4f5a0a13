// ABOUTME: Graph view for the TUI
// ABOUTME: Shows graphviz DOT source for clients, campaigns and the pipeline
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sustentalski/salescrm/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("GRAPH VIEW"))
	s.WriteString("\n\n")

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.graphDOT == "":
		s.WriteString("Generating graph...\n")
	default:
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(m.graphDOT))
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderGraphHelp())

	return s.String()
}

func (m Model) renderGraphHelp() string {
	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewList
		if m.selectedID != "" {
			m.viewMode = ViewDetail
		}
		m.graphDOT = ""
		m.err = nil
	}
	return m, nil
}

// generateGraph renders the DOT source for the active tab: the selected
// client's graph, the campaign map, or the follow-up pipeline.
func (m *Model) generateGraph() {
	generator := viz.NewGraphGenerator(m.state, log.Default())

	var dot string
	var err error

	switch m.entityType {
	case EntityClients:
		dot, err = generator.Generate(viz.GraphClient, m.selectedID)
	case EntityCampaigns:
		dot, err = generator.Generate(viz.GraphCampaigns, "")
	default:
		dot, err = generator.Generate(viz.GraphPipeline, "")
	}

	m.graphDOT = dot
	m.err = err
}
