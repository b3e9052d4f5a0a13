// ABOUTME: TUI view for AI file analyses
// ABOUTME: Lists saved analyses, deletes them and runs new ones in the background
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustentalski/salescrm/models"
)

var (
	analysisBodyStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	analyzingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
)

var errNoAnalyzer = errors.New("no analyzer configured")

// AnalysisCompleteMsg is sent when a background analysis finishes.
type AnalysisCompleteMsg struct {
	FileName string
	Analysis models.Analysis
	Error    error
}

func (m *Model) openAnalyses() {
	m.analysisRow = 0
	m.analysisOpen = false
	m.analysisMessage = ""
	m.err = nil
	m.viewMode = ViewAnalyses
}

func (m Model) renderAnalysesView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Análises"))
	s.WriteString("\n\n")

	if m.analyzing {
		s.WriteString(analyzingStyle.Render("⟳ Analisando " + m.analyzingFile + "..."))
		s.WriteString("\n\n")
	}
	if m.promptingFile {
		s.WriteString("Arquivo: " + m.fileInput.View())
		s.WriteString("\n\n")
	}

	analyses := m.state.Analyses()
	if len(analyses) == 0 {
		s.WriteString(helpStyle.Render("Nenhuma análise salva"))
		s.WriteString("\n")
	} else {
		rows := make([]table.Row, 0, len(analyses))
		for _, a := range analyses {
			rows = append(rows, table.Row{
				a.CreatedAt.Local().Format("02/01/2006 15:04"),
				a.FileName,
				preview(a.Content, 40),
			})
		}
		t := table.New(
			table.WithColumns([]table.Column{
				{Title: "Data", Width: 17},
				{Title: "Arquivo", Width: 20},
				{Title: "Prévia", Width: 40},
			}),
			table.WithRows(rows),
			table.WithFocused(!m.promptingFile),
			table.WithHeight(min(len(rows)+1, 8)),
		)
		if m.analysisRow < len(rows) {
			t.SetCursor(m.analysisRow)
		}
		s.WriteString(t.View())
		s.WriteString("\n")

		if m.analysisOpen && m.analysisRow < len(analyses) {
			width := m.width - 4
			if width < 20 {
				width = 20
			}
			s.WriteString(analysisBodyStyle.Width(width).Render(analyses[m.analysisRow].Content))
			s.WriteString("\n")
		}
	}

	if m.analysisMessage != "" {
		s.WriteString(statusStyle.Render(m.analysisMessage))
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	help := []string{"↑/↓: Navigate", "Enter: Show", "u: Analyze file", "d: Delete", "Esc: Back"}
	if m.promptingFile {
		help = []string{"Enter: Analyze", "Esc: Cancel"}
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func preview(text string, n int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	r := []rune(line)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return line
}

func (m Model) handleAnalysesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.promptingFile {
		return m.handleFilePromptKeys(msg)
	}

	count := len(m.state.Analyses())
	switch msg.String() {
	case "up", "k":
		if m.analysisRow > 0 {
			m.analysisRow--
		}
	case "down", "j":
		if m.analysisRow < count-1 {
			m.analysisRow++
		}
	case "enter":
		if count > 0 {
			m.analysisOpen = !m.analysisOpen
		}
	case "u", "n":
		if m.analyzing {
			return m, nil
		}
		input := textinput.New()
		input.Placeholder = "caminho/do/arquivo.pdf"
		input.CharLimit = 500
		input.Width = 50
		input.Focus()
		m.fileInput = input
		m.promptingFile = true
		m.err = nil
	case "d":
		if m.analysisRow < count {
			a := m.state.Analyses()[m.analysisRow]
			if m.err = m.state.DeleteAnalysis(a.ID); m.err == nil {
				m.analysisMessage = "✓ Análise " + a.FileName + " excluída"
				m.analysisOpen = false
				if m.analysisRow >= count-1 && m.analysisRow > 0 {
					m.analysisRow--
				}
			}
		}
	case "esc":
		if m.analysisOpen {
			m.analysisOpen = false
			return m, nil
		}
		m.err = nil
		m.viewMode = ViewList
	}
	return m, nil
}

func (m Model) handleFilePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.promptingFile = false
		m.fileInput.Blur()
		return m, nil
	case "enter":
		// One analysis at a time; the prompt stays disabled until it reports back.
		if m.analyzing {
			return m, nil
		}
		path := strings.TrimSpace(m.fileInput.Value())
		if path == "" {
			m.err = fmt.Errorf("file path required")
			return m, nil
		}
		if m.analyzer == nil {
			m.err = errNoAnalyzer
			return m, nil
		}
		m.err = nil
		m.analysisMessage = ""
		m.analyzing = true
		m.analyzingFile = filepath.Base(path)
		m.fileInput.Blur()
		return m, m.analyzeFile(path)
	}

	if m.analyzing {
		return m, nil
	}
	var cmd tea.Cmd
	m.fileInput, cmd = m.fileInput.Update(msg)
	return m, cmd
}

// analyzeFile reads and analyzes path off the update loop.
func (m Model) analyzeFile(path string) tea.Cmd {
	state, analyzer := m.state, m.analyzer
	name := filepath.Base(path)
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return AnalysisCompleteMsg{FileName: name, Error: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		a, err := state.Analyze(context.Background(), analyzer, name, string(data))
		return AnalysisCompleteMsg{FileName: name, Analysis: a, Error: err}
	}
}

func (m *Model) handleAnalysisComplete(msg AnalysisCompleteMsg) {
	m.analyzing = false
	m.analyzingFile = ""

	if msg.Error != nil {
		m.err = msg.Error
		m.fileInput.Focus()
		return
	}

	m.promptingFile = false
	m.fileInput.SetValue("")
	m.analysisRow = 0
	m.analysisOpen = true
	m.analysisMessage = "✓ Análise de " + msg.FileName + " salva"
}
