// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Login gate, five CRM tabs, detail/edit/delete flows, calendar popup, analyses and Google sync
package tui

import (
	"database/sql"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sustentalski/salescrm/calendar"
	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/db"
	"github.com/sustentalski/salescrm/sync"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewLogin ViewMode = iota
	ViewList
	ViewDetail
	ViewEdit
	ViewGraph
	ViewConfirmDelete
	ViewCalendar
	ViewSync
	ViewAnalyses
)

// EntityType is the active tab.
type EntityType int

const (
	EntityClients EntityType = iota
	EntityCampaigns
	EntityStrategies
	EntityAgenda
	EntityFollowups
)

var tabNames = []string{"CRM", "Campanhas", "Estratégia", "Agenda", "Follow-up"}

// Model is the main bubbletea model
type Model struct {
	state      *crm.State
	db         *sql.DB
	now        func() time.Time
	viewMode   ViewMode
	entityType EntityType

	// List view state
	selectedRow int
	searchQuery string
	searching   bool
	searchInput textinput.Model

	// Detail view state
	selectedID string

	// Edit view state
	formInputs []textinput.Model
	formLabels []string
	focusIndex int
	editingID  string

	// Follow-up field editing
	fieldRow     int
	editingField bool
	fieldInput   textinput.Model

	// Graph view state
	graphDOT string

	// Calendar popup state
	nav *calendar.Navigator

	// Login and registration state
	registering bool
	authInputs  []textinput.Model
	authFocus   int

	// Delete confirmation state
	deleteMessage string

	// Sync view state
	syncStates      []db.SyncState
	selectedService int
	syncInProgress  map[string]bool
	syncMessages    []string

	// Analyses view state
	analyzer        crm.Analyzer
	analysisRow     int
	analysisOpen    bool
	analysisMessage string
	fileInput       textinput.Model
	promptingFile   bool
	analyzing       bool
	analyzingFile   string

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model. database holds the Google sync
// bookkeeping and may be nil, which hides the sync view. analyzer backs
// the analyses view; nil leaves analysis disabled.
func NewModel(state *crm.State, database *sql.DB, analyzer crm.Analyzer) Model {
	m := newModel(state, database, time.Now)
	m.analyzer = analyzer
	return m
}

func newModel(state *crm.State, database *sql.DB, now func() time.Time) Model {
	search := textinput.New()
	search.Placeholder = "Buscar..."
	search.CharLimit = 100

	m := Model{
		state:          state,
		db:             database,
		now:            now,
		viewMode:       ViewList,
		entityType:     EntityClients,
		searchInput:    search,
		nav:            calendar.NewNavigator(now),
		syncInProgress: map[string]bool{},
		width:          80,
		height:         24,
	}
	if !state.LoggedIn() {
		m.viewMode = ViewLogin
		m.initAuthInputs()
	}
	return m
}

// Run starts the full-screen program and blocks until it exits.
func Run(state *crm.State, database *sql.DB, analyzer crm.Analyzer) error {
	// Background syncs must not print over the alt screen.
	sync.Progress = io.Discard
	_, err := tea.NewProgram(NewModel(state, database, analyzer), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case SyncCompleteMsg:
		m.handleSyncComplete(msg)
		return m, nil
	case AnalysisCompleteMsg:
		m.handleAnalysisComplete(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewLogin:
		return m.renderLoginView()
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	case ViewCalendar:
		return m.renderCalendarView()
	case ViewSync:
		return m.renderSyncView()
	case ViewAnalyses:
		return m.renderAnalysesView()
	}
	return ""
}

// typing reports whether keys go to a text input.
func (m Model) typing() bool {
	return m.viewMode == ViewLogin || m.viewMode == ViewEdit || m.searching || m.editingField || m.promptingFile
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !m.typing() {
			return m, tea.Quit
		}
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewLogin:
		return m.handleLoginKeys(msg)
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewCalendar:
		return m.handleCalendarKeys(msg)
	case ViewSync:
		return m.handleSyncKeys(msg)
	case ViewAnalyses:
		return m.handleAnalysesKeys(msg)
	}

	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)
