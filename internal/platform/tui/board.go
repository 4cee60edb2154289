package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/storage"
)

const maxBoardRows = 100

// BoardTab selects what the board lists.
type BoardTab int

const (
	TabPolicies BoardTab = iota
	TabScores
)

func (t BoardTab) String() string {
	if t == TabScores {
		return "Scores"
	}
	return "Policies"
}

// BoardKeyMap defines the key bindings for the board.
type BoardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Tab  key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k BoardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Tab, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k BoardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Tab, k.Quit}}
}

// DefaultBoardKeyMap returns default key bindings.
func DefaultBoardKeyMap() BoardKeyMap {
	return BoardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "left", "right"),
			key.WithHelp("tab", "policies/scores"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BoardModel lists stored policies and scores for one environment.
type BoardModel struct {
	envID    string
	store    *storage.Store
	tab      BoardTab
	policies []storage.PolicyEntry
	scores   []storage.ScoreEntry
	table    table.Model
	help     help.Model
	keys     BoardKeyMap
	width    int
	height   int
	err      error
	quitting bool
}

// NewBoardModel loads both lists from the store.
func NewBoardModel(store *storage.Store, envID string, tab BoardTab, width, height int) BoardModel {
	m := BoardModel{
		envID:  envID,
		store:  store,
		tab:    tab,
		keys:   DefaultBoardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.load()
	m.table = m.createTable()
	m.updateRows()
	return m
}

func (m *BoardModel) load() {
	if m.store == nil {
		return
	}
	if m.policies, m.err = m.store.TopPolicies(m.envID, maxBoardRows); m.err != nil {
		return
	}
	m.scores, m.err = m.store.TopScores(m.envID, maxBoardRows)
}

func (m BoardModel) columns() []table.Column {
	if m.tab == TabScores {
		return []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Score", Width: 8},
			{Title: "Policy", Width: 8},
			{Title: "Date", Width: 14},
		}
	}
	weightsW := core.Max(m.width-4-6-6-10-14-10, 20)
	return []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "ID", Width: 6},
		{Title: "Reward", Width: 10},
		{Title: "Weights", Width: weightsW},
		{Title: "Date", Width: 14},
	}
}

// createTable creates a table for the current tab.
func (m BoardModel) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(core.Max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateRows fills the table from the loaded entries.
func (m *BoardModel) updateRows() {
	var rows []table.Row
	if m.tab == TabScores {
		rows = make([]table.Row, len(m.scores))
		for i, s := range m.scores {
			policy := "human"
			if s.PolicyID > 0 {
				policy = fmt.Sprintf("#%d", s.PolicyID)
			}
			rows[i] = table.Row{
				fmt.Sprintf("#%d", i+1),
				fmt.Sprintf("%d", s.Score),
				policy,
				s.CreatedAt.Format("Jan 02 15:04"),
			}
		}
	} else {
		rows = make([]table.Row, len(m.policies))
		for i, p := range m.policies {
			rows[i] = table.Row{
				fmt.Sprintf("#%d", i+1),
				fmt.Sprintf("%d", p.ID),
				fmt.Sprintf("%g", p.Reward),
				formatVector(p.Weights),
				p.CreatedAt.Format("Jan 02 15:04"),
			}
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the board.
func (m BoardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the board.
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.tab = 1 - m.tab
			m.table = m.createTable()
			m.updateRows()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the board.
func (m BoardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s - %s", strings.ToUpper(m.tab.String()), m.envID)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m BoardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.err != nil:
		return errorStyle.Render("cannot load: " + m.err.Error())
	case m.tab == TabPolicies && len(m.policies) == 0:
		return emptyStyle.Render("No policies trained yet.\nRun `flappyrl train` to find one!")
	case m.tab == TabScores && len(m.scores) == 0:
		return emptyStyle.Render("No scores recorded yet.\nPlay or replay an episode to set one!")
	}
	return m.table.View()
}

// RunBoard runs the board until the user quits.
func RunBoard(store *storage.Store, envID string, tab BoardTab, width, height int) error {
	p := tea.NewProgram(NewBoardModel(store, envID, tab, width, height), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
