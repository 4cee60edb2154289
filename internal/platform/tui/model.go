package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappyrl/internal/anneal"
	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/registry"
	"github.com/vovakirdan/flappyrl/internal/storage"
)

// Tick rate bounds for the +/- keys.
const (
	minTickRate = 1
	maxTickRate = 240
)

// Options configures a Model.
type Options struct {
	// Policy drives the bird. Nil means a human plays with the flap key.
	Policy *anneal.Policy
	// PolicyID links saved scores to a stored policy. 0 for none.
	PolicyID int64
	// Store receives one score per finished episode. May be nil.
	Store    *storage.Store
	TickRate int
	Width    int
	Height   int
	// ExitOnGameOver quits after the first finished episode.
	ExitOnGameOver bool
}

// Model is the Bubble Tea model that steps an environment on every tick.
type Model struct {
	env        registry.Env
	screen     *core.Screen
	opts       Options
	keys       KeyMap
	help       help.Model
	obs        core.Observation
	action     core.Action
	value      float64
	state      core.GameState
	flap       bool // human flap pending for the next tick
	paused     bool
	episodes   int
	err        error
	quitting   bool
	scoreSaved bool
}

// NewModel resets env and creates a model for it.
func NewModel(env registry.Env, opts Options) (Model, error) {
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultTickRate
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 80, 24
	}

	obs, err := env.Reset()
	if err != nil {
		return Model{}, fmt.Errorf("tui: reset %s: %w", env.ID(), err)
	}

	m := Model{
		env:  env,
		opts: opts,
		keys: DefaultKeyMap(opts.Policy == nil),
		help: help.New(),
		obs:  obs,
	}
	m.screen = core.NewScreen(opts.Width, m.arenaHeight(opts.Height))
	m.help.Width = opts.Width
	m.decide()
	return m, nil
}

// statusLines is the number of rows below the arena.
func (m Model) statusLines() int {
	if m.opts.Policy != nil {
		return 2
	}
	return 1
}

func (m Model) arenaHeight(total int) int {
	return core.Max(0, total-m.statusLines())
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, m.arenaHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
	case key.Matches(msg, m.keys.Flap):
		m.flap = true
	case key.Matches(msg, m.keys.Pause):
		if !m.state.GameOver {
			m.paused = !m.paused
		}
	case key.Matches(msg, m.keys.Restart):
		if m.state.GameOver {
			return m.restart()
		}
	case key.Matches(msg, m.keys.Faster):
		m.opts.TickRate = core.Clamp(m.opts.TickRate*2, minTickRate, maxTickRate)
	case key.Matches(msg, m.keys.Slower):
		m.opts.TickRate = core.Clamp(m.opts.TickRate/2, minTickRate, maxTickRate)
	}
	return m, nil
}

// restart begins a new episode after game over.
func (m Model) restart() (tea.Model, tea.Cmd) {
	obs, err := m.env.Reset()
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.obs = obs
	m.state = m.env.State()
	m.scoreSaved = false
	m.flap = false
	m.decide()
	return m, nil
}

// decide evaluates the policy on the current observation.
func (m *Model) decide() {
	if m.opts.Policy == nil {
		m.action = core.ActionFromBool(m.flap)
		return
	}
	v, err := m.opts.Policy.Value(m.obs)
	if err != nil {
		m.err = err
		return
	}
	m.value = v
	m.action = core.ActionFromBool(v > 0)
}

// handleTick advances the environment by one step.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.err != nil {
		return m, tea.Quit
	}
	if m.paused || m.state.GameOver {
		return m, tickCmd(m.opts.TickRate)
	}

	m.decide()
	if m.err != nil {
		return m, tea.Quit
	}
	m.flap = false

	res, err := m.env.Step(m.action)
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.obs = res.Observation
	m.state = res.Info

	if res.Terminated {
		m.episodes++
		m.saveScore()
		if m.opts.ExitOnGameOver {
			return m, tea.Quit
		}
	}

	return m, tickCmd(m.opts.TickRate)
}

// saveScore records the finished episode once.
func (m *Model) saveScore() {
	if m.scoreSaved {
		return
	}
	m.scoreSaved = true
	if m.opts.Store != nil {
		//nolint:errcheck // Best-effort save, the replay continues regardless
		m.opts.Store.SaveScore(m.env.ID(), m.opts.PolicyID, m.state.Score)
	}
}

// saveScreenshot saves the current arena to a text file.
func (m *Model) saveScreenshot() {
	m.env.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".flappyrl", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.env.ID(), timestamp))

	//nolint:errcheck // Best-effort save
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the arena and the status lines.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.env.Render(m.screen)
	out := RenderScreen(m.screen)

	if m.err != nil {
		return out + "\n" + errorStyle.Render("error: "+m.err.Error())
	}
	if m.opts.Policy != nil {
		out += "\n" + renderDecision(m.obs, m.opts.Policy.Weights, m.value, m.action)
	}
	status := fmt.Sprintf("episode %d  tick %d  %d fps  ", m.episodes+1, m.state.Tick, m.opts.TickRate)
	if m.paused {
		status += "PAUSED  "
	}
	return out + "\n" + statusStyle.Render(status) + m.help.View(m.keys)
}

// Err returns the error that stopped the model, if any.
func (m Model) Err() error {
	return m.err
}

// State returns the latest episode bookkeeping.
func (m Model) State() core.GameState {
	return m.state
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(env registry.Env, opts Options) (core.GameState, error) {
	model, err := NewModel(env, opts)
	if err != nil {
		return core.GameState{}, err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return core.GameState{}, err
	}
	m, ok := final.(Model)
	if !ok {
		return core.GameState{}, nil
	}
	return m.State(), m.Err()
}
