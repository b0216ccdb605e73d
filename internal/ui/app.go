package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/jenky/internal/action"
	"github.com/five82/jenky/internal/menu"
)

const defaultRefreshTick = 2 * time.Second

// Host is what the interactive mode needs from the application.
type Host interface {
	Items(ctx context.Context, flow menu.Flow, raw string) []menu.Item
	Run(ctx context.Context, arg string) (action.Result, error)
	SaveTheme(name string) error
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Host        Host
	ThemeName   string
	RefreshTick time.Duration
	// Flow and Query set the starting point; empty Flow is the jobs flow.
	Flow  menu.Flow
	Query string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	host        Host
	refreshTick time.Duration

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	input    textinput.Model
	width    int
	height   int
	showHelp bool

	// Menu state
	flow     menu.Flow
	items    []menu.Item
	selected int
	loaded   bool

	// Status line
	status       string
	statusFailed bool
	busy         bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.RefreshTick
	if tick <= 0 {
		tick = defaultRefreshTick
	}
	flow := opts.Flow
	if flow == "" {
		flow = menu.FlowMain
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Search jobs, or type s for settings"
	input.SetValue(opts.Query)
	input.CursorEnd()
	input.Focus()

	return Model{
		ctx:         ctx,
		host:        opts.Host,
		refreshTick: tick,
		theme:       GetTheme(opts.ThemeName),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		input:       input,
		flow:        flow,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.loadItems(),
		tickCmd(m.refreshTick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadItems(), tickCmd(m.refreshTick))

	case itemsMsg:
		// Drop results for a query the user has already moved past.
		if msg.flow != m.flow || msg.query != m.input.Value() {
			return m, nil
		}
		switch {
		case !m.loaded:
			m.selected = 0
		case itemsChanged(m.items, msg.items):
			m.selected = keepSelection(m.items, msg.items, m.selected)
		}
		m.items = msg.items
		m.loaded = true
		return m, nil

	case actionMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusFailed = true
			return m, m.loadItems()
		}
		m.status = msg.result.Message
		m.statusFailed = msg.result.Failed
		if nav := msg.result.Nav; !nav.IsZero() {
			m.navigate(nav.Flow, nav.Query)
		}
		return m, m.loadItems()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.host != nil {
			if err := m.host.SaveTheme(m.theme.Name); err != nil {
				m.status = err.Error()
				m.statusFailed = true
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.items)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Autocomplete):
		return m.autocomplete()

	case key.Matches(msg, m.keys.Act):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		if item.Valid && item.Arg != "" {
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Running " + item.Title + "..."
			m.statusFailed = false
			return m, m.runAction(item.Arg)
		}
		return m.autocomplete()

	case key.Matches(msg, m.keys.Back):
		switch {
		case m.flow != menu.FlowMain:
			m.navigate(menu.FlowMain, "")
		case m.input.Value() != "":
			m.navigate(menu.FlowMain, "")
		default:
			return m, nil
		}
		return m, m.loadItems()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.selected = 0
		return m, tea.Batch(cmd, m.loadItems())
	}
	return m, cmd
}

func (m Model) autocomplete() (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok || item.Autocomplete == "" {
		return m, nil
	}
	flow := item.Flow
	if flow == "" {
		flow = m.flow
	}
	m.navigate(flow, item.Autocomplete)
	return m, m.loadItems()
}

// navigate switches flow and query and resets the selection.
func (m *Model) navigate(flow menu.Flow, query string) {
	if flow != "" {
		m.flow = flow
	}
	m.input.SetValue(query)
	m.input.CursorEnd()
	m.selected = 0
	m.loaded = false
}

func (m Model) selectedItem() (menu.Item, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return menu.Item{}, false
	}
	return m.items[m.selected], true
}

// keepSelection follows the selected item by UID or title across refreshes.
func keepSelection(prev, next []menu.Item, selected int) int {
	if len(next) == 0 {
		return 0
	}
	if selected >= 0 && selected < len(prev) {
		current := prev[selected]
		for i, item := range next {
			if item.UID == current.UID && item.Title == current.Title {
				return i
			}
		}
	}
	return min(selected, len(next)-1)
}

func itemsChanged(prev, next []menu.Item) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i] != next[i] {
			return true
		}
	}
	return false
}

// Messages

type tickMsg time.Time

type itemsMsg struct {
	flow  menu.Flow
	query string
	items []menu.Item
}

type actionMsg struct {
	result action.Result
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadItems() tea.Cmd {
	if m.host == nil {
		return nil
	}
	ctx, host, flow, q := m.ctx, m.host, m.flow, m.input.Value()
	return func() tea.Msg {
		return itemsMsg{flow: flow, query: q, items: host.Items(ctx, flow, q)}
	}
}

func (m Model) runAction(arg string) tea.Cmd {
	if m.host == nil {
		return nil
	}
	ctx, host := m.ctx, m.host
	return func() tea.Msg {
		res, err := host.Run(ctx, arg)
		if err != nil {
			err = fmt.Errorf("action failed: %w", err)
		}
		return actionMsg{result: res, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	var progOpts []tea.ProgramOption
	progOpts = append(progOpts, tea.WithAltScreen())
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
