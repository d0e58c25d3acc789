package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/geolocator/backend/internal/debounce"
	"github.com/geolocator/backend/internal/mapview"
	"github.com/geolocator/backend/internal/search"
)

const (
	defaultMapWidth  = 60
	defaultMapHeight = 15
)

// Options configures the terminal front end.
type Options struct {
	Suggester     search.Suggester
	DebounceDelay time.Duration
	StalePolicy   search.StalePolicy
	Map           mapview.Options
	Logger        zerolog.Logger
}

// Model is the location search screen: a query field with a suggestion
// dropdown above a map of the selected location.
type Model struct {
	input   textinput.Model
	spinner spinner.Model

	panel     *search.Panel
	suggester search.Suggester
	debouncer *debounce.Debouncer[string]
	debounced chan string

	host       *mapview.Host
	layer      *TerminalLayer
	transition mapview.Transition
	mapErr     error

	cursor   int
	inFlight int
	width    int
	height   int
	logger   zerolog.Logger
}

// NewModel creates the screen and mounts its map.
func NewModel(opts Options) (Model, error) {
	ti := textinput.New()
	ti.Placeholder = "Search"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	// keep only the newest settled value for the update loop
	ch := make(chan string, 1)
	emit := func(q string) {
		for {
			select {
			case ch <- q:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	}

	layer := NewTerminalLayer()
	host := mapview.NewHost(func() (mapview.Layer, error) { return layer, nil }, opts.Map)
	if _, err := host.Mount(); err != nil {
		return Model{}, err
	}

	return Model{
		input:     ti,
		spinner:   s,
		panel:     search.New(search.WithLogger(opts.Logger), search.WithStaleResponses(opts.StalePolicy)),
		suggester: opts.Suggester,
		debouncer: debounce.New(opts.DebounceDelay, emit),
		debounced: ch,
		host:      host,
		layer:     layer,
		logger:    opts.Logger,
	}, nil
}

// Close stops pending work and tears the map down.
func (m Model) Close() {
	m.debouncer.Stop()
	m.host.Unmount()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForDebounced(m.debounced))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case debouncedMsg:
		cmds := []tea.Cmd{waitForDebounced(m.debounced)}
		if req := m.panel.Debounced(msg.query); req != nil {
			cmds = append(cmds, m.fetch(*req))
		}
		return m, tea.Batch(cmds...)

	case suggestionsMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		m.panel.Apply(msg.result)
		m.clampCursor()
		return m, nil

	case frameMsg:
		if m.layer.Animating() {
			return m, nextFrame()
		}
		return m, nil

	case spinner.TickMsg:
		if m.inFlight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.input.Focused() {
			m.input.Blur()
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyUp:
		if m.panel.Visible() && m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.panel.Visible() && m.cursor < len(m.panel.Suggestions())-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyEnter:
		if !m.panel.Visible() {
			return m, nil
		}
		return m.selectSuggestion(m.cursor)
	case tea.KeyTab:
		if m.input.Focused() {
			return m, nil
		}
		cmd := m.focus()
		return m, cmd
	}

	var cmds []tea.Cmd
	if !m.input.Focused() {
		cmds = append(cmds, m.focus())
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if after := m.input.Value(); after != before {
		m.cursor = 0
		m.debouncer.Push(after)
		if req := m.panel.Input(after); req != nil {
			cmds = append(cmds, m.fetch(*req))
		}
	}
	return m, tea.Batch(cmds...)
}

// focus gives the field focus back and lets the panel show suggestions again.
func (m *Model) focus() tea.Cmd {
	cmds := []tea.Cmd{m.input.Focus()}
	if req := m.panel.Focus(); req != nil {
		cmds = append(cmds, m.fetch(*req))
	}
	return tea.Batch(cmds...)
}

func (m *Model) fetch(req search.FetchRequest) tea.Cmd {
	m.inFlight++
	return tea.Batch(fetchSuggestions(m.suggester, req), m.spinner.Tick)
}

func (m Model) selectSuggestion(i int) (tea.Model, tea.Cmd) {
	sel, err := m.panel.Select(i)
	if err != nil {
		return m, nil
	}

	m.cursor = 0
	m.input.SetValue(m.panel.Query())
	m.input.CursorEnd()
	m.input.Blur()
	m.debouncer.Push(m.panel.Query())

	mp, ok := m.host.Current()
	if !ok {
		return m, nil
	}
	t, err := mp.Show(sel)
	if err != nil {
		m.mapErr = err
		m.logger.Error().Err(err).Msg("map update failed")
		return m, nil
	}
	m.mapErr = nil
	m.transition = t
	return m, nextFrame()
}

func (m *Model) clampCursor() {
	if n := len(m.panel.Suggestions()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Geoapify Map"))
	b.WriteString("\n\n")

	field := m.input.View()
	if m.inFlight > 0 {
		field += " " + m.spinner.View()
	}
	b.WriteString(inputStyle.Render(field))
	b.WriteString("\n")

	rows := 0
	if m.panel.Visible() {
		for i, row := range m.panel.Rows() {
			style := suggestionStyle
			if i == m.cursor {
				style = activeSuggestionStyle
			}
			b.WriteString(style.Render(row))
			b.WriteString("\n")
			rows++
		}
	}
	if err := m.panel.Err(); err != nil {
		b.WriteString(errorStyle.Render("Failed to fetch suggestions. Please try again."))
		b.WriteString("\n")
	}
	if m.mapErr != nil {
		b.WriteString(errorStyle.Render(m.mapErr.Error()))
		b.WriteString("\n")
	}

	w, h := m.mapSize(rows)
	b.WriteString(mapStyle.Render(m.layer.Render(w, h)))
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("type to search • ↑/↓ choose • enter select • tab focus • esc blur/quit • ctrl+c quit"))
	return b.String()
}

func (m Model) mapSize(rows int) (int, int) {
	if m.width == 0 || m.height == 0 {
		return defaultMapWidth, defaultMapHeight
	}
	return max(m.width-6, 10), max(m.height-16-rows, 5)
}
