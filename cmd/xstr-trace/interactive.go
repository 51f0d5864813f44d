package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kurahaupo/libxstr/internal/scenario"
)

type keyMap struct {
	Next key.Binding
	Prev key.Binding
	End  key.Binding
	Tab  key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.End, k.Tab, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Next: key.NewBinding(key.WithKeys("down", "j", "enter", " "), key.WithHelp("↓/enter", "step")),
	Prev: key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "back")),
	End:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "run to end")),
	Tab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next walkthrough")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// stepModel reveals a walkthrough's trace one record at a time.
type stepModel struct {
	st       styles
	help     help.Model
	backend  string
	results  []*scenario.Result
	lines    [][]string
	viewport viewport.Model
	current  int
	step     int
	ready    bool
}

func newStepModel(results []*scenario.Result, backend string) *stepModel {
	m := &stepModel{
		st:      newStyles(true),
		help:    help.New(),
		backend: backend,
		results: results,
	}
	for _, res := range results {
		m.lines = append(m.lines, m.st.lines(res))
	}
	return m
}

func (m *stepModel) Init() tea.Cmd {
	return nil
}

func (m *stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - 4
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.help.Width = msg.Width
		m.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			if m.step < m.total() {
				m.step++
			}
		case key.Matches(msg, keys.Prev):
			if m.step > 0 {
				m.step--
			}
		case key.Matches(msg, keys.End):
			m.step = m.total()
		case key.Matches(msg, keys.Tab):
			if len(m.results) > 0 {
				m.current = (m.current + 1) % len(m.results)
				m.step = 0
			}
		}
		m.refresh()
	}

	return m, nil
}

// total is the number of steps in the current walkthrough, counting the
// footer as the final one.
func (m *stepModel) total() int {
	if len(m.lines) == 0 {
		return 0
	}
	return len(m.lines[m.current]) + 1
}

func (m *stepModel) body() string {
	if len(m.results) == 0 {
		return ""
	}
	lines := m.lines[m.current]
	shown := min(m.step, len(lines))

	var b strings.Builder
	b.WriteString(strings.Join(lines[:shown], "\n"))
	if m.step > len(lines) {
		b.WriteString("\n\n")
		b.WriteString(m.st.footer(m.results[m.current]))
	}
	return b.String()
}

func (m *stepModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.body())
	m.viewport.GotoBottom()
}

func (m *stepModel) View() string {
	if len(m.results) == 0 {
		return "No walkthroughs selected.\n\nPress q to quit."
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.st.header(m.results[m.current], m.backend))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func runInteractive(results []*scenario.Result, backend string) error {
	p := tea.NewProgram(newStepModel(results, backend), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
