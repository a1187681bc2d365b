package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/astrokit/cel-runtime/cel"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelect modelState = iota
	stateInput
	stateShowResult
)

type interactiveModel struct {
	err      error
	handle   *cel.Handle
	cleanup  func()
	wasmFile string
	label    string
	props    []string
	input    textinput.Model
	result   string
	selected int
	state    modelState
}

type loadedMsg struct {
	err     error
	handle  *cel.Handle
	cleanup func()
	props   []string
}

type appliedMsg struct {
	err error
}

type derivedMsg struct {
	err    error
	result string
}

func newInteractiveModel(wasmFile string) *interactiveModel {
	label := "built-in engine"
	if wasmFile != "" {
		label = wasmFile
	}
	return &interactiveModel{wasmFile: wasmFile, label: label, state: stateSelect}
}

func (m *interactiveModel) load() tea.Msg {
	eng, cleanup, err := buildEngine(m.wasmFile)
	if err != nil {
		return loadedMsg{err: err}
	}
	h, err := cel.New(eng)
	if err != nil {
		cleanup()
		return loadedMsg{err: err}
	}
	return loadedMsg{handle: h, cleanup: cleanup, props: cel.Properties()}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateInput {
			switch msg.String() {
			case "ctrl+c":
				m.teardown()
				return m, tea.Quit
			case "enter":
				return m, m.apply
			case "esc":
				m.state = stateSelect
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.teardown()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.props)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelect:
				if m.editable(m.props[m.selected]) {
					m.prepareInput()
					m.state = stateInput
				}
			case stateShowResult:
				m.state = stateSelect
				m.result = ""
				m.err = nil
			}

		case "d":
			if m.state == stateSelect {
				return m, m.derive
			}

		case "p":
			if m.state == stateSelect {
				return m, m.render
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateSelect
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.handle = msg.handle
		m.cleanup = msg.cleanup
		m.props = msg.props

	case appliedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.state = stateSelect
		}

	case derivedMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	return m, nil
}

func (m *interactiveModel) teardown() {
	if m.handle != nil {
		m.handle.Close()
		m.handle = nil
	}
	if m.cleanup != nil {
		m.cleanup()
		m.cleanup = nil
	}
}

// editable reports whether the property accepts assignment.
func (m *interactiveModel) editable(name string) bool {
	switch name {
	case "offset", "phi0", "theta0", "ref":
		return true
	}
	return false
}

func (m *interactiveModel) prepareInput() {
	name := m.props[m.selected]
	ti := textinput.New()
	ti.Prompt = name + ": "
	ti.Width = 40
	switch name {
	case "offset":
		ti.Placeholder = "true / false"
	case "ref":
		ti.Placeholder = "lng:lat:phip:latp (_ skips a slot)"
	default:
		ti.Placeholder = "degrees, empty to unset"
	}
	ti.SetValue(m.formatValue(name))
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) apply() tea.Msg {
	name := m.props[m.selected]
	val, err := parseProperty(name, m.input.Value())
	if err != nil {
		return appliedMsg{err: err}
	}
	return appliedMsg{err: m.handle.SetProperty(name, val)}
}

func (m *interactiveModel) derive() tea.Msg {
	if err := m.handle.Set(); err != nil {
		return derivedMsg{err: err}
	}
	var sb strings.Builder
	if err := m.handle.Render(&sb); err != nil {
		return derivedMsg{err: err}
	}
	return derivedMsg{result: sb.String()}
}

func (m *interactiveModel) render() tea.Msg {
	var sb strings.Builder
	if err := m.handle.Render(&sb); err != nil {
		return derivedMsg{err: err}
	}
	return derivedMsg{result: sb.String()}
}

func (m *interactiveModel) formatValue(name string) string {
	v, err := m.handle.Get(name)
	if err != nil {
		return ""
	}
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		return fmt.Sprintf("%v", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case [4]float64:
		parts := make([]string, len(v))
		for i, f := range v {
			parts[i] = fmt.Sprintf("%g", f)
		}
		return strings.Join(parts, ":")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (m *interactiveModel) displayValue(name string) string {
	v, err := m.handle.Get(name)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%v", v)
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult && m.state != stateInput {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.handle == nil {
		return "Loading engine..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Cel Inspector"))
	b.WriteString(" ")
	b.WriteString(m.label)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		for i, name := range m.props {
			line := nameStyle.Render(name) + " = " + valueStyle.Render(m.displayValue(name))
			if !m.editable(name) {
				line += helpStyle.Render("  (derived)")
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> "))
				b.WriteString(line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • d derive • p print • q quit"))

	case stateInput:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter apply • esc back"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(wasmFile string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(wasmFile), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
