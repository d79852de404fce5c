package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/gas"
	"github.com/wippyai/modcache/loader"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive [module files...]",
	Aliases: []string{"i"},
	Short:   "Browse structs and resolve them with chosen type arguments",
	RunE:    runInteractive,
}

type interactiveModel struct {
	err      error
	session  *session
	txn      *loader.TransactionModuleCache
	result   string
	structs  []structEntry
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
	p        painter
}

type structEntry struct {
	id      bytecode.ModuleID
	name    string
	formals int
}

func (e structEntry) String() string {
	return e.id.String() + "::" + e.name
}

type modelState int

const (
	stateSelectStruct modelState = iota
	stateInputArgs
	stateShowResult
)

type loadedMsg struct {
	err     error
	structs []structEntry
}

type resolvedMsg struct {
	err    error
	result string
}

func newInteractiveModel(s *session, p painter) *interactiveModel {
	return &interactiveModel{
		session: s,
		txn:     s.transaction(),
		state:   stateSelectStruct,
		p:       p,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadStructs
}

func (m *interactiveModel) loadStructs() tea.Msg {
	meter := func() gas.Meter { return m.session.meter() }
	var entries []structEntry
	for _, id := range m.session.modules {
		r := inspectModule(m.txn, id, meter)
		if r.err != nil {
			return loadedMsg{err: r.err}
		}
		for _, sr := range r.structs {
			entries = append(entries, structEntry{id: id, name: sr.name, formals: sr.formals})
		}
	}
	if len(entries) == 0 {
		return loadedMsg{err: fmt.Errorf("no structs in the published modules")}
	}
	return loadedMsg{structs: entries}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputArgs || msg.String() == "ctrl+c" {
				m.txn.Discard()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectStruct && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectStruct && m.selected < len(m.structs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectStruct:
				if len(m.structs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.resolve
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.resolve

			case stateShowResult:
				m.state = stateSelectStruct
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectStruct
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectStruct
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.structs = msg.structs

	case resolvedMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	e := m.structs[m.selected]
	m.inputs = make([]textinput.Model, e.formals)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = "bool | u64 | string | bytearray | address"
		ti.Prompt = fmt.Sprintf("T%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) resolve() tea.Msg {
	e := m.structs[m.selected]
	raw := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		raw[i] = input.Value()
	}
	actuals, err := parseTypeArgs(raw)
	if err != nil {
		return resolvedMsg{err: err}
	}
	text, err := resolveStruct(m.session, m.txn, e.id, e.name, actuals)
	return resolvedMsg{result: text, err: err}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return m.p.render(errorStyle, fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.structs) == 0 {
		return "Resolving modules..."
	}

	var b strings.Builder

	b.WriteString(m.p.render(titleStyle, "Module cache"))
	fmt.Fprintf(&b, " %d modules at version %d\n\n", len(m.session.modules), m.session.cfg.State.Version)

	switch m.state {
	case stateSelectStruct:
		b.WriteString("Select a struct to resolve:\n\n")
		for i, e := range m.structs {
			if i == m.selected {
				b.WriteString(m.p.render(selectedStyle, "> "+m.formatEntry(e, false)))
			} else {
				b.WriteString("  " + m.formatEntry(e, true))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.p.render(helpStyle, "↑/↓ select • enter resolve • q quit"))

	case stateInputArgs:
		e := m.structs[m.selected]
		fmt.Fprintf(&b, "Instantiating %s\n\n", m.p.render(nameStyle, e.String()))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.p.render(helpStyle, "tab next field • enter resolve • esc back"))

	case stateShowResult:
		e := m.structs[m.selected]
		fmt.Fprintf(&b, "Layout of %s:\n\n", m.p.render(nameStyle, e.String()))
		if m.err != nil {
			b.WriteString(m.p.render(errorStyle, fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(m.p.render(typeStyle, m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(m.p.render(helpStyle, "enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatEntry(e structEntry, styled bool) string {
	name := e.String()
	if styled {
		name = m.p.render(nameStyle, name)
	}
	if e.formals == 0 {
		return name
	}
	return fmt.Sprintf("%s %s", name, m.p.render(helpStyle, fmt.Sprintf("(%d type params)", e.formals)))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	p, err := newPainter(cmd)
	if err != nil {
		return err
	}
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	prog := tea.NewProgram(newInteractiveModel(s, p), tea.WithAltScreen())
	_, err = prog.Run()
	return err
}
