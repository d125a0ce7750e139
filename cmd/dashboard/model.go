package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Application states.
const (
	StateModeSelect = iota
	StateStrategySelect
	StateParamEdit
	StateRunning
	StateResults
)

// Model is the main Bubble Tea model for the backtest dashboard.
type Model struct {
	state        int
	registry     strategy.Registry
	settings     Settings
	modeList     list.Model
	strategyList list.Model
	composite    bool
	selected     []string
	fields       []paramField
	inputs       []textinput.Model
	focus        int
	progress     progress.Model
	percent      float64
	tradeTable   table.Model
	result       *types.BacktestResult
	err          error
	width        int
	height       int

	// Run control
	events    <-chan tea.Msg
	runCancel context.CancelFunc
}

// NewModel creates a new Model with initial state.
func NewModel(registry strategy.Registry, settings Settings) Model {
	return Model{
		state:        StateModeSelect,
		registry:     registry,
		settings:     settings,
		modeList:     NewModeList(),
		strategyList: NewStrategyList(registry, false),
		composite:    false,
		selected:     nil,
		fields:       nil,
		inputs:       nil,
		focus:        0,
		progress:     NewProgress(),
		percent:      0,
		tradeTable:   NewTradeTable(),
		result:       nil,
		err:          nil,
		width:        0,
		height:       0,
		events:       nil,
		runCancel:    nil,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.stopRun()
			return m, tea.Quit
		case "q":
			// Only quit on 'q' if not editing parameters
			if m.state != StateParamEdit {
				m.stopRun()
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.modeList.SetSize(msg.Width, msg.Height-4)
		m.strategyList.SetSize(msg.Width, msg.Height-4)
		m.tradeTable.SetWidth(msg.Width)
		m.tradeTable.SetHeight(max(msg.Height-18, 3))
		return m, nil

	case ProgressMsg:
		if m.state != StateRunning {
			return m, nil
		}
		if msg.Total > 0 {
			m.percent = float64(msg.Current) / float64(msg.Total)
		}
		return m, waitForEvent(m.events)

	case BacktestDoneMsg:
		if m.state != StateRunning {
			return m, nil
		}
		m.finishRun()
		m.result = msg.Result
		m.tradeTable = UpdateTradeRows(m.tradeTable, msg.Result.Trades)
		m.state = StateResults
		return m, nil

	case BacktestErrorMsg:
		if m.state != StateRunning {
			return m, nil
		}
		m.finishRun()
		m.err = msg.Err
		m.state = StateParamEdit
		return m, nil
	}

	// Delegate to state-specific update
	switch m.state {
	case StateModeSelect:
		return m.updateModeSelect(msg)
	case StateStrategySelect:
		return m.updateStrategySelect(msg)
	case StateParamEdit:
		return m.updateParamEdit(msg)
	case StateResults:
		return m.updateResults(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateStrategySelect:
		m.selected = nil
		m.state = StateModeSelect
	case StateParamEdit:
		m.err = nil
		m.state = StateStrategySelect
	case StateRunning:
		m.stopRun()
		m.state = StateParamEdit
	case StateResults:
		m.result = nil
		m.selected = nil
		m.fields = nil
		m.inputs = nil
		m.err = nil
		m.tradeTable = UpdateTradeRows(m.tradeTable, nil)
		m.strategyList = NewStrategyList(m.registry, m.composite)
		m.state = StateModeSelect
	}
	return m, nil
}

func (m Model) updateModeSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.modeList.SelectedItem().(listItem); ok {
				m.composite = item.id == modeComposite
				m.selected = nil
				m.strategyList = NewStrategyList(m.registry, m.composite)
				m.strategyList.SetSize(m.width, m.height-4)
				m.state = StateStrategySelect
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.modeList, cmd = m.modeList.Update(msg)
	return m, cmd
}

func (m Model) updateStrategySelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			if m.composite {
				m.toggleSelected()
				return m, nil
			}
		case "enter":
			item, ok := m.strategyList.SelectedItem().(listItem)
			if !ok {
				return m, nil
			}

			if !m.composite {
				m.selected = []string{item.id}
			}

			if len(m.selected) == 0 {
				m.err = fmt.Errorf("select at least one strategy with space")
				return m, nil
			}

			m.err = nil
			m.fields, m.inputs = NewParamFields(m.registry, m.selected, m.composite)
			m.focus = 0
			m.state = StateParamEdit
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.strategyList, cmd = m.strategyList.Update(msg)
	return m, cmd
}

// toggleSelected flips the highlighted strategy in or out of the combination,
// keeping the selection in the order it was picked.
func (m *Model) toggleSelected() {
	index := m.strategyList.Index()

	item, ok := m.strategyList.SelectedItem().(listItem)
	if !ok {
		return
	}

	item.selected = !item.selected
	m.strategyList.SetItem(index, item)

	if item.selected {
		m.selected = append(m.selected, item.id)
		return
	}

	kept := make([]string, 0, len(m.selected))
	for _, id := range m.selected {
		if id != item.id {
			kept = append(kept, id)
		}
	}

	m.selected = kept
}

func (m Model) updateParamEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			cmd := m.moveFocus(1)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.moveFocus(-1)
			return m, cmd
		case "enter":
			return m.startRun()
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}

	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)

	return m.inputs[m.focus].Focus()
}

// request reads the edited parameters into a run request.
func (m Model) request() (runRequest, error) {
	var assignments []string

	for i, field := range m.fields {
		value := strings.TrimSpace(m.inputs[i].Value())
		if value == "" {
			continue
		}

		assignments = append(assignments, field.key+"="+value)
	}

	params, err := strategy.ParseAssignments(assignments)
	if err != nil {
		return runRequest{}, err
	}

	if m.composite {
		return runRequest{strategyID: strategy.CombinedID, strategies: m.selected, params: params}, nil
	}

	return runRequest{strategyID: m.selected[0], strategies: nil, params: params}, nil
}

func (m Model) startRun() (tea.Model, tea.Cmd) {
	req, err := m.request()
	if err != nil {
		m.err = err
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.runCancel = cancel
	m.events = startBacktest(ctx, m.registry, m.settings, req)
	m.percent = 0
	m.err = nil
	m.state = StateRunning

	return m, waitForEvent(m.events)
}

func (m *Model) stopRun() {
	if m.runCancel != nil {
		m.runCancel()
		m.runCancel = nil
	}

	m.events = nil
}

func (m *Model) finishRun() {
	if m.runCancel != nil {
		m.runCancel()
		m.runCancel = nil
	}
}

func (m Model) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.tradeTable, cmd = m.tradeTable.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateModeSelect:
		s.WriteString(TitleStyle.Render("Argo Backtest"))
		s.WriteString("\n\n")
		s.WriteString(m.modeList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, q to quit"))

	case StateStrategySelect:
		s.WriteString(m.strategyList.View())
		s.WriteString("\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n")
		}

		if m.composite {
			s.WriteString(HelpStyle.Render("Space to toggle, Enter to confirm, Esc to go back"))
		} else {
			s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))
		}

	case StateParamEdit:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Edit Parameters - %s", strings.Join(m.selected, ", "))))
		s.WriteString("\n\n")

		if len(m.inputs) == 0 {
			s.WriteString("No parameters.\n")
		}

		for i, field := range m.fields {
			label := fmt.Sprintf("%-32s", field.key)
			if i == m.focus {
				label = FocusedStyle.Render(label)
			}

			s.WriteString(label)
			s.WriteString(m.inputs[i].View())
			s.WriteString("  ")
			s.WriteString(HelpStyle.Render(field.spec.Description))
			s.WriteString("\n")
		}

		if m.err != nil {
			s.WriteString("\n")
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n")
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Tab to move, Enter to run, Esc to go back"))

	case StateRunning:
		s.WriteString(TitleStyle.Render("Running Backtest"))
		s.WriteString("\n\n")
		s.WriteString(m.progress.ViewAs(m.percent))
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Esc to cancel"))

	case StateResults:
		s.WriteString(TitleStyle.Render("Results"))
		s.WriteString("\n\n")
		s.WriteString(RenderMetrics(m.result))
		s.WriteString("\n")

		if m.result != nil && len(m.result.Trades) == 0 {
			s.WriteString("No trades.\n")
		} else {
			s.WriteString(m.tradeTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("q: quit | Esc: new backtest"))
	}

	return s.String()
}
