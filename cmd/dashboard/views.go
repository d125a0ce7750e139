package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/summary"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const (
	modeSingle    = "Single"
	modeComposite = "Composite"
)

// listItem implements list.Item for the mode and strategy lists.
type listItem struct {
	id          string
	name        string
	description string
	selected    bool
}

func (i listItem) Title() string {
	if i.selected {
		return "[x] " + i.name
	}

	return i.name
}

func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewModeList creates the list choosing between one strategy and a combination.
func NewModeList() list.Model {
	return newList("Select Mode", []list.Item{
		listItem{id: modeSingle, name: modeSingle, description: "Backtest one built-in strategy"},
		listItem{id: modeComposite, name: modeComposite, description: "Combine strategies: buy when all agree, sell when any sells"},
	})
}

// NewStrategyList lists the registered strategies. The combined strategy is
// reached through the composite mode instead.
func NewStrategyList(registry strategy.Registry, composite bool) list.Model {
	items := make([]list.Item, 0)

	for id, desc := range registry.All() {
		if id == strategy.CombinedID {
			continue
		}

		items = append(items, listItem{id: id, name: desc.DisplayName, description: desc.Description, selected: false})
	}

	title := "Select Strategy"
	if composite {
		title = "Select Strategies"
	}

	return newList(title, items)
}

// paramField is one editable parameter. Key is prefixed with the strategy id
// when combining.
type paramField struct {
	key  string
	spec strategy.ParamSpec
}

// NewParamFields lists the scalar parameters of the chosen strategies.
func NewParamFields(registry strategy.Registry, ids []string, composite bool) ([]paramField, []textinput.Model) {
	fields := make([]paramField, 0)
	inputs := make([]textinput.Model, 0)

	for _, id := range ids {
		desc, err := registry.Metadata(id)
		if err != nil {
			continue
		}

		for _, spec := range desc.Params {
			if spec.Type == strategy.ParamTypeObject {
				continue
			}

			key := spec.Name
			if composite {
				key = id + "_" + spec.Name
			}

			fields = append(fields, paramField{key: key, spec: spec})
			inputs = append(inputs, NewParamInput(spec))
		}
	}

	if len(inputs) > 0 {
		inputs[0].Focus()
	}

	return fields, inputs
}

// NewParamInput creates a text input prefilled with the parameter default.
func NewParamInput(spec strategy.ParamSpec) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = FormatDefault(spec.Default)
	ti.SetValue(FormatDefault(spec.Default))
	ti.CharLimit = 64
	ti.Width = 20
	ti.Prompt = "> "

	return ti
}

// FormatDefault renders a default so that strategy.ParseValue reads it back.
func FormatDefault(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case []string:
		return "[" + strings.Join(value, ", ") + "]"
	default:
		return fmt.Sprint(value)
	}
}

// NewProgress creates the bar shown while a backtest runs.
func NewProgress() progress.Model {
	return progress.New(progress.WithDefaultGradient(), progress.WithWidth(50))
}

// NewTradeTable creates the table of executed trades.
func NewTradeTable() table.Model {
	widths := []int{10, 5, 9, 9, 8, 12, 14, 40, 12}

	columns := make([]table.Column, len(summary.TradeColumns))
	for i, title := range summary.TradeColumns {
		columns[i] = table.Column{Title: title, Width: widths[i]}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
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

// UpdateTradeRows fills the table with the trades of a run.
func UpdateTradeRows(t table.Model, trades []types.Trade) table.Model {
	rows := make([]table.Row, 0, len(trades))
	for _, r := range summary.TradeRows(trades) {
		rows = append(rows, table.Row(r))
	}

	t.SetRows(rows)

	return t
}

// RenderMetrics formats the run overview.
func RenderMetrics(result *types.BacktestResult) string {
	var s strings.Builder

	for _, m := range summary.Metrics(result) {
		value := m.Value
		if m.Label == "Return" {
			value = FormatReturn(value, result.ReturnRate)
		}

		s.WriteString(LabelStyle.Render(m.Label))
		s.WriteString(value)
		s.WriteString("\n")
	}

	return s.String()
}
