package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/joshua1code/Q-bot-FD/internal/types"
)

// listItem implements list.Item for the symbol list.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// NewSymbolList creates the symbol selection list.
func NewSymbolList(symbols []string) list.Model {
	items := make([]list.Item, 0, len(symbols))
	for _, symbol := range symbols {
		items = append(items, listItem{name: symbol, description: "Trade " + symbol})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false

	l := list.New(items, delegate, 40, 12)
	l.Title = "Select Symbol"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return l
}

// NewAmountInput creates the text input for the session amount.
func NewAmountInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "100"
	ti.CharLimit = 16
	ti.Width = 20
	ti.Prompt = "> "

	return ti
}

// NewDurationInput creates the text input for the session duration.
func NewDurationInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "60"
	ti.CharLimit = 16
	ti.Width = 20
	ti.Prompt = "> "

	return ti
}

// ParseAmount parses a positive amount typed by the user.
func ParseAmount(input string) (float64, bool) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || amount <= 0 {
		return 0, false
	}

	return amount, true
}

// NewLedgerTable creates the table listing executed trades, newest first.
func NewLedgerTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 10},
		{Title: "Side", Width: 6},
		{Title: "Price", Width: 14},
		{Title: "Amount", Width: 10},
		{Title: "PnL", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
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

// UpdateLedgerRows replaces the table rows with ledger.
func UpdateLedgerRows(t table.Model, ledger []types.TradeEvent) table.Model {
	rows := make([]table.Row, 0, len(ledger))

	for _, trade := range ledger {
		rows = append(rows, table.Row{
			trade.Timestamp().Format("15:04:05"),
			trade.Side.Title(),
			fmt.Sprintf("%.4f", trade.Price),
			fmt.Sprintf("%.4f", trade.Amount),
			fmt.Sprintf("%+.2f", trade.PnL),
		})
	}

	t.SetRows(rows)

	return t
}
