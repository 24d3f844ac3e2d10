package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joshua1code/Q-bot-FD/internal/session"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
)

// Application states.
const (
	StateSymbolSelect = iota
	StateOrderInput
	StateSessionDisplay
)

// SymbolLister lists the tradable symbols. *api.Client implements it.
type SymbolLister interface {
	ListSymbols(ctx context.Context) ([]string, error)
}

// SessionFactory creates a fresh, unstarted session.
type SessionFactory func() *session.Session

// Model is the main Bubble Tea model for the live session dashboard.
type Model struct {
	state         int
	symbolList    list.Model
	amountInput   textinput.Model
	durationInput textinput.Model
	ledgerTable   table.Model

	symbol     string
	status     types.SessionStatus
	detail     string
	sessionID  string
	lastCandle types.Candle
	prevClose  float64
	candles    int
	markers    int
	ledger     []types.TradeEvent
	balance    string
	dropped    int
	err        error
	width      int
	height     int

	symbols    SymbolLister
	newSession SessionFactory
	sess       *session.Session
	events     chan tea.Msg
	stop       chan struct{}
}

// NewModel creates a new Model with initial state.
func NewModel(symbols SymbolLister, newSession SessionFactory) Model {
	return Model{
		state:         StateSymbolSelect,
		symbolList:    NewSymbolList(nil),
		amountInput:   NewAmountInput(),
		durationInput: NewDurationInput(),
		ledgerTable:   NewLedgerTable(),
		status:        types.SessionStatusIdle,
		ledger:        []types.TradeEvent{},
		symbols:       symbols,
		newSession:    newSession,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	lister := m.symbols

	return func() tea.Msg {
		symbols, err := lister.ListSymbols(context.Background())
		if err != nil {
			return SessionErrorMsg{Err: err}
		}

		return SymbolsLoadedMsg{Symbols: symbols}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()

			return m, tea.Quit
		case "q":
			// Only quit on 'q' outside the text inputs.
			if m.state != StateOrderInput {
				m.shutdown()

				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.symbolList.SetSize(msg.Width, msg.Height-4)
		m.ledgerTable.SetWidth(msg.Width)

		return m, nil

	case SymbolsLoadedMsg:
		m.symbolList = NewSymbolList(msg.Symbols)
		if m.width > 0 {
			m.symbolList.SetSize(m.width, m.height-4)
		}

		return m, nil

	case SessionStartedMsg:
		m.sessionID = msg.ID

		return m, nil

	case SessionErrorMsg:
		m.err = msg.Err

		return m, nil

	case StatusMsg:
		m.status = msg.Change.To
		m.detail = msg.Change.Detail

		return m, m.waitForEvent()

	case CandleMsg:
		if msg.Appended {
			m.candles++
			m.prevClose = m.lastCandle.Close
		}

		m.lastCandle = msg.Candle

		return m, m.waitForEvent()

	case MarkerMsg:
		m.markers++

		return m, m.waitForEvent()

	case TradeMsg:
		m.ledger = append([]types.TradeEvent{msg.Trade}, m.ledger...)
		if len(m.ledger) > types.DefaultLedgerRetention {
			m.ledger = m.ledger[:types.DefaultLedgerRetention]
		}

		m.ledgerTable = UpdateLedgerRows(m.ledgerTable, m.ledger)

		return m, m.waitForEvent()

	case BalanceMsg:
		m.balance = msg.Balance.String()

		return m, m.waitForEvent()

	case DecodeErrorMsg:
		m.dropped++

		return m, m.waitForEvent()

	case streamClosedMsg:
		return m, nil
	}

	switch m.state {
	case StateSymbolSelect:
		return m.updateSymbolSelect(msg)
	case StateOrderInput:
		return m.updateOrderInput(msg)
	case StateSessionDisplay:
		return m.updateSessionDisplay(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateOrderInput:
		m.amountInput.Blur()
		m.durationInput.Blur()
		m.err = nil
		m.state = StateSymbolSelect
	case StateSessionDisplay:
		// Stop the session and go back to the order form.
		m.shutdown()
		m.resetSession()
		m.state = StateOrderInput
		m.amountInput.Focus()

		return m, textinput.Blink
	}

	return m, nil
}

func (m Model) updateSymbolSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && !m.symbolList.SettingFilter() {
		if item, ok := m.symbolList.SelectedItem().(listItem); ok {
			m.symbol = item.name
			m.state = StateOrderInput
			m.amountInput.Focus()

			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.symbolList, cmd = m.symbolList.Update(msg)

	return m, cmd
}

func (m Model) updateOrderInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab":
			if m.amountInput.Focused() {
				m.amountInput.Blur()
				m.durationInput.Focus()
			} else {
				m.durationInput.Blur()
				m.amountInput.Focus()
			}

			return m, textinput.Blink
		case "enter":
			req, err := m.request()
			if err != nil {
				m.err = err

				return m, nil
			}

			m.err = nil
			m.amountInput.Blur()
			m.durationInput.Blur()
			m.state = StateSessionDisplay

			return m, m.startSession(req)
		}
	}

	var amountCmd, durationCmd tea.Cmd
	m.amountInput, amountCmd = m.amountInput.Update(msg)
	m.durationInput, durationCmd = m.durationInput.Update(msg)

	return m, tea.Batch(amountCmd, durationCmd)
}

func (m Model) updateSessionDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.ledgerTable, cmd = m.ledgerTable.Update(msg)

	return m, cmd
}

func (m Model) request() (types.TradeRequest, error) {
	amount, ok := ParseAmount(m.amountInput.Value())
	if !ok {
		return types.TradeRequest{}, errors.New(errors.ErrCodeInvalidParameter, "amount must be a positive number")
	}

	//nolint:exhaustruct
	req := types.TradeRequest{
		Symbol:   m.symbol,
		Amount:   amount,
		Duration: m.durationInput.Value(),
	}

	if err := req.Validate(); err != nil {
		return types.TradeRequest{}, err
	}

	return req.Normalize(), nil
}

// startSession creates the session and returns the commands that start it
// and relay its events into the program.
func (m *Model) startSession(req types.TradeRequest) tea.Cmd {
	events := make(chan tea.Msg, 64)
	stop := make(chan struct{})
	sess := m.newSession()

	m.sess = sess
	m.events = events
	m.stop = stop

	callbacks := forwardingCallbacks(events, stop)

	start := func() tea.Msg {
		if err := sess.Start(context.Background(), req, callbacks); err != nil {
			return SessionErrorMsg{Err: err}
		}

		return SessionStartedMsg{ID: sess.Snapshot().Handle.ID}
	}

	return tea.Batch(start, m.waitForEvent())
}

// waitForEvent returns a command that delivers the next session event.
func (m Model) waitForEvent() tea.Cmd {
	events, stop := m.events, m.stop
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-stop:
			return streamClosedMsg{}
		}
	}
}

// shutdown closes the running session, if any.
func (m *Model) shutdown() {
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}

	if m.sess != nil {
		_ = m.sess.Close()
		m.sess = nil
	}

	m.events = nil
}

func (m *Model) resetSession() {
	m.status = types.SessionStatusIdle
	m.detail = ""
	m.sessionID = ""
	m.lastCandle = types.Candle{}
	m.prevClose = 0
	m.candles = 0
	m.markers = 0
	m.ledger = []types.TradeEvent{}
	m.ledgerTable = UpdateLedgerRows(m.ledgerTable, m.ledger)
	m.balance = ""
	m.dropped = 0
	m.err = nil
}

// forwardingCallbacks turns session callbacks into program messages.
func forwardingCallbacks(events chan<- tea.Msg, stop <-chan struct{}) session.Callbacks {
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-stop:
		}
	}

	onStatus := session.OnStatusChangeCallback(func(change session.StatusChange) { send(StatusMsg{Change: change}) })
	onCandle := session.OnCandleCallback(func(candle types.Candle, appended bool) {
		send(CandleMsg{Candle: candle, Appended: appended})
	})
	onMarker := session.OnMarkerCallback(func(marker types.TradeMarker) { send(MarkerMsg{Marker: marker}) })
	onTrade := session.OnTradeCallback(func(trade types.TradeEvent) { send(TradeMsg{Trade: trade}) })
	onBalance := session.OnBalanceCallback(func(balance types.BalanceSnapshot) { send(BalanceMsg{Balance: balance}) })
	onDecodeError := session.OnDecodeErrorCallback(func(err error) { send(DecodeErrorMsg{Err: err}) })

	return session.Callbacks{
		OnStatusChange: &onStatus,
		OnCandle:       &onCandle,
		OnMarker:       &onMarker,
		OnTrade:        &onTrade,
		OnBalance:      &onBalance,
		OnDecodeError:  &onDecodeError,
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateSymbolSelect:
		s.WriteString(TitleStyle.Render("Q-bot - Live Session"))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", errors.UserMessage(m.err))))
			s.WriteString("\n\n")
		}

		s.WriteString(m.symbolList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, / to filter, q to quit"))

	case StateOrderInput:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("New %s Session", m.symbol)))
		s.WriteString("\n\n")
		s.WriteString(LabelStyle.Render("Amount"))
		s.WriteString(m.amountInput.View())
		s.WriteString("\n")
		s.WriteString(LabelStyle.Render("Duration"))
		s.WriteString(m.durationInput.View())
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errors.UserMessage(m.err))))
			s.WriteString("\n\n")
		}

		s.WriteString(HelpStyle.Render("Tab to switch fields, Enter to start, Esc to go back"))

	case StateSessionDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Session %s - %s", m.symbol, FormatStatus(m.status))))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errors.UserMessage(m.err))))
			s.WriteString("\n\n")
		} else if m.detail != "" {
			s.WriteString(ErrorStyle.Render(m.detail))
			s.WriteString("\n\n")
		}

		s.WriteString(LabelStyle.Render("Session"))
		s.WriteString(m.sessionID)
		s.WriteString("\n")
		s.WriteString(LabelStyle.Render("Balance"))
		s.WriteString(m.balance)
		s.WriteString("\n")
		s.WriteString(LabelStyle.Render("Last"))

		if m.candles == 0 {
			s.WriteString("waiting for data...")
		} else {
			s.WriteString(FormatPriceWithColor(m.lastCandle.Close, m.prevClose))
		}

		s.WriteString("\n")
		s.WriteString(LabelStyle.Render("Candles"))
		s.WriteString(fmt.Sprintf("%d  markers %d  dropped %d", m.candles, m.markers, m.dropped))
		s.WriteString("\n\n")

		if len(m.ledger) > 0 {
			s.WriteString(m.ledgerTable.View())
			s.WriteString("\n")
		}

		s.WriteString(HelpStyle.Render("q: quit | Esc: new session"))
	}

	return s.String()
}
