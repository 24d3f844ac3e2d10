// Package session runs one trading session: start it, stream it, fold every
// event into state and tear it down.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/joshua1code/Q-bot-FD/internal/codec"
	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/stream"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Config holds the session settings.
type Config struct {
	// LedgerRetention bounds the ledger. Defaults to 200.
	LedgerRetention int
	// SubscriberBuffer is the capacity of each Subscribe channel. Defaults to 16.
	SubscriberBuffer int
}

// Counters are activity totals kept outside SessionState.
type Counters struct {
	MessagesApplied int
	DecodeErrors    int
	Reconnects      int
}

// Session drives one trading session.
//
// Every state change happens under one lock in one of three places: Start,
// the stream loop and Close. Once the status is terminal, nothing mutates
// state again.
type Session struct {
	cfg       Config
	starter   Starter
	connector Connector
	log       *logger.Logger
	machine   *StatusMachine
	metrics   *sessionMetrics
	notifier  *notifier

	mu       sync.RWMutex
	state    types.SessionState
	counters Counters

	started      atomic.Bool
	lifeMu       sync.Mutex
	closed       bool
	closeCh      chan struct{}
	closeOnce    sync.Once
	terminalCh   chan struct{}
	terminalOnce sync.Once

	runCtx    context.Context
	runCancel context.CancelFunc
	loopWG    conc.WaitGroup
	notifyWG  conc.WaitGroup
}

// New creates an idle session. Close must be called to release it.
func New(cfg Config, starter Starter, connector Connector, log *logger.Logger) *Session {
	if cfg.LedgerRetention <= 0 {
		cfg.LedgerRetention = types.DefaultLedgerRetention
	}

	runCtx, runCancel := context.WithCancel(context.Background())

	s := &Session{
		cfg:          cfg,
		starter:      starter,
		connector:    connector,
		log:          log,
		machine:      NewStatusMachine(),
		metrics:      newSessionMetrics(),
		notifier:     newNotifier(cfg.SubscriberBuffer),
		mu:           sync.RWMutex{},
		state:        types.NewSessionState(),
		counters:     Counters{},
		started:      atomic.Bool{},
		lifeMu:       sync.Mutex{},
		closed:       false,
		closeCh:      make(chan struct{}),
		closeOnce:    sync.Once{},
		terminalCh:   make(chan struct{}),
		terminalOnce: sync.Once{},
		runCtx:       runCtx,
		runCancel:    runCancel,
		loopWG:       conc.WaitGroup{},
		notifyWG:     conc.WaitGroup{},
	}

	s.notifyWG.Go(s.notifier.run)

	return s
}

// Start provisions the session and opens its stream. It returns once the
// stream is connecting; progress is reported through Subscribe and callbacks.
//
// A start or validation failure moves the session to Failed and is returned.
// Start may be called once.
func (s *Session) Start(ctx context.Context, req types.TradeRequest, callbacks Callbacks) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeSessionAlreadyUsed, "session was already started")
	}

	s.notifier.setCallbacks(callbacks)

	moved := false

	s.apply(func(t *txn) {
		if !s.isClosed() {
			moved = t.transition(types.SessionStatusStarting, "")
		}
	})

	if !moved {
		return errors.New(errors.ErrCodeStreamClosed, "session is closed")
	}

	result, err := s.starter.StartSession(ctx, req)
	if err != nil {
		s.log.Warn("Session start failed", zap.String("symbol", req.Symbol), zap.Error(err))
		s.apply(func(t *txn) {
			t.transition(types.SessionStatusFailed, errors.UserMessage(err))
		})

		return err
	}

	stale := true

	s.apply(func(t *txn) {
		if !t.transition(types.SessionStatusAwaitingStream, "") {
			return
		}

		stale = false
		t.state.Handle = result.Handle
		t.setBalance(result.Balance)
	})

	if stale {
		s.log.Debug("Dropping start result after teardown", zap.String("session_id", result.Handle.ID))

		return nil
	}

	s.log.Info("Session started",
		zap.String("session_id", result.Handle.ID),
		zap.String("symbol", req.Symbol),
		zap.String("balance", result.Balance.String()),
	)

	s.connector.SetReconnectGuard(s.machine.CanReconnect)

	if err := s.connector.Open(s.runCtx, result.Handle); err != nil {
		s.log.Error("Failed to open stream", zap.Error(err))
		s.apply(func(t *txn) {
			t.transition(types.SessionStatusFailed, errors.UserMessage(err))
		})

		return err
	}

	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.closed {
		return nil
	}

	s.loopWG.Go(s.loop)

	return nil
}

// Close tears the session down. A live session becomes Completed, a session
// that is reconnecting or still starting becomes Failed. It cancels any pending
// reconnect and closes the connection exactly once. Close is idempotent.
//
// Callbacks queued before Close still run afterwards; Subscribe channels are
// closed once the last of them returned.
func (s *Session) Close() error {
	var err error

	s.closeOnce.Do(func() {
		s.lifeMu.Lock()
		s.closed = true
		close(s.closeCh)
		s.lifeMu.Unlock()

		s.apply(func(t *txn) {
			switch s.machine.Status() {
			case types.SessionStatusAwaitingStream, types.SessionStatusLive:
				t.transition(types.SessionStatusCompleted, "")
			case types.SessionStatusReconnecting:
				t.transition(types.SessionStatusFailed, "cancelled while reconnecting")
			case types.SessionStatusStarting:
				t.transition(types.SessionStatusFailed, "cancelled before the stream opened")
			default:
			}
		})

		s.runCancel()
		err = s.connector.Close()
		s.loopWG.Wait()

		s.mu.Lock()
		s.state.Handle = types.SessionHandle{}
		s.mu.Unlock()

		s.notifier.close()
		s.log.Debug("Session closed", zap.String("status", string(s.machine.Status())))
	})

	return err
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() types.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone()
}

// Status returns the current status.
func (s *Session) Status() types.SessionStatus {
	return s.machine.Status()
}

// Counters returns the activity totals.
func (s *Session) Counters() Counters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.counters
}

// Subscribe returns a channel of status transitions and a function to stop
// receiving them. The channel is closed on unsubscribe and after Close.
func (s *Session) Subscribe() (<-chan StatusChange, func()) {
	return s.notifier.subscribe()
}

// Done is closed once the session reaches Completed or Failed.
func (s *Session) Done() <-chan struct{} {
	return s.terminalCh
}

func (s *Session) isClosed() bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	return s.closed
}

func (s *Session) loop() {
	events := s.connector.Events()

	for {
		select {
		case <-s.closeCh:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			if s.handle(ev) {
				s.log.Info("Session completed by server")

				if err := s.connector.Close(); err != nil {
					s.log.Warn("Failed to close stream", zap.Error(err))
				}
			}
		}
	}
}

// handle applies one connection event and reports whether the session just completed.
func (s *Session) handle(ev stream.Event) bool {
	completed := false

	switch ev.Type {
	case stream.EventConnecting:
		s.log.Debug("Stream connecting", zap.Int("attempt", ev.Attempt))
	case stream.EventOpened:
		s.apply(func(t *txn) {
			t.state.Ready = false
			t.transition(types.SessionStatusLive, "")
		})
	case stream.EventReady:
		s.apply(func(t *txn) {
			t.state.Ready = true
			t.transition(types.SessionStatusLive, "")
		})
	case stream.EventMessage:
		completed = s.handleMessage(ev.Data)
	case stream.EventClosed, stream.EventFailed:
		if ev.Err != nil {
			s.log.Warn("Stream disconnected", zap.Error(ev.Err))
		}

		s.apply(func(t *txn) {
			t.state.Ready = false
			t.transition(types.SessionStatusReconnecting, "")
		})
	case stream.EventReconnectScheduled:
		s.apply(func(t *txn) {
			s.counters.Reconnects++
			s.metrics.recordReconnect()
		})
	}

	return completed
}

func (s *Session) handleMessage(data []byte) bool {
	events, decodeErrs := codec.Decode(data)

	for _, err := range decodeErrs {
		s.log.Warn("Dropping malformed stream payload", zap.Error(err))
	}

	completed := false

	s.apply(func(t *txn) {
		for _, err := range decodeErrs {
			s.counters.DecodeErrors++
			s.metrics.recordDropped("malformed")
			t.notify(notification{decodeErr: err})
		}

		for _, event := range events {
			next, effects := Reduce(*t.state, event, s.cfg.LedgerRetention)
			*t.state = next

			if effects.Dropped {
				s.metrics.recordDropped("stale")

				continue
			}

			s.counters.MessagesApplied++
			s.metrics.recordApplied(string(event.Kind()))
			t.notifyEvent(event, effects)

			if effects.Complete && t.transition(types.SessionStatusCompleted, "") {
				completed = true

				return
			}
		}
	})

	return completed
}

// apply runs fn under the state lock unless the session is already terminal.
// Start is the exception: it needs to run from Idle.
func (s *Session) apply(fn func(t *txn)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.IsTerminal() {
		s.metrics.recordDropped("terminal")

		return
	}

	t := &txn{session: s, state: &s.state, pending: nil}
	fn(t)

	s.notifier.push(t.pending...)

	if s.machine.IsTerminal() {
		s.terminalOnce.Do(func() { close(s.terminalCh) })
	}
}

// txn is the view of state handed to one apply call.
type txn struct {
	session *Session
	state   *types.SessionState
	pending []notification
}

// transition moves the status machine and mirrors the result into state.
func (t *txn) transition(to types.SessionStatus, detail string) bool {
	change, ok, err := t.session.machine.Transition(to)
	if err != nil {
		t.session.log.Debug("Ignoring status transition", zap.String("to", string(to)), zap.Error(err))

		return false
	}

	if !ok {
		return false
	}

	change.Detail = detail
	t.state.Status = to

	if to == types.SessionStatusFailed {
		t.state.Error = detail
	}

	t.session.log.Info("Session status changed",
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
	)
	t.session.metrics.recordTransition(change)
	t.notify(notification{change: &change})

	return true
}

func (t *txn) setBalance(balance types.BalanceSnapshot) {
	t.state.Balance = optional.Some(balance)
	t.notify(notification{balance: &balance})
}

func (t *txn) notify(n notification) {
	t.pending = append(t.pending, n)
}

func (t *txn) notifyEvent(event codec.Event, effects Effects) {
	switch ev := event.(type) {
	case codec.ChartEvent:
		if last := t.state.LastCandle(); last.IsSome() {
			candle := last.Unwrap()
			t.notify(notification{candle: &candle, appended: effects.Appended})
		}
	case codec.TradeEvent:
		marker := ev.Marker
		t.notify(notification{marker: &marker})
	case codec.TradeHistoryEvent:
		trade := ev.Trade
		t.notify(notification{trade: &trade})
	case codec.BalanceEvent:
		if t.state.Balance.IsSome() {
			balance := t.state.Balance.Unwrap()
			t.notify(notification{balance: &balance})
		}
	}
}
