// Package stream owns the persistent websocket connection of one trading session.
package stream

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// ReadySentinel is the plain text frame the server sends once the stream is authenticated.
const ReadySentinel = "Ready"

const defaultReadLimit = 1 << 20

// Config holds the stream connection settings.
type Config struct {
	// BaseURL is the ws(s) origin, e.g. "wss://qbot.mooo.com".
	BaseURL string
	// Path is the stream endpoint path, e.g. "/ws/trade".
	Path string
	// SessionCookie is sent as the session_id cookie when set.
	SessionCookie string
	// UserAgent is sent with the handshake.
	UserAgent string
	// HandshakeTimeout bounds each dial.
	HandshakeTimeout time.Duration
	// BackoffUnit is the first reconnect delay.
	BackoffUnit time.Duration
	// BackoffMaxUnits caps the reconnect delay at BackoffMaxUnits * BackoffUnit.
	BackoffMaxUnits int
	// ReadLimit is the maximum frame size in bytes.
	ReadLimit int64
}

// Manager maintains one websocket connection per session handle, reconnecting
// with backoff until it is closed or the reconnect guard refuses.
//
// Events are handed off on an unbuffered channel, so the consumer has received
// one event before the manager acts on the next. Close must be
// called to release the connection.
type Manager struct {
	cfg    Config
	log    *logger.Logger
	dialer *websocket.Dialer
	policy *ReconnectPolicy
	guard  func() bool

	events    chan Event
	closeCh   chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc
	wg        conc.WaitGroup

	mu     sync.Mutex
	opened bool
	conn   *websocket.Conn
	url    string
}

// NewManager creates a Manager. Nothing is dialled until Open.
func NewManager(cfg Config, log *logger.Logger) *Manager {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}

	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = defaultReadLimit
	}

	//nolint:exhaustruct
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	return &Manager{
		cfg:       cfg,
		log:       log,
		dialer:    dialer,
		policy:    NewReconnectPolicy(cfg.BackoffUnit, cfg.BackoffMaxUnits),
		guard:     func() bool { return true },
		events:    make(chan Event),
		closeCh:   make(chan struct{}),
		closeOnce: sync.Once{},
		cancel:    func() {},
		wg:        conc.WaitGroup{},
		mu:        sync.Mutex{},
		opened:    false,
		conn:      nil,
		url:       "",
	}
}

// SetReconnectGuard installs the check consulted before every reconnect.
// It must be called before Open.
func (m *Manager) SetReconnectGuard(guard func() bool) {
	if guard == nil {
		guard = func() bool { return true }
	}

	m.guard = guard
}

// Events returns the connection event channel. It is closed after the manager stops.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Attempts returns the number of consecutive failures since the last successful open.
func (m *Manager) Attempts() int {
	return m.policy.Attempts()
}

// URL returns the endpoint the manager dials, empty before Open.
func (m *Manager) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.url
}

// Open starts connecting for handle in the background. It may be called once.
func (m *Manager) Open(ctx context.Context, handle types.SessionHandle) error {
	endpoint, err := BuildURL(m.cfg.BaseURL, m.cfg.Path, handle.ID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isClosed() {
		return errors.New(errors.ErrCodeStreamClosed, "stream manager is closed")
	}

	if m.opened {
		return errors.New(errors.ErrCodeSessionAlreadyUsed, "stream manager is already open")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.opened = true
	m.cancel = cancel
	m.url = endpoint

	m.wg.Go(func() {
		defer close(m.events)
		m.run(runCtx, endpoint)
	})

	return nil
}

// Close stops the manager. It cancels a pending reconnect, closes the live
// connection exactly once and waits for the background loop to exit.
// It is safe to call multiple times, concurrently, and before Open.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		close(m.closeCh)
		m.cancel()

		conn := m.conn
		m.conn = nil
		opened := m.opened
		m.mu.Unlock()

		if conn != nil {
			m.closeConn(conn)
		}

		if !opened {
			close(m.events)
		}
	})

	m.wg.Wait()

	return nil
}

func (m *Manager) isClosed() bool {
	select {
	case <-m.closeCh:
		return true
	default:
		return false
	}
}

func (m *Manager) run(ctx context.Context, endpoint string) {
	dial := 0

	for {
		if m.isClosed() || ctx.Err() != nil {
			return
		}

		dial++
		if !m.emit(Event{Type: EventConnecting, Attempt: dial}) {
			return
		}

		m.log.Debug("Connecting to stream", zap.String("url", endpoint), zap.Int("attempt", dial))

		conn, err := m.connect(ctx, endpoint)
		if err != nil {
			if m.isClosed() {
				return
			}

			m.log.Warn("Stream dial failed", zap.Int("attempt", dial), zap.Error(err))

			if !m.emit(Event{Type: EventFailed, Err: errors.NewConnectionError(endpoint, dial, err)}) {
				return
			}

			if !m.waitForReconnect() {
				return
			}

			continue
		}

		m.policy.Reset()
		m.log.Info("Stream opened", zap.String("url", endpoint))

		if !m.emit(Event{Type: EventOpened}) {
			m.releaseConn(conn)

			return
		}

		closed := m.readLoop(conn, endpoint, dial)
		m.releaseConn(conn)

		if m.isClosed() {
			return
		}

		if !m.emit(closed) {
			return
		}

		if !m.waitForReconnect() {
			return
		}
	}
}

// connect dials and registers the connection, unless Close won the race.
func (m *Manager) connect(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	conn, resp, err := m.dialer.DialContext(ctx, endpoint, m.header())
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(errors.ErrCodeConnectionFailed, err, "handshake rejected with %s", resp.Status)
		}

		return nil, err
	}

	conn.SetReadLimit(m.cfg.ReadLimit)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isClosed() {
		m.closeConn(conn)

		return nil, errors.ErrTeardownRace
	}

	m.conn = conn

	return conn, nil
}

func (m *Manager) header() http.Header {
	header := http.Header{}

	if m.cfg.UserAgent != "" {
		header.Set("User-Agent", m.cfg.UserAgent)
	}

	if m.cfg.SessionCookie != "" {
		//nolint:exhaustruct
		cookie := &http.Cookie{Name: SessionQueryParam, Value: m.cfg.SessionCookie}
		header.Set("Cookie", cookie.String())
	}

	return header
}

// readLoop forwards frames until the connection ends and returns the event describing the end.
func (m *Manager) readLoop(conn *websocket.Conn, endpoint string, dial int) Event {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				m.log.Info("Stream closed by peer", zap.Int("code", closeErr.Code), zap.String("reason", closeErr.Text))

				return Event{Type: EventClosed, Code: closeErr.Code, Reason: closeErr.Text}
			}

			m.log.Warn("Stream read failed", zap.Error(err))

			return Event{Type: EventFailed, Err: errors.NewConnectionError(endpoint, dial, err)}
		}

		if isReadySentinel(data) {
			if !m.emit(Event{Type: EventReady}) {
				return Event{Type: EventClosed, Code: websocket.CloseNormalClosure, Reason: "manager closed"}
			}

			continue
		}

		if !m.emit(Event{Type: EventMessage, Data: data}) {
			return Event{Type: EventClosed, Code: websocket.CloseNormalClosure, Reason: "manager closed"}
		}
	}
}

// waitForReconnect consults the guard, then waits out the backoff delay.
// It returns false when the manager should stop instead.
func (m *Manager) waitForReconnect() bool {
	if m.isClosed() || !m.guard() {
		m.log.Info("Reconnect abandoned")

		return false
	}

	attempt, delay := m.policy.Next()
	m.log.Info("Reconnect scheduled", zap.Int("attempt", attempt), zap.Duration("delay", delay))

	if !m.emit(Event{Type: EventReconnectScheduled, Attempt: attempt, Delay: delay}) {
		return false
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-m.closeCh:
		return false
	case <-timer.C:
	}

	return !m.isClosed() && m.guard()
}

// emit hands ev to the consumer. It returns false if the manager was closed first.
func (m *Manager) emit(ev Event) bool {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	select {
	case <-m.closeCh:
		return false
	default:
	}

	select {
	case m.events <- ev:
		return true
	case <-m.closeCh:
		return false
	}
}

func (m *Manager) releaseConn(conn *websocket.Conn) {
	m.mu.Lock()
	owned := m.conn == conn
	if owned {
		m.conn = nil
	}
	m.mu.Unlock()

	if owned {
		m.closeConn(conn)
	}
}

func (m *Manager) closeConn(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	if err := conn.Close(); err != nil {
		m.log.Debug("Failed to close stream connection", zap.Error(err))
	}
}

func isReadySentinel(data []byte) bool {
	return strings.EqualFold(strings.TrimSpace(string(data)), ReadySentinel)
}
