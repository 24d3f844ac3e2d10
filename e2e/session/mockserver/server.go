// Package mockserver provides a mock Q-bot server for end to end tests.
// It serves the REST endpoints and the trade stream the client talks to.
package mockserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/joshua1code/Q-bot-FD/mocks"
	"github.com/joshua1code/Q-bot-FD/internal/types"
)

// Paths served by the mock.
const (
	StartPath    = "/api/trade/start"
	SymbolsPath  = "/api/trade/stocks"
	AccountPath  = "/api/account"
	AnalysisPath = "/api/analysis"
	LivePath     = "/api/trade/live"
	StreamPath   = "/ws/trade"
)

// ServerConfig holds configuration for the mock server.
type ServerConfig struct {
	// Balance is the account balance before any session starts.
	Balance float64
	// Currency of Balance. Defaults to USD.
	Currency string
	// Symbols lists the tradable symbols. Start requests for other symbols are rejected.
	Symbols []string
	// Scripts holds the frames sent on each stream connection after the ready
	// sentinel, by connection index. The last script is reused for later connections.
	Scripts [][][]byte
	// FrameInterval is the pause between two frames.
	FrameInterval time.Duration
	// RejectUpgrades answers the first N stream handshakes with 503.
	RejectUpgrades int
	// DropConnections closes the first N accepted stream connections without
	// a close frame once their script is sent.
	DropConnections int
	// SessionCookie, when set, must be presented as the session_id cookie.
	SessionCookie string
	// Version is reported in the X-Qbot-Version header when set.
	Version string
}

// StartRequest is one recorded start call.
type StartRequest struct {
	Symbol     string   `json:"stock_symbol"`
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency"`
	Duration   string   `json:"duration"`
	StopLoss   *float64 `json:"stop_loss"`
	TakeProfit *float64 `json:"take_profit"`
}

// MockQbotServer is a scripted Q-bot backend.
type MockQbotServer struct {
	mu     sync.RWMutex
	config ServerConfig

	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	balance        float64
	sessions       []string
	startRequests  []StartRequest
	streamSessions []string
	handshakes     int
	accepted       int
	lastFrames     [][]byte

	wsConnections map[*websocket.Conn]bool
	wsMu          sync.Mutex
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewMockQbotServer creates a new mock server.
func NewMockQbotServer(config ServerConfig) *MockQbotServer {
	if config.Currency == "" {
		config.Currency = types.DefaultCurrency
	}

	return &MockQbotServer{
		mu:     sync.RWMutex{},
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		balance:        config.Balance,
		sessions:       []string{},
		startRequests:  []StartRequest{},
		streamSessions: []string{},
		handshakes:     0,
		accepted:       0,
		lastFrames:     nil,
		wsConnections:  make(map[*websocket.Conn]bool),
		wsMu:           sync.Mutex{},
		stop:           make(chan struct{}),
		stopOnce:       sync.Once{},
		httpServer:     nil,
		listener:       nil,
	}
}

// GeneratedScript returns a deterministic session: count one-minute candles,
// a buy/sell pair of trades every few candles and a final completed frame.
func GeneratedScript(seed int64, count int) [][]byte {
	config := mocks.DefaultConfig()
	config.Count = count

	generator := mocks.NewDataGenerator(seed)
	candles := generator.Candles(config)
	trades := generator.Trades(candles, 3, 10)

	frames := make([][]byte, 0, len(candles)+2*len(trades)+1)
	next := 0

	for _, candle := range candles {
		frames = append(frames, mocks.ChartFrame(candle))

		for next < len(trades) && trades[next].Time <= candle.Time {
			frames = append(frames, mocks.TradeFrame(trades[next]), mocks.TradeHistoryFrame(trades[next]))
			next++
		}
	}

	return append(frames, mocks.CompletedFrame())
}

// Start starts the mock server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *MockQbotServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	router := mux.NewRouter()
	router.Use(s.versionHeader)

	router.HandleFunc(StartPath, s.authenticated(s.handleStart)).Methods(http.MethodPost)
	router.HandleFunc(SymbolsPath, s.authenticated(s.handleSymbols)).Methods(http.MethodGet)
	router.HandleFunc(AccountPath, s.authenticated(s.handleAccount)).Methods(http.MethodGet)
	router.HandleFunc(AnalysisPath, s.authenticated(s.handleAnalysis)).Methods(http.MethodGet)
	router.HandleFunc(LivePath, s.authenticated(s.handleLive)).Methods(http.MethodGet)
	router.HandleFunc(StreamPath, s.handleStream)

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the mock server and drops every stream connection.
func (s *MockQbotServer) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })

	s.wsMu.Lock()
	for conn := range s.wsConnections {
		conn.Close()
	}

	s.wsConnections = make(map[*websocket.Conn]bool)
	s.wsMu.Unlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Address returns the address the server is listening on.
func (s *MockQbotServer) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the base URL for the REST API.
func (s *MockQbotServer) BaseURL() string {
	return "http://" + s.Address()
}

// WebSocketURL returns the origin of the stream endpoint.
func (s *MockQbotServer) WebSocketURL() string {
	return "ws://" + s.Address()
}

// StartRequests returns every start call received so far.
func (s *MockQbotServer) StartRequests() []StartRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]StartRequest(nil), s.startRequests...)
}

// Sessions returns the session ids handed out so far.
func (s *MockQbotServer) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.sessions...)
}

// StreamSessions returns the session_id query value of every stream handshake.
func (s *MockQbotServer) StreamSessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.streamSessions...)
}

// Handshakes returns the number of stream handshakes, rejected ones included.
func (s *MockQbotServer) Handshakes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.handshakes
}

// Balance returns the current account balance.
func (s *MockQbotServer) Balance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balance
}

func (s *MockQbotServer) versionHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Version != "" {
			w.Header().Set("X-Qbot-Version", s.config.Version)
		}

		next.ServeHTTP(w, r)
	})
}

func (s *MockQbotServer) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.SessionCookie != "" {
			cookie, err := r.Cookie("session_id")
			if err != nil || cookie.Value != s.config.SessionCookie {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})

				return
			}
		}

		next(w, r)
	}
}

// REST API Handlers

// handleStart handles POST /api/trade/start
func (s *MockQbotServer) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid JSON body"})

		return
	}

	if req.Amount <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{
				"loc":  []string{"body", "amount"},
				"msg":  "Input should be greater than 0",
				"type": "greater_than",
			}},
		})

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isTradable(req.Symbol) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Unknown symbol " + req.Symbol})

		return
	}

	if req.Amount > s.balance {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Insufficient balance"})

		return
	}

	id := uuid.New().String()
	s.balance -= req.Amount
	s.sessions = append(s.sessions, id)
	s.startRequests = append(s.startRequests, req)

	writeJSON(w, http.StatusOK, map[string]any{
		"balance":  s.balance,
		"currency": s.config.Currency,
		"session":  id,
	})
}

//nolint:funcorder // helper used by handleStart
func (s *MockQbotServer) isTradable(symbol string) bool {
	if len(s.config.Symbols) == 0 {
		return true
	}

	for _, candidate := range s.config.Symbols {
		if strings.EqualFold(candidate, symbol) {
			return true
		}
	}

	return false
}

// handleSymbols handles GET /api/trade/stocks
func (s *MockQbotServer) handleSymbols(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Symbols)
}

// handleAccount handles GET /api/account
func (s *MockQbotServer) handleAccount(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{"balance": s.balance, "currency": s.config.Currency})
}

// handleAnalysis handles GET /api/analysis
func (s *MockQbotServer) handleAnalysis(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":  fmt.Sprintf("%d sessions started", len(s.sessions)),
		"sessions": len(s.sessions),
	})
}

// handleLive handles GET /api/trade/live
func (s *MockQbotServer) handleLive(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chart := []json.RawMessage{}
	table := []json.RawMessage{}
	completed := false

	for _, frame := range s.lastFrames {
		var probe struct {
			Type   string `json:"type"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(frame, &probe); err != nil {
			continue
		}

		switch {
		case probe.Type == "chart":
			chart = append(chart, frame)
		case probe.Type == "trade_history":
			table = append(table, frame)
		case probe.Status == "completed":
			completed = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"chart":         chart,
		"table":         table,
		"tradeComplete": completed,
	})
}

// handleStream handles the trade stream: GET /ws/trade?session_id=...
func (s *MockQbotServer) handleStream(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.handshakes++
	s.streamSessions = append(s.streamSessions, r.URL.Query().Get("session_id"))
	reject := s.handshakes <= s.config.RejectUpgrades
	s.mu.Unlock()

	if reject {
		http.Error(w, "stream warming up", http.StatusServiceUnavailable)

		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	s.wsConnections[conn] = true
	s.wsMu.Unlock()

	defer func() {
		s.wsMu.Lock()
		delete(s.wsConnections, conn)
		s.wsMu.Unlock()
		conn.Close()
	}()

	s.mu.Lock()
	index := s.accepted
	s.accepted++
	script := s.scriptFor(index)
	s.mu.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("Ready")); err != nil {
		return
	}

	for _, frame := range script {
		select {
		case <-s.stop:
			return
		case <-time.After(s.config.FrameInterval):
		}

		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}

		s.mu.Lock()
		s.lastFrames = append(s.lastFrames, frame)
		s.mu.Unlock()
	}

	if index < s.config.DropConnections {
		// Abrupt drop: no close frame.
		_ = conn.UnderlyingConn().Close()

		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

//nolint:funcorder // helper used by handleStream
func (s *MockQbotServer) scriptFor(index int) [][]byte {
	if len(s.config.Scripts) == 0 {
		return nil
	}

	if index >= len(s.config.Scripts) {
		index = len(s.config.Scripts) - 1
	}

	return s.config.Scripts[index]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
