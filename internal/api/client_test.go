package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/internal/version"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	router *mux.Router
	server *httptest.Server
	calls  atomic.Int32

	mu       sync.Mutex
	lastBody map[string]any
	lastReq  *http.Request
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.router = mux.NewRouter()
	suite.calls.Store(0)
	suite.lastBody = nil
	suite.lastReq = nil
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.calls.Add(1)

		body, _ := io.ReadAll(r.Body)

		suite.mu.Lock()
		suite.lastReq = r.Clone(context.Background())
		suite.lastBody = nil
		_ = json.Unmarshal(body, &suite.lastBody)
		suite.mu.Unlock()

		suite.router.ServeHTTP(w, r)
	}))
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *ClientTestSuite) newClient() *Client {
	return NewClient(Config{
		BaseURL:       suite.server.URL,
		SessionCookie: "cookie-1",
		Timeout:       2 * time.Second,
	}, logger.NewNopLogger())
}

func (suite *ClientTestSuite) respond(method, path string, status int, body string) {
	suite.router.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}).Methods(method)
}

func validRequest() types.TradeRequest {
	return types.TradeRequest{Symbol: "BTC", Amount: 100, Duration: "60"}
}

func (suite *ClientTestSuite) TestStartSessionSuccess() {
	suite.respond(http.MethodPost, DefaultStartPath, http.StatusOK,
		`{"balance": 900, "currency": "USD", "session": "abc"}`)

	req := validRequest()
	req.StopLoss = optional.Some(5.0)

	result, err := suite.newClient().StartSession(context.Background(), req)
	suite.Require().NoError(err)

	suite.Equal("abc", result.Handle.ID)
	suite.False(result.Handle.OpenedAt.IsZero())
	suite.Equal("900.00 USD", result.Balance.String())

	suite.mu.Lock()
	defer suite.mu.Unlock()

	suite.Equal("BTC", suite.lastBody["stock_symbol"])
	suite.InDelta(100.0, suite.lastBody["amount"], 1e-9)
	suite.Equal("60", suite.lastBody["duration"])
	suite.Equal("USD", suite.lastBody["currency"])
	suite.InDelta(5.0, suite.lastBody["stop_loss"], 1e-9)
	suite.NotContains(suite.lastBody, "take_profit")

	suite.Equal("application/json", suite.lastReq.Header.Get("Accept"))
	suite.Equal(version.UserAgent(), suite.lastReq.Header.Get("User-Agent"))

	cookie, err := suite.lastReq.Cookie(SessionCookieName)
	suite.Require().NoError(err)
	suite.Equal("cookie-1", cookie.Value)
}

func (suite *ClientTestSuite) TestStartSessionPrefersSessionID() {
	suite.respond(http.MethodPost, DefaultStartPath, http.StatusOK,
		`{"balance": "1234.5", "session_id": "s-1", "session": "ignored"}`)

	result, err := suite.newClient().StartSession(context.Background(), validRequest())
	suite.Require().NoError(err)
	suite.Equal("s-1", result.Handle.ID)
	suite.Equal("1234.50 USD", result.Balance.String())
}

func (suite *ClientTestSuite) TestStartSessionValidation() {
	_, err := suite.newClient().StartSession(context.Background(), types.TradeRequest{Symbol: "BTC", Duration: "60"})

	suite.Require().Error(err)
	suite.True(errors.IsValidationError(err))
	suite.Equal("amount: must be greater than 0", errors.UserMessage(err))
	suite.Equal(int32(0), suite.calls.Load())
}

func (suite *ClientTestSuite) TestStartSessionErrors() {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantFields int
	}{
		{
			name:       "fastapi validation",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"loc":["body","amount"],"msg":"value must be positive","type":"value_error"}]}`,
			wantDetail: "amount: value must be positive",
			wantFields: 1,
		},
		{
			name:       "plain detail",
			status:     http.StatusBadRequest,
			body:       `{"detail":"symbol not supported"}`,
			wantDetail: "symbol not supported",
		},
		{
			name:       "message body",
			status:     http.StatusConflict,
			body:       `{"message":"session already running"}`,
			wantDetail: "session already running",
		},
		{
			name:       "html error page",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantDetail: "502 Bad Gateway",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.router = mux.NewRouter()
			suite.respond(http.MethodPost, DefaultStartPath, tc.status, tc.body)

			_, err := suite.newClient().StartSession(context.Background(), validRequest())
			suite.Require().Error(err)

			var startErr *errors.SessionStartError
			suite.Require().ErrorAs(err, &startErr)
			suite.Equal(tc.status, startErr.StatusCode)
			suite.Equal(tc.wantDetail, startErr.Detail())
			suite.Len(startErr.Fields, tc.wantFields)
			suite.Equal(errors.ErrCodeSessionStartRejected, errors.GetCode(err))
		})
	}
}

func (suite *ClientTestSuite) TestStartSessionMissingSessionID() {
	suite.respond(http.MethodPost, DefaultStartPath, http.StatusOK, `{"balance": 900, "currency": "USD"}`)

	_, err := suite.newClient().StartSession(context.Background(), validRequest())
	suite.Require().Error(err)
	suite.True(errors.IsSessionStartError(err))
	suite.Contains(err.Error(), "no session identifier")
}

func (suite *ClientTestSuite) TestStartSessionUnreachable() {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, logger.NewNopLogger())

	_, err := client.StartSession(context.Background(), validRequest())
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeSessionStartFailed, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestListSymbols() {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "strings", body: `["AAPL", "BTC", " "]`, want: []string{"AAPL", "BTC"}},
		{name: "objects", body: `[{"symbol":"AAPL"},{"stock_symbol":"TSLA"}]`, want: []string{"AAPL", "TSLA"}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.router = mux.NewRouter()
			suite.respond(http.MethodGet, SymbolsPath, http.StatusOK, tc.body)

			symbols, err := suite.newClient().ListSymbols(context.Background())
			suite.Require().NoError(err)
			suite.Equal(tc.want, symbols)
		})
	}
}

func (suite *ClientTestSuite) TestAccount() {
	suite.respond(http.MethodGet, AccountPath, http.StatusOK, `{"balance": 1500.25, "currency": "EUR"}`)

	balance, err := suite.newClient().Account(context.Background())
	suite.Require().NoError(err)
	suite.Equal("1500.25 EUR", balance.String())
}

func (suite *ClientTestSuite) TestAccountUnauthorized() {
	suite.respond(http.MethodGet, AccountPath, http.StatusUnauthorized, `{"detail":"not logged in"}`)

	_, err := suite.newClient().Account(context.Background())
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeRequestFailed, errors.GetCode(err))
	suite.Contains(err.Error(), "not logged in")
}

func (suite *ClientTestSuite) TestAnalysis() {
	suite.respond(http.MethodGet, AnalysisPath, http.StatusOK, `{"summary":"Net positive","win_rate":0.6}`)

	analysis, err := suite.newClient().Analysis(context.Background())
	suite.Require().NoError(err)
	suite.Equal("Net positive", analysis.Summary)
	suite.InDelta(0.6, analysis.Details["win_rate"], 1e-9)
	suite.NotContains(analysis.Details, "summary")
}

func (suite *ClientTestSuite) TestLiveSnapshot() {
	suite.respond(http.MethodGet, LivePath, http.StatusOK,
		`{"chart":[{"time":1000,"open":1,"high":2,"low":0.5,"close":1.5}],"table":[],"tradeComplete":true}`)

	snapshot, err := suite.newClient().LiveSnapshot(context.Background())
	suite.Require().NoError(err)
	suite.Len(snapshot.Chart, 1)
	suite.True(snapshot.Completed)
}

func (suite *ClientTestSuite) TestServerVersionHeaderDoesNotFailRequests() {
	suite.router.HandleFunc(AccountPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(version.HeaderName, "99.0.0")
		_, _ = w.Write([]byte(`{"balance": 1}`))
	}).Methods(http.MethodGet)

	client := suite.newClient()
	for i := 0; i < 2; i++ {
		_, err := client.Account(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *ClientTestSuite) TestRateLimiterHonoursContext() {
	suite.respond(http.MethodGet, AccountPath, http.StatusOK, `{"balance": 1}`)

	client := NewClient(Config{BaseURL: suite.server.URL, RequestsPerSecond: 0.001}, logger.NewNopLogger())

	_, err := client.Account(context.Background())
	suite.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Account(ctx)
	suite.Error(err)
	suite.Equal(int32(1), suite.calls.Load())
}
