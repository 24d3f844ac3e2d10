package mockserver

import (
	"bytes"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type MockServerTestSuite struct {
	suite.Suite
	server *MockQbotServer
}

func TestMockServerSuite(t *testing.T) {
	suite.Run(t, new(MockServerTestSuite))
}

func (suite *MockServerTestSuite) start(config ServerConfig) {
	suite.server = NewMockQbotServer(config)
	suite.Require().NoError(suite.server.Start(":0"))
}

func (suite *MockServerTestSuite) TearDownTest() {
	if suite.server != nil {
		suite.NoError(suite.server.Stop())
		suite.server = nil
	}
}

func (suite *MockServerTestSuite) post(body string) (*http.Response, map[string]any) {
	resp, err := http.Post(suite.server.BaseURL()+StartPath, "application/json", bytes.NewBufferString(body))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var parsed map[string]any
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&parsed))

	return resp, parsed
}

func (suite *MockServerTestSuite) TestStartDebitsBalance() {
	suite.start(ServerConfig{Balance: 1000, Symbols: []string{"BTC"}})

	resp, body := suite.post(`{"stock_symbol":"BTC","amount":100,"currency":"USD","duration":"60"}`)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.InDelta(900.0, body["balance"], 1e-9)
	suite.Equal("USD", body["currency"])
	suite.NotEmpty(body["session"])

	suite.Equal([]string{body["session"].(string)}, suite.server.Sessions())
	suite.Len(suite.server.StartRequests(), 1)
	suite.InDelta(900.0, suite.server.Balance(), 1e-9)
}

func (suite *MockServerTestSuite) TestStartRejections() {
	suite.start(ServerConfig{Balance: 50, Symbols: []string{"BTC"}})

	resp, body := suite.post(`{"stock_symbol":"BTC","amount":0,"duration":"60"}`)
	suite.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	suite.IsType([]any{}, body["detail"])

	resp, body = suite.post(`{"stock_symbol":"DOGE","amount":10,"duration":"60"}`)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal("Unknown symbol DOGE", body["detail"])

	resp, _ = suite.post(`{"stock_symbol":"BTC","amount":100,"duration":"60"}`)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Empty(suite.server.Sessions())
}

func (suite *MockServerTestSuite) TestCookieRequired() {
	suite.start(ServerConfig{Balance: 10, SessionCookie: "secret"})

	resp, err := http.Get(suite.server.BaseURL() + AccountPath)
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, suite.server.BaseURL()+AccountPath, nil)
	suite.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "secret"})

	resp, err = http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *MockServerTestSuite) TestStreamScriptAndRejects() {
	suite.start(ServerConfig{
		RejectUpgrades: 1,
		Scripts:        [][][]byte{{[]byte(`{"type":"chart","time":1,"close":2}`)}},
	})

	u := url.URL{Scheme: "ws", Host: suite.server.Address(), Path: StreamPath, RawQuery: "session_id=abc"}

	_, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	suite.Require().Error(err)
	suite.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	suite.Require().NoError(err)
	defer conn.Close()

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(3 * time.Second)))

	_, msg, err := conn.ReadMessage()
	suite.Require().NoError(err)
	suite.Equal("Ready", string(msg))

	_, msg, err = conn.ReadMessage()
	suite.Require().NoError(err)
	suite.JSONEq(`{"type":"chart","time":1,"close":2}`, string(msg))

	suite.Equal(2, suite.server.Handshakes())
	suite.Equal([]string{"abc", "abc"}, suite.server.StreamSessions())
}

func (suite *MockServerTestSuite) TestGeneratedScriptEndsWithCompleted() {
	script := GeneratedScript(7, 12)

	suite.Require().NotEmpty(script)
	suite.JSONEq(`{"status":"completed"}`, string(script[len(script)-1]))
	suite.Greater(len(script), 13)
}
