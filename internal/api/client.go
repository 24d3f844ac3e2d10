// Package api is the REST client for the Q-bot service.
package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/joshua1code/Q-bot-FD/internal/codec"
	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/internal/version"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Endpoint paths relative to the API base URL.
const (
	DefaultStartPath = "/api/trade/start"
	SymbolsPath      = "/api/trade/stocks"
	AccountPath      = "/api/account"
	AnalysisPath     = "/api/analysis"
	LivePath         = "/api/trade/live"
)

// SessionCookieName is the cookie the service authenticates browser sessions with.
const SessionCookieName = "session_id"

// Config holds the REST client settings.
type Config struct {
	// BaseURL is the http(s) origin, e.g. "https://qbot.mooo.com".
	BaseURL string
	// StartPath overrides DefaultStartPath.
	StartPath string
	// SessionCookie is sent as the session_id cookie when set.
	SessionCookie string
	// Timeout bounds every request.
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64
}

// Client talks to the Q-bot REST API. It implements session.Starter.
type Client struct {
	cfg     Config
	http    *resty.Client
	limiter *rate.Limiter
	log     *logger.Logger

	versionOnce sync.Once
}

// NewClient creates a Client for cfg.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.StartPath == "" {
		cfg.StartPath = DefaultStartPath
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	c := &Client{
		cfg:         cfg,
		http:        nil,
		limiter:     limiter,
		log:         log,
		versionOnce: sync.Once{},
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent()).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return c.limiter.Wait(req.Context())
		}).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			c.checkServerVersion(resp.Header().Get(version.HeaderName))

			return nil
		})

	if cfg.SessionCookie != "" {
		//nolint:exhaustruct
		c.http.SetCookie(&http.Cookie{Name: SessionCookieName, Value: cfg.SessionCookie})
	}

	return c
}

// checkServerVersion warns once when the server speaks an incompatible API version.
func (c *Client) checkServerVersion(serverVersion string) {
	if serverVersion == "" {
		return
	}

	c.versionOnce.Do(func() {
		if err := version.CheckServerCompatibility(version.GetVersion(), serverVersion); err != nil {
			c.log.Warn("Server API version may be incompatible",
				zap.String("client_version", version.GetVersion()),
				zap.String("server_version", serverVersion),
				zap.Error(err),
			)
		}
	})
}

type startRequest struct {
	Symbol     string   `json:"stock_symbol"`
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency"`
	Duration   string   `json:"duration"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
}

type startResponse struct {
	Balance   *decimal.Decimal `json:"balance"`
	Currency  string           `json:"currency"`
	SessionID string           `json:"session_id"`
	Session   string           `json:"session"`
}

// StartSession provisions a trading session. The request is validated first
// and no call is made when it is invalid.
//
// Failures are *errors.ValidationError or *errors.SessionStartError. The stream is never opened here.
func (c *Client) StartSession(ctx context.Context, req types.TradeRequest) (types.StartResult, error) {
	if err := req.Validate(); err != nil {
		return types.StartResult{}, err
	}

	req = req.Normalize()

	body := startRequest{
		Symbol:     req.Symbol,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Duration:   req.Duration,
		StopLoss:   optionalPtr(req.StopLoss.TakeOr(0), req.StopLoss.IsSome()),
		TakeProfit: optionalPtr(req.TakeProfit.TakeOr(0), req.TakeProfit.IsSome()),
	}

	c.log.Debug("Starting session",
		zap.String("symbol", req.Symbol),
		zap.Float64("amount", req.Amount),
		zap.String("duration", req.Duration),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.cfg.StartPath)
	if err != nil {
		//nolint:exhaustruct
		return types.StartResult{}, &errors.SessionStartError{Cause: err}
	}

	if !resp.IsSuccess() {
		startErr := parseStartError(resp.StatusCode(), resp.Status(), resp.Body())
		c.log.Warn("Session start rejected",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("detail", startErr.Detail()),
		)

		return types.StartResult{}, startErr
	}

	var parsed startResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		//nolint:exhaustruct
		return types.StartResult{}, &errors.SessionStartError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Message:    "invalid start response",
			Cause:      err,
		}
	}

	sessionID := strings.TrimSpace(parsed.SessionID)
	if sessionID == "" {
		sessionID = strings.TrimSpace(parsed.Session)
	}

	if sessionID == "" {
		//nolint:exhaustruct
		return types.StartResult{}, &errors.SessionStartError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Message:    "start response carries no session identifier",
			Cause:      errors.New(errors.ErrCodeMissingSessionID, "missing session_id"),
		}
	}

	balance := types.BalanceSnapshot{Amount: decimal.Zero, Currency: parsed.Currency}
	if parsed.Balance != nil {
		balance.Amount = *parsed.Balance
	}

	if balance.Currency == "" {
		balance.Currency = req.Currency
	}

	return types.StartResult{
		Handle:  types.SessionHandle{ID: sessionID, OpenedAt: time.Now().UTC()},
		Balance: balance,
	}, nil
}

// ListSymbols returns the tradable symbols.
func (c *Client) ListSymbols(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, SymbolsPath)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResponseParseFailed, "invalid symbol list", err)
	}

	symbols := make([]string, 0, len(items))

	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				symbols = append(symbols, name)
			}

			continue
		}

		var obj struct {
			Symbol      string `json:"symbol"`
			StockSymbol string `json:"stock_symbol"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, errors.Wrap(errors.ErrCodeResponseParseFailed, "invalid symbol entry", err)
		}

		if name = strings.TrimSpace(obj.Symbol); name == "" {
			name = strings.TrimSpace(obj.StockSymbol)
		}

		if name != "" {
			symbols = append(symbols, name)
		}
	}

	return symbols, nil
}

// Account returns the current account balance.
func (c *Client) Account(ctx context.Context) (types.BalanceSnapshot, error) {
	body, err := c.get(ctx, AccountPath)
	if err != nil {
		return types.BalanceSnapshot{}, err
	}

	var parsed struct {
		Balance  *decimal.Decimal `json:"balance"`
		Currency string           `json:"currency"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.BalanceSnapshot{}, errors.Wrap(errors.ErrCodeResponseParseFailed, "invalid account response", err)
	}

	if parsed.Balance == nil {
		return types.BalanceSnapshot{}, errors.New(errors.ErrCodeResponseParseFailed, "account response carries no balance")
	}

	return types.BalanceSnapshot{Amount: *parsed.Balance, Currency: parsed.Currency}, nil
}

// Analysis returns the server side analysis of the latest session.
func (c *Client) Analysis(ctx context.Context) (types.Analysis, error) {
	body, err := c.get(ctx, AnalysisPath)
	if err != nil {
		return types.Analysis{}, err
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return types.Analysis{}, errors.Wrap(errors.ErrCodeResponseParseFailed, "invalid analysis response", err)
	}

	analysis := types.Analysis{Summary: "", Details: map[string]any{}}

	for key, value := range fields {
		if key == "summary" {
			if s, ok := value.(string); ok {
				analysis.Summary = s

				continue
			}
		}

		analysis.Details[key] = value
	}

	return analysis, nil
}

// LiveSnapshot reads the server's current view of the running session once.
// The result is for diagnostics and is never merged into streamed state.
func (c *Client) LiveSnapshot(ctx context.Context) (types.LiveSnapshot, error) {
	body, err := c.get(ctx, LivePath)
	if err != nil {
		return types.LiveSnapshot{}, err
	}

	return codec.DecodeLiveSnapshot(body)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeRequestFailed, err, "GET %s failed", path)
	}

	if !resp.IsSuccess() {
		detail := parseStartError(resp.StatusCode(), resp.Status(), resp.Body()).Detail()

		return nil, errors.Newf(errors.ErrCodeRequestFailed, "GET %s failed with %d: %s", path, resp.StatusCode(), detail)
	}

	return resp.Body(), nil
}

func optionalPtr(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}

	return &v
}
