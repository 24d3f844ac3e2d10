package session

import (
	"context"

	"github.com/joshua1code/Q-bot-FD/internal/stream"
	"github.com/joshua1code/Q-bot-FD/internal/types"
)

// Starter provisions a trading session on the remote service.
type Starter interface {
	StartSession(ctx context.Context, req types.TradeRequest) (types.StartResult, error)
}

// Connector is the stream side of a session. *stream.Manager implements it.
type Connector interface {
	// SetReconnectGuard installs the check consulted before every reconnect.
	SetReconnectGuard(guard func() bool)
	// Open starts connecting for handle in the background.
	Open(ctx context.Context, handle types.SessionHandle) error
	// Events returns the connection event channel, closed when the connector stops.
	Events() <-chan stream.Event
	// Close stops the connector. It must be idempotent.
	Close() error
}

// Callbacks run on a dedicated goroutine in the order the events were applied.
// They never block the session and may call any Session method, including Close.

// OnStatusChangeCallback is called for every status transition.
type OnStatusChangeCallback func(change StatusChange)

// OnCandleCallback is called after a candle was appended or revised in place.
type OnCandleCallback func(candle types.Candle, appended bool)

// OnMarkerCallback is called after an overlay marker was added.
type OnMarkerCallback func(marker types.TradeMarker)

// OnTradeCallback is called after a ledger entry was prepended.
type OnTradeCallback func(trade types.TradeEvent)

// OnBalanceCallback is called after the balance snapshot was replaced.
type OnBalanceCallback func(balance types.BalanceSnapshot)

// OnDecodeErrorCallback is called for every stream payload dropped as malformed.
type OnDecodeErrorCallback func(err error)

// Callbacks holds the observer functions for one session.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	OnStatusChange *OnStatusChangeCallback
	OnCandle       *OnCandleCallback
	OnMarker       *OnMarkerCallback
	OnTrade        *OnTradeCallback
	OnBalance      *OnBalanceCallback
	OnDecodeError  *OnDecodeErrorCallback
}
