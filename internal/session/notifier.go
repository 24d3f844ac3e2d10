package session

import (
	"sync"

	"github.com/joshua1code/Q-bot-FD/internal/types"
)

type notification struct {
	change    *StatusChange
	candle    *types.Candle
	appended  bool
	marker    *types.TradeMarker
	trade     *types.TradeEvent
	balance   *types.BalanceSnapshot
	decodeErr error
}

// notifier delivers notifications in push order on its own goroutine so
// that slow observers never stall the writer.
type notifier struct {
	mu        sync.Mutex
	queue     []notification
	closed    bool
	signal    chan struct{}
	done      chan struct{}
	callbacks Callbacks

	subsMu  sync.Mutex
	subs    map[int]chan StatusChange
	nextSub int
	buffer  int
}

func newNotifier(buffer int) *notifier {
	if buffer <= 0 {
		buffer = 16
	}

	return &notifier{
		mu:        sync.Mutex{},
		queue:     nil,
		closed:    false,
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		callbacks: Callbacks{},
		subsMu:    sync.Mutex{},
		subs:      make(map[int]chan StatusChange),
		nextSub:   0,
		buffer:    buffer,
	}
}

func (n *notifier) setCallbacks(callbacks Callbacks) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.callbacks = callbacks
}

func (n *notifier) push(items ...notification) {
	if len(items) == 0 {
		return
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()

		return
	}

	n.queue = append(n.queue, items...)
	n.mu.Unlock()

	select {
	case n.signal <- struct{}{}:
	default:
	}
}

// close stops accepting notifications. Queued ones are still delivered.
func (n *notifier) close() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	select {
	case n.signal <- struct{}{}:
	default:
	}
}

func (n *notifier) subscribe() (<-chan StatusChange, func()) {
	n.subsMu.Lock()
	defer n.subsMu.Unlock()

	ch := make(chan StatusChange, n.buffer)

	select {
	case <-n.done:
		close(ch)

		return ch, func() {}
	default:
	}

	id := n.nextSub
	n.nextSub++
	n.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			n.subsMu.Lock()
			defer n.subsMu.Unlock()

			if sub, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(sub)
			}
		})
	}
}

func (n *notifier) run() {
	defer n.closeSubscribers()

	for range n.signal {
		for {
			n.mu.Lock()
			batch := n.queue
			n.queue = nil
			closed := n.closed
			callbacks := n.callbacks
			n.mu.Unlock()

			for _, item := range batch {
				n.deliver(callbacks, item)
			}

			if len(batch) == 0 {
				if closed {
					return
				}

				break
			}
		}
	}
}

func (n *notifier) deliver(callbacks Callbacks, item notification) {
	switch {
	case item.change != nil:
		n.broadcast(*item.change)

		if callbacks.OnStatusChange != nil {
			(*callbacks.OnStatusChange)(*item.change)
		}
	case item.candle != nil:
		if callbacks.OnCandle != nil {
			(*callbacks.OnCandle)(*item.candle, item.appended)
		}
	case item.marker != nil:
		if callbacks.OnMarker != nil {
			(*callbacks.OnMarker)(*item.marker)
		}
	case item.trade != nil:
		if callbacks.OnTrade != nil {
			(*callbacks.OnTrade)(*item.trade)
		}
	case item.balance != nil:
		if callbacks.OnBalance != nil {
			(*callbacks.OnBalance)(*item.balance)
		}
	case item.decodeErr != nil:
		if callbacks.OnDecodeError != nil {
			(*callbacks.OnDecodeError)(item.decodeErr)
		}
	}
}

// broadcast never blocks: a full subscriber loses its oldest pending change.
func (n *notifier) broadcast(change StatusChange) {
	n.subsMu.Lock()
	defer n.subsMu.Unlock()

	for _, ch := range n.subs {
		for {
			select {
			case ch <- change:
			default:
				select {
				case <-ch:
				default:
				}

				continue
			}

			break
		}
	}
}

func (n *notifier) closeSubscribers() {
	n.subsMu.Lock()
	defer n.subsMu.Unlock()

	close(n.done)

	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
