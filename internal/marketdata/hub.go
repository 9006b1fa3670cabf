package marketdata

import (
	"context"
	"log/slog"

	"github.com/daemonX10/papertrade/internal/domain"
)

// Message types pushed to streaming consumers.
const (
	MessageTypeSnapshot  = "SNAPSHOT"
	MessageTypeTickBatch = "TICK_BATCH"
)

// Message is one frame pushed to a streaming consumer: a one-time
// SNAPSHOT of the full board on connect, then a filtered TICK_BATCH per
// generator cycle.
type Message struct {
	Type  string        `json:"type"`
	Ticks []domain.Tick `json:"ticks"`
}

// subscriptionOp mutates one client's symbol set.
type subscriptionOp struct {
	client  *Client
	symbols []string
	add     bool
}

// Hub fans each generator cycle out to the connected consumers, each
// filtered to its own symbol subset. All client-set state is owned by
// the Run goroutine and reached only through channels, so broadcast
// never races with connect, disconnect, or subscription changes.
//
// Delivery is at-most-once and best-effort: a consumer whose send
// buffer is full is dropped rather than stalling the cycle, and nothing
// is buffered for disconnected consumers.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscriptionOp
	broadcast   chan []domain.Tick
	snapshotFn  func() []domain.Tick
	mirror      *TickPublisher // optional, may be nil
	logger      *slog.Logger

	clients map[*Client]*subscription
}

// subscription is one client's symbol filter. A client that never
// subscribed explicitly receives all symbols; once it subscribes it
// receives only its chosen set, including nothing at all after
// unsubscribing from everything.
type subscription struct {
	explicit bool
	symbols  map[string]struct{}
}

// matches reports whether the client should receive ticks for symbol.
func (s *subscription) matches(symbol string) bool {
	if !s.explicit {
		return true
	}
	_, ok := s.symbols[symbol]
	return ok
}

// NewHub creates a hub. snapshotFn supplies the full current board for
// connect-time snapshots. mirror may be nil.
func NewHub(snapshotFn func() []domain.Tick, mirror *TickPublisher, logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscriptionOp),
		broadcast:  make(chan []domain.Tick, 1),
		snapshotFn: snapshotFn,
		mirror:     mirror,
		logger:     logger,
		clients:    make(map[*Client]*subscription),
	}
}

// Publish implements Sink. The hand-off is non-blocking: if the hub has
// not consumed the previous batch yet, this cycle's batch replaces
// nothing and is dropped, so the generator's cadence is never stalled.
func (h *Hub) Publish(ticks []domain.Tick) {
	select {
	case h.broadcast <- ticks:
	default:
		h.logger.Warn("hub busy, dropping tick batch")
	}
}

// Register adds a client to the hub. The client receives a one-time
// SNAPSHOT of the full board before any tick batches.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client and discards its subscriptions. No
// delivery is attempted afterward.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Subscribe adds symbols to a client's subscription set. Idempotent;
// takes effect on the next broadcast cycle.
func (h *Hub) Subscribe(c *Client, symbols []string) {
	h.subscribe <- subscriptionOp{client: c, symbols: symbols, add: true}
}

// Unsubscribe removes symbols from a client's subscription set.
// Idempotent; takes effect on the next broadcast cycle.
func (h *Hub) Unsubscribe(c *Client, symbols []string) {
	h.subscribe <- subscriptionOp{client: c, symbols: symbols, add: false}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = &subscription{symbols: make(map[string]struct{})}
			h.deliver(c, Message{Type: MessageTypeSnapshot, Ticks: h.snapshotFn()})
			h.logger.Debug("stream client connected", slog.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Debug("stream client disconnected", slog.Int("clients", len(h.clients)))
			}

		case op := <-h.subscribe:
			sub, ok := h.clients[op.client]
			if !ok {
				continue
			}
			for _, symbol := range op.symbols {
				if op.add {
					sub.explicit = true
					sub.symbols[symbol] = struct{}{}
				} else {
					delete(sub.symbols, symbol)
				}
			}

		case ticks := <-h.broadcast:
			h.fanOut(ticks)
		}
	}
}

// fanOut pushes the batch to every client, filtered to its subscription
// set. Clients with no matching symbols receive nothing this cycle.
func (h *Hub) fanOut(ticks []domain.Tick) {
	if h.mirror != nil {
		h.mirror.Publish(ticks)
	}

	for c, sub := range h.clients {
		filtered := filterTicks(ticks, sub)
		if len(filtered) == 0 {
			continue
		}
		h.deliver(c, Message{Type: MessageTypeTickBatch, Ticks: filtered})
	}
}

// deliver hands a message to the client's writer without blocking. A
// client that cannot keep up is dropped.
func (h *Hub) deliver(c *Client, msg Message) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("dropping slow stream client")
		h.drop(c)
	}
}

// drop removes a client and closes its send channel, which terminates
// its writer goroutine.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// filterTicks returns the subset of ticks the subscription matches.
func filterTicks(ticks []domain.Tick, sub *subscription) []domain.Tick {
	if !sub.explicit {
		out := make([]domain.Tick, len(ticks))
		copy(out, ticks)
		return out
	}
	out := make([]domain.Tick, 0, len(sub.symbols))
	for _, tick := range ticks {
		if sub.matches(tick.Symbol) {
			out = append(out, tick)
		}
	}
	return out
}
