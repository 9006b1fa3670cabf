package marketdata

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the allowed time for a single write to complete.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead; pings are sent at pingPeriod to keep it alive.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxCommandSize = 4096

	// sendBuffer is the per-client queue of outbound messages. A client
	// that falls this far behind is dropped by the hub.
	sendBuffer = 16
)

// command is the inbound control frame consumers send to manage their
// subscription set.
type command struct {
	Action  string   `json:"action"` // "subscribe" or "unsubscribe"
	Symbols []string `json:"symbols"`
}

// Client is one streaming consumer connection. The hub owns its
// membership and subscription set; the client owns the two pumps that
// move frames between the hub and the websocket.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	logger *slog.Logger
}

// NewClient wraps an upgraded websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		logger: logger,
	}
}

// ReadPump consumes subscribe/unsubscribe commands until the connection
// closes, then unregisters the client. Runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxCommandSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("stream read error", slog.String("error", err.Error()))
			}
			return
		}

		switch cmd.Action {
		case "subscribe":
			c.hub.Subscribe(c, cmd.Symbols)
		case "unsubscribe":
			c.hub.Unsubscribe(c, cmd.Symbols)
		default:
			c.logger.Debug("ignoring unknown stream command", slog.String("action", cmd.Action))
		}
	}
}

// WritePump forwards hub messages to the connection and keeps it alive
// with pings. Runs in its own goroutine; exits when the hub closes the
// send channel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Hub dropped the client.
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.logger.Debug("stream write error", slog.String("error", err.Error()))
				}
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
