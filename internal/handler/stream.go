package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/daemonX10/papertrade/internal/marketdata"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The simulator serves browser clients from any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler upgrades GET /stream requests into hub consumers.
type StreamHandler struct {
	hub    *marketdata.Hub
	logger *slog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *marketdata.Hub, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, logger: logger}
}

// Serve handles GET /stream. An optional ?symbols=TCS,INFY query sets
// the initial subscription; further changes arrive as subscribe and
// unsubscribe commands over the socket.
func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := marketdata.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	if raw := r.URL.Query().Get("symbols"); raw != "" {
		symbols := make([]string, 0)
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
		if len(symbols) > 0 {
			h.hub.Subscribe(client, symbols)
		}
	}

	go client.WritePump()
	go client.ReadPump()
}
