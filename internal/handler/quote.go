package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/marketdata"
)

// QuoteHandler serves the latest tick for one symbol and the full board
// snapshot, both read from the generator's current cycle.
type QuoteHandler struct {
	generator *marketdata.Generator
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(generator *marketdata.Generator) *QuoteHandler {
	return &QuoteHandler{generator: generator}
}

// GetQuote handles GET /quotes/{symbol}.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	tick, err := h.generator.GetPrice(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownSymbol) {
			WriteError(w, http.StatusNotFound, "unknown_symbol", err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	WriteJSON(w, http.StatusOK, tick)
}

// GetBoard handles GET /quotes: the latest tick for every tracked
// symbol.
func (h *QuoteHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"ticks": h.generator.Snapshot(),
	})
}
