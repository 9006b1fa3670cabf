package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/ledger"
	"github.com/daemonX10/papertrade/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
type PortfolioHandler struct {
	portfolioSvc *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioSvc *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioSvc: portfolioSvc}
}

// holdingResponse is a single valued position in the portfolio response.
type holdingResponse struct {
	Symbol               string  `json:"symbol"`
	CompanyName          string  `json:"company_name"`
	Quantity             int64   `json:"quantity"`
	AverageCost          float64 `json:"average_cost"`
	LastPrice            float64 `json:"last_price"`
	CurrentValue         float64 `json:"current_value"`
	UnrealizedPnL        float64 `json:"unrealized_pnl"`
	UnrealizedPnLPercent float64 `json:"unrealized_pnl_percent"`
}

// portfolioResponse is the JSON response for GET /portfolios/{user_id}.
type portfolioResponse struct {
	UserID             string            `json:"user_id"`
	CashBalance        float64           `json:"cash_balance"`
	TotalInvested      float64           `json:"total_invested"`
	TotalRealizedPnL   float64           `json:"total_realized_pnl"`
	TotalUnrealizedPnL float64           `json:"total_unrealized_pnl"`
	TotalValue         float64           `json:"total_value"`
	TotalPnL           float64           `json:"total_pnl"`
	TotalPnLPercent    float64           `json:"total_pnl_percent"`
	Holdings           []holdingResponse `json:"holdings"`
}

// tradeResponse is a single trade in the history response.
type tradeResponse struct {
	TradeID     string  `json:"trade_id"`
	OrderID     string  `json:"order_id"`
	Side        string  `json:"side"`
	Symbol      string  `json:"symbol"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	Fee         float64 `json:"fee"`
	RealizedPnL float64 `json:"realized_pnl"`
	ExecutedAt  string  `json:"executed_at"`
}

// GetPortfolio handles GET /portfolios/{user_id}.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	snap, err := h.portfolioSvc.GetPortfolio(r.Context(), userID)
	if err != nil {
		mapPortfolioError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildPortfolioResponse(snap))
}

// GetTradeHistory handles GET /portfolios/{user_id}/trades?limit=N.
func (h *PortfolioHandler) GetTradeHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = v
	}

	trades, err := h.portfolioSvc.GetTradeHistory(userID, limit)
	if err != nil {
		mapPortfolioError(w, err)
		return
	}

	result := make([]tradeResponse, len(trades))
	for i, t := range trades {
		result[i] = tradeResponse{
			TradeID:     t.TradeID,
			OrderID:     t.OrderID,
			Side:        string(t.Side),
			Symbol:      t.Symbol,
			Quantity:    t.Quantity,
			Price:       t.Price.InexactFloat64(),
			Fee:         t.Fee.InexactFloat64(),
			RealizedPnL: t.RealizedPnL.InexactFloat64(),
			ExecutedAt:  t.ExecutedAt.UTC().Format(time.RFC3339),
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"trades":  result,
	})
}

// buildPortfolioResponse converts a ledger snapshot to the response DTO.
func buildPortfolioResponse(snap *ledger.Snapshot) portfolioResponse {
	holdings := make([]holdingResponse, len(snap.Holdings))
	for i, hv := range snap.Holdings {
		holdings[i] = holdingResponse{
			Symbol:               hv.Symbol,
			CompanyName:          hv.CompanyName,
			Quantity:             hv.Quantity,
			AverageCost:          hv.AverageCost.InexactFloat64(),
			LastPrice:            hv.LastPrice.InexactFloat64(),
			CurrentValue:         hv.CurrentValue.InexactFloat64(),
			UnrealizedPnL:        hv.UnrealizedPnL.InexactFloat64(),
			UnrealizedPnLPercent: hv.UnrealizedPnLPercent.InexactFloat64(),
		}
	}

	return portfolioResponse{
		UserID:             snap.UserID,
		CashBalance:        snap.CashBalance.InexactFloat64(),
		TotalInvested:      snap.TotalInvested.InexactFloat64(),
		TotalRealizedPnL:   snap.TotalRealizedPnL.InexactFloat64(),
		TotalUnrealizedPnL: snap.TotalUnrealizedPnL.InexactFloat64(),
		TotalValue:         snap.TotalValue.InexactFloat64(),
		TotalPnL:           snap.TotalPnL.InexactFloat64(),
		TotalPnLPercent:    snap.TotalPnLPercent.InexactFloat64(),
		Holdings:           holdings,
	}
}

// mapPortfolioError maps domain errors to HTTP responses for portfolio
// endpoints.
func mapPortfolioError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnknownSymbol):
		WriteError(w, http.StatusNotFound, "unknown_symbol", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
