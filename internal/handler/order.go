package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// placeOrderRequest is the JSON request body for POST /orders.
type placeOrderRequest struct {
	UserID   string   `json:"user_id"`
	Symbol   string   `json:"symbol"`
	Side     string   `json:"side"`
	Type     string   `json:"type"`
	Quantity int64    `json:"quantity"`
	Price    *float64 `json:"price"`
}

// orderResponse is the JSON response for an executed order.
type orderResponse struct {
	OrderID        string  `json:"order_id"`
	UserID         string  `json:"user_id"`
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Type           string  `json:"type"`
	Quantity       int64   `json:"quantity"`
	Status         string  `json:"status"`
	ExecutionPrice float64 `json:"execution_price"`
	Fee            float64 `json:"fee"`
	RealizedPnL    float64 `json:"realized_pnl"`
	ExecutedAt     string  `json:"executed_at"`
}

// PlaceOrder handles POST /orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		UserID:   req.UserID,
		Symbol:   req.Symbol,
		Side:     domain.OrderSide(req.Side),
		Type:     domain.OrderType(req.Type),
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, orderResponse{
		OrderID:        order.OrderID,
		UserID:         order.UserID,
		Symbol:         order.Symbol,
		Side:           string(order.Side),
		Type:           string(order.Type),
		Quantity:       order.Quantity,
		Status:         string(order.Status),
		ExecutionPrice: order.ExecutionPrice.InexactFloat64(),
		Fee:            order.Fee.InexactFloat64(),
		RealizedPnL:    order.RealizedPnL.InexactFloat64(),
		ExecutedAt:     order.ExecutedAt.UTC().Format(time.RFC3339),
	})
}

// mapOrderError maps domain errors to HTTP responses for order
// endpoints. Rejections that leave the ledger unchanged map to 409.
func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnknownSymbol):
		WriteError(w, http.StatusNotFound, "unknown_symbol", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, domain.ErrInsufficientHoldings):
		WriteError(w, http.StatusConflict, "insufficient_holdings", err.Error())
	case errors.Is(err, domain.ErrPriceOutOfTolerance):
		WriteError(w, http.StatusConflict, "price_out_of_tolerance", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
