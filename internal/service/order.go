package service

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/ledger"
	"github.com/daemonX10/papertrade/internal/quote"
)

var (
	userIDRegex      = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	orderSymbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)
)

// PlaceOrderRequest represents the input for order submission.
type PlaceOrderRequest struct {
	UserID   string
	Symbol   string
	Side     domain.OrderSide
	Type     domain.OrderType
	Quantity int64
	Price    *float64 // required for limit, must be nil for market
}

// OrderService validates incoming orders, resolves an execution price,
// and applies accepted orders atomically to the ledger. A rejected
// order never touches the ledger: exactly one trade is appended on
// success and zero on rejection.
type OrderService struct {
	ledger    *ledger.Ledger
	prices    ledger.PriceSource
	universe  *quote.Universe
	fee       decimal.Decimal
	tolerance decimal.Decimal // limit price band as a fraction, e.g. 0.05
}

// NewOrderService creates an OrderService. fee is the fixed per-order
// fee; tolerance is the limit-order band around the market price.
func NewOrderService(
	l *ledger.Ledger,
	prices ledger.PriceSource,
	universe *quote.Universe,
	fee decimal.Decimal,
	tolerance decimal.Decimal,
) *OrderService {
	return &OrderService{
		ledger:    l,
		prices:    prices,
		universe:  universe,
		fee:       fee,
		tolerance: tolerance,
	}
}

// PlaceOrder validates the request, resolves the execution price, and
// applies the order to the user's ledger. Market orders execute at the
// current tick price. Limit orders execute at the requested price only
// if it is within the tolerance band of the market price for the given
// side; otherwise the order is rejected with
// domain.ErrPriceOutOfTolerance before the ledger is touched.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if !s.universe.Exists(req.Symbol) {
		return nil, domain.ErrUnknownSymbol
	}

	tick, err := s.prices.GetPrice(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	marketPrice := domain.PriceFromFloat(tick.Price)

	execPrice, err := s.resolvePrice(req, marketPrice)
	if err != nil {
		return nil, err
	}

	companyName := req.Symbol
	if spec, ok := s.universe.Spec(req.Symbol); ok {
		companyName = spec.CompanyName
	}

	ex := ledger.Execution{
		OrderID:     uuid.New().String(),
		UserID:      req.UserID,
		Symbol:      req.Symbol,
		CompanyName: companyName,
		Quantity:    req.Quantity,
		Price:       execPrice,
		Fee:         s.fee,
	}

	var trade *domain.Trade
	if req.Side == domain.OrderSideBuy {
		trade, err = s.ledger.Buy(ex)
	} else {
		trade, err = s.ledger.Sell(ex)
	}
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		OrderID:        ex.OrderID,
		UserID:         req.UserID,
		Type:           req.Type,
		Side:           req.Side,
		Symbol:         req.Symbol,
		Quantity:       req.Quantity,
		Status:         domain.OrderStatusExecuted,
		ExecutionPrice: execPrice,
		Fee:            s.fee,
		RealizedPnL:    trade.RealizedPnL,
		ExecutedAt:     trade.ExecutedAt,
	}, nil
}

// validate checks the order's fields before any price resolution.
func (s *OrderService) validate(req PlaceOrderRequest) error {
	if req.Type != domain.OrderTypeLimit && req.Type != domain.OrderTypeMarket {
		return &domain.ValidationError{
			Message: "type must be 'limit' or 'market'",
		}
	}
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return &domain.ValidationError{
			Message: "side must be 'buy' or 'sell'",
		}
	}
	if !userIDRegex.MatchString(req.UserID) {
		return &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if !orderSymbolRegex.MatchString(req.Symbol) {
		return &domain.ValidationError{
			Message: "symbol must match ^[A-Z]{1,10}$",
		}
	}
	if req.Quantity <= 0 {
		return &domain.ValidationError{
			Message: "quantity must be a positive integer",
		}
	}
	if req.Type == domain.OrderTypeMarket && req.Price != nil {
		return &domain.ValidationError{
			Message: "market orders must not include price",
		}
	}
	if req.Type == domain.OrderTypeLimit && req.Price == nil {
		return &domain.ValidationError{
			Message: "price is required for limit orders",
		}
	}
	return nil
}

// resolvePrice returns the execution price for the order: the market
// price for market orders, or the requested limit price after the
// tolerance check.
func (s *OrderService) resolvePrice(req PlaceOrderRequest, marketPrice decimal.Decimal) (decimal.Decimal, error) {
	if req.Type == domain.OrderTypeMarket {
		return marketPrice, nil
	}

	if *req.Price <= 0 {
		return decimal.Zero, &domain.ValidationError{
			Message: "price must be greater than 0",
		}
	}
	limitPrice, err := domain.ParseMoney(*req.Price)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{
			Message: "price must have at most 2 decimal places",
		}
	}

	one := decimal.NewFromInt(1)
	switch req.Side {
	case domain.OrderSideBuy:
		ceiling := marketPrice.Mul(one.Add(s.tolerance))
		if limitPrice.GreaterThan(ceiling) {
			return decimal.Zero, domain.ErrPriceOutOfTolerance
		}
	case domain.OrderSideSell:
		floor := marketPrice.Mul(one.Sub(s.tolerance))
		if limitPrice.LessThan(floor) {
			return decimal.Zero, domain.ErrPriceOutOfTolerance
		}
	}
	return limitPrice, nil
}
