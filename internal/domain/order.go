package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType distinguishes limit orders from market orders.
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// OrderSide indicates whether an order buys or sells shares.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the terminal state of an order. Orders are
// executed synchronously against the ledger; a rejected order is
// reported as an error and never produces an Order record.
type OrderStatus string

const (
	OrderStatusExecuted OrderStatus = "executed"
)

// Order is the result of a successfully executed order. Market orders
// execute at the resolved tick price; limit orders execute at the
// requested price after the tolerance check.
type Order struct {
	OrderID        string
	UserID         string
	Type           OrderType
	Side           OrderSide
	Symbol         string
	Quantity       int64
	Status         OrderStatus
	ExecutionPrice decimal.Decimal
	Fee            decimal.Decimal
	RealizedPnL    decimal.Decimal
	ExecutedAt     time.Time
}
