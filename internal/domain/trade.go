package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide indicates whether a trade bought or sold shares.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Trade represents one executed order applied to a portfolio. Trades are
// append-only: once written to the trade log they are never mutated.
// RealizedPnL is always zero for BUY trades.
type Trade struct {
	TradeID     string
	OrderID     string
	Side        TradeSide
	Symbol      string
	Quantity    int64
	Price       decimal.Decimal
	Fee         decimal.Decimal
	RealizedPnL decimal.Decimal
	ExecutedAt  time.Time
}
