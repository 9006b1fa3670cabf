package domain

import (
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// Position is an open, aggregated holding in one symbol with a single
// blended average cost. AverageCost is recomputed as a weighted mean on
// every buy and is never touched by sells. A position whose quantity
// reaches zero is removed from the portfolio, never kept as a zero row.
type Position struct {
	Symbol      string
	CompanyName string
	Quantity    int64
	AverageCost decimal.Decimal
	LastPrice   decimal.Decimal
	LastPriceAt time.Time
}

// positionLess orders holdings by symbol ascending, making the portfolio's
// holdings an ordered set keyed by symbol.
func positionLess(a, b *Position) bool {
	return a.Symbol < b.Symbol
}

// Portfolio is the authoritative per-user record of cash and positions.
// It is created on first access with a fixed starting cash balance and
// mutated only through the ledger's Buy and Sell operations, serialized
// by the per-portfolio mutex.
type Portfolio struct {
	UserID           string
	CashBalance      decimal.Decimal
	TotalInvested    decimal.Decimal
	TotalRealizedPnL decimal.Decimal
	Holdings         *btree.BTreeG[*Position]
	CreatedAt        time.Time
	Mu               sync.Mutex // serializes all ledger mutations for this user
}

// NewPortfolio creates an empty portfolio with the given starting cash.
func NewPortfolio(userID string, startingCash decimal.Decimal) *Portfolio {
	const degree = 8
	return &Portfolio{
		UserID:      userID,
		CashBalance: startingCash,
		Holdings:    btree.NewG[*Position](degree, positionLess),
		CreatedAt:   time.Now().UTC(),
	}
}

// Position returns the open position for the given symbol, or nil if the
// portfolio holds no shares of it.
func (p *Portfolio) Position(symbol string) *Position {
	pos, ok := p.Holdings.Get(&Position{Symbol: symbol})
	if !ok {
		return nil
	}
	return pos
}

// SetPosition inserts or replaces the position for pos.Symbol.
func (p *Portfolio) SetPosition(pos *Position) {
	p.Holdings.ReplaceOrInsert(pos)
}

// RemovePosition deletes the position for the given symbol, if any.
func (p *Portfolio) RemovePosition(symbol string) {
	p.Holdings.Delete(&Position{Symbol: symbol})
}

// Positions returns all open positions in symbol order.
func (p *Portfolio) Positions() []*Position {
	out := make([]*Position, 0, p.Holdings.Len())
	p.Holdings.Ascend(func(pos *Position) bool {
		out = append(out, pos)
		return true
	})
	return out
}
