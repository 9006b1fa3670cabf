// Package ledger implements the per-user position ledger: cash balance,
// open positions with blended average cost, realized P&L, and the
// append-only trade log. Buy and Sell are atomic per portfolio — a
// failed operation leaves the ledger untouched — and serialized by the
// portfolio's mutex, so concurrent orders for the same user never
// interleave their read-modify-write.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/store"
)

// PriceSource resolves current ticks for valuation and execution. Both
// the quote adapter and the live tick generator satisfy it.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (domain.Tick, error)
	GetPrices(ctx context.Context, symbols []string) (map[string]domain.Tick, error)
}

// Execution carries one priced, validated order into the ledger. The
// execution service resolves Price and Fee before calling Buy or Sell.
type Execution struct {
	OrderID     string
	UserID      string
	Symbol      string
	CompanyName string
	Quantity    int64
	Price       decimal.Decimal
	Fee         decimal.Decimal
}

// Ledger owns all portfolio mutations and the trade log.
type Ledger struct {
	portfolios *store.PortfolioStore
	trades     *store.TradeStore
}

// New creates a Ledger over the given stores.
func New(portfolios *store.PortfolioStore, trades *store.TradeStore) *Ledger {
	return &Ledger{
		portfolios: portfolios,
		trades:     trades,
	}
}

// Portfolios returns the underlying portfolio store.
func (l *Ledger) Portfolios() *store.PortfolioStore {
	return l.portfolios
}

// Buy applies a buy execution: debits cash by quantity*price + fee,
// raises total invested by quantity*price, and folds the lot into the
// position's weighted average cost (creating the position if needed).
// Fails with domain.ErrInsufficientFunds if cash cannot cover the total,
// leaving the ledger unchanged.
func (l *Ledger) Buy(ex Execution) (*domain.Trade, error) {
	p := l.portfolios.GetOrCreate(ex.UserID)

	p.Mu.Lock()
	defer p.Mu.Unlock()

	qty := decimal.NewFromInt(ex.Quantity)
	cost := ex.Price.Mul(qty)
	total := cost.Add(ex.Fee)

	if p.CashBalance.LessThan(total) {
		return nil, domain.ErrInsufficientFunds
	}

	p.CashBalance = p.CashBalance.Sub(total)
	p.TotalInvested = p.TotalInvested.Add(cost)

	pos := p.Position(ex.Symbol)
	if pos == nil {
		p.SetPosition(&domain.Position{
			Symbol:      ex.Symbol,
			CompanyName: ex.CompanyName,
			Quantity:    ex.Quantity,
			AverageCost: ex.Price.Round(2),
		})
	} else {
		oldCost := pos.AverageCost.Mul(decimal.NewFromInt(pos.Quantity))
		newQty := pos.Quantity + ex.Quantity
		pos.AverageCost = oldCost.Add(cost).Div(decimal.NewFromInt(newQty)).Round(2)
		pos.Quantity = newQty
		if pos.CompanyName == "" {
			pos.CompanyName = ex.CompanyName
		}
	}

	trade := &domain.Trade{
		TradeID:     uuid.New().String(),
		OrderID:     ex.OrderID,
		Side:        domain.TradeSideBuy,
		Symbol:      ex.Symbol,
		Quantity:    ex.Quantity,
		Price:       ex.Price,
		Fee:         ex.Fee,
		RealizedPnL: decimal.Zero,
		ExecutedAt:  time.Now().UTC(),
	}
	l.trades.Append(ex.UserID, trade)
	return trade, nil
}

// Sell applies a sell execution: credits cash with quantity*price - fee,
// books realized P&L against the position's average cost, and reduces
// the position, removing it entirely at zero quantity. Average cost of
// any remaining shares is unchanged — it is only recomputed on buys.
// Fails with domain.ErrInsufficientHoldings if the position is missing
// or too small, leaving the ledger unchanged.
func (l *Ledger) Sell(ex Execution) (*domain.Trade, error) {
	p := l.portfolios.GetOrCreate(ex.UserID)

	p.Mu.Lock()
	defer p.Mu.Unlock()

	pos := p.Position(ex.Symbol)
	if pos == nil || pos.Quantity < ex.Quantity {
		return nil, domain.ErrInsufficientHoldings
	}

	qty := decimal.NewFromInt(ex.Quantity)
	costBasisSold := pos.AverageCost.Mul(qty)
	saleProceeds := ex.Price.Mul(qty).Sub(ex.Fee)
	realizedPnL := saleProceeds.Sub(costBasisSold)

	p.CashBalance = p.CashBalance.Add(saleProceeds)
	p.TotalRealizedPnL = p.TotalRealizedPnL.Add(realizedPnL)

	if pos.Quantity == ex.Quantity {
		p.RemovePosition(ex.Symbol)
	} else {
		pos.Quantity -= ex.Quantity
	}

	trade := &domain.Trade{
		TradeID:     uuid.New().String(),
		OrderID:     ex.OrderID,
		Side:        domain.TradeSideSell,
		Symbol:      ex.Symbol,
		Quantity:    ex.Quantity,
		Price:       ex.Price,
		Fee:         ex.Fee,
		RealizedPnL: realizedPnL,
		ExecutedAt:  time.Now().UTC(),
	}
	l.trades.Append(ex.UserID, trade)
	return trade, nil
}
