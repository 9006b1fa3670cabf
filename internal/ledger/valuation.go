package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/daemonX10/papertrade/internal/domain"
)

// HoldingValue is one position valued at the latest tick.
type HoldingValue struct {
	Symbol               string
	CompanyName          string
	Quantity             int64
	AverageCost          decimal.Decimal
	LastPrice            decimal.Decimal
	CurrentValue         decimal.Decimal
	UnrealizedPnL        decimal.Decimal
	UnrealizedPnLPercent decimal.Decimal
}

// Snapshot is a read-only valuation of a portfolio at the latest ticks.
type Snapshot struct {
	UserID             string
	CashBalance        decimal.Decimal
	TotalInvested      decimal.Decimal
	TotalRealizedPnL   decimal.Decimal
	TotalUnrealizedPnL decimal.Decimal
	TotalValue         decimal.Decimal
	TotalPnL           decimal.Decimal
	TotalPnLPercent    decimal.Decimal
	Holdings           []HoldingValue
}

var hundred = decimal.NewFromInt(100)

// Valuation computes the portfolio's current value and P&L from the
// latest ticks. It is idempotent: the only side effect is refreshing
// each position's cached last price. Prices are fetched outside the
// portfolio lock so a slow quote source never blocks order execution.
func (l *Ledger) Valuation(ctx context.Context, userID string, prices PriceSource) (*Snapshot, error) {
	p := l.portfolios.GetOrCreate(userID)

	p.Mu.Lock()
	positions := p.Positions()
	p.Mu.Unlock()

	symbols := make([]string, len(positions))
	for i, pos := range positions {
		symbols[i] = pos.Symbol
	}
	ticks, err := prices.GetPrices(ctx, symbols)
	if err != nil {
		return nil, err
	}

	p.Mu.Lock()
	defer p.Mu.Unlock()

	snap := &Snapshot{
		UserID:           p.UserID,
		CashBalance:      p.CashBalance,
		TotalInvested:    p.TotalInvested,
		TotalRealizedPnL: p.TotalRealizedPnL,
		Holdings:         make([]HoldingValue, 0, len(positions)),
	}

	sumValue := decimal.Zero
	sumUnrealized := decimal.Zero

	// Holdings may have changed between the two lock acquisitions; value
	// whatever is open now and fall back to the cached or average price
	// for any symbol the fetch did not cover.
	for _, pos := range p.Positions() {
		last := pos.AverageCost
		if !pos.LastPrice.IsZero() {
			last = pos.LastPrice
		}
		if tick, ok := ticks[pos.Symbol]; ok {
			last = domain.PriceFromFloat(tick.Price)
			pos.LastPrice = last
			pos.LastPriceAt = tick.Timestamp
		}

		qty := decimal.NewFromInt(pos.Quantity)
		costBasis := pos.AverageCost.Mul(qty)
		currentValue := last.Mul(qty)
		unrealized := currentValue.Sub(costBasis)

		unrealizedPct := decimal.Zero
		if !costBasis.IsZero() {
			unrealizedPct = unrealized.Div(costBasis).Mul(hundred).Round(2)
		}

		snap.Holdings = append(snap.Holdings, HoldingValue{
			Symbol:               pos.Symbol,
			CompanyName:          pos.CompanyName,
			Quantity:             pos.Quantity,
			AverageCost:          pos.AverageCost,
			LastPrice:            last,
			CurrentValue:         currentValue,
			UnrealizedPnL:        unrealized,
			UnrealizedPnLPercent: unrealizedPct,
		})

		sumValue = sumValue.Add(currentValue)
		sumUnrealized = sumUnrealized.Add(unrealized)
	}

	snap.TotalUnrealizedPnL = sumUnrealized
	snap.TotalValue = p.CashBalance.Add(sumValue)
	snap.TotalPnL = p.TotalRealizedPnL.Add(sumUnrealized)
	if !p.TotalInvested.IsZero() {
		snap.TotalPnLPercent = snap.TotalPnL.Div(p.TotalInvested).Mul(hundred).Round(2)
	}
	return snap, nil
}
