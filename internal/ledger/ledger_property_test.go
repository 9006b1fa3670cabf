package ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/store"
)

// replayTradeLog reconstructs the open position for one symbol by
// replaying the chronological trade log with the same blended-lot
// rules the ledger applies: weighted-mean average cost on buys, rounded
// to cents, untouched by sells.
func replayTradeLog(trades []*domain.Trade, symbol string) (int64, decimal.Decimal) {
	var qty int64
	avg := decimal.Zero
	for _, t := range trades {
		if t.Symbol != symbol {
			continue
		}
		switch t.Side {
		case domain.TradeSideBuy:
			newQty := qty + t.Quantity
			cost := avg.Mul(decimal.NewFromInt(qty)).Add(t.Price.Mul(decimal.NewFromInt(t.Quantity)))
			avg = cost.Div(decimal.NewFromInt(newQty)).Round(2)
			qty = newQty
		case domain.TradeSideSell:
			qty -= t.Quantity
			if qty == 0 {
				avg = decimal.Zero
			}
		}
	}
	return qty, avg
}

// chronological reverses the store's most-recent-first listing.
func chronological(trades []*domain.Trade) []*domain.Trade {
	out := make([]*domain.Trade, len(trades))
	for i, t := range trades {
		out[len(trades)-1-i] = t
	}
	return out
}

// TestProperty_LedgerInvariants drives a random sequence of buys and
// sells through one portfolio and checks, after every operation:
//
//   - cashBalance == startingCash - Σ(buy cost+fee) + Σ(sell proceeds-fee)
//   - each position's quantity and average cost match a from-scratch
//     replay of the trade log
//   - totalInvested never decreases and no quantity goes negative
//   - failed operations leave the ledger unchanged
func TestProperty_LedgerInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		startingCash := decimal.NewFromInt(int64(rapid.IntRange(10_000, 1_000_000).Draw(t, "startingCash")))
		symbols := []string{"RELIANCE", "TCS", "INFY"}

		ps := store.NewPortfolioStore(startingCash)
		ts := store.NewTradeStore()
		l := New(ps, ts)

		expectedCash := startingCash
		prevInvested := decimal.Zero

		numOps := rapid.IntRange(1, 40).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			symbol := rapid.SampledFrom(symbols).Draw(t, fmt.Sprintf("symbol-%d", i))
			qty := int64(rapid.IntRange(1, 50).Draw(t, fmt.Sprintf("qty-%d", i)))
			price := decimal.NewFromInt(int64(rapid.IntRange(1, 5000).Draw(t, fmt.Sprintf("price-%d", i))))
			fee := decimal.NewFromInt(int64(rapid.IntRange(0, 50).Draw(t, fmt.Sprintf("fee-%d", i))))
			isBuy := rapid.Bool().Draw(t, fmt.Sprintf("isBuy-%d", i))

			ex := Execution{
				OrderID:  fmt.Sprintf("o-%d", i),
				UserID:   "u1",
				Symbol:   symbol,
				Quantity: qty,
				Price:    price,
				Fee:      fee,
			}

			p := ps.GetOrCreate("u1")
			cashBefore := p.CashBalance
			tradesBefore := ts.Count("u1")

			var err error
			if isBuy {
				_, err = l.Buy(ex)
				if err == nil {
					expectedCash = expectedCash.Sub(price.Mul(decimal.NewFromInt(qty))).Sub(fee)
				}
			} else {
				_, err = l.Sell(ex)
				if err == nil {
					expectedCash = expectedCash.Add(price.Mul(decimal.NewFromInt(qty))).Sub(fee)
				}
			}

			if err != nil {
				// Rejected operations must leave the ledger unchanged.
				if !p.CashBalance.Equal(cashBefore) {
					t.Fatalf("op %d: rejected op changed cash: %s -> %s", i, cashBefore, p.CashBalance)
				}
				if ts.Count("u1") != tradesBefore {
					t.Fatalf("op %d: rejected op appended a trade", i)
				}
			} else if ts.Count("u1") != tradesBefore+1 {
				t.Fatalf("op %d: successful op must append exactly one trade", i)
			}

			// Cash conservation.
			if !p.CashBalance.Equal(expectedCash) {
				t.Fatalf("op %d: cash = %s, want %s", i, p.CashBalance, expectedCash)
			}
			if p.CashBalance.IsNegative() {
				t.Fatalf("op %d: cash went negative: %s", i, p.CashBalance)
			}

			// totalInvested is monotonic.
			if p.TotalInvested.LessThan(prevInvested) {
				t.Fatalf("op %d: totalInvested decreased: %s -> %s", i, prevInvested, p.TotalInvested)
			}
			prevInvested = p.TotalInvested

			// Every open position must match the trade-log replay.
			log := chronological(ts.ListByUser("u1", 0))
			for _, s := range symbols {
				replayQty, replayAvg := replayTradeLog(log, s)
				pos := p.Position(s)
				if replayQty == 0 {
					if pos != nil {
						t.Fatalf("op %d: %s should have no position, got qty %d", i, s, pos.Quantity)
					}
					continue
				}
				if pos == nil {
					t.Fatalf("op %d: %s missing position, replay says qty %d", i, s, replayQty)
				}
				if pos.Quantity != replayQty {
					t.Fatalf("op %d: %s qty = %d, replay says %d", i, s, pos.Quantity, replayQty)
				}
				if pos.Quantity < 0 {
					t.Fatalf("op %d: %s quantity negative", i, s)
				}
				if !pos.AverageCost.Equal(replayAvg) {
					t.Fatalf("op %d: %s avgCost = %s, replay says %s", i, s, pos.AverageCost, replayAvg)
				}
			}
		}
	})
}
