package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/daemonX10/papertrade/internal/domain"
)

func appendTrades(s *TradeStore, userID string, n int) {
	base := time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s.Append(userID, &domain.Trade{
			TradeID:    fmt.Sprintf("t-%d", i),
			Side:       domain.TradeSideBuy,
			Symbol:     "RELIANCE",
			Quantity:   1,
			Price:      decimal.NewFromInt(2500),
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestTradeStore_ListByUser(t *testing.T) {
	s := NewTradeStore()
	appendTrades(s, "alice", 5)

	all := s.ListByUser("alice", 0)
	if len(all) != 5 {
		t.Fatalf("got %d trades, want 5", len(all))
	}
	// Most recent first.
	for i, trade := range all {
		want := fmt.Sprintf("t-%d", 4-i)
		if trade.TradeID != want {
			t.Fatalf("trade %d = %s, want %s", i, trade.TradeID, want)
		}
	}

	limited := s.ListByUser("alice", 2)
	if len(limited) != 2 || limited[0].TradeID != "t-4" || limited[1].TradeID != "t-3" {
		t.Fatalf("unexpected limited result: %v", limited)
	}

	// Limit above the log size returns everything.
	if got := s.ListByUser("alice", 50); len(got) != 5 {
		t.Fatalf("got %d trades, want 5", len(got))
	}

	if got := s.ListByUser("nobody", 0); len(got) != 0 {
		t.Fatalf("expected empty log, got %d trades", len(got))
	}
}

func TestTradeStore_Count(t *testing.T) {
	s := NewTradeStore()
	if s.Count("alice") != 0 {
		t.Fatal("count must be 0 before any trades")
	}
	appendTrades(s, "alice", 3)
	appendTrades(s, "bob", 1)

	if got := s.Count("alice"); got != 3 {
		t.Fatalf("alice count = %d, want 3", got)
	}
	if got := s.Count("bob"); got != 1 {
		t.Fatalf("bob count = %d, want 1", got)
	}
}

// The returned slice is a copy; mutating it must not corrupt the log.
func TestTradeStore_ListIsIsolated(t *testing.T) {
	s := NewTradeStore()
	appendTrades(s, "alice", 3)

	list := s.ListByUser("alice", 0)
	list[0] = nil

	again := s.ListByUser("alice", 0)
	if again[0] == nil {
		t.Fatal("mutation of returned slice leaked into the store")
	}
}
