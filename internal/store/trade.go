package store

import (
	"sync"

	"github.com/daemonX10/papertrade/internal/domain"
)

// TradeStore is a thread-safe in-memory store for the append-only trade
// log, keyed by user ID. Trades are stored in execution order and never
// mutated after append.
type TradeStore struct {
	mu     sync.RWMutex
	trades map[string][]*domain.Trade // user ID → trades (chronological)
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		trades: make(map[string][]*domain.Trade),
	}
}

// Append adds a trade to the user's chronological trade log.
func (s *TradeStore) Append(userID string, t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[userID] = append(s.trades[userID], t)
}

// ListByUser returns up to limit trades for a user, most recent first.
// A limit <= 0 returns all trades. The returned slice is a copy so
// callers cannot mutate the internal log.
func (s *TradeStore) ListByUser(userID string, limit int) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.trades[userID]
	n := len(trades)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]*domain.Trade, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, trades[i])
	}
	return result
}

// Count returns the number of trades recorded for a user.
func (s *TradeStore) Count(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.trades[userID])
}
