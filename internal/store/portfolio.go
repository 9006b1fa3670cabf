package store

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/daemonX10/papertrade/internal/domain"
)

// PortfolioStore is a thread-safe in-memory store for portfolios, keyed
// by user ID. Portfolios are created on first access with the configured
// starting cash balance and live for the lifetime of the process.
type PortfolioStore struct {
	mu           sync.RWMutex
	portfolios   map[string]*domain.Portfolio
	startingCash decimal.Decimal
}

// NewPortfolioStore creates an empty PortfolioStore. Every portfolio the
// store creates starts with startingCash available.
func NewPortfolioStore(startingCash decimal.Decimal) *PortfolioStore {
	return &PortfolioStore{
		portfolios:   make(map[string]*domain.Portfolio),
		startingCash: startingCash,
	}
}

// GetOrCreate returns the portfolio for userID, creating it with the
// starting cash balance if it does not exist yet.
func (s *PortfolioStore) GetOrCreate(userID string) *domain.Portfolio {
	s.mu.RLock()
	p, ok := s.portfolios[userID]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the write lock: another goroutine may have created
	// the portfolio between the two lock acquisitions.
	if p, ok := s.portfolios[userID]; ok {
		return p
	}
	p = domain.NewPortfolio(userID, s.startingCash)
	s.portfolios[userID] = p
	return p
}

// Get returns the portfolio for userID without creating one.
func (s *PortfolioStore) Get(userID string) (*domain.Portfolio, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.portfolios[userID]
	return p, ok
}
