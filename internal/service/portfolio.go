package service

import (
	"context"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/ledger"
	"github.com/daemonX10/papertrade/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// PortfolioService serves the read side: portfolio valuations and trade
// history.
type PortfolioService struct {
	ledger *ledger.Ledger
	trades *store.TradeStore
	prices ledger.PriceSource
}

// NewPortfolioService creates a PortfolioService.
func NewPortfolioService(l *ledger.Ledger, trades *store.TradeStore, prices ledger.PriceSource) *PortfolioService {
	return &PortfolioService{
		ledger: l,
		trades: trades,
		prices: prices,
	}
}

// GetPortfolio returns the user's portfolio valued at the latest ticks.
// A user who has never traded gets a fresh portfolio with the starting
// cash balance.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID string) (*ledger.Snapshot, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	return s.ledger.Valuation(ctx, userID, s.prices)
}

// GetTradeHistory returns up to limit trades for the user, most recent
// first. limit defaults to 50 and is capped at 100.
func (s *PortfolioService) GetTradeHistory(userID string, limit int) ([]*domain.Trade, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if limit < 0 {
		return nil, &domain.ValidationError{
			Message: "limit must be a positive integer",
		}
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.trades.ListByUser(userID, limit), nil
}
