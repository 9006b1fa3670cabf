package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrInsufficientHoldings = errors.New("insufficient_holdings")
	ErrUnknownSymbol        = errors.New("unknown_symbol")
	ErrPriceOutOfTolerance  = errors.New("price_out_of_tolerance")

	// ErrQuoteSourceUnavailable is recovered internally by the quote
	// adapter's synthetic fallback and never surfaces to callers for a
	// known symbol.
	ErrQuoteSourceUnavailable = errors.New("quote_source_unavailable")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
