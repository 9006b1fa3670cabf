package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ParseMoney converts a float64 monetary amount from an API request into
// a decimal. It validates that the input has at most 2 decimal places and
// returns an error if more precision is provided. Scaling is rounded
// first to handle floating-point representation issues (e.g., 1.10 *
// 1000 = 1099.9999...).
func ParseMoney(f float64) (decimal.Decimal, error) {
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return decimal.Zero, fmt.Errorf("monetary values must have at most 2 decimal places")
	}
	return decimal.NewFromFloat(f).Round(2), nil
}

// PriceFromFloat converts a tick price from the float64 market-data plane
// into a decimal execution price, rounded to cents. Tick prices carry
// random-walk precision; the ledger only ever books 2-decimal amounts.
func PriceFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
