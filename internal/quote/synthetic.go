package quote

import (
	"math"
	"math/rand"
	"time"

	"github.com/daemonX10/papertrade/internal/domain"
)

// syntheticTick generates a realistic tick for a symbol from its
// configured price range and volatility. Used whenever the external
// source is unavailable or not configured. The rng is owned by the
// caller; passing a seeded rng makes the output deterministic.
func syntheticTick(spec SymbolSpec, rng *rand.Rand, now time.Time) domain.Tick {
	price := walkPrice(spec, spec.BasePrice, rng)

	// Previous close is a second draw around the base, so change and
	// change_percent look like a real session.
	prevClose := walkPrice(spec, spec.BasePrice, rng)
	open := clampPrice(spec, prevClose*(1+jitter(rng, spec.Volatility/2)))

	high := math.Max(price, open) * (1 + rng.Float64()*spec.Volatility/2)
	low := math.Min(price, open) * (1 - rng.Float64()*spec.Volatility/2)

	change := price - prevClose
	changePercent := 0.0
	if prevClose > 0 {
		changePercent = change / prevClose * 100
	}

	return domain.Tick{
		Symbol:        spec.Symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        100_000 + rng.Int63n(900_000),
		High:          high,
		Low:           low,
		Open:          open,
		PreviousClose: prevClose,
		Timestamp:     now,
	}
}

// walkPrice draws a price one bounded volatility step away from from,
// clamped into the symbol's configured range.
func walkPrice(spec SymbolSpec, from float64, rng *rand.Rand) float64 {
	return clampPrice(spec, from*(1+jitter(rng, spec.Volatility)))
}

// jitter draws a uniform value in (-volatility, +volatility).
func jitter(rng *rand.Rand, volatility float64) float64 {
	return (rng.Float64()*2 - 1) * volatility
}

func clampPrice(spec SymbolSpec, price float64) float64 {
	if price < spec.MinPrice {
		return spec.MinPrice
	}
	if price > spec.MaxPrice {
		return spec.MaxPrice
	}
	return price
}
