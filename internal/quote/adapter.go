package quote

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/daemonX10/papertrade/internal/domain"
)

// Adapter normalizes price lookups for tracked symbols. It attempts the
// external source with a bounded timeout and falls back to a synthetic
// tick on any failure, so callers never observe an error for a known
// symbol. Unknown symbols fail with domain.ErrUnknownSymbol.
type Adapter struct {
	universe *Universe
	source   Source // nil = synthetic only
	timeout  time.Duration
	logger   *slog.Logger

	mu  sync.Mutex // guards rng, which is not safe for concurrent use
	rng *rand.Rand
}

// NewAdapter creates an Adapter over the given universe. source may be
// nil, in which case every quote is synthetic. seed fixes the synthetic
// randomness; pass 0 for a time-based seed.
func NewAdapter(universe *Universe, source Source, timeout time.Duration, seed int64, logger *slog.Logger) *Adapter {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Adapter{
		universe: universe,
		source:   source,
		timeout:  timeout,
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Universe returns the adapter's symbol universe.
func (a *Adapter) Universe() *Universe {
	return a.universe
}

// GetPrice returns the current tick for a tracked symbol. The external
// lookup is bounded by the adapter's timeout; on failure the result is a
// synthetic tick from the symbol's configured range.
func (a *Adapter) GetPrice(ctx context.Context, symbol string) (domain.Tick, error) {
	spec, ok := a.universe.Spec(symbol)
	if !ok {
		return domain.Tick{}, domain.ErrUnknownSymbol
	}

	if a.source != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
		tick, err := a.source.FetchQuote(fetchCtx, symbol)
		cancel()
		if err == nil {
			return tick, nil
		}
		a.logger.Debug("quote source unavailable, falling back to synthetic",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
	}

	a.mu.Lock()
	tick := syntheticTick(spec, a.rng, time.Now().UTC())
	a.mu.Unlock()
	return tick, nil
}

// GetPrices returns current ticks for the given symbols. It fails with
// domain.ErrUnknownSymbol if any symbol is not tracked; individual
// source failures are recovered per symbol.
func (a *Adapter) GetPrices(ctx context.Context, symbols []string) (map[string]domain.Tick, error) {
	out := make(map[string]domain.Tick, len(symbols))
	for _, symbol := range symbols {
		if _, ok := out[symbol]; ok {
			continue
		}
		tick, err := a.GetPrice(ctx, symbol)
		if err != nil {
			return nil, err
		}
		out[symbol] = tick
	}
	return out, nil
}
