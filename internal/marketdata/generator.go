package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/quote"
)

// Sink receives each cycle's tick batch. Implementations must not
// retain or mutate the slice beyond the call.
type Sink interface {
	Publish(ticks []domain.Tick)
}

// symbolState is the mutable per-symbol walk state. Owned exclusively by
// the generator goroutine after seeding; readers only ever see the
// immutable per-cycle snapshot.
type symbolState struct {
	spec   quote.SymbolSpec
	price  float64
	open   float64
	high   float64
	low    float64
	volume int64
	// prevClose is fixed at session start and never updated intraday.
	prevClose float64
}

// Generator is the sole owner of live tick state. On a fixed interval it
// advances every tracked symbol's price with a bounded random walk,
// maintains running high/low/volume, and publishes an immutable snapshot
// of the full board to its sinks.
type Generator struct {
	adapter  *quote.Adapter
	interval time.Duration
	logger   *slog.Logger
	rng      *rand.Rand
	sinks    []Sink

	states map[string]*symbolState

	// latest is the most recent published snapshot. The map and slice
	// are rebuilt every cycle and never mutated after publication, so
	// readers only need the lock for the swap.
	mu     sync.RWMutex
	latest snapshotState
}

// snapshotState is one published cycle: the ordered batch plus a
// by-symbol index.
type snapshotState struct {
	ticks    []domain.Tick
	bySymbol map[string]domain.Tick
}

// NewGenerator creates a generator over the adapter's universe. seed
// fixes the walk's randomness; pass 0 for a time-based seed. Sinks are
// attached with AddSink before Start.
func NewGenerator(adapter *quote.Adapter, interval time.Duration, seed int64, logger *slog.Logger) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		adapter:  adapter,
		interval: interval,
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
		states:   make(map[string]*symbolState),
	}
}

// AddSink attaches a sink. Must be called before Start.
func (g *Generator) AddSink(s Sink) {
	g.sinks = append(g.sinks, s)
}

// Seed initializes every symbol's walk state from the quote adapter and
// publishes the opening snapshot. Open and previous close are fixed here
// for the whole session.
func (g *Generator) Seed(ctx context.Context) error {
	universe := g.adapter.Universe()
	ticks, err := g.adapter.GetPrices(ctx, universe.Symbols())
	if err != nil {
		return fmt.Errorf("seed tick state: %w", err)
	}

	for symbol, tick := range ticks {
		spec, ok := universe.Spec(symbol)
		if !ok {
			continue
		}
		g.states[symbol] = &symbolState{
			spec:      spec,
			price:     tick.Price,
			open:      tick.Price,
			high:      tick.Price,
			low:       tick.Price,
			volume:    tick.Volume,
			prevClose: tick.PreviousClose,
		}
	}

	g.publish(g.buildSnapshot(time.Now().UTC()))
	return nil
}

// Start runs the tick loop until ctx is cancelled. Each cycle advances
// all symbols, publishes the snapshot, and fans it out to the sinks. The
// generator never blocks on a sink: Sink implementations are expected to
// hand off asynchronously.
func (g *Generator) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()

		g.logger.Info("tick generator started",
			slog.Int("symbols", len(g.states)),
			slog.Duration("interval", g.interval),
		)
		for {
			select {
			case <-ctx.Done():
				g.logger.Info("tick generator stopped")
				return
			case now := <-ticker.C:
				g.cycle(now.UTC())
			}
		}
	}()
}

// cycle advances every symbol one step and publishes the new snapshot.
func (g *Generator) cycle(now time.Time) {
	for _, st := range g.states {
		step := (g.rng.Float64()*2 - 1) * st.spec.Volatility
		price := st.price * (1 + step)
		if price < st.spec.MinPrice {
			price = st.spec.MinPrice
		}
		if price > st.spec.MaxPrice {
			price = st.spec.MaxPrice
		}
		st.price = price
		if price > st.high {
			st.high = price
		}
		if price < st.low {
			st.low = price
		}
		st.volume += 1 + g.rng.Int63n(10_000)
	}

	snap := g.buildSnapshot(now)
	g.publish(snap)
	for _, sink := range g.sinks {
		sink.Publish(snap.ticks)
	}
}

// buildSnapshot materializes the current state as an immutable batch.
func (g *Generator) buildSnapshot(now time.Time) snapshotState {
	universe := g.adapter.Universe()
	ticks := make([]domain.Tick, 0, len(g.states))
	bySymbol := make(map[string]domain.Tick, len(g.states))

	for _, symbol := range universe.Symbols() {
		st, ok := g.states[symbol]
		if !ok {
			continue
		}
		change := st.price - st.prevClose
		changePercent := 0.0
		if st.prevClose > 0 {
			changePercent = change / st.prevClose * 100
		}
		tick := domain.Tick{
			Symbol:        symbol,
			Price:         st.price,
			Change:        change,
			ChangePercent: changePercent,
			Volume:        st.volume,
			High:          st.high,
			Low:           st.low,
			Open:          st.open,
			PreviousClose: st.prevClose,
			Timestamp:     now,
		}
		ticks = append(ticks, tick)
		bySymbol[symbol] = tick
	}
	return snapshotState{ticks: ticks, bySymbol: bySymbol}
}

// publish swaps in a new current snapshot.
func (g *Generator) publish(snap snapshotState) {
	g.mu.Lock()
	g.latest = snap
	g.mu.Unlock()
}

// Snapshot returns the latest full tick batch. The returned slice is a
// copy and safe to retain.
func (g *Generator) Snapshot() []domain.Tick {
	g.mu.RLock()
	snap := g.latest
	g.mu.RUnlock()

	out := make([]domain.Tick, len(snap.ticks))
	copy(out, snap.ticks)
	return out
}

// Latest returns the most recent tick for a symbol.
func (g *Generator) Latest(symbol string) (domain.Tick, bool) {
	g.mu.RLock()
	snap := g.latest
	g.mu.RUnlock()

	tick, ok := snap.bySymbol[symbol]
	return tick, ok
}

// GetPrice implements ledger.PriceSource against the live board, falling
// back to the quote adapter for symbols not yet seeded.
func (g *Generator) GetPrice(ctx context.Context, symbol string) (domain.Tick, error) {
	if !g.adapter.Universe().Exists(symbol) {
		return domain.Tick{}, domain.ErrUnknownSymbol
	}
	if tick, ok := g.Latest(symbol); ok {
		return tick, nil
	}
	return g.adapter.GetPrice(ctx, symbol)
}

// GetPrices implements ledger.PriceSource for a symbol set.
func (g *Generator) GetPrices(ctx context.Context, symbols []string) (map[string]domain.Tick, error) {
	out := make(map[string]domain.Tick, len(symbols))
	for _, symbol := range symbols {
		if _, ok := out[symbol]; ok {
			continue
		}
		tick, err := g.GetPrice(ctx, symbol)
		if err != nil {
			return nil, err
		}
		out[symbol] = tick
	}
	return out, nil
}
