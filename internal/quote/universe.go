package quote

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var universeSymbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// SymbolSpec describes one tracked symbol: its display name and the
// realistic price range and volatility used for synthetic ticks and the
// generator's random walk.
type SymbolSpec struct {
	Symbol      string  `yaml:"symbol"`
	CompanyName string  `yaml:"company_name"`
	BasePrice   float64 `yaml:"base_price"`
	MinPrice    float64 `yaml:"min_price"`
	MaxPrice    float64 `yaml:"max_price"`
	Volatility  float64 `yaml:"volatility"`
}

// Universe is the immutable set of tracked symbols. Symbols outside the
// universe are unknown to the whole system: quotes, orders, and
// subscriptions all reject them.
type Universe struct {
	specs map[string]SymbolSpec
	order []string // symbols in file order
}

// universeFile is the on-disk YAML shape.
type universeFile struct {
	Symbols []SymbolSpec `yaml:"symbols"`
}

// LoadUniverse reads a symbol universe from a YAML file and validates
// every entry.
func LoadUniverse(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	var file universeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse universe file: %w", err)
	}

	return NewUniverse(file.Symbols)
}

// NewUniverse builds a universe from specs, validating each one.
func NewUniverse(specs []SymbolSpec) (*Universe, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("universe has no symbols")
	}

	u := &Universe{
		specs: make(map[string]SymbolSpec, len(specs)),
		order: make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		if !universeSymbolRegex.MatchString(spec.Symbol) {
			return nil, fmt.Errorf("symbol %q must match ^[A-Z]{1,10}$", spec.Symbol)
		}
		if _, dup := u.specs[spec.Symbol]; dup {
			return nil, fmt.Errorf("duplicate symbol %s in universe", spec.Symbol)
		}
		if spec.BasePrice <= 0 {
			return nil, fmt.Errorf("symbol %s: base_price must be > 0", spec.Symbol)
		}
		if spec.MinPrice <= 0 || spec.MaxPrice < spec.MinPrice {
			return nil, fmt.Errorf("symbol %s: price range must satisfy 0 < min_price <= max_price", spec.Symbol)
		}
		if spec.BasePrice < spec.MinPrice || spec.BasePrice > spec.MaxPrice {
			return nil, fmt.Errorf("symbol %s: base_price must be within [min_price, max_price]", spec.Symbol)
		}
		if spec.Volatility <= 0 || spec.Volatility >= 1 {
			return nil, fmt.Errorf("symbol %s: volatility must be in (0, 1)", spec.Symbol)
		}
		u.specs[spec.Symbol] = spec
		u.order = append(u.order, spec.Symbol)
	}
	return u, nil
}

// DefaultUniverse returns the built-in symbol universe used when no
// universe file is configured.
func DefaultUniverse() *Universe {
	u, err := NewUniverse([]SymbolSpec{
		{Symbol: "RELIANCE", CompanyName: "Reliance Industries Ltd", BasePrice: 2500, MinPrice: 2000, MaxPrice: 3000, Volatility: 0.02},
		{Symbol: "TCS", CompanyName: "Tata Consultancy Services Ltd", BasePrice: 3500, MinPrice: 3000, MaxPrice: 4200, Volatility: 0.015},
		{Symbol: "HDFCBANK", CompanyName: "HDFC Bank Ltd", BasePrice: 1600, MinPrice: 1300, MaxPrice: 1900, Volatility: 0.015},
		{Symbol: "INFY", CompanyName: "Infosys Ltd", BasePrice: 1450, MinPrice: 1200, MaxPrice: 1800, Volatility: 0.02},
		{Symbol: "ICICIBANK", CompanyName: "ICICI Bank Ltd", BasePrice: 950, MinPrice: 800, MaxPrice: 1150, Volatility: 0.015},
		{Symbol: "SBIN", CompanyName: "State Bank of India", BasePrice: 600, MinPrice: 480, MaxPrice: 750, Volatility: 0.025},
		{Symbol: "BHARTIARTL", CompanyName: "Bharti Airtel Ltd", BasePrice: 900, MinPrice: 750, MaxPrice: 1100, Volatility: 0.02},
		{Symbol: "ITC", CompanyName: "ITC Ltd", BasePrice: 440, MinPrice: 380, MaxPrice: 520, Volatility: 0.015},
		{Symbol: "WIPRO", CompanyName: "Wipro Ltd", BasePrice: 420, MinPrice: 350, MaxPrice: 520, Volatility: 0.02},
		{Symbol: "TATAMOTORS", CompanyName: "Tata Motors Ltd", BasePrice: 650, MinPrice: 500, MaxPrice: 820, Volatility: 0.03},
	})
	if err != nil {
		// The built-in specs are constants; a validation failure here is
		// a programming error.
		panic(err)
	}
	return u
}

// Spec returns the spec for a symbol.
func (u *Universe) Spec(symbol string) (SymbolSpec, bool) {
	spec, ok := u.specs[symbol]
	return spec, ok
}

// Exists returns true if the symbol is tracked.
func (u *Universe) Exists(symbol string) bool {
	_, ok := u.specs[symbol]
	return ok
}

// Symbols returns all tracked symbols in declaration order.
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

// Size returns the number of tracked symbols.
func (u *Universe) Size() int {
	return len(u.specs)
}
