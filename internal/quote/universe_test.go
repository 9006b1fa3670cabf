package quote

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUniverse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	content := `symbols:
  - symbol: ACME
    company_name: Acme Corp
    base_price: 100
    min_price: 80
    max_price: 130
    volatility: 0.02
  - symbol: GLOBEX
    company_name: Globex Corporation
    base_price: 55.5
    min_price: 40
    max_price: 70
    volatility: 0.01
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write universe file: %v", err)
	}

	u, err := LoadUniverse(path)
	if err != nil {
		t.Fatalf("LoadUniverse failed: %v", err)
	}
	if u.Size() != 2 {
		t.Fatalf("size = %d, want 2", u.Size())
	}

	symbols := u.Symbols()
	if symbols[0] != "ACME" || symbols[1] != "GLOBEX" {
		t.Fatalf("symbols out of declaration order: %v", symbols)
	}

	spec, ok := u.Spec("GLOBEX")
	if !ok {
		t.Fatal("GLOBEX missing")
	}
	if spec.CompanyName != "Globex Corporation" || spec.BasePrice != 55.5 {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if u.Exists("ACMEX") {
		t.Fatal("ACMEX must not exist")
	}
}

func TestLoadUniverse_MissingFile(t *testing.T) {
	if _, err := LoadUniverse(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewUniverse_Validation(t *testing.T) {
	valid := SymbolSpec{
		Symbol: "ACME", CompanyName: "Acme Corp",
		BasePrice: 100, MinPrice: 80, MaxPrice: 130, Volatility: 0.02,
	}

	tests := []struct {
		name   string
		mutate func(*SymbolSpec)
	}{
		{"lowercase symbol", func(s *SymbolSpec) { s.Symbol = "acme" }},
		{"symbol too long", func(s *SymbolSpec) { s.Symbol = "ABCDEFGHIJK" }},
		{"empty symbol", func(s *SymbolSpec) { s.Symbol = "" }},
		{"zero base price", func(s *SymbolSpec) { s.BasePrice = 0 }},
		{"inverted range", func(s *SymbolSpec) { s.MinPrice = 130; s.MaxPrice = 80 }},
		{"base below range", func(s *SymbolSpec) { s.BasePrice = 70 }},
		{"base above range", func(s *SymbolSpec) { s.BasePrice = 140 }},
		{"zero volatility", func(s *SymbolSpec) { s.Volatility = 0 }},
		{"volatility too high", func(s *SymbolSpec) { s.Volatility = 1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := valid
			tc.mutate(&spec)
			if _, err := NewUniverse([]SymbolSpec{spec}); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	t.Run("empty universe", func(t *testing.T) {
		if _, err := NewUniverse(nil); err == nil {
			t.Fatal("expected error for empty universe")
		}
	})

	t.Run("duplicate symbol", func(t *testing.T) {
		if _, err := NewUniverse([]SymbolSpec{valid, valid}); err == nil {
			t.Fatal("expected error for duplicate symbol")
		}
	})
}
