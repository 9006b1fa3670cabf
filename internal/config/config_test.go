package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.QuoteBaseURL != "" || cfg.UniversePath != "" {
		t.Fatal("external quote URL and universe path must default to empty")
	}
	if cfg.QuoteTimeout != 3*time.Second {
		t.Fatalf("QuoteTimeout = %s, want 3s", cfg.QuoteTimeout)
	}
	if cfg.TickInterval != 2*time.Second {
		t.Fatalf("TickInterval = %s, want 2s", cfg.TickInterval)
	}
	if cfg.StartingCash != 100_000 {
		t.Fatalf("StartingCash = %f, want 100000", cfg.StartingCash)
	}
	if cfg.OrderFee != 20 {
		t.Fatalf("OrderFee = %f, want 20", cfg.OrderFee)
	}
	if cfg.LimitTolerance != 0.05 {
		t.Fatalf("LimitTolerance = %f, want 0.05", cfg.LimitTolerance)
	}
	if cfg.KafkaBrokerURL != "" || cfg.KafkaTopic != "ticks" {
		t.Fatalf("kafka defaults wrong: %q / %q", cfg.KafkaBrokerURL, cfg.KafkaTopic)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout = %s, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("QUOTE_BASE_URL", "http://quotes.local")
	t.Setenv("TICK_INTERVAL", "500ms")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("STARTING_CASH", "250000")
	t.Setenv("ORDER_FEE", "0")
	t.Setenv("LIMIT_TOLERANCE", "0.1")
	t.Setenv("KAFKA_BROKER_URL", "localhost:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 9000 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected port/level: %d / %s", cfg.Port, cfg.LogLevel)
	}
	if cfg.QuoteBaseURL != "http://quotes.local" {
		t.Fatalf("QuoteBaseURL = %s", cfg.QuoteBaseURL)
	}
	if cfg.TickInterval != 500*time.Millisecond {
		t.Fatalf("TickInterval = %s, want 500ms", cfg.TickInterval)
	}
	if cfg.RandomSeed != 42 {
		t.Fatalf("RandomSeed = %d, want 42", cfg.RandomSeed)
	}
	if cfg.StartingCash != 250_000 || cfg.OrderFee != 0 {
		t.Fatalf("cash/fee = %f / %f", cfg.StartingCash, cfg.OrderFee)
	}
	if cfg.LimitTolerance != 0.1 {
		t.Fatalf("LimitTolerance = %f, want 0.1", cfg.LimitTolerance)
	}
	if cfg.KafkaBrokerURL != "localhost:9092" {
		t.Fatalf("KafkaBrokerURL = %s", cfg.KafkaBrokerURL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "not-a-number"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad quote timeout", "QUOTE_TIMEOUT", "fast"},
		{"tick interval too small", "TICK_INTERVAL", "10ms"},
		{"bad seed", "RANDOM_SEED", "abc"},
		{"negative starting cash", "STARTING_CASH", "-1"},
		{"negative fee", "ORDER_FEE", "-5"},
		{"zero tolerance", "LIMIT_TOLERANCE", "0"},
		{"tolerance too large", "LIMIT_TOLERANCE", "1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
