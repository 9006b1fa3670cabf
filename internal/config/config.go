package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the trading simulator.
type Config struct {
	Port     int
	LogLevel string

	// UniversePath points at an optional YAML symbol-universe file.
	// Empty uses the built-in universe.
	UniversePath string

	// QuoteBaseURL is the external Yahoo-Finance-style quote endpoint.
	// Empty disables external lookups entirely (synthetic only).
	QuoteBaseURL string
	QuoteTimeout time.Duration

	TickInterval time.Duration
	RandomSeed   int64 // 0 = time-based

	StartingCash   float64
	OrderFee       float64
	LimitTolerance float64 // fraction of market price, e.g. 0.05

	// KafkaBrokerURL enables the tick firehose when non-empty.
	KafkaBrokerURL string
	KafkaTopic     string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies
// defaults, and validates values. It returns an error for any invalid
// value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	quoteTimeout, err := getDuration("QUOTE_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_TIMEOUT: %w", err)
	}

	tickInterval, err := getDuration("TICK_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}
	if tickInterval < 100*time.Millisecond {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: must be at least 100ms")
	}

	randomSeed, err := getInt64("RANDOM_SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid RANDOM_SEED: %w", err)
	}

	startingCash, err := getFloat("STARTING_CASH", 100_000)
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_CASH: %w", err)
	}
	if startingCash < 0 {
		return nil, fmt.Errorf("invalid STARTING_CASH: must be >= 0")
	}

	orderFee, err := getFloat("ORDER_FEE", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid ORDER_FEE: %w", err)
	}
	if orderFee < 0 {
		return nil, fmt.Errorf("invalid ORDER_FEE: must be >= 0")
	}

	limitTolerance, err := getFloat("LIMIT_TOLERANCE", 0.05)
	if err != nil {
		return nil, fmt.Errorf("invalid LIMIT_TOLERANCE: %w", err)
	}
	if limitTolerance <= 0 || limitTolerance >= 1 {
		return nil, fmt.Errorf("invalid LIMIT_TOLERANCE: must be in (0, 1)")
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	kafkaBrokerURL := getStr("KAFKA_BROKER_URL", "")
	kafkaTopic := getStr("KAFKA_TOPIC", "ticks")
	if kafkaBrokerURL != "" && kafkaTopic == "" {
		return nil, fmt.Errorf("invalid KAFKA_TOPIC: required when KAFKA_BROKER_URL is set")
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		UniversePath:    getStr("UNIVERSE_PATH", ""),
		QuoteBaseURL:    getStr("QUOTE_BASE_URL", ""),
		QuoteTimeout:    quoteTimeout,
		TickInterval:    tickInterval,
		RandomSeed:      randomSeed,
		StartingCash:    startingCash,
		OrderFee:        orderFee,
		LimitTolerance:  limitTolerance,
		KafkaBrokerURL:  kafkaBrokerURL,
		KafkaTopic:      kafkaTopic,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
