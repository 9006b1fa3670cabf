package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/daemonX10/papertrade/internal/config"
	"github.com/daemonX10/papertrade/internal/handler"
	"github.com/daemonX10/papertrade/internal/ledger"
	"github.com/daemonX10/papertrade/internal/marketdata"
	"github.com/daemonX10/papertrade/internal/quote"
	"github.com/daemonX10/papertrade/internal/service"
	"github.com/daemonX10/papertrade/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Symbol universe: from file if configured, built-in otherwise.
	universe := quote.DefaultUniverse()
	if cfg.UniversePath != "" {
		universe, err = quote.LoadUniverse(cfg.UniversePath)
		if err != nil {
			logger.Error("failed to load universe", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Quote source adapter: external lookup with synthetic fallback, or
	// synthetic only when no endpoint is configured.
	var source quote.Source
	if cfg.QuoteBaseURL != "" {
		source = quote.NewHTTPSource(cfg.QuoteBaseURL, cfg.QuoteTimeout)
	}
	adapter := quote.NewAdapter(universe, source, cfg.QuoteTimeout, cfg.RandomSeed, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tick generator seeded from the adapter.
	generator := marketdata.NewGenerator(adapter, cfg.TickInterval, cfg.RandomSeed, logger)
	if err := generator.Seed(ctx); err != nil {
		logger.Error("failed to seed tick generator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Optional Kafka firehose.
	var publisher *marketdata.TickPublisher
	if cfg.KafkaBrokerURL != "" {
		publisher = marketdata.NewTickPublisher(cfg.KafkaBrokerURL, cfg.KafkaTopic, logger)
		go publisher.Run(ctx)
		logger.Info("kafka tick firehose enabled",
			slog.String("broker", cfg.KafkaBrokerURL),
			slog.String("topic", cfg.KafkaTopic),
		)
	}

	// Distribution hub fed by the generator.
	hub := marketdata.NewHub(generator.Snapshot, publisher, logger)
	generator.AddSink(hub)
	go hub.Run(ctx)
	generator.Start(ctx)

	// Stores and ledger.
	portfolioStore := store.NewPortfolioStore(decimal.NewFromFloat(cfg.StartingCash))
	tradeStore := store.NewTradeStore()
	book := ledger.New(portfolioStore, tradeStore)

	// Services: execution and valuation both read the live board.
	orderSvc := service.NewOrderService(
		book,
		generator,
		universe,
		decimal.NewFromFloat(cfg.OrderFee),
		decimal.NewFromFloat(cfg.LimitTolerance),
	)
	portfolioSvc := service.NewPortfolioService(book, tradeStore, generator)

	// Router.
	router := handler.NewRouter(orderSvc, portfolioSvc, generator, hub, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops the
	// generator, hub, and firehose).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
