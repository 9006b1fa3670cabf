package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/daemonX10/papertrade/internal/domain"
	"github.com/daemonX10/papertrade/internal/ledger"
	"github.com/daemonX10/papertrade/internal/marketdata"
	"github.com/daemonX10/papertrade/internal/quote"
	"github.com/daemonX10/papertrade/internal/service"
	"github.com/daemonX10/papertrade/internal/store"
)

// stubPrices pins every symbol to one price so order and portfolio
// responses are exact.
type stubPrices struct {
	price float64
}

func (s stubPrices) GetPrice(_ context.Context, symbol string) (domain.Tick, error) {
	return domain.Tick{Symbol: symbol, Price: s.price, Timestamp: time.Now().UTC()}, nil
}

func (s stubPrices) GetPrices(ctx context.Context, symbols []string) (map[string]domain.Tick, error) {
	out := make(map[string]domain.Tick, len(symbols))
	for _, symbol := range symbols {
		tick, err := s.GetPrice(ctx, symbol)
		if err != nil {
			return nil, err
		}
		out[symbol] = tick
	}
	return out, nil
}

type testEnv struct {
	server    *httptest.Server
	hub       *marketdata.Hub
	generator *marketdata.Generator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	universe := quote.DefaultUniverse()
	adapter := quote.NewAdapter(universe, nil, time.Second, 1, logger)

	generator := marketdata.NewGenerator(adapter, time.Second, 1, logger)
	if err := generator.Seed(context.Background()); err != nil {
		t.Fatalf("seed generator: %v", err)
	}

	hub := marketdata.NewHub(generator.Snapshot, nil, logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	portfolios := store.NewPortfolioStore(decimal.NewFromInt(100_000))
	trades := store.NewTradeStore()
	l := ledger.New(portfolios, trades)

	prices := stubPrices{price: 2500}
	orderSvc := service.NewOrderService(l, prices, universe, decimal.NewFromInt(20), decimal.NewFromFloat(0.05))
	portfolioSvc := service.NewPortfolioService(l, trades, prices)

	server := httptest.NewServer(NewRouter(orderSvc, portfolioSvc, generator, hub, logger))
	t.Cleanup(server.Close)

	return &testEnv{server: server, hub: hub, generator: generator}
}

func (e *testEnv) postOrder(t *testing.T, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(e.server.URL+"/orders", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /orders failed: %v", err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := http.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func assertErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()

	if resp.StatusCode != status {
		t.Fatalf("status = %d, want %d", resp.StatusCode, status)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Error != code {
		t.Fatalf("error code = %q, want %q", body.Error, code)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", body["status"])
	}
}

func TestPlaceOrder_MarketBuy(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postOrder(t, `{"user_id":"alice","symbol":"RELIANCE","side":"buy","type":"market","quantity":10}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body orderResponse
	decodeBody(t, resp, &body)
	if body.OrderID == "" {
		t.Fatal("missing order_id")
	}
	if body.Status != string(domain.OrderStatusExecuted) {
		t.Fatalf("status = %q, want %q", body.Status, domain.OrderStatusExecuted)
	}
	if body.ExecutionPrice != 2500 || body.Fee != 20 {
		t.Fatalf("execution_price = %f fee = %f, want 2500 / 20", body.ExecutionPrice, body.Fee)
	}

	// The buy is reflected in the portfolio.
	var pf portfolioResponse
	decodeBody(t, env.get(t, "/portfolios/alice"), &pf)
	if pf.CashBalance != 74980 {
		t.Fatalf("cash_balance = %f, want 74980", pf.CashBalance)
	}
	if len(pf.Holdings) != 1 || pf.Holdings[0].Symbol != "RELIANCE" || pf.Holdings[0].Quantity != 10 {
		t.Fatalf("unexpected holdings: %+v", pf.Holdings)
	}
}

func TestPlaceOrder_Rejections(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			"insufficient funds",
			`{"user_id":"bob","symbol":"RELIANCE","side":"buy","type":"market","quantity":1000}`,
			http.StatusConflict, "insufficient_funds",
		},
		{
			"insufficient holdings",
			`{"user_id":"bob","symbol":"RELIANCE","side":"sell","type":"market","quantity":5}`,
			http.StatusConflict, "insufficient_holdings",
		},
		{
			"unknown symbol",
			`{"user_id":"bob","symbol":"NOSUCH","side":"buy","type":"market","quantity":1}`,
			http.StatusNotFound, "unknown_symbol",
		},
		{
			"limit price out of tolerance",
			`{"user_id":"bob","symbol":"RELIANCE","side":"buy","type":"limit","quantity":1,"price":3000}`,
			http.StatusConflict, "price_out_of_tolerance",
		},
		{
			"zero quantity",
			`{"user_id":"bob","symbol":"RELIANCE","side":"buy","type":"market","quantity":0}`,
			http.StatusBadRequest, "validation_error",
		},
		{
			"unknown field",
			`{"user_id":"bob","symbol":"RELIANCE","side":"buy","type":"market","quantity":1,"bogus":true}`,
			http.StatusBadRequest, "invalid_request",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertErrorCode(t, env.postOrder(t, tc.body), tc.status, tc.code)
		})
	}
}

func TestPlaceOrder_RequiresJSONContentType(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/orders", "text/plain",
		bytes.NewReader([]byte(`{"user_id":"alice"}`)))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	assertErrorCode(t, resp, http.StatusBadRequest, "invalid_request")
}

func TestGetPortfolio_FirstAccess(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/portfolios/newcomer")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var pf portfolioResponse
	decodeBody(t, resp, &pf)
	if pf.CashBalance != 100_000 {
		t.Fatalf("cash_balance = %f, want 100000", pf.CashBalance)
	}
	if len(pf.Holdings) != 0 {
		t.Fatalf("unexpected holdings: %+v", pf.Holdings)
	}
}

func TestGetPortfolio_InvalidUserID(t *testing.T) {
	env := newTestEnv(t)
	assertErrorCode(t, env.get(t, "/portfolios/bad%20user"), http.StatusBadRequest, "validation_error")
}

func TestGetTradeHistory(t *testing.T) {
	env := newTestEnv(t)

	env.postOrder(t, `{"user_id":"carol","symbol":"TCS","side":"buy","type":"market","quantity":2}`).Body.Close()
	env.postOrder(t, `{"user_id":"carol","symbol":"INFY","side":"buy","type":"market","quantity":3}`).Body.Close()

	resp := env.get(t, "/portfolios/carol/trades")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		UserID string          `json:"user_id"`
		Trades []tradeResponse `json:"trades"`
	}
	decodeBody(t, resp, &body)
	if len(body.Trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(body.Trades))
	}
	// Most recent first.
	if body.Trades[0].Symbol != "INFY" || body.Trades[1].Symbol != "TCS" {
		t.Fatalf("unexpected trade order: %s, %s", body.Trades[0].Symbol, body.Trades[1].Symbol)
	}

	assertErrorCode(t, env.get(t, "/portfolios/carol/trades?limit=abc"),
		http.StatusBadRequest, "validation_error")
	assertErrorCode(t, env.get(t, "/portfolios/carol/trades?limit=0"),
		http.StatusBadRequest, "validation_error")
}

func TestGetQuotes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/quotes")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var board struct {
		Ticks []domain.Tick `json:"ticks"`
	}
	decodeBody(t, resp, &board)
	if len(board.Ticks) != 10 {
		t.Fatalf("board has %d ticks, want 10", len(board.Ticks))
	}

	resp = env.get(t, "/quotes/RELIANCE")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var tick domain.Tick
	decodeBody(t, resp, &tick)
	if tick.Symbol != "RELIANCE" || tick.Price <= 0 {
		t.Fatalf("unexpected tick: %+v", tick)
	}

	assertErrorCode(t, env.get(t, "/quotes/NOSUCH"), http.StatusNotFound, "unknown_symbol")
}

func TestStream(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/stream?symbols=TCS"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot marketdata.Message
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.Type != marketdata.MessageTypeSnapshot {
		t.Fatalf("type = %s, want %s", snapshot.Type, marketdata.MessageTypeSnapshot)
	}
	if len(snapshot.Ticks) != 10 {
		t.Fatalf("snapshot has %d ticks, want 10", len(snapshot.Ticks))
	}

	// Give the hub a moment to apply the query-string subscription before
	// broadcasting.
	time.Sleep(50 * time.Millisecond)
	env.hub.Publish([]domain.Tick{
		{Symbol: "RELIANCE", Price: 2501},
		{Symbol: "TCS", Price: 3501},
	})

	var batch marketdata.Message
	if err := conn.ReadJSON(&batch); err != nil {
		t.Fatalf("read batch: %v", err)
	}
	if batch.Type != marketdata.MessageTypeTickBatch {
		t.Fatalf("type = %s, want %s", batch.Type, marketdata.MessageTypeTickBatch)
	}
	if len(batch.Ticks) != 1 || batch.Ticks[0].Symbol != "TCS" {
		t.Fatalf("expected only TCS, got %+v", batch.Ticks)
	}
	if batch.Ticks[0].Price != 3501 {
		t.Fatalf("price = %f, want 3501", batch.Ticks[0].Price)
	}
}
