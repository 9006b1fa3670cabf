package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/daemonX10/papertrade/internal/domain"
)

// Source is the external quote boundary: a timeout-bounded, side-effect
// free lookup of the current price for one symbol. Implementations
// return domain.ErrQuoteSourceUnavailable (wrapped) on any failure; the
// adapter recovers with a synthetic tick so callers never see it.
type Source interface {
	FetchQuote(ctx context.Context, symbol string) (domain.Tick, error)
}

// chartResponse is the provider-specific payload shape of the
// Yahoo-Finance-style chart endpoint. Parsing stays fully isolated in
// this file; everything past the Source boundary speaks domain.Tick.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// HTTPSource fetches quotes from a Yahoo-Finance-style chart API.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates an HTTPSource against baseURL with a bounded
// per-request timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchQuote looks up the current quote for symbol. Any transport,
// status, or payload failure is reported as a wrapped
// domain.ErrQuoteSourceUnavailable.
func (s *HTTPSource) FetchQuote(ctx context.Context, symbol string) (domain.Tick, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", s.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Tick{}, fmt.Errorf("%w: %v", domain.ErrQuoteSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Tick{}, fmt.Errorf("%w: %v", domain.ErrQuoteSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Tick{}, fmt.Errorf("%w: status %d", domain.ErrQuoteSourceUnavailable, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Tick{}, fmt.Errorf("%w: malformed payload: %v", domain.ErrQuoteSourceUnavailable, err)
	}
	if payload.Chart.Error != nil {
		return domain.Tick{}, fmt.Errorf("%w: %s", domain.ErrQuoteSourceUnavailable, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return domain.Tick{}, fmt.Errorf("%w: empty result", domain.ErrQuoteSourceUnavailable)
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return domain.Tick{}, fmt.Errorf("%w: non-positive price for %s", domain.ErrQuoteSourceUnavailable, symbol)
	}

	return normalizeTick(domain.Tick{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		Volume:        meta.RegularMarketVolume,
		High:          meta.RegularMarketDayHigh,
		Low:           meta.RegularMarketDayLow,
		Open:          meta.ChartPreviousClose,
		PreviousClose: meta.ChartPreviousClose,
		Timestamp:     time.Now().UTC(),
	}), nil
}

// normalizeTick fills derived fields and enforces internally consistent
// OHLC: low <= {open, price} <= high.
func normalizeTick(t domain.Tick) domain.Tick {
	if t.Open <= 0 {
		t.Open = t.Price
	}
	if t.PreviousClose <= 0 {
		t.PreviousClose = t.Open
	}
	if t.High < t.Price {
		t.High = t.Price
	}
	if t.High < t.Open {
		t.High = t.Open
	}
	if t.Low <= 0 || t.Low > t.Price {
		t.Low = t.Price
	}
	if t.Low > t.Open {
		t.Low = t.Open
	}
	t.Change = t.Price - t.PreviousClose
	if t.PreviousClose > 0 {
		t.ChangePercent = t.Change / t.PreviousClose * 100
	}
	return t
}
