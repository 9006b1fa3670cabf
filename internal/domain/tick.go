package domain

import "time"

// Tick is one timestamped price/volume observation for a symbol. Ticks
// are transient: each one is superseded by the next tick for the same
// symbol and only the most recent value is retained by the generator.
//
// Tick values travel the market-data plane as float64; the ledger
// converts to decimal at the execution boundary (see PriceFromFloat).
type Tick struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previous_close"`
	Timestamp     time.Time `json:"timestamp"`
}
