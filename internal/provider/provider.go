package provider

import (
	"context"
	"time"
)

// CoinPrice is the normalized quote shape returned by all providers.
type CoinPrice struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Change24h *float64  `json:"change_24h,omitempty"`
	MarketCap *float64  `json:"market_cap,omitempty"`
	Currency  string    `json:"currency"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

// PricePoint is a single historical sample.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// PriceHistory is a series for one symbol, points ascending by timestamp.
// Producers never return a history without points.
type PriceHistory struct {
	Symbol   string       `json:"symbol"`
	Name     string       `json:"name"`
	Currency string       `json:"currency"`
	Provider string       `json:"provider"`
	Points   []PricePoint `json:"points"`
}

// TickerMatch is one ticker search hit. Provider may hold several
// comma-separated names once matches from different sources are merged.
type TickerMatch struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Exchange  string `json:"exchange"`
	AssetType string `json:"asset_type"`
	Provider  string `json:"provider"`
}

// HistoryInterval selects the sampling density of history requests.
type HistoryInterval int

const (
	IntervalAuto HistoryInterval = iota
	IntervalHourly
	IntervalDaily
)

func (i HistoryInterval) String() string {
	switch i {
	case IntervalHourly:
		return "hourly"
	case IntervalDaily:
		return "daily"
	default:
		return "auto"
	}
}

// ParseInterval maps the CLI spelling back to a HistoryInterval.
func ParseInterval(s string) (HistoryInterval, bool) {
	switch s {
	case "", "auto":
		return IntervalAuto, true
	case "hourly":
		return IntervalHourly, true
	case "daily":
		return IntervalDaily, true
	}
	return IntervalAuto, false
}

// Provider is the capability every data source implements.
type Provider interface {
	// ID is the short identifier used in flags and configuration.
	ID() string
	// Name is the human readable provider name.
	Name() string
	GetPrices(ctx context.Context, symbols []string, currency string) ([]CoinPrice, error)
}

// HistoryProvider is implemented by providers that serve day-range history.
type HistoryProvider interface {
	Provider
	GetPriceHistory(ctx context.Context, symbols []string, currency string, days int, interval HistoryInterval) ([]PriceHistory, error)
}

// WindowHistoryProvider serves history for an explicit [start, end] window.
// A nil start means "from the beginning".
type WindowHistoryProvider interface {
	Provider
	GetPriceHistoryWindow(ctx context.Context, symbols []string, currency string, start *time.Time, end time.Time, interval HistoryInterval) ([]PriceHistory, error)
}

//go:generate mockgen -destination=providermock/provider.go -package=providermock pricr/internal/provider Provider,HistoryProvider,WindowHistoryProvider,TickerSearcher,RateSource

// TickerSearcher is implemented by providers with keyword search.
type TickerSearcher interface {
	Provider
	SearchTickers(ctx context.Context, query string, limit int) ([]TickerMatch, error)
}

// RateSource serves fiat exchange rates. GetRates maps each target code to
// how many units of it one unit of from buys.
type RateSource interface {
	Name() string
	GetRates(ctx context.Context, from string, to []string) (map[string]float64, error)
}
