// Package coinmarketcap serves crypto quotes from the CoinMarketCap pro API
// (API key required) and history from the public web chart API, falling back
// to the pro historical endpoint.
package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"pricr/internal/httpx"
	"pricr/internal/logger"
	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

const (
	ID          = "cmc"
	DisplayName = "CoinMarketCap"

	DefaultBaseURL      = "https://pro-api.coinmarketcap.com/v1"
	DefaultChartBaseURL = "https://api.coinmarketcap.com/data-api/v3.3"
	DefaultCatalogURL   = "https://s3.coinmarketcap.com/whitepaper/summaries/coins.json"

	apiKeyHeader = "X-CMC_PRO_API_KEY"

	priceTTL       = 30 * time.Second
	hourlyChartTTL = time.Hour
	dailyChartTTL  = 12 * time.Hour
	catalogTTL     = 24 * time.Hour

	cacheNamespace = "coinmarketcap"
)

// Config controls the CoinMarketCap provider. When only BaseURL is set the
// chart and catalog URLs are derived from its origin.
type Config struct {
	APIKey       string
	BaseURL      string
	ChartBaseURL string
	CatalogURL   string
}

type catalogEntry struct {
	ID   int64
	Name string
}

// Provider implements provider.HistoryProvider for CoinMarketCap.
type Provider struct {
	cfg    Config
	client *httpx.Client
	store  *cache.Store
	log    *zap.Logger

	// symbol -> coin, populated once per instance
	catalog   map[string]catalogEntry
	catalogMu sync.RWMutex
	sf        singleflight.Group
}

func New(cfg Config, hc *httpx.Client, store *cache.Store, log *zap.Logger) *Provider {
	custom := cfg.BaseURL != ""
	if !custom {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ChartBaseURL == "" {
		cfg.ChartBaseURL = DefaultChartBaseURL
		if custom {
			cfg.ChartBaseURL = deriveChartBaseURL(cfg.BaseURL)
		}
	}
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = DefaultCatalogURL
		if cfg.ChartBaseURL != DefaultChartBaseURL {
			cfg.CatalogURL = deriveCatalogURL(cfg.ChartBaseURL)
		}
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return &Provider{cfg: cfg, client: hc, store: store, log: logger.OrNop(log).With(zap.String("provider", ID))}
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return DisplayName }

// HasAPIKey reports whether quote lookups are possible.
func (p *Provider) HasAPIKey() bool { return p.cfg.APIKey != "" }

func (p *Provider) requireKey() error {
	if p.cfg.APIKey == "" {
		return provider.Config(provider.CodeMissingCredential, "CoinMarketCap price lookup requires --api-key or COINMARKETCAP_API_KEY")
	}
	return nil
}

type status struct {
	ErrorMessage string `json:"error_message"`
}

type quote struct {
	Price            *float64 `json:"price"`
	PercentChange24h *float64 `json:"percent_change_24h"`
	MarketCap        *float64 `json:"market_cap"`
}

type coinQuote struct {
	Name   string           `json:"name"`
	Symbol string           `json:"symbol"`
	Quote  map[string]quote `json:"quote"`
}

type latestResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Status *status                    `json:"status"`
}

func (p *Provider) GetPrices(ctx context.Context, symbols []string, currency string) ([]provider.CoinPrice, error) {
	if err := p.requireKey(); err != nil {
		return nil, err
	}
	upper := make([]string, len(symbols))
	unique := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(strings.TrimSpace(s))
		if _, dup := seen[upper[i]]; !dup {
			seen[upper[i]] = struct{}{}
			unique = append(unique, upper[i])
		}
	}
	convert := strings.ToUpper(currency)
	joined := strings.Join(unique, ",")

	q := url.Values{}
	q.Set("symbol", joined)
	q.Set("convert", convert)
	endpoint := p.cfg.BaseURL + "/cryptocurrency/quotes/latest?" + q.Encode()
	key := fmt.Sprintf("quotes_latest:%s:%s:%s", p.cfg.BaseURL, joined, convert)

	p.log.Debug("fetching prices", zap.String("symbols", joined), zap.String("currency", convert))
	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, priceTTL, DisplayName, endpoint, p.keyHeader())
	if err != nil {
		return nil, err
	}
	var raw latestResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, provider.Parse(DisplayName, "quotes response", err)
	}
	if raw.Status != nil && raw.Status.ErrorMessage != "" {
		return nil, provider.RemoteAPI(DisplayName, "%s", raw.Status.ErrorMessage)
	}

	now := time.Now().UTC()
	out := make([]provider.CoinPrice, 0, len(upper))
	for _, sym := range upper {
		val, ok := raw.Data[sym]
		if !ok {
			continue
		}
		c, ok, err := decodeCoin(val)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		qt, ok := c.Quote[convert]
		if !ok || qt.Price == nil || !finite(*qt.Price) {
			continue
		}
		symbol := c.Symbol
		if symbol == "" {
			symbol = sym
		}
		out = append(out, provider.CoinPrice{
			Symbol:    strings.ToUpper(symbol),
			Name:      c.Name,
			Price:     *qt.Price,
			Change24h: finiteOrNil(qt.PercentChange24h),
			MarketCap: finiteOrNil(qt.MarketCap),
			Currency:  convert,
			Provider:  DisplayName,
			Timestamp: now,
		})
	}
	if len(out) == 0 {
		return nil, provider.NoResults(DisplayName)
	}
	return out, nil
}

// decodeCoin accepts both the single-object and the array form of data[SYM].
func decodeCoin(raw json.RawMessage) (coinQuote, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var coins []coinQuote
		if err := json.Unmarshal(raw, &coins); err != nil {
			return coinQuote{}, false, provider.Parse(DisplayName, "coin array", err)
		}
		if len(coins) == 0 {
			return coinQuote{}, false, nil
		}
		return coins[0], true, nil
	}
	var c coinQuote
	if err := json.Unmarshal(raw, &c); err != nil {
		return coinQuote{}, false, provider.Parse(DisplayName, "coin", err)
	}
	return c, true, nil
}

func (p *Provider) keyHeader() map[string]string {
	if p.cfg.APIKey == "" {
		return nil
	}
	return map[string]string{apiKeyHeader: p.cfg.APIKey}
}

// GetPriceHistory fetches each symbol concurrently; any failing symbol
// fails the whole call.
func (p *Provider) GetPriceHistory(ctx context.Context, symbols []string, currency string, days int, interval provider.HistoryInterval) ([]provider.PriceHistory, error) {
	convert := strings.ToUpper(currency)
	param := intervalParam(interval, days)

	out := make([]provider.PriceHistory, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range symbols {
		g.Go(func() error {
			h, err := p.history(gctx, strings.ToUpper(strings.TrimSpace(s)), convert, days, param)
			if err != nil {
				return err
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, provider.NoResults(DisplayName)
	}
	return out, nil
}

func (p *Provider) history(ctx context.Context, symbol, convert string, days int, param string) (provider.PriceHistory, error) {
	entry, found := p.lookupCoin(ctx, symbol)
	convertID, convertOK := convertIDs[convert]
	if found && convertOK {
		h, err := p.webChartHistory(ctx, symbol, entry, convert, convertID, days, param)
		if err == nil {
			return h, nil
		}
		p.log.Debug("web chart failed, falling back to pro historical endpoint",
			zap.String("symbol", symbol), zap.String("currency", convert), zap.Error(err))
	}
	return p.proHistory(ctx, symbol, convert, days, param)
}

func intervalParam(interval provider.HistoryInterval, days int) string {
	switch interval {
	case provider.IntervalHourly:
		return "hourly"
	case provider.IntervalDaily:
		return "daily"
	}
	if days <= 30 {
		return "hourly"
	}
	return "daily"
}

func chartTTL(param string) time.Duration {
	if param == "daily" || param == "1d" {
		return dailyChartTTL
	}
	return hourlyChartTTL
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finiteOrNil(v *float64) *float64 {
	if v == nil || !finite(*v) {
		return nil
	}
	return v
}

func deriveChartBaseURL(base string) string {
	prefix := strings.TrimSuffix(base, "/v1")
	return strings.TrimRight(prefix, "/") + "/data-api/v3.3"
}

func deriveCatalogURL(chartBase string) string {
	if origin, _, ok := strings.Cut(chartBase, "/data-api/"); ok {
		return strings.TrimRight(origin, "/") + "/whitepaper/summaries/coins.json"
	}
	return DefaultCatalogURL
}
