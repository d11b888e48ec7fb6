// Package coingecko serves crypto prices and history from the public
// CoinGecko API. No key is required.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pricr/internal/httpx"
	"pricr/internal/logger"
	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

const (
	ID          = "coingecko"
	DisplayName = "CoinGecko"

	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	priceTTL         = 30 * time.Second
	hourlyHistoryTTL = time.Hour
	dailyHistoryTTL  = 12 * time.Hour

	cacheNamespace = "coingecko"
)

type Config struct {
	BaseURL string
}

// Provider implements provider.HistoryProvider for CoinGecko.
type Provider struct {
	cfg    Config
	client *httpx.Client
	store  *cache.Store
	log    *zap.Logger
}

func New(cfg Config, hc *httpx.Client, store *cache.Store, log *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, client: hc, store: store, log: logger.OrNop(log).With(zap.String("provider", ID))}
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return DisplayName }

// simplePrice is keyed by coin id, then by "usd", "usd_24h_change", "usd_market_cap".
type simplePrice map[string]map[string]*float64

func (p *Provider) GetPrices(ctx context.Context, symbols []string, currency string) ([]provider.CoinPrice, error) {
	coins := make([]coin, len(symbols))
	ids := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for i, s := range symbols {
		coins[i] = resolve(s)
		if _, dup := seen[coins[i].id]; !dup {
			seen[coins[i].id] = struct{}{}
			ids = append(ids, coins[i].id)
		}
	}
	cur := strings.ToLower(currency)
	idsParam := strings.Join(ids, ",")

	q := url.Values{}
	q.Set("ids", idsParam)
	q.Set("vs_currencies", cur)
	q.Set("include_24hr_change", "true")
	q.Set("include_market_cap", "true")
	endpoint := p.cfg.BaseURL + "/simple/price?" + q.Encode()
	key := fmt.Sprintf("simple_price:%s:%s:%s", p.cfg.BaseURL, idsParam, cur)

	p.log.Debug("fetching prices", zap.Strings("ids", ids), zap.String("currency", cur))
	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, priceTTL, DisplayName, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var data simplePrice
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, provider.Parse(DisplayName, "price response", err)
	}

	now := time.Now().UTC()
	out := make([]provider.CoinPrice, 0, len(symbols))
	for i, c := range coins {
		fields, ok := data[c.id]
		if !ok {
			continue
		}
		price := fields[cur]
		if price == nil || !finite(*price) {
			continue
		}
		out = append(out, provider.CoinPrice{
			Symbol:    strings.ToUpper(strings.TrimSpace(symbols[i])),
			Name:      c.name,
			Price:     *price,
			Change24h: finiteOrNil(fields[cur+"_24h_change"]),
			MarketCap: finiteOrNil(fields[cur+"_market_cap"]),
			Currency:  strings.ToUpper(cur),
			Provider:  DisplayName,
			Timestamp: now,
		})
	}
	if len(out) == 0 {
		return nil, provider.NoResults(DisplayName)
	}
	return out, nil
}

type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// GetPriceHistory fetches each symbol's market chart concurrently. Any
// failing symbol fails the whole call.
func (p *Provider) GetPriceHistory(ctx context.Context, symbols []string, currency string, days int, interval provider.HistoryInterval) ([]provider.PriceHistory, error) {
	cur := strings.ToLower(currency)
	out := make([]provider.PriceHistory, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range symbols {
		g.Go(func() error {
			h, err := p.history(gctx, s, cur, days, interval)
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

func (p *Provider) history(ctx context.Context, symbol, cur string, days int, interval provider.HistoryInterval) (provider.PriceHistory, error) {
	c := resolve(symbol)
	q := url.Values{}
	q.Set("vs_currency", cur)
	q.Set("days", fmt.Sprint(days))
	if interval != provider.IntervalAuto {
		q.Set("interval", interval.String())
	}
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", p.cfg.BaseURL, url.PathEscape(c.id), q.Encode())
	key := fmt.Sprintf("market_chart:%s:%s:%s:%d:%s", p.cfg.BaseURL, c.id, cur, days, interval)

	p.log.Debug("fetching chart data", zap.String("symbol", symbol), zap.Int("days", days), zap.Stringer("interval", interval))
	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, historyTTL(interval, days), DisplayName, endpoint, nil)
	if err != nil {
		return provider.PriceHistory{}, err
	}
	var chart marketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return provider.PriceHistory{}, provider.Parse(DisplayName, "market chart", err)
	}

	points := make([]provider.PricePoint, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		if !finite(pair[1]) {
			continue
		}
		points = append(points, provider.PricePoint{Timestamp: time.UnixMilli(int64(pair[0])).UTC(), Price: pair[1]})
	}
	if len(points) == 0 {
		return provider.PriceHistory{}, provider.NoResults(DisplayName)
	}
	return provider.PriceHistory{
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Name:     c.name,
		Currency: strings.ToUpper(cur),
		Provider: DisplayName,
		Points:   points,
	}, nil
}

func historyTTL(interval provider.HistoryInterval, days int) time.Duration {
	switch interval {
	case provider.IntervalDaily:
		return dailyHistoryTTL
	case provider.IntervalHourly:
		return hourlyHistoryTTL
	}
	if days > 30 {
		return dailyHistoryTTL
	}
	return hourlyHistoryTTL
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finiteOrNil(v *float64) *float64 {
	if v == nil || !finite(*v) {
		return nil
	}
	return v
}
