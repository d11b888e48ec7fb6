// Package yahoo serves equity, ETF, index and crypto quotes, chart history
// and keyword ticker search from the Yahoo Finance public endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
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
	ID          = "yahoo"
	DisplayName = "Yahoo Finance"

	DefaultBaseURL = "https://query2.finance.yahoo.com"

	quoteTTL         = 30 * time.Second
	searchTTL        = 10 * time.Minute
	hourlyHistoryTTL = time.Hour
	dailyHistoryTTL  = 12 * time.Hour

	cacheNamespace = "yahoo"
)

type Config struct {
	BaseURL string
}

// Provider implements provider.HistoryProvider, provider.WindowHistoryProvider
// and provider.TickerSearcher.
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

type chartEnvelope struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency           string   `json:"currency"`
		ShortName          string   `json:"shortName"`
		LongName           string   `json:"longName"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		ChartPreviousClose *float64 `json:"chartPreviousClose"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (r *chartResult) closes() []*float64 {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	return r.Indicators.Quote[0].Close
}

func (r *chartResult) displayName(fallback string) string {
	switch {
	case r.Meta.LongName != "":
		return r.Meta.LongName
	case r.Meta.ShortName != "":
		return r.Meta.ShortName
	}
	return fallback
}

func (r *chartResult) currency(fallback string) string {
	if r.Meta.Currency != "" {
		return strings.ToUpper(r.Meta.Currency)
	}
	return fallback
}

func decodeChart(body []byte) (*chartResult, error) {
	var env chartEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, provider.Parse(DisplayName, "chart", err)
	}
	if env.Chart.Error != nil && env.Chart.Error.Description != "" {
		return nil, provider.RemoteAPI(DisplayName, "%s", env.Chart.Error.Description)
	}
	if len(env.Chart.Result) == 0 {
		return nil, nil
	}
	return &env.Chart.Result[0], nil
}

// GetPrices fetches one chart per symbol concurrently. Symbols without
// usable data are dropped; a failed request fails the whole call.
func (p *Provider) GetPrices(ctx context.Context, symbols []string, currency string) ([]provider.CoinPrice, error) {
	requested := strings.ToUpper(currency)
	found := make([]*provider.CoinPrice, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range symbols {
		g.Go(func() error {
			q, err := p.latestQuote(gctx, strings.ToUpper(strings.TrimSpace(s)), requested)
			if err != nil {
				return err
			}
			found[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]provider.CoinPrice, 0, len(symbols))
	for _, q := range found {
		if q != nil {
			out = append(out, *q)
		}
	}
	if len(out) == 0 {
		return nil, provider.NoResults(DisplayName)
	}
	return out, nil
}

func (p *Provider) latestQuote(ctx context.Context, symbol, requested string) (*provider.CoinPrice, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", p.cfg.BaseURL, url.PathEscape(symbol))
	key := fmt.Sprintf("latest_chart:%s:%s", p.cfg.BaseURL, symbol)

	p.log.Debug("fetching latest quote", zap.String("symbol", symbol))
	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, quoteTTL, DisplayName, endpoint, nil)
	if err != nil {
		return nil, err
	}
	chart, err := decodeChart(body)
	if err != nil || chart == nil {
		return nil, err
	}

	closes := make([]float64, 0, len(chart.closes()))
	for _, c := range chart.closes() {
		if c != nil && finite(*c) {
			closes = append(closes, *c)
		}
	}
	if len(closes) == 0 {
		return nil, nil
	}
	price := closes[len(closes)-1]
	if rp := chart.Meta.RegularMarketPrice; rp != nil && finite(*rp) {
		price = *rp
	}

	var change *float64
	if prev := chart.Meta.ChartPreviousClose; prev != nil {
		change = percentChange(*prev, price)
	}
	if change == nil && len(closes) >= 2 {
		change = percentChange(closes[len(closes)-2], price)
	}

	return &provider.CoinPrice{
		Symbol:    symbol,
		Name:      chart.displayName(symbol),
		Price:     price,
		Change24h: change,
		Currency:  chart.currency(requested),
		Provider:  DisplayName,
		Timestamp: time.Now().UTC(),
	}, nil
}

// GetPriceHistory asks for the window ending now.
func (p *Provider) GetPriceHistory(ctx context.Context, symbols []string, currency string, days int, interval provider.HistoryInterval) ([]provider.PriceHistory, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	return p.GetPriceHistoryWindow(ctx, symbols, currency, &start, end, interval)
}

func (p *Provider) GetPriceHistoryWindow(ctx context.Context, symbols []string, currency string, start *time.Time, end time.Time, interval provider.HistoryInterval) ([]provider.PriceHistory, error) {
	requested := strings.ToUpper(currency)
	out := make([]provider.PriceHistory, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range symbols {
		g.Go(func() error {
			h, err := p.history(gctx, strings.ToUpper(strings.TrimSpace(s)), requested, start, end, interval)
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

func (p *Provider) history(ctx context.Context, symbol, requested string, start *time.Time, end time.Time, interval provider.HistoryInterval) (provider.PriceHistory, error) {
	iv := chartInterval(interval, start, end)
	var period1 int64
	if start != nil {
		period1 = start.Unix()
	}
	period2 := max(end.Add(time.Second).Unix(), period1+1)

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(period1, 10))
	q.Set("period2", strconv.FormatInt(period2, 10))
	q.Set("interval", iv)
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.cfg.BaseURL, url.PathEscape(symbol), q.Encode())
	key := fmt.Sprintf("chart:%s:%s:%d:%d:%s", p.cfg.BaseURL, symbol, period1, period2, iv)
	ttl := dailyHistoryTTL
	if iv == "1h" {
		ttl = hourlyHistoryTTL
	}

	p.log.Debug("fetching chart data", zap.String("symbol", symbol), zap.Int64("period1", period1), zap.Int64("period2", period2), zap.String("interval", iv))
	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, ttl, DisplayName, endpoint, nil)
	if err != nil {
		return provider.PriceHistory{}, err
	}
	chart, err := decodeChart(body)
	if err != nil {
		return provider.PriceHistory{}, err
	}
	if chart == nil {
		return provider.PriceHistory{}, provider.NoResults(DisplayName)
	}

	closes := chart.closes()
	points := make([]provider.PricePoint, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		if i >= len(closes) || closes[i] == nil || !finite(*closes[i]) {
			continue
		}
		t := time.Unix(ts, 0).UTC()
		if t.After(end) || (start != nil && t.Before(*start)) {
			continue
		}
		points = append(points, provider.PricePoint{Timestamp: t, Price: *closes[i]})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	if len(points) == 0 {
		return provider.PriceHistory{}, provider.NoResults(DisplayName)
	}
	return provider.PriceHistory{
		Symbol:   symbol,
		Name:     chart.displayName(symbol),
		Currency: chart.currency(requested),
		Provider: DisplayName,
		Points:   points,
	}, nil
}

// SearchTickers runs a keyword search.
func (p *Provider) SearchTickers(ctx context.Context, query string, limit int) ([]provider.TickerMatch, error) {
	return Search(ctx, p.client, p.store, SearchConfig{
		BaseURL:      p.cfg.BaseURL,
		ProviderName: DisplayName,
		Namespace:    cacheNamespace,
	}, query, limit)
}

// chartInterval picks the chart bar size. Auto uses hourly bars for
// windows of five days or less.
func chartInterval(interval provider.HistoryInterval, start *time.Time, end time.Time) string {
	switch interval {
	case provider.IntervalDaily:
		return "1d"
	case provider.IntervalHourly:
		return "1h"
	}
	days := 366
	if start != nil {
		days = max(int(end.Sub(*start).Hours()/24), 1)
	}
	if days <= 5 {
		return "1h"
	}
	return "1d"
}

func percentChange(previous, current float64) *float64 {
	if !finite(previous) || previous == 0 {
		return nil
	}
	v := (current - previous) / previous * 100
	if !finite(v) {
		return nil
	}
	return &v
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
