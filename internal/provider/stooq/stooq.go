// Package stooq serves equity quotes and daily history from stooq.com CSV
// endpoints. Bare tickers are treated as US listings ("aapl" -> "aapl.us").
package stooq

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
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
	"pricr/internal/provider/yahoo"
)

const (
	ID          = "stooq"
	DisplayName = "Stooq"

	DefaultBaseURL       = "https://stooq.com"
	DefaultSearchBaseURL = yahoo.DefaultBaseURL

	priceTTL   = 30 * time.Second
	historyTTL = 12 * time.Hour

	cacheNamespace = "stooq"
)

type Config struct {
	BaseURL string
	// SearchBaseURL hosts the Yahoo-compatible search endpoint.
	SearchBaseURL string
}

// Provider implements provider.HistoryProvider and provider.TickerSearcher.
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
	if cfg.SearchBaseURL == "" {
		cfg.SearchBaseURL = DefaultSearchBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, client: hc, store: store, log: logger.OrNop(log).With(zap.String("provider", ID))}
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return DisplayName }

func (p *Provider) GetPrices(ctx context.Context, symbols []string, currency string) ([]provider.CoinPrice, error) {
	requested := strings.ToUpper(currency)
	found := make([]*provider.CoinPrice, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range symbols {
		g.Go(func() error {
			q, err := p.quote(gctx, strings.ToUpper(strings.TrimSpace(s)), normalize(s), requested)
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

func (p *Provider) quote(ctx context.Context, display, normalized, requested string) (*provider.CoinPrice, error) {
	q := url.Values{}
	q.Set("s", normalized)
	q.Set("i", "d")
	endpoint := p.cfg.BaseURL + "/q/l/?" + q.Encode()
	key := fmt.Sprintf("quote:%s:%s", p.cfg.BaseURL, normalized)

	p.log.Debug("fetching quote", zap.String("symbol", normalized))
	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, priceTTL, DisplayName, endpoint, nil)
	if err != nil {
		return nil, err
	}
	row, ok := findQuoteRow(body, strings.ToUpper(normalized))
	if !ok {
		return nil, nil
	}
	var change *float64
	if row.open != nil {
		change = percentChange(*row.open, row.close)
	}
	return &provider.CoinPrice{
		Symbol:    display,
		Name:      display,
		Price:     row.close,
		Change24h: change,
		Currency:  currencyFor(normalized, requested),
		Provider:  DisplayName,
		Timestamp: time.Now().UTC(),
	}, nil
}

// GetPriceHistory serves daily bars only.
func (p *Provider) GetPriceHistory(ctx context.Context, symbols []string, currency string, days int, interval provider.HistoryInterval) ([]provider.PriceHistory, error) {
	if interval == provider.IntervalHourly {
		return nil, provider.Config(provider.CodeHistoryUnsupported, "provider 'stooq' supports daily history only")
	}
	requested := strings.ToUpper(currency)
	out := make([]provider.PriceHistory, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range symbols {
		g.Go(func() error {
			h, err := p.history(gctx, s, requested, days)
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

func (p *Provider) history(ctx context.Context, symbol, requested string, days int) (provider.PriceHistory, error) {
	display := strings.ToUpper(strings.TrimSpace(symbol))
	normalized := normalize(symbol)
	q := url.Values{}
	q.Set("s", normalized)
	q.Set("i", "d")
	endpoint := p.cfg.BaseURL + "/q/d/l/?" + q.Encode()
	key := fmt.Sprintf("history:%s:%s:%d", p.cfg.BaseURL, normalized, days)

	p.log.Debug("fetching daily history", zap.String("symbol", normalized), zap.Int("days", days))
	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, historyTTL, DisplayName, endpoint, nil)
	if err != nil {
		return provider.PriceHistory{}, err
	}
	points := trimToDays(parseHistory(body), days)
	if len(points) == 0 {
		return provider.PriceHistory{}, provider.NoResults(DisplayName)
	}
	return provider.PriceHistory{
		Symbol:   display,
		Name:     display,
		Currency: currencyFor(normalized, requested),
		Provider: DisplayName,
		Points:   points,
	}, nil
}

// SearchTickers uses the Yahoo search endpoint and reports matches as Stooq's.
func (p *Provider) SearchTickers(ctx context.Context, query string, limit int) ([]provider.TickerMatch, error) {
	p.log.Debug("searching tickers", zap.String("query", query), zap.Int("limit", limit))
	return yahoo.Search(ctx, p.client, p.store, yahoo.SearchConfig{
		BaseURL:      p.cfg.SearchBaseURL,
		ProviderName: DisplayName,
		Namespace:    cacheNamespace,
		LowercaseKey: true,
	}, query, limit)
}

type quoteRow struct {
	symbol string
	open   *float64
	close  float64
}

// findQuoteRow scans Symbol,Date,Time,Open,High,Low,Close,... rows. Rows
// marked N/D have no data.
func findQuoteRow(body []byte, symbol string) (quoteRow, bool) {
	r := csv.NewReader(strings.NewReader(string(body)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return quoteRow{}, false
		}
		if err != nil {
			continue
		}
		if len(rec) < 7 || strings.TrimSpace(rec[1]) == "N/D" {
			continue
		}
		if strings.ToUpper(strings.TrimSpace(rec[0])) != symbol {
			continue
		}
		closeV, ok := parseDecimal(rec[6])
		if !ok {
			continue
		}
		row := quoteRow{symbol: symbol, close: closeV}
		if open, ok := parseDecimal(rec[3]); ok {
			row.open = &open
		}
		return row, true
	}
}

// parseHistory reads Date,Open,High,Low,Close[,Volume] rows, ascending.
func parseHistory(body []byte) []provider.PricePoint {
	r := csv.NewReader(strings.NewReader(string(body)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var points []provider.PricePoint
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(rec) < 5 {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSpace(rec[0]))
		if err != nil {
			continue
		}
		closeV, ok := parseDecimal(rec[4])
		if !ok {
			continue
		}
		points = append(points, provider.PricePoint{Timestamp: day.UTC(), Price: closeV})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points
}

func trimToDays(points []provider.PricePoint, days int) []provider.PricePoint {
	if len(points) == 0 || days <= 0 {
		return points
	}
	cutoff := points[len(points)-1].Timestamp.AddDate(0, 0, -days)
	out := points[:0]
	for _, pt := range points {
		if !pt.Timestamp.Before(cutoff) {
			out = append(out, pt)
		}
	}
	return out
}

func normalize(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".us"
}

func currencyFor(normalized, fallback string) string {
	if strings.HasSuffix(normalized, ".us") {
		return "USD"
	}
	return fallback
}

func parseDecimal(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func percentChange(open, closeV float64) *float64 {
	if open == 0 {
		return nil
	}
	v := (closeV - open) / open * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
