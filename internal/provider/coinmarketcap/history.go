package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

// convertIDs are the web chart API ids of supported quote currencies.
var convertIDs = map[string]int64{
	"USD": 2781,
	"EUR": 2790,
	"GBP": 2791,
	"JPY": 2797,
}

// staticCoins backs catalog lookups when the catalog is unavailable.
var staticCoins = map[string]catalogEntry{
	"BTC":   {1, "Bitcoin"},
	"ETH":   {1027, "Ethereum"},
	"USDT":  {825, "Tether"},
	"BNB":   {1839, "BNB"},
	"SOL":   {5426, "Solana"},
	"XRP":   {52, "XRP"},
	"USDC":  {3408, "USDC"},
	"ADA":   {2010, "Cardano"},
	"DOGE":  {74, "Dogecoin"},
	"DOT":   {6636, "Polkadot"},
	"MATIC": {3890, "Polygon"},
	"LTC":   {2, "Litecoin"},
	"AVAX":  {5805, "Avalanche"},
	"LINK":  {1975, "Chainlink"},
	"ATOM":  {3794, "Cosmos"},
	"UNI":   {7083, "Uniswap"},
	"XLM":   {512, "Stellar"},
	"SHIB":  {5994, "Shiba Inu"},
	"TRX":   {1958, "TRON"},
	"TON":   {11419, "Toncoin"},
	"PEPE":  {24478, "Pepe"},
	"NEAR":  {6535, "NEAR"},
	"APT":   {21794, "Aptos"},
	"ARB":   {11841, "Arbitrum"},
	"OP":    {11840, "Optimism"},
	"SUI":   {20947, "Sui"},
}

type catalogCoin struct {
	ID     int64  `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// lookupCoin resolves symbol via the coin catalog, loading it on first use.
// Concurrent first lookups share one load; a failed load leaves an empty
// catalog so the static table is used for the rest of the instance.
func (p *Provider) lookupCoin(ctx context.Context, symbol string) (catalogEntry, bool) {
	p.catalogMu.RLock()
	catalog := p.catalog
	p.catalogMu.RUnlock()

	if catalog == nil {
		v, _, _ := p.sf.Do("catalog", func() (any, error) {
			p.catalogMu.RLock()
			loaded := p.catalog
			p.catalogMu.RUnlock()
			if loaded != nil {
				return loaded, nil
			}

			fetched, err := p.loadCatalog(ctx)
			if err != nil {
				p.log.Debug("coin catalog unavailable", zap.String("url", p.cfg.CatalogURL), zap.Error(err))
				fetched = map[string]catalogEntry{}
			}

			p.catalogMu.Lock()
			if p.catalog == nil {
				p.catalog = fetched
			}
			loaded = p.catalog
			p.catalogMu.Unlock()
			return loaded, nil
		})
		catalog = v.(map[string]catalogEntry)
	}

	if e, ok := catalog[symbol]; ok {
		return e, true
	}
	e, ok := staticCoins[symbol]
	return e, ok
}

func (p *Provider) loadCatalog(ctx context.Context) (map[string]catalogEntry, error) {
	key := "coin_summaries:" + p.cfg.CatalogURL
	if body, ok := cache.Read[string](p.store, cacheNamespace, key, catalogTTL); ok {
		if catalog, err := parseCatalog([]byte(body)); err == nil {
			p.log.Debug("using cached coin catalog")
			return catalog, nil
		}
		p.log.Debug("cached coin catalog is invalid, refetching")
	}
	body, err := p.client.Get(ctx, DisplayName, p.cfg.CatalogURL, nil)
	if err != nil {
		return nil, err
	}
	catalog, err := parseCatalog(body)
	if err != nil {
		return nil, err
	}
	p.store.Write(cacheNamespace, key, string(body))
	return catalog, nil
}

// parseCatalog keeps the first entry seen for each symbol.
func parseCatalog(body []byte) (map[string]catalogEntry, error) {
	var coins []catalogCoin
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, provider.Parse(DisplayName, "coin catalog", err)
	}
	catalog := make(map[string]catalogEntry, len(coins))
	for _, c := range coins {
		sym := strings.ToUpper(c.Symbol)
		if _, ok := catalog[sym]; !ok {
			catalog[sym] = catalogEntry{ID: c.ID, Name: c.Name}
		}
	}
	return catalog, nil
}

type webChartResponse struct {
	Data struct {
		Points []struct {
			Seconds string    `json:"s"`
			Values  []float64 `json:"v"`
		} `json:"points"`
	} `json:"data"`
}

func (p *Provider) webChartHistory(ctx context.Context, symbol string, coin catalogEntry, convert string, convertID int64, days int, param string) (provider.PriceHistory, error) {
	interval := webInterval(param)
	rng := webRange(days)
	q := url.Values{}
	q.Set("id", strconv.FormatInt(coin.ID, 10))
	q.Set("interval", interval)
	q.Set("convertId", strconv.FormatInt(convertID, 10))
	q.Set("range", rng)
	endpoint := p.cfg.ChartBaseURL + "/cryptocurrency/detail/chart?" + q.Encode()
	key := fmt.Sprintf("chart:%s:%d:%d:%s:%s", p.cfg.ChartBaseURL, coin.ID, convertID, interval, strings.ToLower(rng))
	headers := map[string]string{"Accept": "application/json, text/plain, */*", "platform": "web"}

	p.log.Debug("fetching web chart", zap.String("symbol", symbol), zap.String("interval", interval), zap.String("range", rng))
	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, chartTTL(interval), DisplayName, endpoint, headers)
	if err != nil {
		return provider.PriceHistory{}, err
	}
	var raw webChartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return provider.PriceHistory{}, provider.Parse(DisplayName, "web chart", err)
	}

	points := make([]provider.PricePoint, 0, len(raw.Data.Points))
	for _, pt := range raw.Data.Points {
		secs, err := strconv.ParseInt(pt.Seconds, 10, 64)
		if err != nil || len(pt.Values) == 0 || !finite(pt.Values[0]) {
			continue
		}
		points = append(points, provider.PricePoint{Timestamp: time.Unix(secs, 0).UTC(), Price: pt.Values[0]})
	}
	sortPoints(points)
	points = trimToDays(points, days)
	if len(points) == 0 {
		return provider.PriceHistory{}, provider.NoResults(DisplayName)
	}
	return provider.PriceHistory{Symbol: symbol, Name: coin.Name, Currency: convert, Provider: DisplayName, Points: points}, nil
}

type historicalResponse struct {
	Data   json.RawMessage `json:"data"`
	Status *status         `json:"status"`
}

type historicalPayload struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Quotes []struct {
		Timestamp string                     `json:"timestamp"`
		Quote     map[string]json.RawMessage `json:"quote"`
	} `json:"quotes"`
}

func (p *Provider) proHistory(ctx context.Context, symbol, convert string, days int, param string) (provider.PriceHistory, error) {
	if err := p.requireKey(); err != nil {
		return provider.PriceHistory{}, err
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("convert", convert)
	q.Set("time_start", start.Format(time.RFC3339))
	q.Set("time_end", end.Format(time.RFC3339))
	q.Set("interval", param)
	endpoint := p.cfg.BaseURL + "/cryptocurrency/quotes/historical?" + q.Encode()
	key := fmt.Sprintf("quotes_historical:%s:%s:%s:%d:%s", p.cfg.BaseURL, symbol, convert, days, param)

	body, err := p.client.CachedGet(ctx, p.store, cacheNamespace, key, chartTTL(param), DisplayName, endpoint, p.keyHeader())
	if err != nil {
		return provider.PriceHistory{}, err
	}
	var raw historicalResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return provider.PriceHistory{}, provider.Parse(DisplayName, "history response", err)
	}
	if raw.Status != nil && raw.Status.ErrorMessage != "" {
		return provider.PriceHistory{}, provider.RemoteAPI(DisplayName, "%s", raw.Status.ErrorMessage)
	}
	return parseHistorical(raw.Data, symbol, convert)
}

// parseHistorical accepts data as the payload itself, as {SYM: payload}
// or as {SYM: [payload, ...]}.
func parseHistorical(data json.RawMessage, symbol, convert string) (provider.PriceHistory, error) {
	payload, err := historicalPayloadFor(data, symbol)
	if err != nil {
		return provider.PriceHistory{}, err
	}

	points := make([]provider.PricePoint, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		ts, err := time.Parse(time.RFC3339, q.Timestamp)
		if err != nil {
			continue
		}
		raw, ok := q.Quote[convert]
		if !ok {
			raw, ok = q.Quote[strings.ToLower(convert)]
		}
		if !ok {
			continue
		}
		var qt quote
		if json.Unmarshal(raw, &qt) != nil || qt.Price == nil || !finite(*qt.Price) {
			continue
		}
		points = append(points, provider.PricePoint{Timestamp: ts.UTC(), Price: *qt.Price})
	}
	sortPoints(points)
	if len(points) == 0 {
		return provider.PriceHistory{}, provider.NoResults(DisplayName)
	}

	name := payload.Name
	if name == "" {
		name = symbol
	}
	sym := strings.ToUpper(payload.Symbol)
	if sym == "" {
		sym = symbol
	}
	return provider.PriceHistory{Symbol: sym, Name: name, Currency: convert, Provider: DisplayName, Points: points}, nil
}

func historicalPayloadFor(data json.RawMessage, symbol string) (historicalPayload, error) {
	missing := provider.Parse(DisplayName, "history response", fmt.Errorf("missing payload for %s", symbol))

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return historicalPayload{}, missing
	}
	if _, ok := probe["quotes"]; ok {
		var hp historicalPayload
		if err := json.Unmarshal(data, &hp); err != nil {
			return historicalPayload{}, provider.Parse(DisplayName, "history payload", err)
		}
		return hp, nil
	}
	bySymbol, ok := probe[symbol]
	if !ok {
		return historicalPayload{}, missing
	}
	if strings.HasPrefix(strings.TrimSpace(string(bySymbol)), "[") {
		var list []historicalPayload
		if err := json.Unmarshal(bySymbol, &list); err != nil || len(list) == 0 {
			return historicalPayload{}, missing
		}
		return list[0], nil
	}
	var hp historicalPayload
	if err := json.Unmarshal(bySymbol, &hp); err != nil || hp.Quotes == nil {
		return historicalPayload{}, missing
	}
	return hp, nil
}

func webInterval(param string) string {
	if param == "hourly" {
		return "1h"
	}
	return "1d"
}

func webRange(days int) string {
	switch {
	case days <= 1:
		return "1D"
	case days <= 7:
		return "7D"
	case days <= 30:
		return "1M"
	case days <= 90:
		return "3M"
	case days <= 180:
		return "6M"
	default:
		return "1Y"
	}
}

func sortPoints(points []provider.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
}

// trimToDays keeps points no older than days before the newest one.
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
