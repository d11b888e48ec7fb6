// Package aggregate merges answers from several unreliable providers: a
// per-symbol fallback waterfall for prices, a deduplicating ticker search and
// the fiat/crypto conversion orchestrator.
package aggregate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricr/internal/logger"
	"pricr/internal/metrics"
	"pricr/internal/provider"
)

// Engine consults Providers in Order. Order holds indices into Providers,
// usually produced by registry.Resolve.
type Engine struct {
	Providers []provider.Provider
	Order     []int
	Log       *zap.Logger
}

// FetchPrices runs the price waterfall with a no-op logger.
func FetchPrices(ctx context.Context, providers []provider.Provider, order []int, symbols []string, currency string) ([]provider.CoinPrice, error) {
	e := &Engine{Providers: providers, Order: order}
	return e.FetchPrices(ctx, symbols, currency)
}

// SearchTickers runs the merged ticker search with a no-op logger.
func SearchTickers(ctx context.Context, providers []provider.Provider, order []int, query string, limit int) ([]provider.TickerMatch, error) {
	e := &Engine{Providers: providers, Order: order}
	return e.SearchTickers(ctx, query, limit)
}

type pendingSymbol struct {
	index  int
	symbol string
}

// FetchPrices asks each provider in order for the symbols still unresolved.
// A symbol is settled by the first provider that returns it. The result keeps
// input order and omits symbols nobody priced.
func (e *Engine) FetchPrices(ctx context.Context, symbols []string, currency string) ([]provider.CoinPrice, error) {
	if len(symbols) == 0 {
		return nil, provider.Config(provider.CodeInvalidInput, "no symbols provided")
	}
	log := logger.OrNop(e.Log)

	pending := make([]pendingSymbol, len(symbols))
	for i, s := range symbols {
		pending[i] = pendingSymbol{index: i, symbol: s}
	}
	resolved := make([]*provider.CoinPrice, len(symbols))
	var lastErr error

	for _, idx := range e.Order {
		if len(pending) == 0 {
			break
		}
		p := e.Providers[idx]
		request := make([]string, len(pending))
		for i, ps := range pending {
			request[i] = ps.symbol
		}

		start := time.Now()
		found, err := p.GetPrices(ctx, request, currency)
		metrics.ObserveProviderCall(p.ID(), "prices", start, err)
		if err != nil {
			if ignorablePriceError(err) {
				log.Info("skipping provider during price fallback", zap.String("provider", p.ID()), zap.Error(err))
			} else {
				log.Warn("price lookup failed for provider", zap.String("provider", p.ID()), zap.Error(err))
				lastErr = err
			}
			continue
		}

		bySymbol := make(map[string][]provider.CoinPrice, len(found))
		for _, price := range found {
			key := normalizeSymbol(price.Symbol)
			bySymbol[key] = append(bySymbol[key], price)
		}
		next := pending[:0]
		for _, ps := range pending {
			key := normalizeSymbol(ps.symbol)
			bucket := bySymbol[key]
			if len(bucket) == 0 {
				next = append(next, ps)
				continue
			}
			price := bucket[len(bucket)-1]
			bySymbol[key] = bucket[:len(bucket)-1]
			resolved[ps.index] = &price
		}
		pending = next
		log.Debug("provider round finished",
			zap.String("provider", p.ID()),
			zap.Int("returned", len(found)),
			zap.Int("pending", len(pending)))
	}

	out := make([]provider.CoinPrice, 0, len(symbols))
	for _, r := range resolved {
		if r != nil {
			out = append(out, *r)
		}
	}
	if len(out) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, provider.NoResults("")
	}
	return out, nil
}

type matchKey struct {
	symbol, name, exchange, assetType string
}

func keyOf(m provider.TickerMatch) matchKey {
	return matchKey{
		symbol:    strings.ToUpper(strings.TrimSpace(m.Symbol)),
		name:      strings.ToLower(strings.TrimSpace(m.Name)),
		exchange:  strings.ToLower(strings.TrimSpace(m.Exchange)),
		assetType: strings.ToLower(strings.TrimSpace(m.AssetType)),
	}
}

// SearchTickers queries every provider in order and merges hits that name
// the same instrument. New instruments stop being added once limit is
// reached, but later duplicates still record their provider.
func (e *Engine) SearchTickers(ctx context.Context, query string, limit int) ([]provider.TickerMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, provider.Config(provider.CodeInvalidInput, "search mode requires a query -- usage: pricr --search apple")
	}
	if limit < 1 {
		return nil, provider.Config(provider.CodeInvalidInput, "search limit must be at least 1")
	}
	log := logger.OrNop(e.Log)

	var (
		matches []provider.TickerMatch
		byKey   = make(map[matchKey]int)
		lastErr error
	)
	for _, idx := range e.Order {
		p := e.Providers[idx]
		start := time.Now()
		found, err := provider.SearchTickers(ctx, p, query, limit)
		metrics.ObserveProviderCall(p.ID(), "search", start, err)
		if err != nil {
			if ignorableSearchError(err) {
				log.Info("skipping unsupported or empty search provider", zap.String("provider", p.ID()), zap.Error(err))
			} else {
				log.Warn("ticker search failed for provider", zap.String("provider", p.ID()), zap.Error(err))
				lastErr = err
			}
			continue
		}
		for _, candidate := range found {
			key := keyOf(candidate)
			if at, ok := byKey[key]; ok {
				matches[at].Provider = AppendProviderName(matches[at].Provider, candidate.Provider)
				continue
			}
			if len(matches) >= limit {
				continue
			}
			byKey[key] = len(matches)
			matches = append(matches, candidate)
		}
	}

	if len(matches) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, provider.NoResults("")
	}
	return matches, nil
}

// AppendProviderName adds name to a comma-separated provider list unless it
// is already present, compared case-insensitively.
func AppendProviderName(existing, name string) string {
	for _, part := range strings.Split(existing, ",") {
		if strings.EqualFold(strings.TrimSpace(part), name) {
			return existing
		}
	}
	if strings.TrimSpace(existing) == "" {
		return name
	}
	return existing + ", " + name
}

func normalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Missing credentials only mean the provider sits this round out.
func ignorablePriceError(err error) bool {
	return provider.IsNoResults(err) || provider.HasCode(err, provider.CodeMissingCredential)
}

func ignorableSearchError(err error) bool {
	return provider.IsNoResults(err) || provider.HasCode(err, provider.CodeSearchUnsupported)
}
