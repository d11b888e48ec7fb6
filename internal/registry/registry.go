// Package registry builds the provider list and resolves the order in which
// providers are consulted.
package registry

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"pricr/internal/httpx"
	"pricr/internal/logger"
	"pricr/internal/provider"
	"pricr/internal/provider/cache"
	"pricr/internal/provider/coingecko"
	"pricr/internal/provider/coinmarketcap"
	"pricr/internal/provider/stooq"
	"pricr/internal/provider/yahoo"
)

// Registry holds providers in registration order.
type Registry struct {
	providers []provider.Provider
}

func New(providers ...provider.Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) Providers() []provider.Provider { return r.providers }

// Lookup finds a provider by exact id.
func (r *Registry) Lookup(id string) (int, bool) {
	for i, p := range r.providers {
		if p.ID() == id {
			return i, true
		}
	}
	return -1, false
}

// IDs maps indices back to provider ids.
func (r *Registry) IDs(indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, i := range indices {
		out = append(out, r.providers[i].ID())
	}
	return out
}

// Options configures Default.
type Options struct {
	CMCAPIKey   string
	HTTPTimeout time.Duration
	UserAgent   string
	Store       *cache.Store
	Logger      *zap.Logger
	// BaseURLs overrides provider endpoints by id, mainly for tests.
	BaseURLs map[string]string
}

// Default registers coingecko, cmc, yahoo and stooq in that order. Every
// provider shares opts.Store and one transport.
func Default(opts Options) *Registry {
	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shared := httpx.New(timeout)
	if opts.UserAgent != "" {
		shared.UserAgent = opts.UserAgent
	}
	log := logger.OrNop(opts.Logger)
	log.Debug("registering providers", zap.Bool("cmc_api_key", strings.TrimSpace(opts.CMCAPIKey) != ""))

	return New(
		coingecko.New(coingecko.Config{BaseURL: opts.BaseURLs[coingecko.ID]}, shared, opts.Store, log),
		coinmarketcap.New(coinmarketcap.Config{
			APIKey:  strings.TrimSpace(opts.CMCAPIKey),
			BaseURL: opts.BaseURLs[coinmarketcap.ID],
		}, shared, opts.Store, log),
		yahoo.New(yahoo.Config{BaseURL: opts.BaseURLs[yahoo.ID]}, shared, opts.Store, log),
		stooq.New(stooq.Config{BaseURL: opts.BaseURLs[stooq.ID], SearchBaseURL: opts.BaseURLs[yahoo.ID]}, shared, opts.Store, log),
	)
}

// Resolve returns the indices of providers to consult, in priority order.
// An explicit provider pins a single entry. Otherwise the configured order
// comes first, then every remaining provider in registration order.
func Resolve(providers []provider.Provider, explicit *string, configured []string) ([]int, error) {
	reg := New(providers...)

	if explicit != nil {
		requested := strings.TrimSpace(*explicit)
		if requested == "" {
			return nil, provider.Config(provider.CodeInvalidInput, "provider cannot be empty -- use --list-providers to see options")
		}
		idx, ok := reg.Lookup(requested)
		if !ok {
			return nil, provider.Config(provider.CodeUnknownProvider, "unknown provider '%s' -- use --list-providers to see options", *explicit)
		}
		return []int{idx}, nil
	}

	var ordered []int
	seen := make(map[string]struct{}, len(providers))
	for _, raw := range configured {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		idx, ok := reg.Lookup(id)
		if !ok {
			return nil, provider.Config(provider.CodeUnknownConfiguredProvider,
				"unknown provider '%s' in [defaults].provider_order -- use --list-providers to see options", raw)
		}
		ordered = append(ordered, idx)
	}

	for i, p := range providers {
		if _, ok := seen[p.ID()]; ok {
			continue
		}
		seen[p.ID()] = struct{}{}
		ordered = append(ordered, i)
	}

	if len(ordered) == 0 {
		return nil, provider.Config(provider.CodeNoProviders, "no providers available -- use --list-providers to verify installation")
	}
	return ordered, nil
}
