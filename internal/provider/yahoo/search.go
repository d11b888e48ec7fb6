package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"pricr/internal/httpx"
	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

const unknownField = "Unknown"

// SearchConfig lets other providers reuse the Yahoo search endpoint under
// their own name and cache namespace.
type SearchConfig struct {
	BaseURL      string
	ProviderName string
	Namespace    string
	// LowercaseKey folds the query into the cache key case-insensitively.
	LowercaseKey bool
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		ExchDisp  string `json:"exchDisp"`
		TypeDisp  string `json:"typeDisp"`
	} `json:"quotes"`
}

// Search queries /v1/finance/search and attributes matches to cfg.ProviderName.
func Search(ctx context.Context, hc *httpx.Client, store *cache.Store, cfg SearchConfig, query string, limit int) ([]provider.TickerMatch, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, provider.Config(provider.CodeInvalidInput, "ticker search query cannot be empty")
	}
	if limit < 1 {
		return nil, provider.Config(provider.CodeInvalidInput, "ticker search limit must be at least 1")
	}

	q := url.Values{}
	q.Set("q", trimmed)
	q.Set("quotesCount", strconv.Itoa(limit))
	q.Set("newsCount", "0")
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/v1/finance/search?" + q.Encode()
	keyQuery := trimmed
	if cfg.LowercaseKey {
		keyQuery = strings.ToLower(trimmed)
	}
	key := fmt.Sprintf("search:%s:%s:%d", cfg.BaseURL, keyQuery, limit)

	body, err := hc.CachedGet(ctx, store, cfg.Namespace, key, searchTTL, cfg.ProviderName, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return ParseSearch(body, cfg.ProviderName, limit)
}

// ParseSearch converts a search response body into at most limit matches.
func ParseSearch(body []byte, providerName string, limit int) ([]provider.TickerMatch, error) {
	var raw searchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, provider.Parse(providerName, "ticker search", err)
	}
	out := make([]provider.TickerMatch, 0, min(limit, len(raw.Quotes)))
	for _, q := range raw.Quotes {
		if len(out) >= limit {
			break
		}
		symbol := strings.ToUpper(strings.TrimSpace(q.Symbol))
		if symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		if name == "" {
			name = symbol
		}
		out = append(out, provider.TickerMatch{
			Symbol:    symbol,
			Name:      name,
			Exchange:  orUnknown(q.ExchDisp),
			AssetType: orUnknown(q.TypeDisp),
			Provider:  providerName,
		})
	}
	if len(out) == 0 {
		return nil, provider.NoResults(providerName)
	}
	return out, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownField
	}
	return s
}
