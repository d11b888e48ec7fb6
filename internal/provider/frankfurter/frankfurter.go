// Package frankfurter reads ECB reference rates from the Frankfurter API.
// It is a rate source for conversions and fiat charts, not a price provider.
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricr/internal/fiat"
	"pricr/internal/httpx"
	"pricr/internal/logger"
	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

const (
	DisplayName    = "Frankfurter/ECB"
	DefaultBaseURL = "https://api.frankfurter.dev/v1"

	// ECB publishes once per working day.
	ratesTTL   = time.Hour
	historyTTL = 12 * time.Hour

	cacheNamespace = "frankfurter"
	dateLayout     = "2006-01-02"
)

// EarliestDate is the first day ECB reference rates are published for.
var EarliestDate = time.Date(1999, 1, 4, 0, 0, 0, 0, time.UTC)

type Config struct {
	BaseURL string
}

// Source implements provider.RateSource.
type Source struct {
	baseURL string
	client  *httpx.Client
	store   *cache.Store
	log     *zap.Logger
}

func New(cfg Config, hc *httpx.Client, store *cache.Store, log *zap.Logger) *Source {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Source{baseURL: base, client: hc, store: store, log: logger.OrNop(log).With(zap.String("provider", "frankfurter"))}
}

func (s *Source) Name() string { return DisplayName }

type latestResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// GetRates maps each of to onto "1 from = rate target".
func (s *Source) GetRates(ctx context.Context, from string, to []string) (map[string]float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	targets := upperAll(to)
	if from == "" || len(targets) == 0 {
		return nil, provider.Config(provider.CodeInvalidInput, "fiat rates need a source and at least one target currency")
	}

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", strings.Join(targets, ","))
	endpoint := s.baseURL + "/latest?" + q.Encode()
	key := fmt.Sprintf("latest:%s:%s:%s", s.baseURL, from, strings.Join(targets, ","))

	s.log.Debug("fetching fiat rates", zap.String("from", from), zap.Strings("to", targets))
	body, err := s.client.CachedGet(ctx, s.store, cacheNamespace, key, ratesTTL, DisplayName, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var resp latestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, provider.Parse(DisplayName, "rates response", err)
	}

	rates := make(map[string]float64, len(resp.Rates))
	for code, rate := range resp.Rates {
		if rate > 0 && !math.IsInf(rate, 0) {
			rates[strings.ToUpper(code)] = rate
		}
	}
	if len(rates) == 0 {
		return nil, provider.NoResults(DisplayName)
	}
	return rates, nil
}

type historyResponse struct {
	Base  string                        `json:"base"`
	Rates map[string]map[string]float64 `json:"rates"`
}

// GetHistory returns one daily series per target, named "BASE/TARGET".
// Targets the API returned no rates for are omitted.
func (s *Source) GetHistory(ctx context.Context, base string, targets []string, start, end time.Time) ([]provider.PriceHistory, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	codes := upperAll(targets)
	if base == "" || len(codes) == 0 {
		return nil, provider.Config(provider.CodeInvalidInput, "fiat history needs a base and at least one target currency")
	}
	if end.Before(start) {
		return nil, provider.Config(provider.CodeInvalidInput, "fiat history window ends before it starts")
	}

	span := start.UTC().Format(dateLayout) + ".." + end.UTC().Format(dateLayout)
	q := url.Values{}
	q.Set("from", base)
	q.Set("to", strings.Join(codes, ","))
	endpoint := s.baseURL + "/" + span + "?" + q.Encode()
	key := fmt.Sprintf("history:%s:%s:%s:%s", s.baseURL, base, strings.Join(codes, ","), span)

	s.log.Debug("fetching fiat history", zap.String("base", base), zap.Strings("targets", codes), zap.String("span", span))
	body, err := s.client.CachedGet(ctx, s.store, cacheNamespace, key, historyTTL, DisplayName, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, provider.Parse(DisplayName, "history response", err)
	}

	series := make(map[string][]provider.PricePoint, len(codes))
	for day, rates := range resp.Rates {
		ts, err := time.Parse(dateLayout, day)
		if err != nil {
			s.log.Debug("skipping malformed history date", zap.String("date", day))
			continue
		}
		for code, rate := range rates {
			if rate <= 0 || math.IsInf(rate, 0) {
				continue
			}
			code = strings.ToUpper(code)
			series[code] = append(series[code], provider.PricePoint{Timestamp: ts.UTC(), Price: rate})
		}
	}

	out := make([]provider.PriceHistory, 0, len(codes))
	for _, code := range codes {
		points := series[code]
		if len(points) == 0 {
			continue
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
		out = append(out, provider.PriceHistory{
			Symbol:   base + "/" + code,
			Name:     fiat.Name(code),
			Currency: code,
			Provider: DisplayName,
			Points:   points,
		})
	}
	if len(out) == 0 {
		return nil, provider.NoResults(DisplayName)
	}
	return out, nil
}

func upperAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
