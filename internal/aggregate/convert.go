package aggregate

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pricr/internal/fiat"
	"pricr/internal/logger"
	"pricr/internal/metrics"
	"pricr/internal/provider"
)

// Conversion is an amount of one fiat currency expressed in a target.
// Rate is how much of the source currency one unit of the target costs.
type Conversion struct {
	FromAmount   float64   `json:"from_amount"`
	FromCurrency string    `json:"from_currency"`
	ToSymbol     string    `json:"to_symbol"`
	ToName       string    `json:"to_name"`
	ToAmount     float64   `json:"to_amount"`
	Rate         float64   `json:"rate"`
	Provider     string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

// Converter turns a fiat amount into fiat and crypto targets. Pinned means
// the first provider in Order is used alone, without fallback.
type Converter struct {
	Rates     provider.RateSource
	Providers []provider.Provider
	Order     []int
	Pinned    bool
	Log       *zap.Logger

	now func() time.Time
}

// Convert fetches fiat rates and crypto prices concurrently when both kinds
// of target are present. Fiat conversions come first in requested order,
// then crypto conversions in fetch order.
func (c *Converter) Convert(ctx context.Context, amount float64, from string, targets []string) ([]Conversion, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	var fiatTargets, cryptoTargets []string
	for _, t := range targets {
		if fiat.IsKnown(t) {
			fiatTargets = append(fiatTargets, strings.ToUpper(t))
		} else {
			cryptoTargets = append(cryptoTargets, t)
		}
	}
	if len(fiatTargets) == 0 && len(cryptoTargets) == 0 {
		return nil, provider.Config(provider.CodeInvalidInput, "calc mode requires at least one target coin -- usage: pricr 3.5EUR xmr")
	}
	log := logger.OrNop(c.Log)
	log.Info("fetching prices for conversion",
		zap.Float64("amount", amount),
		zap.String("currency", from),
		zap.Strings("fiat_targets", fiatTargets),
		zap.Strings("crypto_targets", cryptoTargets),
		zap.Bool("pinned", c.Pinned))

	var (
		rates  map[string]float64
		prices []provider.CoinPrice
	)
	g, gctx := errgroup.WithContext(ctx)
	if len(fiatTargets) > 0 {
		g.Go(func() error {
			var err error
			rates, err = c.fetchRates(gctx, from, fiatTargets)
			return err
		})
	}
	if len(cryptoTargets) > 0 {
		g.Go(func() error {
			var err error
			prices, err = c.fetchPrices(gctx, cryptoTargets, from)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	ts := now().UTC()
	out := make([]Conversion, 0, len(targets))
	for _, code := range fiatTargets {
		rate, ok := rates[code]
		if !ok || !usable(rate) {
			continue
		}
		out = append(out, Conversion{
			FromAmount:   amount,
			FromCurrency: from,
			ToSymbol:     code,
			ToName:       fiat.Name(code),
			ToAmount:     amount * rate,
			Rate:         1 / rate,
			Provider:     c.Rates.Name(),
			Timestamp:    ts,
		})
	}
	for _, p := range prices {
		if !usable(p.Price) {
			log.Debug("skipping unusable price", zap.String("symbol", p.Symbol), zap.Float64("price", p.Price))
			continue
		}
		out = append(out, Conversion{
			FromAmount:   amount,
			FromCurrency: from,
			ToSymbol:     p.Symbol,
			ToName:       p.Name,
			ToAmount:     amount / p.Price,
			Rate:         p.Price,
			Provider:     p.Provider,
			Timestamp:    ts,
		})
	}
	return out, nil
}

func (c *Converter) fetchRates(ctx context.Context, from string, to []string) (map[string]float64, error) {
	if c.Rates == nil {
		return nil, provider.Config(provider.CodeInvalidInput, "no fiat rate source configured")
	}
	start := time.Now()
	rates, err := c.Rates.GetRates(ctx, from, to)
	metrics.ObserveProviderCall("frankfurter", "rates", start, err)
	return rates, err
}

func (c *Converter) fetchPrices(ctx context.Context, symbols []string, currency string) ([]provider.CoinPrice, error) {
	if c.Pinned {
		if len(c.Order) == 0 {
			return nil, provider.Config(provider.CodeNoProviders, "no providers available -- use --list-providers to verify installation")
		}
		p := c.Providers[c.Order[0]]
		start := time.Now()
		prices, err := p.GetPrices(ctx, symbols, currency)
		metrics.ObserveProviderCall(p.ID(), "prices", start, err)
		return prices, err
	}
	e := &Engine{Providers: c.Providers, Order: c.Order, Log: c.Log}
	return e.FetchPrices(ctx, symbols, currency)
}

func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
