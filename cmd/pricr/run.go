package main

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricr/internal/aggregate"
	"pricr/internal/config"
	"pricr/internal/fiat"
	"pricr/internal/httpx"
	"pricr/internal/logger"
	"pricr/internal/provider"
	"pricr/internal/provider/cache"
	"pricr/internal/provider/frankfurter"
	"pricr/internal/registry"
)

// runner executes one invocation. Endpoint overrides exist for tests.
type runner struct {
	out            io.Writer
	now            func() time.Time
	baseURLs       map[string]string
	frankfurterURL string
}

type session struct {
	opts     options
	cfg      config.Config
	log      *zap.Logger
	reg      *registry.Registry
	order    []int
	rates    *frankfurter.Source
	currency string
	out      io.Writer
}

func (r *runner) run(ctx context.Context, o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	level := logger.LevelForVerbosity(o.verbosity)
	if o.verbosity == 0 && cfg.Logging.Level != "" {
		level = cfg.Logging.Level
	}
	log, err := logger.New(logger.Options{
		Level:      level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	storeOpts := []cache.Option{cache.WithLogger(log)}
	if cfg.Cache.Dir != "" {
		storeOpts = append(storeOpts, cache.WithRoot(cfg.Cache.Dir))
	}
	if cfg.Cache.Disabled {
		storeOpts = append(storeOpts, cache.Disabled())
	}
	store := cache.New(storeOpts...)
	log.Debug("cache ready", zap.String("root", store.Root()), zap.Bool("enabled", store.Enabled()))

	apiKey := strings.TrimSpace(o.apiKey)
	if apiKey == "" {
		apiKey = cfg.CoinMarketCap.APIKey
	}
	reg := registry.Default(registry.Options{
		CMCAPIKey:   apiKey,
		HTTPTimeout: cfg.HTTP.Timeout,
		UserAgent:   cfg.HTTP.UserAgent,
		Store:       store,
		Logger:      log,
		BaseURLs:    r.baseURLs,
	})

	if o.listProviders {
		return printProviders(r.out, reg.Providers())
	}

	order, err := registry.Resolve(reg.Providers(), o.provider, cfg.Defaults.ProviderOrder)
	if err != nil {
		return err
	}

	hc := httpx.New(cfg.HTTP.Timeout)
	if cfg.HTTP.UserAgent != "" {
		hc.UserAgent = cfg.HTTP.UserAgent
	}
	currency := o.currency
	if currency == "" {
		currency = cfg.Defaults.Currency
	}
	s := &session{
		opts:     o,
		cfg:      cfg,
		log:      log,
		reg:      reg,
		order:    order,
		rates:    frankfurter.New(frankfurter.Config{BaseURL: r.frankfurterURL}, hc, store, log),
		currency: currency,
		out:      r.out,
	}

	if q := resolveSearchQuery(o); q != nil {
		return s.search(ctx, *q)
	}

	symbols, err := expandSymbols(o.symbols, cfg)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return provider.Config(provider.CodeInvalidInput, "no symbols provided -- usage: pricr btc eth")
	}

	window, err := resolveChartWindow(o, r.now().UTC())
	if err != nil {
		return err
	}

	if o.chart && fiat.IsKnown(symbols[0]) {
		return s.fiatChart(ctx, symbols, window)
	}
	if amount, ok := fiat.ParseAmount(symbols[0]); ok {
		if o.chart {
			return provider.Config(provider.CodeInvalidInput, "chart mode is only available for direct symbol lookup")
		}
		return s.convert(ctx, amount, symbols[1:])
	}
	if o.chart {
		return s.chart(ctx, symbols, window)
	}
	return s.prices(ctx, symbols)
}

func (s *session) pinned() bool { return s.opts.provider != nil }

func (s *session) primary() provider.Provider { return s.reg.Providers()[s.order[0]] }

func (s *session) engine() *aggregate.Engine {
	return &aggregate.Engine{Providers: s.reg.Providers(), Order: s.order, Log: s.log}
}

func (s *session) search(ctx context.Context, query string) error {
	if query == "" {
		return provider.Config(provider.CodeInvalidInput, "search mode requires a query -- usage: pricr --search apple")
	}
	limit := s.opts.searchLimit
	var (
		matches []provider.TickerMatch
		err     error
	)
	if s.pinned() {
		p := s.primary()
		s.log.Info("searching tickers", zap.String("provider", p.ID()), zap.String("query", query), zap.Int("limit", limit))
		matches, err = provider.SearchTickers(ctx, p, query, limit)
	} else {
		s.log.Info("searching tickers across providers",
			zap.Strings("providers", s.reg.IDs(s.order)), zap.String("query", query), zap.Int("limit", limit))
		matches, err = s.engine().SearchTickers(ctx, query, limit)
	}
	if err != nil {
		return err
	}
	if s.opts.json {
		return printJSON(s.out, matches)
	}
	return printTickerMatches(s.out, matches)
}

func (s *session) prices(ctx context.Context, symbols []string) error {
	var (
		prices []provider.CoinPrice
		err    error
	)
	if s.pinned() {
		p := s.primary()
		s.log.Info("fetching prices", zap.String("provider", p.ID()), zap.Strings("symbols", symbols), zap.String("currency", s.currency))
		prices, err = p.GetPrices(ctx, symbols, s.currency)
	} else {
		s.log.Info("fetching prices with provider fallback",
			zap.Strings("providers", s.reg.IDs(s.order)), zap.Strings("symbols", symbols), zap.String("currency", s.currency))
		prices, err = s.engine().FetchPrices(ctx, symbols, s.currency)
	}
	if err != nil {
		return err
	}
	if s.opts.json {
		return printJSON(s.out, prices)
	}
	return printPrices(s.out, prices)
}

func (s *session) convert(ctx context.Context, amount fiat.Amount, targets []string) error {
	if len(targets) == 0 {
		return provider.Config(provider.CodeInvalidInput, "calc mode requires at least one target coin -- usage: pricr 3.5EUR xmr")
	}
	c := &aggregate.Converter{
		Rates:     s.rates,
		Providers: s.reg.Providers(),
		Order:     s.order,
		Pinned:    s.pinned(),
		Log:       s.log,
	}
	conversions, err := c.Convert(ctx, amount.Value, amount.Currency, targets)
	if err != nil {
		return err
	}
	if s.opts.json {
		return printJSON(s.out, conversions)
	}
	return printConversions(s.out, conversions)
}

func (s *session) chart(ctx context.Context, symbols []string, w chartWindow) error {
	interval, ok := provider.ParseInterval(strings.ToLower(s.opts.sampling))
	if !ok {
		return provider.Config(provider.CodeInvalidInput, "invalid --sampling value %q (auto, hourly, daily)", s.opts.sampling)
	}
	p := s.primary()
	s.log.Info("fetching historical prices",
		zap.String("provider", p.ID()),
		zap.Strings("symbols", symbols),
		zap.String("currency", s.currency),
		zap.String("range", w.label),
		zap.Int("fetch_days", provider.DaysSince(w.start, time.Now())))
	histories, err := provider.GetPriceHistoryWindow(ctx, p, symbols, s.currency, w.start, w.end, interval)
	if err != nil {
		return err
	}
	if s.opts.json {
		return printJSON(s.out, histories)
	}
	return printHistories(s.out, histories, w.label, interval)
}

func (s *session) fiatChart(ctx context.Context, symbols []string, w chartWindow) error {
	base := strings.ToUpper(symbols[0])
	targets := make([]string, 0, len(symbols)-1)
	for _, t := range symbols[1:] {
		targets = append(targets, strings.ToUpper(t))
	}
	if len(targets) == 0 {
		return provider.Config(provider.CodeInvalidInput, "fiat chart mode requires a base and at least one target currency -- usage: pricr --chart usd eur")
	}
	for _, t := range targets {
		if !fiat.IsKnown(t) {
			return provider.Config(provider.CodeInvalidInput, "fiat chart mode only supports fiat currency codes (example: usd eur gbp)")
		}
	}
	interval, ok := provider.ParseInterval(strings.ToLower(s.opts.sampling))
	if !ok {
		return provider.Config(provider.CodeInvalidInput, "invalid --sampling value %q (auto, hourly, daily)", s.opts.sampling)
	}
	if interval == provider.IntervalHourly {
		return provider.Config(provider.CodeHistoryUnsupported, "fiat chart mode supports daily history only -- use --sampling auto or --sampling daily")
	}

	start := frankfurter.EarliestDate
	if w.start != nil && w.start.After(start) {
		start = *w.start
	}
	s.log.Info("fetching fiat historical rates",
		zap.String("base", base), zap.Strings("targets", targets), zap.String("range", w.label))
	histories, err := s.rates.GetHistory(ctx, base, targets, start, w.end)
	if err != nil {
		return err
	}
	histories = provider.TrimToWindow(histories, w.start, w.end)
	if len(histories) == 0 {
		return provider.NoResults(frankfurter.DisplayName)
	}
	if s.opts.json {
		return printJSON(s.out, histories)
	}
	return printHistories(s.out, histories, w.label, provider.IntervalDaily)
}
