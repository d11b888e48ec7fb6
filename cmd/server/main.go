package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pricr/internal/aggregate"
	"pricr/internal/config"
	"pricr/internal/httpx"
	"pricr/internal/logger"
	"pricr/internal/metrics"
	"pricr/internal/provider/cache"
	"pricr/internal/provider/coinmarketcap"
	"pricr/internal/provider/frankfurter"
	"pricr/internal/registry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
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
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	storeOpts := []cache.Option{cache.WithLogger(log)}
	if cfg.Cache.Dir != "" {
		storeOpts = append(storeOpts, cache.WithRoot(cfg.Cache.Dir))
	}
	if cfg.Cache.Disabled {
		storeOpts = append(storeOpts, cache.Disabled())
	}
	store := cache.New(storeOpts...)
	log.Debug("cache ready", zap.String("root", store.Root()), zap.Bool("enabled", store.Enabled()))

	reg := registry.Default(registry.Options{
		CMCAPIKey:   cfg.CoinMarketCap.APIKey,
		HTTPTimeout: cfg.HTTP.Timeout,
		UserAgent:   cfg.HTTP.UserAgent,
		Store:       store,
		Logger:      log,
	})
	if i, ok := reg.Lookup(coinmarketcap.ID); ok {
		if cmc, ok := reg.Providers()[i].(*coinmarketcap.Provider); ok && !cmc.HasAPIKey() {
			log.Warn("COINMARKETCAP_API_KEY not set; CoinMarketCap will be skipped")
		}
	}
	order, err := registry.Resolve(reg.Providers(), nil, cfg.Defaults.ProviderOrder)
	if err != nil {
		return err
	}

	hc := httpx.New(cfg.HTTP.Timeout)
	if cfg.HTTP.UserAgent != "" {
		hc.UserAgent = cfg.HTTP.UserAgent
	}
	a := &api{
		engine: &aggregate.Engine{Providers: reg.Providers(), Order: order, Log: log},
		converter: &aggregate.Converter{
			Rates:     frankfurter.New(frankfurter.Config{}, hc, store, log),
			Providers: reg.Providers(),
			Order:     order,
			Log:       log,
		},
		currency: cfg.Defaults.Currency,
		timeout:  cfg.Server.RequestTimeout,
		log:      log,
	}

	mux := a.routes()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(log, limitBody(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.Strings("providers", reg.IDs(order)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return multierr.Combine(err, ignoreSyncErr(log.Sync()))
		}
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return multierr.Combine(srv.Shutdown(shutdownCtx), ignoreSyncErr(log.Sync()))
}

// ignoreSyncErr drops the EINVAL/ENOTTY zap reports when syncing a terminal.
func ignoreSyncErr(err error) error {
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
