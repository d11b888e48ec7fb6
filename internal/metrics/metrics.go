// Package metrics holds the prometheus collectors shared by the providers,
// the cache and the HTTP server.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pricr/internal/provider"
)

const namespace = "pricr"

var providerCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_calls_total",
		Help:      "Provider calls made by the aggregation engine, by outcome",
	},
	[]string{"provider", "operation", "outcome"},
)

var providerDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_call_duration_seconds",
		Help:      "Latency of provider calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"provider", "operation"},
)

var cacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Disk cache lookups by namespace and result",
	},
	[]string{"namespace", "result"},
)

var cacheWriteFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_write_failures_total",
		Help:      "Disk cache writes that were dropped",
	},
	[]string{"namespace"},
)

var httpRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "API requests served, by route and status code",
	},
	[]string{"route", "code"},
)

var collectors = []prometheus.Collector{
	providerCalls,
	providerDuration,
	cacheLookups,
	cacheWriteFailures,
	httpRequests,
}

var registerOnce sync.Once

// Register adds all collectors to reg. Subsequent calls are no-ops.
func Register(reg prometheus.Registerer) error {
	var err error
	registerOnce.Do(func() {
		for _, c := range collectors {
			if rerr := reg.Register(c); rerr != nil {
				var are prometheus.AlreadyRegisteredError
				if !errors.As(rerr, &are) {
					err = rerr
					return
				}
			}
		}
	})
	return err
}

// Outcome labels a provider call result.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch provider.KindOf(err) {
	case provider.KindNoResults:
		return "no_results"
	case provider.KindConfig:
		return "config"
	case provider.KindTransport:
		return "transport"
	case provider.KindRemoteAPI:
		return "remote_api"
	case provider.KindParse:
		return "parse"
	default:
		return "error"
	}
}

// ObserveProviderCall records one provider call started at start.
func ObserveProviderCall(providerID, operation string, start time.Time, err error) {
	providerCalls.WithLabelValues(providerID, operation, Outcome(err)).Inc()
	providerDuration.WithLabelValues(providerID, operation).Observe(time.Since(start).Seconds())
}

func CacheHit(ns string)          { cacheLookups.WithLabelValues(ns, "hit").Inc() }
func CacheMiss(ns string)         { cacheLookups.WithLabelValues(ns, "miss").Inc() }
func CacheWriteFailure(ns string) { cacheWriteFailures.WithLabelValues(ns).Inc() }

// HTTPRequest counts one served API request.
func HTTPRequest(route, code string) { httpRequests.WithLabelValues(route, code).Inc() }
