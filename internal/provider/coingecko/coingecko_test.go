package coingecko

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricr/internal/httpx"
	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, httpx.New(5*time.Second), cache.New(cache.WithRoot(t.TempDir())), nil)
}

func TestGetPrices_ParsesBatchedResponse(t *testing.T) {
	t.Parallel()
	// Arrange:
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum,nosuchcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "eur", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "true", r.URL.Query().Get("include_24hr_change"))
		assert.Equal(t, "true", r.URL.Query().Get("include_market_cap"))
		_, _ = io.WriteString(w, `{
			"bitcoin": {"eur": 50000, "eur_24h_change": 2.5, "eur_market_cap": 9.5e11},
			"ethereum": {"eur": 3000}
		}`)
	})

	// Act:
	got, err := p.GetPrices(context.Background(), []string{"btc", "ETH", "nosuchcoin"}, "EUR")

	// Assert:
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "BTC", got[0].Symbol)
	require.Equal(t, "Bitcoin", got[0].Name)
	require.Equal(t, 50000.0, got[0].Price)
	require.NotNil(t, got[0].Change24h)
	require.Equal(t, 2.5, *got[0].Change24h)
	require.Equal(t, 9.5e11, *got[0].MarketCap)
	require.Equal(t, "EUR", got[0].Currency)
	require.Equal(t, "CoinGecko", got[0].Provider)
	require.Equal(t, "ETH", got[1].Symbol)
	require.Nil(t, got[1].Change24h)
	require.Nil(t, got[1].MarketCap)
}

func TestGetPrices_DuplicateSymbolsYieldOneQuoteEach(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		_, _ = io.WriteString(w, `{"bitcoin": {"usd": 1}}`)
	})

	got, err := p.GetPrices(context.Background(), []string{"BTC", "btc"}, "usd")

	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestGetPrices_EmptyObjectIsNoResults(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := p.GetPrices(context.Background(), []string{"zzz"}, "usd")

	require.ErrorIs(t, err, provider.ErrNoResults)
}

func TestGetPrices_ErrorsAreTyped(t *testing.T) {
	t.Parallel()
	down := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	garbled := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[1,2`)
	})

	_, errDown := down.GetPrices(context.Background(), []string{"btc"}, "usd")
	_, errGarbled := garbled.GetPrices(context.Background(), []string{"btc"}, "usd")

	require.Equal(t, provider.KindTransport, provider.KindOf(errDown))
	require.Equal(t, provider.KindParse, provider.KindOf(errGarbled))
}

func TestGetPrices_CachedWithinTTL(t *testing.T) {
	t.Parallel()
	// Arrange:
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"bitcoin": {"usd": 42}}`)
	})

	// Act:
	_, err1 := p.GetPrices(context.Background(), []string{"btc"}, "usd")
	got, err2 := p.GetPrices(context.Background(), []string{"btc"}, "usd")

	// Assert:
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, 42.0, got[0].Price)
	require.Equal(t, int32(1), calls.Load())
}

func TestGetPriceHistory_ParsesMarketChart(t *testing.T) {
	t.Parallel()
	// Arrange:
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))
		_, _ = io.WriteString(w, `{"prices": [[1704067200000, 42000.5], [1704153600000, 43000]]}`)
	})

	// Act:
	got, err := p.GetPriceHistory(context.Background(), []string{"btc"}, "usd", 7, provider.IntervalDaily)

	// Assert:
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "BTC", got[0].Symbol)
	require.Equal(t, "USD", got[0].Currency)
	require.Len(t, got[0].Points, 2)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Points[0].Timestamp)
	require.Equal(t, 43000.0, got[0].Points[1].Price)
}

func TestGetPriceHistory_AutoOmitsInterval(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("interval"))
		_, _ = io.WriteString(w, `{"prices": []}`)
	})

	_, err := p.GetPriceHistory(context.Background(), []string{"eth"}, "usd", 1, provider.IntervalAuto)

	require.ErrorIs(t, err, provider.ErrNoResults)
}

func TestHistoryTTL(t *testing.T) {
	t.Parallel()
	require.Equal(t, time.Hour, historyTTL(provider.IntervalHourly, 365))
	require.Equal(t, 12*time.Hour, historyTTL(provider.IntervalDaily, 1))
	require.Equal(t, time.Hour, historyTTL(provider.IntervalAuto, 30))
	require.Equal(t, 12*time.Hour, historyTTL(provider.IntervalAuto, 31))
}

func TestResolve(t *testing.T) {
	t.Parallel()
	require.Equal(t, coin{"bitcoin", "Bitcoin"}, resolve(" BTC "))
	require.Equal(t, coin{"matic-network", "Polygon"}, resolve("polygon"))
	require.Equal(t, coin{"kaspa", "Kaspa"}, resolve("KASPA"))
}
