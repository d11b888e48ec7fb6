package yahoo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
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

const aaplChart = `{"chart": {"result": [{
	"meta": {"currency": "USD", "shortName": "Apple", "longName": "Apple Inc.", "regularMarketPrice": 190.5, "chartPreviousClose": 188.0},
	"timestamp": [1704067200, 1704153600, 1704240000],
	"indicators": {"quote": [{"close": [185.0, null, 189.0]}]}
}], "error": null}}`

func TestGetPrices_UsesRegularMarketPriceAndPreviousClose(t *testing.T) {
	t.Parallel()
	// Arrange:
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "5d", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = io.WriteString(w, aaplChart)
	})

	// Act:
	got, err := p.GetPrices(context.Background(), []string{"aapl"}, "eur")

	// Assert:
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "AAPL", got[0].Symbol)
	require.Equal(t, "Apple Inc.", got[0].Name)
	require.Equal(t, 190.5, got[0].Price)
	require.Equal(t, "USD", got[0].Currency, "quote currency wins over the requested one")
	require.InDelta(t, (190.5-188.0)/188.0*100, *got[0].Change24h, 1e-9)
	require.Nil(t, got[0].MarketCap)
}

func TestGetPrices_FallsBackToLastCloses(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"chart": {"result": [{
			"meta": {"shortName": "Gold Futures"},
			"timestamp": [1, 2],
			"indicators": {"quote": [{"close": [100.0, 110.0]}]}
		}]}}`)
	})

	got, err := p.GetPrices(context.Background(), []string{"GC=F"}, "usd")

	require.NoError(t, err)
	require.Equal(t, 110.0, got[0].Price)
	require.Equal(t, "Gold Futures", got[0].Name)
	require.Equal(t, "USD", got[0].Currency)
	require.InDelta(t, 10.0, *got[0].Change24h, 1e-9)
}

func TestGetPrices_SymbolsWithoutDataAreDropped(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/MSFT") {
			_, _ = io.WriteString(w, aaplChart)
			return
		}
		_, _ = io.WriteString(w, `{"chart": {"result": [], "error": null}}`)
	})

	got, err := p.GetPrices(context.Background(), []string{"NOPE", "MSFT"}, "usd")

	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "MSFT", got[0].Symbol)
}

func TestGetPrices_ChartErrorIsRemoteAPI(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`)
	})

	_, err := p.GetPrices(context.Background(), []string{"ZZZZ"}, "usd")

	require.Equal(t, provider.KindRemoteAPI, provider.KindOf(err))
	require.Contains(t, err.Error(), "delisted")
}

func TestGetPrices_AllEmptyIsNoResults(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"chart": {"result": [{"meta": {}, "indicators": {"quote": [{"close": [null]}]}}]}}`)
	})

	_, err := p.GetPrices(context.Background(), []string{"X"}, "usd")

	require.ErrorIs(t, err, provider.ErrNoResults)
}

func TestGetPriceHistoryWindow_FiltersToWindow(t *testing.T) {
	t.Parallel()
	// Arrange:
	start := time.Unix(1704153600, 0).UTC()
	end := time.Unix(1704240000, 0).UTC()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1704153600", r.URL.Query().Get("period1"))
		assert.Equal(t, "1704240001", r.URL.Query().Get("period2"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		_, _ = io.WriteString(w, `{"chart": {"result": [{
			"meta": {"currency": "USD", "longName": "Apple Inc."},
			"timestamp": [1704067200, 1704240000, 1704153600, 1704326400],
			"indicators": {"quote": [{"close": [1, 3, 2, 4]}]}
		}]}}`)
	})

	// Act:
	got, err := p.GetPriceHistoryWindow(context.Background(), []string{"aapl"}, "usd", &start, end, provider.IntervalAuto)

	// Assert:
	require.NoError(t, err)
	require.Len(t, got[0].Points, 2)
	require.Equal(t, 2.0, got[0].Points[0].Price)
	require.Equal(t, 3.0, got[0].Points[1].Price)
	require.Equal(t, "Yahoo Finance", got[0].Provider)
}

func TestGetPriceHistoryWindow_OpenStart(t *testing.T) {
	t.Parallel()
	end := time.Unix(1704240000, 0).UTC()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("period1"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = io.WriteString(w, `{"chart": {"result": [{"meta": {}, "timestamp": [1], "indicators": {"quote": [{"close": [7]}]}}]}}`)
	})

	got, err := p.GetPriceHistoryWindow(context.Background(), []string{"spy"}, "usd", nil, end, provider.IntervalAuto)

	require.NoError(t, err)
	require.Equal(t, "SPY", got[0].Name)
	require.Equal(t, "USD", got[0].Currency)
}

func TestSearchTickers_DefaultsAndLimit(t *testing.T) {
	t.Parallel()
	// Arrange:
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("quotesCount"))
		assert.Equal(t, "0", r.URL.Query().Get("newsCount"))
		_, _ = io.WriteString(w, `{"quotes": [
			{"symbol": " aapl ", "shortname": "Apple", "longname": "Apple Inc.", "exchDisp": "NASDAQ", "typeDisp": "Equity"},
			{"symbol": ""},
			{"symbol": "APLE", "shortname": "Apple Hospitality"},
			{"symbol": "AAPL.MX"}
		]}`)
	})

	// Act:
	got, err := p.SearchTickers(context.Background(), "  apple ", 2)

	// Assert:
	require.NoError(t, err)
	require.Equal(t, []provider.TickerMatch{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", AssetType: "Equity", Provider: "Yahoo Finance"},
		{Symbol: "APLE", Name: "Apple Hospitality", Exchange: "Unknown", AssetType: "Unknown", Provider: "Yahoo Finance"},
	}, got)
}

func TestSearchTickers_EmptyQueryAndEmptyResults(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"quotes": []}`)
	})

	_, errEmpty := p.SearchTickers(context.Background(), "   ", 5)
	_, errNone := p.SearchTickers(context.Background(), "qwertyuiop", 5)

	require.True(t, provider.HasCode(errEmpty, provider.CodeInvalidInput))
	require.ErrorIs(t, errNone, provider.ErrNoResults)
}

func TestChartInterval(t *testing.T) {
	t.Parallel()
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	fiveDays := end.AddDate(0, 0, -5)
	sixDays := end.AddDate(0, 0, -6)

	require.Equal(t, "1h", chartInterval(provider.IntervalAuto, &fiveDays, end))
	require.Equal(t, "1d", chartInterval(provider.IntervalAuto, &sixDays, end))
	require.Equal(t, "1d", chartInterval(provider.IntervalAuto, nil, end))
	require.Equal(t, "1h", chartInterval(provider.IntervalHourly, nil, end))
	require.Equal(t, "1d", chartInterval(provider.IntervalDaily, &fiveDays, end))
}
