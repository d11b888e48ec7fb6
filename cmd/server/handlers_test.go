package main

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"pricr/internal/aggregate"
	"pricr/internal/provider"
	"pricr/internal/provider/providermock"
)

func newTestAPI(providers []provider.Provider, rates provider.RateSource) *api {
	order := make([]int, len(providers))
	for i := range providers {
		order[i] = i
	}
	log := zap.NewNop()
	return &api{
		engine:    &aggregate.Engine{Providers: providers, Order: order, Log: log},
		converter: &aggregate.Converter{Rates: rates, Providers: providers, Order: order, Log: log},
		currency:  "usd",
		log:       log,
	}
}

func mockProvider(ctrl *gomock.Controller, id string) *providermock.MockProvider {
	p := providermock.NewMockProvider(ctrl)
	p.EXPECT().ID().Return(id).AnyTimes()
	p.EXPECT().Name().Return(id).AnyTimes()
	return p
}

func serve(a *api, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	withJSONHeaders(recoverPanic(zap.NewNop(), limitBody(a.routes()))).ServeHTTP(rr, req)
	return rr
}

func TestQuotes_GetUsesDefaultCurrency(t *testing.T) {
	t.Parallel()
	// Arrange:
	ctrl := gomock.NewController(t)
	p := mockProvider(ctrl, "coingecko")
	p.EXPECT().GetPrices(gomock.Any(), []string{"btc", "eth"}, "usd").Return([]provider.CoinPrice{
		{Symbol: "BTC", Price: 50000, Currency: "USD", Provider: "CoinGecko"},
		{Symbol: "ETH", Price: 3000, Currency: "USD", Provider: "CoinGecko"},
	}, nil)
	a := newTestAPI([]provider.Provider{p}, nil)

	// Act:
	rr := serve(a, httptest.NewRequest(http.MethodGet, "/api/quotes?symbols=btc,+eth,,", nil))

	// Assert:
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	var resp quotesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Quotes, 2)
	assert.Equal(t, "ETH", resp.Quotes[1].Symbol)
}

func TestQuotes_PostWithCurrency(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	p := mockProvider(ctrl, "yahoo")
	p.EXPECT().GetPrices(gomock.Any(), []string{"AAPL"}, "eur").
		Return([]provider.CoinPrice{{Symbol: "AAPL", Price: 180, Currency: "EUR"}}, nil)
	a := newTestAPI([]provider.Provider{p}, nil)

	rr := serve(a, httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(`{"symbols":["AAPL"," "],"currency":"eur"}`)))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"symbol":"AAPL"`)
}

func TestQuotes_RejectsBadRequests(t *testing.T) {
	t.Parallel()
	a := newTestAPI(nil, nil)
	tooMany := strings.Repeat("x,", maxSymbols+1)

	cases := []struct {
		name   string
		req    *http.Request
		status int
		msg    string
	}{
		{"missing symbols", httptest.NewRequest(http.MethodGet, "/api/quotes", nil), http.StatusBadRequest, "missing symbols"},
		{"too many", httptest.NewRequest(http.MethodGet, "/api/quotes?symbols="+tooMany, nil), http.StatusBadRequest, "max 1000"},
		{"unknown field", httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(`{"symbols":["btc"],"extra":1}`)), http.StatusBadRequest, "invalid JSON body"},
		{"empty body list", httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(`{"symbols":[]}`)), http.StatusBadRequest, "cannot be empty"},
		{"method", httptest.NewRequest(http.MethodDelete, "/api/quotes", nil), http.StatusMethodNotAllowed, "method not allowed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(a, tc.req)

			require.Equal(t, tc.status, rr.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.Contains(t, resp.Error, tc.msg)
		})
	}
}

func TestQuotes_MapsProviderErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"no results", provider.NoResults("CoinGecko"), http.StatusNotFound},
		{"transport", provider.Transport("CoinGecko", errors.New("dial tcp: refused")), http.StatusBadGateway},
		{"parse", provider.Parse("CoinGecko", "price response", errors.New("eof")), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			p := mockProvider(ctrl, "coingecko")
			p.EXPECT().GetPrices(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)
			a := newTestAPI([]provider.Provider{p}, nil)

			rr := serve(a, httptest.NewRequest(http.MethodGet, "/api/quotes?symbols=btc", nil))

			require.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestSearch_MergesAndValidates(t *testing.T) {
	t.Parallel()
	// Arrange:
	ctrl := gomock.NewController(t)
	plain := mockProvider(ctrl, "coingecko")
	ts := providermock.NewMockTickerSearcher(ctrl)
	ts.EXPECT().ID().Return("yahoo").AnyTimes()
	ts.EXPECT().Name().Return("Yahoo Finance").AnyTimes()
	ts.EXPECT().SearchTickers(gomock.Any(), "apple", 5).
		Return([]provider.TickerMatch{{Symbol: "AAPL", Name: "Apple Inc.", Provider: "Yahoo Finance"}}, nil)
	a := newTestAPI([]provider.Provider{plain, ts}, nil)

	// Act:
	ok := serve(a, httptest.NewRequest(http.MethodGet, "/api/search?q=apple&limit=5", nil))
	badLimit := serve(a, httptest.NewRequest(http.MethodGet, "/api/search?q=apple&limit=99", nil))
	noQuery := serve(a, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	post := serve(a, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{}")))

	// Assert:
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	var resp searchResponse
	require.NoError(t, json.Unmarshal(ok.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "AAPL", resp.Matches[0].Symbol)
	assert.Equal(t, http.StatusBadRequest, badLimit.Code)
	assert.Equal(t, http.StatusBadRequest, noQuery.Code)
	assert.Contains(t, noQuery.Body.String(), "search mode requires a query")
	assert.Equal(t, http.StatusMethodNotAllowed, post.Code)
}

func TestConvert_FiatTargets(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	rates := providermock.NewMockRateSource(ctrl)
	rates.EXPECT().Name().Return("Frankfurter/ECB").AnyTimes()
	rates.EXPECT().GetRates(gomock.Any(), "USD", []string{"EUR"}).Return(map[string]float64{"EUR": 0.92}, nil)
	a := newTestAPI(nil, rates)

	rr := serve(a, httptest.NewRequest(http.MethodGet, "/api/convert?amount=100&from=usd&to=eur", nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp convertResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Conversions, 1)
	assert.InDelta(t, 92.0, resp.Conversions[0].ToAmount, 1e-9)
	assert.Equal(t, "Frankfurter/ECB", resp.Conversions[0].Provider)
}

func TestConvert_RejectsBadQuery(t *testing.T) {
	t.Parallel()
	a := newTestAPI(nil, nil)

	for _, target := range []string{
		"/api/convert?amount=abc&from=usd&to=eur",
		"/api/convert?amount=-1&from=usd&to=eur",
		"/api/convert?amount=1&to=eur",
		"/api/convert?amount=1&from=usd",
	} {
		rr := serve(a, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestMiddleware_GzipAndPreflight(t *testing.T) {
	t.Parallel()
	h := withJSONHeaders(withGzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"ok"}`, string(body))

	pre := httptest.NewRecorder()
	h.ServeHTTP(pre, httptest.NewRequest(http.MethodOptions, "/api/quotes", nil))
	require.Equal(t, http.StatusNoContent, pre.Code)
	require.Equal(t, "*", pre.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_RecoverPanic(t *testing.T) {
	t.Parallel()
	h := recoverPanic(zap.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "internal server error")
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, http.StatusBadRequest, statusFor(provider.Config(provider.CodeUnknownProvider, "unknown provider 'x'")))
	assert.Equal(t, http.StatusNotFound, statusFor(provider.NoResults("")))
	assert.Equal(t, http.StatusBadGateway, statusFor(provider.RemoteAPI("CoinMarketCap", "API error: %s", "bad key")))
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.New("boom")))
}
