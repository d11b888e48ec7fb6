package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricr/internal/aggregate"
	"pricr/internal/metrics"
	"pricr/internal/provider"
)

const (
	maxSymbols         = 1000
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type api struct {
	engine    *aggregate.Engine
	converter *aggregate.Converter
	currency  string
	timeout   time.Duration
	log       *zap.Logger
}

type quotesResponse struct {
	Quotes []provider.CoinPrice `json:"quotes"`
}

type searchResponse struct {
	Matches []provider.TickerMatch `json:"matches"`
}

type convertResponse struct {
	Conversions []aggregate.Conversion `json:"conversions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *api) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/api/quotes", instrument("quotes", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			a.handleGetQuotes(w, r)
		case http.MethodPost:
			a.handlePostQuotes(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})))
	mux.Handle("/api/search", instrument("search", getOnly(a.handleSearch)))
	mux.Handle("/api/convert", instrument("convert", getOnly(a.handleConvert)))
	return mux
}

func getOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	})
}

func (a *api) handleGetQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("symbols")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "missing symbols query param")
		return
	}
	symbols := splitCSV(q)
	if len(symbols) > maxSymbols {
		writeError(w, http.StatusBadRequest, "too many symbols (max 1000)")
		return
	}
	a.writeQuotes(w, r.Context(), symbols, r.URL.Query().Get("currency"))
}

type postBody struct {
	Symbols  []string `json:"symbols"`
	Currency string   `json:"currency"`
}

func (a *api) handlePostQuotes(w http.ResponseWriter, r *http.Request) {
	var b postBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	symbols := make([]string, 0, len(b.Symbols))
	for _, s := range b.Symbols {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols cannot be empty")
		return
	}
	if len(symbols) > maxSymbols {
		writeError(w, http.StatusBadRequest, "too many symbols (max 1000)")
		return
	}
	a.writeQuotes(w, r.Context(), symbols, b.Currency)
}

func (a *api) writeQuotes(w http.ResponseWriter, rctx context.Context, symbols []string, currency string) {
	ctx, cancel := a.requestContext(rctx)
	defer cancel()
	if strings.TrimSpace(currency) == "" {
		currency = a.currency
	}
	quotes, err := a.engine.FetchPrices(ctx, symbols, currency)
	if err != nil {
		a.writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotesResponse{Quotes: quotes})
}

func (a *api) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}
	ctx, cancel := a.requestContext(r.Context())
	defer cancel()
	matches, err := a.engine.SearchTickers(ctx, query, limit)
	if err != nil {
		a.writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Matches: matches})
}

// handleConvert serves /api/convert?amount=100&from=usd&to=btc,eur.
func (a *api) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseFloat(strings.TrimSpace(q.Get("amount")), 64)
	if err != nil || !(amount > 0) {
		writeError(w, http.StatusBadRequest, "amount must be a positive number")
		return
	}
	from := strings.TrimSpace(q.Get("from"))
	if from == "" {
		writeError(w, http.StatusBadRequest, "missing from query param")
		return
	}
	targets := splitCSV(q.Get("to"))
	if len(targets) == 0 {
		writeError(w, http.StatusBadRequest, "missing to query param")
		return
	}
	ctx, cancel := a.requestContext(r.Context())
	defer cancel()
	conversions, err := a.converter.Convert(ctx, amount, from, targets)
	if err != nil {
		a.writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{Conversions: conversions})
}

func (a *api) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.timeout)
}

func (a *api) writeProviderError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.log.Warn("request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}

// statusFor maps engine errors to HTTP statuses.
func statusFor(err error) int {
	switch provider.KindOf(err) {
	case provider.KindConfig:
		return http.StatusBadRequest
	case provider.KindNoResults:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument counts requests per route and status code.
func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequest(route, strconv.Itoa(rec.status))
	})
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
