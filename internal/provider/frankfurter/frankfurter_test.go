package frankfurter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricr/internal/httpx"
	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

func newTestSource(t *testing.T, h http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, httpx.New(5*time.Second), cache.New(cache.WithRoot(t.TempDir())), nil)
}

func TestGetRates_DecodesLatest(t *testing.T) {
	t.Parallel()
	// Arrange:
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "EUR,GBP", r.URL.Query().Get("to"))
		_, _ = io.WriteString(w, `{"amount":1.0,"base":"USD","date":"2026-02-20","rates":{"EUR":0.84983,"GBP":0.74174}}`)
	})

	// Act:
	got, err := s.GetRates(context.Background(), "usd", []string{"eur", "gbp"})

	// Assert:
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"EUR": 0.84983, "GBP": 0.74174}, got)
	require.Equal(t, "Frankfurter/ECB", s.Name())
}

func TestGetRates_EmptyRatesIsNoResults(t *testing.T) {
	t.Parallel()
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"amount":1.0,"base":"USD","rates":{}}`)
	})

	_, err := s.GetRates(context.Background(), "usd", []string{"eur"})

	require.ErrorIs(t, err, provider.ErrNoResults)
}

func TestGetRates_HTTPErrorIsTransport(t *testing.T) {
	t.Parallel()
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})

	_, err := s.GetRates(context.Background(), "usd", []string{"xyz"})

	require.Equal(t, provider.KindTransport, provider.KindOf(err))
}

func TestGetRates_NoTargetsIsInvalidInput(t *testing.T) {
	t.Parallel()
	s := New(Config{}, httpx.New(time.Second), cache.New(cache.Disabled()), nil)

	_, err := s.GetRates(context.Background(), "usd", []string{" "})

	require.True(t, provider.HasCode(err, provider.CodeInvalidInput))
}

func TestGetHistory_SeriesPerTarget(t *testing.T) {
	t.Parallel()
	// Arrange:
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024-01-01..2024-01-03", r.URL.Path)
		assert.Equal(t, "EUR,JPY,GBP", r.URL.Query().Get("to"))
		_, _ = io.WriteString(w, `{"base":"USD","rates":{
			"2024-01-03":{"EUR":0.91,"JPY":143.1},
			"2024-01-02":{"EUR":0.90,"JPY":142.0},
			"bogus":{"EUR":1}
		}}`)
	})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)

	// Act:
	got, err := s.GetHistory(context.Background(), "usd", []string{"eur", "jpy", "gbp"}, start, end)

	// Assert:
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "USD/EUR", got[0].Symbol)
	require.Equal(t, "Euro", got[0].Name)
	require.Equal(t, "EUR", got[0].Currency)
	require.Equal(t, []provider.PricePoint{
		{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 0.90},
		{Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Price: 0.91},
	}, got[0].Points)
	require.Equal(t, "USD/JPY", got[1].Symbol)
}

func TestGetHistory_InvertedWindowRejected(t *testing.T) {
	t.Parallel()
	s := New(Config{}, httpx.New(time.Second), cache.New(cache.Disabled()), nil)
	now := time.Now()

	_, err := s.GetHistory(context.Background(), "usd", []string{"eur"}, now, now.Add(-time.Hour))

	require.True(t, provider.HasCode(err, provider.CodeInvalidInput))
}

var _ provider.RateSource = (*Source)(nil)
