package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pricr/internal/config"
	"pricr/internal/provider"
)

func date(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRangePreset_StartDate(t *testing.T) {
	t.Parallel()
	end := date("2024-03-31")

	cases := map[rangePreset]string{
		range1D:  "2024-03-30",
		range5D:  "2024-03-26",
		range1M:  "2024-02-29",
		range6M:  "2023-09-30",
		rangeYTD: "2024-01-01",
		range1Y:  "2023-03-31",
		range5Y:  "2019-03-31",
	}
	for preset, want := range cases {
		got := preset.startDate(end)
		require.NotNil(t, got, preset)
		require.Equal(t, want, got.Format(dateLayout), preset)
	}
	require.Nil(t, rangeAll.startDate(end))
}

func TestParseRangePreset(t *testing.T) {
	t.Parallel()

	p, err := parseRangePreset("ytd")
	require.NoError(t, err)
	require.Equal(t, rangeYTD, p)

	_, err = parseRangePreset("2W")
	require.ErrorContains(t, err, "invalid --interval")
}

func TestResolveChartWindow(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)

	t.Run("preset", func(t *testing.T) {
		t.Parallel()
		w, err := resolveChartWindow(options{interval: range5D}, now)
		require.NoError(t, err)
		require.Equal(t, date("2024-06-10"), *w.start)
		require.Equal(t, time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC), w.end)
		require.Equal(t, "2024-06-10..2024-06-15", w.label)
	})
	t.Run("all has open start", func(t *testing.T) {
		t.Parallel()
		w, err := resolveChartWindow(options{interval: rangeAll}, now)
		require.NoError(t, err)
		require.Nil(t, w.start)
		require.Equal(t, "ALL", w.label)
	})
	t.Run("explicit dates override preset", func(t *testing.T) {
		t.Parallel()
		start, end := date("2024-01-01"), date("2024-02-01")
		w, err := resolveChartWindow(options{interval: range1D, startDate: &start, endDate: &end}, now)
		require.NoError(t, err)
		require.Equal(t, start, *w.start)
		require.Equal(t, "2024-01-01..2024-02-01", w.label)
	})
	t.Run("future end", func(t *testing.T) {
		t.Parallel()
		end := date("2024-06-16")
		_, err := resolveChartWindow(options{interval: range1M, endDate: &end}, now)
		require.ErrorContains(t, err, "cannot be in the future")
	})
	t.Run("start after end", func(t *testing.T) {
		t.Parallel()
		start, end := date("2024-05-02"), date("2024-05-01")
		_, err := resolveChartWindow(options{interval: range1M, startDate: &start, endDate: &end}, now)
		require.ErrorContains(t, err, "cannot be after chart end date")
	})
}

func TestResolveSearchQuery(t *testing.T) {
	t.Parallel()
	flagQuery := "  apple  "

	require.Equal(t, "apple", *resolveSearchQuery(options{search: &flagQuery}))
	require.Equal(t, "apple inc", *resolveSearchQuery(options{symbols: []string{"Search", "search", "apple", " ", "inc"}}))
	require.Equal(t, "", *resolveSearchQuery(options{symbols: []string{"search"}}))
	require.Nil(t, resolveSearchQuery(options{symbols: []string{"btc", "search"}}))
}

func TestExpandSymbols(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Watchlists = map[string][]string{
		"commodities": {"GC=F", "SI=F", "CL=F"},
		"metals":      {"GC=F", " SI=F "},
		"empty":       {" ", ""},
	}

	got, err := expandSymbols([]string{"@commodities", "btc"}, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"GC=F", "SI=F", "CL=F", "btc"}, got)

	got, err = expandSymbols([]string{"@MeTaLs"}, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"GC=F", "SI=F"}, got)

	cases := map[string]string{
		"@":        "cannot be empty after '@'",
		"@unknown": "unknown watchlist 'unknown'",
		"@empty":   "watchlist 'empty' is empty -- add symbols under [watchlists].empty",
	}
	for token, msg := range cases {
		_, err := expandSymbols([]string{token}, cfg)
		require.True(t, provider.HasCode(err, provider.CodeInvalidInput), token)
		require.ErrorContains(t, err, msg)
	}
}
