package main

import (
	"fmt"
	"strings"
	"time"

	"pricr/internal/config"
	"pricr/internal/provider"
)

const dateLayout = "2006-01-02"

type rangePreset string

const (
	range1D  rangePreset = "1D"
	range5D  rangePreset = "5D"
	range1M  rangePreset = "1M"
	range6M  rangePreset = "6M"
	rangeYTD rangePreset = "YTD"
	range1Y  rangePreset = "1Y"
	range5Y  rangePreset = "5Y"
	rangeAll rangePreset = "ALL"
)

func parseRangePreset(s string) (rangePreset, error) {
	switch p := rangePreset(strings.ToUpper(strings.TrimSpace(s))); p {
	case range1D, range5D, range1M, range6M, rangeYTD, range1Y, range5Y, rangeAll:
		return p, nil
	}
	return "", fmt.Errorf("invalid --interval value %q (1D, 5D, 1M, 6M, YTD, 1Y, 5Y, ALL)", s)
}

// startDate is the first day covered by p when the chart ends on end.
// ALL has no start.
func (p rangePreset) startDate(end time.Time) *time.Time {
	var d time.Time
	switch p {
	case range1D:
		d = end.AddDate(0, 0, -1)
	case range5D:
		d = end.AddDate(0, 0, -5)
	case range1M:
		d = subMonths(end, 1)
	case range6M:
		d = subMonths(end, 6)
	case rangeYTD:
		d = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case range1Y:
		d = subMonths(end, 12)
	case range5Y:
		d = subMonths(end, 60)
	default:
		return nil
	}
	return &d
}

// subMonths steps back n calendar months, clamping to the last day of the
// target month instead of overflowing into the next one.
func subMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := target.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, time.UTC)
}

func parseDate(raw, what string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date, expected format YYYY-MM-DD", what)
	}
	return d, nil
}

// chartWindow is the resolved [start, end] of a chart request.
type chartWindow struct {
	startDate *time.Time
	endDate   time.Time
	start     *time.Time
	end       time.Time
	label     string
}

// resolveChartWindow covers whole UTC days: the start day from midnight and
// the end day through 23:59:59.
func resolveChartWindow(o options, now time.Time) (chartWindow, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today
	if o.endDate != nil {
		end = *o.endDate
	}
	if end.After(today) {
		return chartWindow{}, provider.Config(provider.CodeInvalidInput, "chart end date cannot be in the future")
	}
	start := o.startDate
	if start == nil {
		start = o.interval.startDate(end)
	}
	if start != nil && start.After(end) {
		return chartWindow{}, provider.Config(provider.CodeInvalidInput, "chart start date cannot be after chart end date")
	}

	w := chartWindow{
		startDate: start,
		endDate:   end,
		end:       end.Add(24*time.Hour - time.Second),
		label:     string(o.interval),
	}
	if start != nil {
		s := *start
		w.start = &s
		w.label = start.Format(dateLayout) + ".." + end.Format(dateLayout)
	}
	if w.label == "" {
		w.label = string(range1M)
	}
	return w, nil
}

// resolveSearchQuery returns the query for --search or a leading "search"
// token, or nil when the invocation is not a search.
func resolveSearchQuery(o options) *string {
	if o.search != nil {
		q := strings.TrimSpace(*o.search)
		return &q
	}
	if len(o.symbols) == 0 || !strings.EqualFold(o.symbols[0], "search") {
		return nil
	}
	var tokens []string
	for _, s := range o.symbols[1:] {
		if s = strings.TrimSpace(s); s != "" {
			tokens = append(tokens, s)
		}
	}
	if len(tokens) > 0 && strings.EqualFold(tokens[0], "search") {
		tokens = tokens[1:]
	}
	q := strings.TrimSpace(strings.Join(tokens, " "))
	return &q
}

// expandSymbols replaces @name tokens with the symbols of that watchlist.
func expandSymbols(raw []string, cfg config.Config) ([]string, error) {
	var out []string
	for _, token := range raw {
		name, ok := strings.CutPrefix(token, "@")
		if !ok {
			out = append(out, token)
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, provider.Config(provider.CodeInvalidInput, "watchlist name cannot be empty after '@'")
		}
		symbols, ok := cfg.Watchlist(name)
		if !ok {
			return nil, provider.Config(provider.CodeInvalidInput, "unknown watchlist '%s' -- define it under [watchlists] in config", name)
		}
		added := 0
		for _, s := range symbols {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
				added++
			}
		}
		if added == 0 {
			return nil, provider.Config(provider.CodeInvalidInput, "watchlist '%s' is empty -- add symbols under [watchlists].%s", name, name)
		}
	}
	return out, nil
}
