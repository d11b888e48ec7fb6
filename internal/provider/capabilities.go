package provider

import (
	"context"
	"errors"
	"time"
)

// Capability is a bit set describing what a provider can do beyond prices.
type Capability uint8

const (
	CapPrices Capability = 1 << iota
	CapHistory
	CapHistoryWindow
	CapSearch
)

// MaxHistoryDays bounds day-range history requests built from open windows.
const MaxHistoryDays = 36500

// Capabilities inspects p for the optional interfaces it implements.
func Capabilities(p Provider) Capability {
	c := CapPrices
	if _, ok := p.(HistoryProvider); ok {
		c |= CapHistory
	}
	if _, ok := p.(WindowHistoryProvider); ok {
		c |= CapHistoryWindow
	}
	if _, ok := p.(TickerSearcher); ok {
		c |= CapSearch
	}
	return c
}

// Has reports whether all bits of want are set.
func (c Capability) Has(want Capability) bool { return c&want == want }

// GetPriceHistory calls the provider's day-range history or fails with a
// configuration error naming it as unsupported.
func GetPriceHistory(ctx context.Context, p Provider, symbols []string, currency string, days int, interval HistoryInterval) ([]PriceHistory, error) {
	hp, ok := p.(HistoryProvider)
	if !ok {
		return nil, Config(CodeHistoryUnsupported, "provider '%s' does not support chart mode", p.ID())
	}
	return hp.GetPriceHistory(ctx, symbols, currency, days, interval)
}

// GetPriceHistoryWindow fetches history for [start, end]. Providers without
// window support, or that decline the window, are asked for a day range
// covering it instead. Points outside the window are dropped and so are
// histories left empty.
func GetPriceHistoryWindow(ctx context.Context, p Provider, symbols []string, currency string, start *time.Time, end time.Time, interval HistoryInterval) ([]PriceHistory, error) {
	var (
		histories []PriceHistory
		err       error
	)
	if wp, ok := p.(WindowHistoryProvider); ok {
		histories, err = wp.GetPriceHistoryWindow(ctx, symbols, currency, start, end, interval)
	} else {
		err = Config(CodeWindowUnsupported, "provider '%s' does not support explicit chart date windows", p.ID())
	}
	if HasCode(err, CodeWindowUnsupported) {
		histories, err = GetPriceHistory(ctx, p, symbols, currency, DaysSince(start, time.Now()), interval)
	}
	if err != nil {
		return nil, err
	}
	histories = TrimToWindow(histories, start, end)
	if len(histories) == 0 {
		return nil, NoResults(p.Name())
	}
	return histories, nil
}

// DaysSince converts an optional window start into a day count for
// providers that only take ranges. An open start asks for everything.
func DaysSince(start *time.Time, now time.Time) int {
	if start == nil {
		return MaxHistoryDays
	}
	days := int(now.Sub(*start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	if days > MaxHistoryDays {
		days = MaxHistoryDays
	}
	return days
}

// TrimToWindow keeps points inside [start, end] and drops empty histories.
func TrimToWindow(histories []PriceHistory, start *time.Time, end time.Time) []PriceHistory {
	out := histories[:0]
	for _, h := range histories {
		pts := make([]PricePoint, 0, len(h.Points))
		for _, pt := range h.Points {
			if pt.Timestamp.After(end) {
				continue
			}
			if start != nil && pt.Timestamp.Before(*start) {
				continue
			}
			pts = append(pts, pt)
		}
		if len(pts) == 0 {
			continue
		}
		h.Points = pts
		out = append(out, h)
	}
	return out
}

// SearchTickers runs p's keyword search or fails with CodeSearchUnsupported.
func SearchTickers(ctx context.Context, p Provider, query string, limit int) ([]TickerMatch, error) {
	ts, ok := p.(TickerSearcher)
	if !ok {
		return nil, Config(CodeSearchUnsupported, "provider '%s' does not support ticker search", p.ID())
	}
	return ts.SearchTickers(ctx, query, limit)
}

// IsNoResults is errors.Is(err, ErrNoResults).
func IsNoResults(err error) bool { return errors.Is(err, ErrNoResults) }
