package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"pricr/internal/aggregate"
	"pricr/internal/provider"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printPrices(w io.Writer, prices []provider.CoinPrice) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\t24H\tMARKET CAP\tPROVIDER")
	for _, p := range prices {
		marketCap := "-"
		if p.MarketCap != nil {
			marketCap = formatAmount(*p.MarketCap)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\t%s\n",
			p.Symbol, p.Name, formatAmount(p.Price), strings.ToUpper(p.Currency),
			formatChange(p.Change24h), marketCap, p.Provider)
	}
	return tw.Flush()
}

func printConversions(w io.Writer, conversions []aggregate.Conversion) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "FROM\tTO\tNAME\tRATE\tPROVIDER")
	for _, c := range conversions {
		fmt.Fprintf(tw, "%s %s\t%s %s\t%s\t1 %s = %s %s\t%s\n",
			formatAmount(c.FromAmount), c.FromCurrency,
			formatAmount(c.ToAmount), c.ToSymbol,
			c.ToName,
			c.ToSymbol, formatAmount(c.Rate), c.FromCurrency,
			c.Provider)
	}
	return tw.Flush()
}

func printTickerMatches(w io.Writer, matches []provider.TickerMatch) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tEXCHANGE\tTYPE\tPROVIDER")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Symbol, m.Name, m.Exchange, m.AssetType, m.Provider)
	}
	return tw.Flush()
}

// printHistories summarizes each series; charts are not drawn.
func printHistories(w io.Writer, histories []provider.PriceHistory, label string, interval provider.HistoryInterval) error {
	fmt.Fprintf(w, "Range %s, %s sampling\n", label, interval)
	tw := newTable(w)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tFROM\tTO\tPOINTS\tOPEN\tLAST\tLOW\tHIGH\tCHANGE\tPROVIDER")
	for _, h := range histories {
		if len(h.Points) == 0 {
			continue
		}
		first, last := h.Points[0], h.Points[len(h.Points)-1]
		low, high := first.Price, first.Price
		for _, pt := range h.Points {
			low = min(low, pt.Price)
			high = max(high, pt.Price)
		}
		var change *float64
		if first.Price != 0 {
			v := (last.Price - first.Price) / first.Price * 100
			change = &v
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			h.Symbol, h.Name,
			first.Timestamp.Format("2006-01-02 15:04"), last.Timestamp.Format("2006-01-02 15:04"),
			len(h.Points),
			formatAmount(first.Price), formatAmount(last.Price), formatAmount(low), formatAmount(high),
			formatChange(change), h.Provider)
	}
	return tw.Flush()
}

func printProviders(w io.Writer, providers []provider.Provider) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCAPABILITIES")
	for _, p := range providers {
		caps := provider.Capabilities(p)
		names := []string{"prices"}
		if caps.Has(provider.CapHistory) || caps.Has(provider.CapHistoryWindow) {
			names = append(names, "history")
		}
		if caps.Has(provider.CapHistoryWindow) {
			names = append(names, "date windows")
		}
		if caps.Has(provider.CapSearch) {
			names = append(names, "search")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID(), p.Name(), strings.Join(names, ", "))
	}
	return tw.Flush()
}

var one = decimal.NewFromInt(1)

// formatAmount prints two decimals for amounts of at least one unit and more
// precision below that, grouping thousands.
func formatAmount(v float64) string {
	d := decimal.NewFromFloat(v)
	abs := d.Abs()
	switch {
	case abs.IsZero():
		return "0.00"
	case abs.GreaterThanOrEqual(one):
		return groupThousands(d.StringFixed(2))
	case abs.GreaterThanOrEqual(decimal.New(1, -2)):
		return d.StringFixed(4)
	default:
		return d.Round(10).String()
	}
}

func formatChange(v *float64) string {
	if v == nil {
		return "-"
	}
	d := decimal.NewFromFloat(*v).Round(2)
	sign := ""
	if d.IsPositive() {
		sign = "+"
	}
	return sign + d.StringFixed(2) + "%"
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
