package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cgt"
)

// OrdersMarkdown renders buy and sell orders converted to the home currency,
// one table per tax year.
//
// The cost of an acquisition and the proceeds of a disposal include fees, the
// price does not.
func OrdersMarkdown(trades []cgt.Trade) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Orders\n\n")
	if len(trades) == 0 {
		fmt.Fprint(&b, "No orders.\n")
		return b.String()
	}
	for _, year := range byTaxYear(trades, func(t cgt.Trade) cgt.TaxYear { return cgt.TaxYearOf(t.Date) }) {
		fmt.Fprintf(&b, "## Tax year %s\n\n", year.Year)
		fmt.Fprintln(&b, "| Date | Security | ISIN | Ticker | Cost | Proceeds | Quantity | Price | Fees |")
		fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|---:|---:|")
		var cost, proceeds, fees cgt.Money
		for _, t := range year.Items {
			q := t.Quantity.Abs()
			var c, p, gross cgt.Money
			if t.IsAcquisition() {
				c, gross = t.Amount, t.Amount.Sub(t.Fees)
				cost = cost.Add(c)
			} else {
				p, gross = t.Amount, t.Amount.Add(t.Fees)
				proceeds = proceeds.Add(p)
			}
			fees = fees.Add(t.Fees)
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				t.Date, name(t.Security), t.Security.ISIN, t.Security.Ticker,
				optional(c), optional(p), q, gross.Div(q).Round(), optional(t.Fees))
		}
		fmt.Fprintf(&b, "| **Total** | | | | **%s** | **%s** | | | **%s** |\n\n", cost, proceeds, fees)
	}
	return b.String()
}

// yearGroup is a list of items of the same tax year.
type yearGroup[T any] struct {
	Year  cgt.TaxYear
	Items []T
}

// byTaxYear groups items sorted by date into consecutive tax years.
func byTaxYear[T any](items []T, yearOf func(T) cgt.TaxYear) []yearGroup[T] {
	var groups []yearGroup[T]
	for _, item := range items {
		y := yearOf(item)
		if len(groups) == 0 || groups[len(groups)-1].Year != y {
			groups = append(groups, yearGroup[T]{Year: y})
		}
		last := &groups[len(groups)-1]
		last.Items = append(last.Items, item)
	}
	return groups
}
