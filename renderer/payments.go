package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cgt"
)

func paymentYear(p cgt.Payment) cgt.TaxYear { return cgt.TaxYearOf(p.Date) }

// DividendsMarkdown renders dividends, net of the tax withheld at source.
func DividendsMarkdown(payments []cgt.Payment) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Dividends\n\n")
	if len(payments) == 0 {
		fmt.Fprint(&b, "No dividends.\n")
		return b.String()
	}
	for _, year := range byTaxYear(payments, paymentYear) {
		fmt.Fprintf(&b, "## Tax year %s\n\n", year.Year)
		fmt.Fprintln(&b, "| Date | Security | ISIN | Ticker | Net Amount | Withheld |")
		fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|")
		var total, withheld cgt.Money
		for _, p := range year.Items {
			net := p.Amount.Sub(p.Withheld)
			total, withheld = total.Add(net), withheld.Add(p.Withheld)
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				p.Date, name(p.Security), p.Security.ISIN, p.Security.Ticker, net, optional(p.Withheld))
		}
		fmt.Fprintf(&b, "| **Total** | | | | **%s** | **%s** |\n\n", total, withheld)
	}
	return b.String()
}

// TransfersMarkdown renders deposits and withdrawals in separate columns.
func TransfersMarkdown(payments []cgt.Payment) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Transfers\n\n")
	if len(payments) == 0 {
		fmt.Fprint(&b, "No transfers.\n")
		return b.String()
	}
	for _, year := range byTaxYear(payments, paymentYear) {
		fmt.Fprintf(&b, "## Tax year %s\n\n", year.Year)
		fmt.Fprintln(&b, "| Date | Deposit | Withdrawal |")
		fmt.Fprintln(&b, "|:---|---:|---:|")
		var deposited, withdrew cgt.Money
		for _, p := range year.Items {
			var in, out cgt.Money
			if p.Amount.IsNegative() {
				out = p.Amount.Neg()
				withdrew = withdrew.Add(out)
			} else {
				in = p.Amount
				deposited = deposited.Add(in)
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", p.Date, optional(in), optional(out))
		}
		fmt.Fprintf(&b, "| **Total** | **%s** | **%s** |\n\n", deposited, withdrew)
	}
	return b.String()
}

// InterestMarkdown renders interest earned on cash.
func InterestMarkdown(payments []cgt.Payment) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Interest\n\n")
	if len(payments) == 0 {
		fmt.Fprint(&b, "No interest.\n")
		return b.String()
	}
	for _, year := range byTaxYear(payments, paymentYear) {
		fmt.Fprintf(&b, "## Tax year %s\n\n", year.Year)
		fmt.Fprintln(&b, "| Date | Amount |")
		fmt.Fprintln(&b, "|:---|---:|")
		var total cgt.Money
		for _, p := range year.Items {
			total = total.Add(p.Amount)
			fmt.Fprintf(&b, "| %s | %s |\n", p.Date, p.Amount)
		}
		fmt.Fprintf(&b, "| **Total** | **%s** |\n\n", total)
	}
	return b.String()
}
