package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cgt"
)

// GainsOptions filters the capital gains report.
type GainsOptions struct {
	Year       cgt.TaxYear // zero for all tax years
	ISIN       string      // empty for all securities
	GainsOnly  bool
	LossesOnly bool
}

func (o GainsOptions) keep(m cgt.Match) bool {
	switch {
	case o.Year != 0 && cgt.TaxYearOf(m.DisposalDate) != o.Year:
		return false
	case o.ISIN != "" && m.Security.ISIN != o.ISIN:
		return false
	case o.GainsOnly && m.Gain.IsNegative():
		return false
	case o.LossesOnly && m.Gain.IsPositive():
		return false
	}
	return true
}

// identification describes the rule that matched a disposal.
func identification(m cgt.Match) string {
	if m.Kind == cgt.Section104 {
		return "Section 104"
	}
	return fmt.Sprintf("%s (%s)", m.Kind, m.AcquisitionDate)
}

// CapitalGainsMarkdown renders one table of matches per tax year, followed
// by the summary of the matches shown.
func CapitalGainsMarkdown(matches []cgt.Match, opts GainsOptions) string {
	var kept []cgt.Match
	for _, m := range matches {
		if opts.keep(m) {
			kept = append(kept, m)
		}
	}

	var b strings.Builder
	if len(kept) == 0 {
		fmt.Fprint(&b, "# Capital Gains Tax Report\n\nNo disposals.\n")
		return b.String()
	}
	summaries := make(map[cgt.TaxYear]cgt.YearSummary)
	for _, s := range cgt.Summarize(kept) {
		summaries[s.Year] = s
	}
	for _, year := range byTaxYear(kept, func(m cgt.Match) cgt.TaxYear { return cgt.TaxYearOf(m.DisposalDate) }) {
		r := year.Year.Range()
		fmt.Fprintf(&b, "# Capital Gains Tax Report %s\n\n", year.Year)
		fmt.Fprintf(&b, "%s to %s\n\n", r.From, r.To)
		fmt.Fprintln(&b, "| Disposal Date | Identification | Security | ISIN | Quantity | Cost | Proceeds | Gain/Loss |")
		fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|---:|")
		for _, m := range year.Items {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
				m.DisposalDate, identification(m), name(m.Security), m.Security.ISIN,
				m.Quantity, m.Cost, m.Proceeds, m.Gain.SignedString())
		}
		fmt.Fprintln(&b)
		fmt.Fprint(&b, renderSummary(summaries[year.Year]))
		fmt.Fprintln(&b)
	}
	return b.String()
}
