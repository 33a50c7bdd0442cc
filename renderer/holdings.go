package renderer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/cgt"
	"github.com/shopspring/decimal"
)

// HoldingsOptions configures the holdings report.
type HoldingsOptions struct {
	AverageCost bool
	// Values are the current market values by ISIN, in the home currency.
	// Gain and weight columns are shown when set.
	Values map[string]cgt.Money
}

// HoldingsMarkdown renders the Section 104 pools, largest cost first.
func HoldingsMarkdown(holdings []cgt.Holding, opts HoldingsOptions) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Holdings\n\n")
	if len(holdings) == 0 {
		fmt.Fprint(&b, "No holdings.\n")
		return b.String()
	}
	holdings = slices.Clone(holdings)
	slices.SortStableFunc(holdings, func(a, b cgt.Holding) int { return b.Cost.Decimal().Cmp(a.Cost.Decimal()) })

	var total cgt.Money
	for _, v := range opts.Values {
		total = total.Add(v)
	}
	showValues := opts.Values != nil

	header := []string{"Security", "ISIN", "Cost", "Quantity"}
	aligns := []string{":---", ":---", "---:", "---:"}
	if opts.AverageCost {
		header, aligns = append(header, "Average Cost"), append(aligns, "---:")
	}
	if showValues {
		header, aligns = append(header, "Current Value", "Gain/Loss", "Weight"), append(aligns, "---:", "---:", "---:")
	}
	fmt.Fprintf(&b, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(&b, "|%s|\n", strings.Join(aligns, "|"))

	var cost cgt.Money
	for _, h := range holdings {
		cost = cost.Add(h.Cost)
		cells := []string{name(h.Security), h.Security.ISIN, h.Cost.String(), h.Quantity.String()}
		if opts.AverageCost {
			cells = append(cells, h.AverageCost.Round().String())
		}
		if showValues {
			if v, ok := opts.Values[h.Security.ISIN]; ok {
				weight := "n/a"
				if total.IsPositive() {
					weight = v.Decimal().Div(total.Decimal()).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
				}
				cells = append(cells, v.String(), v.Sub(h.Cost).SignedString(), weight)
			} else {
				cells = append(cells, "n/a", "n/a", "n/a")
			}
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}
	cells := []string{"**Total**", "", "**" + cost.String() + "**", ""}
	if opts.AverageCost {
		cells = append(cells, "")
	}
	if showValues {
		cells = append(cells, "**"+total.String()+"**", "", "")
	}
	fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	return b.String()
}
