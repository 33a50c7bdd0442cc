package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cgt"
)

// SplitsMarkdown renders corporate actions, oldest first.
func SplitsMarkdown(actions []cgt.CorporateAction) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Splits\n\n")
	if len(actions) == 0 {
		fmt.Fprint(&b, "No splits.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Security | ISIN | Ratio |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|")
	for _, a := range actions {
		fmt.Fprintf(&b, "| %s | %s | %s | %d:%d |\n", a.Date, name(a.Security), a.Security.ISIN, a.Numerator, a.Denominator)
	}
	return b.String()
}
