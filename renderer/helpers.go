package renderer

import (
	"bytes"
	"io"

	"github.com/etnz/cgt"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// optional formats m, or an empty cell for zero amounts.
func optional(m cgt.Money) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}

// name returns the security name, or its ticker when it has none.
func name(sec cgt.Security) string {
	if sec.Name != "" {
		return sec.Name
	}
	return sec.Ticker
}
