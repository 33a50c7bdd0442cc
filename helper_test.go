package cgt

import (
	"iter"

	"github.com/etnz/cgt/date"
)

var (
	AAPL = Security{ISIN: "US0378331005", Ticker: "AAPL", Name: "Apple Inc."}
	MSFT = Security{ISIN: "US5949181045", Ticker: "MSFT", Name: "Microsoft Corp."}
	BP   = Security{ISIN: "GB0007980591", Ticker: "BP.", Name: "BP plc"}
)

// day is a helper for test to create dates from const.
func day(s string) date.Date { return date.MustParse(s) }

// buy is a helper for test to create an acquisition in pounds.
func buy(sec Security, on string, q float64, cost string) Trade {
	return Trade{Date: day(on), Security: sec, Quantity: Q(q), Amount: GBP(cost)}
}

// sell is a helper for test to create a disposal in pounds.
func sell(sec Security, on string, q float64, proceeds string) Trade {
	return Trade{Date: day(on), Security: sec, Quantity: Q(-q), Amount: GBP(proceeds)}
}

// split is a helper for test to create a corporate action.
func split(sec Security, on string, num, den int64) CorporateAction {
	return CorporateAction{Security: sec, Date: day(on), Numerator: num, Denominator: den}
}

// row is a comparable digest of a Match, amounts rounded to the penny.
type row struct {
	Kind     MatchKind
	Acquired string
	Quantity string
	Cost     string
	Proceeds string
}

func rows(matches []Match) []row {
	var rs []row
	for _, m := range matches {
		r := row{Kind: m.Kind, Quantity: m.Quantity.String(), Cost: m.Cost.Decimal().StringFixed(2), Proceeds: m.Proceeds.Decimal().StringFixed(2)}
		if !m.AcquisitionDate.IsZero() {
			r.Acquired = m.AcquisitionDate.String()
		}
		rs = append(rs, r)
	}
	return rs
}

// first returns the first element of seq.
func first[K, V any](seq iter.Seq2[K, V]) (k K, v V) {
	for k, v = range seq {
		break
	}
	return k, v
}
