package cgt

import "github.com/shopspring/decimal"

// Fees incurred on an order, in the order currency.
type Fees struct {
	StampDuty decimal.Decimal `json:"stampDuty"` // stamp duty or stamp duty reserve tax
	Forex     decimal.Decimal `json:"forex"`     // currency conversion
	Finra     decimal.Decimal `json:"finra"`     // US trading activity fee
	Sec       decimal.Decimal `json:"sec"`       // US SEC fee
}

// Total returns the sum of all fees. The forex fee is left out when withForex is false.
func (f Fees) Total(withForex bool) decimal.Decimal {
	total := f.StampDuty.Add(f.Finra).Add(f.Sec)
	if withForex {
		total = total.Add(f.Forex)
	}
	return total
}

// IsZero returns true if there are no fees at all.
func (f Fees) IsZero() bool { return f.Total(true).IsZero() }

func (f Fees) validate() bool {
	return !f.StampDuty.IsNegative() && !f.Forex.IsNegative() && !f.Finra.IsNegative() && !f.Sec.IsNegative()
}

// MarshalJSON writes only the non zero fees.
func (f Fees) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, fee := range []struct {
		key   string
		value decimal.Decimal
	}{{"stampDuty", f.StampDuty}, {"forex", f.Forex}, {"finra", f.Finra}, {"sec", f.Sec}} {
		if !fee.value.IsZero() {
			w.Append(fee.key, fee.value)
		}
	}
	return w.MarshalJSON()
}
