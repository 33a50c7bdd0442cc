package cgt

import (
	"fmt"

	"github.com/etnz/cgt/date"
	"github.com/shopspring/decimal"
)

// Trade is an acquisition or a disposal of a security, as consumed by the matcher.
//
// Quantity is signed: positive for an acquisition, negative for a disposal.
// Amount is the total cost of an acquisition or the net proceeds of a disposal,
// always positive, already converted to the home currency and with fees folded
// in. Fees and Rate are only kept for reporting.
type Trade struct {
	Date     date.Date
	Security Security
	Quantity Quantity
	Amount   Money
	Fees     Money // included in Amount
	Rate     decimal.Decimal
}

// IsAcquisition returns true for a positive quantity.
func (t Trade) IsAcquisition() bool { return t.Quantity.IsPositive() }

// IsDisposal returns true for a negative quantity.
func (t Trade) IsDisposal() bool { return t.Quantity.IsNegative() }

// Validate checks that the trade can be matched.
func (t Trade) Validate() error {
	switch {
	case t.Security.ISIN == "":
		return fmt.Errorf("%w: on %s: security identifier is missing", ErrInvalidTransaction, t.Date)
	case t.Date.IsZero():
		return fmt.Errorf("%w: %s: date is missing", ErrInvalidTransaction, t.Security)
	case t.Quantity.IsZero():
		return fmt.Errorf("%w: on %s %s: quantity cannot be zero", ErrInvalidTransaction, t.Date, t.Security)
	case t.Amount.IsNegative():
		return fmt.Errorf("%w: on %s %s: amount cannot be negative, got %s", ErrInvalidTransaction, t.Date, t.Security, t.Amount)
	}
	return nil
}

func (t Trade) String() string {
	verb := "buy"
	if t.IsDisposal() {
		verb = "sell"
	}
	return fmt.Sprintf("%s %s %s %s for %s", t.Date, verb, t.Quantity.Abs(), t.Security, t.Amount)
}
