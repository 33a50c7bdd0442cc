package cgt

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// HomeCurrency is the currency tax figures are computed in.
const HomeCurrency = "GBP"

// Money represents an exact monetary value in a given currency.
//
// The zero value is a zero amount with no currency. The "" currency is weak: it
// adopts the currency of the other operand in Add and Sub.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns a Money. Strings are parsed exactly, and panic if malformed.
func M[T float64 | int | int64 | string | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// GBP is a shortcut for M(value, "GBP").
func GBP[T float64 | int | int64 | string | decimal.Decimal](value T) Money {
	return M(value, HomeCurrency)
}

// ValidateCurrency checks that code is a known ISO-4217 currency code.
func ValidateCurrency(code string) error {
	if code == "" {
		return fmt.Errorf("currency is missing")
	}
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("unknown currency %q", code)
	}
	return nil
}

// currency returns the money's currency, never nil.
func (m Money) currency() *money.Currency {
	return money.New(0, m.cur).Currency()
}

// String returns the amount formatted for display, rounded to the currency's minor unit.
func (m Money) String() string {
	if money.GetCurrency(m.cur) == nil {
		return m.value.StringFixed(2)
	}
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation with an explicit sign, "-" for zero.
func (m Money) SignedString() string {
	if m.Round().IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Div(q Quantity) Money            { return Money{value: m.value.Div(q.value), cur: m.cur} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// Prorate returns the share of m corresponding to part out of whole: m * part / whole.
// The multiplication happens first so that exact fractions stay exact as long as possible.
func (m Money) Prorate(part, whole Quantity) Money {
	return Money{value: m.value.Mul(part.value).Div(whole.value), cur: m.cur}
}

// Round returns m rounded to the currency's minor unit. Only used for display and reports.
func (m Money) Round() Money {
	if money.GetCurrency(m.cur) == nil {
		return Money{value: m.value.Round(2), cur: m.cur}
	}
	return Money{value: m.value.Round(int32(m.currency().Fraction)), cur: m.cur}
}

// Convert converts m into the home currency using rate, expressed as units of
// m's currency per one unit of home currency (the HMRC convention).
func (m Money) Convert(rate decimal.Decimal, home string) (Money, error) {
	if m.cur == home {
		return m, nil
	}
	if !rate.IsPositive() {
		return Money{}, fmt.Errorf("cannot convert %s to %s: rate must be positive, got %s", m.cur, home, rate)
	}
	return Money{value: m.value.Div(rate), cur: home}, nil
}

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// MarshalJSON writes the exact amount as a json number, followed by its currency.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("amount", m.value)
	w.Optional("currency", m.cur)
	return w.MarshalJSON()
}
