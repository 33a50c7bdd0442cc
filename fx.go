package cgt

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/cgt/date"
	"github.com/shopspring/decimal"
)

// ErrRateNotFound reports a missing exchange rate.
var ErrRateNotFound = errors.New("exchange rate not found")

// RateProvider provides exchange rates as units of currency per one unit of
// the home currency, the way HMRC publishes them.
type RateProvider interface {
	Rate(ctx context.Context, currency string, on date.Date) (decimal.Decimal, error)
}

// FixedRates is a RateProvider with a single rate per currency, whatever the date.
type FixedRates map[string]decimal.Decimal

// Rate implements RateProvider.
func (r FixedRates) Rate(ctx context.Context, currency string, on date.Date) (decimal.Decimal, error) {
	if currency == HomeCurrency {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := r[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s on %s", ErrRateNotFound, currency, on)
	}
	return rate, nil
}
