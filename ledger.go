package cgt

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/etnz/cgt/date"
	"github.com/shopspring/decimal"
)

var (
	// ErrAmbiguousTicker reports a ticker used for several ISINs.
	ErrAmbiguousTicker = errors.New("ambiguous ticker")
	// ErrUnknownSecurity reports a ticker or ISIN absent from the ledger.
	ErrUnknownSecurity = errors.New("unknown security")
	// ErrOrderDate reports an order older than the oldest supported tax rules.
	ErrOrderDate = errors.New("order date not supported")
)

// MinOrderDate is the first day of the 2008/09 tax year, when the current
// share identification rules came into force.
var MinOrderDate = date.New(2008, time.April, 6)

// Ledger represents a list of transactions.
//
// In a Ledger transactions are always in chronological order.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{transactions: make([]Transaction, 0)}
}

// Append adds transactions and keeps the ledger sorted.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// stableSort sorts the ledger by transaction date. Transactions on the same day
// keep their relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
}

// Transactions returns an iterator over the transactions accepted by all filters.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
	next:
		for i, tx := range l.transactions {
			for _, filter := range filters {
				if !filter(tx) {
					continue next
				}
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// ByCommand returns a predicate accepting the given commands.
func ByCommand(cmds ...CommandType) func(Transaction) bool {
	return func(tx Transaction) bool { return slices.Contains(cmds, tx.What()) }
}

// BySecurity returns a predicate accepting transactions of a security.
func BySecurity(isin string) func(Transaction) bool {
	return func(tx Transaction) bool {
		sec, ok := securityOf(tx)
		return ok && sec.ISIN == isin
	}
}

// InRange returns a predicate accepting transactions within r.
func InRange(r date.Range) func(Transaction) bool {
	return func(tx Transaction) bool { return r.Contains(tx.When()) }
}

func securityOf(tx Transaction) (Security, bool) {
	switch v := tx.(type) {
	case Buy:
		return v.Security, true
	case Sell:
		return v.Security, true
	case Split:
		return v.Security, true
	case Dividend:
		return v.Security, true
	}
	return Security{}, false
}

// Securities returns every security of the ledger, by ISIN. Ticker and name
// come from the most recent transaction that has them.
func (l *Ledger) Securities() []Security {
	secs := make(map[string]Security)
	for _, tx := range l.transactions {
		s, ok := securityOf(tx)
		if !ok {
			continue
		}
		prev := secs[s.ISIN]
		if s.Ticker == "" {
			s.Ticker = prev.Ticker
		}
		if s.Name == "" {
			s.Name = prev.Name
		}
		secs[s.ISIN] = s
	}
	isins := slices.Sorted(maps.Keys(secs))
	res := make([]Security, 0, len(isins))
	for _, isin := range isins {
		res = append(res, secs[isin])
	}
	return res
}

// Security resolves an ISIN or a ticker into a security of the ledger.
func (l *Ledger) Security(s string) (Security, error) {
	var found []Security
	for _, sec := range l.Securities() {
		if sec.ISIN == s {
			return sec, nil
		}
		if strings.EqualFold(sec.Ticker, s) {
			found = append(found, sec)
		}
	}
	switch len(found) {
	case 0:
		return Security{}, fmt.Errorf("%w: %q", ErrUnknownSecurity, s)
	case 1:
		return found[0], nil
	default:
		return Security{}, fmt.Errorf("%w: %q is used by %s and %s", ErrAmbiguousTicker, s, found[0].ISIN, found[1].ISIN)
	}
}

// Validate checks every transaction, rejects tickers shared by several ISINs
// and orders before MinOrderDate. All problems are reported.
func (l *Ledger) Validate() error {
	var errs []error
	isins := make(map[string]map[string]bool) // by ticker
	for _, tx := range l.transactions {
		if err := tx.Validate(); err != nil {
			errs = append(errs, err)
		}
		if tx.What() == CmdBuy || tx.What() == CmdSell {
			if tx.When().Before(MinOrderDate) {
				errs = append(errs, fmt.Errorf("%w: %s on %s is before %s", ErrOrderDate, tx.What(), tx.When(), MinOrderDate))
			}
		}
		if sec, ok := securityOf(tx); ok && sec.Ticker != "" {
			if isins[sec.Ticker] == nil {
				isins[sec.Ticker] = make(map[string]bool)
			}
			isins[sec.Ticker][sec.ISIN] = true
		}
	}
	for _, ticker := range slices.Sorted(maps.Keys(isins)) {
		if len(isins[ticker]) > 1 {
			errs = append(errs, fmt.Errorf("%w: %q is used by %s", ErrAmbiguousTicker, ticker, strings.Join(slices.Sorted(maps.Keys(isins[ticker])), ", ")))
		}
	}
	return errors.Join(errs...)
}

// CorporateActions returns the splits recorded in the ledger.
func (l *Ledger) CorporateActions() []CorporateAction {
	var actions []CorporateAction
	for _, tx := range l.Transactions(ByCommand(CmdSplit)) {
		actions = append(actions, tx.(Split).CorporateAction())
	}
	return actions
}

type tradesOptions struct {
	withForex bool
}

// TradesOption customizes Ledger.Trades.
type TradesOption func(*tradesOptions)

// WithoutForexFees leaves currency conversion fees out of the allowable costs
// and out of the disposal proceeds deductions.
func WithoutForexFees() TradesOption {
	return func(o *tradesOptions) { o.withForex = false }
}

// rate returns the rate to convert from currency on day, using override when set.
func rate(ctx context.Context, rates RateProvider, currency string, on date.Date, override decimal.Decimal) (decimal.Decimal, error) {
	if currency == HomeCurrency {
		return decimal.NewFromInt(1), nil
	}
	if override.IsPositive() {
		return override, nil
	}
	if rates == nil {
		return decimal.Zero, fmt.Errorf("%w: no exchange rate provider for %s", ErrRateNotFound, currency)
	}
	return rates.Rate(ctx, currency, on)
}

// Trades converts the ledger orders into trades in the home currency.
//
// Fees are folded in: the cost of an acquisition is its amount plus fees, the
// proceeds of a disposal are its amount less fees.
func (l *Ledger) Trades(ctx context.Context, rates RateProvider, opts ...TradesOption) ([]Trade, error) {
	options := tradesOptions{withForex: true}
	for _, opt := range opts {
		opt(&options)
	}

	var trades []Trade
	for _, tx := range l.Transactions(ByCommand(CmdBuy, CmdSell)) {
		var order orderCmd
		sign := Q(1)
		switch v := tx.(type) {
		case Buy:
			order = v.orderCmd
		case Sell:
			order = v.orderCmd
			sign = Q(-1)
		}
		r, err := rate(ctx, rates, order.Amount.Currency(), order.Date, order.Rate)
		if err != nil {
			return nil, fmt.Errorf("%s on %s %s: %w", order.Command, order.Date, order.Security, err)
		}
		fees := M(order.Fees.Total(options.withForex), order.Amount.Currency())
		gross := order.Amount.Add(fees)
		if sign.IsNegative() {
			gross = order.Amount.Sub(fees)
		}
		amount, err := gross.Convert(r, HomeCurrency)
		if err != nil {
			return nil, fmt.Errorf("%s on %s %s: %w", order.Command, order.Date, order.Security, err)
		}
		homeFees, err := fees.Convert(r, HomeCurrency)
		if err != nil {
			return nil, fmt.Errorf("%s on %s %s: %w", order.Command, order.Date, order.Security, err)
		}
		trades = append(trades, Trade{
			Date:     order.Date,
			Security: order.Security,
			Quantity: order.Quantity.Mul(sign),
			Amount:   amount,
			Fees:     homeFees,
			Rate:     r,
		})
	}
	return trades, nil
}

// Payment is a dividend, an interest payment or a cash transfer converted
// into the home currency.
type Payment struct {
	Date     date.Date
	Kind     CommandType
	Security Security // only for dividends
	Amount   Money    // negative for a withdrawal
	Withheld Money    // tax withheld at source
	Rate     decimal.Decimal
}

// Payments converts the ledger dividends, interest and transfers of the given
// kinds into the home currency.
func (l *Ledger) Payments(ctx context.Context, rates RateProvider, kinds ...CommandType) ([]Payment, error) {
	var payments []Payment
	for _, tx := range l.Transactions(ByCommand(kinds...)) {
		var p Payment
		var amount Money
		var withheld, override decimal.Decimal
		switch v := tx.(type) {
		case Dividend:
			p.Security = v.Security
			amount, withheld, override = v.Amount, v.Withheld, v.Rate
		case Interest:
			amount, override = v.Amount, v.Rate
		case Deposit:
			amount, override = v.Amount, v.Rate
		case Withdraw:
			amount, override = v.Amount.Neg(), v.Rate
		default:
			continue
		}
		r, err := rate(ctx, rates, amount.Currency(), tx.When(), override)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", tx.What(), tx.When(), err)
		}
		if p.Amount, err = amount.Convert(r, HomeCurrency); err != nil {
			return nil, fmt.Errorf("%s on %s: %w", tx.What(), tx.When(), err)
		}
		if p.Withheld, err = M(withheld, amount.Currency()).Convert(r, HomeCurrency); err != nil {
			return nil, fmt.Errorf("%s on %s: %w", tx.What(), tx.When(), err)
		}
		p.Date, p.Kind, p.Rate = tx.When(), tx.What(), r
		payments = append(payments, p)
	}
	return payments, nil
}
