package cgt

import (
	"fmt"

	"github.com/etnz/cgt/date"
)

// bedAndBreakfastDays is the length of the window following a disposal in
// which acquisitions are matched under the bed and breakfast rule.
const bedAndBreakfastDays = 30

// acquisitionDay merges all the acquisitions of a security on one day: they
// count as a single acquisition.
type acquisitionDay struct {
	date     date.Date
	quantity Quantity // not yet matched
	cost     Money    // of the quantity not yet matched
}

// take consumes q shares at the weighted average cost of the day.
func (a *acquisitionDay) take(q Quantity) Money {
	if q.Equal(a.quantity) {
		cost := a.cost
		a.quantity = Quantity{}
		a.cost = Money{cur: a.cost.cur}
		return cost
	}
	cost := a.cost.Prorate(q, a.quantity)
	a.quantity = a.quantity.Sub(q)
	a.cost = a.cost.Sub(cost)
	return cost
}

// slice is a part of a disposal day matched under a single rule.
type slice struct {
	kind     MatchKind
	acquired date.Date
	quantity Quantity
	cost     Money
}

// disposalDay merges all the disposals of a security on one day. Trades keep
// their index to allocate matches back.
type disposalDay struct {
	date      date.Date
	trades    []Trade
	indexes   []int
	quantity  Quantity // positive
	remaining Quantity
	slices    []slice
}

// matchFrom matches as much of the remaining quantity as a can provide.
//
// Quantities of d are in shares held on d.date and those of a in shares held
// on a.date: actions effective in between convert one into the other.
func (d *disposalDay) matchFrom(a *acquisitionDay, kind MatchKind, actions []CorporateAction) {
	if !d.remaining.IsPositive() {
		return
	}
	want := rescale(d.remaining, actions, d.date, a.date)
	q := want.Min(a.quantity)
	if !q.IsPositive() {
		return
	}
	sold := d.remaining
	if q.LessThan(want) {
		sold = unscale(q, actions, d.date, a.date).Min(d.remaining)
	}
	cost := a.take(q)
	d.slices = append(d.slices, slice{kind: kind, acquired: a.date, quantity: sold, cost: cost})
	d.remaining = d.remaining.Sub(sold)
}

// Compute matches every disposal of sec against its acquisitions and returns
// the matches and the final section 104 pool.
//
// Trades must all belong to sec. Disposals are matched in two passes:
//
//  1. same-day acquisitions for every disposal, then acquisitions in the 30
//     days following each disposal, oldest disposal and oldest acquisition first.
//  2. a replay in date order where unmatched acquisitions enter the pool,
//     corporate actions rescale it on their effective date, and unmatched
//     disposals are taken from it at average cost.
//
// Every quantity is in shares held on its own date, matches included. Actions
// rescale the aggregated pool rather than each earlier trade, so a
// consolidation never loses a fraction of a share across several purchases.
//
// Trades on the same day are merged, so their input order never changes the
// result. Matches are reported per disposal trade, in date order, then input
// order, then by rule.
func Compute(sec Security, trades []Trade, actions []CorporateAction) (*Result, error) {
	if sec.ISIN == "" {
		return nil, fmt.Errorf("%w: security identifier is missing", ErrInvalidTransaction)
	}
	for _, t := range trades {
		if t.Security.ISIN != sec.ISIN {
			return nil, fmt.Errorf("%w: on %s: trade of %s cannot be matched as %s", ErrInvalidTransaction, t.Date, t.Security, sec)
		}
	}
	for _, a := range actions {
		if a.Security.ISIN != sec.ISIN {
			return nil, fmt.Errorf("%w: action on %s cannot apply to %s", ErrInvalidCorporateAction, a.Security, sec)
		}
	}
	tl, err := NewTimeline(trades)
	if err != nil {
		return nil, err
	}
	actions, err = sortActions(actions)
	if err != nil {
		return nil, err
	}

	acquisitions, disposals := mergeDays(tl.EventsFor(sec))
	sameDay := make(map[date.Date]*acquisitionDay, len(acquisitions))
	for _, a := range acquisitions {
		sameDay[a.date] = a
	}

	for _, d := range disposals {
		if a, exists := sameDay[d.date]; exists {
			d.matchFrom(a, SameDay, nil)
		}
	}

	for _, d := range disposals {
		for _, a := range acquisitions {
			if d.remaining.IsZero() {
				break
			}
			if !a.date.After(d.date) {
				continue
			}
			if a.date.Sub(d.date) > bedAndBreakfastDays {
				break
			}
			d.matchFrom(a, BedAndBreakfast, actions)
		}
	}

	pool := &Pool{}
	i, j, k := 0, 0, 0
	// applyActions rescales the pool by the actions effective on or before on.
	applyActions := func(on date.Date) error {
		for ; k < len(actions) && !on.Before(actions[k].Date); k++ {
			if err := pool.Split(actions[k]); err != nil {
				return err
			}
		}
		return nil
	}
	for i < len(acquisitions) || j < len(disposals) {
		// acquisitions come first on the same day.
		if j == len(disposals) || (i < len(acquisitions) && !acquisitions[i].date.After(disposals[j].date)) {
			a := acquisitions[i]
			i++
			if err := applyActions(a.date); err != nil {
				return nil, err
			}
			if a.quantity.IsPositive() {
				if err := pool.Acquire(a.quantity, a.cost); err != nil {
					return nil, fmt.Errorf("on %s %s: %w", a.date, sec, err)
				}
			}
			continue
		}
		d := disposals[j]
		j++
		if err := applyActions(d.date); err != nil {
			return nil, err
		}
		if d.remaining.IsZero() {
			continue
		}
		if d.remaining.GreaterThan(pool.Quantity()) {
			return nil, &InsufficientPoolError{Security: sec, Date: d.date, Quantity: d.remaining, Available: pool.Quantity()}
		}
		cost, err := pool.Remove(d.remaining)
		if err != nil {
			return nil, fmt.Errorf("on %s %s: %w", d.date, sec, err)
		}
		d.slices = append(d.slices, slice{kind: Section104, quantity: d.remaining, cost: cost})
		d.remaining = Quantity{}
	}

	for ; k < len(actions); k++ {
		if err := pool.Split(actions[k]); err != nil {
			return nil, err
		}
	}

	res := &Result{Security: sec, Pool: pool}
	for _, d := range disposals {
		res.Matches = append(res.Matches, d.allocate(sec)...)
	}
	return res, nil
}

// mergeDays groups date ordered events into acquisition and disposal days.
func mergeDays(events []Trade) (acquisitions []*acquisitionDay, disposals []*disposalDay) {
	for i, t := range events {
		if t.IsAcquisition() {
			if n := len(acquisitions); n > 0 && acquisitions[n-1].date == t.Date {
				a := acquisitions[n-1]
				a.quantity = a.quantity.Add(t.Quantity)
				a.cost = a.cost.Add(t.Amount)
				continue
			}
			acquisitions = append(acquisitions, &acquisitionDay{date: t.Date, quantity: t.Quantity, cost: t.Amount})
			continue
		}
		q := t.Quantity.Abs()
		if n := len(disposals); n > 0 && disposals[n-1].date == t.Date {
			d := disposals[n-1]
			d.trades = append(d.trades, t)
			d.indexes = append(d.indexes, i)
			d.quantity = d.quantity.Add(q)
			d.remaining = d.remaining.Add(q)
			continue
		}
		disposals = append(disposals, &disposalDay{date: t.Date, trades: []Trade{t}, indexes: []int{i}, quantity: q, remaining: q})
	}
	return acquisitions, disposals
}

// allocate splits every slice of the day between its disposal trades, pro rata
// by quantity.
//
// The last trade takes what is left of each slice, and the last slice takes
// what is left of each trade, so quantities, costs and proceeds add up exactly
// both per trade and per slice.
func (d *disposalDay) allocate(sec Security) []Match {
	var matches []Match
	n, m := len(d.trades), len(d.slices)
	if m == 0 {
		return nil
	}
	allocatedQ := make([]Quantity, m)
	allocatedC := make([]Money, m)
	for i, t := range d.trades {
		q := t.Quantity.Abs()
		var rowQ Quantity
		var rowP Money
		for j, s := range d.slices {
			var x Quantity
			var cost, proceeds Money
			switch {
			case i == n-1:
				x = s.quantity.Sub(allocatedQ[j])
				cost = s.cost.Sub(allocatedC[j])
			case j == m-1:
				x = q.Sub(rowQ)
				cost = s.cost.Prorate(q, d.quantity)
			default:
				x = s.quantity.Mul(q).Div(d.quantity)
				cost = s.cost.Prorate(q, d.quantity)
			}
			if j == m-1 {
				proceeds = t.Amount.Sub(rowP)
			} else {
				proceeds = t.Amount.Prorate(x, q)
			}
			rowQ = rowQ.Add(x)
			rowP = rowP.Add(proceeds)
			allocatedQ[j] = allocatedQ[j].Add(x)
			allocatedC[j] = allocatedC[j].Add(cost)

			if x.IsZero() {
				continue
			}
			matches = append(matches, newMatch(sec, d.date, s.kind, s.acquired, x, cost, proceeds, d.indexes[i]))
		}
	}
	return matches
}
