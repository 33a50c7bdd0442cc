package cgt

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Timeline partitions trades by security and orders them chronologically.
type Timeline struct {
	events     map[string][]Trade // by ISIN
	securities map[string]Security
}

// NewTimeline validates trades and builds their timeline.
//
// Trades of one security must all be expressed in the same currency.
func NewTimeline(trades []Trade) (*Timeline, error) {
	tl := &Timeline{
		events:     make(map[string][]Trade),
		securities: make(map[string]Security),
	}
	for _, t := range trades {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		isin := t.Security.ISIN
		if prev := tl.events[isin]; len(prev) > 0 && prev[0].Amount.Currency() != t.Amount.Currency() {
			return nil, fmt.Errorf("%w: on %s %s: amount in %s but previous trades are in %s", ErrInvalidTransaction, t.Date, t.Security, t.Amount.Currency(), prev[0].Amount.Currency())
		}
		if _, exists := tl.securities[isin]; !exists {
			tl.securities[isin] = t.Security
		}
		tl.events[isin] = append(tl.events[isin], t)
	}
	for _, events := range tl.events {
		sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	}
	return tl, nil
}

// EventsFor returns a copy of the trades of sec, by date. Trades on the same
// day keep their input order.
func (tl *Timeline) EventsFor(sec Security) []Trade {
	return slices.Clone(tl.events[sec.ISIN])
}

// Securities returns all securities of the timeline, by ISIN.
func (tl *Timeline) Securities() []Security {
	secs := make([]Security, 0, len(tl.securities))
	for _, s := range tl.securities {
		secs = append(secs, s)
	}
	slices.SortFunc(secs, func(a, b Security) int { return strings.Compare(a.ISIN, b.ISIN) })
	return secs
}
