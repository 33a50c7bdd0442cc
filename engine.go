package cgt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"
)

// Engine computes the matches and section 104 pools of a whole portfolio.
//
// It owns one pool per security, keyed by ISIN, for the duration of a run.
type Engine struct {
	home       string
	pools      map[string]*Pool
	securities map[string]Security
	matches    []Match
}

// NewEngine returns an Engine for trades in the home currency.
func NewEngine(home string) *Engine {
	return &Engine{
		home:       home,
		pools:      make(map[string]*Pool),
		securities: make(map[string]Security),
	}
}

// Run matches all trades, security by security.
//
// Invalid trades or corporate actions abort the run. An insufficient pool
// only fails its own security: the others are still computed, and all
// failures are returned joined together.
func (e *Engine) Run(ctx context.Context, trades []Trade, actions []CorporateAction) error {
	e.pools = make(map[string]*Pool)
	e.securities = make(map[string]Security)
	e.matches = nil

	for _, t := range trades {
		if c := t.Amount.Currency(); c != e.home {
			return fmt.Errorf("%w: on %s %s: amount must be in %s, got %q", ErrInvalidTransaction, t.Date, t.Security, e.home, c)
		}
	}
	tl, err := NewTimeline(trades)
	if err != nil {
		return err
	}
	actionsOf := make(map[string][]CorporateAction)
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return err
		}
		actionsOf[a.Security.ISIN] = append(actionsOf[a.Security.ISIN], a)
	}

	var errs []error
	for _, sec := range tl.Securities() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.securities[sec.ISIN] = sec
		res, err := Compute(sec, tl.EventsFor(sec), actionsOf[sec.ISIN])
		if errors.Is(err, ErrInsufficientPool) {
			log.Printf("skipping %s: %v", sec, err)
			errs = append(errs, err)
			continue
		}
		if err != nil {
			return err
		}
		log.Printf("%s: %d matches, pool of %s", sec, len(res.Matches), res.Pool)
		e.pools[sec.ISIN] = res.Pool
		e.matches = append(e.matches, res.Matches...)
	}
	sort.SliceStable(e.matches, func(i, j int) bool { return e.matches[i].DisposalDate.Before(e.matches[j].DisposalDate) })
	return errors.Join(errs...)
}

// Matches returns all matches of the last run, by disposal date.
func (e *Engine) Matches() []Match { return slices.Clone(e.matches) }

// Pool returns a copy of the section 104 pool of the security identified by
// isin, and false if it was not computed.
func (e *Engine) Pool(isin string) (Pool, bool) {
	p, exists := e.pools[isin]
	if !exists {
		return Pool{}, false
	}
	return *p, true
}

// Holding is a non empty section 104 pool.
type Holding struct {
	Security    Security
	Quantity    Quantity
	Cost        Money
	AverageCost Money
}

// Holdings returns the non empty pools of the last run, by ISIN.
func (e *Engine) Holdings() []Holding {
	var holdings []Holding
	for isin, p := range e.pools {
		if p.Quantity().IsZero() {
			continue
		}
		holdings = append(holdings, Holding{
			Security:    e.securities[isin],
			Quantity:    p.Quantity(),
			Cost:        p.Cost(),
			AverageCost: p.AverageCost(),
		})
	}
	slices.SortFunc(holdings, func(a, b Holding) int { return strings.Compare(a.Security.ISIN, b.Security.ISIN) })
	return holdings
}
