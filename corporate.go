package cgt

import (
	"fmt"
	"slices"

	"github.com/etnz/cgt/date"
)

// CorporateAction is a split (factor > 1) or a consolidation (factor < 1) of a
// security. The factor is the exact rational Numerator/Denominator: a 2 for 1
// split is 2/1, a 1 for 10 consolidation is 1/10.
//
// Holdings acquired strictly before Date are multiplied by the factor. Total
// costs never change, only the number of shares they buy.
type CorporateAction struct {
	Security    Security  `json:"security"`
	Date        date.Date `json:"date"`
	Numerator   int64     `json:"num"`
	Denominator int64     `json:"den"`
}

// Validate checks the action factor.
func (a CorporateAction) Validate() error {
	switch {
	case a.Numerator <= 0 || a.Denominator <= 0:
		return fmt.Errorf("%w: %s on %s: factor %d/%d must be positive", ErrInvalidCorporateAction, a.Security, a.Date, a.Numerator, a.Denominator)
	case a.Security.ISIN == "":
		return fmt.Errorf("%w: on %s: security identifier is missing", ErrInvalidCorporateAction, a.Date)
	case a.Date.IsZero():
		return fmt.Errorf("%w: %s: effective date is missing", ErrInvalidCorporateAction, a.Security)
	}
	return nil
}

// Apply returns q multiplied by the action factor.
func (a CorporateAction) Apply(q Quantity) Quantity {
	return q.Mul(Q(a.Numerator)).Div(Q(a.Denominator))
}

// Revert returns q divided by the action factor.
func (a CorporateAction) Revert(q Quantity) Quantity {
	return q.Mul(Q(a.Denominator)).Div(Q(a.Numerator))
}

// between reports whether a changes quantities held on from into quantities held on to.
func (a CorporateAction) between(from, to date.Date) bool {
	return from.Before(a.Date) && !to.Before(a.Date)
}

// rescale converts q shares held on from into shares held on to, a later date.
// Actions must be sorted by date.
func rescale(q Quantity, actions []CorporateAction, from, to date.Date) Quantity {
	for _, a := range actions {
		if a.between(from, to) {
			q = a.Apply(q)
		}
	}
	return q
}

// unscale converts q shares held on to back into shares held on from.
func unscale(q Quantity, actions []CorporateAction, from, to date.Date) Quantity {
	for i := len(actions) - 1; i >= 0; i-- {
		if a := actions[i]; a.between(from, to) {
			q = a.Revert(q)
		}
	}
	return q
}

// sortActions validates actions and returns them sorted by date.
func sortActions(actions []CorporateAction) ([]CorporateAction, error) {
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	sorted := slices.Clone(actions)
	slices.SortStableFunc(sorted, func(a, b CorporateAction) int { return a.Date.Compare(b.Date) })
	return sorted, nil
}

func (a CorporateAction) String() string {
	return fmt.Sprintf("%s %s %d:%d", a.Date, a.Security, a.Numerator, a.Denominator)
}

// AdjustForCorporateActions returns a copy of trades where every quantity dated
// strictly before an action's effective date has been multiplied by its factor.
//
// Actions are applied one after the other, oldest first, so that a trade
// preceding several actions is adjusted by each of them in turn. Actions and
// trades of different securities do not interact.
//
// Each trade is rescaled on its own, so a consolidation that does not divide a
// quantity evenly rounds it. Compute does not use it: it applies actions to the
// pool instead.
func AdjustForCorporateActions(trades []Trade, actions []CorporateAction) ([]Trade, error) {
	sorted, err := sortActions(actions)
	if err != nil {
		return nil, err
	}

	adjusted := slices.Clone(trades)
	for _, a := range sorted {
		for i, t := range adjusted {
			if t.Security.ISIN == a.Security.ISIN && t.Date.Before(a.Date) {
				adjusted[i].Quantity = a.Apply(t.Quantity)
			}
		}
	}
	return adjusted, nil
}
