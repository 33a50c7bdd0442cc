package cgt

import "fmt"

// Pool is a section 104 holding: all the shares of a security that were not
// matched under the same-day or the bed and breakfast rules, at their average cost.
//
// The zero value is an empty pool ready to use.
type Pool struct {
	quantity Quantity
	cost     Money
}

// Quantity returns the number of shares in the pool.
func (p *Pool) Quantity() Quantity { return p.quantity }

// Cost returns the total allowable cost of the pool.
func (p *Pool) Cost() Money { return p.cost }

// AverageCost returns the cost per share, or zero for an empty pool.
func (p *Pool) AverageCost() Money {
	if p.quantity.IsZero() {
		return Money{cur: p.cost.cur}
	}
	return p.cost.Div(p.quantity)
}

// Acquire adds q shares for a total cost to the pool.
func (p *Pool) Acquire(q Quantity, cost Money) error {
	if !q.IsPositive() {
		return fmt.Errorf("cannot add %s shares to a pool", q)
	}
	if cost.IsNegative() {
		return fmt.Errorf("cannot add shares at a negative cost %s", cost)
	}
	p.quantity = p.quantity.Add(q)
	p.cost = p.cost.Add(cost)
	return nil
}

// Remove takes q shares out of the pool and returns their allowable cost, a
// proportional slice of the pool cost.
//
// The removed cost is subtracted as is from the pool, so the pool cost plus all
// removed costs always equals the acquired costs exactly. Removing the whole
// pool removes the whole cost.
func (p *Pool) Remove(q Quantity) (Money, error) {
	if q.IsNegative() {
		return Money{}, fmt.Errorf("cannot remove %s shares from a pool", q)
	}
	if q.GreaterThan(p.quantity) {
		return Money{}, fmt.Errorf("%w: cannot remove %s shares from a pool of %s", ErrInsufficientPool, q, p.quantity)
	}
	if q.IsZero() {
		return Money{cur: p.cost.cur}, nil
	}
	if q.Equal(p.quantity) {
		removed := p.cost
		p.quantity = Quantity{}
		p.cost = Money{cur: p.cost.cur}
		return removed, nil
	}
	removed := p.cost.Prorate(q, p.quantity)
	p.quantity = p.quantity.Sub(q)
	p.cost = p.cost.Sub(removed)
	return removed, nil
}

// Split applies a corporate action to the pool: the quantity is multiplied by
// the action factor and the total cost is unchanged.
func (p *Pool) Split(a CorporateAction) error {
	if err := a.Validate(); err != nil {
		return err
	}
	p.quantity = a.Apply(p.quantity)
	return nil
}

func (p *Pool) String() string {
	return fmt.Sprintf("%s shares for %s", p.quantity, p.cost)
}
