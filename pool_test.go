package cgt

import (
	"errors"
	"testing"
)

func TestPoolAcquireRemove(t *testing.T) {
	var p Pool
	if err := p.Acquire(Q(10), GBP(1000)); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	removed, err := p.Remove(Q(4))
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if want := GBP(400); !removed.Equal(want) {
		t.Errorf("Remove() = %v, want %v", removed, want)
	}
	if want := Q(6); !p.Quantity().Equal(want) {
		t.Errorf("Quantity() = %v, want %v", p.Quantity(), want)
	}
	if want := GBP(600); !p.Cost().Equal(want) {
		t.Errorf("Cost() = %v, want %v", p.Cost(), want)
	}
	if want := GBP(100); !p.AverageCost().Equal(want) {
		t.Errorf("AverageCost() = %v, want %v", p.AverageCost(), want)
	}
}

func TestPoolRemoveAll(t *testing.T) {
	var p Pool
	if err := p.Acquire(Q(3), GBP(100)); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	total := GBP(0)
	for range 3 {
		removed, err := p.Remove(Q(1))
		if err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		total = total.Add(removed)
	}
	if !total.Equal(GBP(100)) {
		t.Errorf("sum of Remove() = %v, want exactly 100", total.Decimal())
	}
	if !p.Quantity().IsZero() || !p.Cost().IsZero() {
		t.Errorf("empty pool = %v, want zero quantity and zero cost", &p)
	}
	if !p.AverageCost().IsZero() {
		t.Errorf("AverageCost() of an empty pool = %v, want 0", p.AverageCost())
	}
}

func TestPoolInsufficient(t *testing.T) {
	var p Pool
	if err := p.Acquire(Q(2), GBP(20)); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := p.Remove(Q(3)); !errors.Is(err, ErrInsufficientPool) {
		t.Errorf("Remove() error = %v, want %v", err, ErrInsufficientPool)
	}
	// a failed removal leaves the pool untouched.
	if !p.Quantity().Equal(Q(2)) || !p.Cost().Equal(GBP(20)) {
		t.Errorf("pool = %v, want 2 shares for 20", &p)
	}
}

func TestPoolAcquireInvalid(t *testing.T) {
	var p Pool
	if err := p.Acquire(Q(0), GBP(1)); err == nil {
		t.Errorf("Acquire(0) should fail")
	}
	if err := p.Acquire(Q(1), GBP(-1)); err == nil {
		t.Errorf("Acquire() at a negative cost should fail")
	}
}

func TestPoolSplit(t *testing.T) {
	var p Pool
	if err := p.Acquire(Q(10), GBP(1000)); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := p.Split(split(AAPL, "2024-01-01", 2, 1)); err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if want := Q(20); !p.Quantity().Equal(want) {
		t.Errorf("Quantity() = %v, want %v", p.Quantity(), want)
	}
	if want := GBP(1000); !p.Cost().Equal(want) {
		t.Errorf("Cost() = %v, want %v", p.Cost(), want)
	}
	if want := GBP(50); !p.AverageCost().Equal(want) {
		t.Errorf("AverageCost() = %v, want %v", p.AverageCost(), want)
	}

	if err := p.Split(split(AAPL, "2024-01-01", 0, 1)); !errors.Is(err, ErrInvalidCorporateAction) {
		t.Errorf("Split(0/1) error = %v, want %v", err, ErrInvalidCorporateAction)
	}
}

func TestPoolCostConservation(t *testing.T) {
	ops := []struct {
		acquire bool
		q       string
		cost    string
	}{
		{true, "7", "1000"},
		{false, "3", ""},
		{true, "2.5", "333.33"},
		{false, "1.7", ""},
		{false, "0.3", ""},
		{true, "11", "1234.56"},
		{false, "6", ""},
		{false, "1", ""},
		{false, "8.5", ""},
	}
	var p Pool
	acquired, removed := GBP(0), GBP(0)
	for i, op := range ops {
		if op.acquire {
			if err := p.Acquire(Q(op.q), GBP(op.cost)); err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
			acquired = acquired.Add(GBP(op.cost))
		} else {
			cost, err := p.Remove(Q(op.q))
			if err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			removed = removed.Add(cost)
		}
		if got := p.Cost().Add(removed); !got.Equal(acquired) {
			t.Errorf("after step %d: pool cost + removed = %v, want exactly %v", i, got.Decimal(), acquired.Decimal())
		}
	}
	if !p.Quantity().IsZero() || !p.Cost().IsZero() {
		t.Errorf("final pool = %v, want empty", &p)
	}
}
