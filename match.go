package cgt

import (
	"fmt"

	"github.com/etnz/cgt/date"
)

// MatchKind identifies the share identification rule that matched a disposal.
type MatchKind int

const (
	// SameDay matches acquisitions on the same day as the disposal.
	SameDay MatchKind = iota
	// BedAndBreakfast matches acquisitions in the 30 days following the disposal.
	BedAndBreakfast
	// Section104 matches the pooled holding at its average cost.
	Section104
)

func (k MatchKind) String() string {
	switch k {
	case SameDay:
		return "same-day"
	case BedAndBreakfast:
		return "bed-and-breakfast"
	case Section104:
		return "section-104"
	default:
		return fmt.Sprintf("MatchKind(%d)", int(k))
	}
}

// Match is the slice of one disposal matched under one rule.
type Match struct {
	Security     Security
	DisposalDate date.Date
	Kind         MatchKind
	// AcquisitionDate is the date of the matched acquisitions, zero for Section104.
	AcquisitionDate date.Date
	Quantity        Quantity // shares held on DisposalDate
	Cost            Money
	Proceeds        Money
	Gain            Money // negative for a loss
	// Disposal is the index of the disposal trade in the timeline of the
	// security, trades sorted by date and then in input order.
	Disposal int
}

func newMatch(sec Security, on date.Date, kind MatchKind, acquired date.Date, q Quantity, cost, proceeds Money, disposal int) Match {
	return Match{
		Security:        sec,
		DisposalDate:    on,
		Kind:            kind,
		AcquisitionDate: acquired,
		Quantity:        q,
		Cost:            cost,
		Proceeds:        proceeds,
		Gain:            proceeds.Sub(cost),
		Disposal:        disposal,
	}
}

func (m Match) String() string {
	rule := m.Kind.String()
	if m.Kind == BedAndBreakfast {
		rule = fmt.Sprintf("%s(%s)", rule, m.AcquisitionDate)
	}
	return fmt.Sprintf("%s %s %s %s cost %s proceeds %s", m.DisposalDate, m.Security, rule, m.Quantity, m.Cost, m.Proceeds)
}

// Result holds the outcome of matching the trades of one security.
type Result struct {
	Security Security
	Matches  []Match
	// Pool is the section 104 holding after the last trade.
	Pool *Pool
}
