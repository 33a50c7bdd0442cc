package cgt

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/cgt/date"
)

// TaxYear is a UK tax year, identified by the calendar year it starts in: tax
// year 2023 runs from 6 April 2023 to 5 April 2024 inclusive.
type TaxYear int

// TaxYearOf returns the tax year containing d.
func TaxYearOf(d date.Date) TaxYear {
	if d.Before(date.New(d.Year(), time.April, 6)) {
		return TaxYear(d.Year() - 1)
	}
	return TaxYear(d.Year())
}

// Range returns the first and last days of the tax year.
func (y TaxYear) Range() date.Range {
	return date.Range{
		From: date.New(int(y), time.April, 6),
		To:   date.New(int(y)+1, time.April, 5),
	}
}

// String returns the tax year as "2023/24".
func (y TaxYear) String() string {
	return fmt.Sprintf("%d/%02d", int(y), (int(y)+1)%100)
}

// ParseTaxYear parses "2023/24" or simply "2023".
func ParseTaxYear(s string) (TaxYear, error) {
	start, end, slash := strings.Cut(s, "/")
	y, err := strconv.Atoi(start)
	if err != nil || len(start) != 4 {
		return 0, fmt.Errorf("invalid tax year %q: want format 2023/24", s)
	}
	if slash && end != fmt.Sprintf("%02d", (y+1)%100) {
		return 0, fmt.Errorf("invalid tax year %q: %s is not followed by %s", s, start, end)
	}
	return TaxYear(y), nil
}

// YearSummary aggregates the matches of one tax year.
type YearSummary struct {
	Year TaxYear
	// Disposals counts the disposals of the year. All disposals of a security
	// on the same day count as one.
	Disposals int
	Proceeds  Money
	Cost      Money
	Gains     Money // sum of the positive gains
	Losses    Money // sum of the losses, as a positive amount
}

// Net returns the gains less the losses of the year.
func (s YearSummary) Net() Money { return s.Gains.Sub(s.Losses) }

// Summarize groups matches by the tax year of their disposal date, in
// ascending tax year order.
func Summarize(matches []Match) []YearSummary {
	type disposal struct {
		isin string
		on   date.Date
	}
	years := make(map[TaxYear]*YearSummary)
	seen := make(map[disposal]bool)
	var order []TaxYear
	for _, m := range matches {
		y := TaxYearOf(m.DisposalDate)
		s, exists := years[y]
		if !exists {
			zero := Money{cur: m.Proceeds.cur}
			s = &YearSummary{Year: y, Proceeds: zero, Cost: zero, Gains: zero, Losses: zero}
			years[y] = s
			order = append(order, y)
		}
		if key := (disposal{m.Security.ISIN, m.DisposalDate}); !seen[key] {
			seen[key] = true
			s.Disposals++
		}
		s.Proceeds = s.Proceeds.Add(m.Proceeds)
		s.Cost = s.Cost.Add(m.Cost)
		if m.Gain.IsNegative() {
			s.Losses = s.Losses.Add(m.Gain.Neg())
		} else {
			s.Gains = s.Gains.Add(m.Gain)
		}
	}
	slices.Sort(order)
	summaries := make([]YearSummary, 0, len(order))
	for _, y := range order {
		summaries = append(summaries, *years[y])
	}
	return summaries
}

// InTaxYear returns the matches whose disposal date is in tax year y.
func InTaxYear(matches []Match, y TaxYear) []Match {
	var in []Match
	r := y.Range()
	for _, m := range matches {
		if r.Contains(m.DisposalDate) {
			in = append(in, m)
		}
	}
	return in
}
