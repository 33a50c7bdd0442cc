package cgt

import (
	"testing"

	"github.com/etnz/cgt/date"
)

func TestTaxYearOf(t *testing.T) {
	tests := []struct {
		on   string
		want TaxYear
	}{
		{"2023-04-05", 2022},
		{"2023-04-06", 2023},
		{"2024-01-01", 2023},
		{"2024-04-05", 2023},
		{"2024-04-06", 2024},
	}
	for _, tt := range tests {
		if got := TaxYearOf(day(tt.on)); got != tt.want {
			t.Errorf("TaxYearOf(%s) = %v, want %v", tt.on, got, tt.want)
		}
	}
}

func TestTaxYearString(t *testing.T) {
	if got, want := TaxYear(2023).String(), "2023/24"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := TaxYear(1999).String(), "1999/00"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := TaxYear(2023).Range().String(), "2023-04-06..2024-04-05"; got != want {
		t.Errorf("Range() = %q, want %q", got, want)
	}
}

func TestParseTaxYear(t *testing.T) {
	for _, s := range []string{"2023/24", "2023"} {
		got, err := ParseTaxYear(s)
		if err != nil {
			t.Fatalf("ParseTaxYear(%q) error = %v", s, err)
		}
		if got != 2023 {
			t.Errorf("ParseTaxYear(%q) = %v, want 2023/24", s, got)
		}
	}
	for _, s := range []string{"", "23/24", "2023/25", "year"} {
		if _, err := ParseTaxYear(s); err == nil {
			t.Errorf("ParseTaxYear(%q) should fail", s)
		}
	}
}

func TestSummarize(t *testing.T) {
	matches := []Match{
		newMatch(AAPL, day("2023-04-05"), Section104, date.Date{}, Q(1), GBP(100), GBP(150), 1),
		newMatch(AAPL, day("2023-04-06"), SameDay, day("2023-04-06"), Q(1), GBP(100), GBP(80), 2),
		newMatch(AAPL, day("2023-04-06"), Section104, date.Date{}, Q(1), GBP(100), GBP(90), 2),
		// another trade on the same day is the same disposal.
		newMatch(AAPL, day("2023-04-06"), Section104, date.Date{}, Q(1), GBP(100), GBP(130), 3),
		newMatch(MSFT, day("2024-01-15"), BedAndBreakfast, day("2024-02-01"), Q(2), GBP(300), GBP(500), 1),
	}
	got := Summarize(matches)
	if len(got) != 2 {
		t.Fatalf("Summarize() returned %d years, want 2", len(got))
	}

	tests := []struct {
		year      TaxYear
		disposals int
		proceeds  Money
		cost      Money
		gains     Money
		losses    Money
		net       Money
	}{
		{2022, 1, GBP(150), GBP(100), GBP(50), GBP(0), GBP(50)},
		{2023, 2, GBP(800), GBP(600), GBP(230), GBP(30), GBP(200)},
	}
	for i, tt := range tests {
		s := got[i]
		if s.Year != tt.year {
			t.Errorf("Year = %v, want %v", s.Year, tt.year)
		}
		if s.Disposals != tt.disposals {
			t.Errorf("%v Disposals = %d, want %d", s.Year, s.Disposals, tt.disposals)
		}
		for _, c := range []struct {
			name      string
			got, want Money
		}{
			{"Proceeds", s.Proceeds, tt.proceeds},
			{"Cost", s.Cost, tt.cost},
			{"Gains", s.Gains, tt.gains},
			{"Losses", s.Losses, tt.losses},
			{"Net", s.Net(), tt.net},
		} {
			if !c.got.Equal(c.want) {
				t.Errorf("%v %s = %v, want %v", s.Year, c.name, c.got, c.want)
			}
		}
	}
}

func TestInTaxYear(t *testing.T) {
	matches := []Match{
		newMatch(AAPL, day("2023-04-05"), Section104, date.Date{}, Q(1), GBP(1), GBP(1), 0),
		newMatch(AAPL, day("2023-04-06"), Section104, date.Date{}, Q(1), GBP(1), GBP(1), 1),
		newMatch(AAPL, day("2024-04-05"), Section104, date.Date{}, Q(1), GBP(1), GBP(1), 2),
	}
	got := InTaxYear(matches, 2023)
	if len(got) != 2 || got[0].Disposal != 1 || got[1].Disposal != 2 {
		t.Errorf("InTaxYear() = %v, want the last two matches", got)
	}
}
