package cgt

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTimelineEventsFor(t *testing.T) {
	trades := []Trade{
		sell(AAPL, "2023-03-01", 1, "150"),
		buy(MSFT, "2023-01-01", 5, "1000"),
		buy(AAPL, "2023-01-01", 10, "1400"),
		buy(AAPL, "2023-03-01", 2, "300"),
		sell(AAPL, "2023-02-01", 3, "420"),
	}
	tl, err := NewTimeline(trades)
	if err != nil {
		t.Fatalf("NewTimeline() error = %v", err)
	}
	var got []string
	for _, e := range tl.EventsFor(AAPL) {
		got = append(got, e.String())
	}
	want := []string{
		"2023-01-01 buy 10 AAPL for £1,400.00",
		"2023-02-01 sell 3 AAPL for £420.00",
		"2023-03-01 sell 1 AAPL for £150.00", // same day keeps input order
		"2023-03-01 buy 2 AAPL for £300.00",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EventsFor() mismatch (-want +got):\n%s", diff)
	}

	secs := tl.Securities()
	if diff := cmp.Diff([]Security{AAPL, MSFT}, secs); diff != "" {
		t.Errorf("Securities() mismatch (-want +got):\n%s", diff)
	}

	if got := tl.EventsFor(BP); len(got) != 0 {
		t.Errorf("EventsFor(BP) = %v, want none", got)
	}
}

func TestTimelineInvalid(t *testing.T) {
	tests := []struct {
		name  string
		trade Trade
	}{
		{"zero quantity", buy(AAPL, "2023-01-01", 0, "10")},
		{"no security", buy(Security{Ticker: "AAPL"}, "2023-01-01", 1, "10")},
		{"no date", Trade{Security: AAPL, Quantity: Q(1), Amount: GBP(10)}},
		{"negative amount", buy(AAPL, "2023-01-01", 1, "-10")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeline([]Trade{buy(AAPL, "2022-01-01", 1, "10"), tt.trade})
			if !errors.Is(err, ErrInvalidTransaction) {
				t.Errorf("NewTimeline() error = %v, want %v", err, ErrInvalidTransaction)
			}
		})
	}
}

func TestTimelineMixedCurrencies(t *testing.T) {
	foreign := buy(AAPL, "2023-01-02", 1, "10")
	foreign.Amount = M(10, "USD")
	_, err := NewTimeline([]Trade{buy(AAPL, "2023-01-01", 1, "10"), foreign})
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("NewTimeline() error = %v, want %v", err, ErrInvalidTransaction)
	}
}
