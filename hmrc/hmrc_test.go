package hmrc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

const march2024 = "\ufeffCountry/Territories,Currency,Currency Code,Currency Units per £1,Start date,End date\n" +
	"Eurozone,Euro,EUR,1.1686,01/Mar/2024,31/Mar/2024\n" +
	"USA,Dollar,USD,1.2683,01/Mar/2024,31/Mar/2024\n" +
	"Japan,Yen,JPY,189.73,01/Mar/2024,31/Mar/2024\n"

func newServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if r.URL.Path != "/monthly_csv_2024-03.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(march2024))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRate(t *testing.T) {
	hits := 0
	srv := newServer(t, &hits)
	file := filepath.Join(t.TempDir(), CacheFile)
	p := &Provider{BaseURL: srv.URL + "/", HTTP: srv.Client(), CacheFile: file}
	ctx := context.Background()

	for _, test := range []struct {
		currency string
		on       string
		want     string
	}{
		{"USD", "2024-03-01", "1.2683"},
		{"EUR", "2024-03-31", "1.1686"},
		{"JPY", "2024-03-15", "189.73"},
		{"GBP", "2019-01-01", "1"},
	} {
		got, err := p.Rate(ctx, test.currency, date.MustParse(test.on))
		if err != nil {
			t.Fatalf("Rate(%s, %s) error = %v", test.currency, test.on, err)
		}
		if !got.Equal(decimal.RequireFromString(test.want)) {
			t.Errorf("Rate(%s, %s) = %v, want %v", test.currency, test.on, got, test.want)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}

	if _, err := p.Rate(ctx, "CHF", date.MustParse("2024-03-01")); !errors.Is(err, cgt.ErrRateNotFound) {
		t.Errorf("Rate(CHF) error = %v, want ErrRateNotFound", err)
	}
	if _, err := p.Rate(ctx, "USD", date.MustParse("2024-04-01")); err == nil {
		t.Errorf("Rate() should fail when the month is not published")
	}

	// A new offline provider reads the persisted rates.
	offline := &Provider{CacheFile: file, Offline: true}
	got, err := offline.Rate(ctx, "USD", date.MustParse("2024-03-10"))
	if err != nil {
		t.Fatalf("offline Rate() error = %v", err)
	}
	if !got.Equal(decimal.RequireFromString("1.2683")) {
		t.Errorf("offline Rate() = %v, want 1.2683", got)
	}
	if _, err := offline.Rate(ctx, "USD", date.MustParse("2024-05-10")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("offline Rate() error = %v, want ErrCacheMiss", err)
	}
	if diff := cmp.Diff([]string{"2024-03"}, offline.Months()); diff != "" {
		t.Errorf("Months() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRates(t *testing.T) {
	got, err := parseRates(strings.NewReader(march2024 + "Nowhere,Thing,XX,n/a,,\n"))
	if err != nil {
		t.Fatalf("parseRates() error = %v", err)
	}
	want := map[string]string{"EUR": "1.1686", "USD": "1.2683", "JPY": "189.73"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseRates() mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseRates(strings.NewReader("Currency,Rate\nUSD,1.2\n")); err == nil {
		t.Errorf("parseRates() should fail without the expected columns")
	}
}

func TestLedgerConversion(t *testing.T) {
	hits := 0
	srv := newServer(t, &hits)
	p := &Provider{BaseURL: srv.URL + "/", HTTP: srv.Client()}

	ledger := cgt.NewLedger()
	apple := cgt.Security{ISIN: "US0378331005", Ticker: "AAPL"}
	ledger.Append(cgt.NewBuy(date.MustParse("2024-03-12"), apple, cgt.Q(10), cgt.M("1268.30", "USD"), cgt.Fees{}))
	trades, err := ledger.Trades(context.Background(), p)
	if err != nil {
		t.Fatalf("Trades() error = %v", err)
	}
	if len(trades) != 1 || !trades[0].Amount.Equal(cgt.GBP(1000)) {
		t.Errorf("Trades() = %v, want a £1,000.00 acquisition", trades)
	}
}
