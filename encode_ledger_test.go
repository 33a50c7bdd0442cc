package cgt

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// sampleLedger is a canonical ledger: encoding it back gives the same text.
const sampleLedger = `{"command":"deposit","date":"2023-01-02","amount":5000,"currency":"GBP"}
{"command":"buy","date":"2023-01-10","isin":"US0378331005","ticker":"AAPL","name":"Apple Inc.","quantity":10,"amount":1248.05,"currency":"USD","fees":{"forex":1.95},"rate":1.25}
{"command":"buy","date":"2023-01-10","memo":"ISA","isin":"GB0007980591","ticker":"BP.","quantity":100,"amount":480,"currency":"GBP","fees":{"stampDuty":2.4}}
{"command":"dividend","date":"2023-02-16","isin":"US0378331005","ticker":"AAPL","amount":2.3,"currency":"USD","withheld":0.35}
{"command":"split","date":"2023-03-01","isin":"US0378331005","ticker":"AAPL","num":4,"den":1}
{"command":"sell","date":"2023-05-02","isin":"US0378331005","ticker":"AAPL","quantity":20,"amount":800,"currency":"USD","fees":{"finra":0.02,"sec":0.01}}
{"command":"interest","date":"2023-05-31","amount":1.27,"currency":"GBP"}
{"command":"withdraw","date":"2023-06-01","amount":200,"currency":"GBP"}
`

func TestDecodeLedger(t *testing.T) {
	ledger, err := DecodeLedger(strings.NewReader(sampleLedger))
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}

	expectedTypes := []reflect.Type{
		reflect.TypeOf(Deposit{}),
		reflect.TypeOf(Buy{}),
		reflect.TypeOf(Buy{}),
		reflect.TypeOf(Dividend{}),
		reflect.TypeOf(Split{}),
		reflect.TypeOf(Sell{}),
		reflect.TypeOf(Interest{}),
		reflect.TypeOf(Withdraw{}),
	}
	if ledger.Len() != len(expectedTypes) {
		t.Fatalf("DecodeLedger() decoded %d transactions, want %d", ledger.Len(), len(expectedTypes))
	}
	for i, tx := range ledger.Transactions() {
		if reflect.TypeOf(tx) != expectedTypes[i] {
			t.Errorf("transaction %d has type %T, want %v", i+1, tx, expectedTypes[i])
		}
	}

	_, tx := first(ledger.Transactions(ByCommand(CmdBuy)))
	b := tx.(Buy)
	if b.Security != AAPL || !b.Quantity.Equal(Q(10)) || !b.Amount.Equal(M("1248.05", "USD")) || !b.Fees.Forex.Equal(decimal.RequireFromString("1.95")) || !b.Rate.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("DecodeLedger() buy = %+v", b)
	}
}

func TestEncodeLedger(t *testing.T) {
	ledger, err := DecodeLedger(strings.NewReader(sampleLedger))
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	if diff := cmp.Diff(sampleLedger, buf.String()); diff != "" {
		t.Errorf("EncodeLedger() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeLedgerSorts(t *testing.T) {
	ledger := NewLedger()
	ledger.Append(
		NewWithdraw(day("2024-03-01"), GBP(10)),
		NewDeposit(day("2024-01-01"), GBP(100)),
		NewInterest(day("2024-03-01"), GBP(1)), // same day keeps the append order
	)
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	want := `{"command":"deposit","date":"2024-01-01","amount":100,"currency":"GBP"}
{"command":"withdraw","date":"2024-03-01","amount":10,"currency":"GBP"}
{"command":"interest","date":"2024-03-01","amount":1,"currency":"GBP"}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("EncodeLedger() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLedgerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown command", `{"command":"convert","date":"2024-01-01"}`, `line 1: unknown transaction command: "convert"`},
		{"bad json", "\n{\"command\":", "line 2: could not identify command"},
		{"bad date", `{"command":"deposit","date":"01/02/2024","amount":1,"currency":"GBP"}`, "line 1: invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLedger(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("DecodeLedger() error = %v, want %q", err, tt.want)
			}
		})
	}
}
