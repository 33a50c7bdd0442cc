package cgt

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"

	"github.com/etnz/cgt/date"
)

// SplitProvider retrieves the corporate actions of a security between two dates.
type SplitProvider interface {
	Splits(ctx context.Context, sec Security, from, to date.Date) ([]CorporateAction, error)
}

// PriceProvider retrieves the latest known price of a security.
type PriceProvider interface {
	Price(ctx context.Context, sec Security) (Money, error)
}

// marketEntry is the split history of a single security, as persisted.
type marketEntry struct {
	Security
	Updated date.Date         `json:"updated"`
	Splits  []CorporateAction `json:"splits,omitempty"`
}

// MarketData holds the split history downloaded for the securities of a
// ledger, and the day each history was last refreshed.
type MarketData struct {
	entries map[string]*marketEntry
}

// NewMarketData returns an empty market data set.
func NewMarketData() *MarketData {
	return &MarketData{entries: make(map[string]*marketEntry)}
}

// Set replaces the split history of sec.
func (m *MarketData) Set(sec Security, updated date.Date, splits []CorporateAction) {
	splits = slices.Clone(splits)
	for i := range splits {
		splits[i].Security = sec
	}
	slices.SortStableFunc(splits, func(a, b CorporateAction) int { return a.Date.Compare(b.Date) })
	m.entries[sec.ISIN] = &marketEntry{Security: sec, Updated: updated, Splits: splits}
}

// Updated returns the day the split history of isin was last refreshed.
func (m *MarketData) Updated(isin string) (date.Date, bool) {
	e, ok := m.entries[isin]
	if !ok {
		return date.Date{}, false
	}
	return e.Updated, true
}

// Splits returns the known corporate actions of isin, oldest first.
func (m *MarketData) Splits(isin string) []CorporateAction {
	if e, ok := m.entries[isin]; ok {
		return slices.Clone(e.Splits)
	}
	return nil
}

// CorporateActions returns all known corporate actions, by ISIN then date.
func (m *MarketData) CorporateActions() []CorporateAction {
	var actions []CorporateAction
	for _, isin := range slices.Sorted(maps.Keys(m.entries)) {
		actions = append(actions, m.entries[isin].Splits...)
	}
	return actions
}

// Refresh downloads the split history of every ledger security not yet
// refreshed on today. Histories cover the first transaction of the security
// up to today.
//
// A failing security is logged and reported, the others are still refreshed.
func (m *MarketData) Refresh(ctx context.Context, provider SplitProvider, ledger *Ledger, today date.Date) error {
	var errs []error
	for _, sec := range ledger.Securities() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if updated, ok := m.Updated(sec.ISIN); ok && !updated.Before(today) {
			continue
		}
		from := today
		for _, tx := range ledger.Transactions(BySecurity(sec.ISIN)) {
			from = tx.When()
			break
		}
		splits, err := provider.Splits(ctx, sec, from, today)
		if err != nil {
			log.Printf("cannot refresh splits for %s: %v", sec, err)
			errs = append(errs, fmt.Errorf("splits for %s: %w", sec, err))
			continue
		}
		log.Printf("%s: %d split(s) between %s and %s", sec, len(splits), from, today)
		m.Set(sec, today, splits)
	}
	return errors.Join(errs...)
}

// MergeCorporateActions returns the union of primary and secondary. An action
// from secondary is dropped if primary already has one for the same security
// on the same day.
func MergeCorporateActions(primary, secondary []CorporateAction) []CorporateAction {
	type key struct {
		isin string
		on   date.Date
	}
	seen := make(map[key]bool)
	merged := slices.Clone(primary)
	for _, a := range primary {
		seen[key{a.Security.ISIN, a.Date}] = true
	}
	for _, a := range secondary {
		if seen[key{a.Security.ISIN, a.Date}] {
			continue
		}
		merged = append(merged, a)
	}
	slices.SortStableFunc(merged, func(a, b CorporateAction) int { return a.Date.Compare(b.Date) })
	return merged
}

// DecodeMarketData reads market data from a JSONL stream, one security per line.
func DecodeMarketData(r io.Reader) (*MarketData, error) {
	m := NewMarketData()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e marketEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if err := ValidateISIN(e.ISIN); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		for _, a := range e.Splits {
			a.Security = e.Security
			if err := a.Validate(); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		}
		m.Set(e.Security, e.Updated, e.Splits)
	}
	return m, scanner.Err()
}

// EncodeMarketData writes market data as JSONL, sorted by ISIN.
func EncodeMarketData(w io.Writer, m *MarketData) error {
	for _, isin := range slices.Sorted(maps.Keys(m.entries)) {
		e := m.entries[isin]
		var splits []byte
		var err error
		if len(e.Splits) > 0 {
			type split struct {
				Date        date.Date `json:"date"`
				Numerator   int64     `json:"num"`
				Denominator int64     `json:"den"`
			}
			var list []split
			for _, a := range e.Splits {
				list = append(list, split{a.Date, a.Numerator, a.Denominator})
			}
			if splits, err = json.Marshal(list); err != nil {
				return err
			}
		}
		line, err := new(jsonObjectWriter).
			EmbedFrom(e.Security).
			Append("updated", e.Updated).
			Optional("splits", json.RawMessage(splits)).
			MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
