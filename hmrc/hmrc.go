// Package hmrc provides the monthly exchange rates HMRC publishes for
// customs and VAT purposes, which are also accepted to convert foreign
// currency amounts for capital gains.
//
// Rates are downloaded once per month from the trade tariff service, kept
// in memory and persisted to a JSON file so that later runs work offline.
package hmrc

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/date"
	"github.com/etnz/cgt/httpcache"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is where the monthly CSV files are published.
const DefaultBaseURL = "https://www.trade-tariff.service.gov.uk/api/v2/exchange_rates/files/"

// CacheFile is the default name of the persisted rates in a cache directory.
const CacheFile = "hmrc-monthly-rates.json"

// ErrCacheMiss is returned in offline mode when a month was never downloaded.
var ErrCacheMiss = errors.New("exchange rates not in cache")

// CSV columns.
const (
	codeColumn = "Currency Code"
	rateColumn = "Currency Units per £1"
)

// Provider implements cgt.RateProvider with HMRC monthly rates.
type Provider struct {
	BaseURL   string       // defaults to DefaultBaseURL
	HTTP      *http.Client // defaults to http.DefaultClient
	CacheFile string       // persisted rates, none if empty
	Offline   bool         // never download

	mu     sync.Mutex
	once   sync.Once
	months *cache.Cache // month key to map[currency]string
}

// New returns a provider persisting its rates in cacheDir.
func New(cacheDir string, offline bool) *Provider {
	return &Provider{
		HTTP:      httpcache.NewClient(cacheDir, httpcache.Monthly),
		CacheFile: filepath.Join(cacheDir, CacheFile),
		Offline:   offline,
	}
}

// monthKey returns the key of the month of d, e.g. "2024-03".
func monthKey(d date.Date) string { return fmt.Sprintf("%04d-%02d", d.Year(), d.Month()) }

// load reads the persisted rates once.
func (p *Provider) load() {
	p.once.Do(func() {
		p.months = cache.New(cache.NoExpiration, 0)
		if p.CacheFile == "" {
			return
		}
		content, err := os.ReadFile(p.CacheFile)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Printf("cannot read %s (ignored): %v", p.CacheFile, err)
			}
			return
		}
		var months map[string]map[string]string
		if err := json.Unmarshal(content, &months); err != nil {
			log.Printf("cannot parse %s (ignored): %v", p.CacheFile, err)
			return
		}
		log.Printf("loading historical exchange rates from %s", p.CacheFile)
		for key, rates := range months {
			p.months.Set(key, rates, cache.NoExpiration)
		}
	})
}

// save persists all known months, replacing the cache file atomically.
func (p *Provider) save() error {
	if p.CacheFile == "" {
		return nil
	}
	months := make(map[string]map[string]string)
	for key, item := range p.months.Items() {
		months[key] = item.Object.(map[string]string)
	}
	content, err := json.MarshalIndent(months, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.CacheFile), 0o755); err != nil {
		return err
	}
	tmp := p.CacheFile + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p.CacheFile)
}

// find looks up a rate in memory.
func (p *Provider) find(key, currency string) (decimal.Decimal, bool) {
	v, ok := p.months.Get(key)
	if !ok {
		return decimal.Zero, false
	}
	rate, ok := v.(map[string]string)[currency]
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(rate)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// Rate implements cgt.RateProvider: it returns the units of currency per £1
// for the month of on.
func (p *Provider) Rate(ctx context.Context, currency string, on date.Date) (decimal.Decimal, error) {
	if currency == cgt.HomeCurrency {
		return decimal.NewFromInt(1), nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.load()

	key := monthKey(on)
	if rate, ok := p.find(key, currency); ok {
		return rate, nil
	}
	if _, ok := p.months.Get(key); ok {
		// the month is known, the currency is not.
		return decimal.Zero, fmt.Errorf("%w: %s in %s", cgt.ErrRateNotFound, currency, key)
	}
	if p.Offline {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}

	rates, err := p.fetch(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	p.months.Set(key, rates, cache.NoExpiration)
	if err := p.save(); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}

	if rate, ok := p.find(key, currency); ok {
		return rate, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s in %s", cgt.ErrRateNotFound, currency, key)
}

// fetch downloads the monthly CSV file for key.
func (p *Provider) fetch(ctx context.Context, key string) (map[string]string, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := p.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	filename := "monthly_csv_" + key + ".csv"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+filename, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates file (%s): %w", filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch exchange rates file (%s): %v", filename, resp.Status)
	}
	rates, err := parseRates(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange rates file (%s): %w", filename, err)
	}
	log.Printf("downloaded %d exchange rates for %s", len(rates), key)
	return rates, nil
}

// parseRates reads the currency code and rate columns of a monthly CSV file.
func parseRates(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	code, rate := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case codeColumn:
			code = i
		case rateColumn:
			rate = i
		}
	}
	if code < 0 || rate < 0 {
		return nil, fmt.Errorf("missing %q or %q column", codeColumn, rateColumn)
	}

	rates := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) <= max(code, rate) {
			continue
		}
		c, v := strings.TrimSpace(record[code]), strings.TrimSpace(record[rate])
		if cgt.ValidateCurrency(c) != nil {
			continue
		}
		if _, err := decimal.NewFromString(v); err != nil {
			continue
		}
		rates[c] = v
	}
	return rates, nil
}

// Months returns the months currently known, sorted.
func (p *Provider) Months() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.load()
	return slices.Sorted(maps.Keys(p.months.Items()))
}
