// Package yahoo retrieves split histories and latest prices from the Yahoo
// Finance chart API. No API key is required.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/cgt"
	"github.com/etnz/cgt/date"
	"github.com/etnz/cgt/httpcache"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the root of the Yahoo Finance API.
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// ErrNoSymbol is returned when a security cannot be found in Yahoo Finance.
var ErrNoSymbol = errors.New("no yahoo symbol for security")

// Client queries Yahoo Finance. It implements cgt.SplitProvider and
// cgt.PriceProvider.
type Client struct {
	BaseURL string       // defaults to DefaultBaseURL
	HTTP    *http.Client // defaults to a daily caching client in the temp dir
}

// New returns a client caching responses in cacheDir.
func New(cacheDir string) *Client {
	return &Client{HTTP: httpcache.NewClient(cacheDir, httpcache.Daily)}
}

// get fetches the json document at path.
func (c *Client) get(ctx context.Context, path string, query url.Values) (any, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := c.HTTP
	if client == nil {
		client = httpcache.NewClient("", httpcache.Daily)
	}
	var jobj any
	if err := httpcache.GetJSON(ctx, client, base+path+"?"+query.Encode(), &jobj); err != nil {
		return nil, err
	}
	return jobj, nil
}

// single unwraps jsonpath results that are a list of one value.
func single(jval any) any {
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		return jlist[0]
	}
	return jval
}

// symbol returns the Yahoo symbol of sec, preferring the one matching its ticker.
func (c *Client) symbol(ctx context.Context, sec cgt.Security) (string, error) {
	query := url.Values{"q": {sec.ISIN}, "quotesCount": {"5"}, "newsCount": {"0"}}
	jobj, err := c.get(ctx, "/v1/finance/search", query)
	if err != nil {
		return "", err
	}
	jval, _ := jsonpath.Get("$.quotes[*].symbol", jobj)
	var symbols []string
	if jlist, ok := jval.([]any); ok {
		for _, v := range jlist {
			if s, ok := v.(string); ok && s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	if len(symbols) == 0 {
		return "", fmt.Errorf("%w %s", ErrNoSymbol, sec.ISIN)
	}
	code := strings.TrimSuffix(sec.Ticker, ".")
	for _, s := range symbols {
		if root, _, _ := strings.Cut(s, "."); code != "" && strings.EqualFold(root, code) {
			return s, nil
		}
	}
	return symbols[0], nil
}

// Splits returns the split history of sec between from and to inclusive.
func (c *Client) Splits(ctx context.Context, sec cgt.Security, from, to date.Date) ([]cgt.CorporateAction, error) {
	symbol, err := c.symbol(ctx, sec)
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"period1":  {strconv.FormatInt(from.Time().Unix(), 10)},
		"period2":  {strconv.FormatInt(to.Add(1).Time().Unix(), 10)},
		"interval": {"1d"},
		"events":   {"split"},
	}
	jobj, err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query)
	if err != nil {
		return nil, err
	}
	jval, err := jsonpath.Get("$.chart.result[0].events.splits", jobj)
	if err != nil {
		// a chart without events has no split.
		log.Printf("no split events for %s", symbol)
		return nil, nil
	}
	splits, ok := single(jval).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid split events for %s: %v", symbol, jval)
	}

	var actions []cgt.CorporateAction
	for _, v := range splits {
		s, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid split event for %s: %v", symbol, v)
		}
		ts, ok1 := s["date"].(float64)
		n, ok2 := s["numerator"].(float64)
		d, ok3 := s["denominator"].(float64)
		if !ok1 || !ok2 || !ok3 || n <= 0 || d <= 0 {
			return nil, fmt.Errorf("invalid split event for %s: %v", symbol, v)
		}
		on := date.Of(time.Unix(int64(ts), 0).UTC())
		if !(date.Range{From: from, To: to}).Contains(on) {
			continue
		}
		num, den := ratio(n, d)
		actions = append(actions, cgt.CorporateAction{Security: sec, Date: on, Numerator: num, Denominator: den})
	}
	slices.SortFunc(actions, func(a, b cgt.CorporateAction) int { return a.Date.Compare(b.Date) })
	return actions, nil
}

// ratio returns n/d as a simplified integer fraction.
func ratio(n, d float64) (num, den int64) {
	rn, _ := new(big.Rat).SetString(strconv.FormatFloat(n, 'f', -1, 64))
	rd, _ := new(big.Rat).SetString(strconv.FormatFloat(d, 'f', -1, 64))
	r := new(big.Rat).Quo(rn, rd)
	return r.Num().Int64(), r.Denom().Int64()
}

// Price returns the latest market price of sec. London prices quoted in
// pence are converted to pounds.
func (c *Client) Price(ctx context.Context, sec cgt.Security) (cgt.Money, error) {
	symbol, err := c.symbol(ctx, sec)
	if err != nil {
		return cgt.Money{}, err
	}
	query := url.Values{"range": {"1d"}, "interval": {"1d"}}
	jobj, err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query)
	if err != nil {
		return cgt.Money{}, err
	}
	jval, err := jsonpath.Get("$.chart.result[0].meta", jobj)
	if err != nil {
		return cgt.Money{}, fmt.Errorf("no chart metadata for %s: %w", symbol, err)
	}
	meta, _ := single(jval).(map[string]any)
	price, ok := meta["regularMarketPrice"].(float64)
	if !ok {
		return cgt.Money{}, fmt.Errorf("no market price for %s", symbol)
	}
	currency, _ := meta["currency"].(string)
	value := decimal.NewFromFloat(price)
	switch currency {
	case "GBp", "GBX":
		value, currency = value.Shift(-2), "GBP"
	case "":
		return cgt.Money{}, fmt.Errorf("no currency for %s", symbol)
	}
	return cgt.M(value, currency), nil
}
