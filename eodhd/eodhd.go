// Package eodhd retrieves split histories from the EOD Historical Data API.
//
// See https://eodhd.com/financial-apis/ for the API documentation. An API key
// is required, "demo" gives access to a few tickers only.
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/date"
	"github.com/etnz/cgt/httpcache"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the root of the EODHD API.
const DefaultBaseURL = "https://eodhd.com/api"

// ErrNoTicker is returned when a security cannot be found in EODHD.
var ErrNoTicker = errors.New("no eodhd ticker for security")

// Client queries the EODHD API. It implements cgt.SplitProvider.
type Client struct {
	APIKey  string
	BaseURL string       // defaults to DefaultBaseURL
	HTTP    *http.Client // defaults to a daily caching client in the temp dir
}

// New returns a client using apiKey, and caching responses in cacheDir.
func New(apiKey, cacheDir string) *Client {
	return &Client{APIKey: apiKey, HTTP: httpcache.NewClient(cacheDir, httpcache.Daily)}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, data any) error {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := c.HTTP
	if client == nil {
		client = httpcache.NewClient("", httpcache.Daily)
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("fmt", "json")
	query.Set("api_token", c.APIKey)
	return httpcache.GetJSON(ctx, client, base+path+"?"+query.Encode(), data)
}

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code     string `json:"Code"`
	Exchange string `json:"Exchange"`
	Name     string `json:"Name"`
	Type     string `json:"Type"`
	Country  string `json:"Country"`
	Currency string `json:"Currency"`
	ISIN     string `json:"ISIN"`
}

// Ticker returns the EODHD ticker, e.g. "AAPL.US".
func (r SearchResult) Ticker() string { return r.Code + "." + r.Exchange }

// Search searches for securities by ISIN, ticker or name.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	var results []SearchResult
	if err := c.get(ctx, "/search/"+url.PathEscape(term), nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// findTicker returns the EODHD ticker of sec. Among the listings of the ISIN,
// the one whose code matches the security's ticker is preferred.
func (c *Client) findTicker(ctx context.Context, sec cgt.Security) (string, error) {
	results, err := c.Search(ctx, sec.ISIN)
	if err != nil {
		return "", err
	}
	var candidates []SearchResult
	for _, r := range results {
		if r.ISIN == sec.ISIN && r.Code != "" && r.Exchange != "" {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w %s", ErrNoTicker, sec.ISIN)
	}
	code := strings.TrimSuffix(sec.Ticker, ".")
	for _, r := range candidates {
		if strings.EqualFold(r.Code, code) {
			return r.Ticker(), nil
		}
	}
	return candidates[0].Ticker(), nil
}

// Splits returns the split history of sec between from and to inclusive.
func (c *Client) Splits(ctx context.Context, sec cgt.Security, from, to date.Date) ([]cgt.CorporateAction, error) {
	ticker, err := c.findTicker(ctx, sec)
	if err != nil {
		return nil, err
	}

	type apiSplit struct {
		Date  date.Date `json:"date"`
		Split string    `json:"split"`
	}
	content := make([]apiSplit, 0)
	query := url.Values{"from": {from.String()}, "to": {to.String()}}
	if err := c.get(ctx, "/splits/"+url.PathEscape(ticker), query, &content); err != nil {
		return nil, err
	}

	actions := make([]cgt.CorporateAction, 0, len(content))
	for _, s := range content {
		num, den, err := parseSplit(s.Split)
		if err != nil {
			return nil, err
		}
		actions = append(actions, cgt.CorporateAction{Security: sec, Date: s.Date, Numerator: num, Denominator: den})
	}
	return actions, nil
}

// parseSplit parses an EODHD split ratio like "4.000000/1.000000".
func parseSplit(s string) (num, den int64, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid split format from API: %q", s)
	}
	numDecimal, err := decimal.NewFromString(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator in split %q: %w", s, err)
	}
	denDecimal, err := decimal.NewFromString(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator in split %q: %w", s, err)
	}
	if !numDecimal.IsPositive() || !denDecimal.IsPositive() {
		return 0, 0, fmt.Errorf("invalid split ratio from API: %q", s)
	}
	num, den = simplifyDecimalRatio(numDecimal, denDecimal)
	return num, den, nil
}
