// Package httpcache provides an http.Client backed by a disk cache, and a
// helper to GET json documents.
//
// Cached responses are keyed by period: a response fetched today is served
// from disk until the end of the day (or of the month for monthly clients).
package httpcache

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/cgt/date"
)

// Period defines how long a cached response remains fresh.
type Period int

const (
	Daily Period = iota
	Monthly
)

// key returns the cache period containing on.
func (p Period) key(on date.Date) string {
	if p == Monthly {
		return fmt.Sprintf("%04d-%02d", on.Year(), on.Month())
	}
	return on.String()
}

// Transport implements a simple disk cache for HTTP responses.
type Transport struct {
	Base   http.RoundTripper // defaults to http.DefaultTransport
	Dir    string            // defaults to os.TempDir()
	Period Period
	Today  func() date.Date // defaults to date.Today
}

func (c *Transport) base() http.RoundTripper {
	if c.Base == nil {
		return http.DefaultTransport
	}
	return c.Base
}

func (c *Transport) file(key string) string {
	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, key)
}

// RoundTrip implements the http.RoundTripper interface. Only successful GET
// responses are cached.
func (c *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base().RoundTrip(req)
	}
	today := date.Today
	if c.Today != nil {
		today = c.Today
	}
	key := fmt.Sprintf("%s %s %s", c.Period.key(today()), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err := c.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *Transport) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(c.file(key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk. The response body remains readable.
func (c *Transport) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.file(key)), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.file(key), content, 0o644)
}

// NewClient returns a client caching responses in dir for the given period.
func NewClient(dir string, period Period) *http.Client {
	return &http.Client{Transport: &Transport{Dir: dir, Period: period}}
}

// GetJSON performs an HTTP GET request and unmarshals the JSON response into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cgt")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
