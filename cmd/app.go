// Package cmd implements the cgt command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/cgt"
	"github.com/etnz/cgt/eodhd"
	"github.com/etnz/cgt/hmrc"
	"github.com/etnz/cgt/yahoo"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(&topicCmd{}, "")

	c.Register(&ordersCmd{}, "ledger")
	c.Register(&dividendsCmd{}, "ledger")
	c.Register(&transfersCmd{}, "ledger")
	c.Register(&interestCmd{}, "ledger")
	c.Register(&formatLedgerCmd{}, "ledger")

	c.Register(&capitalGainsCmd{}, "tax")
	c.Register(&taxSummaryCmd{}, "tax")
	c.Register(&holdingsCmd{}, "tax")

	c.Register(&splitsCmd{}, "market data")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	ledgerFile    = flag.String("ledger", "", "Path to the ledger file (default $CGT_LEDGER_FILE or ledger.jsonl)")
	cacheDir      = flag.String("cache-dir", "", "Path to the cache folder for downloaded data (default $CGT_CACHE_DIR or the user cache folder)")
	offline       = flag.Bool("offline", false, "Do not download anything, use cached data only (default $CGT_OFFLINE)")
	splitProvider = flag.String("splits", "", "Split history provider: yahoo or eodhd (default $CGT_SPLIT_PROVIDER or yahoo)")
	verbose       = flag.Bool("v", false, "Print logs to stderr")
)

// setting returns the flag value, or the environment variable, or def.
func setting(value, env, def string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func ledgerPath() string { return setting(*ledgerFile, "CGT_LEDGER_FILE", "ledger.jsonl") }

func cachePath() string {
	def := filepath.Join(os.TempDir(), "cgt")
	if dir, err := os.UserCacheDir(); err == nil {
		def = filepath.Join(dir, "cgt")
	}
	return setting(*cacheDir, "CGT_CACHE_DIR", def)
}

func isOffline() bool {
	if *offline {
		return true
	}
	v, _ := strconv.ParseBool(os.Getenv("CGT_OFFLINE"))
	return v
}

// SetupLogging silences the log package unless -v is set.
func SetupLogging() {
	if !*verbose {
		log.SetOutput(io.Discard)
	}
}

// DecodeLedger reads and validates the ledger file.
func DecodeLedger() (*cgt.Ledger, error) {
	f, err := os.Open(ledgerPath())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ledger, err := cgt.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding %q: %w", ledgerPath(), err)
	}
	if err := ledger.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger %q: %w", ledgerPath(), err)
	}
	return ledger, nil
}

// EncodeLedger writes the ledger back to the ledger file.
func EncodeLedger(ledger *cgt.Ledger) error {
	f, err := os.OpenFile(ledgerPath(), os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening ledger file %q for writing: %w", ledgerPath(), err)
	}
	defer f.Close()
	return cgt.EncodeLedger(f, ledger)
}

// rates returns the HMRC monthly exchange rates.
func rates() cgt.RateProvider { return hmrc.New(cachePath(), isOffline()) }

// marketFile is the split history cache.
func marketFile() string { return filepath.Join(cachePath(), "splits.jsonl") }

// DecodeMarketData reads the split history cache, empty if it does not exist yet.
func DecodeMarketData() (*cgt.MarketData, error) {
	f, err := os.Open(marketFile())
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("no split history in %s yet", marketFile())
		return cgt.NewMarketData(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cgt.DecodeMarketData(f)
}

// EncodeMarketData writes the split history cache.
func EncodeMarketData(m *cgt.MarketData) error {
	if err := os.MkdirAll(cachePath(), 0o755); err != nil {
		return err
	}
	f, err := os.Create(marketFile())
	if err != nil {
		return err
	}
	if err := cgt.EncodeMarketData(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// splitsProvider returns the configured split history provider.
func splitsProvider() (cgt.SplitProvider, error) {
	switch name := setting(*splitProvider, "CGT_SPLIT_PROVIDER", "yahoo"); name {
	case "yahoo":
		return yahoo.New(cachePath()), nil
	case "eodhd":
		key := os.Getenv("EODHD_API_KEY")
		if key == "" {
			return nil, errors.New("EODHD_API_KEY is not set")
		}
		return eodhd.New(key, cachePath()), nil
	default:
		return nil, fmt.Errorf("unknown split provider %q, want yahoo or eodhd", name)
	}
}

// corporateActions returns the ledger splits, completed by the cached split history.
func corporateActions(ledger *cgt.Ledger) ([]cgt.CorporateAction, error) {
	market, err := DecodeMarketData()
	if err != nil {
		return nil, fmt.Errorf("error decoding split history: %w", err)
	}
	return cgt.MergeCorporateActions(ledger.CorporateActions(), market.CorporateActions()), nil
}

// runEngine matches all the ledger trades. Insufficient pools are reported on
// stderr, and the other securities are still returned.
func runEngine(ctx context.Context, ledger *cgt.Ledger, opts ...cgt.TradesOption) (*cgt.Engine, error) {
	trades, err := ledger.Trades(ctx, rates(), opts...)
	if err != nil {
		return nil, err
	}
	actions, err := corporateActions(ledger)
	if err != nil {
		return nil, err
	}
	engine := cgt.NewEngine(cgt.HomeCurrency)
	err = engine.Run(ctx, trades, actions)
	if errors.Is(err, cgt.ErrInsufficientPool) {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		err = nil
	}
	return engine, err
}

// taxYearFilter parses an optional tax year flag, zero if empty.
func taxYearFilter(s string) (cgt.TaxYear, error) {
	if s == "" {
		return 0, nil
	}
	return cgt.ParseTaxYear(s)
}

// printMarkdown renders md to the terminal.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	log.Printf("cannot render markdown: %v", err)
	fmt.Print(md)
}
