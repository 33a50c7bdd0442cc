package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/date"
	"github.com/etnz/cgt/renderer"
	"github.com/google/subcommands"
)

type splitsCmd struct {
	filters
	update bool
}

func (*splitsCmd) Name() string { return "splits" }
func (*splitsCmd) Synopsis() string {
	return "show and update the split history of the ledger securities"
}
func (*splitsCmd) Usage() string {
	return `cgt splits [-u] [-ticker <ticker>]

  Shows the splits of the ledger securities, from the ledger and from the
  split history cache. With -u, the cache is first refreshed from the split
  provider. See 'cgt topic splits'.
`
}

func (c *splitsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.update, "u", false, "Refresh the split history from the provider")
	f.StringVar(&c.ticker, "ticker", "", "Show only splits of this ticker or ISIN")
}

func (c *splitsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.report)
}

func (c *splitsCmd) report(ctx context.Context) (string, error) {
	if c.update && isOffline() {
		return "", usageErrorf("-u is not available offline")
	}
	ledger, err := DecodeLedger()
	if err != nil {
		return "", err
	}
	sec, err := c.security(ledger)
	if err != nil {
		return "", err
	}
	if c.update {
		if err := refreshSplits(ctx, ledger); err != nil {
			return "", err
		}
	}
	actions, err := corporateActions(ledger)
	if err != nil {
		return "", err
	}
	var kept []cgt.CorporateAction
	for _, a := range actions {
		if sec.ISIN == "" || a.Security.ISIN == sec.ISIN {
			kept = append(kept, a)
		}
	}
	return renderer.SplitsMarkdown(kept), nil
}

// refreshSplits updates the split history cache. Partial failures are
// reported, the successful updates are still saved.
func refreshSplits(ctx context.Context, ledger *cgt.Ledger) error {
	provider, err := splitsProvider()
	if err != nil {
		return usageErrorf("-splits: %v", err)
	}
	market, err := DecodeMarketData()
	if err != nil {
		return err
	}
	refreshErr := market.Refresh(ctx, provider, ledger, date.Today())
	if err := EncodeMarketData(market); err != nil {
		return fmt.Errorf("error saving split history: %w", err)
	}
	return refreshErr
}
