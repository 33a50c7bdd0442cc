package cmd

import (
	"context"
	"flag"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/renderer"
	"github.com/google/subcommands"
)

type ordersCmd struct {
	filters
	acquisitions bool
	disposals    bool
	noForex      bool
}

func (*ordersCmd) Name() string     { return "orders" }
func (*ordersCmd) Synopsis() string { return "show share buy and sell orders" }
func (*ordersCmd) Usage() string {
	return `cgt orders [-ticker <ticker>] [-tax-year <year>] [-acquisitions|-disposals]

  Shows buy and sell orders converted to pounds, fees included.
`
}

func (c *ordersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Show only orders of this ticker or ISIN")
	f.StringVar(&c.taxYear, "tax-year", "", "Show only orders of this tax year, e.g. 2023/24")
	f.BoolVar(&c.acquisitions, "acquisitions", false, "Show only acquisitions")
	f.BoolVar(&c.disposals, "disposals", false, "Show only disposals")
	f.BoolVar(&c.noForex, "no-forex-fees", false, "Leave currency conversion fees out of costs and proceeds")
}

func (c *ordersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.report)
}

func (c *ordersCmd) report(ctx context.Context) (string, error) {
	if c.acquisitions && c.disposals {
		return "", usageErrorf("-acquisitions and -disposals cannot be used together")
	}
	year, err := c.year()
	if err != nil {
		return "", err
	}
	ledger, err := DecodeLedger()
	if err != nil {
		return "", err
	}
	sec, err := c.security(ledger)
	if err != nil {
		return "", err
	}
	var opts []cgt.TradesOption
	if c.noForex {
		opts = append(opts, cgt.WithoutForexFees())
	}
	trades, err := ledger.Trades(ctx, rates(), opts...)
	if err != nil {
		return "", err
	}

	var kept []cgt.Trade
	for _, t := range trades {
		switch {
		case sec.ISIN != "" && t.Security.ISIN != sec.ISIN:
		case year != 0 && cgt.TaxYearOf(t.Date) != year:
		case c.acquisitions && !t.IsAcquisition():
		case c.disposals && !t.IsDisposal():
		default:
			kept = append(kept, t)
		}
	}
	return renderer.OrdersMarkdown(kept), nil
}
