package cmd

import (
	"context"
	"flag"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/renderer"
	"github.com/google/subcommands"
)

type capitalGainsCmd struct {
	filters
	gains   bool
	losses  bool
	noForex bool
}

func (*capitalGainsCmd) Name() string     { return "capital-gains" }
func (*capitalGainsCmd) Synopsis() string { return "show the capital gains report" }
func (*capitalGainsCmd) Usage() string {
	return `cgt capital-gains [-ticker <ticker>] [-tax-year <year>] [-gains|-losses]

  Shows how each disposal is matched to acquisitions, and the resulting gains
  and losses, per tax year. See 'cgt topic matching'.
`
}

func (c *capitalGainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Show only disposals of this ticker or ISIN")
	f.StringVar(&c.taxYear, "tax-year", "", "Show only this tax year, e.g. 2023/24")
	f.BoolVar(&c.gains, "gains", false, "Show only capital gains")
	f.BoolVar(&c.losses, "losses", false, "Show only capital losses")
	f.BoolVar(&c.noForex, "no-forex-fees", false, "Leave currency conversion fees out of costs and proceeds")
}

func (c *capitalGainsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.report)
}

func (c *capitalGainsCmd) report(ctx context.Context) (string, error) {
	if c.gains && c.losses {
		return "", usageErrorf("-gains and -losses cannot be used together")
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
	engine, err := runEngine(ctx, ledger, opts...)
	if err != nil {
		return "", err
	}
	return renderer.CapitalGainsMarkdown(engine.Matches(), renderer.GainsOptions{
		Year:       year,
		ISIN:       sec.ISIN,
		GainsOnly:  c.gains,
		LossesOnly: c.losses,
	}), nil
}

type taxSummaryCmd struct {
	filters
}

func (*taxSummaryCmd) Name() string     { return "tax-summary" }
func (*taxSummaryCmd) Synopsis() string { return "show the capital gains summary of each tax year" }
func (*taxSummaryCmd) Usage() string {
	return `cgt tax-summary [-tax-year <year>]

  Shows the number of disposals, proceeds, allowable costs, gains and losses
  of each tax year, as required by the Self Assessment capital gains summary.
`
}

func (c *taxSummaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.taxYear, "tax-year", "", "Show only this tax year, e.g. 2023/24")
}

func (c *taxSummaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.report)
}

func (c *taxSummaryCmd) report(ctx context.Context) (string, error) {
	year, err := c.year()
	if err != nil {
		return "", err
	}
	ledger, err := DecodeLedger()
	if err != nil {
		return "", err
	}
	engine, err := runEngine(ctx, ledger)
	if err != nil {
		return "", err
	}
	matches := engine.Matches()
	if year != 0 {
		matches = cgt.InTaxYear(matches, year)
	}
	return renderer.RenderTaxSummary(cgt.Summarize(matches)), nil
}
