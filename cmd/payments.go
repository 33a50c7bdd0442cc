package cmd

import (
	"context"
	"flag"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/renderer"
	"github.com/google/subcommands"
)

// payments returns the ledger payments of kind in the home currency, filtered.
func payments(ctx context.Context, f filters, kinds ...cgt.CommandType) ([]cgt.Payment, error) {
	year, err := f.year()
	if err != nil {
		return nil, err
	}
	ledger, err := DecodeLedger()
	if err != nil {
		return nil, err
	}
	sec, err := f.security(ledger)
	if err != nil {
		return nil, err
	}
	all, err := ledger.Payments(ctx, rates(), kinds...)
	if err != nil {
		return nil, err
	}
	var kept []cgt.Payment
	for _, p := range all {
		if sec.ISIN != "" && p.Security.ISIN != sec.ISIN {
			continue
		}
		if year != 0 && cgt.TaxYearOf(p.Date) != year {
			continue
		}
		kept = append(kept, p)
	}
	return kept, nil
}

type dividendsCmd struct {
	filters
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "show share dividends" }
func (*dividendsCmd) Usage() string {
	return `cgt dividends [-ticker <ticker>] [-tax-year <year>]

  Shows dividends converted to pounds, net of the tax withheld at source.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Show only dividends of this ticker or ISIN")
	f.StringVar(&c.taxYear, "tax-year", "", "Show only dividends of this tax year, e.g. 2023/24")
}

func (c *dividendsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context) (string, error) {
		ps, err := payments(ctx, c.filters, cgt.CmdDividend)
		if err != nil {
			return "", err
		}
		return renderer.DividendsMarkdown(ps), nil
	})
}

type transfersCmd struct {
	filters
	deposits    bool
	withdrawals bool
}

func (*transfersCmd) Name() string     { return "transfers" }
func (*transfersCmd) Synopsis() string { return "show cash transfers" }
func (*transfersCmd) Usage() string {
	return `cgt transfers [-tax-year <year>] [-deposits|-withdrawals]

  Shows cash deposits and withdrawals converted to pounds.
`
}

func (c *transfersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.taxYear, "tax-year", "", "Show only transfers of this tax year, e.g. 2023/24")
	f.BoolVar(&c.deposits, "deposits", false, "Show only deposits")
	f.BoolVar(&c.withdrawals, "withdrawals", false, "Show only withdrawals")
}

func (c *transfersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.report)
}

func (c *transfersCmd) report(ctx context.Context) (string, error) {
	kinds := []cgt.CommandType{cgt.CmdDeposit, cgt.CmdWithdraw}
	switch {
	case c.deposits && c.withdrawals:
		return "", usageErrorf("-deposits and -withdrawals cannot be used together")
	case c.deposits:
		kinds = kinds[:1]
	case c.withdrawals:
		kinds = kinds[1:]
	}
	ps, err := payments(ctx, c.filters, kinds...)
	if err != nil {
		return "", err
	}
	return renderer.TransfersMarkdown(ps), nil
}

type interestCmd struct {
	filters
}

func (*interestCmd) Name() string     { return "interest" }
func (*interestCmd) Synopsis() string { return "show interest earned on cash" }
func (*interestCmd) Usage() string {
	return `cgt interest [-tax-year <year>]

  Shows interest earned on cash, converted to pounds.
`
}

func (c *interestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.taxYear, "tax-year", "", "Show only interest of this tax year, e.g. 2023/24")
}

func (c *interestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context) (string, error) {
		ps, err := payments(ctx, c.filters, cgt.CmdInterest)
		if err != nil {
			return "", err
		}
		return renderer.InterestMarkdown(ps), nil
	})
}
