package cmd

import (
	"context"
	"flag"
	"log"

	"github.com/etnz/cgt"
	"github.com/etnz/cgt/date"
	"github.com/etnz/cgt/renderer"
	"github.com/etnz/cgt/yahoo"
	"github.com/google/subcommands"
)

type holdingsCmd struct {
	filters
	avgCost bool
	value   bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "show the section 104 holdings" }
func (*holdingsCmd) Usage() string {
	return `cgt holdings [-ticker <ticker>] [-show-avg-cost] [-show-value]

  Shows the shares left in each section 104 pool and their allowable cost.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Show only the holding of this ticker or ISIN")
	f.BoolVar(&c.avgCost, "show-avg-cost", false, "Show the average cost per share")
	f.BoolVar(&c.value, "show-value", false, "Show the current market value and unrealised gain (needs network access)")
}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.report)
}

func (c *holdingsCmd) report(ctx context.Context) (string, error) {
	if c.value && isOffline() {
		return "", usageErrorf("-show-value is not available offline")
	}
	ledger, err := DecodeLedger()
	if err != nil {
		return "", err
	}
	sec, err := c.security(ledger)
	if err != nil {
		return "", err
	}
	engine, err := runEngine(ctx, ledger)
	if err != nil {
		return "", err
	}
	var holdings []cgt.Holding
	for _, h := range engine.Holdings() {
		if sec.ISIN == "" || h.Security.ISIN == sec.ISIN {
			holdings = append(holdings, h)
		}
	}

	opts := renderer.HoldingsOptions{AverageCost: c.avgCost}
	if c.value {
		opts.Values = values(ctx, yahoo.New(cachePath()), rates(), holdings, date.Today())
	}
	return renderer.HoldingsMarkdown(holdings, opts), nil
}

// values returns the market value of each holding in the home currency.
// Holdings without a price are left out.
func values(ctx context.Context, prices cgt.PriceProvider, rates cgt.RateProvider, holdings []cgt.Holding, on date.Date) map[string]cgt.Money {
	vals := make(map[string]cgt.Money)
	for _, h := range holdings {
		price, err := prices.Price(ctx, h.Security)
		if err != nil {
			log.Printf("no price for %s: %v", h.Security, err)
			continue
		}
		rate, err := rates.Rate(ctx, price.Currency(), on)
		if err != nil {
			log.Printf("no %s rate for %s: %v", price.Currency(), h.Security, err)
			continue
		}
		home, err := price.Convert(rate, cgt.HomeCurrency)
		if err != nil {
			log.Printf("cannot convert the price of %s: %v", h.Security, err)
			continue
		}
		vals[h.Security.ISIN] = home.Mul(h.Quantity).Round()
	}
	return vals
}
