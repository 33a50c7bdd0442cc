package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cgt"
	"github.com/google/subcommands"
)

// errNotCanonical is returned by format-ledger -check.
var errNotCanonical = errors.New("ledger is not in canonical form")

type formatLedgerCmd struct {
	check bool
}

func (*formatLedgerCmd) Name() string     { return "format-ledger" }
func (*formatLedgerCmd) Synopsis() string { return "rewrite the ledger file in canonical form" }
func (*formatLedgerCmd) Usage() string {
	return `cgt format-ledger [-check]

  Rewrites the ledger file sorted by date, one transaction per line, with
  fields in a fixed order. The ledger is validated first and left untouched
  if it is invalid. See 'cgt topic ledger'.
`
}

func (c *formatLedgerCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.check, "check", false, "Only check that the ledger is in canonical form")
}

func (c *formatLedgerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.format(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *formatLedgerCmd) format() error {
	original, err := os.ReadFile(ledgerPath())
	if err != nil {
		return err
	}
	ledger, err := DecodeLedger()
	if err != nil {
		return err
	}
	var canonical bytes.Buffer
	if err := cgt.EncodeLedger(&canonical, ledger); err != nil {
		return err
	}
	if bytes.Equal(original, canonical.Bytes()) {
		fmt.Printf("Ledger file %q is already formatted.\n", ledgerPath())
		return nil
	}
	if c.check {
		return fmt.Errorf("%q: %w, run 'cgt format-ledger'", ledgerPath(), errNotCanonical)
	}
	if err := EncodeLedger(ledger); err != nil {
		return fmt.Errorf("error writing %q: %w", ledgerPath(), err)
	}
	fmt.Printf("Ledger file %q has been formatted, %d transactions.\n", ledgerPath(), ledger.Len())
	return nil
}
