package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/etnz/cgt"
	"github.com/google/subcommands"
)

// errUsage marks errors in command line arguments.
var errUsage = errors.New("usage error")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// run prints the markdown report of a command, or its error.
func run(ctx context.Context, report func(context.Context) (string, error)) subcommands.ExitStatus {
	md, err := report(ctx)
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// filters holds the common report filters.
type filters struct {
	ticker  string
	taxYear string
}

// security resolves the -ticker filter, the zero Security if not set.
func (f filters) security(ledger *cgt.Ledger) (cgt.Security, error) {
	if f.ticker == "" {
		return cgt.Security{}, nil
	}
	sec, err := ledger.Security(f.ticker)
	if err != nil {
		return cgt.Security{}, usageErrorf("-ticker: %v", err)
	}
	return sec, nil
}

// year parses the -tax-year filter, zero if not set.
func (f filters) year() (cgt.TaxYear, error) {
	y, err := taxYearFilter(f.taxYear)
	if err != nil {
		return 0, usageErrorf("-tax-year: %v", err)
	}
	return y, nil
}
