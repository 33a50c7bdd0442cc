package cmd

import (
	"context"
	"flag"

	"github.com/etnz/cgt/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string { return "topic" }
func (*topicCmd) Synopsis() string {
	return "show documentation about the ledger, matching rules and data sources"
}
func (*topicCmd) Usage() string {
	return `cgt topic [<topic>...]

  Shows the documentation topics, the readme if none is given, '*' for all of them.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (c *topicCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	return run(ctx, func(context.Context) (string, error) { return c.report(topics...) })
}

func (*topicCmd) report(topics ...string) (string, error) {
	if len(topics) == 0 {
		topics = []string{docs.Readme}
	}
	md, err := docs.Topics(topics...)
	if err != nil {
		return "", usageErrorf("%v", err)
	}
	return md, nil
}
