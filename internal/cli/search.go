package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"quotewatch/internal/adapters/config"
	"quotewatch/internal/adapters/quoteservice"
	"quotewatch/internal/services/quotes"
	"quotewatch/pkg/logger"
)

type searchCmd struct{}

func (*searchCmd) Name() string             { return "search" }
func (*searchCmd) Synopsis() string         { return "look up symbols matching a prefix" }
func (*searchCmd) Usage() string            { return "quotewatch search <text>\n" }
func (*searchCmd) SetFlags(_ *flag.FlagSet) {}

// search needs no session or persistence, only the quote service
func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fail(fmt.Errorf("usage: %s", c.Usage()))
		return subcommands.ExitUsageError
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env, cfg.App.Name); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer func() { _ = logger.Sync() }()

	searcher := quotes.NewSearcher(quoteservice.NewClient(cfg.QuoteService), cfg.QuoteService.SearchURL)
	matches, err := searcher.Search(ctx, strings.Join(f.Args(), " "))
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, m.Type, m.Description)
	}
	_ = tw.Flush()
	return subcommands.ExitSuccess
}
