package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"quotewatch/pkg/errors"
)

type showCmd struct {
	name    string
	refresh bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "print watchlists and their last known quotes" }
func (*showCmd) Usage() string {
	return `quotewatch show [-n <watchlist>] [-r]

  Prints every watchlist in display order, the selected one marked with *.
  With -r a refresh pass runs first.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Only print this watchlist.")
	f.BoolVar(&c.refresh, "r", false, "Refresh quotes before printing.")
}

func (c *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := withSession(ctx, func(a *app) error {
		if c.refresh {
			if _, err := a.engine.RefreshAll(ctx); err != nil && !errors.Is(err, errors.ErrNoWatchlists) {
				a.log.Warnw("Refresh failed, showing stored quotes", "error", err)
			}
		}

		store := a.manager.Session().Store()
		if c.name != "" {
			wl, ok := store.Get(c.name)
			if !ok {
				return errors.Wrapf(errors.ErrNotFound, "watchlist %q", c.name)
			}
			renderWatchlist(a.out, wl, wl.Name == store.Current())
			return nil
		}

		current := store.Current()
		for _, wl := range store.OrderedView() {
			renderWatchlist(a.out, wl, wl.Name == current)
		}
		return nil
	})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

