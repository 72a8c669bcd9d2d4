package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"quotewatch/pkg/errors"
)

// targetList returns name, or the selected watchlist when name is empty
func targetList(a *app, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	current := a.manager.Session().Store().Current()
	if current == "" {
		return "", errors.Wrap(errors.ErrNotFound, "no watchlist selected")
	}
	return current, nil
}

type addCmd struct {
	list string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add symbols to a watchlist and fetch their quotes" }
func (*addCmd) Usage() string {
	return `quotewatch add [-l <watchlist>] <symbol>...

  Adds each symbol to the watchlist (the selected one by default) and
  refreshes it. Symbols already present are left alone.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.list, "l", "", "Target watchlist (defaults to the selected one).")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fail(fmt.Errorf("usage: %s", c.Usage()))
		return subcommands.ExitUsageError
	}

	err := withSession(ctx, func(a *app) error {
		name, err := targetList(a, c.list)
		if err != nil {
			return err
		}
		for _, symbol := range f.Args() {
			if err := a.engine.AddQuote(ctx, symbol, name); err != nil {
				return err
			}
		}
		if wl, ok := a.manager.Session().Store().Get(name); ok {
			renderWatchlist(a.out, wl, true)
		}
		return nil
	})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type removeCmd struct {
	list string
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a symbol from a watchlist" }
func (*removeCmd) Usage() string    { return "quotewatch remove [-l <watchlist>] <symbol>\n" }

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.list, "l", "", "Target watchlist (defaults to the selected one).")
}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return storeCmd(ctx, f, 1, c.Usage(), func(a *app, args []string) error {
		name, err := targetList(a, c.list)
		if err != nil {
			return err
		}
		return a.engine.RemoveQuote(name, args[0])
	})
}

type refreshCmd struct {
	list string
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch fresh quotes for every watchlist" }
func (*refreshCmd) Usage() string    { return "quotewatch refresh [-l <watchlist>]\n" }

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.list, "l", "", "Refresh only this watchlist.")
}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := withSession(ctx, func(a *app) error {
		if c.list != "" {
			updated, err := a.engine.RefreshWatchlist(ctx, c.list)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %d quotes updated\n", c.list, updated)
			return nil
		}

		pass, err := a.engine.RefreshAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d watchlists, %d quotes updated, %d failed in %s\n",
			pass.Watchlists, pass.Updated, pass.Failed, pass.Duration.Round(time.Millisecond))
		return nil
	})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
