package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// storeCmd runs one store mutation inside a session and reports the result
func storeCmd(ctx context.Context, f *flag.FlagSet, want int, usage string, op func(a *app, args []string) error) subcommands.ExitStatus {
	if f.NArg() != want {
		fail(fmt.Errorf("usage: %s", usage))
		return subcommands.ExitUsageError
	}

	if err := withSession(ctx, func(a *app) error { return op(a, f.Args()) }); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type createCmd struct{}

func (*createCmd) Name() string             { return "create" }
func (*createCmd) Synopsis() string         { return "create an empty watchlist" }
func (*createCmd) Usage() string            { return "quotewatch create <name>\n" }
func (*createCmd) SetFlags(_ *flag.FlagSet) {}

func (c *createCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return storeCmd(ctx, f, 1, c.Usage(), func(a *app, args []string) error {
		wl, err := a.manager.Session().Store().Create(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created %q\n", wl.Name)
		return nil
	})
}

type renameCmd struct{}

func (*renameCmd) Name() string             { return "rename" }
func (*renameCmd) Synopsis() string         { return "rename a watchlist" }
func (*renameCmd) Usage() string            { return "quotewatch rename <old> <new>\n" }
func (*renameCmd) SetFlags(_ *flag.FlagSet) {}

func (c *renameCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return storeCmd(ctx, f, 2, c.Usage(), func(a *app, args []string) error {
		return a.manager.Session().Store().Rename(args[0], args[1])
	})
}

type deleteCmd struct{}

func (*deleteCmd) Name() string             { return "delete" }
func (*deleteCmd) Synopsis() string         { return "delete a watchlist" }
func (*deleteCmd) Usage() string            { return "quotewatch delete <name>\n" }
func (*deleteCmd) SetFlags(_ *flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return storeCmd(ctx, f, 1, c.Usage(), func(a *app, args []string) error {
		return a.manager.Session().Store().Remove(args[0])
	})
}

type selectCmd struct{}

func (*selectCmd) Name() string             { return "select" }
func (*selectCmd) Synopsis() string         { return "make a watchlist the current one" }
func (*selectCmd) Usage() string            { return "quotewatch select <name>\n" }
func (*selectCmd) SetFlags(_ *flag.FlagSet) {}

func (c *selectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return storeCmd(ctx, f, 1, c.Usage(), func(a *app, args []string) error {
		return a.manager.Session().Store().Select(args[0])
	})
}
