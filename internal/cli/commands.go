// Package cli implements the quotewatch subcommands.
package cli

import "github.com/google/subcommands"

// Commands lists every subcommand in registration order
var Commands = []subcommands.Command{
	&serveCmd{},
	&showCmd{},
	&createCmd{},
	&renameCmd{},
	&deleteCmd{},
	&selectCmd{},
	&addCmd{},
	&removeCmd{},
	&refreshCmd{},
	&searchCmd{},
	&tailCmd{},
}
