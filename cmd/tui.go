package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moredecimal/tui"
	"github.com/google/subcommands"
)

type tuiCmd struct{}

func (*tuiCmd) Name() string     { return "tui" }
func (*tuiCmd) Synopsis() string { return "change decimal places in an interactive window" }
func (*tuiCmd) Usage() string {
	return `mdc tui

  Opens a terminal window listing the securities. Select one with the arrow
  keys, type the new number of decimal places, press enter to check and stage
  the changes and ctrl+s to commit them. esc quits.
`
}

func (*tuiCmd) SetFlags(f *flag.FlagSet) {}

func (*tuiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBook(ctx, *bookPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book %q: %v\n", *bookPath, err)
		return subcommands.ExitFailure
	}
	defer b.Close()
	cat, err := openCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading messages: %v\n", err)
		return subcommands.ExitUsageError
	}

	m, err := tui.New(ctx, b.Book, cat, b.Save)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := tui.Run(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running the window: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
