package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moredecimal"
	"github.com/etnz/moredecimal/renderer"
	"github.com/google/subcommands"
)

// securitiesCmd holds the flags for the 'securities' subcommand.
type securitiesCmd struct {
	security string
	raw      bool
}

func (*securitiesCmd) Name() string     { return "securities" }
func (*securitiesCmd) Synopsis() string { return "list securities, or the positions held in one" }
func (*securitiesCmd) Usage() string {
	return `mdc securities [-s <security>] [-raw]

  Lists the securities of the book with their number of decimal places.
  With -s, shows the investment accounts holding the security.
`
}

func (c *securitiesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "s", "", "Security to inspect")
	f.BoolVar(&c.raw, "raw", false, "Print markdown without rendering it")
}

func (c *securitiesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBook(ctx, *bookPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book %q: %v\n", *bookPath, err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	var md string
	if c.security == "" {
		securities, err := b.Book.Securities(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing securities: %v\n", err)
			return subcommands.ExitFailure
		}
		md = renderer.SecuritiesMarkdown(securities)
	} else {
		report, err := moredecimal.Inspect(ctx, b.Book, c.security)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error inspecting %q: %v\n", c.security, err)
			return subcommands.ExitFailure
		}
		md = renderer.ReportMarkdown(report)
	}
	printMarkdown(stdout, md, c.raw)
	return subcommands.ExitSuccess
}
