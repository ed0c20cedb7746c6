package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type formatBookCmd struct {
	output string
}

func (*formatBookCmd) Name() string     { return "format-book" }
func (*formatBookCmd) Synopsis() string { return "formats the book file into a canonical form" }
func (*formatBookCmd) Usage() string {
	return `format-book [-o <file>]:
  formats the JSONL book file into a canonical form.
`
}

func (c *formatBookCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the book file itself.")
}

func (c *formatBookCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if isSQLite(*bookPath) {
		fmt.Fprintf(os.Stderr, "Error: %q is a SQLite database, only JSONL books can be formatted\n", *bookPath)
		return subcommands.ExitUsageError
	}
	// 1. Read the book
	ledger, err := decodeLedgerFile(*bookPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding book: %v\n", err)
		return subcommands.ExitFailure
	}

	// 2. Write it back
	output := c.output
	if output == "" {
		output = *bookPath
	}
	if err := encodeLedgerFile(output, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding book: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "Book file '%s' has been formatted.\n", output)
	return subcommands.ExitSuccess
}
