package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moredecimal/sqlitebook"
	"github.com/google/subcommands"
)

// convertCmd holds the flags for the 'convert' subcommand.
type convertCmd struct {
	output string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert the book between JSONL and SQLite" }
func (*convertCmd) Usage() string {
	return `mdc convert -o <file>

  Writes the content of the book to a new file. The format of the output is
  chosen by its extension: .db, .sqlite and .sqlite3 are SQLite databases,
  anything else is JSONL.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file")
}

func (c *convertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		fmt.Fprintln(os.Stderr, "Error: -o is required")
		return subcommands.ExitUsageError
	}
	b, err := openBook(ctx, *bookPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book %q: %v\n", *bookPath, err)
		return subcommands.ExitFailure
	}
	defer b.Close()
	ledger, err := b.Ledger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading book %q: %v\n", *bookPath, err)
		return subcommands.ExitFailure
	}

	if !isSQLite(c.output) {
		if err := encodeLedgerFile(c.output, ledger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Book written to %s\n", c.output)
		return subcommands.ExitSuccess
	}

	store, err := sqlitebook.Open(ctx, c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	defer store.Close()
	if err := store.Import(ctx, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error importing into %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Book written to %s\n", c.output)
	return subcommands.ExitSuccess
}
