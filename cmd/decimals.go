package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/moredecimal"
	"github.com/google/subcommands"
)

// decimalsCmd holds the flags for the 'decimals' subcommand.
type decimalsCmd struct {
	security string
	decimals int
}

func (*decimalsCmd) Name() string     { return "decimals" }
func (*decimalsCmd) Synopsis() string { return "change the number of decimal places of a security" }
func (*decimalsCmd) Usage() string {
	return `mdc decimals -s <security> -n <decimals>

  Checks that every transaction holding the security can be rescaled to the
  new number of decimal places, prints the result, and asks for confirmation
  before changing the book.
`
}

func (c *decimalsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "s", "", "Security to change")
	f.IntVar(&c.decimals, "n", -1, fmt.Sprintf("New number of decimal places, 0 to %d", moredecimal.MaxDecimals))
}

func (c *decimalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.decimals < 0 {
		fmt.Fprintln(os.Stderr, "Error: -s and -n are required")
		return subcommands.ExitUsageError
	}
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

	win := &terminal{w: stdout, security: c.security, decimals: c.decimals}
	session := moredecimal.NewSession(b.Book, cat, win)
	report, err := session.Stage(ctx)
	if err != nil || report.Failed > 0 {
		return subcommands.ExitFailure
	}
	if !win.commit {
		// Already scaled.
		return subcommands.ExitSuccess
	}

	if !confirm(stdin, stdout, "Commit these changes? [y/N] ") {
		session.Changer().Forget()
		fmt.Fprintln(stdout, "No changes made.")
		return subcommands.ExitSuccess
	}
	if _, err := session.Commit(ctx); err != nil {
		return subcommands.ExitFailure
	}
	if err := b.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving book %q: %v\n", *bookPath, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// confirm asks question on w and reports whether the answer read from r is yes.
func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprint(w, question)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// terminal is a moredecimal.Window printing its log as it comes. The
// selection is fixed by the command flags.
type terminal struct {
	w        io.Writer
	security string
	decimals int
	commit   bool
}

func (t *terminal) AddText(text string)       { fmt.Fprintln(t.w, text) }
func (t *terminal) ClearText()                {}
func (t *terminal) EnableStage(bool)          {}
func (t *terminal) EnableCommit(enabled bool) { t.commit = enabled }
func (t *terminal) DisableActions()           { t.commit = false }

func (t *terminal) Selection() (string, int, error) { return t.security, t.decimals, nil }

var _ moredecimal.Window = (*terminal)(nil)
