// Package cmd implements the mdc command line application, that changes the
// number of decimal places of a security in a book.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/moredecimal"
	"github.com/etnz/moredecimal/catalog"
	"github.com/etnz/moredecimal/sqlitebook"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&securitiesCmd{}, "securities")
	c.Register(&decimalsCmd{}, "securities")
	c.Register(&tuiCmd{}, "securities")
	c.Register(&serveMCPCmd{}, "securities")

	c.Register(&convertCmd{}, "book")
	c.Register(&formatBookCmd{}, "book")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var bookPath = flag.String("book", "book.jsonl", "Path to the book: a JSONL file, or a SQLite database (.db, .sqlite, .sqlite3)")
var locale = flag.String("locale", catalog.DefaultLocale, "Language of the messages ("+strings.Join(catalog.Locales(), ", ")+")")
var configFile = flag.String("config", "mdc.toml", "Path to the configuration file")

// Standard streams of the commands, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// isSQLite reports whether path names a SQLite database rather than a JSONL file.
func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// book is an opened book file.
type book struct {
	Book   moredecimal.Book
	path   string
	ledger *moredecimal.Ledger // nil for SQLite books
	store  *sqlitebook.Store   // nil for JSONL books
}

// openBook opens the book stored at path.
func openBook(ctx context.Context, path string) (*book, error) {
	if isSQLite(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		store, err := sqlitebook.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return &book{Book: store, path: path, store: store}, nil
	}
	ledger, err := decodeLedgerFile(path)
	if err != nil {
		return nil, err
	}
	return &book{Book: ledger, path: path, ledger: ledger}, nil
}

// Save writes a modified JSONL book back to its file. SQLite books are saved
// by each edit.
func (b *book) Save() error {
	if b.ledger == nil || !b.ledger.Modified() {
		return nil
	}
	return encodeLedgerFile(b.path, b.ledger)
}

// Close releases the book.
func (b *book) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

// Ledger returns the content of the book in memory.
func (b *book) Ledger(ctx context.Context) (*moredecimal.Ledger, error) {
	if b.ledger != nil {
		return b.ledger, nil
	}
	return b.store.Export(ctx)
}

func decodeLedgerFile(path string) (*moredecimal.Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ledger, err := moredecimal.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	return ledger, nil
}

// encodeLedgerFile replaces the content of path with ledger.
func encodeLedgerFile(path string, ledger *moredecimal.Ledger) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening book file %q for writing: %w", path, err)
	}
	if err := moredecimal.EncodeLedger(f, ledger); err != nil {
		f.Close()
		return fmt.Errorf("error encoding book file %q: %w", path, err)
	}
	return f.Close()
}

// openCatalog returns the message catalog of the selected locale.
func openCatalog() (*catalog.Catalog, error) {
	return catalog.New(*locale)
}
