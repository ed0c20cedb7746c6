// Package sqlitebook stores a book in a SQLite database.
//
// Every edit runs in its own SQL transaction; Atomically groups edits in a
// single one. The database is opened with a single connection.
package sqlitebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/moredecimal"
	_ "modernc.org/sqlite"
)

// ErrNotEmpty is returned when importing into a database that already holds a book.
var ErrNotEmpty = errors.New("database is not empty")

const schema = `
CREATE TABLE IF NOT EXISTS securities (
	name     TEXT PRIMARY KEY,
	ticker   TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT '',
	decimals INTEGER NOT NULL,
	hidden   INTEGER NOT NULL DEFAULT 0,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS accounts (
	full_name    TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	parent       TEXT NOT NULL DEFAULT '',
	account_type TEXT NOT NULL,
	position     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	guid        TEXT PRIMARY KEY,
	post_date   TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	account     TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS splits (
	guid     TEXT NOT NULL,
	tx_guid  TEXT NOT NULL REFERENCES transactions(guid) ON DELETE CASCADE,
	account  TEXT NOT NULL REFERENCES accounts(full_name),
	quantity INTEGER NOT NULL,
	value    TEXT NOT NULL DEFAULT '0',
	currency TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL,
	PRIMARY KEY (tx_guid, guid)
);
CREATE INDEX IF NOT EXISTS splits_account ON splits(account);
CREATE INDEX IF NOT EXISTS transactions_account ON transactions(account);
`

// Store is a book kept in a SQLite database.
type Store struct {
	db *sql.DB
	*book
}

// Open opens or creates the SQLite book at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// foreign_keys is a per connection pragma.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &Store{db: db}
	s.book = &book{q: db, begin: s.beginEdit}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// beginEdit runs fn in its own SQL transaction.
func (s *Store) beginEdit(ctx context.Context, fn func(querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Atomically runs fn with a Book whose edits all belong to one SQL transaction,
// committed only if fn returns nil.
func (s *Store) Atomically(ctx context.Context, fn func(moredecimal.Book) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	b := &book{q: tx}
	b.begin = b.savepoint
	if err := fn(b); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Import copies a ledger into an empty database.
func (s *Store) Import(ctx context.Context, ledger *moredecimal.Ledger) error {
	return s.beginEdit(ctx, func(q querier) error {
		var n int
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM securities").Scan(&n); err != nil {
			return fmt.Errorf("count securities: %w", err)
		}
		if n > 0 {
			return ErrNotEmpty
		}
		for i, sec := range ledger.AllSecurities() {
			_, err := q.ExecContext(ctx,
				"INSERT INTO securities (name, ticker, currency, decimals, hidden, position) VALUES (?, ?, ?, ?, ?, ?)",
				sec.Name, sec.Ticker, sec.Currency, sec.Decimals, sec.Hidden, i)
			if err != nil {
				return fmt.Errorf("insert security %q: %w", sec.Name, err)
			}
		}
		for i, a := range ledger.AllAccounts() {
			_, err := q.ExecContext(ctx,
				"INSERT INTO accounts (full_name, name, parent, account_type, position) VALUES (?, ?, ?, ?, ?)",
				a.FullName(), a.Name, a.Parent, a.Type.String(), i)
			if err != nil {
				return fmt.Errorf("insert account %q: %w", a.FullName(), err)
			}
		}
		for i, t := range ledger.Transactions() {
			_, err := q.ExecContext(ctx,
				"INSERT INTO transactions (guid, post_date, description, account, position) VALUES (?, ?, ?, ?, ?)",
				t.ID, t.Date, t.Description, t.Account, i)
			if err != nil {
				return fmt.Errorf("insert transaction %q: %w", t.ID, err)
			}
			if err := insertSplits(ctx, q, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// Export reads the whole database into a ledger.
func (s *Store) Export(ctx context.Context) (*moredecimal.Ledger, error) {
	ledger := moredecimal.NewLedger()
	securities, err := s.Securities(ctx)
	if err != nil {
		return nil, err
	}
	for _, sec := range securities {
		if err := ledger.AddSecurity(sec); err != nil {
			return nil, err
		}
	}
	accounts, err := s.accountsInOrder(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if err := ledger.AddAccount(a); err != nil {
			return nil, err
		}
	}
	txs, err := s.transactions(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range txs {
		if err := ledger.AddTransaction(t); err != nil {
			return nil, err
		}
	}
	return ledger, nil
}

// check that a Store is a Book.
var _ moredecimal.Book = (*Store)(nil)
var _ moredecimal.Atomic = (*Store)(nil)
