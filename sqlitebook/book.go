package sqlitebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/moredecimal"
	"github.com/etnz/moredecimal/date"
	"github.com/shopspring/decimal"
)

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// book implements moredecimal.Book on a querier. begin brackets one edit.
type book struct {
	q     querier
	begin func(ctx context.Context, fn func(querier) error) error
}

// savepoint runs fn inside a savepoint of the current transaction.
func (b *book) savepoint(ctx context.Context, fn func(querier) error) error {
	if _, err := b.q.ExecContext(ctx, "SAVEPOINT edit"); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(b.q); err != nil {
		b.q.ExecContext(ctx, "ROLLBACK TO edit")
		b.q.ExecContext(ctx, "RELEASE edit")
		return err
	}
	if _, err := b.q.ExecContext(ctx, "RELEASE edit"); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func (b *book) Accounts(ctx context.Context) ([]moredecimal.Account, error) {
	accounts, err := b.accountsInOrder(ctx)
	if err != nil {
		return nil, err
	}
	return moredecimal.SortAccounts(accounts), nil
}

// accountsInOrder returns the accounts in the order they were created.
func (b *book) accountsInOrder(ctx context.Context) ([]moredecimal.Account, error) {
	rows, err := b.q.QueryContext(ctx, `SELECT name, parent, account_type FROM accounts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []moredecimal.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (moredecimal.Account, error) {
	var a moredecimal.Account
	var accountType string
	if err := row.Scan(&a.Name, &a.Parent, &accountType); err != nil {
		return a, fmt.Errorf("scan account: %w", err)
	}
	t, err := moredecimal.ParseAccountType(accountType)
	if err != nil {
		return a, fmt.Errorf("account %q: %w", a.Name, err)
	}
	a.Type = t
	return a, nil
}

func (b *book) SubAccount(ctx context.Context, parent, name string) (moredecimal.Account, bool, error) {
	row := b.q.QueryRowContext(ctx,
		`SELECT name, parent, account_type FROM accounts WHERE parent = ? AND name = ?`, parent, name)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return moredecimal.Account{}, false, nil
	}
	if err != nil {
		return a, false, err
	}
	return a, true, nil
}

func (b *book) accountExists(ctx context.Context, account string) error {
	var n int
	err := b.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE full_name = ?`, account).Scan(&n)
	if err != nil {
		return fmt.Errorf("query account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", moredecimal.ErrUnknownAccount, account)
	}
	return nil
}

// Entries returns the transactions registered in account followed, for each
// transaction, by its splits booked against account.
func (b *book) Entries(ctx context.Context, account string) ([]moredecimal.Entry, error) {
	if err := b.accountExists(ctx, account); err != nil {
		return nil, err
	}
	rows, err := b.q.QueryContext(ctx, `
		SELECT t.guid, t.post_date, t.description, '' AS split, 0, '0', '', t.position, -1 AS split_position
		FROM transactions t
		WHERE t.account = ?
		UNION ALL
		SELECT t.guid, t.post_date, t.description, s.guid, s.quantity, s.value, s.currency, t.position, s.position
		FROM splits s JOIN transactions t ON s.tx_guid = t.guid
		WHERE s.account = ?
		ORDER BY 2, 8, 9
	`, account, account)
	if err != nil {
		return nil, fmt.Errorf("query entries of %q: %w", account, err)
	}
	defer rows.Close()

	var entries []moredecimal.Entry
	for rows.Next() {
		var e moredecimal.Entry
		var value decimal.Decimal
		var currency string
		var txPos, splitPos int
		if err := rows.Scan(&e.Txn, &e.Date, &e.Description, &e.Split, &e.Shares, &value, &currency, &txPos, &splitPos); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.IsSplit() {
			e.Amount = moredecimal.M(value, currency)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (b *book) BalanceAsOf(ctx context.Context, account string, day date.Date) (int64, error) {
	if err := b.accountExists(ctx, account); err != nil {
		return 0, err
	}
	var balance int64
	err := b.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(s.quantity), 0)
		FROM splits s JOIN transactions t ON s.tx_guid = t.guid
		WHERE s.account = ? AND t.post_date <= ?
	`, account, day).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("balance of %q: %w", account, err)
	}
	return balance, nil
}

const securityColumns = `name, ticker, currency, decimals, hidden`

func scanSecurity(row scanner) (moredecimal.Security, error) {
	var s moredecimal.Security
	err := row.Scan(&s.Name, &s.Ticker, &s.Currency, &s.Decimals, &s.Hidden)
	return s, err
}

func (b *book) Security(ctx context.Context, name string) (moredecimal.Security, error) {
	return b.security(ctx, b.q, name)
}

func (b *book) security(ctx context.Context, q querier, name string) (moredecimal.Security, error) {
	row := q.QueryRowContext(ctx, `SELECT `+securityColumns+` FROM securities WHERE name = ?`, name)
	s, err := scanSecurity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, fmt.Errorf("%w: %q", moredecimal.ErrUnknownSecurity, name)
	}
	if err != nil {
		return s, fmt.Errorf("query security %q: %w", name, err)
	}
	return s, nil
}

func (b *book) Securities(ctx context.Context) ([]moredecimal.Security, error) {
	rows, err := b.q.QueryContext(ctx, `SELECT `+securityColumns+` FROM securities ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query securities: %w", err)
	}
	defer rows.Close()

	var securities []moredecimal.Security
	for rows.Next() {
		s, err := scanSecurity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan security: %w", err)
		}
		securities = append(securities, s)
	}
	return securities, rows.Err()
}

func (b *book) EditSecurity(ctx context.Context, name string, edit func(*moredecimal.Security) error) error {
	return b.begin(ctx, func(q querier) error {
		s, err := b.security(ctx, q, name)
		if err != nil {
			return err
		}
		if err := edit(&s); err != nil {
			return err
		}
		if s.Name != name {
			return fmt.Errorf("security %q cannot be renamed", name)
		}
		if s.Decimals < 0 || s.Decimals > moredecimal.MaxDecimals {
			return fmt.Errorf("security %q: %w: %d", name, moredecimal.ErrInvalidDecimals, s.Decimals)
		}
		_, err = q.ExecContext(ctx,
			`UPDATE securities SET ticker = ?, currency = ?, decimals = ?, hidden = ? WHERE name = ?`,
			s.Ticker, s.Currency, s.Decimals, s.Hidden, name)
		if err != nil {
			return fmt.Errorf("update security %q: %w", name, err)
		}
		return nil
	})
}

func (b *book) EditTransaction(ctx context.Context, id string, edit func(*moredecimal.Transaction) error) error {
	return b.begin(ctx, func(q querier) error {
		t, err := readTransaction(ctx, q, id)
		if err != nil {
			return err
		}
		if err := edit(&t); err != nil {
			return err
		}
		if t.ID != id {
			return fmt.Errorf("transaction %q cannot change its id", id)
		}
		res, err := q.ExecContext(ctx,
			`UPDATE transactions SET description = ?, account = ? WHERE guid = ? AND post_date = ?`,
			t.Description, t.Account, id, t.Date)
		if err != nil {
			return fmt.Errorf("update transaction %q: %w", id, err)
		}
		// The date is part of the position of the transaction in the book.
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update transaction %q: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("transaction %q cannot change its date", id)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM splits WHERE tx_guid = ?`, id); err != nil {
			return fmt.Errorf("update transaction %q: %w", id, err)
		}
		return insertSplits(ctx, q, t)
	})
}

func readTransaction(ctx context.Context, q querier, id string) (moredecimal.Transaction, error) {
	var t moredecimal.Transaction
	err := q.QueryRowContext(ctx,
		`SELECT guid, post_date, description, account FROM transactions WHERE guid = ?`, id).
		Scan(&t.ID, &t.Date, &t.Description, &t.Account)
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("%w: %q", moredecimal.ErrUnknownTransaction, id)
	}
	if err != nil {
		return t, fmt.Errorf("query transaction %q: %w", id, err)
	}
	t.Splits, err = readSplits(ctx, q, `WHERE tx_guid = ?`, id)
	return t, err
}

func readSplits(ctx context.Context, q querier, where string, args ...any) ([]moredecimal.Split, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT guid, account, quantity, value, currency FROM splits `+where+` ORDER BY position`, args...)
	if err != nil {
		return nil, fmt.Errorf("query splits: %w", err)
	}
	defer rows.Close()

	var splits []moredecimal.Split
	for rows.Next() {
		var s moredecimal.Split
		var value decimal.Decimal
		var currency string
		if err := rows.Scan(&s.ID, &s.Account, &s.Shares, &value, &currency); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		s.Amount = moredecimal.M(value, currency)
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

func insertSplits(ctx context.Context, q querier, t moredecimal.Transaction) error {
	for i, s := range t.Splits {
		_, err := q.ExecContext(ctx,
			`INSERT INTO splits (guid, tx_guid, account, quantity, value, currency, position) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, t.ID, s.Account, s.Shares, s.Amount.Decimal(), s.Amount.Currency(), i)
		if err != nil {
			return fmt.Errorf("insert split %q of %q: %w", s.ID, t.ID, err)
		}
	}
	return nil
}

// transactions returns every transaction in book order.
func (b *book) transactions(ctx context.Context) ([]moredecimal.Transaction, error) {
	rows, err := b.q.QueryContext(ctx,
		`SELECT guid, post_date, description, account FROM transactions ORDER BY post_date, position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	var txs []moredecimal.Transaction
	for rows.Next() {
		var t moredecimal.Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.Account); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Splits are read once the rows are closed: the database has a single connection.
	for i := range txs {
		splits, err := readSplits(ctx, b.q, `WHERE tx_guid = ?`, txs[i].ID)
		if err != nil {
			return nil, err
		}
		txs[i].Splits = splits
	}
	return txs, nil
}
