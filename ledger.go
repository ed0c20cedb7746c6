package moredecimal

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/moredecimal/date"
	"github.com/google/uuid"
)

// Ledger is an in-memory account book.
//
// In a Ledger transactions are always in chronological order; transactions on
// the same day keep their insertion order.
type Ledger struct {
	securities   []Security
	accounts     []Account
	transactions []Transaction

	secIndex map[string]int // index securities by name
	accIndex map[string]int // index accounts by full name
	txIndex  map[string]int // index transactions by id

	modified bool
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		secIndex: make(map[string]int),
		accIndex: make(map[string]int),
		txIndex:  make(map[string]int),
	}
}

// Modified reports whether an edit has been published since the ledger was built.
func (l *Ledger) Modified() bool { return l.modified }

// AddSecurity declares a new security.
func (l *Ledger) AddSecurity(s Security) error {
	if s.Name == "" {
		return fmt.Errorf("security name is required")
	}
	if _, exists := l.secIndex[s.Name]; exists {
		return fmt.Errorf("security %q already declared", s.Name)
	}
	if s.Decimals < 0 || s.Decimals > MaxDecimals {
		return fmt.Errorf("security %q: %w: %d", s.Name, ErrInvalidDecimals, s.Decimals)
	}
	l.secIndex[s.Name] = len(l.securities)
	l.securities = append(l.securities, s)
	return nil
}

// AddAccount adds an account under an existing parent.
func (l *Ledger) AddAccount(a Account) error {
	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}
	if a.Parent != "" {
		if _, ok := l.accIndex[a.Parent]; !ok {
			return fmt.Errorf("account %q: parent: %w: %q", a.Name, ErrUnknownAccount, a.Parent)
		}
	}
	full := a.FullName()
	if _, exists := l.accIndex[full]; exists {
		return fmt.Errorf("account %q already exists", full)
	}
	l.accIndex[full] = len(l.accounts)
	l.accounts = append(l.accounts, a)
	return nil
}

// AddTransaction appends a transaction after all the transactions of the same
// day or before. Missing transaction and split ids are generated.
func (l *Ledger) AddTransaction(tx Transaction) error {
	tx = tx.clone()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if _, exists := l.txIndex[tx.ID]; exists {
		return fmt.Errorf("transaction %q already exists", tx.ID)
	}
	if tx.Account != "" {
		if _, ok := l.accIndex[tx.Account]; !ok {
			return fmt.Errorf("transaction %q: %w: %q", tx.ID, ErrUnknownAccount, tx.Account)
		}
	}
	seen := make(map[string]bool)
	for i := range tx.Splits {
		s := &tx.Splits[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if seen[s.ID] {
			return fmt.Errorf("transaction %q: duplicate split %q", tx.ID, s.ID)
		}
		seen[s.ID] = true
		if _, ok := l.accIndex[s.Account]; !ok {
			return fmt.Errorf("transaction %q: split %q: %w: %q", tx.ID, s.ID, ErrUnknownAccount, s.Account)
		}
	}
	pos, _ := slices.BinarySearchFunc(l.transactions, tx.Date, func(t Transaction, d date.Date) int {
		if t.Date.After(d) {
			return 1
		}
		return -1 // same day goes before the new one
	})
	l.transactions = slices.Insert(l.transactions, pos, tx)
	l.reindex()
	return nil
}

func (l *Ledger) reindex() {
	clear(l.txIndex)
	for i, t := range l.transactions {
		l.txIndex[t.ID] = i
	}
}

// AllAccounts returns the accounts in declaration order.
func (l *Ledger) AllAccounts() []Account { return slices.Clone(l.accounts) }

// AllSecurities returns the securities in declaration order.
func (l *Ledger) AllSecurities() []Security { return slices.Clone(l.securities) }

// Transactions returns a copy of the transactions in chronological order.
func (l *Ledger) Transactions() []Transaction {
	txs := make([]Transaction, len(l.transactions))
	for i, t := range l.transactions {
		txs[i] = t.clone()
	}
	return txs
}

// Transaction returns a copy of the transaction with the given id.
func (l *Ledger) Transaction(id string) (Transaction, bool) {
	i, ok := l.txIndex[id]
	if !ok {
		return Transaction{}, false
	}
	return l.transactions[i].clone(), true
}

// Book implementation.

func (l *Ledger) Accounts(context.Context) ([]Account, error) {
	return SortAccounts(l.accounts), nil
}

func (l *Ledger) SubAccount(_ context.Context, parent, name string) (Account, bool, error) {
	i, ok := l.accIndex[Account{Name: name, Parent: parent}.FullName()]
	if !ok {
		return Account{}, false, nil
	}
	return l.accounts[i], true, nil
}

func (l *Ledger) Entries(_ context.Context, account string) ([]Entry, error) {
	if _, ok := l.accIndex[account]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, account)
	}
	var entries []Entry
	for _, t := range l.transactions {
		if t.Account == account {
			entries = append(entries, Entry{Txn: t.ID, Date: t.Date, Description: t.Description})
		}
		for _, s := range t.Splits {
			if s.Account == account {
				entries = append(entries, Entry{Txn: t.ID, Split: s.ID, Date: t.Date, Description: t.Description, Shares: s.Shares, Amount: s.Amount})
			}
		}
	}
	return entries, nil
}

func (l *Ledger) BalanceAsOf(_ context.Context, account string, day date.Date) (int64, error) {
	if _, ok := l.accIndex[account]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAccount, account)
	}
	var balance int64
	for _, t := range l.transactions {
		if t.Date.After(day) {
			break
		}
		for _, s := range t.Splits {
			if s.Account == account {
				balance += s.Shares
			}
		}
	}
	return balance, nil
}

func (l *Ledger) Security(_ context.Context, name string) (Security, error) {
	i, ok := l.secIndex[name]
	if !ok {
		return Security{}, fmt.Errorf("%w: %q", ErrUnknownSecurity, name)
	}
	return l.securities[i], nil
}

func (l *Ledger) Securities(context.Context) ([]Security, error) {
	return l.AllSecurities(), nil
}

func (l *Ledger) EditSecurity(_ context.Context, name string, edit func(*Security) error) error {
	i, ok := l.secIndex[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSecurity, name)
	}
	s := l.securities[i]
	if err := edit(&s); err != nil {
		return err
	}
	if s.Name != name {
		return fmt.Errorf("security %q cannot be renamed", name)
	}
	l.securities[i] = s
	l.modified = true
	return nil
}

func (l *Ledger) EditTransaction(_ context.Context, id string, edit func(*Transaction) error) error {
	i, ok := l.txIndex[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTransaction, id)
	}
	t := l.transactions[i].clone()
	if err := edit(&t); err != nil {
		return err
	}
	if t.ID != id {
		return fmt.Errorf("transaction %q cannot change its id", id)
	}
	if t.Date != l.transactions[i].Date {
		return fmt.Errorf("transaction %q cannot change its date", id)
	}
	l.transactions[i] = t
	l.modified = true
	return nil
}

// Atomically runs fn on the ledger and restores the previous content if fn fails.
func (l *Ledger) Atomically(_ context.Context, fn func(Book) error) error {
	securities := slices.Clone(l.securities)
	transactions := l.Transactions()
	modified := l.modified
	if err := fn(l); err != nil {
		l.securities = securities
		l.transactions = transactions
		l.modified = modified
		l.reindex()
		return err
	}
	return nil
}

// check that a Ledger is a Book.
var _ Book = (*Ledger)(nil)
var _ Atomic = (*Ledger)(nil)
