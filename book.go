package moredecimal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/moredecimal/date"
)

var (
	ErrUnknownSecurity    = errors.New("unknown security")
	ErrUnknownAccount     = errors.New("unknown account")
	ErrUnknownTransaction = errors.New("unknown transaction")
)

// AccountSeparator separates account names in a full account name.
const AccountSeparator = ":"

// AccountType tags an account with its role in the book.
type AccountType int

const (
	Bank AccountType = iota
	Asset
	Investment
	SecurityHolding // sub-account of an Investment account holding one security
	Income
	Expense
	Liability
	Equity
)

var accountTypeNames = []string{"bank", "asset", "investment", "security", "income", "expense", "liability", "equity"}

func (t AccountType) String() string {
	if t < 0 || int(t) >= len(accountTypeNames) {
		return "unknown"
	}
	return accountTypeNames[t]
}

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	i := slices.Index(accountTypeNames, strings.ToLower(s))
	if i < 0 {
		return 0, fmt.Errorf("unknown account type: %q", s)
	}
	return AccountType(i), nil
}

// Security is a tradable instrument whose quantities are stored as integers in
// units of 10^-Decimals share.
type Security struct {
	Name     string
	Ticker   string
	Currency string
	Decimals int
	Hidden   bool // not offered for selection
}

// Account is a node of the account tree.
type Account struct {
	Name   string
	Parent string // full name of the parent account, empty for top level accounts
	Type   AccountType
}

// FullName returns the account name qualified by all its parents.
func (a Account) FullName() string {
	if a.Parent == "" {
		return a.Name
	}
	return a.Parent + AccountSeparator + a.Name
}

// Split is one leg of a Transaction.
type Split struct {
	ID      string
	Account string // full account name
	Shares  int64  // in units of 10^-Decimals of the account's security
	Amount  Money
}

// Transaction groups splits booked on the same day. Account is the account the
// transaction itself is registered in.
type Transaction struct {
	ID          string
	Date        date.Date
	Description string
	Account     string
	Splits      []Split
}

// Split returns a pointer to the split with the given id, or nil.
func (t *Transaction) Split(id string) *Split {
	for i := range t.Splits {
		if t.Splits[i].ID == id {
			return &t.Splits[i]
		}
	}
	return nil
}

func (t Transaction) clone() Transaction {
	t.Splits = slices.Clone(t.Splits)
	return t
}

// Entry is a record booked against one account: either a split, or a
// transaction registered directly in that account.
type Entry struct {
	Txn         string
	Split       string // empty when the entry is the transaction itself
	Date        date.Date
	Description string
	Shares      int64
	Amount      Money
}

// IsSplit reports whether e is a split of a transaction.
func (e Entry) IsSplit() bool { return e.Split != "" }

func (e Entry) String() string {
	return fmt.Sprintf("%s %s", e.Date, e.Description)
}

// Book is the account book the decimal changer works on.
//
// EditSecurity and EditTransaction bracket one mutation of one entity: edit
// receives a private copy, and the copy is published only when edit returns nil.
type Book interface {
	// Accounts returns every account, depth-first, siblings ordered by name.
	Accounts(ctx context.Context) ([]Account, error)
	// SubAccount returns the direct child of parent called name.
	SubAccount(ctx context.Context, parent, name string) (Account, bool, error)
	// Entries returns the records booked against an account, ordered by date
	// then by position in the book.
	Entries(ctx context.Context, account string) ([]Entry, error)
	// BalanceAsOf returns the sum of the split shares booked against account
	// up to and including day.
	BalanceAsOf(ctx context.Context, account string, day date.Date) (int64, error)

	Security(ctx context.Context, name string) (Security, error)
	Securities(ctx context.Context) ([]Security, error)

	EditSecurity(ctx context.Context, name string, edit func(*Security) error) error
	EditTransaction(ctx context.Context, id string, edit func(*Transaction) error) error
}

// Atomic is implemented by books that can publish a group of edits as a whole.
type Atomic interface {
	// Atomically calls fn with a Book whose edits are all published if fn
	// returns nil, and none otherwise.
	Atomically(ctx context.Context, fn func(Book) error) error
}

// SortAccounts returns accounts in depth-first order, siblings sorted by name.
// Accounts whose parent is missing are dropped.
func SortAccounts(accounts []Account) []Account {
	children := make(map[string][]Account)
	for _, a := range accounts {
		children[a.Parent] = append(children[a.Parent], a)
	}
	for _, c := range children {
		slices.SortFunc(c, func(a, b Account) int { return strings.Compare(a.Name, b.Name) })
	}
	sorted := make([]Account, 0, len(accounts))
	var walk func(parent string)
	walk = func(parent string) {
		for _, a := range children[parent] {
			sorted = append(sorted, a)
			walk(a.FullName())
		}
	}
	walk("")
	return sorted
}

// Selectable returns the securities that can be offered for selection: not
// hidden, sorted by name.
func Selectable(ctx context.Context, book Book) ([]Security, error) {
	all, err := book.Securities(ctx)
	if err != nil {
		return nil, err
	}
	var visible []Security
	for _, s := range all {
		if !s.Hidden {
			visible = append(visible, s)
		}
	}
	slices.SortFunc(visible, func(a, b Security) int { return strings.Compare(a.Name, b.Name) })
	return visible, nil
}
