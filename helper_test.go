package moredecimal

import (
	"fmt"
	"testing"

	"github.com/etnz/moredecimal/date"
	"github.com/shopspring/decimal"
)

// testCatalog formats messages in plain english.
type testCatalog struct{}

var testMessages = map[Key]string{
	MsgAlreadyScaled:     "No changes needed. %s already has %d decimal places.",
	MsgUnexpectedEntry:   "Unexpected entry in %s: %s",
	MsgStaged:            "Verified and staged %d transactions in %s account.",
	MsgValidationFailure: "Failure: %s. Cannot use %d decimal places in %s on %s.",
	MsgCommitSummary:     "Changed %d transaction%s in %d account%s. %s now has %d decimal places.",
	MsgStaleStaging:      "%s changed since staging: staged from %d decimal places, now %d.",
	MsgNothingStaged:     "Nothing to commit.",
}

func (testCatalog) Sprintf(key Key, args ...any) string {
	format, ok := testMessages[key]
	if !ok {
		format = string(key)
	}
	return fmt.Sprintf(format, args...)
}

func (testCatalog) Date(d date.Date) string { return d.String() }

func (testCatalog) Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// textLog is a Sink recording every message.
type textLog []string

func (l *textLog) AddText(text string) { *l = append(*l, text) }

// USD is a helper for test to create usd money from const
func USD(v string) Money { return M(decimal.RequireFromString(v), "USD") }

// newTestLedger builds a book with ACME held in two investment accounts.
//
// ACME has 2 decimal places, every quantity is a whole number of shares. BETA
// has 2 decimal places and a fractional quantity.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("building test ledger: %v", err)
		}
	}
	must(l.AddSecurity(Security{Name: "ACME", Ticker: "ACM", Currency: "USD", Decimals: 2}))
	must(l.AddSecurity(Security{Name: "BETA", Currency: "USD", Decimals: 2}))
	must(l.AddSecurity(Security{Name: "OLD", Currency: "USD", Decimals: 4, Hidden: true}))

	must(l.AddAccount(Account{Name: "Cash", Type: Bank}))
	must(l.AddAccount(Account{Name: "Brokerage", Type: Investment}))
	must(l.AddAccount(Account{Name: "ACME", Parent: "Brokerage", Type: SecurityHolding}))
	must(l.AddAccount(Account{Name: "BETA", Parent: "Brokerage", Type: SecurityHolding}))
	must(l.AddAccount(Account{Name: "Retirement", Type: Investment}))
	must(l.AddAccount(Account{Name: "ACME", Parent: "Retirement", Type: SecurityHolding}))

	must(l.AddTransaction(Transaction{
		ID: "t1", Date: date.MustParse("2024-01-02"), Description: "Buy ACME", Account: "Brokerage",
		Splits: []Split{
			{ID: "s1", Account: "Brokerage:ACME", Shares: 1500, Amount: USD("150.00")},
			{ID: "s2", Account: "Cash", Amount: USD("-150.00")},
		},
	}))
	must(l.AddTransaction(Transaction{
		ID: "t2", Date: date.MustParse("2024-02-01"), Description: "Buy ACME", Account: "Retirement",
		Splits: []Split{
			{ID: "s3", Account: "Retirement:ACME", Shares: 500, Amount: USD("55.00")},
		},
	}))
	must(l.AddTransaction(Transaction{
		ID: "t3", Date: date.MustParse("2024-03-01"), Description: "Sell ACME", Account: "Brokerage",
		Splits: []Split{
			{ID: "s4", Account: "Brokerage:ACME", Shares: -300, Amount: USD("-33.00")},
		},
	}))
	must(l.AddTransaction(Transaction{
		ID: "t4", Date: date.MustParse("2024-03-05"), Description: "Buy BETA", Account: "Brokerage",
		Splits: []Split{
			{ID: "s5", Account: "Brokerage:BETA", Shares: 1550, Amount: USD("20.00")},
		},
	}))
	return l
}

// shares returns the shares of a split in l.
func shares(t *testing.T, l *Ledger, txn, split string) int64 {
	t.Helper()
	tx, ok := l.Transaction(txn)
	if !ok {
		t.Fatalf("transaction %q not found", txn)
	}
	s := tx.Split(split)
	if s == nil {
		t.Fatalf("split %q not found in %q", split, txn)
	}
	return s.Shares
}

// decimalsOf returns the decimal places of a security in l.
func decimalsOf(t *testing.T, l *Ledger, security string) int {
	t.Helper()
	s, err := l.Security(t.Context(), security)
	if err != nil {
		t.Fatal(err)
	}
	return s.Decimals
}
