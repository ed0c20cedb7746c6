package sqlitebook

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/moredecimal"
	"github.com/etnz/moredecimal/catalog"
	"github.com/etnz/moredecimal/date"
	"github.com/google/go-cmp/cmp"
)

const testBook = `{"kind":"security","name":"ACME","ticker":"ACM","currency":"USD","decimals":2}
{"kind":"security","name":"BETA","currency":"USD","decimals":2,"hidden":true}
{"kind":"account","name":"Cash","type":"bank"}
{"kind":"account","name":"Brokerage","type":"investment"}
{"kind":"account","name":"ACME","parent":"Brokerage","type":"security"}
{"kind":"account","name":"BETA","parent":"Brokerage","type":"security"}
{"kind":"account","name":"Retirement","type":"investment"}
{"kind":"account","name":"ACME","parent":"Retirement","type":"security"}
{"kind":"txn","id":"t1","date":"2024-01-02","description":"Buy ACME","account":"Brokerage","splits":[{"id":"s1","account":"Brokerage:ACME","shares":1500,"amount":150,"currency":"USD"},{"id":"s2","account":"Cash","shares":0,"amount":-150,"currency":"USD"}]}
{"kind":"txn","id":"t2","date":"2024-02-01","description":"Buy ACME","account":"Retirement","splits":[{"id":"s3","account":"Retirement:ACME","shares":500,"amount":55,"currency":"USD"}]}
{"kind":"txn","id":"t3","date":"2024-03-01","description":"Sell ACME","account":"Brokerage","splits":[{"id":"s4","account":"Brokerage:ACME","shares":-300,"amount":-33,"currency":"USD"}]}
{"kind":"txn","id":"t4","date":"2024-03-01","description":"Note","account":"Brokerage:ACME","splits":[]}
{"kind":"txn","id":"t5","date":"2024-03-05","description":"Buy BETA","account":"Brokerage","splits":[{"id":"s5","account":"Brokerage:BETA","shares":1550,"amount":20,"currency":"USD"}]}
`

// openTestStore returns a store holding testBook, and the ledger it was imported from.
func openTestStore(t *testing.T) (*Store, *moredecimal.Ledger) {
	t.Helper()
	ledger, err := moredecimal.DecodeLedger(strings.NewReader(testBook))
	if err != nil {
		t.Fatalf("decoding test book: %v", err)
	}
	s, err := Open(t.Context(), filepath.Join(t.TempDir(), "book.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Import(t.Context(), ledger); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	return s, ledger
}

var dateCmp = cmp.AllowUnexported(date.Date{})
var moneyCmp = cmp.Comparer(moredecimal.Money.Equal)

func TestImportExport(t *testing.T) {
	s, _ := openTestStore(t)

	exported, err := s.Export(t.Context())
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	var got bytes.Buffer
	if err := moredecimal.EncodeLedger(&got, exported); err != nil {
		t.Fatal(err)
	}
	original, _ := moredecimal.DecodeLedger(strings.NewReader(testBook))
	var want bytes.Buffer
	moredecimal.EncodeLedger(&want, original)
	if diff := cmp.Diff(want.String(), got.String()); diff != "" {
		t.Errorf("Export() mismatch (-want +got):\n%s", diff)
	}

	if err := s.Import(t.Context(), original); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("second Import() error = %v, want ErrNotEmpty", err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.db")
	ledger, _ := moredecimal.DecodeLedger(strings.NewReader(testBook))
	s, err := Open(t.Context(), path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Import(t.Context(), ledger); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(t.Context(), path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()
	securities, err := s.Securities(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(securities) != 2 {
		t.Errorf("reopened book has %d securities, want 2", len(securities))
	}
}

// TestSameAsLedger checks that the store answers every read like the
// in-memory ledger it was imported from.
func TestSameAsLedger(t *testing.T) {
	s, ledger := openTestStore(t)
	ctx := t.Context()

	wantAccounts, _ := ledger.Accounts(ctx)
	gotAccounts, err := s.Accounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantAccounts, gotAccounts); diff != "" {
		t.Errorf("Accounts() mismatch (-ledger +store):\n%s", diff)
	}

	wantSecurities, _ := ledger.Securities(ctx)
	gotSecurities, err := s.Securities(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantSecurities, gotSecurities); diff != "" {
		t.Errorf("Securities() mismatch (-ledger +store):\n%s", diff)
	}

	for _, account := range []string{"Brokerage:ACME", "Retirement:ACME", "Brokerage:BETA", "Cash", "Brokerage"} {
		want, _ := ledger.Entries(ctx, account)
		got, err := s.Entries(ctx, account)
		if err != nil {
			t.Fatalf("Entries(%s) failed: %v", account, err)
		}
		if diff := cmp.Diff(want, got, dateCmp, moneyCmp); diff != "" {
			t.Errorf("Entries(%s) mismatch (-ledger +store):\n%s", account, diff)
		}
		for _, day := range []string{"2024-01-01", "2024-01-02", "2024-03-01", "2024-12-31"} {
			want, _ := ledger.BalanceAsOf(ctx, account, date.MustParse(day))
			got, err := s.BalanceAsOf(ctx, account, date.MustParse(day))
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("BalanceAsOf(%s, %s) = %d, want %d", account, day, got, want)
			}
		}
	}

	sub, ok, err := s.SubAccount(ctx, "Retirement", "ACME")
	if err != nil || !ok || sub.FullName() != "Retirement:ACME" || sub.Type != moredecimal.SecurityHolding {
		t.Errorf("SubAccount(Retirement, ACME) = %+v, %v, %v", sub, ok, err)
	}
	if _, ok, err := s.SubAccount(ctx, "Retirement", "BETA"); ok || err != nil {
		t.Errorf("SubAccount(Retirement, BETA) = %v, %v; want not found", ok, err)
	}
	if _, err := s.Entries(ctx, "Nowhere"); !errors.Is(err, moredecimal.ErrUnknownAccount) {
		t.Errorf("Entries(Nowhere) error = %v, want ErrUnknownAccount", err)
	}
	if _, err := s.Security(ctx, "NOPE"); !errors.Is(err, moredecimal.ErrUnknownSecurity) {
		t.Errorf("Security(NOPE) error = %v, want ErrUnknownSecurity", err)
	}
}

func TestEditTransaction(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := t.Context()

	failure := errors.New("no")
	err := s.EditTransaction(ctx, "t1", func(tx *moredecimal.Transaction) error {
		tx.Split("s1").Shares = 1
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("EditTransaction() error = %v, want %v", err, failure)
	}
	if got := balance(t, s, "Brokerage:ACME"); got != 1200 {
		t.Errorf("failed edit was published: balance = %d", got)
	}

	err = s.EditTransaction(ctx, "t1", func(tx *moredecimal.Transaction) error {
		tx.Date = date.MustParse("2020-01-01")
		return nil
	})
	if err == nil {
		t.Errorf("EditTransaction() changing the date succeeded")
	}

	err = s.EditTransaction(ctx, "t1", func(tx *moredecimal.Transaction) error {
		tx.Split("s1").Shares = 1000
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := balance(t, s, "Brokerage:ACME"); got != 700 {
		t.Errorf("balance = %d after edit, want 700", got)
	}

	if err := s.EditTransaction(ctx, "nope", func(*moredecimal.Transaction) error { return nil }); !errors.Is(err, moredecimal.ErrUnknownTransaction) {
		t.Errorf("EditTransaction(nope) error = %v, want ErrUnknownTransaction", err)
	}
}

func TestAtomically(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := t.Context()

	failure := errors.New("abort")
	err := s.Atomically(ctx, func(b moredecimal.Book) error {
		if err := b.EditSecurity(ctx, "ACME", func(sec *moredecimal.Security) error { sec.Decimals = 0; return nil }); err != nil {
			return err
		}
		if err := b.EditTransaction(ctx, "t1", func(tx *moredecimal.Transaction) error { tx.Split("s1").Shares = 15; return nil }); err != nil {
			return err
		}
		// A failed edit inside the group only drops itself.
		b.EditTransaction(ctx, "t3", func(*moredecimal.Transaction) error { return failure })
		if got, _ := b.Security(ctx, "ACME"); got.Decimals != 0 {
			t.Errorf("edit not visible inside the group: %+v", got)
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Atomically() error = %v, want %v", err, failure)
	}
	sec, err := s.Security(ctx, "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if sec.Decimals != 2 {
		t.Errorf("decimals = %d after rollback, want 2", sec.Decimals)
	}
	if got := balance(t, s, "Brokerage:ACME"); got != 1200 {
		t.Errorf("balance = %d after rollback, want 1200", got)
	}
}

func TestChangerOnStore(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := t.Context()
	en, err := catalog.New("en")
	if err != nil {
		t.Fatal(err)
	}
	var log []string
	c := moredecimal.NewChanger(s, en, moredecimal.SinkFunc(func(text string) { log = append(log, text) }))

	// BETA cannot lose its decimals: 15.50 shares.
	report, err := c.ChangeDecimals(ctx, "BETA", 0)
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 1 || c.IsModified() {
		t.Errorf("ChangeDecimals(BETA, 0) = %+v, want a failure", report)
	}

	report, err = c.ChangeDecimals(ctx, "ACME", 0)
	if err != nil {
		t.Fatal(err)
	}
	if report.Accounts != 2 || report.Transactions != 3 {
		t.Errorf("ChangeDecimals(ACME, 0) = %+v, want 2 accounts and 3 transactions", report)
	}
	if _, err := c.Commit(ctx); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	sec, _ := s.Security(ctx, "ACME")
	if sec.Decimals != 0 {
		t.Errorf("ACME decimals = %d, want 0", sec.Decimals)
	}
	if got := balance(t, s, "Brokerage:ACME"); got != 12 {
		t.Errorf("Brokerage:ACME balance = %d, want 12", got)
	}
	if got := balance(t, s, "Retirement:ACME"); got != 5 {
		t.Errorf("Retirement:ACME balance = %d, want 5", got)
	}
	if got := log[len(log)-1]; got != "Changed 3 transactions in 2 accounts. ACME now has 0 decimal places." {
		t.Errorf("last message = %q", got)
	}
}

func balance(t *testing.T, s *Store, account string) int64 {
	t.Helper()
	b, err := s.BalanceAsOf(t.Context(), account, date.MustParse("2099-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	return b
}
