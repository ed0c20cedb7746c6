package moredecimal

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidDecimals = errors.New("invalid number of decimal places")
	ErrNothingStaged   = errors.New("no staged changes to commit")
	// ErrStale is returned by Commit when the security changed since staging.
	ErrStale = errors.New("staged changes are out of date")
)

// StageReport summarizes a ChangeDecimals call.
type StageReport struct {
	Security     string
	From, To     int // decimal places
	Accounts     int // accounts staged
	Transactions int // transactions staged
	Failed       int // accounts that failed validation
}

// Staged reports whether the request left changes waiting for Commit.
func (r StageReport) Staged() bool { return r.Failed == 0 && r.Accounts > 0 }

// CommitReport summarizes a Commit call.
type CommitReport struct {
	Security     string
	Decimals     int
	Accounts     int
	Transactions int
}

// Changer changes the number of decimal places of a security, rescaling every
// transaction that references it.
//
// Changes are first validated and staged by ChangeDecimals, then applied by
// Commit. Either every staged transaction is rescaled or none is.
//
// Commit re-reads each split when applying: the book must not be modified by
// anyone else between ChangeDecimals and Commit. A change to the security
// itself is detected and reported as ErrStale.
type Changer struct {
	mu     sync.Mutex
	book   Book
	out    reporter
	staged stagingSet
}

// NewChanger returns a Changer working on book and reporting to sink.
func NewChanger(book Book, catalog Catalog, sink Sink) *Changer {
	return &Changer{
		book: book,
		out:  reporter{catalog: catalog, sink: sink},
	}
}

// ChangeDecimals stages the change of security to decimals decimal places.
//
// Anything staged before is forgotten. Transactions that cannot be rescaled
// exactly are reported and cause the whole request to be dropped; this is not
// an error. Errors are returned for invalid requests and book failures.
func (c *Changer) ChangeDecimals(ctx context.Context, security string, decimals int) (StageReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.reset()

	report := StageReport{Security: security, To: decimals}
	if decimals < 0 || decimals > MaxDecimals {
		return report, fmt.Errorf("%w: %d (want 0 to %d)", ErrInvalidDecimals, decimals, MaxDecimals)
	}
	sec, err := c.book.Security(ctx, security)
	if err != nil {
		return report, err
	}
	report.From = sec.Decimals

	if decimals == sec.Decimals {
		// No changes needed.
		c.out.writeFormatted(MsgAlreadyScaled, sec.Name, decimals)
		return report, nil
	}

	holdings, err := FindAffected(ctx, c.book, sec.Name)
	if err != nil {
		return report, err
	}

	c.staged.open(sec.Name, sec.Decimals, decimals)
	for _, h := range holdings {
		changes, ok, err := c.validate(ctx, h)
		if err != nil {
			c.staged.reset()
			return report, err
		}
		if !ok {
			report.Failed++
			continue
		}
		c.staged.stage(changes...)
	}

	if report.Failed > 0 {
		c.staged.reset()
		return report, nil
	}
	report.Accounts = c.staged.accounts
	report.Transactions = len(c.staged.changes)
	return report, nil
}

// validate checks that every split of a holding, and the holding balance at
// each split date, rescale exactly. ok is false when one does not.
func (c *Changer) validate(ctx context.Context, h Holding) (changes []pendingChange, ok bool, err error) {
	account := h.Account.FullName()
	shift := c.staged.shift
	for _, e := range h.Entries {
		if !e.IsSplit() {
			c.out.writeFormatted(MsgUnexpectedEntry, account, e)
			continue
		}
		if _, err := rescaleKind(KindShares, e.Shares, shift); err != nil {
			c.reportFailure(err, account, e)
			return nil, false, nil
		}
		balance, err := c.book.BalanceAsOf(ctx, account, e.Date)
		if err != nil {
			return nil, false, fmt.Errorf("balance of %s on %s: %w", account, e.Date, err)
		}
		if _, err := rescaleKind(KindBalance, balance, shift); err != nil {
			c.reportFailure(err, account, e)
			return nil, false, nil
		}
		changes = append(changes, pendingChange{txn: e.Txn, split: e.Split})
	}
	c.out.writeFormatted(MsgStaged, len(changes), h.Investment.Name)
	return changes, true, nil
}

func (c *Changer) reportFailure(err error, account string, e Entry) {
	c.out.writeFormatted(MsgValidationFailure, err.Error(), c.staged.decimals, account, c.out.catalog.Date(e.Date))
}

// Commit applies the staged changes to the book, then forgets them.
//
// The security is updated first, then every staged split is rescaled from
// its current value. When the book is Atomic all of it happens in one group.
func (c *Changer) Commit(ctx context.Context) (CommitReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.staged.modified() {
		c.out.writeFormatted(MsgNothingStaged)
		return CommitReport{}, ErrNothingStaged
	}
	st := c.staged
	defer c.staged.reset()

	current := st.fromDecimals
	apply := func(b Book) error {
		err := b.EditSecurity(ctx, st.security, func(s *Security) error {
			current = s.Decimals
			if s.Decimals != st.fromDecimals {
				return ErrStale
			}
			s.Decimals = st.decimals
			return nil
		})
		if err != nil {
			return err
		}
		for _, ch := range st.changes {
			err := b.EditTransaction(ctx, ch.txn, func(t *Transaction) error {
				s := t.Split(ch.split)
				if s == nil {
					return fmt.Errorf("%w: split %q", ErrUnknownTransaction, ch.split)
				}
				shares, err := rescaleKind(KindShares, s.Shares, st.shift)
				if err != nil {
					return err
				}
				s.Shares = shares
				return nil
			})
			if err != nil {
				return fmt.Errorf("transaction %s: %w", ch.txn, err)
			}
		}
		return nil
	}

	var err error
	if a, ok := c.book.(Atomic); ok {
		err = a.Atomically(ctx, apply)
	} else {
		err = apply(c.book)
	}
	if errors.Is(err, ErrStale) {
		c.out.writeFormatted(MsgStaleStaging, st.security, st.fromDecimals, current)
		return CommitReport{}, err
	}
	if err != nil {
		return CommitReport{}, fmt.Errorf("committing %s to %d decimal places: %w", st.security, st.decimals, err)
	}

	report := CommitReport{
		Security:     st.security,
		Decimals:     st.decimals,
		Accounts:     st.accounts,
		Transactions: len(st.changes),
	}
	cat := c.out.catalog
	c.out.writeFormatted(MsgCommitSummary,
		report.Transactions, cat.Plural(report.Transactions),
		report.Accounts, cat.Plural(report.Accounts),
		report.Security, report.Decimals)
	return report, nil
}

// Forget drops any staged change. It is safe to call at any time.
func (c *Changer) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.reset()
}

// IsModified reports whether changes are staged and not yet committed.
func (c *Changer) IsModified() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged.modified()
}
