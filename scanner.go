package moredecimal

import (
	"context"
	"fmt"
)

// Holding is the security sub-account of one investment account, with every
// record booked against it.
type Holding struct {
	Investment Account
	Account    Account
	Entries    []Entry
}

// FindAffected returns, in account tree order, every investment account that
// holds a sub-account named after the security.
func FindAffected(ctx context.Context, book Book, security string) ([]Holding, error) {
	accounts, err := book.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	var holdings []Holding
	for _, invest := range accounts {
		if invest.Type != Investment {
			continue
		}
		sub, ok, err := book.SubAccount(ctx, invest.FullName(), security)
		if err != nil {
			return nil, fmt.Errorf("looking up %s in %s: %w", security, invest.FullName(), err)
		}
		if !ok {
			continue
		}
		entries, err := book.Entries(ctx, sub.FullName())
		if err != nil {
			return nil, fmt.Errorf("listing entries of %s: %w", sub.FullName(), err)
		}
		holdings = append(holdings, Holding{Investment: invest, Account: sub, Entries: entries})
	}
	return holdings, nil
}
