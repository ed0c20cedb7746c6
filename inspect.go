package moredecimal

import (
	"context"

	"github.com/shopspring/decimal"
)

// Position is the holding of a security in one investment account.
type Position struct {
	Account string // investment account full name
	Shares  decimal.Decimal
	Entries int
	Cost    Money
}

// Report describes where a security is held.
type Report struct {
	Security  Security
	Positions []Position
	Total     decimal.Decimal
	Cost      Money
}

// Inspect returns the positions held in security across the book. Amounts in
// another currency than the security's are left out of the costs.
func Inspect(ctx context.Context, book Book, security string) (Report, error) {
	sec, err := book.Security(ctx, security)
	if err != nil {
		return Report{}, err
	}
	holdings, err := FindAffected(ctx, book, sec.Name)
	if err != nil {
		return Report{}, err
	}
	r := Report{Security: sec, Cost: M(decimal.Zero, sec.Currency)}
	for _, h := range holdings {
		var shares int64
		cost := M(decimal.Zero, sec.Currency)
		for _, e := range h.Entries {
			shares += e.Shares
			if e.Amount.Currency() == "" || e.Amount.Currency() == cost.Currency() {
				cost = cost.Add(e.Amount)
			}
		}
		p := Position{
			Account: h.Investment.FullName(),
			Shares:  Shares(shares, sec.Decimals),
			Entries: len(h.Entries),
			Cost:    cost,
		}
		r.Positions = append(r.Positions, p)
		r.Total = r.Total.Add(p.Shares)
		r.Cost = r.Cost.Add(cost)
	}
	return r, nil
}
