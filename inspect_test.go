package moredecimal

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestInspect(t *testing.T) {
	l := newTestLedger(t)
	r, err := Inspect(t.Context(), l, "ACME")
	if err != nil {
		t.Fatalf("Inspect() failed: %v", err)
	}
	if len(r.Positions) != 2 {
		t.Fatalf("Inspect() returned %d positions, want 2", len(r.Positions))
	}

	tests := []struct {
		account string
		shares  string
		entries int
		cost    Money
	}{
		{"Brokerage", "12", 2, USD("117")},
		{"Retirement", "5", 1, USD("55")},
	}
	for i, tc := range tests {
		p := r.Positions[i]
		if p.Account != tc.account {
			t.Errorf("position %d account = %q, want %q", i, p.Account, tc.account)
		}
		if !p.Shares.Equal(decimal.RequireFromString(tc.shares)) {
			t.Errorf("%s shares = %s, want %s", tc.account, p.Shares, tc.shares)
		}
		if p.Entries != tc.entries {
			t.Errorf("%s entries = %d, want %d", tc.account, p.Entries, tc.entries)
		}
		if !p.Cost.Equal(tc.cost) {
			t.Errorf("%s cost = %v, want %v", tc.account, p.Cost, tc.cost)
		}
	}
	if !r.Total.Equal(decimal.NewFromInt(17)) {
		t.Errorf("total = %s, want 17", r.Total)
	}
	if !r.Cost.Equal(USD("172")) {
		t.Errorf("cost = %v, want $172", r.Cost)
	}

	if _, err := Inspect(t.Context(), l, "NOPE"); !errors.Is(err, ErrUnknownSecurity) {
		t.Errorf("Inspect(NOPE) error = %v, want ErrUnknownSecurity", err)
	}
}
