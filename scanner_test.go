package moredecimal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindAffected(t *testing.T) {
	l := newTestLedger(t)
	// Not an investment account: ignored even with an ACME child.
	if err := l.AddAccount(Account{Name: "ACME", Parent: "Cash", Type: SecurityHolding}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		security string
		want     map[string]int // holding account -> entries
	}{
		{"ACME", map[string]int{"Brokerage:ACME": 2, "Retirement:ACME": 1}},
		{"BETA", map[string]int{"Brokerage:BETA": 1}},
		{"OLD", map[string]int{}},
	}
	for _, tc := range tests {
		holdings, err := FindAffected(t.Context(), l, tc.security)
		if err != nil {
			t.Fatalf("FindAffected(%s) failed: %v", tc.security, err)
		}
		got := make(map[string]int)
		for _, h := range holdings {
			if h.Account.Parent != h.Investment.FullName() {
				t.Errorf("holding %s is not a child of %s", h.Account.FullName(), h.Investment.FullName())
			}
			got[h.Account.FullName()] = len(h.Entries)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("FindAffected(%s) mismatch (-want +got):\n%s", tc.security, diff)
		}
	}
}
