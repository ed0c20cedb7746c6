package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/moredecimal/sqlitebook"
	"github.com/google/subcommands"
)

func TestDecimalsCommit(t *testing.T) {
	path := createTempBook(t, "book.jsonl", testBook)
	out := useBook(t, path, "y\n")

	if status := run(t, &decimalsCmd{}, "-s", "ACME", "-n", "0"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v\n%s", status, out)
	}
	want := "Verified and staged 1 transactions in Brokerage account.\n" +
		"Commit these changes? [y/N] " +
		"Changed 1 transaction in 1 account. ACME now has 0 decimal places.\n"
	if got := out.String(); got != want {
		t.Errorf("output mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}

	got := readFile(t, path)
	for _, want := range []string{
		`{"kind":"security","name":"ACME","ticker":"ACM","currency":"USD","decimals":0}`,
		`"account":"Brokerage:ACME","shares":15,`,
		`"account":"Brokerage:BETA","shares":1550}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("book does not contain %s:\n%s", want, got)
		}
	}
}

func TestDecimalsDeclined(t *testing.T) {
	path := createTempBook(t, "book.jsonl", testBook)
	out := useBook(t, path, "\n")

	if status := run(t, &decimalsCmd{}, "-s", "ACME", "-n", "4"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	if !strings.HasSuffix(out.String(), "No changes made.\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := readFile(t, path); got != testBook {
		t.Errorf("book modified:\n%s", got)
	}
}

func TestDecimalsNotCommitted(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     subcommands.ExitStatus
		wantText string
	}{
		{
			name:     "validation failure",
			args:     []string{"-s", "BETA", "-n", "0"},
			want:     subcommands.ExitFailure,
			wantText: "Failure: shares 1550 moved -2 places",
		},
		{
			name:     "already scaled",
			args:     []string{"-s", "ACME", "-n", "2"},
			want:     subcommands.ExitSuccess,
			wantText: "No changes needed. ACME already has 2 decimal places.",
		},
		{
			name:     "unknown security",
			args:     []string{"-s", "NOPE", "-n", "2"},
			want:     subcommands.ExitFailure,
			wantText: "NOPE",
		},
		{
			name:     "too many decimals",
			args:     []string{"-s", "ACME", "-n", "19"},
			want:     subcommands.ExitFailure,
			wantText: "invalid number of decimal places",
		},
		{
			name: "missing security",
			args: []string{"-n", "2"},
			want: subcommands.ExitUsageError,
		},
		{
			name: "missing decimals",
			args: []string{"-s", "ACME"},
			want: subcommands.ExitUsageError,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := createTempBook(t, "book.jsonl", testBook)
			out := useBook(t, path, "y\n")

			if status := run(t, &decimalsCmd{}, tc.args...); status != tc.want {
				t.Errorf("status = %v, want %v", status, tc.want)
			}
			if !strings.Contains(out.String(), tc.wantText) {
				t.Errorf("output does not contain %q:\n%s", tc.wantText, out)
			}
			if strings.Contains(out.String(), "Commit these changes?") {
				t.Errorf("confirmation asked:\n%s", out)
			}
			if got := readFile(t, path); got != testBook {
				t.Errorf("book modified:\n%s", got)
			}
		})
	}
}

func TestDecimalsSQLite(t *testing.T) {
	jsonl := createTempBook(t, "book.jsonl", testBook)
	db := filepath.Join(t.TempDir(), "book.db")
	useBook(t, jsonl, "")
	if status := run(t, &convertCmd{}, "-o", db); status != subcommands.ExitSuccess {
		t.Fatalf("convert: expected ExitSuccess, got %v", status)
	}

	out := useBook(t, db, "yes\n")
	if status := run(t, &decimalsCmd{}, "-s", "ACME", "-n", "3"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v\n%s", status, out)
	}
	if !strings.Contains(out.String(), "ACME now has 3 decimal places.") {
		t.Errorf("unexpected output:\n%s", out)
	}

	ctx := context.Background()
	store, err := sqlitebook.Open(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	sec, err := store.Security(ctx, "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if sec.Decimals != 3 {
		t.Errorf("ACME decimals = %d, want 3", sec.Decimals)
	}
	entries, err := store.Entries(ctx, "Brokerage:ACME")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Shares != 15000 {
		t.Errorf("entries = %+v, want one entry of 15000 shares", entries)
	}
}

func TestConfirm(t *testing.T) {
	tests := map[string]bool{
		"y\n":   true,
		"Y\n":   true,
		"yes\n": true,
		" yes ": true,
		"\n":    false,
		"":      false,
		"n\n":   false,
		"yep\n": false,
	}
	for input, want := range tests {
		var out strings.Builder
		if got := confirm(strings.NewReader(input), &out, "ok? "); got != want {
			t.Errorf("confirm(%q) = %v, want %v", input, got, want)
		}
		if out.String() != "ok? " {
			t.Errorf("confirm(%q) printed %q", input, out.String())
		}
	}
}
